package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/pgavlin/gvars"
)

var (
	// valueStyle for evaluation results
	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("81"))

	// dimStyle for muted metadata text
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	// nameStyle for global names
	nameStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42"))

	// errorStyle for user errors
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	// internalStyle for kernel programming errors
	internalStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("255")).
			Background(lipgloss.Color("160")).
			Padding(0, 1)

	// headerStyle for the REPL banner
	headerStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("42")).
			Padding(0, 1)
)

// formatError renders err, highlighting the kinds that indicate a bug in
// kernel code rather than a user mistake.
func formatError(err error) string {
	var gerr *gvars.Error
	if errors.As(err, &gerr) && gerr.Kind.Internal() {
		return internalStyle.Render("internal") + " " + errorStyle.Render(err.Error())
	}
	return errorStyle.Render(err.Error())
}

// writeVariable prints one line describing the global h.
func writeVariable(w io.Writer, g *gvars.Globals, h gvars.Handle) error {
	name, err := g.Name(h)
	if err != nil {
		return err
	}
	v, err := g.Value(h)
	if err != nil {
		return err
	}
	ro, err := g.IsReadOnly(h)
	if err != nil {
		return err
	}
	auto, err := g.IsAutomatic(h)
	if err != nil {
		return err
	}

	var flags string
	if ro {
		flags += " read-only"
	}
	if auto {
		flags += " automatic"
	}
	_, err = fmt.Fprintf(w, "%s %s%s\n", nameStyle.Render(name), valueStyle.Render(gvars.EncodeToString(v)), dimStyle.Render(flags))
	return err
}
