package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"
	"github.com/pgavlin/gvars/internal/repl"
	"github.com/spf13/cobra"
)

const continuationPrompt = "...> "

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive session",
	Long: `Start an interactive session over a fresh namespace holding the builtin
procedures and the bindings from the config file. Type :help for the list of
commands.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		session, err := repl.New(cfg, newLogger())
		if err != nil {
			return err
		}

		ln := liner.NewLiner()
		defer ln.Close()
		ln.SetCtrlCAborts(true)
		ln.SetTabCompletionStyle(liner.TabPrints)
		ln.SetWordCompleter(session.Complete)

		if cfg.History != "" {
			if f, err := os.Open(cfg.History); err == nil {
				_, _ = ln.ReadHistory(f)
				_ = f.Close()
			}
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("gvars %s  %s", dimStyle.Render("workspace:"), cfg.Workspace)))
		for {
			line, ok := readStatement(ln, cfg.Prompt)
			if !ok {
				fmt.Fprintln(out)
				break
			}
			if strings.TrimSpace(line) == "" {
				continue
			}
			ln.AppendHistory(strings.ReplaceAll(line, "\n", " "))

			text, err := session.Eval(line)
			if errors.Is(err, repl.ErrQuit) {
				break
			}
			if err != nil {
				fmt.Fprintln(out, formatError(err))
				continue
			}
			if text != "" {
				fmt.Fprintln(out, valueStyle.Render(text))
			}
		}

		if cfg.History != "" {
			if f, err := os.Create(cfg.History); err == nil {
				_, _ = ln.WriteHistory(f)
				_ = f.Close()
			}
		}
		return nil
	},
}

// readStatement reads lines until they form a complete statement. It returns
// false at end of input.
func readStatement(ln *liner.State, prompt string) (string, bool) {
	var b strings.Builder
	for {
		p := prompt
		if b.Len() > 0 {
			p = continuationPrompt
		}
		line, err := ln.Prompt(p)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			// Ctrl+C drops the pending input
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(line)

		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") {
			return src, true
		}
		if _, err := repl.Parse(src); !errors.Is(err, repl.ErrIncomplete) || strings.TrimSpace(src) == "" {
			return src, true
		}
	}
}

func init() {
	rootCmd.AddCommand(replCmd)
}
