package main

import (
	"fmt"

	"github.com/pgavlin/gvars/internal/repl"
	"github.com/spf13/cobra"
)

var completeCmd = &cobra.Command{
	Use:   "complete prefix",
	Short: "Complete a global name",
	Long: `Print the globals of a fresh namespace that start with prefix. If exactly
one global matches, only its name is printed; otherwise the longest common
extension of the prefix comes first, followed by every match.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		session, err := repl.New(cfg, newLogger())
		if err != nil {
			return err
		}
		g, prefix := session.Globals(), args[0]

		out := cmd.OutOrStdout()
		if g.HasUniqueCompletion(prefix) {
			fmt.Fprintln(out, nameStyle.Render(g.Complete(prefix)))
			return nil
		}
		matches := g.Completions(prefix)
		if len(matches) == 0 {
			return fmt.Errorf("no global starts with %q", prefix)
		}
		fmt.Fprintln(out, nameStyle.Render(g.Complete(prefix)))
		for _, name := range matches {
			fmt.Fprintln(out, "  "+name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(completeCmd)
}
