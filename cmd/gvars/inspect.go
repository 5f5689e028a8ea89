package main

import (
	"fmt"
	"os"

	"github.com/pgavlin/gvars"
	"github.com/pgavlin/gvars/internal/repl"
	"github.com/spf13/cobra"
)

var inspectPrefix string

var inspectCmd = &cobra.Command{
	Use:   "inspect [workspace]",
	Short: "List the globals of a saved workspace",
	Long: `Load a workspace written by :save and list its globals with their values
and flags. The workspace defaults to the one named by the config file.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		path := cfg.Workspace
		if len(args) == 1 {
			path = args[0]
		}

		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("opening workspace: %w", err)
		}
		defer f.Close()

		g, err := gvars.Load(f, repl.Modules(), gvars.WithLogger(newLogger()))
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, name := range g.Completions(inspectPrefix) {
			h, _ := g.Peek(name)
			if err := writeVariable(out, g, h); err != nil {
				return err
			}
		}
		for _, c := range g.Cells() {
			fmt.Fprintf(out, "%s %s\n", dimStyle.Render(c.Kind().String()), nameStyle.Render(c.Name()))
		}
		return nil
	},
}

func init() {
	inspectCmd.Flags().StringVarP(&inspectPrefix, "prefix", "p", "", "Only list globals whose names start with prefix")
	rootCmd.AddCommand(inspectCmd)
}
