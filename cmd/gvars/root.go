package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/pgavlin/gvars/internal/config"
	"github.com/pgavlin/gvars/internal/version"
	"github.com/spf13/cobra"
)

var configPath string
var workspace string
var verbose bool

var rootCmd = &cobra.Command{
	Use:   "gvars",
	Short: "Interactive global namespace of an interpreter kernel",
	Long: `gvars hosts a global namespace: interned names bound to values, read-only
and automatic variables, and the copy/fopy cells through which kernel code
reads them. Workspaces can be saved and loaded across runs.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.Version = version.Version
	rootCmd.SetVersionTemplate(version.String() + "\n")

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default $"+config.EnvVar+" or "+config.DefaultPath+")")
	rootCmd.PersistentFlags().StringVar(&workspace, "workspace", "", "Workspace file used by :save and :load")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log kernel diagnostics to stderr")
}

// loadConfig reads the config file and applies the flags that override it.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, err
	}
	if workspace != "" {
		cfg.Workspace = workspace
	}
	return cfg, nil
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(err.Error()))
		os.Exit(1)
	}
}
