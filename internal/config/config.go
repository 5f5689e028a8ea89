// Package config loads the settings of the gvars command.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// EnvVar names the environment variable that points at a config file.
const EnvVar = "GVARS_CONFIG"

// DefaultPath is read when neither --config nor GVARS_CONFIG is set.
const DefaultPath = "gvars.yaml"

// Config holds the settings read from gvars.yaml.
type Config struct {
	// Prompt is shown before every REPL line.
	Prompt string `yaml:"prompt"`
	// History is the REPL history file. Empty disables history.
	History string `yaml:"history"`
	// Workspace is the file used by :save and :load when no path is given.
	Workspace string `yaml:"workspace"`
	// Bindings maps global names to the source of their initial values.
	Bindings map[string]string `yaml:"bindings"`
	// ReadOnly lists globals made read-only after the bindings are assigned.
	ReadOnly []string `yaml:"readonly"`
}

// Default returns the settings used when no config file exists.
func Default() Config {
	return Config{
		Prompt:    "gvars> ",
		History:   ".gvars_history",
		Workspace: "workspace.json",
	}
}

// Parse decodes a config file. Settings missing from data keep their default
// values.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	for _, name := range cfg.ReadOnly {
		if name == "" {
			return Config{}, errors.New("parsing config: empty name in readonly")
		}
	}
	for name := range cfg.Bindings {
		if name == "" {
			return Config{}, errors.New("parsing config: empty name in bindings")
		}
	}
	return cfg, nil
}

// Load reads the config file at path. If path is empty, the file named by
// GVARS_CONFIG is read, and failing that DefaultPath; a missing default file
// yields the default settings.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		if env := os.Getenv(EnvVar); env != "" {
			path, explicit = env, true
		} else {
			path = DefaultPath
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	return Parse(data)
}
