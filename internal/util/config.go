package util

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Configuration is the interpreter's runtime settings, loadable from a
// YAML file and overridable by CLI flags.
type Configuration struct {
	Version   string `yaml:"-"`
	BuildDate string `yaml:"-"`
	Commit    string `yaml:"-"`

	LogLevel string `yaml:"logLevel"`
	LogFile  string `yaml:"logFile"`
	LogColor bool   `yaml:"logColor"`

	// ShutdownGraceSeconds bounds how long the runtime waits for agents
	// to stop on exit.
	ShutdownGraceSeconds int `yaml:"shutdownGraceSeconds"`
}

func DefaultConfiguration() *Configuration {
	return &Configuration{
		LogLevel:             "info",
		LogColor:             true,
		ShutdownGraceSeconds: 5,
	}
}

// LoadConfiguration reads a YAML config file over the defaults. An empty
// path returns the defaults; a missing file at an explicit path is an
// error.
func LoadConfiguration(path string) (*Configuration, error) {
	cfg := DefaultConfiguration()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
