// Package config loads the YAML configuration of the console and the robot
// daemon.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level   string `yaml:"level" json:"level"`
	LogPath string `yaml:"log_path,omitempty" json:"log_path,omitempty"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	HTTPPort int `yaml:"http_port" json:"http_port"`
}

// Address returns the listen address for the HTTP server. The PORT
// environment variable overrides the configured port.
func (s ServerConfig) Address() string {
	if port := os.Getenv("PORT"); port != "" {
		return ":" + port
	}
	return ":" + strconv.Itoa(s.HTTPPort)
}

// loadYAML reads path into out. Fields already set on out act as defaults
// for keys the file omits.
func loadYAML(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error reading config file '%s': %w", path, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("error parsing config file '%s': %w", path, err)
	}
	return nil
}

func missing(path, key string) error {
	return fmt.Errorf("missing required field in %s: %s", path, key)
}

func invalid(path, key string, value interface{}) error {
	return fmt.Errorf("invalid value in %s: %s=%v", path, key, value)
}
