// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config provides configuration management for survey-relay with
// support for multiple configuration sources and a well-defined precedence
// order. It lets deployments describe their platform environments through
// configuration files while maintaining flexibility with environment
// variables and command-line overrides.
//
// Configuration sources (in precedence order, highest to lowest):
//  1. Command-line flags
//  2. Environment variables
//  3. Configuration file
//  4. Built-in defaults
//
// The package supports YAML configuration files and provides automatic
// discovery of configuration in standard locations. Client credentials are
// never part of the file; they come exclusively from the environment
// (optionally seeded from a .env file).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	relayerrors "github.com/sirseerhq/survey-relay/internal/errors"
)

// LoadConfig loads configuration from multiple sources and applies them in
// the correct precedence order. If configPath is provided, it loads from
// that specific file. Otherwise, it searches standard locations:
//   - .survey-relay.yaml (current directory)
//   - .survey-relay.yml (current directory)
//   - config/survey-relay.yaml
//   - ~/.survey-relay/config.yaml
//
// A .env file in the working directory is loaded first so that credentials
// and overrides set there behave exactly like real environment variables.
// Environment variables are applied after loading the config file, allowing
// runtime overrides. Path expansion (~ and environment variables) is
// performed on directory paths.
//
// Returns an error if the specified config file cannot be loaded, but will
// succeed with defaults if no config file is found in standard locations.
func LoadConfig(configPath string) (*Config, error) {
	// Seed process environment from .env when present. Missing file is fine.
	_ = godotenv.Load()

	// Start with defaults
	cfg := DefaultConfig()

	// Try to load config file if path is provided
	if configPath != "" {
		if err := loadConfigFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	} else {
		// Try default locations
		defaultPaths := []string{
			".survey-relay.yaml",
			".survey-relay.yml",
			filepath.Join("config", "survey-relay.yaml"),
			filepath.Join(os.Getenv("HOME"), ".survey-relay", "config.yaml"),
		}

		for _, path := range defaultPaths {
			if _, err := os.Stat(path); err == nil {
				if err := loadConfigFile(path, cfg); err != nil {
					return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
				}
				break
			}
		}
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Expand paths
	cfg.Output.BaseDirectory = expandPath(cfg.Output.BaseDirectory)
	cfg.Logging.Directory = expandPath(cfg.Logging.Directory)

	return cfg, nil
}

// loadConfigFile reads and parses a YAML config file
func loadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(cfg *Config) {
	// Environment selection
	if env := os.Getenv("VIBRENT_ENVIRONMENT"); env != "" {
		cfg.Environment.Default = env
	}

	// Output location
	if dir := os.Getenv("SURVEY_RELAY_OUTPUT_DIR"); dir != "" {
		cfg.Output.BaseDirectory = dir
	}

	// Export settings
	if maxSurveys := os.Getenv("SURVEY_RELAY_MAX_SURVEYS"); maxSurveys != "" {
		if n, err := parsePositiveInt(maxSurveys); err == nil {
			cfg.Export.Request.MaxSurveys = n
		}
	}
	if cont := os.Getenv("SURVEY_RELAY_CONTINUE_ON_FAILURE"); cont != "" {
		cfg.Export.Monitoring.ContinueOnFailure = parseBool(cont)
	}

	// Logging
	if level := os.Getenv("SURVEY_RELAY_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
}

// expandPath expands ~ and environment variables in paths
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home := os.Getenv("HOME")
		if home == "" {
			home = os.Getenv("USERPROFILE") // Windows
		}
		path = filepath.Join(home, path[2:])
	}
	return os.ExpandEnv(path)
}

// parsePositiveInt parses a string to a positive integer
func parsePositiveInt(s string) (int, error) {
	var i int
	_, err := fmt.Sscanf(s, "%d", &i)
	if err != nil {
		return 0, fmt.Errorf("failed to parse integer from '%s': %w", s, err)
	}
	if i <= 0 {
		return 0, fmt.Errorf("value must be positive, got: %d", i)
	}
	return i, nil
}

// parseBool parses various boolean representations
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "yes" || s == "1" || s == "on"
}

// Target returns the endpoint configuration for the named environment, or
// for the configured default environment when name is empty. Selecting an
// environment that is not declared in the configuration is a configuration
// error.
func (c *Config) Target(name string) (EnvironmentTarget, error) {
	if name == "" {
		name = c.Environment.Default
	}
	target, ok := c.Environment.Environments[name]
	if !ok {
		return EnvironmentTarget{}, fmt.Errorf("environment %q not declared in configuration: %w",
			name, relayerrors.ErrInvalidConfig)
	}
	return target, nil
}

// Validate checks if the configuration contains valid values. It ensures at
// least one environment is declared with complete endpoints, the default
// environment exists, and export settings are within bounds. This should be
// called after loading configuration to catch invalid settings early.
func (c *Config) Validate() error {
	if len(c.Environment.Environments) == 0 {
		return fmt.Errorf("no environments declared: %w", relayerrors.ErrInvalidConfig)
	}
	if c.Environment.Default == "" {
		return fmt.Errorf("default environment cannot be empty: %w", relayerrors.ErrInvalidConfig)
	}
	if _, ok := c.Environment.Environments[c.Environment.Default]; !ok {
		return fmt.Errorf("default environment %q not declared: %w",
			c.Environment.Default, relayerrors.ErrInvalidConfig)
	}
	for name, target := range c.Environment.Environments {
		if target.BaseURL == "" {
			return fmt.Errorf("missing base_url for environment %q: %w", name, relayerrors.ErrInvalidConfig)
		}
		if target.TokenURL == "" {
			return fmt.Errorf("missing token_url for environment %q: %w", name, relayerrors.ErrInvalidConfig)
		}
	}
	if c.Export.Format != "JSON" && c.Export.Format != "CSV" {
		return fmt.Errorf("export format must be JSON or CSV, got: %q: %w",
			c.Export.Format, relayerrors.ErrInvalidConfig)
	}
	if c.Export.DateRange.DefaultDaysBack <= 0 {
		return fmt.Errorf("default_days_back must be positive, got: %d: %w",
			c.Export.DateRange.DefaultDaysBack, relayerrors.ErrInvalidConfig)
	}
	if c.Export.Monitoring.PollingIntervalSeconds <= 0 {
		return fmt.Errorf("polling_interval must be positive, got: %d: %w",
			c.Export.Monitoring.PollingIntervalSeconds, relayerrors.ErrInvalidConfig)
	}
	if c.Export.Monitoring.MaxWaitSeconds < 0 {
		return fmt.Errorf("max_wait_time cannot be negative, got: %d: %w",
			c.Export.Monitoring.MaxWaitSeconds, relayerrors.ErrInvalidConfig)
	}
	if c.Export.Request.MaxSurveys < 0 {
		return fmt.Errorf("max_surveys cannot be negative, got: %d: %w",
			c.Export.Request.MaxSurveys, relayerrors.ErrInvalidConfig)
	}
	return nil
}
