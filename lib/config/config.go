// Copyright 2026 The Ladok-Go Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for the ladok CLI.
//
// Configuration is loaded from a single YAML file specified by:
//   - LADOK_CONFIG environment variable, or
//   - --config flag passed to the command
//
// with a fallback to ~/.config/ladok/config.yaml. The config file is
// the single source of truth; environment variables do not override
// individual values. The only expansion performed is ${HOME} and
// similar path variables for portability.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Environment selects which institution-hosted service to talk to.
type Environment string

const (
	// Production is the live grading service.
	Production Environment = "production"
	// Test is the sandboxed test service. Nothing reported there is
	// ever attested for real.
	Test Environment = "test"
)

// Config is the full CLI configuration.
type Config struct {
	// Environment selects production or test. Default: production.
	Environment Environment `yaml:"environment"`

	// Login configures authentication against the institution IdP.
	Login LoginConfig `yaml:"login"`

	// Paths configures file locations.
	Paths PathsConfig `yaml:"paths"`
}

// LoginConfig configures the SSO login flow.
type LoginConfig struct {
	// Username is the institution account name, e.g. "dbosk@kth.se".
	Username string `yaml:"username"`

	// IdentityProvider is the institution's SAML IdP base URL used to
	// pick the right entry in the discovery response.
	IdentityProvider string `yaml:"identity_provider"`
}

// PathsConfig configures file locations.
type PathsConfig struct {
	// CredentialFile is the age-sealed credential file written by
	// "ladok credential seal". Default: ${HOME}/.config/ladok/credentials.age
	CredentialFile string `yaml:"credential_file"`

	// SessionFile is where the authenticated session is persisted
	// between invocations. Default: ${HOME}/.cache/ladok/session.cbor
	SessionFile string `yaml:"session_file"`
}

// Default returns the default configuration. These are the values used
// for any field the config file leaves unset.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		Environment: Production,
		Paths: PathsConfig{
			CredentialFile: filepath.Join(homeDir, ".config", "ladok", "credentials.age"),
			SessionFile:    filepath.Join(homeDir, ".cache", "ladok", "session.cbor"),
		},
	}
}

// DefaultPath returns the fallback config file location,
// ~/.config/ladok/config.yaml.
func DefaultPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".config", "ladok", "config.yaml")
}

// Load loads configuration from the LADOK_CONFIG environment variable,
// falling back to DefaultPath. A missing fallback file is not an
// error; the defaults are returned.
func Load() (*Config, error) {
	if configPath := os.Getenv("LADOK_CONFIG"); configPath != "" {
		return LoadFile(configPath)
	}

	cfg, err := LoadFile(DefaultPath())
	if errors.Is(err, os.ErrNotExist) {
		cfg = Default()
		cfg.expandVariables()
		return cfg, nil
	}
	return cfg, err
}

// LoadFile loads configuration from a specific file path.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	cfg.expandVariables()
	return cfg, nil
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in paths.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}

	c.Paths.CredentialFile = expandVars(c.Paths.CredentialFile, vars)
	c.Paths.SessionFile = expandVars(c.Paths.SessionFile, vars)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Production && c.Environment != Test {
		errs = append(errs, fmt.Errorf("invalid environment: %q (must be production or test)", c.Environment))
	}
	if c.Login.Username == "" {
		errs = append(errs, fmt.Errorf("login.username is required"))
	}
	if c.Paths.CredentialFile == "" {
		errs = append(errs, fmt.Errorf("paths.credential_file is required"))
	}
	if c.Paths.SessionFile == "" {
		errs = append(errs, fmt.Errorf("paths.session_file is required"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// EnsurePaths creates the parent directories of the configured files
// if they do not exist.
func (c *Config) EnsurePaths() error {
	for _, path := range []string{c.Paths.CredentialFile, c.Paths.SessionFile} {
		if path == "" {
			continue
		}
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
		}
	}
	return nil
}
