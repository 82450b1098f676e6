package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Environment variables that override file settings.
const (
	EnvAPIServer = "RTCTL_API_SERVER"
	EnvAPIPort   = "RTCTL_API_PORT"
	EnvUsername  = "RTCTL_USERNAME"
	EnvPassword  = "RTCTL_PASSWORD"
	EnvAuthToken = "RTCTL_AUTH_TOKEN"
	EnvTenantID  = "RTCTL_TENANT_ID"
)

// Load returns the defaults overlaid with the YAML file at path (if any)
// and then with RTCTL_* environment variables. Validation is left to the
// caller, since command-line flags are applied afterwards.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to unmarshal yaml: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvAPIServer); v != "" {
		c.APIServer = v
	}
	if v := os.Getenv(EnvAPIPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvAPIPort, v, err)
		}
		c.APIPort = port
	}
	if v := os.Getenv(EnvUsername); v != "" {
		c.Username = v
	}
	if v := os.Getenv(EnvPassword); v != "" {
		c.Password = v
	}
	if v := os.Getenv(EnvAuthToken); v != "" {
		c.AuthToken = v
	}
	if v := os.Getenv(EnvTenantID); v != "" {
		c.TenantID = v
	}
	return nil
}
