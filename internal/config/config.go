package config

import (
	"net"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Defaults for connecting to a config API server on the local host.
const (
	DefaultAPIServer = "127.0.0.1"
	DefaultAPIPort   = 8082
)

// Report output formats.
const (
	OutputText = "text"
	OutputJSON = "json"
)

// Config holds the settings needed to reach the config store and render results.
type Config struct {
	APIServer string `yaml:"api_server"`
	APIPort   int    `yaml:"api_port"`

	// Either AuthToken or Username/Password must be set. The token wins
	// when both are present.
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
	AuthToken string `yaml:"auth_token"`

	// TenantID scopes network listings and lookups to one project.
	TenantID string `yaml:"tenant_id"`

	Output          string `yaml:"output"`
	Verbose         bool   `yaml:"verbose"`
	MetricsTextfile string `yaml:"metrics_textfile"`
}

// Default returns a Config populated with built-in defaults.
func Default() *Config {
	return &Config{
		APIServer: DefaultAPIServer,
		APIPort:   DefaultAPIPort,
		Output:    OutputText,
	}
}

// BaseURL returns the root URL of the config API.
func (c *Config) BaseURL() string {
	return "http://" + net.JoinHostPort(c.APIServer, strconv.Itoa(c.APIPort))
}

// UsesToken reports whether requests authenticate with X-Auth-Token.
func (c *Config) UsesToken() bool {
	return c.AuthToken != ""
}

// TenantUUID returns the tenant id in canonical dashed form, as the store
// expects it in parent_id filters. It returns "" when no tenant is set.
func (c *Config) TenantUUID() string {
	if c.TenantID == "" {
		return ""
	}
	id, err := uuid.Parse(c.TenantID)
	if err != nil {
		return ""
	}
	return id.String()
}

// TenantKey returns the tenant id without dashes, the form the tool reports
// and compares against a network's parent uuid.
func (c *Config) TenantKey() string {
	if id := c.TenantUUID(); id != "" {
		return strings.ReplaceAll(id, "-", "")
	}
	return ""
}
