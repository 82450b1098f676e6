package config

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrMissingCredentials is returned when neither a token nor a
// username/password pair is configured.
var ErrMissingCredentials = errors.New("either username/password or auth token is required")

// Validate checks the configuration for common errors.
func (c *Config) Validate() error {
	if c.APIServer == "" {
		return fmt.Errorf("api server is required")
	}
	if c.APIPort < 1 || c.APIPort > 65535 {
		return fmt.Errorf("api port %d out of range", c.APIPort)
	}
	if !c.UsesToken() && (c.Username == "" || c.Password == "") {
		return ErrMissingCredentials
	}
	if c.TenantID != "" {
		if _, err := uuid.Parse(c.TenantID); err != nil {
			return fmt.Errorf("tenant id %q is not a valid uuid: %w", c.TenantID, err)
		}
	}
	switch c.Output {
	case OutputText, OutputJSON:
	default:
		return fmt.Errorf("unsupported output format %q (expected %s or %s)", c.Output, OutputText, OutputJSON)
	}
	return nil
}
