package config

import "fmt"

// HTTPConfig configures the inbound API.
type HTTPConfig struct {
	Address string `json:"address"`
	// AdminToken, when set, is required as a bearer token on /admin and /trips.
	AdminToken string `json:"admin_token"`
}

// SetDefaults applies sane defaults.
func (c *HTTPConfig) SetDefaults() {
	if c.Address == "" {
		c.Address = ":8080"
	}
}

// Validate checks mandatory fields.
func (c HTTPConfig) Validate() error {
	if c.Address == "" {
		return fmt.Errorf("http: address is required")
	}
	return nil
}
