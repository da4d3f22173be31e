package groundcontrol

import (
	"fmt"
	"net/url"

	"github.com/kilianp07/catering/auth"
)

// Config locates the ground-control and orchestrator services.
type Config struct {
	BaseURL         string `json:"base_url"`
	OrchestratorURL string `json:"orchestrator_url"`
	TimeoutSeconds  int    `json:"timeout_seconds"`
	// Offline starts the service with synthesized ground-control answers.
	Offline bool `json:"offline"`
	// Auth enables OAuth2 client credentials on outbound calls.
	Auth auth.Conf `json:"auth"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 10
	}
	if c.OrchestratorURL == "" {
		c.OrchestratorURL = c.BaseURL
	}
}

// Validate checks that online mode has usable URLs.
func (c Config) Validate() error {
	if c.Offline && c.BaseURL == "" {
		return nil
	}
	for name, raw := range map[string]string{"base_url": c.BaseURL, "orchestrator_url": c.OrchestratorURL} {
		if raw == "" {
			return fmt.Errorf("%s is required unless offline", name)
		}
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%s %q is not an absolute URL", name, raw)
		}
	}
	if c.Auth.Enabled() && c.Auth.AuthURL == "" {
		return fmt.Errorf("auth.auth_url is required with a client_id")
	}
	return nil
}
