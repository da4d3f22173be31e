package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/catering/core/catalog"
	"github.com/kilianp07/catering/core/dispatch"
	"github.com/kilianp07/catering/core/metrics"
	"github.com/kilianp07/catering/infra/groundcontrol"
	"github.com/kilianp07/catering/infra/mqtt"
	"github.com/kilianp07/catering/infra/nats"
)

type Config struct {
	Dispatch      dispatch.Config      `json:"dispatch"`
	Catalog       catalog.Config       `json:"catalog"`
	GroundControl groundcontrol.Config `json:"ground_control"`
	// MQTT status publishing is enabled when a broker is set.
	MQTT mqtt.Config `json:"mqtt"`
	// NATS status publishing is enabled when a URL is set.
	NATS    nats.Config    `json:"nats"`
	Metrics metrics.Config `json:"metrics"`
	Logging LoggingConfig  `json:"logging"`
	HTTP    HTTPConfig     `json:"http"`
}

// Load reads path (yaml or json) and applies K_ prefixed environment
// overrides, K_DISPATCH__GLOBAL_FLEET_LIMIT=3 for instance. An empty path
// loads defaults and environment only.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("K_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults completes every section.
func (c *Config) SetDefaults() {
	c.Dispatch.SetDefaults()
	c.Catalog.SetDefaults()
	c.GroundControl.SetDefaults()
	c.NATS.SetDefaults()
	c.Metrics.SetDefaults()
	c.Logging.SetDefaults()
	c.HTTP.SetDefaults()
	if c.MQTT.Broker != "" {
		c.MQTT.SetDefaults()
	}
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Dispatch.Validate(); err != nil {
		return fmt.Errorf("dispatch: %w", err)
	}
	if err := c.Catalog.Validate(); err != nil {
		return err
	}
	if err := c.GroundControl.Validate(); err != nil {
		return fmt.Errorf("ground_control: %w", err)
	}
	if err := c.Metrics.Validate(); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	return c.HTTP.Validate()
}
