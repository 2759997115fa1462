package config

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment variables understood by Load.
const (
	EnvPrefix = "RENTURA_"
	EnvConfig = EnvPrefix + "CONFIG"
)

// listKeys are the settings read from env as comma-separated lists.
var listKeys = map[string]struct{}{
	"allowed_origins": {},
	"marker_phrases":  {},
	"metrics_labels":  {},
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Load builds a Config by layering defaults, optional file, and env vars,
// and validates it for the HTTP service.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if RENTURA_CONFIG is set
//  3. env (prefix RENTURA_)
func Load(ctx context.Context) (*Config, error) {
	cfg, err := read(ctx)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadLocal is Load for tools that may never reach the analysis service:
// only the settings of the local pipeline are validated. Callers contacting
// upstream run ValidateUpstream once their overrides are applied.
func LoadLocal(ctx context.Context) (*Config, error) {
	cfg, err := read(ctx)
	if err != nil {
		return nil, err
	}
	if err := cfg.ValidateLocal(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func read(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv(EnvConfig); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// Map env keys like RENTURA_UPSTREAM_URL -> upstream_url (flat keys).
	// Underscores are kept to match the koanf tags on the struct; list
	// settings are comma separated.
	envProvider := env.ProviderWithValue(EnvPrefix, ".", func(key, value string) (string, interface{}) {
		key = strings.TrimPrefix(strings.ToLower(key), strings.ToLower(EnvPrefix))
		if _, ok := listKeys[key]; ok {
			return key, splitList(value)
		}
		return key, value
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	return &cfg, nil
}

// Validate checks the values a running service depends on.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if err := c.ValidateUpstream(); err != nil {
		return err
	}
	if c.MetricsRefreshInterval <= 0 {
		return fmt.Errorf("%w: metrics_refresh_interval must be positive", ErrInvalidConfig)
	}
	for _, l := range c.MetricsLabels {
		if _, _, ok := parseLabel(l); !ok {
			return fmt.Errorf("%w: metrics_labels entry %q must be name=value", ErrInvalidConfig, l)
		}
	}
	return c.ValidateLocal()
}

// ValidateUpstream checks the analysis endpoint settings.
func (c *Config) ValidateUpstream() error {
	if strings.TrimSpace(c.UpstreamURL) == "" {
		return fmt.Errorf("%w: upstream_url must not be empty", ErrInvalidConfig)
	}
	u, err := url.Parse(c.UpstreamURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: upstream_url must be an absolute http(s) URL", ErrInvalidConfig)
	}
	if c.UpstreamTimeout <= 0 {
		return fmt.Errorf("%w: upstream_timeout must be positive", ErrInvalidConfig)
	}
	return nil
}

// ValidateLocal checks the settings the findings pipeline depends on.
func (c *Config) ValidateLocal() error {
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("%w: max_upload_bytes must be positive", ErrInvalidConfig)
	}
	hasMarker := false
	for _, p := range c.MarkerPhrases {
		if strings.TrimSpace(p) != "" {
			hasMarker = true
			break
		}
	}
	if !hasMarker {
		return fmt.Errorf("%w: marker_phrases must contain at least one phrase", ErrInvalidConfig)
	}
	return nil
}
