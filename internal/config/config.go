// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - New returns a Config holding every default.
// - Load layers an optional YAML file and RENTURA_* environment variables on top.
// - Validation errors wrap ErrInvalidConfig, source errors wrap ErrLoadConfig.
package config

import (
	"strings"
	"time"

	"github.com/okian/rentura/internal/domain/findings"
	"github.com/okian/rentura/internal/domain/presenter"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log lines.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8000".
	Addr string `koanf:"addr"`

	// UpstreamURL is the analysis endpoint receiving the PDF upload.
	UpstreamURL string `koanf:"upstream_url"`

	// UpstreamTimeout bounds a single analysis call, e.g. "5m".
	UpstreamTimeout time.Duration `koanf:"upstream_timeout"`

	// MaxUploadBytes caps the accepted PDF size.
	MaxUploadBytes int64 `koanf:"max_upload_bytes"`

	// AllowedOrigins lists origins allowed by CORS. Empty disables CORS headers.
	AllowedOrigins []string `koanf:"allowed_origins"`

	// MarkerPhrases identify probability-declaration lines in the summary.
	MarkerPhrases []string `koanf:"marker_phrases"`

	// EmptyMessage is shown when no clause looks risky.
	EmptyMessage string `koanf:"empty_message"`

	// MetricsEnabled toggles the analysis counters.
	MetricsEnabled bool `koanf:"metrics_enabled"`

	// MetricsNamespace prefixes every exported metric name.
	MetricsNamespace string `koanf:"metrics_namespace"`

	// MetricsLabels are constant labels as "name=value", e.g. "env=prod".
	MetricsLabels []string `koanf:"metrics_labels"`

	// MetricsRefreshInterval is how often system gauges refresh.
	MetricsRefreshInterval time.Duration `koanf:"metrics_refresh_interval"`
}

// Defaults.
const (
	defaultAddr            = ":8000"
	defaultUpstreamURL     = "http://localhost:8080/api/analyse"
	defaultUpstreamTimeout = 5 * time.Minute
	defaultMaxUploadBytes  = 20 << 20
	defaultMetricsNS       = "rentura"
	defaultMetricsRefresh  = 10 * time.Second
)

// New creates a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:               "info",
		LogFormat:              "text",
		Addr:                   defaultAddr,
		UpstreamURL:            defaultUpstreamURL,
		UpstreamTimeout:        defaultUpstreamTimeout,
		MaxUploadBytes:         defaultMaxUploadBytes,
		AllowedOrigins:         []string{"http://localhost:5173"},
		MarkerPhrases:          []string{findings.DefaultMarkerPhrase},
		EmptyMessage:           presenter.DefaultEmptyMessage,
		MetricsEnabled:         true,
		MetricsNamespace:       defaultMetricsNS,
		MetricsRefreshInterval: defaultMetricsRefresh,
	}
}

// MetricsLabelMap parses MetricsLabels. Malformed entries are skipped;
// Validate reports them.
func (c *Config) MetricsLabelMap() map[string]string {
	out := make(map[string]string, len(c.MetricsLabels))
	for _, l := range c.MetricsLabels {
		if k, v, ok := parseLabel(l); ok {
			out[k] = v
		}
	}
	return out
}

func parseLabel(l string) (string, string, bool) {
	k, v, ok := strings.Cut(l, "=")
	k = strings.TrimSpace(k)
	if !ok || k == "" {
		return "", "", false
	}
	return k, strings.TrimSpace(v), true
}
