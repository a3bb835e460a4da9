package config

import (
	"encoding/json"
	"fmt"
	"time"
)

// FlexibleStringSlice accepts both ["str"] and [123] in JSON.
type FlexibleStringSlice []string

func (f *FlexibleStringSlice) UnmarshalJSON(data []byte) error {
	var ss []string
	if err := json.Unmarshal(data, &ss); err == nil {
		*f = ss
		return nil
	}
	var raw []interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	result := make([]string, 0, len(raw))
	for _, v := range raw {
		switch val := v.(type) {
		case string:
			result = append(result, val)
		case float64:
			result = append(result, fmt.Sprintf("%.0f", val))
		default:
			result = append(result, fmt.Sprintf("%v", val))
		}
	}
	*f = result
	return nil
}

// Config is the root configuration for the gatehook bridge.
// It is immutable once Load returns.
type Config struct {
	Discord   DiscordConfig   `json:"discord"`
	Webhook   WebhookConfig   `json:"webhook"`
	Actions   ActionsConfig   `json:"actions"`
	Filters   FiltersConfig   `json:"filters"`
	Telemetry TelemetryConfig `json:"telemetry,omitempty"`
	LogLevel  string          `json:"log_level,omitempty"` // "debug", "info" (default), "warn", "error"
}

// WebhookConfig configures the outbound HTTP round-trip.
type WebhookConfig struct {
	URL                 string `json:"url"`
	InsecureMode        bool   `json:"insecure_mode,omitempty"`          // accept invalid TLS certificates
	RequestTimeout      string `json:"request_timeout,omitempty"`        // Go duration, default "30s"
	ConnectTimeout      string `json:"connect_timeout,omitempty"`        // Go duration, default "10s"
	MaxResponseBodySize int64  `json:"max_response_body_size,omitempty"` // bytes, default 131072
}

const (
	DefaultRequestTimeout      = 30 * time.Second
	DefaultConnectTimeout      = 10 * time.Second
	DefaultMaxResponseBodySize = 128 * 1024
	DefaultMaxActions          = 5

	// MaxResponseBodySizeCeiling caps max_response_body_size.
	MaxResponseBodySizeCeiling = 64 * 1024 * 1024
)

// Timeouts parses the configured durations, falling back to defaults for
// empty or invalid values.
func (w WebhookConfig) Timeouts() (request, connect time.Duration) {
	return parseDuration(w.RequestTimeout, DefaultRequestTimeout), parseDuration(w.ConnectTimeout, DefaultConnectTimeout)
}

// BodyLimit returns the response body limit in bytes, clamped to
// MaxResponseBodySizeCeiling.
func (w WebhookConfig) BodyLimit() int64 {
	switch {
	case w.MaxResponseBodySize <= 0:
		return DefaultMaxResponseBodySize
	case w.MaxResponseBodySize > MaxResponseBodySizeCeiling:
		return MaxResponseBodySizeCeiling
	}
	return w.MaxResponseBodySize
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// ActionsConfig bounds what a single webhook response may do.
type ActionsConfig struct {
	MaxActions int `json:"max_actions,omitempty"` // default 5
}

// Limit returns the effective action cap.
func (a ActionsConfig) Limit() int {
	if a.MaxActions <= 0 {
		return DefaultMaxActions
	}
	return a.MaxActions
}

// TelemetryConfig configures OpenTelemetry export for traces and spans.
// When enabled, spans are exported to an OTLP-compatible backend (Jaeger, Tempo, Datadog, etc.).
type TelemetryConfig struct {
	Enabled     bool              `json:"enabled,omitempty"`      // enable OTLP export (default false)
	Endpoint    string            `json:"endpoint,omitempty"`     // OTLP endpoint (e.g. "localhost:4317", "https://otel.example.com:4318")
	Protocol    string            `json:"protocol,omitempty"`     // "grpc" (default) or "http"
	Insecure    bool              `json:"insecure,omitempty"`     // plaintext transport (local dev)
	ServiceName string            `json:"service_name,omitempty"` // OTEL service name (default "gatehook")
	Headers     map[string]string `json:"headers,omitempty"`      // extra headers (e.g. auth tokens for cloud backends)
}
