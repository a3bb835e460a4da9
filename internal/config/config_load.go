package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"

	"github.com/titanous/json5"
)

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Webhook: WebhookConfig{
			RequestTimeout:      DefaultRequestTimeout.String(),
			ConnectTimeout:      DefaultConnectTimeout.String(),
			MaxResponseBodySize: DefaultMaxResponseBodySize,
		},
		Actions: ActionsConfig{
			MaxActions: DefaultMaxActions,
		},
		Telemetry: TelemetryConfig{
			Protocol:    "grpc",
			ServiceName: "gatehook",
		},
		LogLevel: "info",
	}
}

// Load reads config from a JSON5 file, then overlays env vars.
// A missing file is not an error: defaults plus env are used.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err == nil {
		if err := json5.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// applyEnvOverrides overlays env vars onto the config.
// Env vars take precedence over file values.
func (c *Config) applyEnvOverrides() {
	envStr := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	// Filter policies treat "" as a real value, so presence is what counts.
	envPolicy := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	envBool := func(key string, dst *bool) {
		if v := os.Getenv(key); v != "" {
			*dst = v == "true" || v == "1"
		}
	}

	envStr("DISCORD_TOKEN", &c.Discord.Token)
	envStr("GATEHOOK_DISCORD_TOKEN", &c.Discord.Token)
	envStr("WEBHOOK_URL", &c.Webhook.URL)
	envStr("GATEHOOK_WEBHOOK_URL", &c.Webhook.URL)

	envBool("INSECURE_MODE", &c.Webhook.InsecureMode)
	envBool("GATEHOOK_INSECURE_MODE", &c.Webhook.InsecureMode)
	envStr("GATEHOOK_HTTP_TIMEOUT", &c.Webhook.RequestTimeout)
	envStr("GATEHOOK_HTTP_CONNECT_TIMEOUT", &c.Webhook.ConnectTimeout)
	if v := os.Getenv("GATEHOOK_MAX_RESPONSE_BODY_SIZE"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			c.Webhook.MaxResponseBodySize = n
		}
	}
	if v := os.Getenv("GATEHOOK_MAX_ACTIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Actions.MaxActions = n
		}
	}

	envPolicy("GATEHOOK_MESSAGE_DIRECT", &c.Filters.MessageDirect)
	envPolicy("GATEHOOK_MESSAGE_GUILD", &c.Filters.MessageGuild)
	envPolicy("GATEHOOK_REACTION_ADD_DIRECT", &c.Filters.ReactionAddDirect)
	envPolicy("GATEHOOK_REACTION_ADD_GUILD", &c.Filters.ReactionAddGuild)
	envPolicy("GATEHOOK_REACTION_REMOVE_DIRECT", &c.Filters.ReactionRemoveDirect)
	envPolicy("GATEHOOK_REACTION_REMOVE_GUILD", &c.Filters.ReactionRemoveGuild)

	// Telemetry
	envStr("GATEHOOK_OTEL_ENDPOINT", &c.Telemetry.Endpoint)
	envStr("GATEHOOK_OTEL_PROTOCOL", &c.Telemetry.Protocol)
	envStr("GATEHOOK_OTEL_SERVICE_NAME", &c.Telemetry.ServiceName)
	envBool("GATEHOOK_OTEL_ENABLED", &c.Telemetry.Enabled)
	envBool("GATEHOOK_OTEL_INSECURE", &c.Telemetry.Insecure)

	envStr("GATEHOOK_LOG_LEVEL", &c.LogLevel)
}

// Validate reports the first configuration problem that would stop the bridge
// from running.
func (c *Config) Validate() error {
	if c.Discord.Token == "" {
		return errors.New("discord token is required (GATEHOOK_DISCORD_TOKEN)")
	}
	if c.Webhook.URL == "" {
		return errors.New("webhook url is required (GATEHOOK_WEBHOOK_URL)")
	}
	u, err := url.Parse(c.Webhook.URL)
	if err != nil {
		return fmt.Errorf("invalid webhook url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("webhook url must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("webhook url has no host")
	}
	if c.Telemetry.Enabled {
		switch c.Telemetry.Protocol {
		case "", "grpc", "http":
		default:
			return fmt.Errorf("unknown telemetry protocol %q", c.Telemetry.Protocol)
		}
	}
	return nil
}

const secretMask = "***"

// MaskedCopy returns a deep copy of the config with all secret fields masked.
// Used by the config and doctor commands.
func (c *Config) MaskedCopy() *Config {
	// Deep copy via JSON round-trip
	data, err := json.Marshal(c)
	if err != nil {
		return &Config{}
	}
	cp := Default()
	if err := json.Unmarshal(data, cp); err != nil {
		return &Config{}
	}

	maskNonEmpty(&cp.Discord.Token)
	for k := range cp.Telemetry.Headers {
		cp.Telemetry.Headers[k] = secretMask
	}
	return cp
}

func maskNonEmpty(s *string) {
	if *s != "" {
		*s = secretMask
	}
}
