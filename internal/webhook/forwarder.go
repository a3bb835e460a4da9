// Package webhook sends gateway events to the configured HTTP endpoint and
// decodes the actions it answers with.
package webhook

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"github.com/samber/mo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/nextlevelbuilder/gatehook/internal/config"
)

const (
	headerEvent    = "X-Gatehook-Event"
	headerDelivery = "X-Gatehook-Delivery"
)

// Forwarder POSTs event payloads to one endpoint. It is safe for concurrent
// use; all callers share one HTTP client.
type Forwarder struct {
	endpoint  *url.URL
	client    *http.Client
	bodyLimit int64
	userAgent string
	tracer    trace.Tracer
}

// NewForwarder builds a Forwarder from config. version ends up in User-Agent.
func NewForwarder(cfg config.WebhookConfig, version string) (*Forwarder, error) {
	endpoint, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse webhook url: %w", err)
	}

	requestTimeout, connectTimeout := cfg.Timeouts()
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = (&net.Dialer{Timeout: connectTimeout}).DialContext
	if cfg.InsecureMode {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in via insecure_mode
	}

	return &Forwarder{
		endpoint:  endpoint,
		client:    &http.Client{Timeout: requestTimeout, Transport: transport},
		bodyLimit: cfg.BodyLimit(),
		userAgent: "gatehook/" + version,
		tracer:    otel.Tracer("github.com/nextlevelbuilder/gatehook/internal/webhook"),
	}, nil
}

// Send delivers payload under the given handler name and returns the decoded
// response. Transport failures are errors; an oversized or undecodable body is
// logged and yields None.
func (f *Forwarder) Send(ctx context.Context, handler string, payload any) (mo.Option[EventResponse], error) {
	none := mo.None[EventResponse]()

	ctx, span := f.tracer.Start(ctx, "webhook.send", trace.WithAttributes(attribute.String("gatehook.handler", handler)))
	defer span.End()

	body, err := json.Marshal(payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "marshal payload")
		return none, fmt.Errorf("marshal %s payload: %w", handler, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.urlFor(handler), bytes.NewReader(body))
	if err != nil {
		return none, fmt.Errorf("build webhook request: %w", err)
	}
	deliveryID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set(headerEvent, handler)
	req.Header.Set(headerDelivery, deliveryID)

	log := slog.With("handler", handler, "delivery_id", deliveryID)
	log.Debug("sending event to webhook", "bytes", len(body))

	resp, err := f.client.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		return none, fmt.Errorf("post %s event: %w", handler, err)
	}
	defer resp.Body.Close()

	success := resp.StatusCode >= 200 && resp.StatusCode < 300
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	log = log.With("status", resp.StatusCode)

	data, tooLarge, err := readLimited(resp.Body, f.bodyLimit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "read body")
		return none, fmt.Errorf("read %s response: %w", handler, err)
	}
	if tooLarge {
		log.Warn("webhook response exceeds size limit, ignoring it", "limit", f.bodyLimit)
		span.SetStatus(codes.Error, "response too large")
		return none, nil
	}

	parsed, err := ParseEventResponse(data)
	if err != nil {
		if success {
			log.Warn("failed to parse webhook response", "error", err)
		} else {
			log.Debug("non-success webhook response without a valid body", "error", err)
		}
		return none, nil
	}

	span.SetAttributes(attribute.Int("gatehook.actions", len(parsed.Actions)))
	switch {
	case len(parsed.Actions) == 0:
		log.Debug("webhook response has no actions")
	case success:
		log.Info("webhook returned actions", "count", len(parsed.Actions))
	default:
		log.Warn("webhook returned non-success status but included actions", "count", len(parsed.Actions))
	}
	return mo.Some(parsed), nil
}

// urlFor appends the handler query parameter, keeping any the endpoint
// already carries.
func (f *Forwarder) urlFor(handler string) string {
	u := *f.endpoint
	q := u.Query()
	q.Set("handler", handler)
	u.RawQuery = q.Encode()
	return u.String()
}

// readLimited reads at most limit bytes. It reads one byte past the limit to
// tell an exact fit from an overflow.
func readLimited(r io.Reader, limit int64) ([]byte, bool, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, false, err
	}
	if int64(len(data)) > limit {
		return nil, true, nil
	}
	return data, false, nil
}

// Endpoint returns the configured endpoint with credentials redacted.
func (f *Forwarder) Endpoint() string {
	return f.endpoint.Redacted()
}
