package api

import (
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/morepradnya1503/PGDAC-Project/internal/metrics"
)

// Option is a functional option for configuring a Client.
type Option func(*Client)

// WithBaseURL sets the backend base URL (e.g. "http://localhost:8080/api").
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithTimeout sets the HTTP request timeout.
// If not set, defaults to 10 seconds.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithHTTPClient sets a custom http.Client for making requests.
// This is useful for testing, proxying, or custom transport configurations.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithMetrics attaches the metrics set the client records request and
// unauthorized counters into. When absent, nothing is recorded.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithTracer sets the tracer used for per-request spans.
// Defaults to the global tracer provider.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *Client) {
		c.tracer = tracer
	}
}

// WithValidationCacheTTL sets how long a CurrentUser result is reused before
// the backend is asked again. If not set, defaults to 30 seconds. The TTL is
// deliberately far below the controller's revalidation interval so a cached
// "valid" can never mask a whole revalidation cycle.
func WithValidationCacheTTL(d time.Duration) Option {
	return func(c *Client) {
		c.validationTTL = d
	}
}
