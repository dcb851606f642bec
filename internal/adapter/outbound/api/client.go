// Package api is the single choke point for all backend HTTP calls. It
// injects the bearer credential, counts every call as user activity, and
// surfaces authentication failures as events rather than performing any
// navigation itself.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/morepradnya1503/PGDAC-Project/internal/domain/auth"
	"github.com/morepradnya1503/PGDAC-Project/internal/domain/session"
	"github.com/morepradnya1503/PGDAC-Project/internal/metrics"
)

const defaultValidationTTL = 30 * time.Second

// SessionStore is the persisted-session surface the gateway needs: reading
// the token, counting activity, and clearing the session on a definite 401.
type SessionStore interface {
	Load() (*session.Snapshot, error)
	Touch() error
	Clear() error
}

// UnauthorizedListener receives the process-wide unauthorized notification
// with the server-provided message, if any.
type UnauthorizedListener func(message string)

// Client talks to the WorkSphere REST backend.
type Client struct {
	baseURL       string
	timeout       time.Duration
	httpClient    *http.Client
	store         SessionStore
	logger        *slog.Logger
	metrics       *metrics.Metrics
	tracer        trace.Tracer
	validationTTL time.Duration

	// unauthorized listeners, keyed for removal.
	listenerMu   sync.Mutex
	listeners    map[int]UnauthorizedListener
	nextListener int

	// CurrentUser validation cache: one entry, keyed by token hash.
	cacheMu    sync.Mutex
	cacheKey   uint64
	cacheUser  *auth.User
	cacheUntil time.Time
	flight     singleflight.Group
}

// NewClient creates a gateway client backed by the given session store.
func NewClient(store SessionStore, opts ...Option) *Client {
	c := &Client{
		timeout:       10 * time.Second,
		store:         store,
		logger:        slog.Default(),
		validationTTL: defaultValidationTTL,
		listeners:     make(map[int]UnauthorizedListener),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{
			Timeout: c.timeout,
		}
	}
	if c.tracer == nil {
		c.tracer = otel.Tracer("worksphere/api")
	}

	return c
}

// OnUnauthorized registers a listener for the process-wide unauthorized
// signal and returns a function that removes it.
func (c *Client) OnUnauthorized(fn func(message string)) func() {
	c.listenerMu.Lock()
	defer c.listenerMu.Unlock()

	id := c.nextListener
	c.nextListener++
	c.listeners[id] = fn

	return func() {
		c.listenerMu.Lock()
		defer c.listenerMu.Unlock()
		delete(c.listeners, id)
	}
}

// Login authenticates with the backend. A rejection is returned as
// *InvalidCredentialsError; transport failures as *ServerUnreachableError.
// Login does not persist anything: the caller owns the save-on-success step.
func (c *Client) Login(ctx context.Context, creds auth.Credentials) (*auth.LoginResponse, error) {
	var resp auth.LoginResponse
	err := c.doRequest(ctx, http.MethodPost, "/auth/login", creds, &resp)
	if err != nil {
		// A 401 on the login endpoint means bad credentials, not an expired
		// session. 400 covers backends that validate the body first.
		var unauth *UnauthorizedError
		if errors.As(err, &unauth) {
			return nil, &InvalidCredentialsError{Message: unauth.Message}
		}
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusBadRequest {
			return nil, &InvalidCredentialsError{Message: apiErr.Message}
		}
		return nil, err
	}
	if resp.Token == "" {
		return nil, &APIError{Status: http.StatusOK, Message: "login response carried no token"}
	}
	c.invalidateValidationCache()
	return &resp, nil
}

// CurrentUser fetches the authenticated user from the backend "who am I"
// endpoint. Results are cached briefly (keyed by token) and concurrent calls
// are deduplicated, so the periodic revalidation loop and explicit lookups
// do not double-hit the backend.
func (c *Client) CurrentUser(ctx context.Context) (*auth.User, error) {
	rec, err := c.store.Load()
	if err != nil {
		return nil, err
	}
	if !rec.Complete() {
		return nil, &UnauthorizedError{Message: "no session"}
	}
	key := xxhash.Sum64String(rec.Token)

	c.cacheMu.Lock()
	if c.cacheKey == key && time.Now().Before(c.cacheUntil) && c.cacheUser != nil {
		user := *c.cacheUser
		c.cacheMu.Unlock()
		return &user, nil
	}
	c.cacheMu.Unlock()

	v, err, _ := c.flight.Do(strconv.FormatUint(key, 16), func() (any, error) {
		var payload auth.LoginResponse
		if err := c.doRequest(ctx, http.MethodGet, "/auth/me", nil, &payload); err != nil {
			return nil, err
		}
		user := auth.UserFromLogin(&payload, "")

		c.cacheMu.Lock()
		c.cacheKey = key
		c.cacheUser = &user
		c.cacheUntil = time.Now().Add(c.validationTTL)
		c.cacheMu.Unlock()

		return &user, nil
	})
	if err != nil {
		return nil, err
	}
	user := *(v.(*auth.User))
	return &user, nil
}

// Get fetches a role-scoped resource (e.g. "/hr/employees") and decodes the
// JSON response into out. Pass nil to discard the body.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.doRequest(ctx, http.MethodGet, path, nil, out)
}

// Health checks backend reachability without touching authentication.
func (c *Client) Health(ctx context.Context) error {
	return c.doRequest(ctx, http.MethodGet, "/health", nil, nil)
}

// errorBody is the JSON error shape the backend uses for non-2xx responses.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (b *errorBody) text() string {
	if b.Message != "" {
		return b.Message
	}
	return b.Error
}

// doRequest performs one HTTP call against the backend.
//
// Per-request behavior, in order: a correlation ID header is attached, the
// bearer token (if any) is read from the store and injected, the persisted
// last-activity timestamp is advanced (every call counts as activity), and
// the response is mapped to the error taxonomy: 401 clears the store and
// broadcasts unauthorized, 403 passes through, transport failures come back
// as a distinguished kind.
func (c *Client) doRequest(ctx context.Context, method, path string, body any, result any) error {
	url := strings.TrimRight(c.baseURL, "/") + path

	ctx, span := c.tracer.Start(ctx, "api.request", trace.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.path", path),
	))
	defer span.End()

	start := time.Now()
	status, err := c.do(ctx, method, url, body, result)
	c.record(method, status, err, time.Since(start))

	span.SetAttributes(attribute.Int("http.status_code", status))
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (c *Client) do(ctx context.Context, method, url string, body any, result any) (int, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}

	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("X-Request-ID", uuid.NewString())

	if rec, loadErr := c.store.Load(); loadErr == nil && rec.Complete() {
		httpReq.Header.Set("Authorization", "Bearer "+rec.Token)
	}

	// Every outgoing request counts as user activity.
	if touchErr := c.store.Touch(); touchErr != nil {
		c.logger.Warn("failed to refresh activity timestamp", "error", touchErr)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return 0, &ServerUnreachableError{Cause: err}
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return httpResp.StatusCode, fmt.Errorf("read response body: %w", err)
	}

	switch {
	case httpResp.StatusCode == http.StatusUnauthorized:
		var eb errorBody
		_ = json.Unmarshal(respBody, &eb)
		c.handleUnauthorized(eb.text())
		return httpResp.StatusCode, &UnauthorizedError{Message: eb.text()}

	case httpResp.StatusCode == http.StatusForbidden:
		// A permission error is not a session-validity signal: the session
		// stays intact and the caller decides what to show.
		var eb errorBody
		_ = json.Unmarshal(respBody, &eb)
		return httpResp.StatusCode, &ForbiddenError{Message: eb.text()}

	case httpResp.StatusCode < 200 || httpResp.StatusCode >= 300:
		var eb errorBody
		_ = json.Unmarshal(respBody, &eb)
		return httpResp.StatusCode, &APIError{Status: httpResp.StatusCode, Message: eb.text()}
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return httpResp.StatusCode, fmt.Errorf("unmarshal response: %w", err)
		}
	}

	return httpResp.StatusCode, nil
}

// handleUnauthorized clears the persisted session and broadcasts the
// process-wide unauthorized signal. Navigation is the consumer's concern.
func (c *Client) handleUnauthorized(message string) {
	c.logger.Info("backend reported unauthorized, clearing session", "message", message)

	if err := c.store.Clear(); err != nil {
		c.logger.Warn("failed to clear session after 401", "error", err)
	}
	c.invalidateValidationCache()
	if c.metrics != nil {
		c.metrics.UnauthorizedTotal.Inc()
	}

	c.listenerMu.Lock()
	listeners := make([]UnauthorizedListener, 0, len(c.listeners))
	for _, fn := range c.listeners {
		listeners = append(listeners, fn)
	}
	c.listenerMu.Unlock()

	for _, fn := range listeners {
		fn(message)
	}
}

func (c *Client) invalidateValidationCache() {
	c.cacheMu.Lock()
	c.cacheKey = 0
	c.cacheUser = nil
	c.cacheUntil = time.Time{}
	c.cacheMu.Unlock()
}

// record updates request metrics. status classification mirrors the error
// taxonomy rather than raw HTTP codes.
func (c *Client) record(method string, status int, err error, elapsed time.Duration) {
	if c.metrics == nil {
		return
	}
	label := "ok"
	switch {
	case err == nil:
		label = "ok"
	case status == http.StatusUnauthorized:
		label = "unauthorized"
	case status == http.StatusForbidden:
		label = "forbidden"
	case status == 0:
		label = "unreachable"
	default:
		label = "error"
	}
	c.metrics.RequestsTotal.WithLabelValues(method, label).Inc()
	c.metrics.RequestDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}
