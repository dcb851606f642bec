package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/morepradnya1503/PGDAC-Project/internal/domain/auth"
	"github.com/morepradnya1503/PGDAC-Project/internal/metrics"
)

// DefaultRevalidateInterval is how often the controller re-checks the token
// against the backend while authenticated.
const DefaultRevalidateInterval = 5 * time.Minute

// NoticeType classifies a controller notification to the UI.
type NoticeType int

const (
	// NoticeWarning: the session will expire soon unless activity occurs.
	// Non-blocking; no state change.
	NoticeWarning NoticeType = iota
	// NoticeExpired: the inactivity timer fired and the session was destroyed.
	NoticeExpired
	// NoticeInvalidated: the backend rejected the credential (401) and the
	// session was destroyed.
	NoticeInvalidated
	// NoticeLoggedOut: the user logged out explicitly.
	NoticeLoggedOut
)

// String returns a string representation of the NoticeType.
func (n NoticeType) String() string {
	switch n {
	case NoticeWarning:
		return "warning"
	case NoticeExpired:
		return "expired"
	case NoticeInvalidated:
		return "invalidated"
	case NoticeLoggedOut:
		return "logged_out"
	default:
		return "unknown"
	}
}

// Notice is a controller notification delivered to subscribed UI listeners.
type Notice struct {
	Type    NoticeType
	Message string
}

// Config holds controller timing configuration. Zero values fall back to the
// package defaults.
type Config struct {
	// Timeout is the inactivity duration after which the session expires.
	Timeout time.Duration
	// WarningWindow is how long before expiry the warning notice fires.
	WarningWindow time.Duration
	// RestoreStaleness is the maximum age of the persisted last-activity
	// timestamp for a session to be restored at startup. Defaults to Timeout,
	// so restoration and the live timer enforce one coherent policy.
	RestoreStaleness time.Duration
	// RevalidateInterval is how often the token is re-checked against the
	// backend while authenticated.
	RevalidateInterval time.Duration
}

// Option configures optional controller collaborators.
type Option func(*Controller)

// WithMetrics attaches the metrics set the controller records session
// transitions into.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Controller) { c.metrics = m }
}

// WithAuditor attaches a best-effort audit sink for session lifecycle events.
func WithAuditor(a Auditor) Option {
	return func(c *Controller) { c.audit = a }
}

// Controller is the single source of truth for "is the user authenticated,
// and as whom". It mediates between the persisted store, the inactivity
// timer, and the network gateway, and exposes login/logout/validation to the
// UI. Construct exactly one per application instance and inject it; there is
// no package-level singleton.
type Controller struct {
	store   Store
	gw      Gateway
	timer   *ActivityTimer
	logger  *slog.Logger
	metrics *metrics.Metrics
	audit   Auditor

	restoreStaleness   time.Duration
	revalidateInterval time.Duration

	mu      sync.Mutex
	token   string
	user    *auth.User
	loading bool

	// authCancel tears down the authenticated epoch's scheduled tasks
	// (revalidation loop). Set on entering Authenticated, cleared on exit;
	// both the timer and the loop are always torn down together.
	authCancel context.CancelFunc
	wg         sync.WaitGroup

	listeners    map[int]func(Notice)
	nextListener int

	unsubTimer  func()
	unsubUnauth func()
}

// NewController wires a controller to its store and gateway. The controller
// starts in the Initializing state; call Restore to settle it.
func NewController(store Store, gw Gateway, cfg Config, logger *slog.Logger, opts ...Option) *Controller {
	restoreStaleness := cfg.RestoreStaleness
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if restoreStaleness <= 0 {
		restoreStaleness = timeout
	}
	revalidate := cfg.RevalidateInterval
	if revalidate <= 0 {
		revalidate = DefaultRevalidateInterval
	}

	c := &Controller{
		store:              store,
		gw:                 gw,
		timer:              NewActivityTimer(cfg.Timeout, cfg.WarningWindow, logger),
		logger:             logger,
		restoreStaleness:   restoreStaleness,
		revalidateInterval: revalidate,
		loading:            true,
		listeners:          make(map[int]func(Notice)),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.unsubTimer = c.timer.Subscribe(c.handleTimerEvent)
	c.unsubUnauth = gw.OnUnauthorized(c.handleUnauthorized)
	return c
}

// Close tears down the controller: the authenticated epoch (if any) is
// cancelled, background tasks are awaited, and event subscriptions removed.
// The persisted session is left untouched so it survives the next start.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.authCancel != nil {
		c.authCancel()
		c.authCancel = nil
	}
	c.mu.Unlock()

	c.timer.Stop()
	c.wg.Wait()
	c.unsubTimer()
	c.unsubUnauth()
}

// Subscribe registers a UI listener for session notices and returns a
// function that removes it.
func (c *Controller) Subscribe(fn func(Notice)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextListener
	c.nextListener++
	c.listeners[id] = fn

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners, id)
	}
}

// Restore attempts to recover a session from the persisted store at startup.
// A stored session is restored only when it is complete and its last-activity
// timestamp is fresher than the staleness threshold; otherwise it is
// discarded unconditionally. Restore settles the controller out of the
// Initializing state either way.
func (c *Controller) Restore() {
	snap, err := c.store.Load()
	if err != nil {
		c.logger.Warn("failed to load persisted session", "error", err)
	}

	if !snap.Complete() {
		c.logger.Debug("no stored session found")
		c.settleUnauthenticated()
		return
	}

	if age := time.Since(snap.LastActivity); age > c.restoreStaleness {
		c.logger.Info("stored session is stale, discarding it",
			"age", age, "threshold", c.restoreStaleness)
		if clearErr := c.store.Clear(); clearErr != nil {
			c.logger.Warn("failed to clear stale session", "error", clearErr)
		}
		c.auditEvent("restore_stale", snap.User.Email, age.String())
		c.settleUnauthenticated()
		return
	}

	// Restore immediately; background revalidation will catch a token the
	// server has since revoked.
	c.enterAuthenticated(snap.Token, snap.User)
	if err := c.store.Touch(); err != nil {
		c.logger.Warn("failed to refresh activity timestamp", "error", err)
	}
	c.auditEvent("restore", snap.User.Email, "")
	c.logger.Info("session restored", "user", snap.User.Email, "role", snap.User.Role)
}

// Login authenticates with the backend and, on success, persists the session
// and starts the inactivity timer. A rejected login returns an error matching
// ErrInvalidCredentials; an unreachable backend one matching
// ErrServerUnreachable. On failure the controller stays Unauthenticated.
func (c *Controller) Login(ctx context.Context, creds auth.Credentials) (*auth.User, error) {
	resp, err := c.gw.Login(ctx, creds)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			c.countLogin("invalid_credentials")
		default:
			c.countLogin("error")
		}
		return nil, err
	}

	user := auth.UserFromLogin(resp, creds.Email)

	// Persisting is the final step of the login; a failure here means no
	// session exists, in memory or on disk.
	if err := c.store.Save(resp.Token, &user); err != nil {
		c.countLogin("error")
		return nil, err
	}

	c.enterAuthenticated(resp.Token, &user)
	c.countLogin("success")
	c.auditEvent("login", user.Email, string(user.Role))
	c.logger.Info("login succeeded", "user", user.Email, "role", user.Role)
	return &user, nil
}

// Logout terminates the current session: persisted state is cleared, the
// timer and the revalidation loop stop. Idempotent; logging out without an
// active session is a no-op that still clears any persisted remnant.
func (c *Controller) Logout() {
	if err := c.store.Clear(); err != nil {
		c.logger.Warn("failed to clear persisted session", "error", err)
	}

	if c.leaveAuthenticated() {
		c.countLogout("user")
		c.auditEvent("logout", "", "")
		c.logger.Info("logged out")
		c.notify(Notice{Type: NoticeLoggedOut})
	}
}

// ValidateToken asks the backend whether the current credential is still
// valid. It never returns an error: true means valid (or indeterminate, e.g.
// the backend was unreachable — a transport failure is not a session
// signal), false means the backend definitively rejected the credential, in
// which case the session has already been torn down via the gateway's
// unauthorized broadcast.
func (c *Controller) ValidateToken(ctx context.Context) bool {
	user, err := c.gw.CurrentUser(ctx)
	if err == nil {
		// Adopt the server's copy of the user record.
		c.mu.Lock()
		if c.token != "" {
			c.user = user
		}
		c.mu.Unlock()
		return true
	}

	if errors.Is(err, ErrUnauthorized) {
		c.logger.Info("token validation failed, session invalidated")
		return false
	}

	c.logger.Warn("token validation inconclusive", "error", err)
	return true
}

// IsAuthenticated reports whether a session is active. It is recomputed from
// the underlying fields on every call, never cached.
func (c *Controller) IsAuthenticated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token != "" && c.user != nil && !c.loading
}

// Loading reports whether the controller is still Initializing (before
// Restore has settled it).
func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// CurrentUser returns a copy of the authenticated user, or false when there
// is no session.
func (c *Controller) CurrentUser() (auth.User, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token == "" || c.user == nil || c.loading {
		return auth.User{}, false
	}
	return *c.user, true
}

// Token returns the current bearer token, or empty when unauthenticated.
func (c *Controller) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// Remaining returns the time left until inactivity expiry, or 0 when there
// is no running session.
func (c *Controller) Remaining() time.Duration {
	return c.timer.Remaining()
}

// Touch records user activity, resetting the inactivity countdowns.
func (c *Controller) Touch() {
	c.timer.Touch()
	if err := c.store.Touch(); err != nil {
		c.logger.Warn("failed to refresh activity timestamp", "error", err)
	}
}

// enterAuthenticated installs the session in memory, starts the inactivity
// timer, and launches the revalidation loop under a cancellable context. Any
// prior epoch is replaced: a new login fully replaces the previous session.
func (c *Controller) enterAuthenticated(token string, user *auth.User) {
	c.mu.Lock()
	if c.authCancel != nil {
		c.authCancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.authCancel = cancel
	c.token = token
	c.user = user
	c.loading = false
	c.mu.Unlock()

	c.timer.Start()
	if c.metrics != nil {
		c.metrics.Authenticated.Set(1)
	}

	c.wg.Add(1)
	go c.revalidateLoop(ctx)
}

// leaveAuthenticated clears the in-memory session and stops the timer and
// the revalidation loop together. Returns false when there was no session,
// making every exit path idempotent: the timer timeout and the gateway's
// unauthorized broadcast may race, and whichever arrives second is a no-op.
func (c *Controller) leaveAuthenticated() bool {
	c.mu.Lock()
	had := c.token != "" || c.user != nil
	if c.authCancel != nil {
		c.authCancel()
		c.authCancel = nil
	}
	c.token = ""
	c.user = nil
	c.loading = false
	c.mu.Unlock()

	c.timer.Stop()
	if c.metrics != nil {
		c.metrics.Authenticated.Set(0)
	}
	return had
}

// settleUnauthenticated marks initialization complete with no session.
func (c *Controller) settleUnauthenticated() {
	c.mu.Lock()
	c.loading = false
	c.mu.Unlock()
	if c.metrics != nil {
		c.metrics.Authenticated.Set(0)
	}
}

// revalidateLoop re-checks the token on a fixed interval until the epoch
// context is cancelled. Cancellation is tied to leaving Authenticated, so the
// loop and the inactivity timer always stop together.
func (c *Controller) revalidateLoop(ctx context.Context) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.revalidateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// A definite rejection triggers the gateway's unauthorized
			// broadcast, which tears the session down; nothing more to do
			// here either way.
			c.ValidateToken(ctx)
		}
	}
}

// handleTimerEvent reacts to inactivity timer signals.
func (c *Controller) handleTimerEvent(event TimerEvent) {
	switch event {
	case TimerWarning:
		c.notify(Notice{
			Type:    NoticeWarning,
			Message: "session expiring soon due to inactivity",
		})
	case TimerTimeout:
		if err := c.store.Clear(); err != nil {
			c.logger.Warn("failed to clear persisted session", "error", err)
		}
		if c.leaveAuthenticated() {
			c.countLogout("timeout")
			c.auditEvent("timeout", "", "")
			c.logger.Info("session expired due to inactivity")
			c.notify(Notice{Type: NoticeExpired, Message: "session expired due to inactivity"})
		}
	}
}

// handleUnauthorized reacts to the gateway's process-wide unauthorized
// signal. The gateway has already cleared the persisted store; the controller
// only resets in-memory state and notifies the UI.
func (c *Controller) handleUnauthorized(message string) {
	if c.leaveAuthenticated() {
		c.countLogout("invalidated")
		c.auditEvent("invalidated", "", message)
		c.logger.Info("session invalidated by backend", "message", message)
		c.notify(Notice{Type: NoticeInvalidated, Message: message})
	}
}

// notify delivers a notice to all subscribed listeners, isolating panics so
// one failing listener cannot block the others.
func (c *Controller) notify(n Notice) {
	c.mu.Lock()
	listeners := make([]func(Notice), 0, len(c.listeners))
	for _, fn := range c.listeners {
		listeners = append(listeners, fn)
	}
	c.mu.Unlock()

	for _, fn := range listeners {
		func() {
			defer func() {
				if r := recover(); r != nil {
					c.logger.Error("session listener panicked", "notice", n.Type.String(), "panic", r)
				}
			}()
			fn(n)
		}()
	}
}

func (c *Controller) countLogin(result string) {
	if c.metrics != nil {
		c.metrics.LoginsTotal.WithLabelValues(result).Inc()
	}
}

func (c *Controller) countLogout(cause string) {
	if c.metrics != nil {
		c.metrics.LogoutsTotal.WithLabelValues(cause).Inc()
	}
}

// auditEvent records a lifecycle event, best-effort.
func (c *Controller) auditEvent(event, userEmail, detail string) {
	if c.audit == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := c.audit.Record(ctx, event, userEmail, detail); err != nil {
		c.logger.Warn("failed to record audit event", "event", event, "error", err)
	}
}
