package session

import (
	"log/slog"
	"sync"
	"time"
)

// Inactivity timeout defaults. The warning fires WarningWindow before the
// timeout so the UI can prompt the user to save their work.
const (
	// DefaultTimeout is the inactivity duration after which the session expires.
	DefaultTimeout = 30 * time.Minute

	// DefaultWarningWindow is how long before expiry the warning event fires.
	DefaultWarningWindow = 5 * time.Minute
)

// TimerEvent is a lifecycle signal emitted by the ActivityTimer.
type TimerEvent int

const (
	// TimerWarning fires once per activity period, WarningWindow before expiry.
	// The timer keeps running.
	TimerWarning TimerEvent = iota
	// TimerTimeout fires when the inactivity timeout elapses. The timer stops.
	TimerTimeout
)

// String returns a string representation of the TimerEvent.
func (e TimerEvent) String() string {
	switch e {
	case TimerWarning:
		return "warning"
	case TimerTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// ActivityTimer detects user inactivity and emits warning/timeout events.
// It is Stopped until Start is called; while Running, every Touch resets both
// countdowns atomically. It never polls the backend.
type ActivityTimer struct {
	timeout time.Duration
	warning time.Duration
	logger  *slog.Logger

	mu           sync.Mutex
	running      bool
	generation   uint64
	lastActivity time.Time
	warnTimer    *time.Timer
	expireTimer  *time.Timer
	listeners    map[int]func(TimerEvent)
	nextListener int
}

// NewActivityTimer creates a stopped ActivityTimer. A non-positive timeout
// falls back to DefaultTimeout; a warning window that is non-positive or not
// smaller than the timeout falls back to DefaultWarningWindow (clamped to the
// timeout if still too large).
func NewActivityTimer(timeout, warningWindow time.Duration, logger *slog.Logger) *ActivityTimer {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if warningWindow <= 0 || warningWindow >= timeout {
		warningWindow = DefaultWarningWindow
		if warningWindow >= timeout {
			warningWindow = timeout / 2
		}
	}
	return &ActivityTimer{
		timeout:   timeout,
		warning:   warningWindow,
		logger:    logger,
		listeners: make(map[int]func(TimerEvent)),
	}
}

// Subscribe registers a listener for timer events and returns a function that
// removes it. Listeners are invoked outside the timer's lock; a panicking
// listener is recovered and logged so it cannot block the others.
func (t *ActivityTimer) Subscribe(fn func(TimerEvent)) func() {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := t.nextListener
	t.nextListener++
	t.listeners[id] = fn

	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		delete(t.listeners, id)
	}
}

// Start transitions the timer from Stopped to Running and arms both
// countdowns. Starting an already-running timer resets it.
func (t *ActivityTimer) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.running = true
	t.resetLocked()
	t.logger.Debug("activity timer started", "timeout", t.timeout, "warning_window", t.warning)
}

// Stop cancels both countdowns and returns to Stopped from any state.
func (t *ActivityTimer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.running {
		return
	}
	t.running = false
	t.generation++
	t.cancelLocked()
	t.logger.Debug("activity timer stopped")
}

// Touch records user activity: while Running, both countdowns are reset
// together. Touching a stopped timer does nothing.
func (t *ActivityTimer) Touch() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.running {
		return
	}
	t.resetLocked()
}

// Running reports whether the timer is in the Running state.
func (t *ActivityTimer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// Remaining returns the duration until expiry, or 0 when stopped.
func (t *ActivityTimer) Remaining() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.running {
		return 0
	}
	remaining := t.timeout - time.Since(t.lastActivity)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Timeout returns the configured inactivity timeout.
func (t *ActivityTimer) Timeout() time.Duration {
	return t.timeout
}

// resetLocked arms (or re-arms) both countdowns for a new activity period.
// Caller must hold t.mu. The generation counter invalidates callbacks from
// timers that fire after having been superseded by a reset.
func (t *ActivityTimer) resetLocked() {
	t.generation++
	gen := t.generation
	t.lastActivity = time.Now()
	t.cancelLocked()

	t.warnTimer = time.AfterFunc(t.timeout-t.warning, func() {
		t.fire(gen, TimerWarning)
	})
	t.expireTimer = time.AfterFunc(t.timeout, func() {
		t.fire(gen, TimerTimeout)
	})
}

// cancelLocked stops any armed countdowns. Caller must hold t.mu.
func (t *ActivityTimer) cancelLocked() {
	if t.warnTimer != nil {
		t.warnTimer.Stop()
		t.warnTimer = nil
	}
	if t.expireTimer != nil {
		t.expireTimer.Stop()
		t.expireTimer = nil
	}
}

// fire delivers an event to all listeners if the firing timer's generation is
// still current. A timeout transitions the timer back to Stopped before the
// listeners run.
func (t *ActivityTimer) fire(gen uint64, event TimerEvent) {
	t.mu.Lock()
	if !t.running || gen != t.generation {
		t.mu.Unlock()
		return
	}
	if event == TimerTimeout {
		t.running = false
		t.generation++
		t.cancelLocked()
	}
	listeners := make([]func(TimerEvent), 0, len(t.listeners))
	for _, fn := range t.listeners {
		listeners = append(listeners, fn)
	}
	t.mu.Unlock()

	t.logger.Debug("activity timer event", "event", event.String())
	for _, fn := range listeners {
		t.notify(fn, event)
	}
}

// notify invokes a single listener, isolating panics so one failing listener
// cannot block the others or kill the timer goroutine.
func (t *ActivityTimer) notify(fn func(TimerEvent), event TimerEvent) {
	defer func() {
		if r := recover(); r != nil {
			t.logger.Error("session timer listener panicked", "event", event.String(), "panic", r)
		}
	}()
	fn(event)
}
