// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// Default timeout tunables.
const (
	DefaultIdleDuration   = 10 * time.Minute
	DefaultWarningSeconds = 30
)

var (
	// ErrAlreadyStarted is returned by Start on a controller that was started.
	ErrAlreadyStarted = errors.New("session: controller already started")

	// ErrDisposed is returned when a disposed controller is used.
	ErrDisposed = errors.New("session: controller disposed")

	// ErrExpired is returned when sources are attached to an expired controller.
	ErrExpired = errors.New("session: controller expired")
)

// =============================================================================
// CONFIGURATION
// =============================================================================

// Config holds the timeout tunables.
type Config struct {
	// IdleDuration is how long without activity before the warning (default: 10 minutes)
	IdleDuration time.Duration

	// WarningSeconds is the countdown length (default: 30)
	WarningSeconds int

	// TickInterval is the countdown granularity (default: 1 second)
	TickInterval time.Duration
}

// DefaultConfig returns the default timeout configuration.
func DefaultConfig() Config {
	return Config{
		IdleDuration:   DefaultIdleDuration,
		WarningSeconds: DefaultWarningSeconds,
		TickInterval:   DefaultTickInterval,
	}
}

// Validate checks the tunables.
func (c Config) Validate() error {
	if c.IdleDuration <= 0 {
		return fmt.Errorf("session: idle duration must be positive, got %v", c.IdleDuration)
	}
	if c.WarningSeconds < 0 {
		return fmt.Errorf("session: warning seconds must not be negative, got %d", c.WarningSeconds)
	}
	if c.TickInterval < 0 {
		return fmt.Errorf("session: tick interval must not be negative, got %v", c.TickInterval)
	}
	return nil
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock injects the clock driving both timers.
func WithClock(clock Clock) Option {
	return func(c *Controller) { c.clock = clock }
}

// WithObserver registers fn to receive every visible change of the View.
//
// Views are delivered outside the controller lock, from whichever goroutine
// caused the change, so two changes racing each other may arrive out of
// order: a Warning tick can land after the Active view that cancelled it.
// Treat a delivery as a signal to redraw and read the state with Snapshot.
func WithObserver(fn func(View)) Option {
	return func(c *Controller) { c.observer = fn }
}

// WithTransitionHook registers fn to receive every state change.
func WithTransitionHook(fn func(Transition)) Option {
	return func(c *Controller) { c.onTransition = fn }
}

// WithErrorHook registers fn to receive a failed teardown.
func WithErrorHook(fn func(error)) Option {
	return func(c *Controller) { c.onError = fn }
}

// =============================================================================
// SESSION TIMEOUT CONTROLLER
// =============================================================================

// Controller is the idle timeout state machine for one session.
//
// Every event is serialized by mu. Each arm of the idle timer and each start
// of the countdown gets a fresh epoch; a timer callback carrying an older
// epoch is dropped, so the controller never acts on a superseded timer even
// if the timer package already let it through. Observer, hooks and onExpire
// are always called without mu held.
type Controller struct {
	mu sync.Mutex

	cfg       Config
	clock     Clock
	idle      *IdleScheduler
	countdown *WarningCountdown
	bridges   []*ActivityBridge

	state     State
	remaining int
	epoch     uint64
	started   bool
	disposed  bool
	expireErr error

	onExpire     func() error
	observer     func(View)
	onTransition func(Transition)
	onError      func(error)
}

// NewController creates a controller. onExpire is the session teardown and
// runs at most once. Zero-valued tunables take their defaults.
func NewController(cfg Config, onExpire func() error, opts ...Option) *Controller {
	def := DefaultConfig()
	if cfg.IdleDuration <= 0 {
		cfg.IdleDuration = def.IdleDuration
	}
	if cfg.WarningSeconds <= 0 {
		cfg.WarningSeconds = def.WarningSeconds
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = def.TickInterval
	}

	c := &Controller{
		cfg:      cfg,
		onExpire: onExpire,
		state:    StateActive,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.clock == nil {
		c.clock = RealClock{}
	}
	c.idle = NewIdleScheduler(c.clock)
	c.countdown = NewWarningCountdown(c.clock, cfg.TickInterval)
	return c
}

// Config returns the effective tunables.
func (c *Controller) Config() Config {
	return c.cfg
}

// Start arms the first idle window.
func (c *Controller) Start() error {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return ErrDisposed
	}
	if c.started {
		c.mu.Unlock()
		return ErrAlreadyStarted
	}
	c.started = true
	c.state = StateActive
	c.armIdleLocked()
	view := c.viewLocked()
	tr := c.transitionLocked(StateActive, CauseStart)
	c.mu.Unlock()

	c.emit(&view, &tr)
	return nil
}

// Activity reports that the user interacted just now. In Active it restarts
// the idle window; in Warning it cancels the countdown and returns to Active.
// It is ignored before Start, after Dispose and once Expired.
func (c *Controller) Activity() {
	c.resume(CauseActivity)
}

// StayConnected is the user's explicit acknowledgement of the warning. It has
// the same effect as Activity.
func (c *Controller) StayConnected() {
	c.resume(CauseStayConnected)
}

func (c *Controller) resume(cause Cause) {
	c.mu.Lock()
	if !c.started || c.disposed || c.state == StateExpired {
		c.mu.Unlock()
		return
	}
	from := c.state
	c.state = StateActive
	c.remaining = 0
	c.armIdleLocked()

	if from == StateActive {
		c.mu.Unlock()
		return
	}
	view := c.viewLocked()
	tr := c.transitionLocked(from, cause)
	c.mu.Unlock()

	c.emit(&view, &tr)
}

// Dispose cancels both timers and detaches every activity source. After
// Dispose returns no timer callback acts and onExpire is never started; an
// onExpire that had already started keeps running, so a caller racing it
// must serialize its own teardown with it. Safe to call more than once,
// including from inside onExpire and from observer or transition hooks.
func (c *Controller) Dispose() {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}
	c.disposed = true
	c.epoch++
	c.idle.Cancel()
	c.countdown.Cancel()
	bridges := c.bridges
	c.bridges = nil
	c.mu.Unlock()

	for _, b := range bridges {
		b.Detach()
	}
}

// AttachSources subscribes the controller to activity signals on surface.
// An empty kinds list means DefaultSignals. The bridge is detached on Dispose
// or expiry.
func (c *Controller) AttachSources(surface Surface, kinds ...Signal) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed {
		return ErrDisposed
	}
	if c.state == StateExpired {
		return ErrExpired
	}
	c.bridges = append(c.bridges, AttachActivity(surface, kinds, c.Activity))
	return nil
}

// =============================================================================
// TIMER CALLBACKS
// =============================================================================

// armIdleLocked makes the idle timer the only live timer. Caller must hold c.mu.
func (c *Controller) armIdleLocked() {
	c.countdown.Cancel()
	c.epoch++
	epoch := c.epoch
	c.idle.Arm(c.cfg.IdleDuration, func() { c.idleFired(epoch) })
}

func (c *Controller) idleFired(epoch uint64) {
	c.mu.Lock()
	if c.disposed || epoch != c.epoch || c.state != StateActive {
		c.mu.Unlock()
		return
	}
	c.idle.Cancel()
	c.state = StateWarning
	c.remaining = c.cfg.WarningSeconds
	c.epoch++
	next := c.epoch
	c.countdown.Start(c.cfg.WarningSeconds,
		func(n int) { c.ticked(next, n) },
		func() { c.countdownExpired(next) },
	)
	view := c.viewLocked()
	tr := c.transitionLocked(StateActive, CauseIdle)
	c.mu.Unlock()

	c.emit(&view, &tr)
}

func (c *Controller) ticked(epoch uint64, remaining int) {
	c.mu.Lock()
	// Ticks are delivered on timer goroutines; a late one must not move the
	// display backwards.
	if c.disposed || epoch != c.epoch || c.state != StateWarning || remaining >= c.remaining {
		c.mu.Unlock()
		return
	}
	c.remaining = remaining
	view := c.viewLocked()
	c.mu.Unlock()

	c.emit(&view, nil)
}

func (c *Controller) countdownExpired(epoch uint64) {
	c.mu.Lock()
	if c.disposed || epoch != c.epoch || c.state != StateWarning {
		c.mu.Unlock()
		return
	}
	c.state = StateExpired
	c.remaining = 0
	c.epoch++
	c.idle.Cancel()
	c.countdown.Cancel()
	bridges := c.bridges
	c.bridges = nil
	view := c.viewLocked()
	tr := c.transitionLocked(StateWarning, CauseCountdown)
	onExpire := c.onExpire
	c.mu.Unlock()

	for _, b := range bridges {
		b.Detach()
	}
	c.emit(&view, &tr)

	// A Dispose that completed while the expiry was being announced wins.
	// Past this check onExpire is committed to and Dispose no longer stops it.
	c.mu.Lock()
	disposed := c.disposed
	c.mu.Unlock()
	if disposed || onExpire == nil {
		return
	}

	if err := onExpire(); err != nil {
		err = fmt.Errorf("session teardown: %w", err)
		c.mu.Lock()
		c.expireErr = err
		onError := c.onError
		c.mu.Unlock()
		if onError != nil {
			onError(err)
		}
	}
}

// =============================================================================
// STATE ACCESS
// =============================================================================

// Snapshot returns the current View.
func (c *Controller) Snapshot() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// ExpireErr returns the error returned by the teardown, if any.
func (c *Controller) ExpireErr() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.expireErr
}

// Disposed reports whether Dispose was called.
func (c *Controller) Disposed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disposed
}

// PendingTimers returns how many of the two timers are live.
func (c *Controller) PendingTimers() int {
	n := 0
	if c.idle.Pending() {
		n++
	}
	if c.countdown.Running() {
		n++
	}
	return n
}

// AttachedSources returns how many activity bridges are attached.
func (c *Controller) AttachedSources() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.bridges)
}

func (c *Controller) viewLocked() View {
	v := View{State: c.state}
	if c.state == StateWarning {
		v.Visible = true
		v.Remaining = c.remaining
	}
	return v
}

func (c *Controller) transitionLocked(from State, cause Cause) Transition {
	return Transition{From: from, To: c.state, Cause: cause, At: c.clock.Now()}
}

func (c *Controller) emit(view *View, tr *Transition) {
	if tr != nil && c.onTransition != nil {
		c.onTransition(*tr)
	}
	if view != nil && c.observer != nil {
		c.observer(*view)
	}
}
