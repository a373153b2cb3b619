// Package liveness tracks whether the backend answers its health check.
//
// A Monitor probes quickly until the backend responds, then slows down to
// a keep-alive cadence. A single failed check drops it back to probing.
package liveness

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/PabloGalante/goal-forge/internal/clock"
	"github.com/PabloGalante/goal-forge/internal/observability"
)

type State int

const (
	Probing State = iota
	Monitoring
)

func (s State) String() string {
	switch s {
	case Probing:
		return "probing"
	case Monitoring:
		return "monitoring"
	default:
		return "unknown"
	}
}

// Checker performs one health check. Any failure must be reported as false.
type Checker interface {
	Check(ctx context.Context) bool
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc func(ctx context.Context) bool

func (f CheckerFunc) Check(ctx context.Context) bool { return f(ctx) }

type Config struct {
	ProbeInterval   time.Duration
	MonitorInterval time.Duration
	RequestTimeout  time.Duration // 0 leaves the check unbounded
}

func DefaultConfig() Config {
	return Config{
		ProbeInterval:   5 * time.Second,
		MonitorInterval: 14 * time.Minute,
		RequestTimeout:  3 * time.Second,
	}
}

type Option func(*Monitor)

func WithClock(c clock.Clock) Option {
	return func(m *Monitor) { m.clock = c }
}

func WithLogger(l *slog.Logger) Option {
	return func(m *Monitor) { m.log = l }
}

// WithPublisher registers a callback that receives the readiness flag
// after every check. It runs on the monitor goroutine.
func WithPublisher(fn func(ready bool)) Option {
	return func(m *Monitor) { m.publishers = append(m.publishers, fn) }
}

type Monitor struct {
	checker    Checker
	cfg        Config
	clock      clock.Clock
	log        *slog.Logger
	publishers []func(bool)
	checks     metric.Int64Counter

	mu    sync.RWMutex
	state State
	ready bool

	runMu  sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func New(checker Checker, cfg Config, opts ...Option) *Monitor {
	m := &Monitor{
		checker: checker,
		cfg:     cfg,
		clock:   clock.Real(),
		log:     observability.Logger(),
		state:   Probing,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.log = m.log.With("component", "liveness")

	counter, err := observability.Meter().Int64Counter("goalforge.health_checks")
	if err != nil {
		m.log.Warn("health check counter unavailable", "error", err)
	}
	m.checks = counter
	return m
}

// State returns the current polling state.
func (m *Monitor) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Ready returns the result of the latest check.
func (m *Monitor) Ready() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ready
}

// Run checks immediately and keeps checking until ctx is cancelled, which
// is the only way it returns. Nothing is published once ctx is done, even
// if a check was in flight.
func (m *Monitor) Run(ctx context.Context) error {
	m.log.Info("liveness monitor started",
		"probe_interval", m.cfg.ProbeInterval,
		"monitor_interval", m.cfg.MonitorInterval,
	)

	for {
		ok := m.check(ctx)
		if ctx.Err() != nil {
			m.log.Info("liveness monitor stopped")
			return ctx.Err()
		}

		wait := m.apply(ok)

		select {
		case <-ctx.Done():
			m.log.Info("liveness monitor stopped")
			return ctx.Err()
		case <-m.clock.After(wait):
		}
	}
}

// Start runs the monitor on its own goroutine until Stop is called or ctx
// is cancelled. Calling Start on a running monitor does nothing.
func (m *Monitor) Start(ctx context.Context) {
	m.runMu.Lock()
	defer m.runMu.Unlock()
	if m.done != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	m.cancel = cancel
	m.done = done

	go func() {
		defer close(done)
		_ = m.Run(ctx)
	}()
}

// Stop cancels a started monitor and waits for its goroutine to exit. It
// is safe to call at any time, any number of times.
func (m *Monitor) Stop() {
	m.runMu.Lock()
	cancel, done := m.cancel, m.done
	m.cancel, m.done = nil, nil
	m.runMu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (m *Monitor) check(ctx context.Context) (ok bool) {
	if m.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.cfg.RequestTimeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			m.log.Error("health check panicked", "panic", r)
			ok = false
		}
		if m.checks != nil {
			m.checks.Add(ctx, 1, metric.WithAttributes(attribute.Bool("ok", ok)))
		}
	}()

	return m.checker.Check(ctx)
}

// apply moves the state machine after a check, publishes the result and
// returns how long to wait before the next check.
func (m *Monitor) apply(ok bool) time.Duration {
	m.mu.Lock()
	prev := m.state
	switch {
	case ok:
		m.state = Monitoring
	default:
		m.state = Probing
	}
	m.ready = ok
	next := m.state
	m.mu.Unlock()

	if prev != next {
		if next == Monitoring {
			m.log.Info("backend ready", "state", next.String())
		} else {
			m.log.Warn("backend unreachable", "state", next.String())
		}
	} else {
		m.log.Debug("health check", "ok", ok, "state", next.String())
	}

	for _, publish := range m.publishers {
		publish(ok)
	}

	if next == Monitoring {
		return m.cfg.MonitorInterval
	}
	return m.cfg.ProbeInterval
}
