// Package runtime bundles the global mutable state every enginert
// subsystem would otherwise reach for as a package-level singleton — the
// reverse hash registry, the socket table, metrics, logging — behind one
// explicit handle constructed at program start, per spec.md §9's design
// note: "Global mutable state ... becomes an explicit Runtime handle
// constructed at program start and passed to each subsystem."
package runtime

import (
	"go.uber.org/zap"

	"github.com/Voskan/enginert/pkg/clock"
	"github.com/Voskan/enginert/pkg/hashreg"

	"github.com/prometheus/client_golang/prometheus"
)

// Runtime bundles the logger, clock, hash registry and metrics registry.
// The resource factory, message bus and scene graph constructors take the
// fields they use as separate arguments, not a *Runtime. Runtime has no
// Close method.
type Runtime struct {
	Log     *zap.Logger
	Clock   clock.Clock
	Hash    *hashreg.Registry
	Metrics *prometheus.Registry // nil disables metrics, matches teacher's WithMetrics(nil)

	debug bool
}

// Option configures a Runtime at construction time.
type Option func(*Runtime)

// WithLogger plugs an external zap.Logger. Passing nil is a no-op (default
// stays zap.NewNop()), matching the teacher's pkg/config.go WithLogger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Runtime) {
		if l != nil {
			r.Log = l
		}
	}
}

// WithMetrics sets the Prometheus registry this Runtime carries, for the
// caller to pass on to subsystem constructors. nil (the default) leaves
// it unset.
func WithMetrics(reg *prometheus.Registry) Option {
	return func(r *Runtime) { r.Metrics = reg }
}

// WithClock overrides the monotonic clock, primarily for tests.
func WithClock(c clock.Clock) Option {
	return func(r *Runtime) {
		if c != nil {
			r.Clock = c
		}
	}
}

// WithDebug enables debug-build-only behavior: the hash reverse registry
// defaults to enabled (spec.md §4.C — "Enabled in debug builds only").
// This promotes the original engine's compile-time #ifdef to a runtime
// flag (documented as an Open Question resolution in DESIGN.md), since a
// single compiled Go binary cannot carry two build flavors at once and
// tests need the toggle available either way.
func WithDebug(debug bool) Option {
	return func(r *Runtime) { r.debug = debug }
}

// New constructs a Runtime with sane defaults: a no-op logger, a real
// system clock, metrics disabled, and a fresh hash registry with reverse
// tracking following the debug flag.
func New(opts ...Option) *Runtime {
	r := &Runtime{
		Log:   zap.NewNop(),
		Clock: clock.NewSystem(),
		Hash:  hashreg.NewRegistry(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.Hash.SetReverseEnabled(r.debug)
	return r
}

// Debug reports whether this Runtime was constructed with WithDebug(true).
func (r *Runtime) Debug() bool { return r.debug }
