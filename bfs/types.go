// Package bfs provides tunable options, result types and error definitions
// for level-synchronous breadth-first search over a builder.Graph.
package bfs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Sentinel errors for BFS execution.
var (
	// ErrGraphNil is returned if a nil graph pointer is passed.
	ErrGraphNil = errors.New("bfs: graph is nil")

	// ErrBackendNil is returned if NewEngine receives a nil backend.
	ErrBackendNil = errors.New("bfs: backend is nil")

	// ErrSourceOutOfRange is returned when the source is not in [0, N).
	ErrSourceOutOfRange = errors.New("bfs: source vertex out of range")

	// ErrOptionViolation is returned when an invalid Option is supplied.
	ErrOptionViolation = errors.New("bfs: invalid option supplied")

	// ErrInvalidDistance is returned by Check when a distance array is not a
	// valid BFS labelling of the graph.
	ErrInvalidDistance = errors.New("bfs: invalid distance array")
)

// Unreached is the distance of a vertex the source cannot reach.
const Unreached int32 = -1

// DefaultGroupSize caps the work-group size chosen when none is given.
const DefaultGroupSize = 256

// Option configures Sequential and NewEngine via functional arguments.
// If an Option is invalid (e.g. negative group size), it is recorded
// internally and surfaced as ErrOptionViolation by the call it is passed to.
type Option func(*Options)

// Options holds parameters and callbacks shared by both BFS variants.
type Options struct {
	// Ctx is checked once per round by Sequential.
	Ctx context.Context

	// Logger receives per-round Debug records.
	Logger *slog.Logger

	// GroupSize is the engine work-group size; 0 selects min(N, DefaultGroupSize).
	GroupSize int

	// OnRound is called after every Expand pass with the 1-based round
	// number and whether the pass found no new vertices.
	OnRound func(round int, converged bool)

	// TracerProvider supplies the engine's tracer.
	TracerProvider trace.TracerProvider

	// internal error recorded during option parsing
	err error
}

// DefaultOptions returns Options with sane defaults:
//   - context.Background()
//   - a logger that discards everything
//   - automatic group size
//   - no-op OnRound
//   - the global OpenTelemetry tracer provider.
func DefaultOptions() Options {
	return Options{
		Ctx:            context.Background(),
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		GroupSize:      0,
		OnRound:        func(int, bool) {},
		TracerProvider: otel.GetTracerProvider(),
		err:            nil,
	}
}

// WithContext sets a custom context for cancellation.
func WithContext(ctx context.Context) Option {
	return func(o *Options) {
		if ctx != nil {
			o.Ctx = ctx
		}
	}
}

// WithLogger routes per-round diagnostics to l.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}

// WithGroupSize overrides the work-group size.
//
//	n > 0:  use n
//	n == 0: automatic
//	n < 0:  invalid option → ErrOptionViolation
func WithGroupSize(n int) Option {
	return func(o *Options) {
		if n < 0 {
			o.err = fmt.Errorf("%w: GroupSize cannot be negative (%d)", ErrOptionViolation, n)
			return
		}
		o.GroupSize = n
	}
}

// WithOnRound registers a callback run after every Expand pass.
func WithOnRound(fn func(round int, converged bool)) Option {
	return func(o *Options) {
		if fn != nil {
			o.OnRound = fn
		}
	}
}

// WithTracerProvider sets the provider the engine obtains its tracer from.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *Options) {
		if tp != nil {
			o.TracerProvider = tp
		}
	}
}

func buildOptions(opts []Option) (Options, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	return o, o.err
}

// Result is the outcome of Sequential.
type Result struct {
	// Distance holds hop counts from the source, Unreached (-1) if none.
	Distance []int32
	// Rounds counts Expand passes, the final empty one included.
	Rounds int
	// Elapsed is the wall time of the traversal.
	Elapsed time.Duration
}

// Timings splits engine time by phase. Each phase is the sum of the
// execution times reported by the backend for its commands.
type Timings struct {
	HostToDevice time.Duration
	Kernel       time.Duration
	DeviceToHost time.Duration
}

// Add accumulates o into t.
func (t *Timings) Add(o Timings) {
	t.HostToDevice += o.HostToDevice
	t.Kernel += o.Kernel
	t.DeviceToHost += o.DeviceToHost
}

// Total returns the sum of the three phases.
func (t Timings) Total() time.Duration {
	return t.HostToDevice + t.Kernel + t.DeviceToHost
}

// Milliseconds returns host→device, kernel, device→host and total in ms.
func (t Timings) Milliseconds() [4]float64 {
	ms := func(d time.Duration) float64 { return float64(d) / float64(time.Millisecond) }

	return [4]float64{ms(t.HostToDevice), ms(t.Kernel), ms(t.DeviceToHost), ms(t.Total())}
}

// Trial is the outcome of one Engine.Run.
type Trial struct {
	Distance []int32
	// Rounds counts bfs_expand dispatches: d+1 for eccentricity d.
	Rounds  int
	Timings Timings
}
