package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/katalvlaran/lvlbfs/accel"
	"github.com/katalvlaran/lvlbfs/bfs"
	"github.com/katalvlaran/lvlbfs/builder"
	"github.com/katalvlaran/lvlbfs/fault"
)

// ErrOptionViolation is returned, classified fault.Config, for invalid options.
var ErrOptionViolation = errors.New("harness: invalid option supplied")

const tracerName = "github.com/katalvlaran/lvlbfs/harness"

// Option customizes Run.
type Option func(*config)

type config struct {
	source    int
	trials    int
	groupSize int
	skipCheck bool
	logger    *slog.Logger
	metrics   *Metrics
	tp        trace.TracerProvider
	err       error
}

func newConfig(opts []Option) config {
	c := config{
		trials: 1,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		tp:     otel.GetTracerProvider(),
	}
	for _, opt := range opts {
		opt(&c)
	}

	return c
}

// WithSource sets the source vertex (default 0).
func WithSource(v int) Option {
	return func(c *config) {
		if v < 0 {
			c.err = fmt.Errorf("%w: negative source %d", ErrOptionViolation, v)
			return
		}
		c.source = v
	}
}

// WithTrials sets how many engine trials run (default 1).
func WithTrials(n int) Option {
	return func(c *config) {
		if n < 1 {
			c.err = fmt.Errorf("%w: trials must be >= 1, got %d", ErrOptionViolation, n)
			return
		}
		c.trials = n
	}
}

// WithGroupSize forwards a work-group size to the engine; 0 is automatic.
func WithGroupSize(n int) Option {
	return func(c *config) {
		if n < 0 {
			c.err = fmt.Errorf("%w: negative group size %d", ErrOptionViolation, n)
			return
		}
		c.groupSize = n
	}
}

// WithSkipCheck disables the reference run and the comparison.
func WithSkipCheck(skip bool) Option {
	return func(c *config) { c.skipCheck = skip }
}

// WithLogger routes run, trial and round logs to l.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics records every trial on m.
func WithMetrics(m *Metrics) Option {
	return func(c *config) { c.metrics = m }
}

// WithTracerProvider sets the provider for harness and engine spans.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *config) {
		if tp != nil {
			c.tp = tp
		}
	}
}

// Run executes the engine trials on b, then the sequential reference once,
// and compares every trial against it.
//
// Mismatches are findings recorded in the Report, not errors. A backend
// failure stops the run at the failing trial without retry; Run then returns
// the partial Report together with the error. Invalid options or source are
// fault.Config errors and return a nil Report.
func Run(ctx context.Context, g *builder.Graph, b accel.Backend, opts ...Option) (rep *Report, err error) {
	cfg := newConfig(opts)
	if cfg.err != nil {
		return nil, fault.New(fault.Config, "harness", cfg.err)
	}
	if g == nil {
		return nil, fault.New(fault.Config, "harness", bfs.ErrGraphNil)
	}
	if b == nil {
		return nil, fault.New(fault.Config, "harness", bfs.ErrBackendNil)
	}
	if cfg.source >= g.Order() {
		return nil, fault.New(fault.Config, "harness",
			fmt.Errorf("%w: %d not in [0,%d)", bfs.ErrSourceOutOfRange, cfg.source, g.Order()))
	}

	runID := uuid.New()
	log := cfg.logger.With(slog.String("run", runID.String()))
	ctx, span := cfg.tp.Tracer(tracerName).Start(ctx, "harness.Run",
		trace.WithAttributes(
			attribute.String("harness.run_id", runID.String()),
			attribute.Int("harness.trials", cfg.trials),
			attribute.Int("harness.source", cfg.source),
			attribute.Bool("harness.skip_check", cfg.skipCheck),
		),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetAttributes(attribute.Int("harness.mismatches", rep.MismatchCount))
		}
		span.End()
	}()

	eng, err := bfs.NewEngine(g, b,
		bfs.WithGroupSize(cfg.groupSize),
		bfs.WithLogger(log),
		bfs.WithTracerProvider(cfg.tp),
	)
	if err != nil {
		return nil, fault.New(fault.Config, "harness", err)
	}

	rep = &Report{
		RunID:      runID,
		Device:     b.Device(),
		Vertices:   g.Order(),
		Edges:      g.Size(),
		Undirected: g.Undirected(),
		Source:     cfg.source,
		GroupSize:  eng.GroupSize(),
		Trials:     cfg.trials,
	}

	distances := make([][]int32, 0, cfg.trials)
	for i := 0; i < cfg.trials; i++ {
		trial, err := eng.Run(ctx, cfg.source)
		if err != nil {
			cfg.metrics.outcome(OutcomeFailed)
			log.Error("trial failed",
				slog.Int("trial", i),
				slog.String("op", opOf(err)),
				slog.String("status", fault.StatusOf(err)),
				slog.String("error", err.Error()),
			)
			return rep, fmt.Errorf("harness: trial %d: %w", i, err)
		}
		rep.PerTrial = append(rep.PerTrial, trial.Timings)
		rep.Rounds = append(rep.Rounds, trial.Rounds)
		rep.Timings.Add(trial.Timings)
		cfg.metrics.observeTrial(trial.Timings, trial.Rounds)
		distances = append(distances, trial.Distance)
		log.Debug("trial complete",
			slog.Int("trial", i),
			slog.Int("rounds", trial.Rounds),
			slog.Duration("total", trial.Timings.Total()),
		)
	}

	if cfg.skipCheck {
		for range distances {
			cfg.metrics.outcome(OutcomeUnchecked)
		}
		log.Debug("verification skipped")
		return rep, nil
	}

	ref, err := bfs.Sequential(g, cfg.source, bfs.WithContext(ctx), bfs.WithLogger(log))
	if err != nil {
		return rep, fmt.Errorf("harness: reference: %w", err)
	}
	if err = bfs.Check(g, cfg.source, ref.Distance); err != nil {
		return rep, fmt.Errorf("harness: reference self-check: %w", err)
	}
	rep.Reference = ref

	for i, dist := range distances {
		n := rep.compare(i, ref.Distance, dist)
		cfg.metrics.addMismatches(n)
		if n > 0 {
			cfg.metrics.outcome(OutcomeMismatch)
			log.Warn("trial mismatch", slog.Int("trial", i), slog.Int("vertices", n))
			continue
		}
		cfg.metrics.outcome(OutcomePassed)
	}

	return rep, nil
}

// compare records every differing vertex of one trial and returns the count.
func (r *Report) compare(trial int, ref, got []int32) int {
	n := 0
	for v := range ref {
		if ref[v] == got[v] {
			continue
		}
		n++
		if len(r.Mismatches) < maxKeptMismatches {
			r.Mismatches = append(r.Mismatches, Mismatch{Trial: trial, Vertex: v, Reference: ref[v], Parallel: got[v]})
		}
	}
	r.MismatchCount += n

	return n
}

func opOf(err error) string {
	var fe *fault.Error
	if errors.As(err, &fe) {
		return fe.Op
	}

	return ""
}
