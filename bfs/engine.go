package bfs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/katalvlaran/lvlbfs/accel"
	"github.com/katalvlaran/lvlbfs/builder"
)

// tracerName identifies engine spans.
const tracerName = "github.com/katalvlaran/lvlbfs/bfs"

// Engine runs the level-synchronous BFS on an accel.Backend. It owns no
// device memory between runs; every Run allocates and releases its buffers.
// An Engine is not safe for concurrent Runs.
type Engine struct {
	graph    *builder.Graph
	backend  accel.Backend
	opts     Options
	group    int
	tracer   trace.Tracer
	vertices []int32
}

// NewEngine prepares g for execution on b.
// Returns ErrGraphNil, ErrBackendNil or ErrOptionViolation.
func NewEngine(g *builder.Graph, b accel.Backend, opts ...Option) (*Engine, error) {
	if g == nil {
		return nil, ErrGraphNil
	}
	if b == nil {
		return nil, ErrBackendNil
	}
	o, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}
	n := g.Order()

	group := o.GroupSize
	if group == 0 {
		group = min(n, DefaultGroupSize)
		if limit := b.Device().MaxGroupSize; limit > 0 {
			group = min(group, limit)
		}
	}

	// vertex records flatten to (start, count) pairs
	vertices := make([]int32, 0, 2*n)
	for _, v := range g.Vertices() {
		vertices = append(vertices, v.Start, v.Count)
	}

	return &Engine{
		graph:    g,
		backend:  b,
		opts:     o,
		group:    group,
		tracer:   o.TracerProvider.Tracer(tracerName),
		vertices: vertices,
	}, nil
}

// GroupSize returns the work-group size used for every dispatch.
func (e *Engine) GroupSize() int { return e.group }

// Range returns the dispatch range: N rounded up to a multiple of GroupSize.
func (e *Engine) Range() accel.Range { return accel.NewRange(e.graph.Order(), e.group) }

// Run executes one trial from source. Any backend failure aborts the trial:
// the returned error wraps the backend's *fault.Error and no Trial is
// returned. Buffers are released on every path.
func (e *Engine) Run(ctx context.Context, source int) (trial *Trial, err error) {
	n := e.graph.Order()
	ctx, span := e.tracer.Start(ctx, "bfs.Engine.Run",
		trace.WithAttributes(
			attribute.Int("bfs.vertices", n),
			attribute.Int("bfs.edges", e.graph.Size()),
			attribute.Int("bfs.group_size", e.group),
			attribute.Int("bfs.source", source),
		),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetAttributes(attribute.Int("bfs.rounds", trial.Rounds))
		}
		span.End()
	}()

	if source < 0 || source >= n {
		return nil, fmt.Errorf("%w: %d not in [0,%d)", ErrSourceOutOfRange, source, n)
	}

	r := &trialRun{ctx: ctx, b: e.backend}
	defer func() {
		if rerr := r.release(); rerr != nil {
			err = errors.Join(err, fmt.Errorf("bfs: release: %w", rerr))
			trial = nil
		}
	}()

	if err = r.upload(e, NewState(n, source)); err != nil {
		return nil, err
	}
	rounds, err := r.converge(e)
	if err != nil {
		return nil, err
	}

	dist := make([]int32, n)
	if err = r.d2h(e.backend.Read(ctx, r.bufs[argDistance], dist)); err != nil {
		return nil, fmt.Errorf("bfs: read distance: %w", err)
	}

	return &Trial{Distance: dist, Rounds: rounds, Timings: r.tm}, nil
}

// trialRun is the device state of one Run.
type trialRun struct {
	ctx  context.Context
	b    accel.Backend
	bufs [numBuffers]*accel.Buffer
	tm   Timings
}

var bufferNames = [numBuffers]string{
	argVertices:   "vertices",
	argEdges:      "edges",
	argActive:     "active",
	argNextActive: "next_active",
	argVisited:    "visited",
	argDistance:   "distance",
	argDone:       "done",
}

// upload allocates every buffer and copies the graph and initial state.
func (r *trialRun) upload(e *Engine, st *State) error {
	n := e.graph.Order()
	sizes := [numBuffers]int{
		argVertices:   2 * n,
		argEdges:      max(e.graph.Size(), 1),
		argActive:     n,
		argNextActive: n,
		argVisited:    n,
		argDistance:   n,
		argDone:       1,
	}
	for i, name := range bufferNames {
		buf, err := r.b.Alloc(r.ctx, name, sizes[i])
		if err != nil {
			return fmt.Errorf("bfs: alloc %s: %w", name, err)
		}
		r.bufs[i] = buf
	}

	host := [numBuffers][]int32{
		argVertices:   e.vertices,
		argEdges:      e.graph.Edges(),
		argActive:     st.Active,
		argNextActive: st.NextActive,
		argVisited:    st.Visited,
		argDistance:   st.Distance,
	}
	for i, src := range host {
		if len(src) == 0 {
			continue
		}
		if err := r.h2d(r.b.Write(r.ctx, r.bufs[i], src)); err != nil {
			return fmt.Errorf("bfs: upload %s: %w", bufferNames[i], err)
		}
	}

	return nil
}

// converge runs rounds until bfs_expand leaves done set, and returns the
// number of expand dispatches.
func (r *trialRun) converge(e *Engine) (int, error) {
	args := accel.Args{Buffers: r.bufs[:], Scalars: []int32{int32(e.graph.Order())}}
	rng := e.Range()
	one := []int32{1}
	done := make([]int32, 1)

	for round := 1; ; round++ {
		if err := r.h2d(r.b.Write(r.ctx, r.bufs[argDone], one)); err != nil {
			return round, fmt.Errorf("bfs: round %d: reset done: %w", round, err)
		}
		if err := r.kernel(r.b.Dispatch(r.ctx, expandKernel, rng, args)); err != nil {
			return round, fmt.Errorf("bfs: round %d: %w", round, err)
		}
		if err := r.d2h(r.b.Read(r.ctx, r.bufs[argDone], done)); err != nil {
			return round, fmt.Errorf("bfs: round %d: read done: %w", round, err)
		}
		converged := done[0] != 0
		e.opts.Logger.Debug("engine round",
			slog.Int("round", round),
			slog.Bool("converged", converged),
		)
		e.opts.OnRound(round, converged)
		if converged {
			return round, nil
		}
		if err := r.kernel(r.b.Dispatch(r.ctx, promoteKernel, rng, args)); err != nil {
			return round, fmt.Errorf("bfs: round %d: %w", round, err)
		}
	}
}

func (r *trialRun) h2d(ev *accel.Event, err error) error {
	return r.await(ev, err, &r.tm.HostToDevice)
}

func (r *trialRun) kernel(ev *accel.Event, err error) error {
	return r.await(ev, err, &r.tm.Kernel)
}

func (r *trialRun) d2h(ev *accel.Event, err error) error {
	return r.await(ev, err, &r.tm.DeviceToHost)
}

// await blocks on ev and charges its execution time to phase.
func (r *trialRun) await(ev *accel.Event, err error, phase *time.Duration) error {
	if err != nil {
		return err
	}
	if err = ev.Wait(r.ctx); err != nil {
		return err
	}
	*phase += ev.Elapsed()

	return nil
}

// release frees allocated buffers in reverse order.
func (r *trialRun) release() error {
	var errs []error
	for i := len(r.bufs) - 1; i >= 0; i-- {
		if r.bufs[i] == nil {
			continue
		}
		if err := r.b.Free(r.bufs[i]); err != nil {
			errs = append(errs, err)
		}
		r.bufs[i] = nil
	}

	return errors.Join(errs...)
}
