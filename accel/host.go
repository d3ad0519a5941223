package accel

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/lvlbfs/fault"
)

// defaultQueueDepth is the number of commands that may be pending before
// enqueueing blocks.
const defaultQueueDepth = 64

// HostOption customizes NewHost.
type HostOption func(*hostConfig)

type hostConfig struct {
	logger      *slog.Logger
	memoryLimit int64
	queueDepth  int
}

// WithLogger routes allocation, dispatch and fault logs to l.
func WithLogger(l *slog.Logger) HostOption {
	if l == nil {
		panic("accel: WithLogger(nil)")
	}
	return func(c *hostConfig) { c.logger = l }
}

// WithMemoryLimit overrides Device.MemoryLimit. 0 means unbounded.
func WithMemoryLimit(bytes int64) HostOption {
	if bytes < 0 {
		panic("accel: WithMemoryLimit(negative)")
	}
	return func(c *hostConfig) { c.memoryLimit = bytes }
}

// Host is a Backend that executes kernels on goroutines.
type Host struct {
	dev Device
	log *slog.Logger

	// qmu guards closed and sends on cmds.
	qmu     sync.RWMutex
	closed  bool
	cmds    chan command
	stopped chan struct{}

	// mu guards mem and bytes; mem is nil once the device is closed.
	mu    sync.Mutex
	mem   map[uuid.UUID][]int32
	bytes int64
}

var _ Backend = (*Host)(nil)

type command struct {
	ctx context.Context
	ev  *Event
	run func(ctx context.Context) error
}

// NewHost starts a Host for dev. Zero ComputeUnits or MaxGroupSize fall back
// to 1 and DefaultMaxGroupSize.
func NewHost(dev Device, opts ...HostOption) *Host {
	cfg := hostConfig{
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		memoryLimit: dev.MemoryLimit,
		queueDepth:  defaultQueueDepth,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if dev.ComputeUnits < 1 {
		dev.ComputeUnits = 1
	}
	if dev.MaxGroupSize < 1 {
		dev.MaxGroupSize = DefaultMaxGroupSize
	}
	dev.MemoryLimit = cfg.memoryLimit

	h := &Host{
		dev:     dev,
		log:     cfg.logger.With(slog.String("device", dev.Name)),
		cmds:    make(chan command, cfg.queueDepth),
		stopped: make(chan struct{}),
		mem:     make(map[uuid.UUID][]int32),
	}
	go h.serve()

	return h
}

// Device returns the device this Host drives.
func (h *Host) Device() Device { return h.dev }

// Live reports the buffers and bytes currently allocated.
func (h *Host) Live() (int, int64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.mem), h.bytes
}

// Alloc reserves n zeroed int32 elements.
func (h *Host) Alloc(ctx context.Context, name string, n int) (*Buffer, error) {
	const op = "alloc"
	if err := ctx.Err(); err != nil {
		return nil, failf(op, StatusCancelled, "%s: %w", name, err)
	}
	if n < 1 {
		return nil, failf(op, StatusInvalidBufferSize, "%s: %d elements", name, n)
	}
	size := int64(n) * 4

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.mem == nil {
		return nil, failf(op, StatusDeviceClosed, "%s: device %s is closed", name, h.dev.Name)
	}
	if h.dev.MemoryLimit > 0 && h.bytes+size > h.dev.MemoryLimit {
		return nil, failf(op, StatusAllocationFailure, "%s: %d bytes requested, %d of %d in use",
			name, size, h.bytes, h.dev.MemoryLimit)
	}
	buf := &Buffer{ID: uuid.New(), Name: name, Len: n}
	h.mem[buf.ID] = make([]int32, n)
	h.bytes += size
	h.log.Debug("buffer allocated",
		slog.String("buffer", buf.Name),
		slog.String("id", buf.ID.String()),
		slog.Int("len", n),
	)

	return buf, nil
}

// Free releases buf after every command enqueued before it has run.
// Freeing on a closed device is a no-op.
func (h *Host) Free(buf *Buffer) error {
	const op = "free"
	if buf == nil {
		return failf(op, StatusInvalidMemObject, "nil buffer")
	}
	ev, err := h.enqueue(context.Background(), op, func(context.Context) error {
		return h.release(buf)
	})
	if err != nil {
		if fault.StatusOf(err) == string(StatusDeviceClosed) {
			return nil
		}
		return err
	}

	return ev.Wait(context.Background())
}

// Write copies src into the head of dst.
func (h *Host) Write(ctx context.Context, dst *Buffer, src []int32) (*Event, error) {
	const op = "write"
	if dst == nil {
		return nil, failf(op, StatusInvalidMemObject, "nil buffer")
	}
	if len(src) > dst.Len {
		return nil, failf(op, StatusInvalidValue, "%s: %d elements into %d", dst.Name, len(src), dst.Len)
	}
	data := slices.Clone(src)

	return h.enqueue(ctx, op, func(context.Context) error {
		mem, err := h.lookup(op, dst)
		if err != nil {
			return err
		}
		copy(mem, data)
		return nil
	})
}

// Read copies the head of src into dst once the returned Event completes.
func (h *Host) Read(ctx context.Context, src *Buffer, dst []int32) (*Event, error) {
	const op = "read"
	if src == nil {
		return nil, failf(op, StatusInvalidMemObject, "nil buffer")
	}
	if len(dst) > src.Len {
		return nil, failf(op, StatusInvalidValue, "%s: %d elements from %d", src.Name, len(dst), src.Len)
	}

	return h.enqueue(ctx, op, func(context.Context) error {
		mem, err := h.lookup(op, src)
		if err != nil {
			return err
		}
		copy(dst, mem)
		return nil
	})
}

// Dispatch enqueues k over r with arguments a.
func (h *Host) Dispatch(ctx context.Context, k Kernel, r Range, a Args) (*Event, error) {
	const op = "dispatch"
	switch {
	case k.Func == nil:
		return nil, failf(op, StatusInvalidKernelArgs, "kernel %q has no body", k.Name)
	case len(a.Buffers) != k.Buffers || len(a.Scalars) != k.Scalars:
		return nil, failf(op, StatusInvalidKernelArgs, "kernel %s wants %d buffers and %d scalars, got %d and %d",
			k.Name, k.Buffers, k.Scalars, len(a.Buffers), len(a.Scalars))
	case r.Local < 1 || r.Local > h.dev.MaxGroupSize:
		return nil, failf(op, StatusInvalidWorkGroupSize, "kernel %s: group size %d outside [1,%d]",
			k.Name, r.Local, h.dev.MaxGroupSize)
	case r.Global < 1 || r.Global%r.Local != 0:
		return nil, failf(op, StatusInvalidGlobalWorkSize, "kernel %s: global size %d is not a positive multiple of %d",
			k.Name, r.Global, r.Local)
	}
	for i, b := range a.Buffers {
		if b == nil {
			return nil, failf(op, StatusInvalidMemObject, "kernel %s: buffer argument %d is nil", k.Name, i)
		}
	}
	bufs := slices.Clone(a.Buffers)
	scalars := slices.Clone(a.Scalars)

	return h.enqueue(ctx, op, func(ctx context.Context) error {
		return h.execute(ctx, k, r, bufs, scalars)
	})
}

// Finish blocks until every previously enqueued command has run.
func (h *Host) Finish(ctx context.Context) error {
	ev, err := h.enqueue(ctx, "finish", func(context.Context) error { return nil })
	if err != nil {
		return err
	}

	return ev.Wait(ctx)
}

// Close drains the queue, stops it and releases every remaining buffer.
func (h *Host) Close() error {
	h.qmu.Lock()
	if h.closed {
		h.qmu.Unlock()
		return nil
	}
	h.closed = true
	close(h.cmds)
	h.qmu.Unlock()
	<-h.stopped

	h.mu.Lock()
	leaked, bytes := len(h.mem), h.bytes
	h.mem, h.bytes = nil, 0
	h.mu.Unlock()
	if leaked > 0 {
		h.log.Debug("released buffers at close", slog.Int("buffers", leaked), slog.Int64("bytes", bytes))
	}

	return nil
}

func (h *Host) serve() {
	defer close(h.stopped)
	for cmd := range h.cmds {
		start := time.Now()
		var err error
		if cerr := cmd.ctx.Err(); cerr != nil {
			err = failf(cmd.ev.op, StatusCancelled, "%w", cerr)
		} else {
			err = cmd.run(cmd.ctx)
		}
		cmd.ev.complete(start, err)
	}
}

func (h *Host) enqueue(ctx context.Context, op string, run func(context.Context) error) (*Event, error) {
	h.qmu.RLock()
	defer h.qmu.RUnlock()
	if h.closed {
		return nil, failf(op, StatusDeviceClosed, "device %s is closed", h.dev.Name)
	}
	ev := newEvent(op)
	select {
	case h.cmds <- command{ctx: ctx, ev: ev, run: run}:
		return ev, nil
	case <-ctx.Done():
		return nil, failf(op, StatusCancelled, "enqueue: %w", ctx.Err())
	}
}

func (h *Host) lookup(op string, b *Buffer) ([]int32, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	mem, ok := h.mem[b.ID]
	if !ok {
		return nil, failf(op, StatusInvalidMemObject, "%s: unknown or released buffer", b)
	}

	return mem, nil
}

func (h *Host) release(b *Buffer) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.mem[b.ID]; !ok {
		return failf("free", StatusInvalidMemObject, "%s: unknown or released buffer", b)
	}
	delete(h.mem, b.ID)
	h.bytes -= b.Bytes()

	return nil
}

// execute runs the work-groups of one dispatch, at most ComputeUnits at a time.
func (h *Host) execute(ctx context.Context, k Kernel, r Range, bufs []*Buffer, scalars []int32) error {
	mem := make([][]int32, len(bufs))
	for i, b := range bufs {
		m, err := h.lookup("dispatch", b)
		if err != nil {
			return err
		}
		mem[i] = m
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(h.dev.ComputeUnits)
	for grp := 0; grp < r.Groups(); grp++ {
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			return runGroup(k, r, grp, mem, scalars)
		})
	}
	if err := g.Wait(); err != nil {
		h.log.Warn("kernel failed", slog.String("kernel", k.Name), slog.String("error", err.Error()))
		return err
	}
	if err := ctx.Err(); err != nil {
		return failf("dispatch", StatusCancelled, "kernel %s: %w", k.Name, err)
	}
	h.log.Debug("kernel dispatched",
		slog.String("kernel", k.Name),
		slog.Int("global", r.Global),
		slog.Int("local", r.Local),
	)

	return nil
}

// runGroup executes the items of one work-group in order. A panicking item
// becomes a KERNEL_FAULT.
func runGroup(k Kernel, r Range, grp int, mem [][]int32, scalars []int32) (err error) {
	it := &Item{Group: grp, mem: mem, scalars: scalars}
	defer func() {
		if p := recover(); p != nil {
			err = failf("dispatch", StatusKernelFault, "kernel %s: item %d (group %d): %v", k.Name, it.Global, grp, p)
		}
	}()
	base := grp * r.Local
	for l := 0; l < r.Local; l++ {
		it.Global, it.Local = base+l, l
		k.Func(it)
	}

	return nil
}

func failf(op string, s Status, format string, args ...any) *fault.Error {
	return fault.Backendf(op, string(s), format, args...)
}
