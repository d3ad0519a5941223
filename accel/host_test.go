package accel_test

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lvlbfs/accel"
	"github.com/katalvlaran/lvlbfs/fault"
)

// scale multiplies buffer 0 in place by scalar 0, guarded by scalar 1 (n).
var scale = accel.Kernel{
	Name:    "scale",
	Buffers: 1,
	Scalars: 2,
	Func: func(it *accel.Item) {
		if it.Global >= int(it.Scalar(1)) {
			return
		}
		buf := it.Buffer(0)
		buf[it.Global] *= it.Scalar(0)
	},
}

func newHost(t *testing.T, opts ...accel.HostOption) *accel.Host {
	t.Helper()
	h := accel.NewHost(accel.Devices()[0], opts...)
	t.Cleanup(func() { _ = h.Close() })
	return h
}

func requireStatus(t *testing.T, err error, want accel.Status) {
	t.Helper()
	require.Error(t, err)
	assert.ErrorIs(t, err, fault.ErrBackend)
	assert.Equal(t, string(want), fault.StatusOf(err))
}

func TestHost_WriteDispatchRead(t *testing.T) {
	ctx := context.Background()
	h := newHost(t)

	buf, err := h.Alloc(ctx, "values", 5)
	require.NoError(t, err)
	assert.Equal(t, "values[5]", buf.String())

	wr, err := h.Write(ctx, buf, []int32{1, 2, 3, 4, 5})
	require.NoError(t, err)
	k, err := h.Dispatch(ctx, scale, accel.NewRange(5, 2), accel.Args{
		Buffers: []*accel.Buffer{buf},
		Scalars: []int32{3, 5},
	})
	require.NoError(t, err)
	out := make([]int32, 5)
	rd, err := h.Read(ctx, buf, out)
	require.NoError(t, err)

	require.NoError(t, accel.WaitAll(ctx, wr, k, rd))
	assert.Equal(t, []int32{3, 6, 9, 12, 15}, out)
	assert.Equal(t, "dispatch", k.Op())
	assert.GreaterOrEqual(t, accel.Elapsed(wr, k, rd), k.Elapsed())

	require.NoError(t, h.Free(buf))
	live, bytes := h.Live()
	assert.Zero(t, live)
	assert.Zero(t, bytes)
}

func TestHost_WriteSnapshotsSource(t *testing.T) {
	ctx := context.Background()
	h := newHost(t)
	buf, err := h.Alloc(ctx, "b", 2)
	require.NoError(t, err)

	src := []int32{7, 8}
	_, err = h.Write(ctx, buf, src)
	require.NoError(t, err)
	src[0] = 99

	out := make([]int32, 2)
	rd, err := h.Read(ctx, buf, out)
	require.NoError(t, err)
	require.NoError(t, rd.Wait(ctx))
	assert.Equal(t, []int32{7, 8}, out)
}

func TestHost_AllWorkGroupsRun(t *testing.T) {
	ctx := context.Background()
	h := newHost(t)
	var items atomic.Int64
	count := accel.Kernel{Name: "count", Func: func(*accel.Item) { items.Add(1) }}

	r := accel.NewRange(1000, 64)
	assert.Equal(t, accel.Range{Global: 1024, Local: 64}, r)
	assert.Equal(t, 16, r.Groups())
	ev, err := h.Dispatch(ctx, count, r, accel.Args{})
	require.NoError(t, err)
	require.NoError(t, ev.Wait(ctx))
	assert.EqualValues(t, 1024, items.Load())
}

func TestHost_ValidationStatuses(t *testing.T) {
	ctx := context.Background()
	h := newHost(t, accel.WithMemoryLimit(64))

	_, err := h.Alloc(ctx, "empty", 0)
	requireStatus(t, err, accel.StatusInvalidBufferSize)

	_, err = h.Alloc(ctx, "huge", 17)
	requireStatus(t, err, accel.StatusAllocationFailure)

	buf, err := h.Alloc(ctx, "ok", 16)
	require.NoError(t, err)

	_, err = h.Write(ctx, buf, make([]int32, 17))
	requireStatus(t, err, accel.StatusInvalidValue)
	_, err = h.Read(ctx, buf, make([]int32, 17))
	requireStatus(t, err, accel.StatusInvalidValue)
	_, err = h.Write(ctx, nil, nil)
	requireStatus(t, err, accel.StatusInvalidMemObject)

	args := accel.Args{Buffers: []*accel.Buffer{buf}, Scalars: []int32{1, 16}}
	_, err = h.Dispatch(ctx, scale, accel.Range{Global: 16, Local: 0}, args)
	requireStatus(t, err, accel.StatusInvalidWorkGroupSize)
	_, err = h.Dispatch(ctx, scale, accel.Range{Global: 16, Local: 4096}, args)
	requireStatus(t, err, accel.StatusInvalidWorkGroupSize)
	_, err = h.Dispatch(ctx, scale, accel.Range{Global: 10, Local: 4}, args)
	requireStatus(t, err, accel.StatusInvalidGlobalWorkSize)
	_, err = h.Dispatch(ctx, scale, accel.NewRange(16, 4), accel.Args{Buffers: []*accel.Buffer{buf}})
	requireStatus(t, err, accel.StatusInvalidKernelArgs)
	_, err = h.Dispatch(ctx, accel.Kernel{Name: "empty"}, accel.NewRange(1, 1), accel.Args{})
	requireStatus(t, err, accel.StatusInvalidKernelArgs)

	require.NoError(t, h.Free(buf))
	err = h.Free(buf)
	requireStatus(t, err, accel.StatusInvalidMemObject)

	ev, err := h.Write(ctx, buf, []int32{1})
	require.NoError(t, err)
	requireStatus(t, ev.Wait(ctx), accel.StatusInvalidMemObject)
}

func TestHost_KernelPanicBecomesKernelFault(t *testing.T) {
	ctx := context.Background()
	h := newHost(t)
	buf, err := h.Alloc(ctx, "short", 4)
	require.NoError(t, err)

	unguarded := accel.Kernel{
		Name:    "unguarded",
		Buffers: 1,
		Func:    func(it *accel.Item) { it.Buffer(0)[it.Global] = 1 },
	}
	ev, err := h.Dispatch(ctx, unguarded, accel.NewRange(5, 8), accel.Args{Buffers: []*accel.Buffer{buf}})
	require.NoError(t, err)
	err = ev.Wait(ctx)
	requireStatus(t, err, accel.StatusKernelFault)
	assert.Contains(t, err.Error(), "unguarded")

	// the queue keeps serving after a fault
	require.NoError(t, h.Finish(ctx))
}

func TestHost_Cancellation(t *testing.T) {
	h := newHost(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.Alloc(ctx, "x", 1)
	requireStatus(t, err, accel.StatusCancelled)

	ev, err := h.Dispatch(ctx, accel.Kernel{Name: "noop", Func: func(*accel.Item) {}}, accel.NewRange(1, 1), accel.Args{})
	if err == nil {
		// enqueue won the race with ctx; the queue refuses to run it
		err = ev.Wait(context.Background())
	}
	requireStatus(t, err, accel.StatusCancelled)
}

func TestHost_Close(t *testing.T) {
	ctx := context.Background()
	h := accel.NewHost(accel.Devices()[1])
	assert.Equal(t, accel.TypeCPU, h.Device().Type)

	buf, err := h.Alloc(ctx, "left", 8)
	require.NoError(t, err)
	_, err = h.Alloc(ctx, "over", 8)
	require.NoError(t, err)
	live, bytes := h.Live()
	assert.Equal(t, 2, live)
	assert.EqualValues(t, 64, bytes)

	require.NoError(t, h.Close())
	require.NoError(t, h.Close())
	live, _ = h.Live()
	assert.Zero(t, live)

	_, err = h.Alloc(ctx, "late", 1)
	requireStatus(t, err, accel.StatusDeviceClosed)
	_, err = h.Write(ctx, buf, []int32{1})
	requireStatus(t, err, accel.StatusDeviceClosed)
	requireStatus(t, h.Finish(ctx), accel.StatusDeviceClosed)
	assert.NoError(t, h.Free(buf))
}

func TestSelect(t *testing.T) {
	devs := accel.Devices()
	require.Len(t, devs, 2)

	gpu, err := accel.Select(devs, false, 0)
	require.NoError(t, err)
	assert.Equal(t, accel.TypeGPU, gpu.Type)
	assert.GreaterOrEqual(t, gpu.ComputeUnits, 1)

	cpu, err := accel.Select(devs, true, 0)
	require.NoError(t, err)
	assert.Equal(t, "host-cpu", cpu.Name)
	assert.Equal(t, 1, cpu.ComputeUnits)

	_, err = accel.Select(devs, false, 1)
	assert.ErrorIs(t, err, fault.ErrConfig)
	_, err = accel.Select(devs, true, -1)
	assert.ErrorIs(t, err, fault.ErrConfig)
	_, err = accel.Select(nil, false, 0)
	assert.ErrorIs(t, err, fault.ErrConfig)
}

func TestNewRange(t *testing.T) {
	cases := []struct {
		items, group int
		want         accel.Range
	}{
		{1, 256, accel.Range{Global: 256, Local: 256}},
		{256, 256, accel.Range{Global: 256, Local: 256}},
		{257, 256, accel.Range{Global: 512, Local: 256}},
		{6, 4, accel.Range{Global: 8, Local: 4}},
		{0, 0, accel.Range{Global: 1, Local: 1}},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, accel.NewRange(tc.items, tc.group))
	}
}

func TestHostOptions_Panic(t *testing.T) {
	assert.Panics(t, func() { accel.WithLogger(nil) })
	assert.Panics(t, func() { accel.WithMemoryLimit(-1) })
}
