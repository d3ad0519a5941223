package accel

import "context"

// Backend is an accelerator reachable through an in-order command queue.
//
// Alloc and Free take effect before they return. Write, Read and Dispatch
// enqueue a command and return its Event; the host slices passed to Write
// may be reused immediately, the one passed to Read is filled once the
// Event completes. Finish waits for every command enqueued before it.
// Close is idempotent and releases every remaining buffer.
type Backend interface {
	Device() Device
	Alloc(ctx context.Context, name string, n int) (*Buffer, error)
	Free(buf *Buffer) error
	Write(ctx context.Context, dst *Buffer, src []int32) (*Event, error)
	Read(ctx context.Context, src *Buffer, dst []int32) (*Event, error)
	Dispatch(ctx context.Context, k Kernel, r Range, a Args) (*Event, error)
	Finish(ctx context.Context) error
	Close() error
}
