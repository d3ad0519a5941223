package accel

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/katalvlaran/lvlbfs/fault"
)

// Buffer is a handle to device memory holding Len int32 elements.
// The memory itself is owned by the Backend that allocated it.
type Buffer struct {
	ID   uuid.UUID
	Name string
	Len  int
}

// Bytes returns the device footprint of b.
func (b *Buffer) Bytes() int64 { return int64(b.Len) * 4 }

// String renders "name[len]".
func (b *Buffer) String() string { return fmt.Sprintf("%s[%d]", b.Name, b.Len) }

// Event tracks one enqueued command.
type Event struct {
	op    string
	done  chan struct{}
	start time.Time
	end   time.Time
	err   error
}

func newEvent(op string) *Event {
	return &Event{op: op, done: make(chan struct{})}
}

// complete records the outcome and releases waiters. Called once.
func (e *Event) complete(start time.Time, err error) {
	e.start, e.end, e.err = start, time.Now(), err
	close(e.done)
}

// Op names the command ("write", "read", "dispatch", ...).
func (e *Event) Op() string { return e.op }

// Done is closed when the command has finished.
func (e *Event) Done() <-chan struct{} { return e.done }

// Wait blocks until the command finishes and returns its error.
// A cancelled ctx returns a CANCELLED backend error; the command itself is
// not interrupted.
func (e *Event) Wait(ctx context.Context) error {
	select {
	case <-e.done:
		return e.err
	case <-ctx.Done():
		return fault.Backendf(e.op, string(StatusCancelled), "wait: %w", ctx.Err())
	}
}

// Elapsed is the execution time of the command, zero until it finishes.
func (e *Event) Elapsed() time.Duration {
	select {
	case <-e.done:
		return e.end.Sub(e.start)
	default:
		return 0
	}
}

// WaitAll waits for every event and joins their errors.
func WaitAll(ctx context.Context, events ...*Event) error {
	var errs []error
	for _, ev := range events {
		if ev == nil {
			continue
		}
		if err := ev.Wait(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Elapsed sums the execution time of events.
func Elapsed(events ...*Event) time.Duration {
	var d time.Duration
	for _, ev := range events {
		if ev != nil {
			d += ev.Elapsed()
		}
	}

	return d
}
