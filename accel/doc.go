// Package accel models a data-parallel compute device with an in-order
// command queue, device-resident buffers and kernel dispatch over a
// work-group range.
//
// The Backend interface is what the BFS engine programs against. It mirrors
// the classic compute-API lifecycle:
//
//	dev, _ := accel.Select(accel.Devices(), preferCPU, index)
//	b := accel.NewHost(dev)
//	defer b.Close()
//
//	buf, _ := b.Alloc(ctx, "distance", n)
//	ev, _ := b.Write(ctx, buf, host)
//	ev, _ = b.Dispatch(ctx, kernel, accel.NewRange(n, 256), accel.Args{Buffers: []*accel.Buffer{buf}})
//	_ = ev.Wait(ctx)
//
// Host is the bundled implementation: every buffer is an owned []int32 keyed
// by a uuid, commands run in submission order on one queue goroutine, and the
// work-groups of a dispatch run concurrently through an errgroup bounded by
// the device's compute units. Items inside a group run in order.
//
// Failures are *fault.Error values of kind fault.Backend whose Status is one
// of the Status constants. Enqueue-time validation errors are returned
// directly; execution errors surface from Event.Wait.
package accel
