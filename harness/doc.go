// Package harness runs the BFS engine for a number of timed trials on one
// graph and source, verifies every trial against the sequential reference,
// and aggregates per-phase timing.
//
// A run reports two kinds of problems differently:
//
//   - A backend failure aborts the failing trial and the run. Run returns the
//     partial Report (timings of completed trials) and an error classified
//     fault.Backend. Nothing is retried.
//   - A distance that differs from the reference is a finding. It is stored
//     as a Mismatch in the Report; Run still returns a nil error. Callers
//     turn findings into a failure with Report.MismatchErr.
//
// Output follows the classic benchmark format: WriteSummary prints
// "h2d kernel d2h total" in milliseconds on one line, WriteVerbose prints
// the device, graph, loop counts and phase totals.
//
// Metrics are optional Prometheus collectors registered by NewMetrics on a
// caller-supplied Registerer. Each run opens a harness.Run span; every
// trial is a child bfs.Engine.Run span.
package harness
