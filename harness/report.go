package harness

import (
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/katalvlaran/lvlbfs/accel"
	"github.com/katalvlaran/lvlbfs/bfs"
	"github.com/katalvlaran/lvlbfs/fault"
)

// maxKeptMismatches bounds Report.Mismatches; MismatchCount keeps the total.
const maxKeptMismatches = 100

// Mismatch is one vertex whose engine distance differs from the reference.
type Mismatch struct {
	Trial     int
	Vertex    int
	Reference int32
	Parallel  int32
}

// Err returns m as a fault.Mismatch error.
func (m Mismatch) Err() error {
	e := fault.New(fault.Mismatch, "compare",
		fmt.Errorf("trial %d: reference %d, parallel %d", m.Trial, m.Reference, m.Parallel))
	e.Vertex = m.Vertex

	return e
}

// Report aggregates one harness run.
type Report struct {
	// RunID tags log lines and spans of this run.
	RunID      uuid.UUID
	Device     accel.Device
	Vertices   int
	Edges      int
	Undirected bool
	Source     int
	GroupSize  int
	// Trials is the requested trial count; len(PerTrial) is the completed one.
	Trials int

	PerTrial []bfs.Timings
	Rounds   []int
	// Timings sums PerTrial.
	Timings bfs.Timings

	// Reference is nil when verification was skipped or did not run.
	Reference *bfs.Result

	Mismatches    []Mismatch
	MismatchCount int
}

// Completed returns the number of trials that ran to convergence.
func (r *Report) Completed() int { return len(r.PerTrial) }

// Verified reports whether the reference ran and every trial matched it.
func (r *Report) Verified() bool { return r.Reference != nil && r.MismatchCount == 0 }

// MismatchErr returns the first mismatch as a fault.Mismatch error, with the
// total count, or nil when there is none.
func (r *Report) MismatchErr() error {
	if r.MismatchCount == 0 {
		return nil
	}

	return fmt.Errorf("harness: %d mismatched vertices: %w", r.MismatchCount, r.Mismatches[0].Err())
}

// WriteSummary prints host→device, kernel, device→host and total
// milliseconds on one line.
func (r *Report) WriteSummary(w io.Writer) error {
	ms := r.Timings.Milliseconds()
	_, err := fmt.Fprintf(w, "%0.3f %0.3f %0.3f %0.3f\n", ms[0], ms[1], ms[2], ms[3])

	return err
}

// WriteVerbose prints the device, graph, per-trial loop counts, phase
// totals and any mismatch findings.
func (r *Report) WriteVerbose(w io.Writer) error {
	ew := &errWriter{w: w}
	ew.printf("run %s\n", r.RunID)
	ew.printf("device: %s\n", r.Device)
	ew.printf("vertices: %d, edges: %d, undirected: %t\n", r.Vertices, r.Edges, r.Undirected)
	ew.printf("source: %d, group size: %d, trials: %d/%d\n", r.Source, r.GroupSize, r.Completed(), r.Trials)
	for i, rounds := range r.Rounds {
		ew.printf("trial %d: took %d loops, %s\n", i, rounds, r.PerTrial[i].Total())
	}
	ms := r.Timings.Milliseconds()
	ew.printf("host to device: %0.3f ms\n", ms[0])
	ew.printf("kernel:         %0.3f ms\n", ms[1])
	ew.printf("device to host: %0.3f ms\n", ms[2])
	ew.printf("total:          %0.3f ms\n", ms[3])
	if r.Reference == nil {
		ew.printf("verification skipped\n")
		return ew.err
	}
	ew.printf("reference: took %d loops, %s\n", r.Reference.Rounds, r.Reference.Elapsed.Round(time.Microsecond))
	if r.MismatchCount == 0 {
		ew.printf("verification passed\n")
		return ew.err
	}
	ew.printf("verification FAILED: %d mismatched vertices\n", r.MismatchCount)
	for _, m := range r.Mismatches {
		ew.printf("  trial %d vertex %d: reference %d, parallel %d\n", m.Trial, m.Vertex, m.Reference, m.Parallel)
	}
	if hidden := r.MismatchCount - len(r.Mismatches); hidden > 0 {
		ew.printf("  ... %d more\n", hidden)
	}

	return ew.err
}

// errWriter keeps the first write error.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
