// SPDX-License-Identifier: MIT
// Package: lvlbfs/builder
//
// build.go - edge stream ingestion and CSR serialization.
//
// Accepted edges are packed as uint64 keys (from<<32 | to), sorted and
// compacted. Sorting by key groups every vertex's neighbors together in
// increasing vertex order, so the flat array and the per-vertex offsets
// fall out of a single linear walk.

package builder

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"slices"

	"github.com/katalvlaran/lvlbfs/fault"
)

// Report summarizes one Build call.
type Report struct {
	// Records counts every record pulled from the stream, malformed ones included.
	Records int
	// Accepted counts well-formed, in-range records.
	Accepted int
	// Skipped counts records dropped with a warning.
	Skipped int
	// Duplicates counts directed insertions removed by deduplication.
	Duplicates int
	// Warnings keeps the first skipped-record errors (fault.Ingest).
	Warnings []error
}

// Build ingests src into a CSR Graph over n vertices.
// See the package documentation for the ingestion policy.
func Build(n int, src EdgeStream, opts ...Option) (*Graph, *Report, error) {
	if n < 1 {
		return nil, nil, builderErrorf(MethodBuild, "%w: n=%d", ErrTooFewVertices, n)
	}
	if n > math.MaxInt32 {
		return nil, nil, builderErrorf(MethodBuild, "%w: n=%d exceeds int32 ids", ErrCorruptCSR, n)
	}
	if src == nil {
		return nil, nil, builderErrorf(MethodBuild, "%w", ErrNilStream)
	}
	cfg := newBuilderConfig(opts...)

	hint := cfg.expectedEdges
	if cfg.undirected {
		hint *= 2
	}
	keys := make([]uint64, 0, hint)
	rep := &Report{}

	for {
		e, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		rep.Records++
		if err != nil {
			if fault.KindOf(err) != fault.Ingest {
				return nil, rep, builderErrorf(MethodBuild, "record %d: %w", rep.Records, err)
			}
			rep.skip(cfg.logger, err)
			continue
		}
		if e.From < 0 || e.From >= n || e.To < 0 || e.To >= n {
			w := fault.New(fault.Ingest, "edge",
				fmt.Errorf("%w: (%d,%d) with n=%d", ErrVertexOutOfRange, e.From, e.To, n))
			w.Line = e.Line
			rep.skip(cfg.logger, w)
			continue
		}
		rep.Accepted++
		keys = append(keys, pack(e.From, e.To))
		if cfg.undirected && e.From != e.To {
			keys = append(keys, pack(e.To, e.From))
		}
	}

	raw := len(keys)
	slices.Sort(keys)
	keys = slices.Compact(keys)
	rep.Duplicates = raw - len(keys)
	if len(keys) > math.MaxInt32 {
		return nil, rep, builderErrorf(MethodBuild, "%w: %d edges exceed int32 offsets", ErrCorruptCSR, len(keys))
	}

	g := &Graph{
		vertices:   make([]Vertex, n),
		edges:      make([]int32, len(keys)),
		undirected: cfg.undirected,
	}
	for i, k := range keys {
		from, to := unpack(k)
		if g.vertices[from].Count == 0 {
			g.vertices[from].Start = int32(i)
		}
		g.vertices[from].Count++
		g.edges[i] = to
	}
	// Empty ranges still need a monotone Start: carry the running offset.
	var off int32
	for v := range g.vertices {
		if g.vertices[v].Count == 0 {
			g.vertices[v].Start = off
		}
		off = g.vertices[v].End()
	}

	cfg.logger.Debug("adjacency built",
		slog.Int("vertices", n),
		slog.Int("edges", len(g.edges)),
		slog.Int("records", rep.Records),
		slog.Int("skipped", rep.Skipped),
		slog.Int("duplicates", rep.Duplicates),
		slog.Bool("undirected", cfg.undirected),
	)

	return g, rep, nil
}

// skip records a dropped record and logs it.
func (r *Report) skip(l *slog.Logger, err error) {
	r.Skipped++
	if len(r.Warnings) < maxKeptWarnings {
		r.Warnings = append(r.Warnings, err)
	}
	var fe *fault.Error
	line := 0
	if errors.As(err, &fe) {
		line = fe.Line
	}
	l.Warn("skipping edge record",
		slog.Int("record", r.Records),
		slog.Int("line", line),
		slog.String("error", err.Error()),
	)
}

func pack(from, to int) uint64 {
	return uint64(uint32(from))<<32 | uint64(uint32(to))
}

func unpack(k uint64) (int32, int32) {
	return int32(k >> 32), int32(uint32(k))
}
