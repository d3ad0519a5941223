// Package builder converts a raw edge stream into a compact CSR-like adjacency
// structure: one (Start, Count) record per vertex plus a flat neighbor array.
//
// What
//
//   - Consumes (source, destination) pairs from an EdgeStream (weights ignored).
//   - Deduplicates parallel edges: every vertex keeps a set of distinct neighbors.
//   - Optionally symmetrizes: with WithUndirected(true) each (u,v) also inserts (v,u).
//   - Serializes neighbor sets in increasing vertex order with monotone offsets;
//     inside one range neighbors are sorted ascending.
//
// Lenient ingestion
//
//	A malformed record (a stream error classified fault.Ingest) or an edge whose
//	endpoint lies outside [0,N) is logged as a warning and skipped; the build
//	continues. Skipped records are compacted out: the neighbor array is sized by
//	the accepted, deduplicated edge count, never by the count a file header
//	declared. Any other stream error aborts the build.
//
// Usage
//
//	g, rep, err := builder.Build(n, reader.Edges(),
//	    builder.WithUndirected(hdr.Banner.Undirected()),
//	    builder.WithExpectedEdges(hdr.Entries),
//	    builder.WithLogger(logger),
//	)
//
// Topologies
//
//	Path, Cycle, Star, Complete, Grid and RandomSparse return deterministic
//	streams for tests and benchmarks:
//
//	g, _, err := builder.Build(12, builder.MustStream(builder.Grid(3, 4)),
//	    builder.WithUndirected(true))
//
// Complexity (N = vertices, M = accepted records)
//
//   - Time:   O(N + M log M) (per-vertex sort + compact)
//   - Memory: O(N + M)
//
// Errors
//
//   - ErrTooFewVertices  if N < 1.
//   - ErrNilStream       if the stream is nil.
//   - ErrCorruptCSR      from Validate / FromCSR when arrays break the invariants.
//   - ErrInvalidProbability, ErrNeedRandSource from RandomSparse.
//   - any non-ingest stream error, wrapped with the record position.
package builder
