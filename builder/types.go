// SPDX-License-Identifier: MIT
// Package: lvlbfs/builder
//
// types.go - edge stream contract, vertex record and the CSR Graph.

package builder

import "io"

// Edge is one raw (From, To) record from an input stream. Line is the
// 1-based source line, or 0 when the stream has no notion of lines.
type Edge struct {
	From, To int
	Line     int
}

// EdgeStream yields raw edges until it returns io.EOF.
//
// A returned error classified fault.Ingest describes a single malformed record;
// the stream must stay usable after it. Any other error is terminal.
type EdgeStream interface {
	Next() (Edge, error)
}

// Vertex is the per-vertex range record into Graph.Edges().
type Vertex struct {
	// Start is the offset of the first neighbor.
	Start int32
	// Count is the number of distinct neighbors.
	Count int32
}

// End returns Start + Count.
func (v Vertex) End() int32 { return v.Start + v.Count }

// Graph is an immutable CSR-like adjacency structure.
// The zero value is not usable; obtain one from Build or FromCSR.
type Graph struct {
	vertices   []Vertex
	edges      []int32
	undirected bool
}

// SliceStream adapts an in-memory edge list to EdgeStream.
func SliceStream(edges []Edge) EdgeStream {
	return &sliceStream{edges: edges}
}

type sliceStream struct {
	edges []Edge
	pos   int
}

func (s *sliceStream) Next() (Edge, error) {
	if s.pos >= len(s.edges) {
		return Edge{}, io.EOF
	}
	e := s.edges[s.pos]
	s.pos++

	return e, nil
}

// Pairs is a convenience for tests and examples: it turns {u,v} pairs into
// an EdgeStream.
func Pairs(pairs ...[2]int) EdgeStream {
	edges := make([]Edge, len(pairs))
	for i, p := range pairs {
		edges[i] = Edge{From: p[0], To: p[1], Line: i + 1}
	}

	return SliceStream(edges)
}
