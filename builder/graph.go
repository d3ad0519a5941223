// SPDX-License-Identifier: MIT
// Package: lvlbfs/builder
//
// graph.go - read-only accessors and invariant checks for Graph.

package builder

import (
	"fmt"
	"math"
)

// Order returns the vertex count N.
func (g *Graph) Order() int { return len(g.vertices) }

// Size returns the length of the flat neighbor array (directed entries,
// after deduplication and symmetrization).
func (g *Graph) Size() int { return len(g.edges) }

// Undirected reports whether the graph was symmetrized at build time.
func (g *Graph) Undirected() bool { return g.undirected }

// Vertex returns the range record of v. It panics if v is out of range,
// like a slice index.
func (g *Graph) Vertex(v int) Vertex { return g.vertices[v] }

// Neighbors returns the neighbor ids of v in ascending order.
// The returned slice aliases internal storage and must not be modified.
func (g *Graph) Neighbors(v int) []int32 {
	r := g.vertices[v]
	return g.edges[r.Start:r.End():r.End()]
}

// Vertices returns the per-vertex range records. Callers must not modify it.
func (g *Graph) Vertices() []Vertex { return g.vertices }

// Edges returns the flat neighbor array. Callers must not modify it.
func (g *Graph) Edges() []int32 { return g.edges }

// HasEdge reports whether u→v is stored.
func (g *Graph) HasEdge(u, v int) bool {
	if u < 0 || u >= len(g.vertices) {
		return false
	}
	nb := g.Neighbors(u)
	lo, hi := 0, len(nb)
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		if nb[mid] < int32(v) {
			lo = mid + 1
		} else {
			hi = mid
		}
	}

	return lo < len(nb) && nb[lo] == int32(v)
}

// FromCSR wraps caller-supplied arrays after checking every invariant.
// The arrays are used as-is (not copied); callers hand over ownership.
func FromCSR(vertices []Vertex, edges []int32, undirected bool) (*Graph, error) {
	if len(vertices) < 1 {
		return nil, builderErrorf(MethodFromCSR, "%w: n=%d", ErrTooFewVertices, len(vertices))
	}
	g := &Graph{vertices: vertices, edges: edges, undirected: undirected}
	if err := g.Validate(); err != nil {
		return nil, builderErrorf(MethodFromCSR, "%w", err)
	}

	return g, nil
}

// Validate checks that ranges partition the neighbor array contiguously in
// vertex order, every neighbor id is in [0,N), and each range is strictly
// increasing (hence duplicate-free). Undirected graphs must also be symmetric.
func (g *Graph) Validate() error {
	n := len(g.vertices)
	if n > math.MaxInt32 || len(g.edges) > math.MaxInt32 {
		return builderErrorf(MethodValidate, "%w: sizes exceed int32", ErrCorruptCSR)
	}
	var off int32
	for v, r := range g.vertices {
		if r.Start != off || r.Count < 0 {
			return builderErrorf(MethodValidate, "%w: vertex %d range [%d,+%d) expected start %d",
				ErrCorruptCSR, v, r.Start, r.Count, off)
		}
		if int(r.End()) > len(g.edges) {
			return builderErrorf(MethodValidate, "%w: vertex %d range ends at %d past %d edges",
				ErrCorruptCSR, v, r.End(), len(g.edges))
		}
		prev := int32(-1)
		for _, w := range g.edges[r.Start:r.End()] {
			if w < 0 || int(w) >= n {
				return builderErrorf(MethodValidate, "%w: vertex %d neighbor %d out of range", ErrCorruptCSR, v, w)
			}
			if w <= prev {
				return builderErrorf(MethodValidate, "%w: vertex %d neighbors not strictly increasing at %d",
					ErrCorruptCSR, v, w)
			}
			prev = w
		}
		off = r.End()
	}
	if int(off) != len(g.edges) {
		return builderErrorf(MethodValidate, "%w: ranges cover %d of %d edges", ErrCorruptCSR, off, len(g.edges))
	}
	if g.undirected {
		for u := range g.vertices {
			for _, w := range g.Neighbors(u) {
				if !g.HasEdge(int(w), u) {
					return builderErrorf(MethodValidate, "%w: undirected edge %d→%d has no reverse",
						ErrCorruptCSR, u, w)
				}
			}
		}
	}

	return nil
}

// String renders a short summary such as "csr(n=3, m=6, undirected)".
func (g *Graph) String() string {
	kind := "directed"
	if g.undirected {
		kind = "undirected"
	}

	return fmt.Sprintf("csr(n=%d, m=%d, %s)", len(g.vertices), len(g.edges), kind)
}
