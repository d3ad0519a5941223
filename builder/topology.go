// SPDX-License-Identifier: MIT
// Package: lvlbfs/builder
//
// topology.go - deterministic edge streams for canonical topologies.
//
// Contract:
//   • Vertex ids are 0-based ints in [0, n); grids use row-major ids r*cols+c.
//   • Each stream emits every edge once, in a stable, documented order.
//     Undirectedness is a Build option, not a property of the stream.
//   • Parameter violations return sentinel errors; streams never panic.
//
// These feed tests, benchmarks and examples without Matrix Market files.

package builder

import (
	"fmt"
	"math/rand"
)

// Method tokens and minima for the topology streams.
const (
	methodPath         = "Path"
	methodCycle        = "Cycle"
	methodStar         = "Star"
	methodComplete     = "Complete"
	methodGrid         = "Grid"
	methodRandomSparse = "RandomSparse"

	minPathVertices  = 1
	minCycleVertices = 3
	minStarVertices  = 2
	minGridDim       = 1
	probMin          = 0.0
	probMax          = 1.0
)

// Path streams 0→1→…→n-1.
func Path(n int) (EdgeStream, error) {
	if n < minPathVertices {
		return nil, builderErrorf(methodPath, "n=%d < min=%d: %w", n, minPathVertices, ErrTooFewVertices)
	}
	edges := make([]Edge, 0, n-1)
	for i := 0; i+1 < n; i++ {
		edges = append(edges, edge(i, i+1, len(edges)))
	}

	return SliceStream(edges), nil
}

// Cycle streams the path over n vertices plus the closing edge n-1→0.
func Cycle(n int) (EdgeStream, error) {
	if n < minCycleVertices {
		return nil, builderErrorf(methodCycle, "n=%d < min=%d: %w", n, minCycleVertices, ErrTooFewVertices)
	}
	edges := make([]Edge, 0, n)
	for i := 0; i < n; i++ {
		edges = append(edges, edge(i, (i+1)%n, len(edges)))
	}

	return SliceStream(edges), nil
}

// Star streams hub 0 → every leaf 1..n-1.
func Star(n int) (EdgeStream, error) {
	if n < minStarVertices {
		return nil, builderErrorf(methodStar, "n=%d < min=%d: %w", n, minStarVertices, ErrTooFewVertices)
	}
	edges := make([]Edge, 0, n-1)
	for leaf := 1; leaf < n; leaf++ {
		edges = append(edges, edge(0, leaf, len(edges)))
	}

	return SliceStream(edges), nil
}

// Complete streams every ordered pair (i,j), i≠j, i asc then j asc.
func Complete(n int) (EdgeStream, error) {
	if n < minPathVertices {
		return nil, builderErrorf(methodComplete, "n=%d < min=%d: %w", n, minPathVertices, ErrTooFewVertices)
	}
	edges := make([]Edge, 0, n*(n-1))
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i != j {
				edges = append(edges, edge(i, j, len(edges)))
			}
		}
	}

	return SliceStream(edges), nil
}

// Grid streams a rows×cols orthogonal grid: for each cell in row-major
// order, the edge to its right neighbor, then to its bottom neighbor.
func Grid(rows, cols int) (EdgeStream, error) {
	if rows < minGridDim || cols < minGridDim {
		return nil, builderErrorf(methodGrid, "rows=%d, cols=%d (each must be ≥ %d): %w",
			rows, cols, minGridDim, ErrTooFewVertices)
	}
	edges := make([]Edge, 0, 2*rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			u := r*cols + c
			if c+1 < cols {
				edges = append(edges, edge(u, u+1, len(edges)))
			}
			if r+1 < rows {
				edges = append(edges, edge(u, u+cols, len(edges)))
			}
		}
	}

	return SliceStream(edges), nil
}

// RandomSparse streams an Erdős–Rényi-like sample: each ordered pair (i,j),
// i≠j, is kept independently with probability p. Trials run i asc then
// j asc, so a fixed rng seed yields a fixed edge set. rng may be nil only
// when p is 0 or 1.
func RandomSparse(n int, p float64, rng *rand.Rand) (EdgeStream, error) {
	if n < minPathVertices {
		return nil, builderErrorf(methodRandomSparse, "n=%d < min=%d: %w", n, minPathVertices, ErrTooFewVertices)
	}
	if p < probMin || p > probMax {
		return nil, builderErrorf(methodRandomSparse, "p=%.6f not in [%.1f,%.1f]: %w",
			p, probMin, probMax, ErrInvalidProbability)
	}
	if rng == nil && p > probMin && p < probMax {
		return nil, builderErrorf(methodRandomSparse, "%w", ErrNeedRandSource)
	}

	var edges []Edge
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			keep := p == probMax
			if rng != nil {
				keep = rng.Float64() < p
			}
			if keep {
				edges = append(edges, edge(i, j, len(edges)))
			}
		}
	}

	return SliceStream(edges), nil
}

func edge(from, to, i int) Edge {
	return Edge{From: from, To: to, Line: i + 1}
}

// MustStream unwraps a topology constructor in tests and examples.
func MustStream(s EdgeStream, err error) EdgeStream {
	if err != nil {
		panic(fmt.Sprintf("builder: %v", err))
	}

	return s
}
