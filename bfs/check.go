package bfs

import (
	"fmt"

	"github.com/katalvlaran/lvlbfs/builder"
)

// Check verifies that dist is a valid BFS labelling of g from source without
// running a traversal:
//
//   - len(dist) == N and dist[source] == 0;
//   - unreached vertices hold Unreached and no other negative value appears;
//   - for every edge u→w with u reached, w is reached and dist[w] <= dist[u]+1;
//   - every reached w other than source has an in-neighbor u with
//     dist[u] == dist[w]-1.
//
// Failures wrap ErrInvalidDistance and name the offending vertex.
func Check(g *builder.Graph, source int, dist []int32) error {
	if g == nil {
		return ErrGraphNil
	}
	n := g.Order()
	if source < 0 || source >= n {
		return fmt.Errorf("%w: %d not in [0,%d)", ErrSourceOutOfRange, source, n)
	}
	if len(dist) != n {
		return fmt.Errorf("%w: length %d, want %d", ErrInvalidDistance, len(dist), n)
	}
	if dist[source] != 0 {
		return fmt.Errorf("%w: vertex %d: source distance %d", ErrInvalidDistance, source, dist[source])
	}

	// witnessed[w] is set once an in-neighbor one level closer is seen.
	witnessed := make([]bool, n)
	witnessed[source] = true
	for u := 0; u < n; u++ {
		du := dist[u]
		if du < Unreached {
			return fmt.Errorf("%w: vertex %d: distance %d", ErrInvalidDistance, u, du)
		}
		if du == Unreached {
			continue
		}
		for _, w := range g.Neighbors(u) {
			dw := dist[w]
			switch {
			case dw == Unreached:
				return fmt.Errorf("%w: vertex %d: unreached but adjacent to %d at distance %d",
					ErrInvalidDistance, w, u, du)
			case dw > du+1:
				return fmt.Errorf("%w: vertex %d: distance %d exceeds %d+1 via %d",
					ErrInvalidDistance, w, dw, du, u)
			case dw == du+1:
				witnessed[w] = true
			}
		}
	}
	for v, ok := range witnessed {
		if !ok && dist[v] != Unreached {
			return fmt.Errorf("%w: vertex %d: distance %d has no predecessor at %d",
				ErrInvalidDistance, v, dist[v], dist[v]-1)
		}
	}

	return nil
}
