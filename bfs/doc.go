// Package bfs computes hop distances from a source vertex over a
// builder.Graph, twice: once with a sequential reference and once with a
// data-parallel engine running on an accel.Backend.
//
// What
//
//   - Sequential: single-threaded level-synchronous BFS; ground truth.
//   - Engine: the same state machine, one bfs_expand dispatch over all N
//     vertices per round, followed by a bfs_promote dispatch when the round
//     found new vertices.
//   - Check: validates any distance array against the graph without
//     running a traversal.
//
// Rounds
//
// Both variants iterate Expand / Promote over a State:
//
//	Initial  distance[s]=0, active[s]=visited[s]=1, all else -1/0
//	Expand   every active v: clear active[v]; every unvisited neighbor w
//	         gets distance[w]=distance[v]+1 and nextActive[w]=1
//	Promote  every nextActive w: active[w]=visited[w]=1, nextActive[w]=0
//	Terminal a round that marks nothing
//
// The engine tracks convergence with a one-element done buffer: the host
// writes 1 before each expand, any item that marks a vertex stores 0, and
// the host reads it back after the dispatch. A graph with eccentricity d
// from the source converges in exactly d+1 rounds; Result.Rounds and
// Trial.Rounds report the same count.
//
// Determinism
//
//	Every write within a round depends only on round-start state, and all
//	writers to one slot store the same value, so distances do not depend on
//	dispatch order.
//
// Complexity (V = |Vertices|, E = |Edges|, R = rounds)
//
//   - Sequential: O(V + E) time.
//   - Engine: O(R·V + E) work; every round inspects every vertex.
//
// Usage
//
//	ref, err := bfs.Sequential(g, 0)
//
//	eng, err := bfs.NewEngine(g, backend, bfs.WithGroupSize(128))
//	trial, err := eng.Run(ctx, 0)
//	fmt.Println(trial.Rounds, trial.Timings.Total())
//
// Errors
//
//   - ErrGraphNil, ErrBackendNil  for nil inputs.
//   - ErrSourceOutOfRange         if the source is not a vertex.
//   - ErrOptionViolation          for invalid options (negative group size).
//   - ErrInvalidDistance          from Check.
//   - Wrapped *fault.Error (kind Backend) from Engine.Run; the trial is void.
package bfs
