// Package bfs provides the sequential reference traversal: a single-threaded
// level-synchronous BFS whose distance array is the ground truth for Engine.
package bfs

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/katalvlaran/lvlbfs/builder"
)

// walker encapsulates mutable reference-traversal state.
type walker struct {
	graph *builder.Graph
	opts  Options
	st    *State
	// frontier lists the active vertices, next the ones marked NextActive.
	frontier []int32
	next     []int32
}

// Sequential runs the reference BFS on g from source.
// Returns ErrGraphNil or ErrSourceOutOfRange for invalid input,
// ErrOptionViolation for bad options, or the context error if Ctx is
// cancelled between rounds.
func Sequential(g *builder.Graph, source int, opts ...Option) (*Result, error) {
	if g == nil {
		return nil, ErrGraphNil
	}
	o, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}
	n := g.Order()
	if source < 0 || source >= n {
		return nil, fmt.Errorf("%w: %d not in [0,%d)", ErrSourceOutOfRange, source, n)
	}

	start := time.Now()
	w := &walker{
		graph:    g,
		opts:     o,
		st:       NewState(n, source),
		frontier: []int32{int32(source)},
	}
	rounds, err := w.loop()
	if err != nil {
		return nil, err
	}

	return &Result{Distance: w.st.Distance, Rounds: rounds, Elapsed: time.Since(start)}, nil
}

// loop alternates Expand and Promote until a round promotes nothing.
func (w *walker) loop() (int, error) {
	for round := 1; ; round++ {
		// cancellation check (once per round)
		select {
		case <-w.opts.Ctx.Done():
			return round - 1, w.opts.Ctx.Err()
		default:
		}

		w.expand()
		promoted := w.promote()
		w.opts.Logger.Debug("reference round",
			slog.Int("round", round),
			slog.Int("promoted", promoted),
		)
		w.opts.OnRound(round, promoted == 0)
		if promoted == 0 {
			return round, nil
		}
	}
}

// expand clears every active vertex and labels its unvisited neighbors.
// All writers in a round store the same distance, so order does not matter.
func (w *walker) expand() {
	st := w.st
	w.next = w.next[:0]
	for _, v := range w.frontier {
		st.Active[v] = 0
		d := st.Distance[v] + 1
		for _, nbr := range w.graph.Neighbors(int(v)) {
			if st.Visited[nbr] != 0 {
				continue
			}
			st.Distance[nbr] = d
			if st.NextActive[nbr] == 0 {
				st.NextActive[nbr] = 1
				w.next = append(w.next, nbr)
			}
		}
	}
}

// promote turns NextActive into the new frontier and returns its size.
func (w *walker) promote() int {
	st := w.st
	for _, v := range w.next {
		st.Active[v] = 1
		st.Visited[v] = 1
		st.NextActive[v] = 0
	}
	w.frontier, w.next = w.next, w.frontier

	return len(w.frontier)
}
