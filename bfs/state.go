package bfs

// State is the per-trial frontier state. Flags are 0/1 int32 so the same
// layout can be uploaded to device buffers unchanged.
//
// Invariants between rounds: Visited[v] == 1 iff Distance[v] != Unreached;
// Active and NextActive are disjoint; Visited never reverts to 0.
type State struct {
	Active     []int32
	NextActive []int32
	Visited    []int32
	Distance   []int32
}

// NewState seeds source as active, visited and at distance 0; every other
// vertex is unreached. source must be in [0, n).
func NewState(n, source int) *State {
	s := &State{
		Active:     make([]int32, n),
		NextActive: make([]int32, n),
		Visited:    make([]int32, n),
		Distance:   make([]int32, n),
	}
	for v := range s.Distance {
		s.Distance[v] = Unreached
	}
	s.Active[source] = 1
	s.Visited[source] = 1
	s.Distance[source] = 0

	return s
}
