package bfs_test

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lvlbfs/accel"
	"github.com/katalvlaran/lvlbfs/bfs"
	"github.com/katalvlaran/lvlbfs/builder"
)

// mustBuild builds a graph over n vertices from pairs.
func mustBuild(t testing.TB, n int, undirected bool, pairs ...[2]int) *builder.Graph {
	t.Helper()
	g, _, err := builder.Build(n, builder.Pairs(pairs...), builder.WithUndirected(undirected))
	require.NoError(t, err)
	return g
}

// randomPairs draws m edges over n vertices from a seeded source.
func randomPairs(rng *rand.Rand, n, m int) [][2]int {
	pairs := make([][2]int, m)
	for i := range pairs {
		pairs[i] = [2]int{rng.Intn(n), rng.Intn(n)}
	}
	return pairs
}

// newHost returns a host backend closed at test end.
func newHost(t testing.TB) *accel.Host {
	t.Helper()
	h := accel.NewHost(accel.Devices()[0])
	t.Cleanup(func() { _ = h.Close() })
	return h
}

// runBoth runs the reference and one engine trial and returns both.
func runBoth(t *testing.T, g *builder.Graph, source int, opts ...bfs.Option) (*bfs.Result, *bfs.Trial) {
	t.Helper()
	ref, err := bfs.Sequential(g, source)
	require.NoError(t, err)

	eng, err := bfs.NewEngine(g, newHost(t), opts...)
	require.NoError(t, err)
	trial, err := eng.Run(context.Background(), source)
	require.NoError(t, err)

	return ref, trial
}

// TestBFS_Errors verifies that invalid inputs and options are rejected.
func TestBFS_Errors(t *testing.T) {
	g := mustBuild(t, 2, false, [2]int{0, 1})

	_, err := bfs.Sequential(nil, 0)
	assert.ErrorIs(t, err, bfs.ErrGraphNil)
	_, err = bfs.Sequential(g, 2)
	assert.ErrorIs(t, err, bfs.ErrSourceOutOfRange)
	_, err = bfs.Sequential(g, -1)
	assert.ErrorIs(t, err, bfs.ErrSourceOutOfRange)
	_, err = bfs.Sequential(g, 0, bfs.WithGroupSize(-1))
	assert.ErrorIs(t, err, bfs.ErrOptionViolation)

	_, err = bfs.NewEngine(nil, newHost(t))
	assert.ErrorIs(t, err, bfs.ErrGraphNil)
	_, err = bfs.NewEngine(g, nil)
	assert.ErrorIs(t, err, bfs.ErrBackendNil)
	_, err = bfs.NewEngine(g, newHost(t), bfs.WithGroupSize(-4))
	assert.ErrorIs(t, err, bfs.ErrOptionViolation)

	eng, err := bfs.NewEngine(g, newHost(t))
	require.NoError(t, err)
	_, err = eng.Run(context.Background(), 5)
	assert.ErrorIs(t, err, bfs.ErrSourceOutOfRange)
}

// TestScenarios covers the four reference graphs on both variants.
func TestScenarios(t *testing.T) {
	triangle := [][2]int{{0, 1}, {1, 2}, {2, 0}}
	cases := []struct {
		name       string
		n          int
		undirected bool
		pairs      [][2]int
		want       []int32
		rounds     int
	}{
		{"A directed triangle", 3, false, triangle, []int32{0, 1, 2}, 3},
		{"B undirected triangle", 3, true, triangle, []int32{0, 1, 1}, 2},
		{"C isolated vertex", 4, false, triangle, []int32{0, 1, 2, -1}, 3},
		{"D single vertex", 1, false, nil, []int32{0}, 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := mustBuild(t, tc.n, tc.undirected, tc.pairs...)
			ref, trial := runBoth(t, g, 0)

			assert.Equal(t, tc.want, ref.Distance)
			assert.Equal(t, tc.want, trial.Distance)
			assert.Equal(t, tc.rounds, ref.Rounds)
			assert.Equal(t, tc.rounds, trial.Rounds)
		})
	}
}

// TestRounds_EccentricityPlusOne checks d+1 rounds on paths and stars.
func TestRounds_EccentricityPlusOne(t *testing.T) {
	path := mustBuild(t, 6, true, [2]int{0, 1}, [2]int{1, 2}, [2]int{2, 3}, [2]int{3, 4}, [2]int{4, 5})
	star := mustBuild(t, 5, true, [2]int{0, 1}, [2]int{0, 2}, [2]int{0, 3}, [2]int{0, 4})

	cases := []struct {
		name   string
		g      *builder.Graph
		source int
		ecc    int
	}{
		{"path end", path, 0, 5},
		{"path middle", path, 2, 3},
		{"star center", star, 0, 1},
		{"star leaf", star, 3, 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var seen []bool
			ref, trial := runBoth(t, tc.g, tc.source, bfs.WithOnRound(func(_ int, converged bool) {
				seen = append(seen, converged)
			}))
			assert.Equal(t, tc.ecc+1, trial.Rounds)
			assert.Equal(t, tc.ecc+1, ref.Rounds)
			require.Len(t, seen, tc.ecc+1)
			assert.True(t, seen[len(seen)-1])
		})
	}
}

// TestEngine_MatchesReferenceOnRandomGraphs is the main cross-check.
func TestEngine_MatchesReferenceOnRandomGraphs(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 40; trial++ {
		n := 1 + rng.Intn(300)
		m := rng.Intn(4 * n)
		undirected := trial%2 == 1
		g := mustBuild(t, n, undirected, randomPairs(rng, n, m)...)
		source := rng.Intn(n)
		group := []int{0, 1, 7, 64}[trial%4]

		ref, got := runBoth(t, g, source, bfs.WithGroupSize(group))
		require.Equal(t, ref.Distance, got.Distance, "n=%d m=%d source=%d group=%d", n, m, source, group)
		assert.Equal(t, ref.Rounds, got.Rounds)
		assert.Equal(t, int32(0), got.Distance[source])
		require.NoError(t, bfs.Check(g, source, got.Distance))
	}
}

// TestUndirectedEqualsExplicitSymmetrization forces undirected mode on a
// directed edge list and compares against the symmetrized list.
func TestUndirectedEqualsExplicitSymmetrization(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	const n = 120
	pairs := randomPairs(rng, n, 200)
	sym := append([][2]int{}, pairs...)
	for _, p := range pairs {
		sym = append(sym, [2]int{p[1], p[0]})
	}

	forced := mustBuild(t, n, true, pairs...)
	explicit := mustBuild(t, n, false, sym...)
	for _, s := range []int{0, 17, 99} {
		_, a := runBoth(t, forced, s)
		_, b := runBoth(t, explicit, s)
		assert.Equal(t, b.Distance, a.Distance, "source %d", s)
	}
}

// TestDuplicateEdgesNeverChangeDistances repeats every edge three times.
func TestDuplicateEdgesNeverChangeDistances(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	const n = 80
	pairs := randomPairs(rng, n, 150)
	var tripled [][2]int
	for _, p := range pairs {
		tripled = append(tripled, p, p, p)
	}

	once := mustBuild(t, n, false, pairs...)
	many := mustBuild(t, n, false, tripled...)
	refOnce, trialOnce := runBoth(t, once, 0)
	refMany, trialMany := runBoth(t, many, 0)

	assert.Equal(t, refOnce.Distance, refMany.Distance)
	assert.Equal(t, trialOnce.Distance, trialMany.Distance)
}

// TestSequential_Cancellation stops between rounds.
func TestSequential_Cancellation(t *testing.T) {
	g := mustBuild(t, 4, false, [2]int{0, 1}, [2]int{1, 2}, [2]int{2, 3})
	ctx, cancel := context.WithCancel(context.Background())

	_, err := bfs.Sequential(g, 0, bfs.WithContext(ctx), bfs.WithOnRound(func(round int, _ bool) {
		if round == 1 {
			cancel()
		}
	}))
	assert.ErrorIs(t, err, context.Canceled)
}
