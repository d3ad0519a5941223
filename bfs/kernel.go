package bfs

import (
	"sync/atomic"

	"github.com/katalvlaran/lvlbfs/accel"
)

// Buffer argument positions shared by both kernels.
const (
	argVertices = iota // 2N: start, count per vertex
	argEdges
	argActive
	argNextActive
	argVisited
	argDistance
	argDone
	numBuffers
)

// Scalar argument positions.
const (
	argN = iota
	numScalars
)

// expandKernel is one Expand step per vertex. Items past N return at once.
// Writes to a neighbor's slots may collide across items; they are atomic
// stores of the same value, and done only ever goes 1 -> 0.
var expandKernel = accel.Kernel{
	Name:    "bfs_expand",
	Buffers: numBuffers,
	Scalars: numScalars,
	Func: func(it *accel.Item) {
		v := it.Global
		if v >= int(it.Scalar(argN)) {
			return
		}
		active := it.Buffer(argActive)
		if active[v] == 0 {
			return
		}
		active[v] = 0

		vertices := it.Buffer(argVertices)
		start, count := vertices[2*v], vertices[2*v+1]
		edges := it.Buffer(argEdges)[start : start+count]
		visited := it.Buffer(argVisited)
		next := it.Buffer(argNextActive)
		dist := it.Buffer(argDistance)
		done := it.Buffer(argDone)

		d := dist[v] + 1
		for _, w := range edges {
			if visited[w] != 0 {
				continue
			}
			atomic.StoreInt32(&dist[w], d)
			atomic.StoreInt32(&next[w], 1)
			atomic.StoreInt32(&done[0], 0)
		}
	},
}

// promoteKernel moves NextActive into Active and Visited in place, so the
// buffers never swap roles.
var promoteKernel = accel.Kernel{
	Name:    "bfs_promote",
	Buffers: numBuffers,
	Scalars: numScalars,
	Func: func(it *accel.Item) {
		v := it.Global
		if v >= int(it.Scalar(argN)) {
			return
		}
		next := it.Buffer(argNextActive)
		if next[v] == 0 {
			return
		}
		it.Buffer(argActive)[v] = 1
		it.Buffer(argVisited)[v] = 1
		next[v] = 0
	},
}
