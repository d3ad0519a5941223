// Package lvlbfs is a breadth-first search benchmark: it loads a graph from
// a Matrix Market file, runs a level-synchronous parallel BFS on an
// accelerator backend for a number of timed trials and checks every trial
// against a sequential reference.
//
// What is inside?
//
//	A small pipeline of subpackages:
//		• mtx      - streaming Matrix Market reader (coordinate and array)
//		• builder  - CSR graph builder with a compact-out ingestion policy
//		• bfs      - sequential reference, parallel Engine, result Check
//		• accel    - backend interface plus the goroutine work-group host device
//		• harness  - trial loop, verification, timing and Prometheus metrics
//		• config   - YAML run configuration and validation
//		• fault    - shared error kinds: Config, Ingest, Backend, Mismatch
//
// The parallel Engine keeps per-vertex active, next_active, visited and
// distance arrays on the device and alternates two kernels until a round
// discovers nothing:
//
//	bfs_expand   active u: for each unvisited w, distance[w] = distance[u]+1,
//	             next_active[w] = 1, done = 0
//	bfs_promote  next_active w: active, visited = 1; next_active = 0
//
// A source with eccentricity d converges in exactly d+1 rounds.
//
// Quick ASCII example (1-based in the file, 0-based in memory):
//
//	%%MatrixMarket matrix coordinate pattern general
//	4 4 3
//	1 2            0 → 1 → 2 → 0    3 unreachable
//	2 3
//	3 1
//
//	distance from 0: [0 1 2 -1], 3 rounds
//
// The command lives in cmd/lvlbfs:
//
//	go install github.com/katalvlaran/lvlbfs/cmd/lvlbfs@latest
//	lvlbfs graph.mtx -i 10 -u
package lvlbfs
