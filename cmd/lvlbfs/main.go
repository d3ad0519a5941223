// Command lvlbfs loads a graph from a Matrix Market file, runs
// breadth-first search on the accelerator backend for a number of timed
// trials, verifies them against the sequential reference and prints the
// per-phase timing.
//
//	lvlbfs graph.mtx -i 10 -u
//	0.412 3.907 0.210 4.529
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/katalvlaran/lvlbfs/fault"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "lvlbfs: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode is 2 for configuration errors and 1 for everything else.
func exitCode(err error) int {
	if fault.KindOf(err) == fault.Config {
		return 2
	}

	return 1
}
