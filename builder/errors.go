// SPDX-License-Identifier: MIT
// Package: lvlbfs/builder
//
// errors.go - sentinel errors for the builder package.
//
// Error policy:
//   • Only sentinel variables (package-level) are exposed.
//   • Callers use errors.Is(err, ErrX) to branch on semantics.
//   • Implementations attach context with %w via builderErrorf.

package builder

import (
	"errors"
	"fmt"
)

// ErrTooFewVertices indicates a vertex count smaller than one.
var ErrTooFewVertices = errors.New("builder: vertex count too small")

// ErrNilStream indicates that Build received a nil EdgeStream.
var ErrNilStream = errors.New("builder: edge stream is nil")

// ErrCorruptCSR indicates vertex ranges that do not partition the neighbor
// array contiguously, hold out-of-range or duplicate neighbor ids, or a
// count that overflows int32.
var ErrCorruptCSR = errors.New("builder: corrupt adjacency structure")

// ErrVertexOutOfRange indicates an edge endpoint outside [0,N). Build never
// returns it; it is the cause attached to the skipped-record warning.
var ErrVertexOutOfRange = errors.New("builder: vertex id out of range")

// ErrInvalidProbability indicates a probability parameter outside [0,1].
var ErrInvalidProbability = errors.New("builder: probability out of range [0,1]")

// ErrNeedRandSource indicates a stochastic topology requested without an RNG.
var ErrNeedRandSource = errors.New("builder: random source is required")

// Method tokens used as error prefixes.
const (
	MethodBuild    = "Build"
	MethodFromCSR  = "FromCSR"
	MethodValidate = "Validate"
)

// builderErrorf prefixes a wrapped error with the given method context.
// The result has the form "<Method>: <formatted message>" and keeps the
// %w chain intact for errors.Is.
func builderErrorf(method, format string, args ...interface{}) error {
	return fmt.Errorf("%s: "+format, append([]interface{}{method}, args...)...)
}
