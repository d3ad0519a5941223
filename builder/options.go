// SPDX-License-Identifier: MIT
// Package: lvlbfs/builder
//
// options.go - functional options for Build.
//
// Contract:
//   • Options are functional (type Option func(*builderConfig)).
//   • Option constructors panic on meaningless inputs (nil logger,
//     negative capacity hint); Build itself never panics.

package builder

import (
	"io"
	"log/slog"
)

// Option customizes Build by mutating a builderConfig before ingestion.
type Option func(*builderConfig)

// maxKeptWarnings bounds Report.Warnings; further skips are only counted.
const maxKeptWarnings = 64

// builderConfig aggregates all knobs used by Build.
type builderConfig struct {
	undirected    bool
	expectedEdges int
	logger        *slog.Logger
}

func newBuilderConfig(opts ...Option) builderConfig {
	cfg := builderConfig{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

// WithUndirected makes Build insert the reverse of every accepted edge.
func WithUndirected(undirected bool) Option {
	return func(c *builderConfig) { c.undirected = undirected }
}

// WithExpectedEdges is a capacity hint, typically the entry count from a file
// header. It never limits how many edges are accepted.
func WithExpectedEdges(m int) Option {
	if m < 0 {
		panic("builder: WithExpectedEdges(negative)")
	}
	return func(c *builderConfig) { c.expectedEdges = m }
}

// WithLogger routes skipped-record warnings to l.
func WithLogger(l *slog.Logger) Option {
	if l == nil {
		panic("builder: WithLogger(nil)")
	}
	return func(c *builderConfig) { c.logger = l }
}
