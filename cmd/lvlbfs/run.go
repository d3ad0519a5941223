package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/katalvlaran/lvlbfs/accel"
	"github.com/katalvlaran/lvlbfs/builder"
	"github.com/katalvlaran/lvlbfs/config"
	"github.com/katalvlaran/lvlbfs/harness"
	"github.com/katalvlaran/lvlbfs/mtx"
)

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func run(ctx context.Context, cfg config.Config, stdout, stderr io.Writer) (err error) {
	logger := newLogger(stderr, cfg.Verbose)
	fmt.Fprintln(stdout, cfg.Input)

	g, err := loadGraph(cfg, stdout, logger)
	if err != nil {
		return err
	}
	dev, err := accel.Select(accel.Devices(), cfg.PreferCPU, cfg.Device)
	if err != nil {
		return err
	}

	backend := accel.NewHost(dev, accel.WithLogger(logger))
	defer func() {
		err = errors.Join(err, backend.Close())
	}()

	reg := prometheus.NewRegistry()
	metrics, err := harness.NewMetrics(reg)
	if err != nil {
		return err
	}

	rep, err := harness.Run(ctx, g, backend,
		harness.WithSource(cfg.Source),
		harness.WithTrials(cfg.Iterations),
		harness.WithGroupSize(cfg.GroupSize),
		harness.WithSkipCheck(cfg.NoCheck),
		harness.WithLogger(logger),
		harness.WithMetrics(metrics),
	)
	if err != nil {
		if rep != nil {
			logger.Error("run aborted", slog.String("run", rep.RunID.String()),
				slog.Int("completed", rep.Completed()), slog.Int("trials", rep.Trials), slog.Any("err", err))
			if cfg.Verbose {
				_ = rep.WriteVerbose(stdout)
			}
		}
		return err
	}

	if cfg.Verbose {
		err = rep.WriteVerbose(stdout)
	} else {
		err = rep.WriteSummary(stdout)
	}
	if err != nil {
		return err
	}

	if cfg.MetricsFile != "" {
		if err = prometheus.WriteToTextfile(cfg.MetricsFile, reg); err != nil {
			return fmt.Errorf("metrics file: %w", err)
		}
	}

	if rep.MismatchCount > 0 {
		logger.Warn("verification failed", slog.Int("mismatches", rep.MismatchCount))
		if cfg.Strict {
			return rep.MismatchErr()
		}
	}

	return nil
}

// loadGraph reads cfg.Input into a CSR graph. A symmetric banner or
// cfg.Undirected makes it undirected.
func loadGraph(cfg config.Config, stdout io.Writer, logger *slog.Logger) (*builder.Graph, error) {
	r, closer, err := mtx.Open(cfg.Input)
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	h := r.Header()
	if !h.Square() {
		logger.Warn("matrix is not square", slog.Int("rows", h.Rows), slog.Int("cols", h.Cols),
			slog.Int("vertices", h.Vertices()))
	}
	if cfg.Verbose {
		fmt.Fprintf(stdout, "matrix: %s, %dx%d, %d entries\n", h.Banner, h.Rows, h.Cols, h.Entries)
	}

	g, bRep, err := builder.Build(h.Vertices(), r.Edges(),
		builder.WithUndirected(cfg.Undirected || h.Banner.Undirected()),
		builder.WithExpectedEdges(h.Entries),
		builder.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}
	if missing := r.Missing(); missing > 0 {
		logger.Warn("input ended before the declared entry count",
			slog.Int("declared", h.Entries), slog.Int("missing", missing))
	}
	if bRep.Skipped > 0 {
		logger.Warn("malformed records skipped",
			slog.Int("skipped", bRep.Skipped), slog.Int("accepted", bRep.Accepted))
	}

	return g, nil
}
