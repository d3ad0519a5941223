package main

import (
	"github.com/spf13/cobra"

	"github.com/katalvlaran/lvlbfs/config"
)

func newRootCmd() *cobra.Command {
	var (
		cfgPath string
		flags   = config.Default()
	)

	cmd := &cobra.Command{
		Use:   "lvlbfs <input-file>",
		Short: "Level-synchronous BFS on an accelerator backend, checked against a sequential reference",
		Long: `lvlbfs reads a graph from a Matrix Market file (1-based ids; a symmetric
banner makes it undirected), runs BFS from the source vertex on the selected
device for the requested number of trials, compares each trial with a
sequential reference and prints host-to-device, kernel, device-to-host and
total milliseconds.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, cfgPath, flags, args)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	f := cmd.Flags()
	f.IntVarP(&flags.GroupSize, "group-size", "g", flags.GroupSize, "work-group size (0 = min(N, 256))")
	f.IntVarP(&flags.Device, "device", "d", flags.Device, "device index within the selected class")
	f.BoolVarP(&flags.PreferCPU, "cpu", "c", flags.PreferCPU, "prefer a CPU-class device")
	f.IntVarP(&flags.Source, "source", "s", flags.Source, "0-based source vertex")
	f.IntVarP(&flags.Iterations, "iterations", "i", flags.Iterations, "number of timed trials")
	f.BoolVarP(&flags.Undirected, "undirected", "u", flags.Undirected, "treat the graph as undirected")
	f.BoolVarP(&flags.Verbose, "verbose", "v", flags.Verbose, "print device, graph and loop diagnostics")
	f.StringVar(&cfgPath, "config", "", "YAML run configuration; flags override it")
	f.BoolVar(&flags.NoCheck, "no-check", flags.NoCheck, "skip the sequential reference")
	f.BoolVar(&flags.Strict, "strict", flags.Strict, "exit non-zero on verification mismatches")
	f.StringVar(&flags.MetricsFile, "metrics-file", flags.MetricsFile, "write Prometheus metrics of the run to this file")

	return cmd
}

// resolveConfig layers defaults, the optional config file, explicitly set
// flags and the positional input, then validates the result.
func resolveConfig(cmd *cobra.Command, cfgPath string, flags config.Config, args []string) (config.Config, error) {
	cfg := config.Default()
	if cfgPath != "" {
		var err error
		if cfg, err = config.Load(cfgPath); err != nil {
			return cfg, err
		}
	}

	overrides := []struct {
		flag string
		set  func()
	}{
		{"group-size", func() { cfg.GroupSize = flags.GroupSize }},
		{"device", func() { cfg.Device = flags.Device }},
		{"cpu", func() { cfg.PreferCPU = flags.PreferCPU }},
		{"source", func() { cfg.Source = flags.Source }},
		{"iterations", func() { cfg.Iterations = flags.Iterations }},
		{"undirected", func() { cfg.Undirected = flags.Undirected }},
		{"verbose", func() { cfg.Verbose = flags.Verbose }},
		{"no-check", func() { cfg.NoCheck = flags.NoCheck }},
		{"strict", func() { cfg.Strict = flags.Strict }},
		{"metrics-file", func() { cfg.MetricsFile = flags.MetricsFile }},
	}
	for _, o := range overrides {
		if cmd.Flags().Changed(o.flag) {
			o.set()
		}
	}
	if len(args) == 1 {
		cfg.Input = args[0]
	}

	return cfg, cfg.Validate()
}
