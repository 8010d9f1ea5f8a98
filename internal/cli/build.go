package cli

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"wfguard/internal/config"
	"wfguard/internal/dataset"
	"wfguard/internal/model"
	"wfguard/internal/sink"
)

type buildFlags struct {
	ParsedDir  string
	OutputDir  string
	Format     string
	MaxPackets int
	MinPackets int
	NoBalance  bool
	Seed       int64
	Workers    int
}

var bFlags = &buildFlags{}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build feature matrices and leak-free train/val/test splits from parsed sessions",
	RunE:  runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().StringVar(&bFlags.ParsedDir, "parsed-dir", "parsed", "directory containing manifest.csv and parsed sessions")
	buildCmd.Flags().StringVar(&bFlags.OutputDir, "output-dir", "dataset", "output directory for feature matrices and tables")
	buildCmd.Flags().StringVar(&bFlags.Format, "format", "csv", "parsed session format (csv or gob)")
	buildCmd.Flags().IntVar(&bFlags.MaxPackets, "max-packets", 2000, "pad or truncate every session to this many packets")
	buildCmd.Flags().IntVar(&bFlags.MinPackets, "min-packets", 10, "drop sessions with fewer packets")
	buildCmd.Flags().BoolVar(&bFlags.NoBalance, "no-balance", false, "skip balancing by (site, defense) group")
	buildCmd.Flags().Int64Var(&bFlags.Seed, "seed", 42, "random seed for the split")
	buildCmd.Flags().IntVar(&bFlags.Workers, "workers", 4, "number of session-processing workers")
}

// applyBuildFlags copies flags the user actually set over the file-backed
// configuration.
func applyBuildFlags(cfg *config.Config, cmd *cobra.Command) {
	flags := cmd.Flags()
	if flags.Changed("parsed-dir") {
		cfg.Build.ParsedDir = bFlags.ParsedDir
	}
	if flags.Changed("output-dir") {
		cfg.Build.OutputDir = bFlags.OutputDir
	}
	if flags.Changed("format") {
		cfg.Build.Format = bFlags.Format
	}
	if flags.Changed("max-packets") {
		cfg.Build.MaxPackets = bFlags.MaxPackets
	}
	if flags.Changed("min-packets") {
		cfg.Build.MinPackets = bFlags.MinPackets
	}
	if flags.Changed("no-balance") {
		cfg.Build.Balance = !bFlags.NoBalance
	}
	if flags.Changed("seed") {
		cfg.Build.Seed = bFlags.Seed
	}
	if flags.Changed("workers") {
		cfg.Build.NumWorkers = bFlags.Workers
	}
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyBuildFlags(cfg, cmd)
	return buildDataset(cfg)
}

// buildDataset runs the build pipeline, publishes the on-disk dataset and
// delivers the result to any enabled sinks.
func buildDataset(cfg *config.Config) error {
	builder, err := dataset.NewBuilder(cfg)
	if err != nil {
		return err
	}

	result, err := builder.Run()
	if err != nil {
		return err
	}

	if err := dataset.WriteResult(result, cfg.Build.OutputDir); err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{
		"train": result.Summary.Splits.Train,
		"val":   result.Summary.Splits.Val,
		"test":  result.Summary.Splits.Test,
	}).Infof("Dataset published to '%s'", cfg.Build.OutputDir)

	// Sink trouble never invalidates the build: the on-disk dataset is the
	// product, sinks are additional destinations.
	for _, s := range openSinks(cfg) {
		if err := s.Write(&result.Summary, result.Rows); err != nil {
			logrus.Warnf("Sink '%s' failed: %v", s.Name(), err)
		}
		s.Close()
	}
	return nil
}

// openSinks constructs the sinks enabled in the configuration, skipping any
// that fail to connect.
func openSinks(cfg *config.Config) []model.Sink {
	var sinks []model.Sink
	if cfg.Sinks.ClickHouse.Enabled {
		s, err := sink.NewClickHouseSink(cfg.Sinks.ClickHouse)
		if err != nil {
			logrus.Warnf("Failed to create clickhouse sink: %v, skipping", err)
		} else {
			sinks = append(sinks, s)
		}
	}
	if cfg.Sinks.NATS.Enabled {
		s, err := sink.NewNATSPublisher(cfg.Sinks.NATS)
		if err != nil {
			logrus.Warnf("Failed to create nats sink: %v, skipping", err)
		} else {
			sinks = append(sinks, s)
		}
	}
	return sinks
}
