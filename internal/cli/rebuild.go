package cli

import (
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the full dataset from raw pcaps (parse, then build)",
	RunE:  runRebuild,
}

func init() {
	rootCmd.AddCommand(rebuildCmd)

	rebuildCmd.Flags().StringVar(&pFlags.PCAPRoot, "pcap-root", "data", "root containing defense_off/ and defense_on/ pcaps")
	rebuildCmd.Flags().StringVar(&bFlags.OutputDir, "output-dir", "dataset", "output directory for feature matrices and tables")
	rebuildCmd.Flags().StringVar(&bFlags.Format, "format", "csv", "parsed session format (csv or gob)")
	rebuildCmd.Flags().IntVar(&bFlags.MaxPackets, "max-packets", 2000, "pad or truncate every session to this many packets")
	rebuildCmd.Flags().IntVar(&bFlags.MinPackets, "min-packets", 10, "drop sessions with fewer packets")
	rebuildCmd.Flags().BoolVar(&bFlags.NoBalance, "no-balance", false, "skip balancing by (site, defense) group")
	rebuildCmd.Flags().Int64Var(&bFlags.Seed, "seed", 42, "random seed for the split")
}

func runRebuild(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("pcap-root") {
		cfg.Parse.PCAPRoot = pFlags.PCAPRoot
	}
	if flags.Changed("output-dir") {
		cfg.Build.OutputDir = bFlags.OutputDir
	}
	if flags.Changed("format") {
		cfg.Parse.Format = bFlags.Format
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

	// Parsed sessions land inside the dataset tree so one rebuild leaves a
	// self-contained output directory.
	parsedDir := filepath.Join(cfg.Build.OutputDir, "parsed")
	cfg.Parse.OutputDir = parsedDir
	cfg.Build.ParsedDir = parsedDir
	cfg.Parse.Format = cfg.Build.Format

	logrus.Infof("Step 1: parsing pcaps -> %s", parsedDir)
	if err := parseCaptures(cfg); err != nil {
		return err
	}

	logrus.Infof("Step 2: building dataset -> %s", cfg.Build.OutputDir)
	return buildDataset(cfg)
}
