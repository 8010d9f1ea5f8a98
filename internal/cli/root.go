// Package cli wires the parse, build and rebuild subcommands of the
// wfguard binary.
package cli

import (
	"errors"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"wfguard/internal/config"
	"wfguard/internal/dataset"
)

// Exit codes: a missing or empty manifest (and any configuration problem)
// exits 1; a corpus emptied by quality filtering exits 2.
const (
	exitFailure     = 1
	exitEmptyCorpus = 2
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:           "wfguard",
	Short:         "Build website-fingerprinting datasets from per-visit traffic captures",
	Long:          "wfguard converts captured per-visit network traffic into fixed-length feature vectors,\nbalances them per (site, defense) group and partitions them into leak-free train/val/test splits.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI and maps pipeline errors to exit codes.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logrus.Error(err)
		if errors.Is(err, dataset.ErrEmptyCorpus) {
			os.Exit(exitEmptyCorpus)
		}
		os.Exit(exitFailure)
	}
}

func init() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to a YAML config file (flags override it)")
}

// loadConfig returns the file-backed configuration when --config is given
// and the defaults otherwise.
func loadConfig() (*config.Config, error) {
	if cfgFile == "" {
		return config.Default(), nil
	}
	return config.Load(cfgFile)
}
