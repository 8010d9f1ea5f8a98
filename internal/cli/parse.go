package cli

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"wfguard/internal/config"
	"wfguard/internal/parse"
)

type parseFlags struct {
	PCAPRoot  string
	OutputDir string
	Format    string
}

var pFlags = &parseFlags{}

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Parse per-visit pcap captures into session record files and a manifest",
	RunE:  runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().StringVar(&pFlags.PCAPRoot, "pcap-root", "data", "root containing defense_off/ and defense_on/ pcaps")
	parseCmd.Flags().StringVar(&pFlags.OutputDir, "output-dir", "parsed", "output directory for parsed sessions and the manifest")
	parseCmd.Flags().StringVar(&pFlags.Format, "format", "csv", "parsed session format (csv or gob)")
}

func applyParseFlags(cfg *config.Config, cmd *cobra.Command) {
	flags := cmd.Flags()
	if flags.Changed("pcap-root") {
		cfg.Parse.PCAPRoot = pFlags.PCAPRoot
	}
	if flags.Changed("output-dir") {
		cfg.Parse.OutputDir = pFlags.OutputDir
	}
	if flags.Changed("format") {
		cfg.Parse.Format = pFlags.Format
	}
}

func runParse(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyParseFlags(cfg, cmd)
	return parseCaptures(cfg)
}

func parseCaptures(cfg *config.Config) error {
	parser, err := parse.NewParser(cfg)
	if err != nil {
		return err
	}
	rows, err := parser.Run()
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("no pcaps found under '%s' or all failed to parse", cfg.Parse.PCAPRoot)
	}
	logrus.Infof("Parsed %d sessions into '%s'", len(rows), cfg.Parse.OutputDir)
	return nil
}
