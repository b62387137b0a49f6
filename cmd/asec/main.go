package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/invertedv/asec"
	"github.com/invertedv/asec/config"
	"github.com/invertedv/asec/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	verbose bool
	cfgPath string

	year int

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "asec",
	Short: "asec - CPS ASEC microdata tables",
	Long: `asec downloads the public-use CSV archive of the Census CPS Annual Social and
Economic Supplement for a year and stores its person, family and household
tables, along with tax_unit and spm_unit tables derived from the person rows.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.Load(cfgPath); err != nil {
			return err
		}

		logger, err = config.NewLogger(cfg.Log, verbose)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Download the archive for a year and build its tables",
	Long: `Downloads the ASEC archive for --year, loads pppub, ffpub and hhpub, derives
tax_unit and spm_unit and saves all of them to the store.  Nothing is saved
unless every step succeeds.`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "List the tables stored for a year",
	Args:  cobra.NoArgs,
	RunE:  runTables,
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print headline figures of the unit tables for a year",
	Args:  cobra.NoArgs,
	RunE:  runSummary,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "YAML config file (default: built-in settings)")

	for _, cmd := range []*cobra.Command{generateCmd, tablesCmd, summaryCmd} {
		cmd.Flags().IntVarP(&year, "year", "y", 0, "Survey year, four digits (required)")
		_ = cmd.MarkFlagRequired("year")
		rootCmd.AddCommand(cmd)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	g, err := asec.NewGenerator(cfg, asec.GenLogger(logger))
	if err != nil {
		return err
	}

	res, err := g.Generate(ctx, year)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run %s: %s from %s\n", res.RunID, humanize.Bytes(uint64(res.Bytes)), res.URL)
	for _, key := range []string{asec.KeyPerson, asec.KeyFamily, asec.KeyHousehold, asec.KeyTaxUnit, asec.KeySPMUnit} {
		fmt.Fprintf(out, "%-10s %s rows\n", key, humanize.Comma(int64(res.Rows[key])))
	}

	return nil
}

func openStore(ctx context.Context) (*store.Store, error) {
	return store.Open(ctx, cfg.Store, cfg.Dataset, year, logger)
}

func runTables(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	s, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	keys, err := s.Keys(ctx)
	if err != nil {
		return fmt.Errorf("no tables for %s %d: %w", cfg.Dataset, year, err)
	}

	out := cmd.OutOrStdout()
	for _, key := range keys {
		n, err := s.Count(ctx, key)
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "%-10s %s rows\n", key, humanize.Comma(int64(n)))
	}

	return nil
}

func runSummary(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	s, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	spm, err := s.Load(ctx, asec.KeySPMUnit)
	if err != nil {
		return err
	}

	tax, err := s.Load(ctx, asec.KeyTaxUnit)
	if err != nil {
		return err
	}

	sm, err := asec.Summarize(spm, tax)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), sm.String())

	return nil
}
