package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"btcreport/internal/config"
	"btcreport/internal/logging"
	"btcreport/internal/report"
	"btcreport/internal/tier1"
	"btcreport/pkg/model"
)

var (
	cfgFile    string
	publicDir  string
	tailRows   int
	fullBundle bool
	reportFile string
	format     string
)

func main() {
	// Best effort: the env knobs may live in a local .env file
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "btcreport",
		Short: "BTC market data report bundler",
		Long: `btcreport folds the BTC dataset files in the public directory into one
compact report artifact for dashboard consumption:

  build   - assemble report.json (and optionally report_full.json)
  tier1   - fetch the tier-1 snapshot (Coinbase spot, Yahoo macro, OKX funding)
  status  - inspect the status block of an existing report

Examples:
  btcreport build --last24h-tail 3 --full
  btcreport tier1
  btcreport status --format json`,
	}
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file path")
	rootCmd.PersistentFlags().StringVar(&publicDir, "public-dir", "", "directory holding the dataset files (default from config)")

	buildCmd := &cobra.Command{
		Use:   "build",
		Short: "Assemble the report from the dataset files",
		RunE:  runBuild,
	}
	buildCmd.Flags().IntVar(&tailRows, "last24h-tail", 3, "rows of last-24h to keep verbatim")
	buildCmd.Flags().BoolVar(&fullBundle, "full", false, "also write the unsummarized full bundle")

	tier1Cmd := &cobra.Command{
		Use:   "tier1",
		Short: "Fetch the tier-1 market snapshot",
		RunE:  runTier1,
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show the status of an existing report",
		RunE:  runStatus,
	}
	statusCmd.Flags().StringVar(&reportFile, "report", "", "report file to inspect (default from config)")
	statusCmd.Flags().StringVar(&format, "format", "table", "output format: table, json")

	rootCmd.AddCommand(buildCmd, tier1Cmd, statusCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	// Override config with CLI flags
	if publicDir != "" {
		cfg.Report.PublicDir = publicDir
	}
	if cmd.Flags().Changed("last24h-tail") {
		cfg.Report.Last24hTailRows = tailRows
	}
	if cmd.Flags().Changed("full") {
		cfg.Report.FullBundle = fullBundle
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (zerolog.Logger, error) {
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return logger, err
	}
	return logger.With().Str("run_id", uuid.NewString()).Logger(), nil
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	opts := report.Options{
		Dir:             cfg.Report.PublicDir,
		OutputFile:      cfg.Report.OutputFile,
		Last24hTailRows: cfg.Report.Last24hTailRows,
		PeriodTailRows:  cfg.Report.PeriodTailRows,
	}
	if cfg.Report.FullBundle {
		opts.FullFile = cfg.Report.FullOutputFile
	}

	return report.NewAssembler(opts, logger).Run()
}

func runTier1(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nInterrupted. Stopping fetch...")
		cancel()
	}()

	client := tier1.NewClient(cfg.Tier1.Timeout, cfg.Tier1.RateLimit)
	fetcher := tier1.NewFetcher(client, logger)

	// Setup progress bar
	bar := progressbar.NewOptions(tier1.SourceCount,
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("Fetching"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]█[reset]",
			SaucerHead:    "[green]█[reset]",
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
	fetcher.SetProgressCallback(func(done, total int) {
		bar.Set(done)
	})

	snap := fetcher.Snapshot(ctx)
	bar.Finish()
	fmt.Println()

	path := filepath.Join(cfg.Report.PublicDir, cfg.Tier1.OutputFile)
	if err := report.WriteJSON(path, snap); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	logger.Info().Str("path", path).Msg("tier-1 snapshot written")
	fmt.Printf("Wrote %s\n", path)
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	name := cfg.Report.OutputFile
	if reportFile != "" {
		name = reportFile
	}
	path := filepath.Join(cfg.Report.PublicDir, name)

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading report: %w", err)
	}
	var rep model.Report
	if err := json.Unmarshal(data, &rep); err != nil {
		return fmt.Errorf("parsing report: %w", err)
	}

	if format == "json" {
		return outputStatusJSON(&rep)
	}
	return outputStatusTable(&rep)
}

func outputStatusJSON(rep *model.Report) error {
	keys := make([]string, 0, len(rep.Data))
	for k := range rep.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := struct {
		GeneratedUTC string       `json:"generated_utc"`
		Schema       string       `json:"schema"`
		Status       model.Status `json:"status"`
		Datasets     []string     `json:"datasets"`
	}{rep.GeneratedUTC, rep.Schema, rep.Status, keys}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

func outputStatusTable(rep *model.Report) error {
	state := "OK"
	if !rep.Status.OK {
		state = "DEGRADED"
	}
	fmt.Printf("Report %s (%s) generated %s\n\n", state, rep.Schema, rep.GeneratedUTC)

	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"Dataset", "State", "Rows", "Last Close", "Change", "Label"}),
	)

	for _, ds := range report.Datasets(0, 0) {
		entry, ok := rep.Data[ds.Key]
		if !ok {
			table.Append([]string{ds.Key, "absent", "-", "-", "-", "-"})
			continue
		}
		table.Append(datasetRow(ds.Key, entry))
	}
	table.Render()

	if len(rep.Status.MissingFiles) > 0 {
		fmt.Printf("\nMissing: %s\n", strings.Join(rep.Status.MissingFiles, ", "))
	}
	if len(rep.Status.Errors) > 0 {
		fmt.Println("\nErrors:")
		names := make([]string, 0, len(rep.Status.Errors))
		for n := range rep.Status.Errors {
			names = append(names, n)
		}
		sort.Strings(names)
		for _, n := range names {
			fmt.Printf("  %s: %s\n", n, rep.Status.Errors[n])
		}
	}
	return nil
}

// datasetRow renders one table line from either a summarized dataset or a
// kept document with rows.
func datasetRow(key string, entry any) []string {
	count, lastClose, change, label := "-", "-", "-", "-"

	m, isMap := entry.(map[string]any)
	if isMap {
		if sum, ok := m["summary"].(map[string]any); ok {
			if n := report.Num(sum["count"]); n != nil {
				count = fmt.Sprintf("%.0f", *n)
			}
			if c := report.Num(sum["close_last"]); c != nil {
				lastClose = fmt.Sprintf("%.2f", *c)
			}
			if p := report.Num(sum["close_change_pct"]); p != nil {
				change = fmt.Sprintf("%+.2f%%", *p)
			}
		}
		if l, ok := m["latest_label"].(string); ok {
			label = l
		}
	}

	if rows := report.RowsOf(entry); len(rows) > 0 {
		last := rows[len(rows)-1]
		count = fmt.Sprintf("%d", len(rows))
		if c := report.Num(last["close"]); c != nil {
			lastClose = fmt.Sprintf("%.2f", *c)
		}
		if l, ok := last["composite_label"].(string); ok {
			label = l
		}
	}

	return []string{key, "loaded", count, lastClose, change, label}
}
