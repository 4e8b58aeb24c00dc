package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/a11yaudit/a11yaudit/internal/audit"
	"github.com/a11yaudit/a11yaudit/internal/config"
	"github.com/a11yaudit/a11yaudit/internal/database"
	"github.com/a11yaudit/a11yaudit/internal/input"
	"github.com/a11yaudit/a11yaudit/internal/log"
	"github.com/a11yaudit/a11yaudit/internal/model"
	"github.com/a11yaudit/a11yaudit/internal/report"
	"github.com/a11yaudit/a11yaudit/internal/scanner"
	"github.com/a11yaudit/a11yaudit/internal/sitemap"
)

// NewScanCmd creates the scan command.
func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [page-url...]",
		Short: "Scan pages for WCAG accessibility violations",
		Long: `Scan audits web pages with the axe-core engine in a headless browser.

Targets come from exactly one source: page URLs as arguments, a sitemap
resolved recursively with --sitemap, or the first column of a CSV file
with --csv. Violations are aggregated by offending component across all
scanned pages.

A page that fails to load is recorded as a critical SCAN_ERROR finding
and the scan continues with the remaining pages. Ctrl-C stops the scan
at the next page boundary; results for pages already scanned are kept.

Examples:
  # Scan specific pages
  a11yaudit scan https://example.com/ https://example.com/contact

  # Scan every page listed in a sitemap
  a11yaudit scan --sitemap https://example.com/sitemap.xml

  # Scan targets from a spreadsheet export
  a11yaudit scan --csv targets.csv

  # Save full results for later export, plus an Excel report
  a11yaudit scan --sitemap https://example.com/sitemap.xml \
    --save scan.json --excel --output report.xlsx`,
		Args: cobra.ArbitraryArgs,
		RunE: runScanCmd,
	}

	// Target source flags
	cmd.Flags().StringP("sitemap", "s", "",
		"Resolve targets from a sitemap URL (XML index, urlset, or HTML table)")
	cmd.Flags().String("csv", "",
		"Read targets from the first column of a CSV file")

	// Scan behavior flags
	cmd.Flags().DurationP("timeout", "t", config.DefaultFetchTimeout,
		"Timeout for each sitemap fetch")
	cmd.Flags().Duration("page-timeout", config.DefaultPageTimeout,
		"Timeout for each page's navigation and audit")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header for sitemap fetches")
	cmd.Flags().String("axe-source", config.DefaultAxeSourceURL,
		"URL serving the axe-core engine script")
	cmd.Flags().StringSlice("tags", config.DefaultWCAGTags,
		"axe rule tags to audit against")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .a11yaudit in current or home directory)")

	// Output flags
	cmd.Flags().String("save", "",
		"Save full scan results as a JSON scan file")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (default)")
	cmd.Flags().BoolP("excel", "x", false,
		"Output Excel workbook (requires --output)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().Bool("no-history", false,
		"Skip recording this scan in the history database")

	return cmd
}

// runScanCmd executes the scan command.
func runScanCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildScanConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	if cfg.ExcelReport && cfg.ReportFile == "" {
		return errors.New("--excel requires --output (a workbook cannot go to the terminal)")
	}

	logger := log.NewLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Ctrl-C cancels at the next page boundary.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runScan(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildScanConfig creates a Config from cobra command flags, layered on
// top of the optional config file.
func buildScanConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error
	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Config file settings apply first; explicit flags override below.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	if configPath != "" {
		cf, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cf.Apply(cfg)
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	cfg.SitemapURL, err = cmd.Flags().GetString("sitemap")
	if err != nil {
		return nil, err
	}
	cfg.CSVPath, err = cmd.Flags().GetString("csv")
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("timeout") {
		if cfg.FetchTimeout, err = cmd.Flags().GetDuration("timeout"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("page-timeout") {
		if cfg.PageTimeout, err = cmd.Flags().GetDuration("page-timeout"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("user-agent") {
		if cfg.UserAgent, err = cmd.Flags().GetString("user-agent"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("axe-source") {
		if cfg.AxeSourceURL, err = cmd.Flags().GetString("axe-source"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("tags") {
		if cfg.WCAGTags, err = cmd.Flags().GetStringSlice("tags"); err != nil {
			return nil, err
		}
	}

	cfg.SavePath, err = cmd.Flags().GetString("save")
	if err != nil {
		return nil, err
	}
	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}
	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}
	cfg.ExcelReport, err = cmd.Flags().GetBool("excel")
	if err != nil {
		return nil, err
	}
	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}
	cfg.SkipHistory, err = cmd.Flags().GetBool("no-history")
	if err != nil {
		return nil, err
	}

	cfg.Verbose = getVerboseFlag(cmd)
	cfg.Targets = args

	return cfg, nil
}

// runScan executes the scan.
func runScan(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	urls, err := collectTargets(ctx, cfg, logger)
	if err != nil {
		return err
	}

	fmt.Printf("Scanning %d page(s)...\n", len(urls))

	axe, err := scanner.NewAxeScanner(ctx,
		scanner.WithAxeSourceURL(cfg.AxeSourceURL),
		scanner.WithWCAGTags(cfg.WCAGTags),
		scanner.WithPageTimeout(cfg.PageTimeout),
		scanner.WithScanLogger(logger),
	)
	if err != nil {
		return err
	}
	defer axe.Close()

	runner := audit.NewRunner(axe,
		audit.WithLogger(logger),
		audit.WithProgress(func(completed, total int) {
			fmt.Printf("[%d/%d] pages scanned\n", completed, total)
		}),
	)

	// The scan runs in its own goroutine so a browser hang cannot wedge
	// signal handling in main.
	g, gctx := errgroup.WithContext(ctx)
	var result *audit.Result
	g.Go(func() error {
		var runErr error
		result, runErr = runner.Run(gctx, urls)
		return runErr
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if result.State == audit.StateCancelled {
		fmt.Println("Scan cancelled; keeping results for pages already scanned.")
	}

	file := model.NewScanFile(result.ScannedAt, result.Entries, result.Raw)

	if cfg.SavePath != "" {
		if err := report.SaveScanFile(cfg.SavePath, file); err != nil {
			return err
		}
		fmt.Printf("Scan results saved to %s\n", cfg.SavePath)
	}

	if err := outputReport(cfg, file); err != nil {
		return err
	}

	if !cfg.SkipHistory {
		// The save still runs after Ctrl-C; cancellation only stops the
		// scan loop itself.
		if err := saveHistory(context.WithoutCancel(ctx), cfg, file, result.State, logger); err != nil {
			// History is a convenience; a failed save never fails the scan.
			logger.Error("failed to record scan history", "error", err)
		}
	}

	return nil
}

// collectTargets resolves the configured target source into page URLs.
func collectTargets(ctx context.Context, cfg *config.Config, logger *slog.Logger) ([]string, error) {
	switch {
	case cfg.SitemapURL != "":
		fmt.Printf("Resolving sitemap %s...\n", cfg.SitemapURL)
		resolver := sitemap.NewResolver(
			sitemap.WithFetcher(sitemap.NewHTTPFetcher(
				sitemap.WithUserAgent(cfg.UserAgent),
				sitemap.WithTimeout(cfg.FetchTimeout),
				sitemap.WithMaxBodySize(cfg.MaxBodySize),
			)),
			sitemap.WithLogger(logger),
		)
		urls := resolver.Resolve(ctx, cfg.SitemapURL)
		if len(urls) == 0 {
			return nil, fmt.Errorf("no page URLs found from sitemap %s", cfg.SitemapURL)
		}
		fmt.Printf("Found %d page(s)\n", len(urls))
		return urls, nil

	case cfg.CSVPath != "":
		urls, err := input.ReadCSVFile(cfg.CSVPath)
		if err != nil {
			return nil, err
		}
		return urls, nil

	default:
		return input.ParseURLList(joinLines(cfg.Targets))
	}
}

// joinLines joins arguments into one newline-separated block so the
// free-form URL extractor applies its dedupe in a single pass.
func joinLines(args []string) string {
	out := ""
	for _, a := range args {
		out += a + "\n"
	}
	return out
}

// outputReport outputs the scan results in the requested format.
func outputReport(cfg *config.Config, file *model.ScanFile) error {
	var output *os.File
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	var writer report.Writer
	switch {
	case cfg.ExcelReport:
		writer = report.NewExcelWriter(output)
	case cfg.JSONReport:
		writer = report.NewJSONWriter(output, report.WithPrettyPrint())
	default:
		// Markdown is the default human-readable format.
		writer = report.NewMarkdownWriter(output)
	}

	_, err := writer.Write(file)
	return err
}

// saveHistory records the scan summary in the history database.
func saveHistory(ctx context.Context, cfg *config.Config, file *model.ScanFile, state audit.State, logger *slog.Logger) error {
	db, err := database.Open(cfg.DBDir)
	if err != nil {
		return err
	}
	defer db.Close()

	id, err := db.SaveScan(ctx, file, state.String())
	if err != nil {
		return err
	}

	logger.Info("scan recorded in history", "id", id, "db", db.Path())
	return nil
}
