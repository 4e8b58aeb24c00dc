package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/a11yaudit/a11yaudit/internal/config"
	"github.com/a11yaudit/a11yaudit/internal/log"
	"github.com/a11yaudit/a11yaudit/internal/sitemap"
)

// NewResolveCmd creates the resolve command.
func NewResolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve <sitemap-url>",
		Short: "Resolve a sitemap into a flat list of page URLs",
		Long: `Resolve traverses a sitemap and prints every page URL it finds,
one per line, without scanning anything.

Sitemap index documents are followed recursively, the HTML table view
some sitemap plugins serve is understood, and cyclic references are cut
off after the first visit. The output feeds directly into scripts or a
later scan.

Examples:
  # List every page a scan would cover
  a11yaudit resolve https://example.com/sitemap.xml

  # Feed the result into a CSV for a later scan
  a11yaudit resolve https://example.com/sitemap.xml > targets.csv`,
		Args: cobra.ExactArgs(1),
		RunE: runResolveCmd,
	}

	cmd.Flags().DurationP("timeout", "t", config.DefaultFetchTimeout,
		"Timeout for each sitemap fetch")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header for sitemap fetches")

	return cmd
}

// runResolveCmd executes the resolve command.
func runResolveCmd(cmd *cobra.Command, args []string) error {
	timeout, err := cmd.Flags().GetDuration("timeout")
	if err != nil {
		return err
	}
	userAgent, err := cmd.Flags().GetString("user-agent")
	if err != nil {
		return err
	}

	logger := log.NewLogger(os.Stderr, getVerboseFlag(cmd))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	resolver := sitemap.NewResolver(
		sitemap.WithFetcher(sitemap.NewHTTPFetcher(
			sitemap.WithUserAgent(userAgent),
			sitemap.WithTimeout(timeout),
		)),
		sitemap.WithLogger(logger),
	)

	urls := resolver.Resolve(ctx, args[0])
	if len(urls) == 0 {
		return fmt.Errorf("no page URLs found from sitemap %s", args[0])
	}

	for _, u := range urls {
		fmt.Fprintln(cmd.OutOrStdout(), u)
	}
	return nil
}
