package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for a11yaudit.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "a11yaudit",
		Short: "Accessibility auditing tool for websites",
		Long: `a11yaudit scans websites for WCAG accessibility violations.

It drives a headless browser with the axe-core engine, resolves sitemaps
into page lists, and aggregates violations by the offending component so
the same broken button on fifty pages is one finding, not fifty.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewScanCmd())
	cmd.AddCommand(NewResolveCmd())
	cmd.AddCommand(NewExportCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
