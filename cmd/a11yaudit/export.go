package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/a11yaudit/a11yaudit/internal/report"
)

// NewExportCmd creates the export command.
func NewExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <scan-file.json>",
		Short: "Export a saved scan file as Markdown, JSON, or Excel",
		Long: `Export reloads a JSON scan file saved with "scan --save" and renders
it in another format, without rescanning anything.

Scan files written by older builds that lack per-entry page counts are
normalized on load.

Examples:
  # Render a saved scan as Markdown on stdout
  a11yaudit export scan.json

  # Produce the Excel workbook for a content team
  a11yaudit export scan.json --excel --output report.xlsx`,
		Args: cobra.ExactArgs(1),
		RunE: runExportCmd,
	}

	cmd.Flags().BoolP("json", "j", false, "Output JSON report")
	cmd.Flags().BoolP("markdown", "m", false, "Output Markdown report (default)")
	cmd.Flags().BoolP("excel", "x", false, "Output Excel workbook (requires --output)")
	cmd.Flags().StringP("output", "o", "", "Write report to specified file path")

	return cmd
}

// runExportCmd executes the export command.
func runExportCmd(cmd *cobra.Command, args []string) error {
	jsonOut, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	excelOut, err := cmd.Flags().GetBool("excel")
	if err != nil {
		return err
	}
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	if excelOut && outputPath == "" {
		return errors.New("--excel requires --output (a workbook cannot go to the terminal)")
	}

	file, err := report.LoadScanFile(args[0])
	if err != nil {
		return err
	}

	var output *os.File
	if outputPath != "" {
		dir := filepath.Dir(outputPath)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}
		f, err := os.OpenFile(outputPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
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
	case excelOut:
		writer = report.NewExcelWriter(output)
	case jsonOut:
		writer = report.NewJSONWriter(output, report.WithPrettyPrint())
	default:
		writer = report.NewMarkdownWriter(output)
	}

	_, err = writer.Write(file)
	return err
}
