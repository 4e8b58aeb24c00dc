package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/a11yaudit/a11yaudit/internal/model"
	"github.com/a11yaudit/a11yaudit/internal/scanner"
)

// Workbook sheet names. Spreadsheet users navigate by these, so they
// stay stable across releases.
const (
	componentSheet = "Violations by Component"
	rawSheet       = "All Violations (Raw Data)"
)

var componentHeader = []any{
	"Priority", "Rule ID", "Description", "Tag", "Element ID",
	"Element Classes", "Inner Text", "Page Count", "Pages", "Element HTML",
}

var rawHeader = []any{
	"URL", "Rule ID", "Priority", "Description", "Tag", "Element ID",
	"Element Classes", "Inner Text", "Element HTML",
}

// ExcelWriter outputs scan results as an Excel workbook with two
// sheets: the aggregated component view and the raw per-element data.
// This is the format auditors hand to content teams.
type ExcelWriter struct {
	baseWriter
}

// NewExcelWriter creates an ExcelWriter that outputs to the given writer.
func NewExcelWriter(output io.Writer) *ExcelWriter {
	return &ExcelWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the scan results as an xlsx workbook.
func (w *ExcelWriter) Write(file *model.ScanFile) (int, error) {
	book := excelize.NewFile()
	defer book.Close()

	if err := w.writeComponentSheet(book, file.Results); err != nil {
		return 0, err
	}
	if err := w.writeRawSheet(book, file.RawResults); err != nil {
		return 0, err
	}

	// The default sheet excelize creates is replaced by the component
	// sheet as the workbook's first page.
	if err := book.DeleteSheet("Sheet1"); err != nil {
		return 0, fmt.Errorf("delete default sheet: %w", err)
	}

	n, err := book.WriteTo(w.output)
	if err != nil {
		return int(n), fmt.Errorf("write workbook: %w", err)
	}
	return int(n), nil
}

// writeComponentSheet writes one row per aggregated violation group.
func (w *ExcelWriter) writeComponentSheet(book *excelize.File, entries []model.AggregateEntry) error {
	if _, err := book.NewSheet(componentSheet); err != nil {
		return fmt.Errorf("create sheet %q: %w", componentSheet, err)
	}
	if err := setRow(book, componentSheet, 1, componentHeader); err != nil {
		return err
	}

	for i, entry := range entries {
		row := []any{
			entry.Priority.String(),
			entry.RuleID,
			entry.Description,
			entry.Tag,
			entry.ElementID,
			entry.ElementClasses,
			entry.InnerText,
			entry.URLCount,
			strings.Join(entry.URLs, "\n"),
			scanner.PrettyHTML(entry.ElementHTML),
		}
		if err := setRow(book, componentSheet, i+2, row); err != nil {
			return err
		}
	}

	return nil
}

// writeRawSheet writes one row per raw violation record.
func (w *ExcelWriter) writeRawSheet(book *excelize.File, raw []model.RawViolation) error {
	if _, err := book.NewSheet(rawSheet); err != nil {
		return fmt.Errorf("create sheet %q: %w", rawSheet, err)
	}
	if err := setRow(book, rawSheet, 1, rawHeader); err != nil {
		return err
	}

	for i, v := range raw {
		row := []any{
			v.URL,
			v.RuleID,
			v.Priority.String(),
			v.Description,
			v.Tag,
			v.ElementID,
			v.ElementClasses,
			v.InnerText,
			scanner.PrettyHTML(v.ElementHTML),
		}
		if err := setRow(book, rawSheet, i+2, row); err != nil {
			return err
		}
	}

	return nil
}

// setRow writes one spreadsheet row starting at column A.
func setRow(book *excelize.File, sheet string, rowNum int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return fmt.Errorf("row %d: %w", rowNum, err)
	}
	if err := book.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write row %d of %q: %w", rowNum, sheet, err)
	}
	return nil
}
