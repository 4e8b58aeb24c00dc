package report

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"
)

// TestExcelWriter tests that the workbook contains both sheets with the
// expected headers and data rows, by reopening what was written.
func TestExcelWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	n, err := NewExcelWriter(&buf).Write(sampleScanFile())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n == 0 {
		t.Error("expected non-zero byte count")
	}

	book, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("written workbook does not reopen: %v", err)
	}
	defer book.Close()

	sheets := book.GetSheetList()
	if len(sheets) != 2 {
		t.Fatalf("sheets = %v, expected exactly 2", sheets)
	}
	if sheets[0] != componentSheet || sheets[1] != rawSheet {
		t.Errorf("sheets = %v, expected [%q %q]", sheets, componentSheet, rawSheet)
	}

	// Component sheet: header row plus one row per aggregate entry,
	// sorted critical first.
	rows, err := book.GetRows(componentSheet)
	if err != nil {
		t.Fatalf("read component sheet: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("component rows = %d, expected header + 2 entries", len(rows))
	}
	if rows[0][0] != "Priority" || rows[0][1] != "Rule ID" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][0] != "critical" || rows[1][1] != "button-name" {
		t.Errorf("first data row = %v, expected critical button-name first", rows[1])
	}

	// Raw sheet: header plus one row per raw record, in scan order.
	rows, err = book.GetRows(rawSheet)
	if err != nil {
		t.Fatalf("read raw sheet: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("raw rows = %d, expected header + 2 records", len(rows))
	}
	if rows[1][0] != "https://example.com/" {
		t.Errorf("first raw row URL = %q", rows[1][0])
	}
}

// TestExcelWriterEmptyScan tests a workbook with only header rows.
func TestExcelWriterEmptyScan(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	file := sampleScanFile()
	file.Results = nil
	file.RawResults = nil

	if _, err := NewExcelWriter(&buf).Write(file); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	book, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("written workbook does not reopen: %v", err)
	}
	defer book.Close()

	rows, err := book.GetRows(componentSheet)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Errorf("expected header row only, got %d rows", len(rows))
	}
}
