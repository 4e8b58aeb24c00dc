package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/a11yaudit/a11yaudit/internal/model"
)

// JSONWriter outputs scan files in JSON format.
// This format is designed for tool integration and for reloading a past
// scan into the export command.
//
// Design decision: We use standard encoding/json rather than a third-party
// JSON library because:
// 1. It's part of the standard library (no extra dependencies)
// 2. It's sufficient for our needs
// 3. It provides consistent behavior across Go versions
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	// When false, output is compact (no extra whitespace).
	indent bool
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithPrettyPrint enables pretty-printed JSON with two-space indentation.
func WithPrettyPrint() JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the scan file in JSON format.
func (w *JSONWriter) Write(file *model.ScanFile) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(file, "", "  ")
	} else {
		data, err = json.Marshal(file)
	}
	if err != nil {
		return 0, err
	}

	// Trailing newline for better terminal output
	data = append(data, '\n')

	return w.output.Write(data)
}

// SaveScanFile writes a scan file to disk as pretty-printed JSON.
func SaveScanFile(path string, file *model.ScanFile) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create scan file: %w", err)
	}
	defer f.Close()

	if _, err := NewJSONWriter(f, WithPrettyPrint()).Write(file); err != nil {
		return fmt.Errorf("write scan file %s: %w", path, err)
	}
	return nil
}

// LoadScanFile reads a scan file from disk.
// Files written by older builds may lack per-entry URL counts; loading
// normalizes them from the URL lists so downstream consumers never see
// a stale or missing count.
func LoadScanFile(path string) (*model.ScanFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scan file: %w", err)
	}

	var file model.ScanFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse scan file %s: %w", path, err)
	}

	file.Normalize()
	return &file, nil
}
