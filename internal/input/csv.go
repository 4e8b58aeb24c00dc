package input

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
)

// ErrNoURLsFound is returned when a source contains no recognizable
// URLs.
var ErrNoURLsFound = errors.New("no URLs found in input")

// urlPattern matches an http or https URL up to whitespace or a comma.
// Spreadsheet exports wrap cells in quotes or prepend labels, so the
// cell is scanned for URLs rather than parsed as one.
var urlPattern = regexp.MustCompile(`https?://[^\s,]+`)

// ReadCSVFile extracts target URLs from the first column of a CSV file.
// Every URL found in a first-column cell is kept, in row order, with
// later duplicates dropped. Header rows need no special handling: cells
// without a URL contribute nothing.
func ReadCSVFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open CSV file: %w", err)
	}
	defer f.Close()

	urls, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return urls, nil
}

// ReadCSV extracts target URLs from the first column of CSV data.
func ReadCSV(r io.Reader) ([]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	seen := make(map[string]struct{})
	var urls []string

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read CSV: %w", err)
		}
		if len(record) == 0 {
			continue
		}

		for _, url := range urlPattern.FindAllString(record[0], -1) {
			if _, ok := seen[url]; ok {
				continue
			}
			seen[url] = struct{}{}
			urls = append(urls, url)
		}
	}

	if len(urls) == 0 {
		return nil, ErrNoURLsFound
	}
	return urls, nil
}
