// Package report renders scan results in multiple output formats and
// persists them as JSON scan files. All writers implement the same
// Writer interface so output destinations are interchangeable.
package report
