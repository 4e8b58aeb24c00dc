package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/a11yaudit/a11yaudit/internal/model"
)

// MarkdownWriter outputs scan results in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the scan results in Markdown format.
func (w *MarkdownWriter) Write(file *model.ScanFile) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, file)
	w.writeSummary(md, file)
	w.writeComponents(md, file)
	w.writeRawData(md, file)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with scan information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, file *model.ScanFile) {
	md.H1("Accessibility Audit Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Scan Date", file.Metadata.ScanDate},
			{"Pages Scanned", strconv.Itoa(len(file.Metadata.URLs))},
			{"Violation Groups", strconv.Itoa(len(file.Results))},
			{"Raw Violations", strconv.Itoa(len(file.RawResults))},
		},
	})
	md.PlainText("")
}

// writeSummary writes the severity summary section.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, file *model.ScanFile) {
	md.H2("Severity Summary")
	md.PlainText("")

	counts := file.SeverityCounts()
	md.Table(markdown.TableSet{
		Header: []string{"Severity", "Count"},
		Rows: [][]string{
			{"🔴 Critical", strconv.Itoa(counts[model.SeverityCritical])},
			{"🟠 Serious", strconv.Itoa(counts[model.SeveritySerious])},
			{"🟡 Moderate", strconv.Itoa(counts[model.SeverityModerate])},
			{"🔵 Minor", strconv.Itoa(counts[model.SeverityMinor])},
			{"⚪ Unknown", strconv.Itoa(counts[model.SeverityUnknown])},
			{"**Total**", "**" + strconv.Itoa(len(file.Results)) + "**"},
		},
	})
	md.PlainText("")

	if len(file.Results) > 0 {
		w.writePieChart(md, counts)
	}
	w.writeAlert(md, counts, len(file.Results))
}

// writePieChart writes a mermaid pie chart for severity distribution.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, counts map[model.Severity]int) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Violation Severity Distribution"),
		piechart.WithShowData(true),
	)

	if counts[model.SeverityCritical] > 0 {
		chart.LabelAndIntValue("Critical", uint64(counts[model.SeverityCritical]))
	}
	if counts[model.SeveritySerious] > 0 {
		chart.LabelAndIntValue("Serious", uint64(counts[model.SeveritySerious]))
	}
	if counts[model.SeverityModerate] > 0 {
		chart.LabelAndIntValue("Moderate", uint64(counts[model.SeverityModerate]))
	}
	if counts[model.SeverityMinor] > 0 {
		chart.LabelAndIntValue("Minor", uint64(counts[model.SeverityMinor]))
	}
	if counts[model.SeverityUnknown] > 0 {
		chart.LabelAndIntValue("Unknown", uint64(counts[model.SeverityUnknown]))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an appropriate alert based on severity counts.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, counts map[model.Severity]int, total int) {
	switch {
	case counts[model.SeverityCritical] > 0:
		md.Cautionf(
			"Critical accessibility issues detected! %d critical violation group(s) require immediate attention.",
			counts[model.SeverityCritical],
		)
	case counts[model.SeveritySerious] > 0:
		md.Warningf(
			"Serious accessibility issues detected. %d serious violation group(s) should be addressed.",
			counts[model.SeveritySerious],
		)
	case counts[model.SeverityModerate] > 0:
		md.Importantf(
			"Moderate accessibility issues found. %d violation group(s) may affect some users.",
			counts[model.SeverityModerate],
		)
	case total > 0:
		md.Note("Only minor accessibility issues detected.")
	default:
		md.Tip("No accessibility violations detected.")
	}
	md.PlainText("")
}

// writeComponents writes the aggregated violations table, one row per
// distinct offending component.
func (w *MarkdownWriter) writeComponents(md *markdown.Markdown, file *model.ScanFile) {
	md.H2("Violations by Component")
	md.PlainText("")

	if len(file.Results) == 0 {
		md.PlainText("No violations to report.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, len(file.Results))
	for _, entry := range file.Results {
		rows = append(rows, []string{
			severityBadge(entry.Priority),
			entry.RuleID,
			mdCell(entry.Description),
			entry.Tag,
			entry.ElementID,
			strconv.Itoa(entry.URLCount),
			mdCell(strings.Join(entry.URLs, " ")),
		})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Priority", "Rule", "Description", "Tag", "Element ID", "Pages", "URLs"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeRawData writes the per-element raw violations table.
func (w *MarkdownWriter) writeRawData(md *markdown.Markdown, file *model.ScanFile) {
	md.H2("All Violations (Raw Data)")
	md.PlainText("")

	if len(file.RawResults) == 0 {
		md.PlainText("No raw records.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, len(file.RawResults))
	for _, v := range file.RawResults {
		rows = append(rows, []string{
			mdCell(v.URL),
			v.RuleID,
			severityBadge(v.Priority),
			v.Tag,
			v.ElementID,
			mdCell(v.InnerText),
		})
	}

	md.Table(markdown.TableSet{
		Header: []string{"URL", "Rule", "Priority", "Tag", "Element ID", "Inner Text"},
		Rows:   rows,
	})
	md.PlainText("")
}

// severityBadge renders a severity with its color marker.
func severityBadge(s model.Severity) string {
	switch s {
	case model.SeverityCritical:
		return "🔴 critical"
	case model.SeveritySerious:
		return "🟠 serious"
	case model.SeverityModerate:
		return "🟡 moderate"
	case model.SeverityMinor:
		return "🔵 minor"
	default:
		return "⚪ unknown"
	}
}

// mdCell makes a value safe for a markdown table cell.
func mdCell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "|", "\\|")
	return s
}
