// Package log provides slog-based logging with attribute truncation.
// Scan diagnostics frequently carry whole HTML element snippets; the
// truncating handler keeps log lines readable without losing the
// identifying head of each value.
package log
