// Package input collects target URLs from user-supplied sources: CSV
// files exported from spreadsheets and free-form pasted text.
package input
