// Package database stores a history of completed scans in a local
// SQLite file, so past audits can be listed and compared without
// keeping every JSON scan file around.
package database
