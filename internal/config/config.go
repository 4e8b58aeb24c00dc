package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultFetchTimeout bounds a single sitemap fetch. Sitemaps are
	// small documents; anything slower is effectively unreachable.
	DefaultFetchTimeout = 10 * time.Second

	// DefaultPageTimeout bounds one page's navigation plus audit in the
	// headless browser. Heavy single-page apps can take most of this.
	DefaultPageTimeout = 60 * time.Second

	// DefaultUserAgent imitates a desktop browser. Sitemap endpoints
	// frequently sit behind WAFs that reject obvious bot traffic.
	DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

	// DefaultMaxBodySize limits how much of a sitemap document is read.
	// 5MB covers even the 50,000-entry maximum the sitemap protocol allows.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultAxeSourceURL serves the pinned axe-core engine build.
	DefaultAxeSourceURL = "https://cdn.jsdelivr.net/npm/axe-core@4.10.2/axe.min.js"

	// AppName is the application name used for XDG directory paths.
	AppName = "a11yaudit"
)

// DefaultWCAGTags selects the WCAG 2.0 A and AA rule sets, the baseline
// most accessibility policies require.
var DefaultWCAGTags = []string{"wcag2a", "wcag2aa"}

// Config holds all configuration options for a11yaudit.
// This struct is designed to be populated from CLI flags and passed through
// the application via dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., ScanConfig, ReportConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant benefit.
type Config struct {
	// Targets is the list of page URLs to scan, given as positional
	// arguments or pasted text.
	Targets []string

	// SitemapURL, when set, is resolved into the target list before
	// scanning. Mutually exclusive with Targets and CSVPath.
	SitemapURL string

	// CSVPath, when set, supplies targets from the first column of a
	// CSV file. Mutually exclusive with Targets and SitemapURL.
	CSVPath string

	// FetchTimeout is the per-request timeout for sitemap fetches.
	FetchTimeout time.Duration

	// PageTimeout bounds one page's navigation and audit.
	PageTimeout time.Duration

	// UserAgent is the User-Agent header sent with sitemap requests.
	UserAgent string

	// MaxBodySize is the maximum sitemap response body size in bytes.
	// Set to 0 to use the default (5MB).
	MaxBodySize int64

	// AxeSourceURL is where the axe-core engine script is fetched from.
	AxeSourceURL string

	// WCAGTags selects which axe rule sets to audit against.
	WCAGTags []string

	// SavePath, when set, writes the full scan results as a JSON scan
	// file that the export command can reload later.
	SavePath string

	// JSONReport enables JSON report output on stdout.
	// Mutually exclusive with MarkdownReport and ExcelReport only in the
	// sense that ReportFile holds a single destination; formats without
	// a file go to stdout.
	JSONReport bool

	// MarkdownReport enables Markdown report output.
	MarkdownReport bool

	// ExcelReport enables xlsx workbook output. Requires ReportFile
	// since a binary workbook is useless on a terminal.
	ExcelReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	ReportFile string

	// DBDir is the directory for the scan-history SQLite database.
	// Defaults to the XDG data directory. Set SkipHistory to disable.
	DBDir string

	// SkipHistory disables recording the scan in the history database.
	SkipHistory bool

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .a11yaudit in the current
	// directory and then in the user's home directory.
	ConfigFilePath string
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use cases.
// Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., timeouts, the
// rule tag list). This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		FetchTimeout: DefaultFetchTimeout,
		PageTimeout:  DefaultPageTimeout,
		UserAgent:    DefaultUserAgent,
		MaxBodySize:  DefaultMaxBodySize,
		AxeSourceURL: DefaultAxeSourceURL,
		WCAGTags:     append([]string(nil), DefaultWCAGTags...),
		DBDir:        XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for a11yaudit.
// On Linux: ~/.local/share/a11yaudit
// On macOS: ~/Library/Application Support/a11yaudit
// On Windows: %LOCALAPPDATA%\a11yaudit
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for a11yaudit.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before any scanning begins.
//
// We chose to return the first error found rather than collecting all errors
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	sources := 0
	if len(c.Targets) > 0 {
		sources++
	}
	if c.SitemapURL != "" {
		sources++
	}
	if c.CSVPath != "" {
		sources++
	}
	if sources == 0 {
		return ErrNoTarget
	}
	if sources > 1 {
		return ErrConflictingTargets
	}

	if c.FetchTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.PageTimeout <= 0 {
		return ErrInvalidPageTimeout
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	if len(c.WCAGTags) == 0 {
		return ErrNoWCAGTags
	}

	return nil
}
