package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".a11yaudit"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// Duration wraps time.Duration so YAML values can use forms like "15s".
// yaml.v3 only decodes integers into time.Duration directly.
type Duration time.Duration

// UnmarshalYAML parses a duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// File is the YAML configuration file shape. Every field is optional;
// unset fields keep the built-in defaults. CLI flags override the file.
type File struct {
	// UserAgent overrides the User-Agent used for sitemap fetches.
	UserAgent string `yaml:"user_agent"`

	// FetchTimeout overrides the sitemap fetch timeout, e.g. "15s".
	FetchTimeout Duration `yaml:"fetch_timeout"`

	// PageTimeout overrides the per-page audit timeout, e.g. "90s".
	PageTimeout Duration `yaml:"page_timeout"`

	// WCAGTags overrides the axe rule tag selection.
	WCAGTags []string `yaml:"wcag_tags"`

	// AxeSourceURL overrides where the axe-core script is fetched from,
	// e.g. an internal mirror.
	AxeSourceURL string `yaml:"axe_source_url"`

	// DBDir overrides the scan-history database directory.
	DBDir string `yaml:"db_dir"`
}

// LoadConfigFile loads settings from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound.
// Callers should handle this error appropriately based on whether
// the config file path was explicitly specified by the user.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}

	return &cf, nil
}

// Apply overlays file settings onto a Config. Only set fields override;
// the caller applies CLI flags afterward so flags always win.
func (f *File) Apply(c *Config) {
	if f.UserAgent != "" {
		c.UserAgent = f.UserAgent
	}
	if f.FetchTimeout > 0 {
		c.FetchTimeout = time.Duration(f.FetchTimeout)
	}
	if f.PageTimeout > 0 {
		c.PageTimeout = time.Duration(f.PageTimeout)
	}
	if len(f.WCAGTags) > 0 {
		c.WCAGTags = append([]string(nil), f.WCAGTags...)
	}
	if f.AxeSourceURL != "" {
		c.AxeSourceURL = f.AxeSourceURL
	}
	if f.DBDir != "" {
		c.DBDir = f.DBDir
	}
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .a11yaudit in the current directory
// 3. Look for .a11yaudit in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	// If explicit path is provided, use it
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	// Check current directory
	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	// Check home directory
	home, err := os.UserHomeDir()
	if err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}
