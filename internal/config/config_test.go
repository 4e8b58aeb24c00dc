package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

// TestNewConfigDefaults tests that the constructor sets the documented
// defaults.
func TestNewConfigDefaults(t *testing.T) {
	t.Parallel()

	c := NewConfig()

	if c.FetchTimeout != DefaultFetchTimeout {
		t.Errorf("FetchTimeout = %v, expected %v", c.FetchTimeout, DefaultFetchTimeout)
	}
	if c.PageTimeout != DefaultPageTimeout {
		t.Errorf("PageTimeout = %v, expected %v", c.PageTimeout, DefaultPageTimeout)
	}
	if c.UserAgent != DefaultUserAgent {
		t.Errorf("UserAgent = %q", c.UserAgent)
	}
	if !reflect.DeepEqual(c.WCAGTags, DefaultWCAGTags) {
		t.Errorf("WCAGTags = %v, expected %v", c.WCAGTags, DefaultWCAGTags)
	}
	if c.DBDir == "" {
		t.Error("DBDir should default to the XDG data directory")
	}
}

// TestConfigValidate tests target-source and range validation.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	valid := func() *Config {
		c := NewConfig()
		c.Targets = []string{"https://example.com/"}
		return c
	}

	testCases := []struct {
		name     string
		mutate   func(*Config)
		expected error
	}{
		{
			name:     "valid targets",
			mutate:   func(*Config) {},
			expected: nil,
		},
		{
			name: "valid sitemap source",
			mutate: func(c *Config) {
				c.Targets = nil
				c.SitemapURL = "https://example.com/sitemap.xml"
			},
			expected: nil,
		},
		{
			name: "valid csv source",
			mutate: func(c *Config) {
				c.Targets = nil
				c.CSVPath = "targets.csv"
			},
			expected: nil,
		},
		{
			name: "no target",
			mutate: func(c *Config) {
				c.Targets = nil
			},
			expected: ErrNoTarget,
		},
		{
			name: "conflicting sources",
			mutate: func(c *Config) {
				c.SitemapURL = "https://example.com/sitemap.xml"
			},
			expected: ErrConflictingTargets,
		},
		{
			name: "zero fetch timeout",
			mutate: func(c *Config) {
				c.FetchTimeout = 0
			},
			expected: ErrInvalidTimeout,
		},
		{
			name: "negative page timeout",
			mutate: func(c *Config) {
				c.PageTimeout = -time.Second
			},
			expected: ErrInvalidPageTimeout,
		},
		{
			name: "negative max body size",
			mutate: func(c *Config) {
				c.MaxBodySize = -1
			},
			expected: ErrInvalidMaxBodySize,
		},
		{
			name: "empty tag list",
			mutate: func(c *Config) {
				c.WCAGTags = nil
			},
			expected: ErrNoWCAGTags,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			c := valid()
			tc.mutate(c)
			if err := c.Validate(); !errors.Is(err, tc.expected) {
				t.Errorf("Validate() = %v, expected %v", err, tc.expected)
			}
		})
	}
}

// TestLoadConfigFile tests YAML parsing and the not-found sentinel.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, DefaultConfigFile)
	content := `
user_agent: "custom-agent/1.0"
fetch_timeout: 15s
wcag_tags:
  - wcag2a
  - wcag21aa
db_dir: /var/lib/a11yaudit
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cf, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cf.UserAgent != "custom-agent/1.0" {
		t.Errorf("UserAgent = %q", cf.UserAgent)
	}
	if time.Duration(cf.FetchTimeout) != 15*time.Second {
		t.Errorf("FetchTimeout = %v", cf.FetchTimeout)
	}
	if !reflect.DeepEqual(cf.WCAGTags, []string{"wcag2a", "wcag21aa"}) {
		t.Errorf("WCAGTags = %v", cf.WCAGTags)
	}

	if _, err := LoadConfigFile(filepath.Join(dir, "absent")); !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("error = %v, expected ErrConfigNotFound", err)
	}
}

// TestFileApply tests that only set fields override, leaving defaults
// intact otherwise.
func TestFileApply(t *testing.T) {
	t.Parallel()

	c := NewConfig()
	cf := &File{
		UserAgent:   "custom-agent/1.0",
		PageTimeout: Duration(90 * time.Second),
	}
	cf.Apply(c)

	if c.UserAgent != "custom-agent/1.0" {
		t.Errorf("UserAgent = %q, expected override", c.UserAgent)
	}
	if c.PageTimeout != 90*time.Second {
		t.Errorf("PageTimeout = %v, expected override", c.PageTimeout)
	}
	// Unset fields keep their defaults.
	if c.FetchTimeout != DefaultFetchTimeout {
		t.Errorf("FetchTimeout = %v, expected default", c.FetchTimeout)
	}
	if !reflect.DeepEqual(c.WCAGTags, DefaultWCAGTags) {
		t.Errorf("WCAGTags = %v, expected default", c.WCAGTags)
	}
}

// TestFindConfigFile tests explicit-path resolution.
func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yml")
	if err := os.WriteFile(path, []byte("user_agent: x\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	if got := FindConfigFile(path); got != path {
		t.Errorf("FindConfigFile = %q, expected %q", got, path)
	}
	if got := FindConfigFile(filepath.Join(dir, "missing.yml")); got != "" {
		t.Errorf("FindConfigFile = %q, expected empty for missing explicit path", got)
	}
}
