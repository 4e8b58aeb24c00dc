package main

import (
	"bytes"
	"strings"
	"testing"
)

// TestGetVersion tests version string resolution.
func TestGetVersion(t *testing.T) {
	t.Run("returns ldflags value when set", func(t *testing.T) {
		original := version
		defer func() { version = original }()

		version = "v1.2.3"
		if got := getVersion(); got != "v1.2.3" {
			t.Errorf("getVersion() = %q, want v1.2.3", got)
		}
	})

	t.Run("falls back when ldflags empty", func(t *testing.T) {
		original := version
		defer func() { version = original }()

		version = ""
		if got := getVersion(); got == "" {
			t.Error("expected non-empty fallback version")
		}
	})
}

// TestGetCommit tests commit hash resolution.
func TestGetCommit(t *testing.T) {
	original := commit
	defer func() { commit = original }()

	commit = "abc1234"
	if got := getCommit(); got != "abc1234" {
		t.Errorf("getCommit() = %q, want abc1234", got)
	}
}

// TestGetDate tests build date resolution.
func TestGetDate(t *testing.T) {
	original := date
	defer func() { date = original }()

	date = "2026-08-23T00:00:00Z"
	if got := getDate(); got != "2026-08-23T00:00:00Z" {
		t.Errorf("getDate() = %q, want ldflags value", got)
	}

	// Without ldflags the value comes from VCS stamping or "unknown";
	// either way it is never empty.
	date = ""
	if got := getDate(); got == "" {
		t.Error("expected non-empty fallback date")
	}
}

// TestVersionCmd tests the version command output.
func TestVersionCmd(t *testing.T) {
	cmd := NewVersionCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)

	cmd.Run(cmd, nil)

	output := buf.String()
	if !strings.Contains(output, "a11yaudit version") {
		t.Errorf("expected version line, got %q", output)
	}
	if !strings.Contains(output, "commit:") {
		t.Errorf("expected commit line, got %q", output)
	}
}
