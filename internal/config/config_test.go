package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestEnvOr(t *testing.T) {
	t.Setenv("QUILL_TEST_ENVOR", "set")
	if got := envOr("QUILL_TEST_ENVOR", "fallback"); got != "set" {
		t.Fatalf("expected env value, got %q", got)
	}
	if got := envOr("QUILL_TEST_ENVOR_MISSING", "fallback"); got != "fallback" {
		t.Fatalf("expected fallback, got %q", got)
	}
}

func TestParseDurationOr(t *testing.T) {
	t.Setenv("QUILL_TEST_DUR", "250ms")
	if got := parseDurationOr("QUILL_TEST_DUR", time.Second); got != 250*time.Millisecond {
		t.Fatalf("expected 250ms, got %v", got)
	}
	t.Setenv("QUILL_TEST_DUR", "not-a-duration")
	if got := parseDurationOr("QUILL_TEST_DUR", time.Second); got != time.Second {
		t.Fatalf("expected fallback on bad value, got %v", got)
	}
}

func TestParseIntOr(t *testing.T) {
	t.Setenv("QUILL_TEST_INT", "42")
	if got := parseIntOr("QUILL_TEST_INT", 7); got != 42 {
		t.Fatalf("expected 42, got %d", got)
	}
	t.Setenv("QUILL_TEST_INT", "-3")
	if got := parseIntOr("QUILL_TEST_INT", 7); got != 7 {
		t.Fatalf("expected fallback on non-positive value, got %d", got)
	}
}

func TestParseFloatOr(t *testing.T) {
	t.Setenv("QUILL_TEST_FLOAT", "0.7")
	if got := parseFloatOr("QUILL_TEST_FLOAT", 0.4); got != 0.7 {
		t.Fatalf("expected 0.7, got %v", got)
	}
	t.Setenv("QUILL_TEST_FLOAT", "junk")
	if got := parseFloatOr("QUILL_TEST_FLOAT", 0.4); got != 0.4 {
		t.Fatalf("expected fallback on bad value, got %v", got)
	}
}

func TestLoadEnvFileDoesNotOverrideEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	content := "QUILL_TEST_FROMFILE=file-value\nQUILL_TEST_PRESET=file-value\n# comment\nbroken line\n"
	if err := os.WriteFile(filepath.Join(dir, envFileName), []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("QUILL_TEST_FROMFILE", "")
	t.Setenv("QUILL_TEST_PRESET", "env-value")

	if err := loadEnvFile(); err != nil {
		t.Fatalf("loadEnvFile: %v", err)
	}
	if got := os.Getenv("QUILL_TEST_FROMFILE"); got != "file-value" {
		t.Fatalf("expected value from file, got %q", got)
	}
	if got := os.Getenv("QUILL_TEST_PRESET"); got != "env-value" {
		t.Fatalf("expected env to win over file, got %q", got)
	}
}

func TestInitEnvFileCreatesTemplateOnce(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("QUILL_DATA_PATH", "preset")

	initEnvFile()
	data, err := os.ReadFile(filepath.Join(dir, envFileName))
	if err != nil {
		t.Fatalf("read env file: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected template content")
	}
	if got := os.Getenv("QUILL_DATA_PATH"); got != "preset" {
		t.Fatalf("expected env to win over template, got %q", got)
	}

	// A second call must leave an existing file alone.
	if err := os.WriteFile(filepath.Join(dir, envFileName), []byte("# CUSTOM\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	initEnvFile()
	data, err = os.ReadFile(filepath.Join(dir, envFileName))
	if err != nil {
		t.Fatalf("read env file: %v", err)
	}
	if string(data) != "# CUSTOM\n" {
		t.Fatalf("expected existing file preserved, got %q", data)
	}
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(old) })
}
