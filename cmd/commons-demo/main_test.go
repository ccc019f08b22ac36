package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func writeConfig(t *testing.T, abRoot string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := fmt.Sprintf("log:\n  mode: test\ndb:\n  dsn: \"file:demo%s?mode=memory&cache=shared\"\n  log_level: silent\ndebug:\n  ab_root: %q\n",
		strings.ReplaceAll(uuid.NewString(), "-", ""), abRoot)
	if err := os.WriteFile(path, []byte(cfg), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestRealMainSession(t *testing.T) {
	root := t.TempDir()
	var stdout, stderr bytes.Buffer
	code := realMain([]string{"-config", writeConfig(t, root), "-ab", "baseline", "-metrics"}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit code: want=0 got=%d stderr=%s", code, stderr.String())
	}
	out := stdout.String()
	for _, want := range []string{"order_index:", "order_card:", "number: A-102", "commons_command_runs_total"} {
		if !strings.Contains(out, want) {
			t.Fatalf("stdout: missing %q in:\n%s", want, out)
		}
	}
	if _, err := os.Stat(filepath.Join(root, "ab", "baseline", "orders", "order_index.psql")); err != nil {
		t.Fatalf("recorded sql: %v", err)
	}
}

func TestRealMainSessionFailureExitsAfterClose(t *testing.T) {
	// A file where the A/B root directory should be makes the recording fail.
	blocked := filepath.Join(t.TempDir(), "blocked")
	if err := os.WriteFile(blocked, []byte("x"), 0o644); err != nil {
		t.Fatalf("write blocker: %v", err)
	}
	var stdout, stderr bytes.Buffer
	if code := realMain([]string{"-config", writeConfig(t, blocked), "-ab", "baseline"}, &stdout, &stderr); code != 1 {
		t.Fatalf("exit code: want=1 got=%d", code)
	}
	if strings.Contains(stderr.String(), "close:") {
		t.Fatalf("close reported an error: %s", stderr.String())
	}
}

func TestRealMainBadConfig(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := realMain([]string{"-config", filepath.Join(t.TempDir(), "missing.yaml")}, &stdout, &stderr)
	if code != 1 || !strings.Contains(stderr.String(), "failed to initialize app") {
		t.Fatalf("exit code=%d stderr=%s", code, stderr.String())
	}
}

func TestRealMainBadFlag(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := realMain([]string{"-nope"}, &stdout, &stderr); code != 2 {
		t.Fatalf("exit code: want=2 got=%d", code)
	}
}
