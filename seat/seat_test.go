package seat

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/calderlane/modelseat/logger"
)

// initTestLogger routes logs to a temp file so tests never touch the
// real state directory.
func initTestLogger(t *testing.T) {
	t.Helper()
	logger.Reset()
	if err := logger.Init(filepath.Join(t.TempDir(), "test.log")); err != nil {
		t.Fatalf("Failed to init logger: %v", err)
	}
	t.Cleanup(logger.Reset)
}

// writeScript writes an executable shell script standing in for the
// model CLI and returns its path.
func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fake-cli")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("Failed to write script: %v", err)
	}
	return path
}

// waitFor polls cond until it is true or the deadline passes.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool, desc string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", desc)
}

func TestNew_Defaults(t *testing.T) {
	initTestLogger(t)

	s := New("classifier", Flags{}, Options{})
	if s.tokenLimit != DefaultTokenLimit {
		t.Errorf("tokenLimit = %d, want %d", s.tokenLimit, DefaultTokenLimit)
	}
	if s.timeout != DefaultTimeout {
		t.Errorf("timeout = %v, want %v", s.timeout, DefaultTimeout)
	}
	if s.Name() != "classifier" {
		t.Errorf("Name() = %q", s.Name())
	}
	if s.Alive() {
		t.Error("new supervisor should not be alive before Start")
	}
	if s.ID() == "" {
		t.Error("supervisor should have a non-empty instance id")
	}

	other := New("classifier", Flags{}, Options{})
	if other.ID() == s.ID() {
		t.Error("distinct supervisors should have distinct instance ids")
	}
}

func TestStart_EphemeralMarksLiveWithoutSpawning(t *testing.T) {
	initTestLogger(t)

	s := New("e", Flags{Command: "/nonexistent/cli"}, Options{})
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !s.Alive() {
		t.Error("ephemeral seat should be alive after Start")
	}
	if s.TokenCount() != 0 {
		t.Errorf("TokenCount = %d, want 0", s.TokenCount())
	}
}

func TestClose_TwiceIsSafe(t *testing.T) {
	initTestLogger(t)

	s := New("e", Flags{}, Options{})
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	s.Close()
	if s.Alive() {
		t.Error("Alive should be false after first Close")
	}
	s.Close()
	if s.Alive() {
		t.Error("Alive should be false after second Close")
	}
}
