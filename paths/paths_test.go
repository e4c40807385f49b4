package paths

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLegacyLayoutWins(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "xdg-config"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(home, "xdg-state"))
	Reset()
	t.Cleanup(Reset)

	legacy := filepath.Join(home, ".modelseat")
	if err := os.MkdirAll(legacy, 0o755); err != nil {
		t.Fatal(err)
	}

	cfg, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir: %v", err)
	}
	if cfg != legacy {
		t.Errorf("ConfigDir = %q, want %q", cfg, legacy)
	}

	state, err := StateDir()
	if err != nil {
		t.Fatalf("StateDir: %v", err)
	}
	if state != legacy {
		t.Errorf("StateDir = %q, want %q", state, legacy)
	}

	if !IsLegacyLayout() {
		t.Error("IsLegacyLayout = false, want true")
	}
}

func TestXDGLayout(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "cfg"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(home, "st"))
	Reset()
	t.Cleanup(Reset)

	cfg, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir: %v", err)
	}
	if want := filepath.Join(home, "cfg", "modelseat"); cfg != want {
		t.Errorf("ConfigDir = %q, want %q", cfg, want)
	}

	state, err := StateDir()
	if err != nil {
		t.Fatalf("StateDir: %v", err)
	}
	if want := filepath.Join(home, "st", "modelseat"); state != want {
		t.Errorf("StateDir = %q, want %q", state, want)
	}

	if IsLegacyLayout() {
		t.Error("IsLegacyLayout = true, want false")
	}
}

func TestXDGPartialDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "cfg"))
	t.Setenv("XDG_STATE_HOME", "")
	Reset()
	t.Cleanup(Reset)

	state, err := StateDir()
	if err != nil {
		t.Fatalf("StateDir: %v", err)
	}
	if want := filepath.Join(home, ".local", "state", "modelseat"); state != want {
		t.Errorf("StateDir = %q, want %q", state, want)
	}
}

func TestFreshInstallDefaultsToLegacy(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("XDG_STATE_HOME", "")
	Reset()
	t.Cleanup(Reset)

	cfg, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir: %v", err)
	}
	if want := filepath.Join(home, ".modelseat"); cfg != want {
		t.Errorf("ConfigDir = %q, want %q", cfg, want)
	}
}

func TestSeatsFilePath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("XDG_STATE_HOME", "")
	Reset()
	t.Cleanup(Reset)

	p, err := SeatsFilePath()
	if err != nil {
		t.Fatalf("SeatsFilePath: %v", err)
	}
	if want := filepath.Join(home, ".modelseat", "seats.yaml"); p != want {
		t.Errorf("SeatsFilePath = %q, want %q", p, want)
	}
}

func TestLogsDirUnderState(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_STATE_HOME", filepath.Join(home, "st"))
	Reset()
	t.Cleanup(Reset)

	dir, err := LogsDir()
	if err != nil {
		t.Fatalf("LogsDir: %v", err)
	}
	if want := filepath.Join(home, "st", "modelseat", "logs"); dir != want {
		t.Errorf("LogsDir = %q, want %q", dir, want)
	}
}
