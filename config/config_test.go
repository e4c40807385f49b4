package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeSeatsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seats.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write seats file: %v", err)
	}
	return path
}

func TestLoad_Basic(t *testing.T) {
	path := writeSeatsFile(t, `
seats:
  classifier:
    model: claude-haiku-4-5
    streaming: false
    max_turns: 2
    timeout: 30s
  responder:
    model: claude-sonnet-4-5
    streaming: true
    token_limit: 40000
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Seats) != 2 {
		t.Fatalf("Seats count = %d, want 2", len(cfg.Seats))
	}

	cls, err := cfg.Seat("classifier")
	if err != nil {
		t.Fatalf("Seat(classifier): %v", err)
	}
	if cls.Model != "claude-haiku-4-5" {
		t.Errorf("Model = %q", cls.Model)
	}
	if cls.MaxTurns != 2 {
		t.Errorf("MaxTurns = %d, want 2", cls.MaxTurns)
	}
	if cls.Timeout == nil || cls.Timeout.Duration != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", cls.Timeout)
	}

	rsp, err := cfg.Seat("responder")
	if err != nil {
		t.Fatalf("Seat(responder): %v", err)
	}
	if !rsp.Streaming {
		t.Error("responder should be streaming")
	}
	if rsp.TokenLimit != 40000 {
		t.Errorf("TokenLimit = %d, want 40000", rsp.TokenLimit)
	}
}

func TestLoad_MissingFileReturnsNil(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != nil {
		t.Error("missing file should return nil config")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeSeatsFile(t, "seats: [not a map")
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	path := writeSeatsFile(t, `
seats:
  bad:
    max_turns: -1
`)
	if _, err := Load(path); err == nil {
		t.Error("expected validation error for negative max_turns")
	}

	path = writeSeatsFile(t, `
seats:
  bad:
    timeout: -5s
`)
	if _, err := Load(path); err == nil {
		t.Error("expected validation error for non-positive timeout")
	}
}

func TestSeat_Unknown(t *testing.T) {
	cfg := &Config{Seats: map[string]*SeatConfig{}}
	if _, err := cfg.Seat("ghost"); err == nil {
		t.Error("expected error for unknown seat")
	}
}

func TestStringList_SingleValueNormalized(t *testing.T) {
	path := writeSeatsFile(t, `
seats:
  s:
    allowed_tools: Read
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	sc := cfg.Seats["s"]
	if len(sc.AllowedTools) != 1 || sc.AllowedTools[0] != "Read" {
		t.Errorf("AllowedTools = %v, want one-element list [Read]", sc.AllowedTools)
	}
}

func TestStringList_Sequence(t *testing.T) {
	path := writeSeatsFile(t, `
seats:
  s:
    allowed_tools:
      - Read
      - Grep
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	sc := cfg.Seats["s"]
	if len(sc.AllowedTools) != 2 {
		t.Fatalf("AllowedTools = %v, want 2 entries", sc.AllowedTools)
	}
}

func TestTools_EmptyStringDistinctFromUnset(t *testing.T) {
	path := writeSeatsFile(t, `
seats:
  none:
    tools: ""
  unset:
    model: m
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	none := cfg.Seats["none"]
	if none.Tools == nil || *none.Tools != "" {
		t.Error("tools: \"\" should decode to a pointer to empty string")
	}

	unset := cfg.Seats["unset"]
	if unset.Tools != nil {
		t.Error("absent tools key should stay nil")
	}
}

func TestSeatConfig_FlagsAndOptions(t *testing.T) {
	empty := ""
	timeout := &Duration{45 * time.Second}
	sc := &SeatConfig{
		Command:        "/usr/local/bin/claude",
		Model:          "m",
		Tools:          &empty,
		AllowedTools:   StringList{"Read"},
		PermissionMode: "plan",
		MaxTurns:       4,
		Streaming:      true,
		TokenLimit:     1234,
		Timeout:        timeout,
	}

	f := sc.Flags()
	if f.Command != sc.Command || f.Model != "m" || f.MaxTurns != 4 {
		t.Errorf("Flags = %+v", f)
	}
	if f.Tools == nil || *f.Tools != "" {
		t.Error("Flags should carry the empty-tools pointer")
	}

	o := sc.Options()
	if !o.Streaming || o.TokenLimit != 1234 || o.Timeout != 45*time.Second {
		t.Errorf("Options = %+v", o)
	}
}
