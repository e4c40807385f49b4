package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestResolvePrompt_FromArg(t *testing.T) {
	prompt, err := resolvePrompt([]string{"seat", "hello"}, strings.NewReader("ignored"))
	if err != nil {
		t.Fatalf("resolvePrompt: %v", err)
	}
	if prompt != "hello" {
		t.Errorf("prompt = %q, want %q", prompt, "hello")
	}
}

func TestResolvePrompt_FromStdin(t *testing.T) {
	prompt, err := resolvePrompt([]string{"seat"}, strings.NewReader("  from stdin\n"))
	if err != nil {
		t.Fatalf("resolvePrompt: %v", err)
	}
	if prompt != "from stdin" {
		t.Errorf("prompt = %q, want %q", prompt, "from stdin")
	}
}

func TestResolvePrompt_EmptyStdin(t *testing.T) {
	_, err := resolvePrompt([]string{"seat"}, strings.NewReader("  \n"))
	if err == nil {
		t.Fatal("expected error for empty prompt")
	}
}

func TestRunSend_EphemeralRoundTrip(t *testing.T) {
	dir := t.TempDir()

	script := filepath.Join(dir, "fake-cli")
	body := "#!/bin/sh\necho '{\"type\":\"result\",\"result\":\"pong\"}'\n"
	if err := os.WriteFile(script, []byte(body), 0o755); err != nil {
		t.Fatalf("Failed to write script: %v", err)
	}

	seatsFile := filepath.Join(dir, "seats.yaml")
	yaml := "seats:\n  echoer:\n    command: " + script + "\n"
	if err := os.WriteFile(seatsFile, []byte(yaml), 0o644); err != nil {
		t.Fatalf("Failed to write seats file: %v", err)
	}

	origConfig := sendConfigPath
	defer func() { sendConfigPath = origConfig }()
	sendConfigPath = seatsFile

	var out bytes.Buffer
	sendCmd.SetOut(&out)
	defer sendCmd.SetOut(nil)

	if err := runSend(sendCmd, []string{"echoer", "ping"}); err != nil {
		t.Fatalf("runSend: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != "pong" {
		t.Errorf("output = %q, want %q", got, "pong")
	}
}

func TestLoadSeatConfig_MissingFileErrors(t *testing.T) {
	origConfig := sendConfigPath
	defer func() { sendConfigPath = origConfig }()
	sendConfigPath = filepath.Join(t.TempDir(), "does-not-exist.yaml")

	if _, err := loadSeatConfig("anything"); err == nil {
		t.Fatal("expected error for missing explicit config path")
	}
}
