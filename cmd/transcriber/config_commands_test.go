package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfigInitCommand(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	stdout, _, err := runCLI(t, "", "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	requireContains(t, stdout, target)

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	requireContains(t, string(data), "[gemini]")

	if _, _, err := runCLI(t, "", "config", "init", "--path", target); err == nil {
		t.Fatal("expected error for existing config without --overwrite")
	}
	if _, _, err := runCLI(t, "", "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("config init --overwrite failed: %v", err)
	}
}

func TestConfigShowCommand(t *testing.T) {
	configPath := setupCLIEnv(t, modelReply)

	stdout, _, err := runCLI(t, configPath, "config", "show")
	if err != nil {
		t.Fatalf("config show failed: %v", err)
	}
	requireContains(t, stdout, "Mode: hosted API")
	requireContains(t, stdout, "Model: gemini-2.0-flash")
	requireContains(t, stdout, "Timecode format: MM:SS")
}

func TestMissingAPIKeyFailsEarly(t *testing.T) {
	// An empty config path resolves to a missing file, so defaults apply and
	// no credential is available unless the environment provides one.
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("HOME", t.TempDir())

	_, _, err := runCLI(t, "", "runs", "list")
	if err == nil {
		t.Fatal("expected error without credentials")
	}
	requireContains(t, err.Error(), "api_key")
}
