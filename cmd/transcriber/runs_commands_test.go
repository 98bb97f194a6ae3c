package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dollyto/multimodal-video-transcriber/internal/transcript"
)

const translatedReply = modelReply + "\n" + `[
	{"line_number": 1, "speaker": "Ana", "source_text": "Welcome to the show.", "target_text": "Bienvenidos al programa."},
	{"line_number": 2, "speaker": "?", "source_text": "Thanks for having me.", "target_text": "Gracias por invitarme."}
]` + "\n"

// runIDFrom pulls the archived run id out of `runs list --json`.
func runIDFrom(t *testing.T, configPath string) string {
	t.Helper()
	stdout, _, err := runCLI(t, configPath, "runs", "list", "--json")
	if err != nil {
		t.Fatalf("runs list failed: %v", err)
	}
	var views []struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal([]byte(stdout), &views); err != nil {
		t.Fatalf("decode runs list: %v", err)
	}
	if len(views) == 0 {
		t.Fatal("no archived runs")
	}
	return views[0].ID
}

func TestRunsShowCommand(t *testing.T) {
	configPath := setupCLIEnv(t, modelReply)
	if _, stderr, err := runCLI(t, configPath, "transcribe", "dQw4w9WgXcQ", "--quiet"); err != nil {
		t.Fatalf("transcribe failed: %v (stderr: %s)", err, stderr)
	}
	id := runIDFrom(t, configPath)

	stdout, _, err := runCLI(t, configPath, "runs", "show", id)
	if err != nil {
		t.Fatalf("runs show failed: %v", err)
	}
	requireContains(t, stdout, "Ana")
	requireContains(t, stdout, "Welcome to the show.")
	// Voice 2 has no speaker record.
	requireContains(t, stdout, transcript.NotFoundMarker)
}

func TestRunsShowCommandJSON(t *testing.T) {
	configPath := setupCLIEnv(t, translatedReply, withTranslationConfig())
	if _, stderr, err := runCLI(t, configPath, "transcribe", "dQw4w9WgXcQ", "--quiet"); err != nil {
		t.Fatalf("transcribe failed: %v (stderr: %s)", err, stderr)
	}
	id := runIDFrom(t, configPath)

	stdout, _, err := runCLI(t, configPath, "runs", "show", id, "--json")
	if err != nil {
		t.Fatalf("runs show failed: %v", err)
	}
	var doc transcript.Document
	if err := json.Unmarshal([]byte(stdout), &doc); err != nil {
		t.Fatalf("decode document: %v", err)
	}
	if len(doc.TranslationRows) != 2 || doc.TranslationRows[1].TargetText != "Gracias por invitarme." {
		t.Fatalf("translation rows = %+v", doc.TranslationRows)
	}
}

func TestRunsShowCommandMissing(t *testing.T) {
	configPath := setupCLIEnv(t, modelReply)
	_, _, err := runCLI(t, configPath, "runs", "show", "nope")
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestRunsExportCommand(t *testing.T) {
	configPath := setupCLIEnv(t, modelReply)
	if _, stderr, err := runCLI(t, configPath, "transcribe", "dQw4w9WgXcQ", "--quiet"); err != nil {
		t.Fatalf("transcribe failed: %v (stderr: %s)", err, stderr)
	}
	id := runIDFrom(t, configPath)

	dir := t.TempDir()
	stdout, _, err := runCLI(t, configPath, "runs", "export", id, "--dir", dir)
	if err != nil {
		t.Fatalf("runs export failed: %v", err)
	}
	requireContains(t, stdout, id+".json")
	for _, name := range []string{id + ".json", id + ".csv"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("stat %s: %v", name, err)
		}
	}
}

func TestRunsRemoveCommand(t *testing.T) {
	configPath := setupCLIEnv(t, modelReply)
	if _, stderr, err := runCLI(t, configPath, "transcribe", "dQw4w9WgXcQ", "--quiet"); err != nil {
		t.Fatalf("transcribe failed: %v (stderr: %s)", err, stderr)
	}
	id := runIDFrom(t, configPath)

	stdout, _, err := runCLI(t, configPath, "runs", "remove", id)
	if err != nil {
		t.Fatalf("runs remove failed: %v", err)
	}
	requireContains(t, stdout, "Removed run "+id)

	if _, _, err := runCLI(t, configPath, "runs", "remove", id); err == nil {
		t.Fatal("expected error removing the run twice")
	}
}
