package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dollyto/multimodal-video-transcriber/internal/testsupport"
)

const modelReply = "Transcription below.\n\n" +
	`[
		{"start_time": "00:05", "end_time": "00:12", "text": "Welcome to the show.", "voice_id": 1,
		 "emotion": "happy", "tone": "casual", "energy_level": "high", "speech_rate": "normal"},
		{"start_time": "00:13", "end_time": "00:21", "text": "Thanks for having me.", "voice_id": 2}
	]` + "\n\n" + `[
		{"voice_id": 1, "name": "Ana", "company": "Acme", "position": "Host", "role_in_video": "interviewer"},
		{"voice_id": 2, "name": "?", "company": "?", "position": "?", "role_in_video": "guest"}
	]` + "\n"

// newModelServer serves a canned model reply and registers cleanup.
func newModelServer(t *testing.T, reply string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []any{
				map[string]any{
					"content":      map[string]any{"parts": []any{map[string]any{"text": reply}}},
					"finishReason": "STOP",
				},
			},
		})
	}))
	t.Cleanup(server.Close)
	return server
}

// setupCLIEnv fabricates a config pointed at the canned model server and
// writes it to disk for --config.
func setupCLIEnv(t *testing.T, reply string, opts ...testsupport.ConfigOption) string {
	t.Helper()
	server := newModelServer(t, reply)
	opts = append([]testsupport.ConfigOption{testsupport.WithBaseURL(server.URL)}, opts...)
	cfg := testsupport.NewConfig(t, opts...)
	return testsupport.WriteConfigFile(t, cfg)
}

func runCLI(t *testing.T, configPath string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	if configPath != "" {
		args = append([]string{"--config", configPath}, args...)
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func withTranslationConfig() testsupport.ConfigOption {
	return testsupport.WithTranslation("es")
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
