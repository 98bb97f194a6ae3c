package testsupport

import (
	"testing"

	"github.com/dollyto/multimodal-video-transcriber/internal/config"
	"github.com/dollyto/multimodal-video-transcriber/internal/store"
)

// MustOpenStore opens the run archive for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	s, err := store.Open(cfg.Output.DataDir)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}
