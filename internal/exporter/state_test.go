package exporter

import (
	"testing"

	"github.com/google/uuid"
)

func TestLoadState_Fresh(t *testing.T) {
	dir := t.TempDir()

	state, err := LoadState(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.RunID == uuid.Nil {
		t.Error("expected a fresh run id")
	}
	if len(state.DaysCompleted) != 0 {
		t.Errorf("expected no completed days, got %v", state.DaysCompleted)
	}
}

func TestState_SaveAndReload(t *testing.T) {
	dir := t.TempDir()

	state, err := LoadState(dir)
	if err != nil {
		t.Fatal(err)
	}
	state.MarkCompleted("2025-11-20")
	state.ChunksDownloaded = 7
	state.AddError("download 2025-11-20 night: boom")
	if err := state.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}

	reloaded, err := LoadState(dir)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.RunID != state.RunID {
		t.Errorf("run id changed across reload: %s vs %s", reloaded.RunID, state.RunID)
	}
	if !reloaded.IsCompleted("2025-11-20") {
		t.Error("expected 2025-11-20 to be completed after reload")
	}
	if reloaded.ChunksDownloaded != 7 {
		t.Errorf("chunks downloaded = %d, want 7", reloaded.ChunksDownloaded)
	}
	if len(reloaded.Errors) != 1 {
		t.Errorf("errors = %v", reloaded.Errors)
	}
}

func TestState_MarkCompletedDeduplicates(t *testing.T) {
	state := &RunState{}
	state.MarkCompleted("2025-11-20")
	state.MarkCompleted("2025-11-20")
	if len(state.DaysCompleted) != 1 {
		t.Errorf("expected 1 completed day, got %d", len(state.DaysCompleted))
	}
}
