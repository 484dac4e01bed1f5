package exporter

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// StateFileName is the run-state file kept inside the audio output
// directory, so state travels with the archive it describes.
const StateFileName = ".export-state.json"

// RunState tracks progress for resumable export runs.
type RunState struct {
	RunID            uuid.UUID `json:"run_id"`
	StartedAt        time.Time `json:"started_at"`
	LastProcessedAt  time.Time `json:"last_processed_at"`
	DaysCompleted    []string  `json:"days_completed"`
	ChunksDownloaded int       `json:"chunks_downloaded"`
	ChunksSkipped    int       `json:"chunks_skipped"`
	Errors           []string  `json:"errors"`

	path string // not serialized
}

// LoadState loads the run state from the output directory, or starts a
// fresh one with a new run ID.
func LoadState(outputDir string) (*RunState, error) {
	p := filepath.Join(outputDir, StateFileName)

	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return &RunState{
				RunID:     uuid.New(),
				StartedAt: time.Now().UTC(),
				path:      p,
			}, nil
		}
		return nil, fmt.Errorf("read state: %w", err)
	}

	var s RunState
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse state: %w", err)
	}
	s.path = p
	return &s, nil
}

// Save persists the state to disk.
func (s *RunState) Save() error {
	s.LastProcessedAt = time.Now().UTC()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	return os.WriteFile(s.path, data, 0o644)
}

// IsCompleted returns true if the given day has already been exported.
func (s *RunState) IsCompleted(date string) bool {
	for _, d := range s.DaysCompleted {
		if d == date {
			return true
		}
	}
	return false
}

// MarkCompleted records a day as fully exported.
func (s *RunState) MarkCompleted(date string) {
	if !s.IsCompleted(date) {
		s.DaysCompleted = append(s.DaysCompleted, date)
	}
}

// AddError records an export error.
func (s *RunState) AddError(msg string) {
	s.Errors = append(s.Errors, msg)
}
