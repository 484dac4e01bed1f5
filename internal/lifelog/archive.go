// Package lifelog reads and writes the local export archive: per-day
// markdown transcripts under lifelogs/ and structured contents JSON under
// contents/. It turns a day's cached data into planner evidence.
package lifelog

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/adamthede/project-limitless-exporter/internal/planner"
)

// ErrNoData is returned when neither a markdown nor a contents file exists
// for the requested date.
var ErrNoData = errors.New("no lifelog data for date")

// Entry is one lifelog as stored in a contents JSON file.
type Entry struct {
	ID           string           `json:"lifelog_id"`
	FullMarkdown string           `json:"full_markdown"`
	Contents     []planner.Record `json:"contents"`
}

// Archive is a local export directory.
type Archive struct {
	dir    string
	logger *slog.Logger
}

// NewArchive opens the archive rooted at dir.
func NewArchive(dir string, logger *slog.Logger) *Archive {
	if logger == nil {
		logger = slog.Default()
	}
	return &Archive{dir: dir, logger: logger}
}

// MarkdownPath returns the path of the day's lifelog markdown file.
func (a *Archive) MarkdownPath(date string) string {
	return filepath.Join(a.dir, "lifelogs", date+"-lifelogs.md")
}

// ContentsPath returns the path of the day's structured contents file.
func (a *Archive) ContentsPath(date string) string {
	return filepath.Join(a.dir, "contents", date+"-contents.json")
}

// DayEvidence loads timestamp evidence for a date, preferring the markdown
// transcript and falling back to the contents JSON. ErrNoData means the day
// simply has not been exported yet.
func (a *Archive) DayEvidence(date string) (planner.Evidence, error) {
	if data, err := os.ReadFile(a.MarkdownPath(date)); err == nil {
		a.logger.Debug("loaded lifelog markdown", "date", date, "bytes", len(data))
		return planner.TextEvidence(data), nil
	}

	raw, err := os.ReadFile(a.ContentsPath(date))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoData, date)
		}
		return nil, fmt.Errorf("read contents file: %w", err)
	}

	ev, err := evidenceFromContents(raw)
	if err != nil {
		return nil, fmt.Errorf("contents file for %s: %w", date, err)
	}
	return ev, nil
}

// LoadContents reads the day's contents JSON entries.
func (a *Archive) LoadContents(date string) ([]Entry, error) {
	raw, err := os.ReadFile(a.ContentsPath(date))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoData, date)
		}
		return nil, fmt.Errorf("read contents file: %w", err)
	}
	var entries []Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse contents file: %w", err)
	}
	return entries, nil
}

// SaveContents writes the day's entries to the contents directory.
func (a *Archive) SaveContents(date string, entries []Entry) error {
	path := a.ContentsPath(date)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal contents: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write contents: %w", err)
	}
	a.logger.Info("contents saved", "date", date, "entries", len(entries), "path", path)
	return nil
}

// evidenceFromContents converts a raw contents payload into evidence.
// Structured records win when any entry carries timestamp fields; otherwise
// the concatenated markdown is scanned. A payload that is neither an entry
// array nor text surfaces planner.ErrInvalidShape.
func evidenceFromContents(raw []byte) (planner.Evidence, error) {
	var entries []Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return planner.EvidenceFromJSON(raw)
	}

	// A bare record array decodes into entries that carry none of the entry
	// fields. Hand the raw payload to the shape decoder instead of reading
	// it as an empty day.
	bare := len(entries) > 0
	for _, e := range entries {
		if e.ID != "" || e.FullMarkdown != "" || len(e.Contents) > 0 {
			bare = false
			break
		}
	}
	if bare {
		return planner.EvidenceFromJSON(raw)
	}

	var records []planner.Record
	var markdown strings.Builder
	hasTimes := false

	for _, e := range entries {
		for _, r := range e.Contents {
			records = append(records, r)
			if r.StartTime != "" || r.EndTime != "" {
				hasTimes = true
			}
		}
		if e.FullMarkdown != "" {
			markdown.WriteString(e.FullMarkdown)
			markdown.WriteString("\n")
		}
	}

	if hasTimes {
		return planner.RecordEvidence(records), nil
	}
	if markdown.Len() > 0 {
		return planner.TextEvidence(markdown.String()), nil
	}
	return planner.RecordEvidence(nil), nil
}
