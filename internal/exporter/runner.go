// Package exporter executes a download plan against the Limitless API for a
// range of days: one planning pass and one set of audio downloads per day,
// with skip-if-exists semantics so re-runs are idempotent.
package exporter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/adamthede/project-limitless-exporter/internal/lifelog"
	"github.com/adamthede/project-limitless-exporter/internal/limitless"
	"github.com/adamthede/project-limitless-exporter/internal/notify"
	"github.com/adamthede/project-limitless-exporter/internal/planner"
	"github.com/adamthede/project-limitless-exporter/internal/store"
)

// DayStatus classifies the outcome of one day's export.
type DayStatus string

const (
	DayExported     DayStatus = "exported"
	DayNoData       DayStatus = "no_data"
	DayNoRecordings DayStatus = "no_recordings"
	DayFailed       DayStatus = "failed"
)

// DayStats summarizes one day's export.
type DayStats struct {
	Date          string
	Status        DayStatus
	Chunks        int
	Downloaded    int
	Skipped       int
	Errors        int
	AudioDuration time.Duration
}

// RunStats aggregates an export run across all requested days.
type RunStats struct {
	Days             []DayStats
	DaysWithAudio    int
	DaysNoData       int
	DaysNoRecordings int
	Downloaded       int
	Skipped          int
	Errors           int
	AudioDuration    time.Duration
}

// Config holds the export run configuration.
type Config struct {
	OutputDir string
	Dates     []string
	DryRun    bool
	Fetch     bool // fetch missing days from the API into the archive
	Resume    bool // skip days already marked completed in the state file
	PageLimit int
	Delay     time.Duration // pause between chunk downloads
}

// Runner orchestrates the export of a date range. The ledger and notifier
// are optional; the runner works without them.
type Runner struct {
	cfg      Config
	planner  *planner.Planner
	archive  *lifelog.Archive
	client   *limitless.Client
	ledger   *store.Store
	notifier *notify.Publisher
	logger   *slog.Logger
}

// NewRunner creates an export runner. client may be nil for purely local
// (plan/dry-run) use; ledger and notifier may be nil.
func NewRunner(cfg Config, pl *planner.Planner, archive *lifelog.Archive, client *limitless.Client,
	ledger *store.Store, notifier *notify.Publisher, logger *slog.Logger) *Runner {
	if cfg.PageLimit <= 0 {
		cfg.PageLimit = 50
	}
	if cfg.Delay <= 0 {
		cfg.Delay = time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		cfg:      cfg,
		planner:  pl,
		archive:  archive,
		client:   client,
		ledger:   ledger,
		notifier: notifier,
		logger:   logger,
	}
}

// Run exports every configured day in order and returns aggregate stats.
func (r *Runner) Run(ctx context.Context) (RunStats, error) {
	state, err := LoadState(r.cfg.OutputDir)
	if err != nil {
		return RunStats{}, fmt.Errorf("load state: %w", err)
	}

	r.logger.Info("export run starting",
		"run_id", state.RunID,
		"days", len(r.cfg.Dates),
		"dry_run", r.cfg.DryRun,
	)

	var stats RunStats
	for _, date := range r.cfg.Dates {
		select {
		case <-ctx.Done():
			r.logger.Info("export interrupted, saving state")
			_ = state.Save()
			return stats, ctx.Err()
		default:
		}

		if r.cfg.Resume && state.IsCompleted(date) {
			r.logger.Info("day already completed, skipping", "date", date)
			continue
		}

		ds := r.exportDay(ctx, date, state)
		stats.add(ds)

		switch ds.Status {
		case DayExported:
			if !r.cfg.DryRun && ds.Errors == 0 {
				state.MarkCompleted(date)
			}
		case DayNoData:
			r.logger.Warn("no lifelog data for day", "date", date)
		case DayNoRecordings:
			r.logger.Info("no recorded activity for day", "date", date)
		}

		state.ChunksDownloaded += ds.Downloaded
		state.ChunksSkipped += ds.Skipped
		if !r.cfg.DryRun {
			if err := state.Save(); err != nil {
				r.logger.Warn("failed to save state", "error", err)
			}
		}

		r.publishDayCompleted(state, ds)
	}

	r.publishRunCompleted(state, stats)

	r.logger.Info("export run complete",
		"days_with_audio", stats.DaysWithAudio,
		"downloaded", stats.Downloaded,
		"skipped", stats.Skipped,
		"errors", stats.Errors,
		"audio_hours", stats.AudioDuration.Hours(),
		"dry_run", r.cfg.DryRun,
	)

	return stats, nil
}

func (r *Runner) exportDay(ctx context.Context, date string, state *RunState) DayStats {
	ds := DayStats{Date: date, Status: DayExported}

	ev, err := r.dayEvidence(ctx, date)
	if err != nil {
		if errors.Is(err, lifelog.ErrNoData) {
			ds.Status = DayNoData
			return ds
		}
		r.logger.Error("failed to load day evidence", "date", date, "error", err)
		state.AddError(fmt.Sprintf("evidence %s: %v", date, err))
		ds.Status = DayFailed
		ds.Errors++
		return ds
	}

	plan := r.planner.Plan(ev)
	if plan.Empty() {
		ds.Status = DayNoRecordings
		return ds
	}

	ds.Chunks = len(plan.Chunks)
	ds.AudioDuration = plan.TotalDuration()

	r.logger.Info("day planned",
		"date", date,
		"chunks", ds.Chunks,
		"audio_hours", ds.AudioDuration.Hours(),
	)

	if r.cfg.DryRun {
		for i, c := range plan.Chunks {
			r.logger.Info("planned chunk",
				"index", i+1,
				"start", c.Start.Format("15:04"),
				"end", c.End.Format("15:04"),
				"label", c.Label,
				"file", ChunkFileName(date, c),
			)
		}
		return ds
	}

	dayDir := filepath.Join(r.cfg.OutputDir, date[:7], date)

	for i, c := range plan.Chunks {
		select {
		case <-ctx.Done():
			return ds
		default:
		}

		path := filepath.Join(dayDir, ChunkFileName(date, c))
		if _, err := os.Stat(path); err == nil {
			r.logger.Debug("chunk already exists, skipping", "path", path)
			ds.Skipped++
			continue
		}

		n, err := r.downloadChunk(ctx, c, path)
		status := "downloaded"
		switch {
		case errors.Is(err, limitless.ErrNoAudio):
			r.logger.Warn("no audio for chunk", "date", date, "label", c.Label)
			status = "no_audio"
			ds.Errors++
		case err != nil:
			r.logger.Error("chunk download failed", "date", date, "label", c.Label, "error", err)
			state.AddError(fmt.Sprintf("download %s %s: %v", date, c.Label, err))
			status = "error"
			ds.Errors++
		default:
			r.logger.Info("chunk downloaded",
				"date", date,
				"label", c.Label,
				"bytes", n,
				"duration_min", c.Duration().Minutes(),
			)
			ds.Downloaded++
		}

		r.recordChunk(ctx, state, date, c, status, n)

		if i < len(plan.Chunks)-1 {
			select {
			case <-ctx.Done():
				return ds
			case <-time.After(r.cfg.Delay):
			}
		}
	}

	return ds
}

// dayEvidence loads evidence from the archive, optionally pulling the day's
// contents from the API first when the archive has nothing.
func (r *Runner) dayEvidence(ctx context.Context, date string) (planner.Evidence, error) {
	ev, err := r.archive.DayEvidence(date)
	if err == nil || !errors.Is(err, lifelog.ErrNoData) {
		return ev, err
	}
	if !r.cfg.Fetch || r.client == nil {
		return nil, err
	}

	r.logger.Info("fetching day contents from API", "date", date)
	logs, err := r.client.AllLifelogs(ctx, date, r.cfg.PageLimit)
	if err != nil {
		return nil, fmt.Errorf("fetch lifelogs: %w", err)
	}
	if len(logs) == 0 {
		return nil, fmt.Errorf("%w: %s", lifelog.ErrNoData, date)
	}

	entries := make([]lifelog.Entry, len(logs))
	for i, l := range logs {
		entries[i] = lifelog.Entry{ID: l.ID, FullMarkdown: l.Markdown, Contents: l.Contents}
	}
	if err := r.archive.SaveContents(date, entries); err != nil {
		return nil, err
	}
	return r.archive.DayEvidence(date)
}

// downloadChunk streams one chunk to a partial file and renames it into
// place, so an interrupted download never looks complete to a re-run.
func (r *Runner) downloadChunk(ctx context.Context, c planner.Chunk, path string) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, fmt.Errorf("mkdir: %w", err)
	}

	partial := path + ".partial"
	f, err := os.Create(partial)
	if err != nil {
		return 0, fmt.Errorf("create file: %w", err)
	}

	n, err := r.client.DownloadAudio(ctx, c.Start, c.End, f)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("close file: %w", cerr)
	}
	if err != nil {
		_ = os.Remove(partial)
		return 0, err
	}

	if err := os.Rename(partial, path); err != nil {
		_ = os.Remove(partial)
		return 0, fmt.Errorf("rename: %w", err)
	}
	return n, nil
}

func (r *Runner) recordChunk(ctx context.Context, state *RunState, date string, c planner.Chunk, status string, bytes int64) {
	if r.ledger == nil {
		return
	}
	if err := r.ledger.RecordChunk(ctx, state.RunID, date, c, status, bytes); err != nil {
		r.logger.Warn("failed to record chunk in ledger", "date", date, "label", c.Label, "error", err)
	}
}

func (r *Runner) publishDayCompleted(state *RunState, ds DayStats) {
	if r.notifier == nil || r.cfg.DryRun {
		return
	}
	event := notify.DayCompleted{
		RunID:        state.RunID.String(),
		Date:         ds.Date,
		Status:       string(ds.Status),
		Chunks:       ds.Chunks,
		Downloaded:   ds.Downloaded,
		Skipped:      ds.Skipped,
		Errors:       ds.Errors,
		AudioSeconds: int64(ds.AudioDuration.Seconds()),
	}
	if err := r.notifier.Publish(notify.SubjectDayCompleted, event); err != nil {
		r.logger.Warn("failed to publish day event", "date", ds.Date, "error", err)
	}
}

func (r *Runner) publishRunCompleted(state *RunState, stats RunStats) {
	if r.notifier == nil || r.cfg.DryRun {
		return
	}
	event := notify.RunCompleted{
		RunID:         state.RunID.String(),
		Days:          len(stats.Days),
		DaysWithAudio: stats.DaysWithAudio,
		Downloaded:    stats.Downloaded,
		Skipped:       stats.Skipped,
		Errors:        stats.Errors,
		AudioSeconds:  int64(stats.AudioDuration.Seconds()),
	}
	if err := r.notifier.Publish(notify.SubjectRunCompleted, event); err != nil {
		r.logger.Warn("failed to publish run event", "error", err)
	}
}

func (s *RunStats) add(ds DayStats) {
	s.Days = append(s.Days, ds)
	switch ds.Status {
	case DayNoData:
		s.DaysNoData++
	case DayNoRecordings:
		s.DaysNoRecordings++
	case DayExported:
		s.DaysWithAudio++
	}
	s.Downloaded += ds.Downloaded
	s.Skipped += ds.Skipped
	s.Errors += ds.Errors
	s.AudioDuration += ds.AudioDuration
}

// ChunkFileName names a chunk's output artifact: date, label, and the
// chunk's start clock time, e.g. "2025-11-20-morning-0703.ogg".
func ChunkFileName(date string, c planner.Chunk) string {
	return fmt.Sprintf("%s-%s-%s.ogg", date, c.Label, c.Start.Format("1504"))
}
