package store

import (
	"context"
	"fmt"
	"time"

	"github.com/adamthede/project-limitless-exporter/internal/planner"
	"github.com/google/uuid"
)

// RecordChunk writes one chunk outcome to the ledger. status is one of
// "downloaded", "no_audio", or "error".
func (s *Store) RecordChunk(ctx context.Context, runID uuid.UUID, day string, c planner.Chunk, status string, bytes int64) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO audio_chunks (id, run_id, day, label, start_at, end_at, status, bytes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		uuid.New(), runID, day, c.Label, c.Start, c.End, status, bytes,
	)
	if err != nil {
		return fmt.Errorf("insert chunk: %w", err)
	}
	return nil
}

// DailyUsage is one day's downloaded-audio totals.
type DailyUsage struct {
	Day      string
	Chunks   int
	Bytes    int64
	Duration time.Duration
}

// DailyUsageForMonth returns per-day totals of downloaded chunks for a
// month in YYYY-MM form, ordered by day.
func (s *Store) DailyUsageForMonth(ctx context.Context, month string) ([]DailyUsage, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT day::text,
		       count(*),
		       coalesce(sum(bytes), 0),
		       coalesce(sum(extract(epoch FROM end_at - start_at)), 0)
		FROM audio_chunks
		WHERE status = 'downloaded' AND to_char(day, 'YYYY-MM') = $1
		GROUP BY day
		ORDER BY day`,
		month,
	)
	if err != nil {
		return nil, fmt.Errorf("query daily usage: %w", err)
	}
	defer rows.Close()

	var usage []DailyUsage
	for rows.Next() {
		var u DailyUsage
		var seconds float64
		if err := rows.Scan(&u.Day, &u.Chunks, &u.Bytes, &seconds); err != nil {
			return nil, fmt.Errorf("scan daily usage: %w", err)
		}
		u.Duration = time.Duration(seconds * float64(time.Second))
		usage = append(usage, u)
	}
	return usage, rows.Err()
}

// MonthlyUsage is one month's downloaded-audio totals.
type MonthlyUsage struct {
	Month    string
	Days     int
	Chunks   int
	Bytes    int64
	Duration time.Duration
}

// MonthlyUsageSummary returns per-month totals of downloaded chunks,
// ordered by month.
func (s *Store) MonthlyUsageSummary(ctx context.Context) ([]MonthlyUsage, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT to_char(day, 'YYYY-MM'),
		       count(DISTINCT day),
		       count(*),
		       coalesce(sum(bytes), 0),
		       coalesce(sum(extract(epoch FROM end_at - start_at)), 0)
		FROM audio_chunks
		WHERE status = 'downloaded'
		GROUP BY 1
		ORDER BY 1`,
	)
	if err != nil {
		return nil, fmt.Errorf("query monthly usage: %w", err)
	}
	defer rows.Close()

	var usage []MonthlyUsage
	for rows.Next() {
		var u MonthlyUsage
		var seconds float64
		if err := rows.Scan(&u.Month, &u.Days, &u.Chunks, &u.Bytes, &seconds); err != nil {
			return nil, fmt.Errorf("scan monthly usage: %w", err)
		}
		u.Duration = time.Duration(seconds * float64(time.Second))
		usage = append(usage, u)
	}
	return usage, rows.Err()
}
