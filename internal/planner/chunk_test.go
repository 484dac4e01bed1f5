package planner

import (
	"testing"
	"time"
)

func splitOpts() Options {
	opts := DefaultOptions()
	opts.Location = time.UTC
	return opts
}

func TestSplitSessions_SessionUnderLimit(t *testing.T) {
	sessions := []Session{{Start: at(9, 0), End: at(10, 30)}}

	chunks := SplitSessions(sessions, splitOpts())
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if !chunks[0].Start.Equal(at(9, 0)) || !chunks[0].End.Equal(at(10, 30)) {
		t.Errorf("chunk = [%v, %v], want the full session span", chunks[0].Start, chunks[0].End)
	}
}

func TestSplitSessions_LongSessionSplits(t *testing.T) {
	// 3.5 hours against a 2-hour limit: exactly two chunks, 2h then 1.5h.
	sessions := []Session{{Start: at(9, 0), End: at(12, 30)}}

	chunks := SplitSessions(sessions, splitOpts())
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].Duration() != 2*time.Hour {
		t.Errorf("chunk 0 duration = %v, want 2h", chunks[0].Duration())
	}
	if chunks[1].Duration() != 90*time.Minute {
		t.Errorf("chunk 1 duration = %v, want 1h30m", chunks[1].Duration())
	}
	if !chunks[1].Start.Equal(chunks[0].End) {
		t.Errorf("chunks not contiguous: %v then %v", chunks[0].End, chunks[1].Start)
	}
}

func TestSplitSessions_ExactMultipleOfLimit(t *testing.T) {
	sessions := []Session{{Start: at(8, 0), End: at(12, 0)}}

	chunks := SplitSessions(sessions, splitOpts())
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks for a 4h session, got %d", len(chunks))
	}
	for i, c := range chunks {
		if c.Duration() != 2*time.Hour {
			t.Errorf("chunk %d duration = %v, want exactly 2h", i, c.Duration())
		}
	}
}

func TestSplitSessions_ZeroLengthSessionGetsFloor(t *testing.T) {
	sessions := []Session{{Start: at(14, 30), End: at(14, 30)}}

	chunks := SplitSessions(sessions, splitOpts())
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk for a zero-length session, got %d", len(chunks))
	}
	if chunks[0].Duration() != DefaultMinChunkDuration {
		t.Errorf("chunk duration = %v, want the %v floor", chunks[0].Duration(), DefaultMinChunkDuration)
	}
}

func TestSplitSessions_TimeOfDayLabels(t *testing.T) {
	// The label follows each chunk's own start hour, not the session's:
	// a session from 11:00 crosses into the afternoon at its second chunk.
	sessions := []Session{{Start: at(11, 0), End: at(14, 0)}}

	chunks := SplitSessions(sessions, splitOpts())
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].Label != "morning" {
		t.Errorf("chunk 0 label = %q, want morning", chunks[0].Label)
	}
	if chunks[1].Label != "afternoon" {
		t.Errorf("chunk 1 label = %q, want afternoon", chunks[1].Label)
	}
}

func TestSplitSessions_LabelBuckets(t *testing.T) {
	cases := []struct {
		hour  int
		label string
	}{
		{4, "night"},
		{5, "morning"},
		{11, "morning"},
		{12, "afternoon"},
		{16, "afternoon"},
		{17, "evening"},
		{20, "evening"},
		{21, "night"},
		{23, "night"},
		{0, "night"},
	}
	for _, tc := range cases {
		sessions := []Session{{Start: at(tc.hour, 0), End: at(tc.hour, 30)}}
		chunks := SplitSessions(sessions, splitOpts())
		if chunks[0].Label != tc.label {
			t.Errorf("hour %d: label = %q, want %q", tc.hour, chunks[0].Label, tc.label)
		}
	}
}

func TestSplitSessions_LabelsUseConfiguredLocation(t *testing.T) {
	// Sessions arrive as UTC instants; the bucket follows the hour in the
	// configured location. 20:00 UTC is 14:00 in Chicago that day.
	chicago, err := time.LoadLocation("America/Chicago")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	opts := splitOpts()
	opts.Location = chicago

	sessions := []Session{{Start: at(20, 0), End: at(20, 30)}}
	chunks := SplitSessions(sessions, opts)
	if chunks[0].Label != "afternoon" {
		t.Errorf("label = %q, want afternoon for 14:00 local", chunks[0].Label)
	}
}

func TestSplitSessions_CollidingLabelsDisambiguated(t *testing.T) {
	// Two morning sessions in one run: the second chunk keeps the bucket
	// text but carries its global index.
	sessions := []Session{
		{Start: at(7, 0), End: at(7, 30)},
		{Start: at(10, 0), End: at(10, 30)},
	}

	chunks := SplitSessions(sessions, splitOpts())
	if chunks[0].Label != "morning" {
		t.Errorf("chunk 0 label = %q, want morning", chunks[0].Label)
	}
	if chunks[1].Label != "morning-2" {
		t.Errorf("chunk 1 label = %q, want morning-2", chunks[1].Label)
	}
}

func TestSplitSessions_SequentialLabels(t *testing.T) {
	opts := splitOpts()
	opts.Labels = SequentialLabels{}

	sessions := []Session{
		{Start: at(7, 0), End: at(7, 30)},
		{Start: at(9, 0), End: at(12, 30)}, // splits into two
	}

	chunks := SplitSessions(sessions, opts)
	want := []string{"session-1", "session-2", "session-3"}
	if len(chunks) != len(want) {
		t.Fatalf("expected %d chunks, got %d", len(want), len(chunks))
	}
	for i, c := range chunks {
		if c.Label != want[i] {
			t.Errorf("chunk %d label = %q, want %q", i, c.Label, want[i])
		}
	}
}

func TestSplitSessions_Empty(t *testing.T) {
	if chunks := SplitSessions(nil, splitOpts()); len(chunks) != 0 {
		t.Errorf("expected no chunks for no sessions, got %d", len(chunks))
	}
}
