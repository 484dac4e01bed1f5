package planner

import (
	"fmt"
	"reflect"
	"testing"
	"time"
)

// dayEvidence builds record evidence for a realistic day: a long morning
// session, a midday burst, and an evening stretch crossing the 2h limit.
func dayEvidence() RecordEvidence {
	var records RecordEvidence
	add := func(start time.Time, count int, step time.Duration) {
		for i := 0; i < count; i++ {
			ts := start.Add(time.Duration(i) * step)
			records = append(records, Record{
				StartTime: ts.Format(time.RFC3339),
				EndTime:   ts.Add(step / 2).Format(time.RFC3339),
			})
		}
	}
	add(at(7, 0), 30, 2*time.Minute)  // 07:00–08:00
	add(at(12, 15), 10, time.Minute)  // 12:15–12:25
	add(at(18, 0), 90, 3*time.Minute) // 18:00–22:30
	return records
}

func testOpts() Options {
	opts := DefaultOptions()
	opts.Location = time.UTC
	return opts
}

func TestPlan_ChunksCoverSessionsExactly(t *testing.T) {
	p := New(testOpts(), discard())
	ev := dayEvidence()

	sessions := p.Sessions(ev)
	plan := p.Plan(ev)
	if plan.Empty() {
		t.Fatal("expected a non-empty plan")
	}

	// Group chunks back into session spans and compare.
	var covered []Session
	for _, c := range plan.Chunks {
		if len(covered) > 0 && c.Start.Equal(covered[len(covered)-1].End) {
			covered[len(covered)-1].End = c.End
			continue
		}
		covered = append(covered, Session{Start: c.Start, End: c.End})
	}

	if len(covered) != len(sessions) {
		t.Fatalf("chunks cover %d spans, sessions are %d", len(covered), len(sessions))
	}
	for i := range sessions {
		if !covered[i].Start.Equal(sessions[i].Start) || !covered[i].End.Equal(sessions[i].End) {
			t.Errorf("span %d = [%v, %v], want session [%v, %v]",
				i, covered[i].Start, covered[i].End, sessions[i].Start, sessions[i].End)
		}
	}
}

func TestPlan_ChunksRespectDurationLimit(t *testing.T) {
	plan := New(testOpts(), discard()).Plan(dayEvidence())

	for i, c := range plan.Chunks {
		if c.Duration() > MaxChunkDuration {
			t.Errorf("chunk %d duration %v exceeds %v", i, c.Duration(), MaxChunkDuration)
		}
		if !c.End.After(c.Start) {
			t.Errorf("chunk %d has non-positive span [%v, %v]", i, c.Start, c.End)
		}
		if i > 0 && c.Start.Before(plan.Chunks[i-1].Start) {
			t.Errorf("chunk %d out of chronological order", i)
		}
	}
}

func TestPlan_Deterministic(t *testing.T) {
	p := New(testOpts(), discard())
	ev := dayEvidence()

	first := p.Plan(ev)
	second := p.Plan(ev)
	if !reflect.DeepEqual(first, second) {
		t.Error("re-planning identical input produced a different plan")
	}
}

func TestPlan_EmptyEvidence(t *testing.T) {
	p := New(testOpts(), discard())

	for _, ev := range []Evidence{RecordEvidence(nil), TextEvidence("")} {
		plan := p.Plan(ev)
		if !plan.Empty() {
			t.Errorf("%T: expected empty plan, got %d chunks", ev, len(plan.Chunks))
		}
		if plan.TotalDuration() != 0 {
			t.Errorf("%T: expected zero total duration", ev)
		}
	}
}

func TestPlan_TextEvidencePipeline(t *testing.T) {
	var text string
	for i := 0; i < 5; i++ {
		text += fmt.Sprintf("- Speaker 1 (11/19/25 %d:0%d AM): hello\n", 7, i)
	}
	text += "- Speaker 2 (11/19/25 9:30 PM): late note\n"

	plan := New(testOpts(), discard()).Plan(TextEvidence(text))
	if len(plan.Chunks) != 2 {
		t.Fatalf("expected 2 chunks (morning burst, lone evening instant), got %d", len(plan.Chunks))
	}
	if plan.Chunks[0].Label != "morning" {
		t.Errorf("chunk 0 label = %q, want morning", plan.Chunks[0].Label)
	}
	if plan.Chunks[1].Label != "night" {
		t.Errorf("chunk 1 label = %q, want night (21:30 start)", plan.Chunks[1].Label)
	}
}

func TestPlan_LabelsFollowConfiguredTimezone(t *testing.T) {
	chicago, err := time.LoadLocation("America/Chicago")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	opts := testOpts()
	opts.Location = chicago

	plan := New(opts, discard()).Plan(RecordEvidence{
		{StartTime: "2025-11-20T20:00:00Z", EndTime: "2025-11-20T20:04:00Z"},
	})
	if len(plan.Chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(plan.Chunks))
	}
	if plan.Chunks[0].Label != "afternoon" {
		t.Errorf("label = %q, want afternoon (20:00Z is 14:00 in Chicago)", plan.Chunks[0].Label)
	}
}

func TestPlan_TotalDuration(t *testing.T) {
	sessions := []Session{{Start: at(9, 0), End: at(10, 0)}}
	plan := Plan{Chunks: SplitSessions(sessions, testOpts())}
	if plan.TotalDuration() != time.Hour {
		t.Errorf("total duration = %v, want 1h", plan.TotalDuration())
	}
}
