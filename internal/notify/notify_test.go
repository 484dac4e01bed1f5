package notify

import (
	"encoding/json"
	"log/slog"
	"testing"
)

func TestSubjects(t *testing.T) {
	if SubjectDayCompleted != "lifelog.export.day.completed" {
		t.Errorf("SubjectDayCompleted = %q", SubjectDayCompleted)
	}
	if SubjectRunCompleted != "lifelog.export.run.completed" {
		t.Errorf("SubjectRunCompleted = %q", SubjectRunCompleted)
	}
}

func TestPublish_UnmarshalablePayload(t *testing.T) {
	// The marshal failure path never reaches the connection.
	p := &Publisher{logger: slog.New(slog.DiscardHandler)}

	if err := p.Publish(SubjectDayCompleted, func() {}); err == nil {
		t.Error("expected an error for an unmarshalable payload")
	}
}

func TestDayCompletedEventShape(t *testing.T) {
	ev := DayCompleted{RunID: "r1", Date: "2025-11-20", Status: "exported", Chunks: 3}
	payload, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(payload, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"run_id", "date", "status", "chunks", "downloaded", "skipped", "errors", "audio_seconds"} {
		if _, ok := got[key]; !ok {
			t.Errorf("payload missing key %q", key)
		}
	}
}
