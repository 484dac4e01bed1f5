package planner

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"time"
)

// ErrInvalidShape is returned when a raw evidence payload is neither a list
// of content records nor a text blob.
var ErrInvalidShape = errors.New("evidence is neither a record list nor text")

// Record is one structured content item from the lifelog service. Both
// timestamp fields are optional; either may be absent or malformed.
type Record struct {
	StartTime string `json:"startTime,omitempty"`
	EndTime   string `json:"endTime,omitempty"`
}

// Evidence is the timestamp evidence for a stretch of recorded activity:
// either structured records with explicit start/end fields, or free text
// containing embedded date-time patterns.
type Evidence interface {
	instants(loc *time.Location) (found []time.Time, dropped int)
}

// RecordEvidence is structured evidence: a list of content records.
type RecordEvidence []Record

// TextEvidence is free-form evidence (typically lifelog markdown) scanned
// for timestamps of the form "11/19/25 7:03 AM".
type TextEvidence string

// textTimestampPattern matches M/D/YY h:mm AM|PM with flexible whitespace.
var textTimestampPattern = regexp.MustCompile(`(\d{1,2}/\d{1,2}/\d{2})\s+(\d{1,2}:\d{2}\s*[AP]M)`)

// EvidenceFromJSON decodes a raw day payload into Evidence. A JSON array
// becomes RecordEvidence, a JSON string becomes TextEvidence; anything else
// is ErrInvalidShape.
func EvidenceFromJSON(raw []byte) (Evidence, error) {
	var records []Record
	if err := json.Unmarshal(raw, &records); err == nil {
		return RecordEvidence(records), nil
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return TextEvidence(text), nil
	}
	return nil, ErrInvalidShape
}

func (r RecordEvidence) instants(loc *time.Location) ([]time.Time, int) {
	var found []time.Time
	dropped := 0
	for _, rec := range r {
		for _, raw := range []string{rec.StartTime, rec.EndTime} {
			if raw == "" {
				continue
			}
			ts, err := parseRecordTimestamp(raw, loc)
			if err != nil {
				dropped++
				continue
			}
			found = append(found, ts)
		}
	}
	return found, dropped
}

func (t TextEvidence) instants(loc *time.Location) ([]time.Time, int) {
	var found []time.Time
	dropped := 0
	for _, m := range textTimestampPattern.FindAllStringSubmatch(string(t), -1) {
		ts, err := time.ParseInLocation("1/2/06 3:04 PM", m[1]+" "+normalizeClock(m[2]), loc)
		if err != nil {
			dropped++
			continue
		}
		found = append(found, ts)
	}
	return found, dropped
}

// normalizeClock collapses the whitespace between the clock and the AM/PM
// marker to the single space the parse layout expects.
func normalizeClock(s string) string {
	if fields := strings.Fields(s); len(fields) == 2 {
		return fields[0] + " " + fields[1]
	}
	// "7:03AM" with no separator in the match
	return s[:len(s)-2] + " " + s[len(s)-2:]
}

// parseRecordTimestamp parses an ISO-8601-like timestamp. Values without an
// explicit offset are interpreted in loc.
func parseRecordTimestamp(raw string, loc *time.Location) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return ts, nil
	}
	if ts, err := time.ParseInLocation("2006-01-02T15:04:05", raw, loc); err == nil {
		return ts, nil
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", raw)
}

// ExtractInstants normalizes evidence into a sorted, duplicate-free sequence
// of instants. Malformed individual entries are dropped, never fatal; zero
// valid instants yields an empty sequence.
func ExtractInstants(ev Evidence, loc *time.Location, logger *slog.Logger) []time.Time {
	if ev == nil {
		return nil
	}
	if loc == nil {
		loc = time.Local
	}

	found, dropped := ev.instants(loc)

	sort.Slice(found, func(i, j int) bool { return found[i].Before(found[j]) })
	instants := found[:0]
	for i, ts := range found {
		if i > 0 && ts.Equal(found[i-1]) {
			continue
		}
		instants = append(instants, ts)
	}

	if logger != nil {
		logger.Debug("timestamp evidence extracted",
			"instants", len(instants),
			"dropped", dropped,
		)
		if dropped > 0 {
			logger.Warn("dropped malformed timestamps", "count", dropped)
		}
	}

	return instants
}
