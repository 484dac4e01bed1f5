package planner

import (
	"fmt"
	"time"
)

// Chunk is a bounded-duration slice of a session sized to respect the
// external per-request duration limit.
type Chunk struct {
	Start time.Time
	End   time.Time
	Label string
}

// Duration returns the chunk's span.
func (c Chunk) Duration() time.Duration {
	return c.End.Sub(c.Start)
}

// SplitSessions partitions each session greedily into chunks no longer than
// opts.MaxChunkDuration. Chunks within a session are contiguous and exactly
// cover its span; the final chunk carries the remainder. Sessions shorter
// than opts.MinChunkDuration are padded out to that floor so a lone instant
// still yields a downloadable chunk.
//
// A single label index threads across all sessions. When two chunks in one
// run would collide on the same label, later ones get the index appended.
func SplitSessions(sessions []Session, opts Options) []Chunk {
	var chunks []Chunk
	index := 1
	seen := make(map[string]bool)

	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}

	for _, s := range sessions {
		end := s.End
		if end.Sub(s.Start) < opts.MinChunkDuration {
			end = s.Start.Add(opts.MinChunkDuration)
		}

		for cur := s.Start; cur.Before(end); {
			next := cur.Add(opts.MaxChunkDuration)
			if next.After(end) {
				next = end
			}

			label := opts.Labels.Label(cur.In(loc), index)
			if seen[label] {
				label = fmt.Sprintf("%s-%d", label, index)
			}
			seen[label] = true

			chunks = append(chunks, Chunk{Start: cur, End: next, Label: label})
			cur = next
			index++
		}
	}

	return chunks
}
