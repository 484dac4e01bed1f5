package planner

import (
	"fmt"
	"time"
)

// LabelPolicy assigns a human-readable label to a chunk. start is the
// chunk's own start time (not the enclosing session's), already converted
// to the planning location; index is the global one-based chunk index
// across the whole run.
type LabelPolicy interface {
	Label(start time.Time, index int) string
}

// TimeOfDayLabels buckets chunks by the local hour of their start time:
// [5,12) morning, [12,17) afternoon, [17,21) evening, otherwise night.
type TimeOfDayLabels struct{}

func (TimeOfDayLabels) Label(start time.Time, _ int) string {
	switch hour := start.Hour(); {
	case hour >= 5 && hour < 12:
		return "morning"
	case hour >= 12 && hour < 17:
		return "afternoon"
	case hour >= 17 && hour < 21:
		return "evening"
	default:
		return "night"
	}
}

// SequentialLabels numbers chunks across the run, for contexts where
// hour-of-day semantics are meaningless.
type SequentialLabels struct{}

func (SequentialLabels) Label(_ time.Time, index int) string {
	return fmt.Sprintf("session-%d", index)
}

// PolicyByName maps a configured scheme name to a policy. Unknown names fall
// back to time-of-day buckets.
func PolicyByName(name string) LabelPolicy {
	if name == "sequential" {
		return SequentialLabels{}
	}
	return TimeOfDayLabels{}
}
