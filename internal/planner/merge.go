package planner

import "time"

// Session is a single continuous period of recorded activity after short
// gaps have been absorbed. Sessions emitted by Merge are strictly ordered
// and pairwise non-overlapping.
type Session struct {
	Start time.Time
	End   time.Time
}

// Duration returns the session's span.
func (s Session) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

// Merge absorbs gaps shorter than minGap between adjacent raw periods,
// producing logical sessions. A negative gap (overlapping source periods)
// always merges; the merged end is the max of both ends, which guards
// against out-of-order end values in source data.
func Merge(periods []RawPeriod, minGap time.Duration) []Session {
	if len(periods) == 0 {
		return nil
	}

	merged := []Session{{Start: periods[0].Start, End: periods[0].End}}

	for _, p := range periods[1:] {
		last := &merged[len(merged)-1]
		if p.Start.Sub(last.End) < minGap {
			if p.End.After(last.End) {
				last.End = p.End
			}
			continue
		}
		merged = append(merged, Session{Start: p.Start, End: p.End})
	}

	return merged
}
