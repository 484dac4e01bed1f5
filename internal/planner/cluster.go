package planner

import "time"

// RawPeriod is one burst of timestamp evidence with no internal gap at or
// above the clustering threshold. Start == End for a single isolated instant.
type RawPeriod struct {
	Start time.Time
	End   time.Time
}

// Cluster groups sorted instants into continuous recording periods. Two
// consecutive instants share a period iff the gap between them is strictly
// less than intraGap.
func Cluster(instants []time.Time, intraGap time.Duration) []RawPeriod {
	if len(instants) == 0 {
		return nil
	}

	var periods []RawPeriod
	current := RawPeriod{Start: instants[0], End: instants[0]}

	for _, ts := range instants[1:] {
		if ts.Sub(current.End) < intraGap {
			current.End = ts
			continue
		}
		periods = append(periods, current)
		current = RawPeriod{Start: ts, End: ts}
	}

	return append(periods, current)
}
