package exporter

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// ExpandRange turns a start/end pair into an inclusive, ordered list of
// dates. start may be a whole month ("2025-11", end empty) or a single day
// ("2025-11-20", end empty); otherwise both bounds are days.
func ExpandRange(start, end string) ([]string, error) {
	var from, to time.Time

	switch {
	case len(start) == 7 && end == "":
		month, err := time.Parse("2006-01", start)
		if err != nil {
			return nil, fmt.Errorf("invalid month %q: use YYYY-MM", start)
		}
		from = month
		to = month.AddDate(0, 1, -1)
	case end == "":
		day, err := time.Parse(dateLayout, start)
		if err != nil {
			return nil, fmt.Errorf("invalid date %q: use YYYY-MM-DD", start)
		}
		from, to = day, day
	default:
		var err error
		if from, err = time.Parse(dateLayout, start); err != nil {
			return nil, fmt.Errorf("invalid start date %q: use YYYY-MM-DD", start)
		}
		if to, err = time.Parse(dateLayout, end); err != nil {
			return nil, fmt.Errorf("invalid end date %q: use YYYY-MM-DD", end)
		}
	}

	if to.Before(from) {
		return nil, fmt.Errorf("end date %s precedes start date %s", to.Format(dateLayout), from.Format(dateLayout))
	}

	var dates []string
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format(dateLayout))
	}
	return dates, nil
}

// Yesterday returns yesterday's date in the local zone.
func Yesterday() string {
	return time.Now().AddDate(0, 0, -1).Format(dateLayout)
}
