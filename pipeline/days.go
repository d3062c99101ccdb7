package pipeline

import (
	"sort"
	"time"

	activity "github.com/lucasjlepore/accel-analyzer"
)

// dayIntervals partitions a timestamp sequence into day windows that start
// at baseHour UTC and span periodHours. Partial leading and trailing windows
// are kept.
func dayIntervals(ts []float64, baseHour, periodHours int) []activity.Interval {
	if len(ts) == 0 {
		return nil
	}
	period := float64(periodHours) * 3600

	first := time.Unix(int64(ts[0]), 0).UTC()
	anchor := time.Date(first.Year(), first.Month(), first.Day(), baseHour, 0, 0, 0, time.UTC)
	boundary := float64(anchor.Unix())
	for boundary <= ts[0] {
		boundary += period
	}

	var days []activity.Interval
	start := 0
	last := ts[len(ts)-1]
	for boundary <= last {
		stop := sort.SearchFloat64s(ts, boundary)
		if stop > start {
			days = append(days, activity.Interval{Start: start, Stop: stop})
			start = stop
		}
		boundary += period
	}
	if start < len(ts) {
		days = append(days, activity.Interval{Start: start, Stop: len(ts)})
	}
	return days
}
