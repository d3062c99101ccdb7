package activity

import "sort"

// Interval is a half-open [Start, Stop) index range into a sample stream.
type Interval struct {
	Start int `json:"start"`
	Stop  int `json:"stop"`
}

func (iv Interval) empty() bool { return iv.Stop <= iv.Start }

// normalizeIntervals sorts, clips to [lo, hi), drops empties, and merges
// overlapping or touching intervals.
func normalizeIntervals(ivs []Interval, lo, hi int) []Interval {
	clipped := make([]Interval, 0, len(ivs))
	for _, iv := range ivs {
		if iv.Start < lo {
			iv.Start = lo
		}
		if iv.Stop > hi {
			iv.Stop = hi
		}
		if !iv.empty() {
			clipped = append(clipped, iv)
		}
	}
	sort.Slice(clipped, func(i, j int) bool { return clipped[i].Start < clipped[j].Start })
	var out []Interval
	for _, iv := range clipped {
		if n := len(out); n > 0 && iv.Start <= out[n-1].Stop {
			if iv.Stop > out[n-1].Stop {
				out[n-1].Stop = iv.Stop
			}
			continue
		}
		out = append(out, iv)
	}
	return out
}

func intersectIntervals(a, b []Interval) []Interval {
	var out []Interval
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		start := a[i].Start
		if b[j].Start > start {
			start = b[j].Start
		}
		stop := a[i].Stop
		if b[j].Stop < stop {
			stop = b[j].Stop
		}
		if stop > start {
			out = append(out, Interval{Start: start, Stop: stop})
		}
		if a[i].Stop < b[j].Stop {
			i++
		} else {
			j++
		}
	}
	return out
}

func subtractIntervals(a, b []Interval) []Interval {
	var out []Interval
	j := 0
	for _, iv := range a {
		cur := iv.Start
		for j < len(b) && b[j].Stop <= cur {
			j++
		}
		k := j
		for k < len(b) && b[k].Start < iv.Stop {
			if b[k].Start > cur {
				out = append(out, Interval{Start: cur, Stop: b[k].Start})
			}
			if b[k].Stop > cur {
				cur = b[k].Stop
			}
			k++
		}
		if cur < iv.Stop {
			out = append(out, Interval{Start: cur, Stop: iv.Stop})
		}
	}
	return out
}

// IntersectIndices combines several interval sets against a single day span.
// Each set is either included (its intervals intersect the result) or
// excluded (its intervals are subtracted). All intervals are clipped to
// [dayStart, dayStop).
func IntersectIndices(sets [][]Interval, include []bool, dayStart, dayStop int) []Interval {
	out := []Interval{{Start: dayStart, Stop: dayStop}}
	if out[0].empty() {
		return nil
	}
	for si, set := range sets {
		norm := normalizeIntervals(set, dayStart, dayStop)
		if si < len(include) && !include[si] {
			out = subtractIntervals(out, norm)
		} else {
			out = intersectIntervals(out, norm)
		}
		if len(out) == 0 {
			return nil
		}
	}
	return out
}
