package activity

// BoutAlgorithm selects one of the bout detection strategies. The numbering
// follows the GGIR-style conventions the literature uses.
type BoutAlgorithm int

const (
	// BoutGreedyExpand scans for qualifying windows and greedily expands them
	// while the in-band fraction stays above the criterion.
	BoutGreedyExpand BoutAlgorithm = 1
	// BoutWindowRelabel relabels every epoch of each qualifying fixed window
	// and counts relabeled plus surviving in-band epochs.
	BoutWindowRelabel BoutAlgorithm = 2
	// BoutSlidingGap slides the bout window across the series, disallowing
	// breaks of a minute or longer.
	BoutSlidingGap BoutAlgorithm = 3
	// BoutSlidingGapEnds is BoutSlidingGap with the added requirement that a
	// window start and end on in-band epochs.
	BoutSlidingGapEnds BoutAlgorithm = 4
	// BoutSlidingGapLenient is BoutSlidingGapEnds with breaks strictly longer
	// than a minute disallowed and the criterion met inclusively.
	BoutSlidingGapLenient BoutAlgorithm = 5
)

// ActivityBouts computes the minutes spent in sustained bouts of activity
// whose per-epoch metric lies in [lower, upper). epochSeconds is the epoch
// length, boutMinutes the minimum bout duration, and boutCrit the fraction of
// a bout that must be in band. closedBout only affects BoutGreedyExpand,
// where it counts breaks inside a bout towards its duration.
func ActivityBouts(metric []float64, lower, upper float64, epochSeconds, boutMinutes int, boutCrit float64, closedBout bool, alg BoutAlgorithm) float64 {
	if len(metric) == 0 || epochSeconds <= 0 || boutMinutes <= 0 {
		return 0
	}
	nboutdur := boutMinutes * 60 / epochSeconds
	if nboutdur <= 0 {
		return 0
	}
	epochMin := float64(epochSeconds) / 60
	epm := 60 / epochSeconds
	x := thresholdMask(metric, lower, upper)

	switch alg {
	case BoutGreedyExpand:
		return greedyBoutMinutes(x, nboutdur, boutCrit, closedBout, epochMin)
	case BoutWindowRelabel:
		return relabelBoutMinutes(x, nboutdur, boutCrit, epochMin)
	case BoutSlidingGap:
		return slidingBoutMinutes(x, nboutdur, epm, boutCrit, false, false, epochMin)
	case BoutSlidingGapEnds:
		return slidingBoutMinutes(x, nboutdur, epm, boutCrit, true, false, epochMin)
	case BoutSlidingGapLenient:
		return slidingBoutMinutes(x, nboutdur, epm, boutCrit, true, true, epochMin)
	}
	return 0
}

func thresholdMask(metric []float64, lower, upper float64) []int {
	x := make([]int, len(metric))
	for i, v := range metric {
		if v >= lower && v < upper {
			x[i] = 1
		}
	}
	return x
}

func crossings(x []int) []int {
	var p []int
	for i, v := range x {
		if v == 1 {
			p = append(p, i)
		}
	}
	return p
}

func sumRange(x []int, start, stop int) int {
	s := 0
	for i := start; i < stop; i++ {
		s += x[i]
	}
	return s
}

func greedyBoutMinutes(x []int, nboutdur int, crit float64, closed bool, epochMin float64) float64 {
	p := crossings(x)
	total := 0.0
	i := 0
	for i < len(p) {
		start := p[i]
		end := start + nboutdur
		jump := 1
		if end < len(x) {
			s := sumRange(x, start, end)
			if float64(s) > float64(nboutdur)*crit {
				for float64(s) > float64(end-start)*crit && end < len(x) {
					s += x[end]
					end++
				}
				cnt := 0
				last := start
				for j := i; j < len(p) && p[j] < end; j++ {
					cnt++
					last = p[j]
				}
				if cnt > jump {
					jump = cnt
				}
				if closed {
					total += float64(last-start) * epochMin
				} else {
					total += float64(cnt) * epochMin
				}
			}
		}
		i += jump
	}
	return total
}

func relabelBoutMinutes(x []int, nboutdur int, crit float64, epochMin float64) float64 {
	xt := make([]int, len(x))
	p := crossings(x)
	for i := 0; i < len(p); i++ {
		start := p[i]
		end := start + nboutdur
		if end < len(x) {
			if float64(sumRange(x, start, end+1)) > float64(nboutdur)*crit {
				for j := start; j <= end; j++ {
					xt[j] = 2
				}
			} else {
				x[start] = 0
			}
		} else if len(p) > 1 && i > 2 {
			x[p[i]] = x[p[i-1]]
		}
	}
	cnt := 0
	for i := range x {
		if xt[i] == 2 || x[i] == 1 {
			cnt++
		}
	}
	return float64(cnt) * epochMin
}

// slidingBoutMinutes marks every epoch covered by a qualifying sliding window
// and counts the covered epochs. Epochs inside a break of a minute (or more
// than a minute in lenient mode) are weighted so heavily negative that no
// window containing them can qualify.
func slidingBoutMinutes(x []int, nboutdur, epm int, crit float64, enforceEnds, lenient bool, epochMin float64) float64 {
	if nboutdur > len(x) {
		return 0
	}
	xt := make([]float64, len(x))
	xf := make([]float64, len(x))
	for i, v := range x {
		xt[i] = float64(v)
		xf[i] = float64(v)
	}

	gapW := epm
	if lenient {
		gapW = epm + 1
	}
	gm := MovingMean(xf, gapW, 1)
	lead := gapW / 2
	penalty := -float64(epm * nboutdur)
	for i := range x {
		j := i - lead
		if j < 0 {
			j = 0
		}
		if j >= len(gm) {
			j = len(gm) - 1
		}
		if j >= 0 && gm[j] == 0 {
			xt[i] = penalty
		}
	}

	rm := MovingMean(xt, nboutdur, 1)
	inBout := make([]bool, len(x))
	for w, m := range rm {
		qualifies := m > crit
		if lenient {
			qualifies = m >= crit
		}
		if !qualifies {
			continue
		}
		if enforceEnds && (x[w] != 1 || x[w+nboutdur-1] != 1) {
			continue
		}
		for gi := 0; gi < nboutdur; gi++ {
			inBout[w+gi] = true
		}
	}
	cnt := 0
	for _, b := range inBout {
		if b {
			cnt++
		}
	}
	return float64(cnt) * epochMin
}
