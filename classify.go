package activity

import (
	"fmt"
	"math"
	"time"
)

// Config controls epoch length, bout detection, and cutpoint selection for a
// Classifier.
type Config struct {
	// ShortWindowSeconds is the epoch length. It must divide 60; other
	// values are snapped to the nearest factor with a notice.
	ShortWindowSeconds int `json:"short_window_seconds" toml:"short_window_seconds"`
	// BoutDurations are the bout lengths, in minutes, computed per level.
	BoutDurations []int `json:"bout_durations" toml:"bout_durations"`
	// BoutCriterion is the fraction of a bout that must be in band, in (0, 1].
	BoutCriterion float64 `json:"bout_criterion" toml:"bout_criterion"`
	// Algorithm selects the bout detection strategy (1 through 5).
	Algorithm BoutAlgorithm `json:"algorithm" toml:"algorithm"`
	// ClosedBout counts breaks inside a bout towards its duration. Only
	// BoutGreedyExpand distinguishes the two accountings.
	ClosedBout bool `json:"closed_bout" toml:"closed_bout"`
	// MinWearHours gates a day out of processing when its wear time is lower.
	MinWearHours int `json:"min_wear_hours" toml:"min_wear_hours"`
	// CutpointsName selects a profile from the table; unknown names fall
	// back to DefaultCutpointsName with a notice.
	CutpointsName string `json:"cutpoints_name" toml:"cutpoints_name"`
	// CustomCutpoints overrides CutpointsName when non-nil.
	CustomCutpoints *Cutpoints `json:"custom_cutpoints,omitempty" toml:"-"`
}

// DefaultConfig returns the conventional configuration: 5 second epochs,
// 1/5/10 minute bouts at an 80% criterion with algorithm 4, and a 10 hour
// wear minimum.
func DefaultConfig() Config {
	return Config{
		ShortWindowSeconds: 5,
		BoutDurations:      []int{1, 5, 10},
		BoutCriterion:      0.8,
		Algorithm:          BoutSlidingGapEnds,
		MinWearHours:       10,
		CutpointsName:      DefaultCutpointsName,
	}
}

// Signal is the raw recording: unix timestamps in seconds and parallel
// triaxial acceleration in g. SampleRate may be zero, in which case it is
// estimated from the timestamps.
type Signal struct {
	Time       []float64
	Accel      [][3]float64
	SampleRate float64
}

// ClassifyOptions carries the externally derived index annotations. Any nil
// field falls back to a documented default with a notice.
type ClassifyOptions struct {
	// Wear intervals; nil treats the entire recording as worn.
	Wear []Interval
	// Sleep intervals; nil skips the sleep-excluded window type.
	Sleep []Interval
	// Days partitions the recording; nil treats it as a single day.
	Days []Interval
}

// Classifier maps a raw recording onto per-day intensity, bout, and
// intensity gradient summaries.
type Classifier struct {
	cfg       Config
	cutpoints Cutpoints
	notices   []Notice
}

var factorsOf60 = []int{1, 2, 3, 4, 5, 6, 10, 12, 15, 20, 30}

// New validates cfg and builds a Classifier. Configuration errors are fatal;
// recoverable conditions (window snapping, cutpoint fallback) become notices
// carried into every Summary.
func New(cfg Config) (*Classifier, error) {
	if cfg.ShortWindowSeconds <= 0 {
		return nil, fmt.Errorf("short window must be positive, got %d", cfg.ShortWindowSeconds)
	}
	if cfg.BoutCriterion <= 0 || cfg.BoutCriterion > 1 {
		return nil, fmt.Errorf("bout criterion must be in (0, 1], got %g", cfg.BoutCriterion)
	}
	if cfg.Algorithm < BoutGreedyExpand || cfg.Algorithm > BoutSlidingGapLenient {
		return nil, fmt.Errorf("bout algorithm must be 1 through 5, got %d", cfg.Algorithm)
	}
	if len(cfg.BoutDurations) == 0 {
		return nil, fmt.Errorf("at least one bout duration is required")
	}
	for _, d := range cfg.BoutDurations {
		if d <= 0 {
			return nil, fmt.Errorf("bout durations must be positive, got %d", d)
		}
	}
	if cfg.MinWearHours < 0 {
		return nil, fmt.Errorf("minimum wear hours must not be negative, got %d", cfg.MinWearHours)
	}

	c := &Classifier{cfg: cfg}

	if 60%cfg.ShortWindowSeconds != 0 {
		snapped := factorsOf60[0]
		for _, f := range factorsOf60 {
			if abs(f-cfg.ShortWindowSeconds) < abs(snapped-cfg.ShortWindowSeconds) {
				snapped = f
			}
		}
		c.notices = append(c.notices, Notice{
			Code:    "window_snapped",
			Message: fmt.Sprintf("short window %ds is not a factor of 60, using %ds", cfg.ShortWindowSeconds, snapped),
		})
		c.cfg.ShortWindowSeconds = snapped
	}

	if cfg.CustomCutpoints != nil {
		cp := *cfg.CustomCutpoints
		if cp.Sedentary > cp.Light || cp.Light > cp.Moderate {
			return nil, fmt.Errorf("custom cutpoints must be non-decreasing: %g, %g, %g",
				cp.Sedentary, cp.Light, cp.Moderate)
		}
		c.cutpoints = cp
	} else {
		name := cfg.CutpointsName
		if name == "" {
			name = DefaultCutpointsName
		}
		cp, found := CutpointsFor(name)
		if !found {
			c.notices = append(c.notices, Notice{
				Code:    "cutpoints_fallback",
				Message: fmt.Sprintf("cutpoints %q not found, using %q", name, DefaultCutpointsName),
			})
		}
		c.cutpoints = cp
	}
	return c, nil
}

// Config returns the validated configuration, with any snapped values.
func (c *Classifier) Config() Config { return c.cfg }

// Cutpoints returns the resolved cutpoint profile.
func (c *Classifier) Cutpoints() Cutpoints { return c.cutpoints }

// Classify computes per-day activity summaries for a recording. The signal
// must be non-empty with parallel time and acceleration sequences.
func (c *Classifier) Classify(sig Signal, opt ClassifyOptions) (*Summary, error) {
	if len(sig.Time) == 0 {
		return nil, fmt.Errorf("empty signal")
	}
	if len(sig.Time) != len(sig.Accel) {
		return nil, fmt.Errorf("time and acceleration lengths differ: %d != %d", len(sig.Time), len(sig.Accel))
	}

	sum := &Summary{Cutpoints: c.cutpoints, cfg: c.cfg}
	sum.Notices = append(sum.Notices, c.notices...)

	fs := sig.SampleRate
	if fs <= 0 {
		fs = estimateSampleRate(sig.Time)
	}
	if fs <= 0 || math.IsNaN(fs) || math.IsInf(fs, 0) {
		return nil, fmt.Errorf("could not determine sampling rate from timestamps")
	}

	wlen := c.cfg.ShortWindowSeconds
	nwlen := int(float64(wlen) * fs)
	if nwlen < 1 {
		nwlen = 1
	}
	epm := 60 / wlen

	wear := opt.Wear
	if wear == nil {
		sum.Notices = append(sum.Notices, Notice{
			Code:    "wear_missing",
			Message: "wear detection not provided, assuming the whole recording is worn",
		})
		wear = []Interval{{Start: 0, Stop: len(sig.Time)}}
	}
	days := opt.Days
	if days == nil {
		sum.Notices = append(sum.Notices, Notice{
			Code:    "day_missing",
			Message: "day indices not provided, treating the recording as one day",
		})
		days = []Interval{{Start: 0, Stop: len(sig.Time)}}
	}
	if opt.Sleep == nil {
		sum.Notices = append(sum.Notices, Notice{
			Code:    "sleep_missing",
			Message: "no sleep information found, only computing full day metrics",
		})
	}

	edges := igBinEdges()
	mids := igBinMidpoints(edges)

	for iday, day := range days {
		rec := DayRecord{DayN: iday + 1, WearAwakeHours: math.NaN()}
		fillDayHeader(&rec, sig.Time, day)

		dayWear := IntersectIndices([][]Interval{wear}, []bool{true}, day.Start, day.Stop)
		rec.WearHours = round1(intervalSeconds(dayWear, fs) / 3600)

		if rec.WearHours < float64(c.cfg.MinWearHours) {
			sum.Notices = append(sum.Notices, Notice{
				Code:    "day_skipped",
				Message: fmt.Sprintf("day %d has %.1f wear hours, minimum is %d", rec.DayN, rec.WearHours, c.cfg.MinWearHours),
				Day:     rec.DayN,
			})
			sum.Days = append(sum.Days, rec)
			continue
		}

		rec.Full = c.accumulateWindow(sig, dayWear, fs, nwlen, epm, edges, mids)

		if opt.Sleep != nil {
			awake := IntersectIndices(
				[][]Interval{wear, opt.Sleep},
				[]bool{true, false},
				day.Start, day.Stop,
			)
			rec.WearAwakeHours = round1(intervalSeconds(awake, fs) / 3600)
			rec.Awake = c.accumulateWindow(sig, awake, fs, nwlen, epm, edges, mids)
		}
		sum.Days = append(sum.Days, rec)
	}
	return sum, nil
}

// accumulateWindow runs the metric, MVPA epoch counts, bout detection, and
// the intensity gradient histogram over one day's valid intervals.
func (c *Classifier) accumulateWindow(sig Signal, intervals []Interval, fs float64, nwlen, epm int, edges, mids []float64) *WindowResult {
	res := newWindowResult(c.cfg)
	hist := make([]float64, len(edges)-1)
	light := c.cutpoints.Light
	wlen := c.cfg.ShortWindowSeconds

	for _, iv := range intervals {
		m := ComputeMetric(c.cutpoints.Metric, sig.Accel[iv.Start:iv.Stop], nwlen, fs, c.cutpoints.Options)
		if len(m) == 0 {
			continue
		}

		res.MVPAShortEpochMinutes += float64(countAtLeast(m, light)) / float64(epm)
		res.MVPAOneMinEpochMinutes += float64(countAtLeast(MovingMean(m, epm, epm), light))
		res.MVPAFiveMinEpochMinutes += float64(countAtLeast(MovingMean(m, 5*epm, 5*epm), light)) * 5

		bi := 0
		for _, level := range Levels {
			lower, upper, err := LevelThresholds(level, c.cutpoints)
			if err != nil {
				bi += len(c.cfg.BoutDurations)
				continue
			}
			for _, dur := range c.cfg.BoutDurations {
				res.Bouts[bi].Minutes += ActivityBouts(
					m, lower, upper, wlen, dur,
					c.cfg.BoutCriterion, c.cfg.ClosedBout, c.cfg.Algorithm,
				)
				bi++
			}
		}

		addHistogram(hist, m, edges)
	}

	for i := range hist {
		hist[i] *= float64(wlen) / 60
	}
	res.IG = IntensityGradient(mids, hist)
	return res
}

// fillDayHeader derives the date fields from the day's first timestamp. The
// timestamp is nudged 5 seconds forward so a boundary sitting a hair before
// midnight still labels the following date.
func fillDayHeader(rec *DayRecord, ts []float64, day Interval) {
	if day.Start >= len(ts) || day.empty() {
		return
	}
	t := time.Unix(int64(ts[day.Start])+5, 0).UTC()
	rec.Date = t.Format("2006-01-02")
	rec.Weekday = t.Weekday().String()
	stop := day.Stop
	if stop > len(ts) {
		stop = len(ts)
	}
	rec.Hours = round1((ts[stop-1] - ts[day.Start]) / 3600)
}

func estimateSampleRate(ts []float64) float64 {
	n := len(ts)
	if n > 5000 {
		n = 5000
	}
	if n < 2 {
		return 0
	}
	return float64(n-1) / (ts[n-1] - ts[0])
}

func intervalSeconds(ivs []Interval, fs float64) float64 {
	total := 0
	for _, iv := range ivs {
		total += iv.Stop - iv.Start
	}
	return float64(total) / fs
}

func countAtLeast(x []float64, threshold float64) int {
	n := 0
	for _, v := range x {
		if v >= threshold {
			n++
		}
	}
	return n
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
