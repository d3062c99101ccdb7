package activity

import (
	"math"
	"testing"
	"time"
)

// mondaySignal builds a 1 Hz recording of constant acceleration starting at
// midnight UTC on a Monday.
func mondaySignal(days int, z float64) Signal {
	base := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC).Unix()
	n := days * 86400
	sig := Signal{
		Time:  make([]float64, n),
		Accel: make([][3]float64, n),
	}
	for i := 0; i < n; i++ {
		sig.Time[i] = float64(base + int64(i))
		sig.Accel[i] = [3]float64{0, 0, z}
	}
	return sig
}

func boutFor(t *testing.T, wr *WindowResult, level Level, dur int) float64 {
	t.Helper()
	for _, b := range wr.Bouts {
		if b.Level == level && b.DurationMinutes == dur {
			return b.Minutes
		}
	}
	t.Fatalf("no bout entry for %s %dmin", level, dur)
	return 0
}

func hasNotice(notices []Notice, code string) bool {
	for _, n := range notices {
		if n.Code == code {
			return true
		}
	}
	return false
}

func TestNewRejectsBadConfig(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero window", func(c *Config) { c.ShortWindowSeconds = 0 }},
		{"negative window", func(c *Config) { c.ShortWindowSeconds = -5 }},
		{"zero criterion", func(c *Config) { c.BoutCriterion = 0 }},
		{"criterion above one", func(c *Config) { c.BoutCriterion = 1.5 }},
		{"algorithm zero", func(c *Config) { c.Algorithm = 0 }},
		{"algorithm six", func(c *Config) { c.Algorithm = 6 }},
		{"no durations", func(c *Config) { c.BoutDurations = nil }},
		{"negative duration", func(c *Config) { c.BoutDurations = []int{5, -1} }},
		{"negative wear minimum", func(c *Config) { c.MinWearHours = -1 }},
		{"decreasing cutpoints", func(c *Config) {
			c.CustomCutpoints = &Cutpoints{Sedentary: 0.5, Light: 0.1, Moderate: 0.9}
		}},
	}
	for _, tc := range cases {
		cfg := DefaultConfig()
		tc.mutate(&cfg)
		if _, err := New(cfg); err == nil {
			t.Errorf("%s: expected construction error", tc.name)
		}
	}
}

func TestNewSnapsWindow(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ShortWindowSeconds = 7
	c, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if got := c.Config().ShortWindowSeconds; got != 6 {
		t.Fatalf("snapped window = %d, want 6", got)
	}
	if !hasNotice(c.notices, "window_snapped") {
		t.Fatal("expected a window_snapped notice")
	}
}

func TestNewCutpointsFallback(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CutpointsName = "no_such_profile"
	c, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if c.Cutpoints().Name != DefaultCutpointsName {
		t.Fatalf("cutpoints = %q, want %q", c.Cutpoints().Name, DefaultCutpointsName)
	}
	if !hasNotice(c.notices, "cutpoints_fallback") {
		t.Fatal("expected a cutpoints_fallback notice")
	}
}

func TestClassifyConstantLightDay(t *testing.T) {
	c, err := New(DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	// a norm of 1.110 g leaves the residual exactly at the light cutpoint
	sig := mondaySignal(1, 1.110)
	n := len(sig.Time)

	sum, err := c.Classify(sig, ClassifyOptions{
		Wear: []Interval{{Start: 0, Stop: n}},
		Days: []Interval{{Start: 0, Stop: n}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(sum.Days) != 1 {
		t.Fatalf("got %d days, want 1", len(sum.Days))
	}

	d := sum.Days[0]
	if d.Date != "2026-03-02" || d.Weekday != "Monday" || d.DayN != 1 {
		t.Fatalf("header = %q %q day %d", d.Date, d.Weekday, d.DayN)
	}
	if d.Hours != 24 || d.WearHours != 24 {
		t.Fatalf("hours = %g, wear hours = %g, want 24 and 24", d.Hours, d.WearHours)
	}
	if !math.IsNaN(d.WearAwakeHours) || d.Awake != nil {
		t.Fatal("no sleep data supplied, expected NaN wear-awake hours and nil awake window")
	}
	if d.Full == nil {
		t.Fatal("full day window missing")
	}

	if math.Abs(d.Full.MVPAShortEpochMinutes-1440) > 1e-6 {
		t.Errorf("short epoch MVPA = %g minutes, want 1440", d.Full.MVPAShortEpochMinutes)
	}
	if math.Abs(d.Full.MVPAOneMinEpochMinutes-1440) > 1e-6 {
		t.Errorf("1min epoch MVPA = %g minutes, want 1440", d.Full.MVPAOneMinEpochMinutes)
	}
	if math.Abs(d.Full.MVPAFiveMinEpochMinutes-1440) > 1e-6 {
		t.Errorf("5min epoch MVPA = %g minutes, want 1440", d.Full.MVPAFiveMinEpochMinutes)
	}

	if sed := boutFor(t, d.Full, LevelSedentary, 10); sed != 0 {
		t.Errorf("sedentary 10min bout = %g minutes, want 0", sed)
	}
	if mvpa := boutFor(t, d.Full, LevelMVPA, 10); math.Abs(mvpa-1440) > 1e-6 {
		t.Errorf("MVPA 10min bout = %g minutes, want 1440", mvpa)
	}

	// every epoch lands in one intensity bin, too few for the regression
	if !math.IsNaN(d.Full.IG.Gradient) {
		t.Errorf("IG gradient = %g, want NaN", d.Full.IG.Gradient)
	}
}

func TestClassifySkipsLowWearDay(t *testing.T) {
	c, err := New(DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	sig := mondaySignal(2, 1.110)

	sum, err := c.Classify(sig, ClassifyOptions{
		Wear: []Interval{{Start: 0, Stop: 86400}},
		Days: []Interval{{Start: 0, Stop: 86400}, {Start: 86400, Stop: 172800}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(sum.Days) != 2 {
		t.Fatalf("got %d days, want 2", len(sum.Days))
	}

	d1, d2 := sum.Days[0], sum.Days[1]
	if d1.Full == nil || math.Abs(d1.Full.MVPAShortEpochMinutes-1440) > 1e-6 {
		t.Error("first day results affected by skipped neighbor")
	}
	if d2.Full != nil {
		t.Error("second day has results despite zero wear")
	}
	if d2.WearHours != 0 {
		t.Errorf("second day wear hours = %g, want 0", d2.WearHours)
	}
	if d2.Date != "2026-03-03" || d2.DayN != 2 {
		t.Errorf("second day header = %q day %d", d2.Date, d2.DayN)
	}
	if !hasNotice(sum.Notices, "day_skipped") {
		t.Error("expected a day_skipped notice")
	}

	cols := sum.Columns()
	rows := sum.Rows()
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	for i, row := range rows {
		if len(row) != len(cols) {
			t.Fatalf("row %d has %d cells, header has %d", i, len(row), len(cols))
		}
	}
	for i := 6; i < len(rows[1]); i++ {
		if rows[1][i] != "" {
			t.Fatalf("skipped day cell %q = %q, want empty", cols[i], rows[1][i])
		}
	}
	if rows[1][0] != "2026-03-03" {
		t.Errorf("skipped day keeps its date, got %q", rows[1][0])
	}
}

func TestClassifyWithSleep(t *testing.T) {
	c, err := New(DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	sig := mondaySignal(1, 1.110)
	n := len(sig.Time)

	sum, err := c.Classify(sig, ClassifyOptions{
		Wear:  []Interval{{Start: 0, Stop: n}},
		Sleep: []Interval{{Start: 0, Stop: 28800}},
		Days:  []Interval{{Start: 0, Stop: n}},
	})
	if err != nil {
		t.Fatal(err)
	}
	d := sum.Days[0]
	if d.Awake == nil {
		t.Fatal("awake window missing")
	}
	if d.WearAwakeHours != 16 {
		t.Errorf("wear awake hours = %g, want 16", d.WearAwakeHours)
	}
	if math.Abs(d.Awake.MVPAShortEpochMinutes-960) > 1e-6 {
		t.Errorf("awake short epoch MVPA = %g minutes, want 960", d.Awake.MVPAShortEpochMinutes)
	}
	if hasNotice(sum.Notices, "sleep_missing") {
		t.Error("sleep was supplied but a sleep_missing notice was raised")
	}
}

func TestClassifyMissingInputNotices(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinWearHours = 0
	c, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	base := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC).Unix()
	sig := Signal{
		Time:  make([]float64, 600),
		Accel: make([][3]float64, 600),
	}
	for i := range sig.Time {
		sig.Time[i] = float64(base + int64(i))
		sig.Accel[i] = [3]float64{0, 0, 1}
	}

	sum, err := c.Classify(sig, ClassifyOptions{})
	if err != nil {
		t.Fatal(err)
	}
	for _, code := range []string{"wear_missing", "day_missing", "sleep_missing"} {
		if !hasNotice(sum.Notices, code) {
			t.Errorf("expected a %s notice", code)
		}
	}
	if len(sum.Days) != 1 {
		t.Fatalf("got %d days, want 1", len(sum.Days))
	}
	if sum.Days[0].Full == nil {
		t.Fatal("recording should process as a single fully-worn day")
	}
}

func TestClassifyRejectsBadSignal(t *testing.T) {
	c, err := New(DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Classify(Signal{}, ClassifyOptions{}); err == nil {
		t.Fatal("expected error for empty signal")
	}
	sig := Signal{Time: make([]float64, 10), Accel: make([][3]float64, 5)}
	if _, err := c.Classify(sig, ClassifyOptions{}); err == nil {
		t.Fatal("expected error for mismatched lengths")
	}
}

func TestColumnsDeterministic(t *testing.T) {
	c, err := New(DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	sig := mondaySignal(1, 1)
	n := len(sig.Time)
	opt := ClassifyOptions{
		Wear: []Interval{{Start: 0, Stop: n}},
		Days: []Interval{{Start: 0, Stop: n}},
	}
	a, err := c.Classify(sig, opt)
	if err != nil {
		t.Fatal(err)
	}
	b, err := c.Classify(sig, opt)
	if err != nil {
		t.Fatal(err)
	}
	ca, cb := a.Columns(), b.Columns()
	if len(ca) != 48 {
		t.Fatalf("got %d columns, want 48", len(ca))
	}
	for i := range ca {
		if ca[i] != cb[i] {
			t.Fatalf("column %d differs: %q vs %q", i, ca[i], cb[i])
		}
	}
}
