package pipeline

import (
	"fmt"

	"github.com/BurntSushi/toml"

	activity "github.com/lucasjlepore/accel-analyzer"
)

// FileConfig is the TOML run configuration. Zero values fall back to the
// classifier defaults.
type FileConfig struct {
	ShortWindowSeconds int     `toml:"short_window_seconds" json:"short_window_seconds"`
	BoutDurations      []int   `toml:"bout_durations" json:"bout_durations"`
	BoutCriterion      float64 `toml:"bout_criterion" json:"bout_criterion"`
	Algorithm          int     `toml:"algorithm" json:"algorithm"`
	ClosedBout         bool    `toml:"closed_bout" json:"closed_bout"`
	MinWearHours       *int    `toml:"min_wear_hours" json:"min_wear_hours"`
	Cutpoints          string  `toml:"cutpoints" json:"cutpoints"`
	DayBaseHour        int     `toml:"day_base_hour" json:"day_base_hour"`
	DayPeriodHours     int     `toml:"day_period_hours" json:"day_period_hours"`
	CountsPerG         float64 `toml:"counts_per_g" json:"counts_per_g"`
}

func defaultFileConfig() FileConfig {
	return FileConfig{DayPeriodHours: 24}
}

func loadConfig(path string) (FileConfig, error) {
	fc := defaultFileConfig()
	if path == "" {
		return fc, nil
	}
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return fc, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if fc.DayPeriodHours <= 0 {
		fc.DayPeriodHours = 24
	}
	if fc.DayBaseHour < 0 || fc.DayBaseHour > 23 {
		return fc, fmt.Errorf("day_base_hour must be in [0, 23], got %d", fc.DayBaseHour)
	}
	return fc, nil
}

// classifierConfig maps the file configuration onto the engine defaults,
// overriding only what the file sets.
func (fc FileConfig) classifierConfig() activity.Config {
	cfg := activity.DefaultConfig()
	if fc.ShortWindowSeconds > 0 {
		cfg.ShortWindowSeconds = fc.ShortWindowSeconds
	}
	if len(fc.BoutDurations) > 0 {
		cfg.BoutDurations = fc.BoutDurations
	}
	if fc.BoutCriterion > 0 {
		cfg.BoutCriterion = fc.BoutCriterion
	}
	if fc.Algorithm > 0 {
		cfg.Algorithm = activity.BoutAlgorithm(fc.Algorithm)
	}
	cfg.ClosedBout = fc.ClosedBout
	if fc.MinWearHours != nil {
		cfg.MinWearHours = *fc.MinWearHours
	}
	if fc.Cutpoints != "" {
		cfg.CutpointsName = fc.Cutpoints
	}
	return cfg
}
