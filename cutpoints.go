package activity

import (
	"fmt"
	"math"
	"sort"
)

// Level is one physical-activity intensity level.
type Level string

const (
	LevelMVPA      Level = "MVPA"
	LevelSedentary Level = "sed"
	LevelLight     Level = "light"
	LevelModerate  Level = "mod"
	LevelVigorous  Level = "vig"
)

// Levels lists every intensity level in reporting order.
var Levels = []Level{LevelMVPA, LevelSedentary, LevelLight, LevelModerate, LevelVigorous}

// Cutpoints maps a sensor placement / population profile onto an
// acceleration metric and the thresholds, in the metric's units (g),
// separating sedentary, light, moderate, and vigorous activity. Thresholds
// are expected to be non-decreasing; New validates custom profiles.
type Cutpoints struct {
	Name      string        `json:"name"`
	Metric    MetricKind    `json:"metric"`
	Options   MetricOptions `json:"options"`
	Sedentary float64       `json:"sedentary"`
	Light     float64       `json:"light"`
	Moderate  float64       `json:"moderate"`
}

// DefaultCutpointsName is the profile used when a requested profile is not
// in the table.
const DefaultCutpointsName = "migueles_wrist_adult"

var baseCutpoints = map[string]Cutpoints{
	"migueles_wrist_adult": {
		Name:      "migueles_wrist_adult",
		Metric:    MetricENMO,
		Options:   MetricOptions{TrimNegative: true},
		Sedentary: 0.050,
		Light:     0.110,
		Moderate:  0.440,
	},
	"hildebrand_wrist_adult_geneactiv": {
		Name:      "hildebrand_wrist_adult_geneactiv",
		Metric:    MetricENMO,
		Options:   MetricOptions{TrimNegative: true},
		Sedentary: 0.0458,
		Light:     0.0932,
		Moderate:  0.4183,
	},
	"hildebrand_hip_adult_geneactiv": {
		Name:      "hildebrand_hip_adult_geneactiv",
		Metric:    MetricENMO,
		Options:   MetricOptions{TrimNegative: true},
		Sedentary: 0.0469,
		Light:     0.0687,
		Moderate:  0.2668,
	},
	"vaha_ypya_hip_adult": {
		Name:      "vaha_ypya_hip_adult",
		Metric:    MetricMAD,
		Sedentary: 0.0167,
		Light:     0.091,
		Moderate:  0.414,
	},
	"schaefer_ndomwrist_child": {
		Name:      "schaefer_ndomwrist_child",
		Metric:    MetricBFEN,
		Options:   MetricOptions{LowCutoffHz: 0.2, HighCutoffHz: 15, FilterOrder: 4},
		Sedentary: 0.0217,
		Light:     0.0875,
		Moderate:  0.1426,
	},
}

// AvailableCutpoints returns the sorted profile names in the table.
func AvailableCutpoints() []string {
	names := make([]string, 0, len(baseCutpoints))
	for name := range baseCutpoints {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CutpointsFor looks up a profile by name. Unknown names fall back to
// DefaultCutpointsName; the second return reports whether the requested
// name was found.
func CutpointsFor(name string) (Cutpoints, bool) {
	if cp, ok := baseCutpoints[name]; ok {
		return cp, true
	}
	return baseCutpoints[DefaultCutpointsName], false
}

// LevelThresholds returns the half-open [lower, upper) band for a level
// under the given profile. MVPA spans from the light threshold up, vigorous
// from the moderate threshold up.
func LevelThresholds(level Level, cp Cutpoints) (lower, upper float64, err error) {
	switch level {
	case LevelSedentary:
		return math.Inf(-1), cp.Sedentary, nil
	case LevelLight:
		return cp.Sedentary, cp.Light, nil
	case LevelModerate:
		return cp.Light, cp.Moderate, nil
	case LevelVigorous:
		return cp.Moderate, math.Inf(1), nil
	case LevelMVPA:
		return cp.Light, math.Inf(1), nil
	}
	return 0, 0, fmt.Errorf("unknown activity level %q", level)
}
