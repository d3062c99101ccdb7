package activity

import (
	"fmt"
	"math"
	"strconv"
)

// WindowType identifies the daily windowing mode a result was computed over.
type WindowType string

const (
	// WindowFullDay covers the whole day, midnight to midnight.
	WindowFullDay WindowType = "MM"
	// WindowExcludeSleep covers the day with sleep intervals removed.
	WindowExcludeSleep WindowType = "ExS"
)

// WindowTypes lists both windowing modes in reporting order.
var WindowTypes = []WindowType{WindowFullDay, WindowExcludeSleep}

// BoutMinutes is the minutes credited to bouts of one intensity level at one
// bout duration.
type BoutMinutes struct {
	Level           Level   `json:"level"`
	DurationMinutes int     `json:"duration_minutes"`
	Minutes         float64 `json:"minutes"`
}

// WindowResult holds one day's accumulated metrics for one window type.
type WindowResult struct {
	MVPAShortEpochMinutes   float64       `json:"mvpa_short_epoch_minutes"`
	MVPAOneMinEpochMinutes  float64       `json:"mvpa_1min_epoch_minutes"`
	MVPAFiveMinEpochMinutes float64       `json:"mvpa_5min_epoch_minutes"`
	Bouts                   []BoutMinutes `json:"bouts"`
	IG                      IGResult      `json:"intensity_gradient"`
}

// DayRecord is one row of the result table. Full and Awake are nil when the
// day was skipped for insufficient wear (Awake additionally when no sleep
// data was supplied).
type DayRecord struct {
	Date           string        `json:"date"`
	Weekday        string        `json:"weekday"`
	DayN           int           `json:"day_n"`
	Hours          float64       `json:"hours"`
	WearHours      float64       `json:"wear_hours"`
	WearAwakeHours float64       `json:"wear_awake_hours"`
	Full           *WindowResult `json:"full,omitempty"`
	Awake          *WindowResult `json:"awake,omitempty"`
}

// Notice is a recoverable condition recorded during classification. Day is
// the 1-based day number, or 0 when the notice is not tied to a day.
type Notice struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Day     int    `json:"day,omitempty"`
}

// Summary is the full output of Classifier.Classify: one DayRecord per day
// plus the notices raised along the way.
type Summary struct {
	Days      []DayRecord `json:"days"`
	Cutpoints Cutpoints   `json:"cutpoints"`
	Notices   []Notice    `json:"notices"`

	cfg Config
}

func newWindowResult(cfg Config) *WindowResult {
	bouts := make([]BoutMinutes, 0, len(Levels)*len(cfg.BoutDurations))
	for _, level := range Levels {
		for _, dur := range cfg.BoutDurations {
			bouts = append(bouts, BoutMinutes{Level: level, DurationMinutes: dur})
		}
	}
	return &WindowResult{Bouts: bouts}
}

// Columns returns the result table header. Column presence and order depend
// only on the configuration, so identical configurations always produce
// identical headers.
func (s *Summary) Columns() []string {
	cols := []string{"Date", "Weekday", "Day N", "N Hours", "N Wear Hours", "N Wear Awake Hours"}
	for _, wt := range WindowTypes {
		cols = append(cols,
			fmt.Sprintf("%s MVPA %dsec epoch", wt, s.cfg.ShortWindowSeconds),
			fmt.Sprintf("%s MVPA 1min epoch", wt),
			fmt.Sprintf("%s MVPA 5min epoch", wt),
		)
		for _, level := range Levels {
			for _, dur := range s.cfg.BoutDurations {
				cols = append(cols, fmt.Sprintf("%s %s %dmin bout", wt, level, dur))
			}
		}
		cols = append(cols,
			fmt.Sprintf("%s IG gradient", wt),
			fmt.Sprintf("%s IG intercept", wt),
			fmt.Sprintf("%s IG R-squared", wt),
		)
	}
	return cols
}

// Rows renders every day as strings aligned with Columns. NaN and missing
// window results render as empty cells.
func (s *Summary) Rows() [][]string {
	rows := make([][]string, 0, len(s.Days))
	for _, d := range s.Days {
		row := []string{
			d.Date,
			d.Weekday,
			strconv.Itoa(d.DayN),
			formatCell(d.Hours),
			formatCell(d.WearHours),
			formatCell(d.WearAwakeHours),
		}
		for _, wt := range WindowTypes {
			wr := d.Full
			if wt == WindowExcludeSleep {
				wr = d.Awake
			}
			row = append(row, windowCells(wr, s.cfg)...)
		}
		rows = append(rows, row)
	}
	return rows
}

func windowCells(wr *WindowResult, cfg Config) []string {
	n := 3 + len(Levels)*len(cfg.BoutDurations) + 3
	if wr == nil {
		return make([]string, n)
	}
	cells := make([]string, 0, n)
	cells = append(cells,
		formatCell(wr.MVPAShortEpochMinutes),
		formatCell(wr.MVPAOneMinEpochMinutes),
		formatCell(wr.MVPAFiveMinEpochMinutes),
	)
	for _, b := range wr.Bouts {
		cells = append(cells, formatCell(b.Minutes))
	}
	cells = append(cells,
		formatCell(wr.IG.Gradient),
		formatCell(wr.IG.Intercept),
		formatCell(wr.IG.RSquared),
	)
	return cells
}

func formatCell(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
