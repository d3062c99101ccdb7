package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	activity "github.com/lucasjlepore/accel-analyzer"
)

// Run executes the full accel_analyze pipeline: decode the recording, derive
// day windows, classify, and write all artifacts into OutDir.
func Run(opts Options) (*Result, error) {
	if strings.TrimSpace(opts.InputPath) == "" {
		return nil, fmt.Errorf("input path is required")
	}
	if strings.TrimSpace(opts.OutDir) == "" {
		return nil, fmt.Errorf("output directory is required")
	}
	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = "parquet"
	}
	if format != "parquet" && format != "csv" {
		return nil, fmt.Errorf("unsupported format %q (expected parquet|csv)", format)
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	fc, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	countsPerG := opts.CountsPerG
	if countsPerG <= 0 {
		countsPerG = fc.CountsPerG
	}

	sig, messages, err := loadSignal(opts.InputPath, countsPerG)
	if err != nil {
		return nil, fmt.Errorf("load signal: %w", err)
	}
	log.Info("loaded recording",
		zap.String("input", opts.InputPath),
		zap.Int("samples", len(sig.Time)),
		zap.Int("message_types", len(messages)),
	)

	wear, err := loadIntervalsCSV(opts.WearPath)
	if err != nil {
		return nil, fmt.Errorf("load wear intervals: %w", err)
	}
	sleep, err := loadIntervalsCSV(opts.SleepPath)
	if err != nil {
		return nil, fmt.Errorf("load sleep intervals: %w", err)
	}
	days := dayIntervals(sig.Time, fc.DayBaseHour, fc.DayPeriodHours)

	cls, err := activity.New(fc.classifierConfig())
	if err != nil {
		return nil, fmt.Errorf("configure classifier: %w", err)
	}

	sum, err := cls.Classify(sig, activity.ClassifyOptions{
		Wear:  wear,
		Sleep: sleep,
		Days:  days,
	})
	if err != nil {
		return nil, fmt.Errorf("classify: %w", err)
	}
	for _, n := range sum.Notices {
		log.Warn("classification notice",
			zap.String("code", n.Code),
			zap.String("message", n.Message),
			zap.Int("day", n.Day),
		)
	}

	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return nil, err
	}
	summaryPath := filepath.Join(opts.OutDir, "day_summary."+format)
	if !opts.Overwrite {
		if _, err := os.Stat(summaryPath); err == nil {
			return nil, fmt.Errorf("%s already exists (use overwrite)", summaryPath)
		}
	}

	cols := sum.Columns()
	rows := sum.Rows()
	switch format {
	case "csv":
		err = writeDaySummaryCSV(summaryPath, cols, rows)
	case "parquet":
		err = writeDaySummaryParquet(summaryPath, cols, rows)
	}
	if err != nil {
		return nil, fmt.Errorf("write day summary: %w", err)
	}

	epochsPath := filepath.Join(opts.OutDir, "epochs.parquet")
	epochs := buildEpochRows(cls, sig, sum, wear, sleep, days)
	if err := writeEpochsParquet(epochsPath, epochs); err != nil {
		return nil, fmt.Errorf("write epochs: %w", err)
	}

	noticesPath := filepath.Join(opts.OutDir, "notices.json")
	if err := writeJSON(noticesPath, sum.Notices); err != nil {
		return nil, fmt.Errorf("write notices: %w", err)
	}

	runConfigPath := filepath.Join(opts.OutDir, "run_config.json")
	runConfig := struct {
		Input     string             `json:"input"`
		Format    string             `json:"format"`
		File      FileConfig         `json:"file_config"`
		Resolved  activity.Config    `json:"resolved_config"`
		Cutpoints activity.Cutpoints `json:"cutpoints"`
	}{opts.InputPath, format, fc, cls.Config(), sum.Cutpoints}
	if err := writeJSON(runConfigPath, runConfig); err != nil {
		return nil, fmt.Errorf("write run config: %w", err)
	}

	processed := 0
	for _, d := range sum.Days {
		if d.Full != nil {
			processed++
		}
	}
	log.Info("pipeline complete",
		zap.Int("days", len(sum.Days)),
		zap.Int("days_processed", processed),
		zap.Int("notices", len(sum.Notices)),
	)

	return &Result{
		OutputDir:      opts.OutDir,
		DaySummaryPath: summaryPath,
		EpochsPath:     epochsPath,
		NoticesPath:    noticesPath,
		RunConfigPath:  runConfigPath,
		Days:           len(sum.Days),
		DaysProcessed:  processed,
		Notices:        len(sum.Notices),
	}, nil
}

// buildEpochRows recomputes the per-epoch metric series over each processed
// day's valid intervals, mirroring the classifier's windowing.
func buildEpochRows(cls *activity.Classifier, sig activity.Signal, sum *activity.Summary, wear, sleep, days []activity.Interval) []epochRow {
	if wear == nil {
		wear = []activity.Interval{{Start: 0, Stop: len(sig.Time)}}
	}
	cp := cls.Cutpoints()
	fs := sampleRate(sig)
	wlen := cls.Config().ShortWindowSeconds
	nwlen := int(float64(wlen) * fs)
	if nwlen < 1 {
		nwlen = 1
	}

	var out []epochRow
	for i, day := range days {
		if i >= len(sum.Days) || sum.Days[i].Full == nil {
			continue
		}
		dayN := int32(sum.Days[i].DayN)

		full := activity.IntersectIndices([][]activity.Interval{wear}, []bool{true}, day.Start, day.Stop)
		out = appendWindowEpochs(out, sig, cp, full, dayN, string(activity.WindowFullDay), nwlen, fs)

		if sleep != nil && sum.Days[i].Awake != nil {
			awake := activity.IntersectIndices(
				[][]activity.Interval{wear, sleep},
				[]bool{true, false},
				day.Start, day.Stop,
			)
			out = appendWindowEpochs(out, sig, cp, awake, dayN, string(activity.WindowExcludeSleep), nwlen, fs)
		}
	}
	return out
}

func appendWindowEpochs(out []epochRow, sig activity.Signal, cp activity.Cutpoints, ivs []activity.Interval, dayN int32, wt string, nwlen int, fs float64) []epochRow {
	epochIndex := int64(0)
	for _, iv := range ivs {
		m := activity.ComputeMetric(cp.Metric, sig.Accel[iv.Start:iv.Stop], nwlen, fs, cp.Options)
		for e, v := range m {
			out = append(out, epochRow{
				DayN:        dayN,
				WindowType:  wt,
				SampleStart: int64(iv.Start + e*nwlen),
				EpochIndex:  epochIndex,
				Metric:      v,
				Level:       levelFor(v, cp),
			})
			epochIndex++
		}
	}
	return out
}

func levelFor(v float64, cp activity.Cutpoints) string {
	switch {
	case v < cp.Sedentary:
		return string(activity.LevelSedentary)
	case v < cp.Light:
		return string(activity.LevelLight)
	case v < cp.Moderate:
		return string(activity.LevelModerate)
	default:
		return string(activity.LevelVigorous)
	}
}

func sampleRate(sig activity.Signal) float64 {
	if sig.SampleRate > 0 {
		return sig.SampleRate
	}
	n := len(sig.Time)
	if n > 5000 {
		n = 5000
	}
	if n < 2 {
		return 1
	}
	return float64(n-1) / (sig.Time[n-1] - sig.Time[0])
}
