package pipeline

import "go.uber.org/zap"

// Options configures the accel_analyze pipeline.
type Options struct {
	// InputPath is a .fit recording or a timestamp,x,y,z CSV.
	InputPath string
	OutDir    string
	// ConfigPath optionally points at a TOML run configuration.
	ConfigPath string
	// WearPath and SleepPath optionally point at start,stop index CSVs.
	WearPath  string
	SleepPath string
	// Format selects the day summary encoding: parquet|csv.
	Format    string
	Overwrite bool
	// CountsPerG overrides the raw-count scale for uncalibrated FIT files.
	CountsPerG float64
	// Logger receives progress and notice logging; nil uses a no-op logger.
	Logger *zap.Logger
}

// Result returns generated output paths and run counts.
type Result struct {
	OutputDir      string `json:"output_dir"`
	DaySummaryPath string `json:"day_summary_path"`
	EpochsPath     string `json:"epochs_path"`
	NoticesPath    string `json:"notices_path"`
	RunConfigPath  string `json:"run_config_path"`
	Days           int    `json:"days"`
	DaysProcessed  int    `json:"days_processed"`
	Notices        int    `json:"notices"`
}
