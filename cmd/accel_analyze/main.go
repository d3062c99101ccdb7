package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/lucasjlepore/accel-analyzer/pipeline"
)

func main() {
	var (
		inputPath  = flag.String("input", "", "Path to input .fit or .csv recording")
		outDir     = flag.String("out", "", "Output directory")
		configPath = flag.String("config", "", "Optional TOML run configuration")
		wearPath   = flag.String("wear", "", "Optional wear interval CSV (start,stop indices)")
		sleepPath  = flag.String("sleep", "", "Optional sleep interval CSV (start,stop indices)")
		format     = flag.String("format", "parquet", "Day summary format: parquet|csv")
		countsPerG = flag.Float64("counts-per-g", 0, "Raw accelerometer counts per g for uncalibrated files")
		overwrite  = flag.Bool("overwrite", true, "Allow overwriting existing outputs")
		verbose    = flag.Bool("verbose", false, "Log progress and notices to stderr")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s --input recording.fit --out outdir [--config run.toml] [--wear wear.csv] [--sleep sleep.csv] [--format parquet|csv]\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	if strings.TrimSpace(*inputPath) == "" || strings.TrimSpace(*outDir) == "" {
		flag.Usage()
		os.Exit(2)
	}

	logger := zap.NewNop()
	if *verbose {
		l, err := zap.NewProduction()
		if err != nil {
			fmt.Fprintf(os.Stderr, "accel_analyze: logger setup failed: %v\n", err)
			os.Exit(1)
		}
		defer l.Sync()
		logger = l
	}

	result, err := pipeline.Run(pipeline.Options{
		InputPath:  *inputPath,
		OutDir:     *outDir,
		ConfigPath: *configPath,
		WearPath:   *wearPath,
		SleepPath:  *sleepPath,
		Format:     *format,
		CountsPerG: *countsPerG,
		Overwrite:  *overwrite,
		Logger:     logger,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "accel_analyze failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("accel_analyze complete\n")
	fmt.Printf("Output dir:    %s\n", result.OutputDir)
	fmt.Printf("day summary:   %s\n", result.DaySummaryPath)
	fmt.Printf("epochs:        %s\n", result.EpochsPath)
	fmt.Printf("notices:       %s\n", result.NoticesPath)
	fmt.Printf("run config:    %s\n", result.RunConfigPath)
	fmt.Printf("days:          %d (%d processed)\n", result.Days, result.DaysProcessed)
	if result.Notices > 0 {
		fmt.Printf("notices:       %d recoverable conditions\n", result.Notices)
	}
}
