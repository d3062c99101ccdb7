package pipeline

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	activity "github.com/lucasjlepore/accel-analyzer"
	"github.com/lucasjlepore/accel-analyzer/fitraw"
)

// loadSignal reads a recording from a .fit file or a CSV with
// timestamp,x,y,z columns. The extra return is the FIT message census, nil
// for CSV inputs.
func loadSignal(path string, countsPerG float64) (activity.Signal, map[string]int, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".fit":
		stream, err := fitraw.ReadFile(path, fitraw.Options{CountsPerG: countsPerG})
		if err != nil {
			return activity.Signal{}, nil, err
		}
		return activity.Signal{Time: stream.Time, Accel: stream.Accel}, stream.Messages, nil
	case ".csv":
		sig, err := loadSignalCSV(path)
		return sig, nil, err
	}
	return activity.Signal{}, nil, fmt.Errorf("unsupported input extension on %s (expected .fit or .csv)", path)
}

func loadSignalCSV(path string) (activity.Signal, error) {
	f, err := os.Open(path)
	if err != nil {
		return activity.Signal{}, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return activity.Signal{}, fmt.Errorf("reading %s: %w", path, err)
	}

	var sig activity.Signal
	for i, row := range rows {
		if len(row) < 4 {
			return activity.Signal{}, fmt.Errorf("%s line %d: need 4 columns, got %d", path, i+1, len(row))
		}
		ts, err := strconv.ParseFloat(strings.TrimSpace(row[0]), 64)
		if err != nil {
			if i == 0 {
				continue // header
			}
			return activity.Signal{}, fmt.Errorf("%s line %d: bad timestamp %q", path, i+1, row[0])
		}
		var sample [3]float64
		for axis := 0; axis < 3; axis++ {
			v, err := strconv.ParseFloat(strings.TrimSpace(row[axis+1]), 64)
			if err != nil {
				return activity.Signal{}, fmt.Errorf("%s line %d: bad value %q", path, i+1, row[axis+1])
			}
			sample[axis] = v
		}
		sig.Time = append(sig.Time, ts)
		sig.Accel = append(sig.Accel, sample)
	}
	if len(sig.Time) == 0 {
		return activity.Signal{}, fmt.Errorf("%s has no samples", path)
	}
	return sig, nil
}

// loadIntervalsCSV reads start,stop index pairs, one per line, with an
// optional header. Returns nil for an empty path.
func loadIntervalsCSV(path string) ([]activity.Interval, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var out []activity.Interval
	for i, row := range rows {
		if len(row) < 2 {
			return nil, fmt.Errorf("%s line %d: need 2 columns, got %d", path, i+1, len(row))
		}
		start, err := strconv.Atoi(strings.TrimSpace(row[0]))
		if err != nil {
			if i == 0 {
				continue // header
			}
			return nil, fmt.Errorf("%s line %d: bad start %q", path, i+1, row[0])
		}
		stop, err := strconv.Atoi(strings.TrimSpace(row[1]))
		if err != nil {
			return nil, fmt.Errorf("%s line %d: bad stop %q", path, i+1, row[1])
		}
		if stop < start {
			return nil, fmt.Errorf("%s line %d: stop %d before start %d", path, i+1, stop, start)
		}
		out = append(out, activity.Interval{Start: start, Stop: stop})
	}
	return out, nil
}
