package pipeline

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"
)

func writeDaySummaryCSV(path string, cols []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(cols); err != nil {
		return err
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// sanitizeColumn lowers a display column name into a parquet-safe field
// name: "MM MVPA 5sec epoch" becomes "mm_mvpa_5sec_epoch".
func sanitizeColumn(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

// writeDaySummaryParquet writes the day table with its configuration-driven
// column set, so the schema is built from metadata strings rather than a
// fixed struct.
func writeDaySummaryParquet(path string, cols []string, rows [][]string) error {
	md := make([]string, 0, len(cols))
	for _, c := range cols {
		md = append(md, fmt.Sprintf(
			"name=%s, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY",
			sanitizeColumn(c),
		))
	}

	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return err
	}
	pw, err := writer.NewCSVWriter(md, fw, 4)
	if err != nil {
		_ = fw.Close()
		return err
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for _, row := range rows {
		rec := make([]*string, len(row))
		for i := range row {
			v := row[i]
			rec[i] = &v
		}
		if err := pw.WriteString(rec); err != nil {
			_ = pw.WriteStop()
			_ = fw.Close()
			return err
		}
	}
	if err := pw.WriteStop(); err != nil {
		_ = fw.Close()
		return err
	}
	return fw.Close()
}

type epochRow struct {
	DayN        int32   `parquet:"name=day_n, type=INT32"`
	WindowType  string  `parquet:"name=window_type, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	SampleStart int64   `parquet:"name=sample_start, type=INT64"`
	EpochIndex  int64   `parquet:"name=epoch_index, type=INT64"`
	Metric      float64 `parquet:"name=metric, type=DOUBLE"`
	Level       string  `parquet:"name=level, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
}

func writeEpochsParquet(path string, rows []epochRow) error {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return err
	}
	pw, err := writer.NewParquetWriter(fw, new(epochRow), 4)
	if err != nil {
		_ = fw.Close()
		return err
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for _, row := range rows {
		if err := pw.Write(row); err != nil {
			_ = pw.WriteStop()
			_ = fw.Close()
			return err
		}
	}
	if err := pw.WriteStop(); err != nil {
		_ = fw.Close()
		return err
	}
	return fw.Close()
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
