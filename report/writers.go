package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/RyanBlaney/sonido-triad/algorithms/bispectral"
	"github.com/RyanBlaney/sonido-triad/algorithms/phase"
	"github.com/parquet-go/parquet-go"
)

// Output formats
const (
	FormatCSV     = "csv"
	FormatJSON    = "json"
	FormatParquet = "parquet"
)

// Formats lists the accepted output formats
var Formats = []string{FormatCSV, FormatJSON, FormatParquet}

// FormatFromPath picks the format from the file extension, defaulting to CSV
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".parquet", ".pq":
		return FormatParquet
	default:
		return FormatCSV
	}
}

// Write dispatches rows to the writer of format
func Write(w io.Writer, format string, rows []Row) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, rows)
	case FormatJSON:
		return WriteJSON(w, rows)
	case FormatParquet:
		return WriteParquet(w, rows)
	default:
		return fmt.Errorf("unsupported output format %q (want one of %s)", format, strings.Join(Formats, ", "))
	}
}

// WriteFile creates path and writes rows in format
func WriteFile(path, format string, rows []Row) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := Write(file, format, rows); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// WriteCSV writes rows under the Columns header. Missing values are empty.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			r.RunID,
			r.File,
			r.Timestamp.Format(time.RFC3339Nano),
			formatFloat(r.FS),
			strconv.FormatInt(r.Samples, 10),
			strconv.FormatInt(int64(r.SegLen), 10),
			formatOptional(r.F1Peak),
			formatOptional(r.F2Peak),
			formatOptional(r.B2Peak),
			formatOptional(r.F3Est),
			formatOptional(r.PeakZ),
			formatOptional(r.PeakP),
			formatOptional(r.PEmp),
			formatOptional(r.NullMean),
			formatOptional(r.NullSD),
			formatOptional(r.NullQ95),
			formatOptional(r.F1Est),
			formatOptional(r.F2Est),
			formatOptional(r.LockStatic),
			formatOptional(r.CohTime),
			formatOptional(r.PLVLow12),
			formatOptional(r.PLVMid23),
			formatOptional(r.PLVHigh13),
			formatOptional(r.PACLowHigh13),
			formatOptional(r.PACLowMid12),
			formatFloat(r.ElapsedSeconds),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes rows as an indented JSON array
func WriteJSON(w io.Writer, rows []Row) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(rows); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// WriteParquet writes rows as one snappy-compressed Parquet file
func WriteParquet(w io.Writer, rows []Row) error {
	writer := parquet.NewGenericWriter[Row](w)
	if _, err := writer.Write(rows); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return nil
}

// WriteLockSeries writes a sliding lock sequence as t,L rows
func WriteLockSeries(w io.Writer, series *phase.LockSeries) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"t", "L"}); err != nil {
		return err
	}
	if series != nil {
		for i := range series.Times {
			if err := cw.Write([]string{formatFloat(series.Times[i]), formatFloat(series.Values[i])}); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteBicoherence writes the b2 matrix with a header row and column of bin
// frequencies. Cell (i, j) holds b2 at f1 = freqs[i], f2 = freqs[j].
func WriteBicoherence(w io.Writer, res *bispectral.Result) error {
	if res == nil || res.B2 == nil {
		return fmt.Errorf("no bicoherence to write")
	}
	n := len(res.Freqs)
	cw := csv.NewWriter(w)

	header := make([]string, n+1)
	header[0] = "f1\\f2"
	for j, f := range res.Freqs {
		header[j+1] = formatFloat(f)
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	record := make([]string, n+1)
	for i, f := range res.Freqs {
		record[0] = formatFloat(f)
		for j := range n {
			record[j+1] = formatFloat(res.B2.At(i, j))
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}
