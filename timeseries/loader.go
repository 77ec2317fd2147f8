package timeseries

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/RyanBlaney/sonido-triad/algorithms/common"
	"github.com/RyanBlaney/sonido-triad/logging"
)

// Supported input formats
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// DefaultTimeColumns are the CSV headers accepted as the time column, in
// order of preference
var DefaultTimeColumns = []string{"time", "t", "Time", "TIME", "timestamp", "Timestamp"}

// LoaderConfig holds loader configuration
type LoaderConfig struct {
	TimeColumns []string `json:"time_columns"`
	MaxSamples  int      `json:"max_samples"` // 0 means no limit
}

// DefaultLoaderConfig returns default loader configuration
func DefaultLoaderConfig() *LoaderConfig {
	return &LoaderConfig{
		TimeColumns: slices.Clone(DefaultTimeColumns),
	}
}

// Loader reads recordings from CSV and JSON files
type Loader struct {
	config *LoaderConfig
}

// NewLoader creates a loader. A nil config uses the defaults.
func NewLoader(config *LoaderConfig) *Loader {
	if config == nil {
		config = DefaultLoaderConfig()
	}
	return &Loader{config: config}
}

// Load reads path with the default loader
func Load(path string) (*Series, error) {
	return NewLoader(nil).LoadFile(path)
}

// FormatFromPath maps a file extension to a format name
func FormatFromPath(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".csv":
		return FormatCSV, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported file extension %q", ext)
	}
}

// LoadFile reads a recording, choosing the format from the extension
func (l *Loader) LoadFile(path string) (*Series, error) {
	logger := logging.WithFields(logging.Fields{
		"component": "timeseries_loader",
		"function":  "LoadFile",
		"path":      path,
	})

	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	series, err := l.Decode(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	series.Source = path

	logger.Debug("Time series loaded", logging.Fields{
		"samples":  series.Len(),
		"channels": series.NumChannels(),
		"names":    series.Names,
	})
	return series, nil
}

// DecodeBytes decodes an in-memory recording
func (l *Loader) DecodeBytes(data []byte, format string) (*Series, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty %s data: %w", format, common.ErrInsufficientData)
	}
	return l.Decode(bytes.NewReader(data), format)
}

// Decode reads a recording in the given format from r
func (l *Loader) Decode(r io.Reader, format string) (*Series, error) {
	var (
		series *Series
		err    error
	)
	switch format {
	case FormatCSV:
		series, err = l.decodeCSV(r)
	case FormatJSON:
		series, err = l.decodeJSON(r)
	default:
		return nil, fmt.Errorf("unsupported format %q (supported: %s): %w",
			format, strings.Join(l.GetSupportedFormats(), ", "), common.ErrInvalidParameter)
	}
	if err != nil {
		return nil, err
	}
	l.truncate(series)
	return series, nil
}

// GetSupportedFormats returns the formats Decode understands
func (l *Loader) GetSupportedFormats() []string {
	return []string{FormatCSV, FormatJSON}
}

func (l *Loader) truncate(s *Series) {
	limit := l.config.MaxSamples
	if limit <= 0 || s.Len() <= limit {
		return
	}
	s.Time = s.Time[:limit]
	for c := range s.Channels {
		s.Channels[c] = s.Channels[c][:limit]
	}
}

func (l *Loader) decodeCSV(r io.Reader) (*Series, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("csv has no header: %w", common.ErrInsufficientData)
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	timeCol := -1
	for _, cand := range l.config.TimeColumns {
		if idx := slices.Index(header, cand); idx >= 0 {
			timeCol = idx
			break
		}
	}
	if timeCol < 0 {
		return nil, fmt.Errorf("csv must include a time column (one of %s)",
			strings.Join(l.config.TimeColumns, ", "))
	}

	series := &Series{}
	dataCols := make([]int, 0, len(header)-1)
	for i, name := range header {
		if i == timeCol {
			continue
		}
		dataCols = append(dataCols, i)
		series.Names = append(series.Names, name)
	}
	if len(dataCols) == 0 {
		return nil, errors.New("csv must contain at least one data column besides time")
	}
	series.Channels = make([][]float64, len(dataCols))

	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}

		t, err := parseFloat(record[timeCol])
		if err != nil {
			return nil, fmt.Errorf("csv line %d, column %q: %w", line, header[timeCol], err)
		}
		series.Time = append(series.Time, t)
		for c, col := range dataCols {
			v, err := parseFloat(record[col])
			if err != nil {
				return nil, fmt.Errorf("csv line %d, column %q: %w", line, header[col], err)
			}
			series.Channels[c] = append(series.Channels[c], v)
		}
	}

	if series.Len() == 0 {
		return nil, fmt.Errorf("csv has no data rows: %w", common.ErrInsufficientData)
	}
	return series, nil
}

type jsonRecording struct {
	Time     []float64       `json:"time"`
	Data     json.RawMessage `json:"data"`
	Colnames []string        `json:"colnames"`
}

func (l *Loader) decodeJSON(r io.Reader) (*Series, error) {
	var rec jsonRecording
	if err := json.NewDecoder(r).Decode(&rec); err != nil {
		return nil, fmt.Errorf("decode json recording: %w", err)
	}
	if rec.Time == nil || rec.Data == nil {
		return nil, errors.New(`json recording needs "time" and "data"`)
	}

	// data is either one channel or rows of samples x channels
	var rows [][]float64
	if err := json.Unmarshal(rec.Data, &rows); err != nil {
		var flat []float64
		if err := json.Unmarshal(rec.Data, &flat); err != nil {
			return nil, fmt.Errorf(`json "data" must be a number array or an array of rows: %w`, err)
		}
		rows = make([][]float64, len(flat))
		for i, v := range flat {
			rows[i] = []float64{v}
		}
	}

	if len(rows) != len(rec.Time) {
		return nil, fmt.Errorf("json recording has %d time stamps and %d data rows: %w",
			len(rec.Time), len(rows), common.ErrChannelLengthMismatch)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("json recording has no samples: %w", common.ErrInsufficientData)
	}

	width := len(rows[0])
	if width == 0 {
		return nil, errors.New("json recording rows have no channels")
	}
	channels := make([][]float64, width)
	for c := range channels {
		channels[c] = make([]float64, len(rows))
	}
	for i, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("json data row %d has %d values, want %d: %w",
				i, len(row), width, common.ErrChannelLengthMismatch)
		}
		for c, v := range row {
			channels[c][i] = v
		}
	}

	names := rec.Colnames
	if names == nil {
		names = make([]string, width)
		for c := range names {
			names[c] = "ch" + strconv.Itoa(c+1)
		}
	}
	if len(names) != width {
		return nil, fmt.Errorf("json recording has %d colnames for %d channels: %w",
			len(names), width, common.ErrInvalidParameter)
	}

	return &Series{Time: rec.Time, Channels: channels, Names: names}, nil
}

func parseFloat(field string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(field), 64)
}
