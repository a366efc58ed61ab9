package timeseries

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// CSVOptions holds options for CSV loading.
type CSVOptions struct {
	DateColumn  string // column name for dates (default: "Date")
	ValueColumn string // column name for values (default: "Close")
	DateFormat  string // date layout (default: "2006-01-02")
}

// DefaultCSVOptions returns the options matching the cache file layout.
func DefaultCSVOptions() *CSVOptions {
	return &CSVOptions{
		DateColumn:  "Date",
		ValueColumn: "Close",
		DateFormat:  "2006-01-02",
	}
}

// LoadCSV loads a series from a CSV file with a header row.
func LoadCSV(filename string, opts *CSVOptions) (*Series, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	s, err := ReadCSV(file, opts)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filename, err)
	}
	return s, nil
}

// ReadCSV loads a series from an io.Reader carrying CSV data with a header.
func ReadCSV(r io.Reader, opts *CSVOptions) (*Series, error) {
	if opts == nil {
		opts = DefaultCSVOptions()
	}

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, err
	}

	dateIdx, valueIdx := -1, -1
	for i, h := range header {
		switch strings.TrimSpace(h) {
		case opts.DateColumn:
			dateIdx = i
		case opts.ValueColumn:
			valueIdx = i
		}
	}
	if dateIdx == -1 || valueIdx == -1 {
		return nil, fmt.Errorf("columns %q and %q not found in header %v",
			opts.DateColumn, opts.ValueColumn, header)
	}

	var timestamps []time.Time
	var values []float64
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		t, err := time.Parse(opts.DateFormat, strings.TrimSpace(record[dateIdx]))
		if err != nil {
			return nil, err
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(record[valueIdx]), 64)
		if err != nil {
			return nil, err
		}
		timestamps = append(timestamps, t)
		values = append(values, v)
	}

	if len(values) == 0 {
		return nil, errors.New("no data rows in CSV")
	}

	return &Series{Timestamps: timestamps, Values: values, Name: opts.ValueColumn}, nil
}

// SaveCSV writes the series to a CSV file with Date and Close columns.
func (s *Series) SaveCSV(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	return s.WriteCSV(file)
}

// WriteCSV writes the series as CSV with Date and Close columns.
func (s *Series) WriteCSV(w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"Date", "Close"}); err != nil {
		return err
	}
	for i, t := range s.Timestamps {
		record := []string{
			t.Format("2006-01-02"),
			strconv.FormatFloat(s.Values[i], 'f', -1, 64),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
