// Package io reads and writes DataFrame data as CSV with automatic type
// inference. Empty fields in typed columns become missing cells rather than
// zero values, so round-tripped tables group the same way as the originals.
package io

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/groupframe/groupframe/internal/dataframe"
	"github.com/groupframe/groupframe/internal/series"
	"github.com/groupframe/groupframe/internal/validation"
)

const (
	trueStr  = "true"
	falseStr = "false"
)

// CSVOptions configures CSV reading and writing.
type CSVOptions struct {
	// Delimiter is the field delimiter (default comma).
	Delimiter rune
	// Comment is the comment character (0 disables).
	Comment rune
	// Header indicates whether the first row holds column names.
	Header bool
	// SkipInitialSpace trims whitespace after the delimiter.
	SkipInitialSpace bool
}

// DefaultCSVOptions returns the standard options: comma-separated with a
// header row.
func DefaultCSVOptions() CSVOptions {
	return CSVOptions{Delimiter: ',', Header: true}
}

// CSVReader reads CSV data into a DataFrame.
type CSVReader struct {
	reader  io.Reader
	options CSVOptions
	mem     memory.Allocator
}

// NewCSVReader creates a CSV reader over r.
func NewCSVReader(r io.Reader, options CSVOptions, mem memory.Allocator) *CSVReader {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}
	return &CSVReader{reader: r, options: options, mem: mem}
}

// ReadFile reads a CSV file with default options.
func ReadFile(path string) (*dataframe.DataFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return NewCSVReader(f, DefaultCSVOptions(), nil).Read()
}

// Read parses the input and returns a DataFrame with inferred column types.
func (r *CSVReader) Read() (*dataframe.DataFrame, error) {
	csvReader := csv.NewReader(r.reader)
	csvReader.Comma = r.options.Delimiter
	csvReader.Comment = r.options.Comment
	csvReader.TrimLeadingSpace = r.options.SkipInitialSpace

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}
	if len(records) == 0 {
		return dataframe.New(), nil
	}

	var headers []string
	var dataRows [][]string
	if r.options.Header {
		headers = records[0]
		dataRows = records[1:]
	} else {
		headers = make([]string, len(records[0]))
		for i := range headers {
			headers[i] = fmt.Sprintf("column_%d", i)
		}
		dataRows = records
	}

	if err := validation.NewHeaderValidator("ReadCSV", headers).Validate(); err != nil {
		return nil, err
	}

	// Column-major transpose; short rows pad with empty fields.
	columns := make([][]string, len(headers))
	for i := range headers {
		columns[i] = make([]string, len(dataRows))
		for j, row := range dataRows {
			if i < len(row) {
				columns[i][j] = row[i]
			}
		}
	}

	cols := make([]dataframe.ISeries, len(headers))
	for i, header := range headers {
		cols[i] = r.buildColumn(header, columns[i])
	}
	return dataframe.New(cols...), nil
}

func (r *CSVReader) buildColumn(name string, data []string) dataframe.ISeries {
	switch inferType(data) {
	case "bool":
		values := make([]bool, len(data))
		valid := make([]bool, len(data))
		for i, v := range data {
			if v != "" {
				values[i] = strings.EqualFold(v, trueStr)
				valid[i] = true
			}
		}
		return series.NewWithValidity(name, values, valid, r.mem)
	case "int":
		values := make([]int64, len(data))
		valid := make([]bool, len(data))
		for i, v := range data {
			if v != "" {
				values[i], _ = strconv.ParseInt(v, 10, 64)
				valid[i] = true
			}
		}
		return series.NewWithValidity(name, values, valid, r.mem)
	case "float":
		values := make([]float64, len(data))
		valid := make([]bool, len(data))
		for i, v := range data {
			if v != "" {
				values[i], _ = strconv.ParseFloat(v, 64)
				valid[i] = true
			}
		}
		return series.NewWithValidity(name, values, valid, r.mem)
	default:
		valid := make([]bool, len(data))
		for i, v := range data {
			valid[i] = v != ""
		}
		return series.NewWithValidity(name, data, valid, r.mem)
	}
}

// inferType picks the most specific type that fits every non-empty field.
func inferType(data []string) string {
	canBeInt, canBeFloat, canBeBool := true, true, true
	hasValue := false
	for _, value := range data {
		if value == "" {
			continue
		}
		hasValue = true
		if canBeBool {
			lower := strings.ToLower(value)
			if lower != trueStr && lower != falseStr {
				canBeBool = false
			}
		}
		if canBeInt {
			if _, err := strconv.ParseInt(value, 10, 64); err != nil {
				canBeInt = false
			}
		}
		if canBeFloat {
			if _, err := strconv.ParseFloat(value, 64); err != nil {
				canBeFloat = false
			}
		}
	}
	if !hasValue {
		return "string"
	}
	if canBeBool {
		return "bool"
	}
	if canBeInt {
		return "int"
	}
	if canBeFloat {
		return "float"
	}
	return "string"
}

// CSVWriter writes a DataFrame as CSV.
type CSVWriter struct {
	writer  io.Writer
	options CSVOptions
}

// NewCSVWriter creates a CSV writer over w.
func NewCSVWriter(w io.Writer, options CSVOptions) *CSVWriter {
	return &CSVWriter{writer: w, options: options}
}

// WriteFile writes a table to a CSV file with default options.
func WriteFile(path string, df *dataframe.DataFrame) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	return NewCSVWriter(f, DefaultCSVOptions()).Write(df)
}

// Write emits the table row-major. Missing cells become empty fields.
func (w *CSVWriter) Write(df *dataframe.DataFrame) error {
	csvWriter := csv.NewWriter(w.writer)
	csvWriter.Comma = w.options.Delimiter
	defer csvWriter.Flush()

	names := df.Columns()
	if w.options.Header {
		if err := csvWriter.Write(names); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	cells := make([][]string, len(names))
	for c, name := range names {
		s, _ := df.Column(name)
		arr := s.Array()
		col := make([]string, df.Len())
		for i := range col {
			col[i] = cellString(dataframe.CellAt(arr, i))
		}
		arr.Release()
		cells[c] = col
	}

	record := make([]string, len(names))
	for i := 0; i < df.Len(); i++ {
		for c := range names {
			record[c] = cells[c][i]
		}
		if err := csvWriter.Write(record); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}
	return csvWriter.Error()
}

func cellString(cell any) string {
	switch v := cell.(type) {
	case nil:
		return ""
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
