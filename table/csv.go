package table

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ============================================================================
// CSV BOUNDARY — Raw text → Table, Table → spreadsheet export
// ============================================================================
// The parser surfaces malformed files as errors before the engine sees any
// data. Everything downstream assumes a consistent header across rows.
// ============================================================================

// Table is a fully-parsed dataset: ordered, deduplicated headers and rows
// keyed by header.
type Table struct {
	Headers []string `json:"headers"`
	Rows    []Row    `json:"rows"`
}

// CSVOption configures ParseCSV.
type CSVOption func(*csvConfig)

type csvConfig struct {
	delimiter rune
	comment   rune
}

// WithDelimiter sets the field delimiter (default ',').
func WithDelimiter(r rune) CSVOption {
	return func(c *csvConfig) { c.delimiter = r }
}

// WithComment makes lines starting with r comments.
func WithComment(r rune) CSVOption {
	return func(c *csvConfig) { c.comment = r }
}

// ParseCSV reads a header row followed by data rows.
//
// A leading byte-order mark is removed (UTF-16 input is transcoded), header
// names are trimmed, blank and duplicate header names are made unique, and
// empty lines are skipped. A row with a different number of fields than the
// header fails with ErrMalformedCSV.
func ParseCSV(r io.Reader, opts ...CSVOption) (*Table, error) {
	cfg := csvConfig{delimiter: ','}
	for _, opt := range opts {
		opt(&cfg)
	}

	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	reader := csv.NewReader(decoded)
	reader.Comma = cfg.delimiter
	reader.Comment = cfg.comment
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading header: %v", ErrMalformedCSV, err)
	}
	headers := normalizeHeaders(header)

	rows := make([]Row, 0, 64)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedCSV, err)
		}
		if len(record) != len(headers) {
			line, _ := reader.FieldPos(0)
			return nil, fmt.Errorf("%w: line %d has %d fields, header has %d",
				ErrMalformedCSV, line, len(record), len(headers))
		}
		rows = append(rows, RowFromCells(headers, record))
	}

	return &Table{Headers: headers, Rows: rows}, nil
}

// ParseCSVBytes is ParseCSV over an in-memory buffer.
func ParseCSVBytes(data []byte, opts ...CSVOption) (*Table, error) {
	return ParseCSV(bytes.NewReader(data), opts...)
}

// normalizeHeaders trims names, names blank columns by position and
// suffixes repeats: "a","a" → "a","a_1".
func normalizeHeaders(raw []string) []string {
	headers := make([]string, len(raw))
	taken := make(map[string]bool, len(raw))
	for i, h := range raw {
		h = strings.TrimSpace(h)
		if h == "" {
			h = "column_" + strconv.Itoa(i+1)
		}
		name := h
		for n := 1; taken[name]; n++ {
			name = h + "_" + strconv.Itoa(n)
		}
		taken[name] = true
		headers[i] = name
	}
	return headers
}

// WriteCSV writes headers and rows for spreadsheet export. Null cells are
// written empty and numbers in their shortest form.
func WriteCSV(w io.Writer, headers []string, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(headers); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	record := make([]string, len(headers))
	for _, row := range rows {
		for i, h := range headers {
			record[i] = row.Get(h).String()
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
