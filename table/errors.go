package table

import "errors"

// Errors returned at the parsing boundary. The engine itself never fails on
// cell content.
var (
	// ErrNoHeader is returned when the input has no header row.
	ErrNoHeader = errors.New("csv has no header row")

	// ErrMalformedCSV is returned when a row's width differs from the header
	// or the text cannot be tokenized.
	ErrMalformedCSV = errors.New("malformed csv")
)
