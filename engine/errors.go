package engine

import "errors"

var (
	// ErrUnknownChartType is returned when a chart type name is not one of
	// bar, line, pie or area.
	ErrUnknownChartType = errors.New("unknown chart type")

	// ErrUnknownColumn is returned when an edit names a column the catalog
	// does not contain.
	ErrUnknownColumn = errors.New("unknown column")

	// ErrInvalidView is returned when a saved view or filter expression
	// cannot be decoded.
	ErrInvalidView = errors.New("invalid view")

	// ErrChartFields is returned when the given chart fields select a
	// different mode than the requested chart type.
	ErrChartFields = errors.New("conflicting chart fields")
)
