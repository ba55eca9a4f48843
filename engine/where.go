package engine

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/spektr-org/tabula/schema"
	"github.com/spektr-org/tabula/table"
)

// ParseWhere builds a FilterState from command-line style expressions.
// The filter variant follows the column's inferred kind:
//
//	city=NYC,LA          text: exact values
//	age>=28  age<=40     number bounds; repeated columns are merged
//	age=28..40  age=28.. number range, either side optional
//	joined=2024-01-01..  date range, either side optional
//	joined>=2024-01-01   date bound
//
// A single value after "=" on a number or date column is an exact match,
// both bounds set to it.
func ParseWhere(exprs []string, catalog schema.Catalog) (FilterState, error) {
	filters := FilterState{}
	for _, expr := range exprs {
		column, op, operand, err := splitWhere(expr)
		if err != nil {
			return nil, err
		}
		col, ok := catalog.Lookup(column)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, column)
		}

		var spec FilterSpec
		switch col.Kind {
		case schema.KindNumber:
			spec, err = numberWhere(filters[column], op, operand)
		case schema.KindDate:
			spec, err = dateWhere(filters[column], op, operand)
		default:
			spec, err = textWhere(op, operand)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidView, expr, err)
		}
		filters[column] = spec
	}
	return filters, nil
}

func splitWhere(expr string) (column, op, operand string, err error) {
	i := strings.IndexByte(expr, '=')
	if i <= 0 {
		return "", "", "", fmt.Errorf("%w: expression %q needs =, >= or <=", ErrInvalidView, expr)
	}
	start := i
	if expr[i-1] == '>' || expr[i-1] == '<' {
		start = i - 1
	}
	column = strings.TrimSpace(expr[:start])
	if column == "" {
		return "", "", "", fmt.Errorf("%w: expression %q has no column", ErrInvalidView, expr)
	}
	return column, expr[start : i+1], strings.TrimSpace(expr[i+1:]), nil
}

func textWhere(op, operand string) (FilterSpec, error) {
	if op != "=" {
		return nil, fmt.Errorf("text columns only support =")
	}
	if operand == "" {
		return TextFilter{}, nil
	}
	parts := strings.Split(operand, ",")
	values := make([]table.Value, len(parts))
	for i, p := range parts {
		values[i] = table.Text(p)
	}
	return TextFilter{Values: values}, nil
}

func numberWhere(prev FilterSpec, op, operand string) (FilterSpec, error) {
	f, _ := prev.(NumberFilter)
	loText, hiText, isRange := strings.Cut(operand, "..")

	parse := func(s string) (*float64, error) {
		if s == "" {
			return nil, nil
		}
		n := table.ParseFloat(s)
		if math.IsNaN(n) {
			return nil, fmt.Errorf("%q is not a number", s)
		}
		return &n, nil
	}

	switch {
	case op == ">=":
		v, err := parse(operand)
		if err != nil {
			return nil, err
		}
		f.Min = v
	case op == "<=":
		v, err := parse(operand)
		if err != nil {
			return nil, err
		}
		f.Max = v
	case isRange:
		lo, err := parse(loText)
		if err != nil {
			return nil, err
		}
		hi, err := parse(hiText)
		if err != nil {
			return nil, err
		}
		f = NumberFilter{Min: lo, Max: hi}
	default:
		v, err := parse(operand)
		if err != nil {
			return nil, err
		}
		f = NumberFilter{Min: v, Max: v}
	}
	return f, nil
}

func dateWhere(prev FilterSpec, op, operand string) (FilterSpec, error) {
	f, _ := prev.(DateFilter)
	loText, hiText, isRange := strings.Cut(operand, "..")

	parse := func(s string) (*time.Time, error) {
		if s == "" {
			return nil, nil
		}
		t, ok := schema.ParseDate(s)
		if !ok {
			return nil, fmt.Errorf("%q is not a date", s)
		}
		return &t, nil
	}

	switch {
	case op == ">=":
		v, err := parse(operand)
		if err != nil {
			return nil, err
		}
		f.Start = v
	case op == "<=":
		v, err := parse(operand)
		if err != nil {
			return nil, err
		}
		f.End = v
	case isRange:
		start, err := parse(loText)
		if err != nil {
			return nil, err
		}
		end, err := parse(hiText)
		if err != nil {
			return nil, err
		}
		f = DateFilter{Start: start, End: end}
	default:
		v, err := parse(operand)
		if err != nil {
			return nil, err
		}
		f = DateFilter{Start: v, End: v}
	}
	return f, nil
}
