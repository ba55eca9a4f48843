// Package tabula explores CSV datasets through filters and charts.
//
// Usage:
//
//	import (
//	    "github.com/spektr-org/tabula/engine"
//	    "github.com/spektr-org/tabula/table"
//	)
//
//	tbl, err := table.ParseCSV(f)
//	s := engine.NewSession(tbl, engine.WithChartType(engine.ChartPie))
//	_ = s.SetFilter("city", engine.TextFilter{Values: []table.Value{table.Text("NYC")}})
//	result := s.Snapshot()
//
// The table package parses CSV into ordered rows of raw cells. The schema
// package infers a column catalog (number, string or date) from those rows.
// The engine package evaluates filters against rows and prepares plot-ready
// chart records, and its Session ties the three together.
//
// The tabula command in cmd/tabula exposes the same pipeline on the
// command line. All computation is local and synchronous.
package tabula
