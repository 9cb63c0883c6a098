// Package report turns an indicator table into a natural-language analysis
// report. The excerpt formatter selects the recent rows and renders them as
// a markdown table; a Generator sends the prompt to a language model.
package report

import (
	"time"

	"github.com/chartscribe-lab/chartscribe/internal/series"
	"github.com/chartscribe-lab/chartscribe/internal/types"
	"github.com/chartscribe-lab/chartscribe/pkg/errors"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"
)

// Excerpt is the recent slice of an indicator table rendered for analysis.
type Excerpt struct {
	// Rows is the number of table rows included.
	Rows int
	// Columns are the value columns in render order, date excluded.
	Columns []string
	// Markdown is the rendered table.
	Markdown string
}

// BuildExcerpt renders the last days calendar days of the table as markdown.
// Only the close and indicator columns appear; open, high, low and volume
// stay out of the excerpt. Values are rounded to two decimals and missing
// values render as empty cells.
func BuildExcerpt(t *series.Table, days int) (*Excerpt, error) {
	if t == nil || t.Length() == 0 {
		return nil, errors.New(errors.ErrCodeEmptySelection, "no rows available for report excerpt")
	}

	recent := t.TailDays(days)
	if recent.Length() == 0 {
		return nil, errors.Newf(errors.ErrCodeEmptySelection, "no rows within the last %d days", days)
	}

	columns := excerptColumns(recent)
	if len(columns) == 0 {
		return nil, errors.New(errors.ErrCodeEmptySelection, "no close or indicator columns to report on")
	}

	values := make([][]optional.Option[float64], len(columns))

	for i, name := range columns {
		column, err := recent.Column(name)
		if err != nil {
			return nil, err
		}

		values[i] = column
	}

	w := table.NewWriter()

	header := table.Row{"Date"}
	for _, name := range columns {
		header = append(header, name)
	}

	w.AppendHeader(header)

	for row := 0; row < recent.Length(); row++ {
		cells := table.Row{recent.Date(row).Format(time.DateOnly)}
		for _, column := range values {
			cells = append(cells, formatCell(column[row]))
		}

		w.AppendRow(cells)
	}

	return &Excerpt{
		Rows:     recent.Length(),
		Columns:  columns,
		Markdown: w.RenderMarkdown(),
	}, nil
}

// excerptColumns picks close plus every indicator column, keeping the
// table's column order.
func excerptColumns(t *series.Table) []string {
	priceColumns := map[string]bool{
		types.ColumnOpen:     true,
		types.ColumnHigh:     true,
		types.ColumnLow:      true,
		types.ColumnAdjClose: true,
		types.ColumnVolume:   true,
	}

	var columns []string

	for _, name := range t.Columns() {
		if priceColumns[name] {
			continue
		}

		columns = append(columns, name)
	}

	return columns
}

// formatCell renders one value at two decimals. A missing value renders as
// an empty cell, never as zero.
func formatCell(value optional.Option[float64]) string {
	if value.IsNone() {
		return ""
	}

	return decimal.NewFromFloat(value.Unwrap()).Round(2).StringFixed(2)
}
