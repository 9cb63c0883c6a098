// Package series holds the daily price table shared by every pipeline stage.
//
// A Table is a set of named columns of optional floats, all aligned to one
// ordered run of calendar dates. Price columns are filled at construction
// from ingested records; indicator columns are appended later and must never
// displace an existing column. Absent values are optional.None, never zero,
// so a column always has exactly one value slot per row.
package series

import (
	"time"

	"github.com/chartscribe-lab/chartscribe/internal/types"
	"github.com/chartscribe-lab/chartscribe/pkg/errors"
	"github.com/moznion/go-optional"
)

// Table is an ordered daily price history with derived columns.
type Table struct {
	dates   []time.Time
	names   []string
	columns map[string][]optional.Option[float64]
}

// NewTable builds a table from ingested price records. Records must arrive
// with strictly ascending dates; the table never reorders its input.
func NewTable(records []types.PriceRecord) (*Table, error) {
	dates := make([]time.Time, 0, len(records))
	for _, record := range records {
		dates = append(dates, record.Date)
	}
	if err := validateDates(dates); err != nil {
		return nil, err
	}

	t := &Table{
		dates:   make([]time.Time, 0, len(records)),
		columns: make(map[string][]optional.Option[float64]),
	}
	t.names = []string{
		types.ColumnOpen,
		types.ColumnHigh,
		types.ColumnLow,
		types.ColumnClose,
		types.ColumnAdjClose,
		types.ColumnVolume,
	}
	for _, name := range t.names {
		t.columns[name] = make([]optional.Option[float64], 0, len(records))
	}

	for _, record := range records {
		t.dates = append(t.dates, record.Date)
		for _, name := range t.names {
			value, _ := record.Value(name)
			t.columns[name] = append(t.columns[name], value)
		}
	}

	return t, nil
}

// NewEmptyTable builds a table with rows but no columns yet, for assembling
// arbitrary column sets through AddColumn.
func NewEmptyTable(dates []time.Time) (*Table, error) {
	if err := validateDates(dates); err != nil {
		return nil, err
	}

	t := &Table{
		dates:   make([]time.Time, len(dates)),
		columns: make(map[string][]optional.Option[float64]),
	}
	copy(t.dates, dates)

	return t, nil
}

// validateDates enforces strictly ascending row dates.
func validateDates(dates []time.Time) error {
	for i := 1; i < len(dates); i++ {
		prev, curr := dates[i-1], dates[i]
		if curr.Equal(prev) {
			return errors.Newf(errors.ErrCodeDuplicateDate,
				"duplicate date at row %d: %s", i, curr.Format(time.DateOnly))
		}
		if curr.Before(prev) {
			return errors.Newf(errors.ErrCodeUnorderedDates,
				"dates must be strictly ascending: row %d (%s) is before row %d (%s)",
				i, curr.Format(time.DateOnly), i-1, prev.Format(time.DateOnly))
		}
	}

	return nil
}

// Length returns the number of rows.
func (t *Table) Length() int {
	return len(t.dates)
}

// Dates returns a copy of the row dates in order.
func (t *Table) Dates() []time.Time {
	dates := make([]time.Time, len(t.dates))
	copy(dates, t.dates)

	return dates
}

// Date returns the date of row i. The caller guarantees 0 <= i < Length().
func (t *Table) Date(i int) time.Time {
	return t.dates[i]
}

// Columns returns the column names in insertion order, price columns first.
func (t *Table) Columns() []string {
	names := make([]string, len(t.names))
	copy(names, t.names)

	return names
}

// HasColumn reports whether a column with the given name exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.columns[name]

	return ok
}

// Column returns a copy of the named column aligned with the table rows.
func (t *Table) Column(name string) ([]optional.Option[float64], error) {
	column, ok := t.columns[name]
	if !ok {
		return nil, errors.Newf(errors.ErrCodeUnknownColumn, "unknown column: %s", name)
	}

	values := make([]optional.Option[float64], len(column))
	copy(values, column)

	return values, nil
}

// AddColumn appends a new derived column. The values slice must have exactly
// one entry per row, and the name must not collide with any existing column.
func (t *Table) AddColumn(name string, values []optional.Option[float64]) error {
	if _, ok := t.columns[name]; ok {
		return errors.Newf(errors.ErrCodeDuplicateColumn, "column already exists: %s", name)
	}
	if len(values) != t.Length() {
		return errors.Newf(errors.ErrCodeLengthMismatch,
			"column %s has %d values, table has %d rows", name, len(values), t.Length())
	}

	column := make([]optional.Option[float64], len(values))
	copy(column, values)

	t.names = append(t.names, name)
	t.columns[name] = column

	return nil
}

// Tail returns the last min(n, Length()) rows with the full column set.
// The result is independent of the receiver; n below one yields an empty
// table, never an error.
func (t *Table) Tail(n int) *Table {
	if n < 0 {
		n = 0
	}
	if n > t.Length() {
		n = t.Length()
	}

	return t.slice(t.Length() - n)
}

// TailDays returns the rows within the trailing window of calendar days,
// measured back from the last row's date. When any row date is unusable
// (zero), the selection degrades to row counting via Tail.
func (t *Table) TailDays(days int) *Table {
	if days < 1 || t.Length() == 0 {
		return t.Tail(days)
	}
	for _, date := range t.dates {
		if date.IsZero() {
			return t.Tail(days)
		}
	}

	cutoff := t.dates[t.Length()-1].AddDate(0, 0, -(days - 1))
	start := t.Length()
	for i := t.Length() - 1; i >= 0; i-- {
		if t.dates[i].Before(cutoff) {
			break
		}
		start = i
	}

	return t.slice(start)
}

// slice copies rows [start, Length()) into a new table.
func (t *Table) slice(start int) *Table {
	out := &Table{
		dates:   make([]time.Time, t.Length()-start),
		names:   make([]string, len(t.names)),
		columns: make(map[string][]optional.Option[float64], len(t.names)),
	}
	copy(out.dates, t.dates[start:])
	copy(out.names, t.names)
	for _, name := range t.names {
		column := make([]optional.Option[float64], t.Length()-start)
		copy(column, t.columns[name][start:])
		out.columns[name] = column
	}

	return out
}
