package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/chartscribe-lab/chartscribe/internal/pipeline"
	"github.com/chartscribe-lab/chartscribe/internal/series"
	"github.com/chartscribe-lab/chartscribe/internal/types"
	"github.com/moznion/go-optional"
)

// listItem implements list.Item interface for the file list.
type listItem struct {
	name        string
	description string
}

func (i listItem) Title() string       { return i.name }
func (i listItem) Description() string { return i.description }
func (i listItem) FilterValue() string { return i.name }

// ListCSVFiles returns the CSV files under dir, sorted by name.
func ListCSVFiles(dir string) ([]string, error) {
	return filepath.Glob(filepath.Join(dir, "*.csv"))
}

// NewFileList creates a new list for price file selection.
func NewFileList(files []string) list.Model {
	items := make([]list.Item, 0, len(files))
	for _, file := range files {
		items = append(items, listItem{name: filepath.Base(file), description: file})
	}

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true

	l := list.New(items, delegate, 0, 0)
	l.Title = "Select Price Data"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)

	return l
}

// NewPeriodInput creates a new text input for the analysis period.
func NewPeriodInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "30"
	ti.CharLimit = 4
	ti.Width = 20
	ti.Prompt = "> "

	return ti
}

// NewResultTable creates an empty table for displaying analysis rows.
// Columns are set once a run finishes because they depend on the computed
// indicators.
func NewResultTable() table.Model {
	t := table.New(
		table.WithFocused(true),
		table.WithHeight(12),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)

	t.SetStyles(s)

	return t
}

// displayRowLimit bounds how many trailing rows the result table shows.
const displayRowLimit = 20

// displayColumns picks close and the indicator columns, in table order.
func displayColumns(t *series.Table) []string {
	skip := map[string]bool{
		types.ColumnOpen:     true,
		types.ColumnHigh:     true,
		types.ColumnLow:      true,
		types.ColumnAdjClose: true,
		types.ColumnVolume:   true,
	}

	columns := make([]string, 0, len(t.Columns()))

	for _, name := range t.Columns() {
		if skip[name] {
			continue
		}
		columns = append(columns, name)
	}

	return columns
}

// UpdateResultTable fills the table with the trailing rows of a finished run.
func UpdateResultTable(t table.Model, result *pipeline.Result) table.Model {
	if result == nil || result.Table == nil || result.Table.Length() == 0 {
		return t
	}

	recent := result.Table.Tail(displayRowLimit)
	names := displayColumns(recent)

	columns := []table.Column{{Title: "Date", Width: 12}}
	for _, name := range names {
		columns = append(columns, table.Column{Title: name, Width: 12})
	}

	values := make([][]optional.Option[float64], len(names))
	for i, name := range names {
		column, err := recent.Column(name)
		if err != nil {
			return t
		}
		values[i] = column
	}

	rows := make([]table.Row, 0, recent.Length())

	for row := 0; row < recent.Length(); row++ {
		cells := table.Row{recent.Date(row).Format(time.DateOnly)}

		for i, column := range values {
			if names[i] == types.ColumnClose {
				previous := optional.None[float64]()
				if row > 0 {
					previous = column[row-1]
				}
				cells = append(cells, FormatCloseWithTrend(column[row], previous))
				continue
			}
			cells = append(cells, formatValue(column[row]))
		}

		rows = append(rows, cells)
	}

	t.SetColumns(columns)
	t.SetRows(rows)

	return t
}

// formatValue renders one cell at two decimals, empty when missing.
func formatValue(value optional.Option[float64]) string {
	if value.IsNone() {
		return ""
	}

	return fmt.Sprintf("%.2f", value.Unwrap())
}
