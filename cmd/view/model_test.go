package main

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/chartscribe-lab/chartscribe/internal/pipeline"
	"github.com/chartscribe-lab/chartscribe/internal/types"
	"github.com/chartscribe-lab/chartscribe/mocks"
	"github.com/moznion/go-optional"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeFixtureCSV writes count days of generated prices under dir and returns
// the file path.
func writeFixtureCSV(t *testing.T, dir string, count int) string {
	gen := mocks.NewDataGenerator(7)
	genConfig := mocks.DefaultConfig()
	genConfig.Count = count

	path := filepath.Join(dir, "prices.csv")

	file, err := os.Create(path)
	require.NoError(t, err)
	defer file.Close()

	w := csv.NewWriter(file)
	require.NoError(t, w.Write(types.RequiredSourceColumns))

	for _, record := range gen.Generate(genConfig) {
		row := []string{record.Date.Format(time.DateOnly)}
		for _, cell := range []optional.Option[float64]{
			record.Open, record.High, record.Low, record.Close, record.AdjClose, record.Volume,
		} {
			row = append(row, strconv.FormatFloat(cell.Unwrap(), 'f', -1, 64))
		}

		require.NoError(t, w.Write(row))
	}

	w.Flush()
	require.NoError(t, w.Error())

	return path
}

func TestNewModel(t *testing.T) {
	dir := t.TempDir()
	writeFixtureCSV(t, dir, 60)

	m := NewModel(dir)

	assert.Equal(t, StateFileSelect, m.state)
	assert.Equal(t, dir, m.dataDir)
	assert.NoError(t, m.err)
	assert.Nil(t, m.result)
	assert.Empty(t, m.selected)
}

func TestListCSVFiles(t *testing.T) {
	dir := t.TempDir()

	for _, name := range []string{"b.csv", "a.csv", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}

	files, err := ListCSVFiles(dir)
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(dir, "a.csv"),
		filepath.Join(dir, "b.csv"),
	}, files)
}

func TestParsePeriodDays(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int
		wantErr  bool
	}{
		{
			name:     "empty uses default",
			input:    "",
			expected: defaultPeriodDays,
		},
		{
			name:     "plain number",
			input:    "45",
			expected: 45,
		},
		{
			name:     "surrounding spaces",
			input:    " 45 ",
			expected: 45,
		},
		{
			name:    "not a number",
			input:   "abc",
			wantErr: true,
		},
		{
			name:    "zero",
			input:   "0",
			wantErr: true,
		},
		{
			name:    "negative",
			input:   "-3",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			days, err := ParsePeriodDays(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, days)
		})
	}
}

func TestFileSelection(t *testing.T) {
	dir := t.TempDir()
	writeFixtureCSV(t, dir, 60)

	m := NewModel(dir)
	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(80, 24))

	// Wait for file list to render
	teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
		return bytes.Contains(bts, []byte("prices.csv"))
	}, teatest.WithDuration(2*time.Second))

	// Send Enter to select the file
	tm.Send(tea.KeyMsg{Type: tea.KeyEnter})

	// Verify state changed to period input
	teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
		return bytes.Contains(bts, []byte("Analysis Period"))
	}, teatest.WithDuration(2*time.Second))

	err := tm.Quit()
	assert.NoError(t, err)
}

func TestFullAnalysisFlow(t *testing.T) {
	dir := t.TempDir()
	writeFixtureCSV(t, dir, 60)

	m := NewModel(dir)
	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(120, 40))

	// Wait for file list to render
	teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
		return bytes.Contains(bts, []byte("prices.csv"))
	}, teatest.WithDuration(2*time.Second))

	// Select the file
	tm.Send(tea.KeyMsg{Type: tea.KeyEnter})

	teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
		return bytes.Contains(bts, []byte("Analysis Period"))
	}, teatest.WithDuration(2*time.Second))

	// Enter the analysis window
	tm.Type("30")
	tm.Send(tea.KeyMsg{Type: tea.KeyEnter})

	// The run completes and the result table shows the indicator columns
	teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
		return bytes.Contains(bts, []byte("(30 days)")) &&
			bytes.Contains(bts, []byte("sma_20"))
	}, teatest.WithDuration(5*time.Second))

	err := tm.Quit()
	assert.NoError(t, err)
}

func TestStateTransitions(t *testing.T) {
	t.Run("Esc from period input goes back to file select", func(t *testing.T) {
		dir := t.TempDir()
		writeFixtureCSV(t, dir, 60)

		m := NewModel(dir)
		m.state = StatePeriodInput
		m.periodInput.Focus()

		tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(80, 24))

		// Wait for period input view
		teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
			return bytes.Contains(bts, []byte("Analysis Period"))
		}, teatest.WithDuration(2*time.Second))

		// Press Esc
		tm.Send(tea.KeyMsg{Type: tea.KeyEsc})

		// Verify we're back at file selection
		teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
			return bytes.Contains(bts, []byte("Select Price Data"))
		}, teatest.WithDuration(2*time.Second))

		err := tm.Quit()
		assert.NoError(t, err)
	})

	t.Run("Esc from result display clears the run and goes to file select", func(t *testing.T) {
		dir := t.TempDir()
		path := writeFixtureCSV(t, dir, 60)

		result, err := runAnalysis(path, 30)
		require.NoError(t, err)

		m := NewModel(dir)
		m.state = StateResultDisplay
		m.selected = path
		m.periodDays = 30
		m.result = result

		// Simulate pressing Esc
		newModel, _ := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
		updatedModel := newModel.(Model)

		// Verify state changed to file selection
		assert.Equal(t, StateFileSelect, updatedModel.state)
		// Verify the run is cleared
		assert.Nil(t, updatedModel.result)
		assert.Empty(t, updatedModel.selected)
		assert.Zero(t, updatedModel.periodDays)
	})
}

func TestResultDisplay(t *testing.T) {
	dir := t.TempDir()
	path := writeFixtureCSV(t, dir, 60)

	result, err := runAnalysis(path, 30)
	require.NoError(t, err)
	require.Equal(t, pipeline.StateDone, result.State)

	m := NewModel(dir)
	m.selected = path
	m.periodDays = 30

	newModel, _ := m.Update(ResultMsg{Result: result})
	updatedModel := newModel.(Model)

	assert.Equal(t, StateResultDisplay, updatedModel.state)
	assert.NoError(t, updatedModel.err)

	tm := teatest.NewTestModel(t, updatedModel, teatest.WithInitialTermSize(120, 40))

	// Wait for result view with the computed columns
	teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
		return bytes.Contains(bts, []byte("sma_20")) &&
			bytes.Contains(bts, []byte("rsi_14"))
	}, teatest.WithDuration(2*time.Second))

	err = tm.Quit()
	assert.NoError(t, err)
}

func TestReportFromConfiguredModel(t *testing.T) {
	dir := t.TempDir()
	path := writeFixtureCSV(t, dir, 60)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"model": "llama3.1:8b", "response": "The close held above both averages.", "done": true}`)
	}))
	defer server.Close()

	t.Setenv(ollamaURLEnv, server.URL)

	result, err := runAnalysis(path, 30)
	require.NoError(t, err)
	require.Equal(t, pipeline.StateDone, result.State)
	require.Equal(t, "The close held above both averages.", result.Report)

	m := NewModel(dir)
	m.selected = path
	m.periodDays = 30

	newModel, _ := m.Update(ResultMsg{Result: result})
	updatedModel := newModel.(Model)

	tm := teatest.NewTestModel(t, updatedModel, teatest.WithInitialTermSize(120, 40))

	// The report text renders under the result table
	teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
		return bytes.Contains(bts, []byte("held above both averages"))
	}, teatest.WithDuration(2*time.Second))

	err = tm.Quit()
	assert.NoError(t, err)
}

func TestRunErrorMessage(t *testing.T) {
	dir := t.TempDir()
	writeFixtureCSV(t, dir, 60)

	m := NewModel(dir)
	m.state = StateRunning

	newModel, _ := m.Update(RunErrorMsg{Err: fmt.Errorf("boom")})
	updatedModel := newModel.(Model)

	assert.Equal(t, StateResultDisplay, updatedModel.state)
	assert.EqualError(t, updatedModel.err, "boom")
}

func TestFailedRunShowsStage(t *testing.T) {
	dir := t.TempDir()

	// Point the run at a file that does not exist so ingestion fails
	result, err := runAnalysis(filepath.Join(dir, "missing.csv"), 30)
	require.NoError(t, err)
	require.Equal(t, pipeline.StateFailed, result.State)

	m := NewModel(dir)
	m.selected = "missing.csv"
	m.periodDays = 30

	newModel, _ := m.Update(ResultMsg{Result: result})
	updatedModel := newModel.(Model)

	assert.Equal(t, StateResultDisplay, updatedModel.state)
	assert.Error(t, updatedModel.err)

	tm := teatest.NewTestModel(t, updatedModel, teatest.WithInitialTermSize(100, 30))

	teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
		return bytes.Contains(bts, []byte("Run failed at the ingestion stage"))
	}, teatest.WithDuration(2*time.Second))

	err = tm.Quit()
	assert.NoError(t, err)
}

func TestFormatCloseWithTrend(t *testing.T) {
	tests := []struct {
		name     string
		current  optional.Option[float64]
		previous optional.Option[float64]
		expected string
	}{
		{
			name:     "close up shows up arrow",
			current:  optional.Some(100.5),
			previous: optional.Some(90.0),
			expected: "100.50 ▲",
		},
		{
			name:     "close down shows down arrow",
			current:  optional.Some(90.0),
			previous: optional.Some(100.5),
			expected: "90.00 ▼",
		},
		{
			name:     "same close no arrow",
			current:  optional.Some(100.0),
			previous: optional.Some(100.0),
			expected: "100.00",
		},
		{
			name:     "no previous no arrow",
			current:  optional.Some(100.0),
			previous: optional.None[float64](),
			expected: "100.00",
		},
		{
			name:     "missing close renders empty",
			current:  optional.None[float64](),
			previous: optional.Some(100.0),
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatCloseWithTrend(tt.current, tt.previous))
		})
	}
}

func TestWindowResize(t *testing.T) {
	dir := t.TempDir()
	writeFixtureCSV(t, dir, 60)

	m := NewModel(dir)

	msg := tea.WindowSizeMsg{Width: 120, Height: 40}
	newModel, _ := m.Update(msg)
	updatedModel := newModel.(Model)

	assert.Equal(t, 120, updatedModel.width)
	assert.Equal(t, 40, updatedModel.height)
}

func TestQuitBehavior(t *testing.T) {
	t.Run("ctrl+c quits from any state", func(t *testing.T) {
		dir := t.TempDir()
		writeFixtureCSV(t, dir, 60)

		m := NewModel(dir)
		tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(80, 24))

		// Send ctrl+c
		tm.Send(tea.KeyMsg{Type: tea.KeyCtrlC})

		// Wait for program to finish
		tm.WaitFinished(t, teatest.WithFinalTimeout(2*time.Second))
	})

	t.Run("q quits from file select", func(t *testing.T) {
		dir := t.TempDir()
		writeFixtureCSV(t, dir, 60)

		m := NewModel(dir)
		tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(80, 24))

		// Wait for view to render
		teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
			return bytes.Contains(bts, []byte("prices.csv"))
		}, teatest.WithDuration(2*time.Second))

		// Send q
		tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})

		// Wait for program to finish
		tm.WaitFinished(t, teatest.WithFinalTimeout(2*time.Second))
	})
}
