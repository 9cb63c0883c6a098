package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/chartscribe-lab/chartscribe/internal/datasource"
	"github.com/chartscribe-lab/chartscribe/internal/logger"
	"github.com/chartscribe-lab/chartscribe/internal/pipeline"
	"github.com/chartscribe-lab/chartscribe/internal/report"
)

// Application states.
const (
	StateFileSelect = iota
	StatePeriodInput
	StateRunning
	StateResultDisplay
)

// defaultPeriodDays is used when the period prompt is left empty.
const defaultPeriodDays = 30

// Ollama settings come from the environment. Without CHARTSCRIBE_OLLAMA_URL
// the run stops after preparing the excerpt and only the table is shown.
const (
	ollamaURLEnv   = "CHARTSCRIBE_OLLAMA_URL"
	modelIDEnv     = "CHARTSCRIBE_MODEL"
	defaultModelID = "llama3.1:8b"
	reportTimeout  = 120 * time.Second
)

// Model is the main Bubble Tea model for the analysis viewer.
type Model struct {
	state       int
	fileList    list.Model
	periodInput textinput.Model
	resultTable table.Model
	dataDir     string
	selected    string
	periodDays  int
	result      *pipeline.Result
	err         error
	width       int
	height      int
}

// NewModel creates a new Model listing the CSV files under dataDir.
func NewModel(dataDir string) Model {
	files, err := ListCSVFiles(dataDir)

	return Model{
		state:       StateFileSelect,
		fileList:    NewFileList(files),
		periodInput: NewPeriodInput(),
		resultTable: NewResultTable(),
		dataDir:     dataDir,
		err:         err,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "q":
			// Only quit on 'q' if not in text input mode
			if m.state != StatePeriodInput {
				return m, tea.Quit
			}
		case "esc":
			return m.handleEsc()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.fileList.SetSize(msg.Width, msg.Height-4)
		m.resultTable.SetWidth(msg.Width)
		m.resultTable.SetHeight(msg.Height - 8)
		return m, nil

	case ResultMsg:
		m.result = msg.Result
		m.resultTable = UpdateResultTable(m.resultTable, msg.Result)
		if msg.Result.State == pipeline.StateFailed {
			m.err = msg.Result.Cause
		}
		m.state = StateResultDisplay
		return m, nil

	case RunErrorMsg:
		m.err = msg.Err
		m.state = StateResultDisplay
		return m, nil
	}

	// Delegate to state-specific update
	switch m.state {
	case StateFileSelect:
		return m.updateFileSelect(msg)
	case StatePeriodInput:
		return m.updatePeriodInput(msg)
	case StateResultDisplay:
		return m.updateResultDisplay(msg)
	}

	return m, nil
}

func (m Model) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case StatePeriodInput:
		m.periodInput.Blur()
		m.periodInput.Reset()
		m.err = nil
		m.state = StateFileSelect
	case StateResultDisplay:
		// Drop the finished run and go back to the file list
		m.result = nil
		m.err = nil
		m.selected = ""
		m.periodDays = 0
		m.periodInput.Reset()
		m.state = StateFileSelect
	}
	return m, nil
}

func (m Model) updateFileSelect(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			if item, ok := m.fileList.SelectedItem().(listItem); ok {
				m.selected = item.description
				m.state = StatePeriodInput
				m.periodInput.Focus()
				return m, textinput.Blink
			}
		}
	}

	var cmd tea.Cmd
	m.fileList, cmd = m.fileList.Update(msg)
	return m, cmd
}

func (m Model) updatePeriodInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			days, err := ParsePeriodDays(m.periodInput.Value())
			if err != nil {
				m.err = err
				return m, nil
			}
			m.err = nil
			m.periodDays = days
			m.periodInput.Blur()
			m.state = StateRunning
			return m, startAnalysis(m.selected, days)
		}
	}

	var cmd tea.Cmd
	m.periodInput, cmd = m.periodInput.Update(msg)
	return m, cmd
}

func (m Model) updateResultDisplay(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.resultTable, cmd = m.resultTable.Update(msg)
	return m, cmd
}

// ParsePeriodDays reads the analysis window, empty means the default.
func ParsePeriodDays(input string) (int, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return defaultPeriodDays, nil
	}

	days, err := strconv.Atoi(trimmed)
	if err != nil || days < 1 {
		return 0, fmt.Errorf("analysis period must be a positive number of days, got %q", input)
	}

	return days, nil
}

// startAnalysis returns a command that runs the pipeline and delivers the
// outcome as a message. The run happens inside the command goroutine, so no
// program reference is needed.
func startAnalysis(path string, days int) tea.Cmd {
	return func() tea.Msg {
		result, err := runAnalysis(path, days)
		if err != nil {
			return RunErrorMsg{Err: err}
		}

		return ResultMsg{Result: result}
	}
}

// runAnalysis executes one pipeline run over the selected file. Logging is
// disabled because stdout belongs to the renderer.
func runAnalysis(path string, days int) (*pipeline.Result, error) {
	source := datasource.NewCSVDataSource(path, logger.NewNopLogger())
	defer source.Close()

	p := pipeline.NewPipeline(logger.NewNopLogger())

	if err := p.SetDataSource(source); err != nil {
		return nil, err
	}

	if err := p.SetAnalysisPeriodDays(days); err != nil {
		return nil, err
	}

	if url := os.Getenv(ollamaURLEnv); url != "" {
		model := os.Getenv(modelIDEnv)
		if model == "" {
			model = defaultModelID
		}
		p.SetGenerator(report.NewOllamaGenerator(url, model, reportTimeout, nil))
	}

	return p.Run(context.Background())
}

// View implements tea.Model.
func (m Model) View() string {
	var s strings.Builder

	switch m.state {
	case StateFileSelect:
		s.WriteString(TitleStyle.Render("ChartScribe - Price Analysis"))
		s.WriteString("\n\n")
		if m.err != nil {
			s.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
			s.WriteString("\n\n")
		}
		s.WriteString(m.fileList.View())
		s.WriteString("\n")
		s.WriteString(HelpStyle.Render("Press Enter to select, q to quit"))

	case StatePeriodInput:
		s.WriteString(TitleStyle.Render("Analysis Period"))
		s.WriteString("\n\n")
		s.WriteString("Enter the analysis window in calendar days (default 30):\n\n")
		s.WriteString(m.periodInput.View())
		s.WriteString("\n\n")
		if m.err != nil {
			s.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
			s.WriteString("\n\n")
		}
		s.WriteString(HelpStyle.Render("Press Enter to run, Esc to go back"))

	case StateRunning:
		s.WriteString(TitleStyle.Render("Running Analysis"))
		s.WriteString("\n\n")
		s.WriteString(fmt.Sprintf("Analyzing %s over the last %d days...\n", m.selected, m.periodDays))

	case StateResultDisplay:
		s.WriteString(TitleStyle.Render(fmt.Sprintf("Analysis - %s (%d days)", m.selected, m.periodDays)))
		s.WriteString("\n\n")

		if m.err != nil {
			s.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
			s.WriteString("\n\n")
		}

		if m.result != nil && m.result.Table != nil && m.result.Table.Length() > 0 {
			s.WriteString(m.resultTable.View())
			s.WriteString("\n")
		}

		if m.result != nil && m.result.Report != "" {
			s.WriteString("\n")
			s.WriteString(m.result.Report)
			s.WriteString("\n")
		}

		if m.result != nil && m.result.State == pipeline.StateFailed {
			s.WriteString(HelpStyle.Render(fmt.Sprintf("Run failed at the %s stage", m.result.FailedStage)))
			s.WriteString("\n")
		}

		s.WriteString("\n")
		s.WriteString(HelpStyle.Render("q: quit | Esc: back"))
	}

	return s.String()
}
