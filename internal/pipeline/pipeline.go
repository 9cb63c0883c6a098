// Package pipeline chains ingestion, indicator computation and report
// preparation into one sequential run. Each stage consumes the previous
// stage's output; the first stage failure ends the run with the stage name
// and cause recorded, and nothing is retried.
package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/chartscribe-lab/chartscribe/internal/datasource"
	"github.com/chartscribe-lab/chartscribe/internal/indicator"
	"github.com/chartscribe-lab/chartscribe/internal/logger"
	"github.com/chartscribe-lab/chartscribe/internal/report"
	"github.com/chartscribe-lab/chartscribe/internal/series"
	"github.com/chartscribe-lab/chartscribe/pkg/errors"
	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"go.uber.org/zap"
)

// State describes where a pipeline currently is.
type State string

const (
	StateIdle                State = "idle"
	StateIngesting           State = "ingesting"
	StateComputingIndicators State = "computing_indicators"
	StateFormattingReport    State = "formatting_report"
	StateDone                State = "done"
	StateFailed              State = "failed"
)

// Stage names recorded on failed runs.
const (
	StageIngestion  = "ingestion"
	StageIndicators = "indicators"
	StageReport     = "report"
)

// errorReportPrefix marks a report body that is actually a failure message
// from the model or its wrapper.
const errorReportPrefix = "ERROR:"

// defaultAnalysisPeriodDays is the excerpt window when none is configured.
const defaultAnalysisPeriodDays = 30

// Result is the outcome of one pipeline run. A failed run keeps whatever the
// earlier stages produced, so callers can still inspect the table of a run
// that died preparing its report.
type Result struct {
	// RunID uniquely identifies the run.
	RunID string
	// StartedAt is when the run began.
	StartedAt time.Time
	// State is StateDone or StateFailed.
	State State
	// FailedStage names the stage that failed, empty on success.
	FailedStage string
	// Cause is the stage failure, nil on success.
	Cause error
	// Table is the ingested table, with indicator columns once that stage
	// finished.
	Table *series.Table
	// Excerpt is the rendered report input, nil if the run failed earlier.
	Excerpt *report.Excerpt
	// Report is the generated report text, empty when no generator is set.
	Report string
}

// Pipeline runs the three stages against one data source.
type Pipeline struct {
	source    datasource.DataSource
	engine    *indicator.Engine
	generator report.Generator
	specs     []indicator.Spec
	start     optional.Option[time.Time]
	end       optional.Option[time.Time]
	days      int
	state     State
	log       *logger.Logger
}

// NewPipeline creates an idle pipeline with the built-in indicators and
// default specs. The data source must be set before running.
func NewPipeline(l *logger.Logger) *Pipeline {
	if l == nil {
		l = logger.NewNopLogger()
	}

	return &Pipeline{
		engine: indicator.NewEngine(indicator.NewDefaultRegistry(), l),
		specs:  indicator.DefaultSpecs(),
		days:   defaultAnalysisPeriodDays,
		state:  StateIdle,
		log:    l,
	}
}

// SetDataSource sets the price history source.
func (p *Pipeline) SetDataSource(source datasource.DataSource) error {
	if source == nil {
		return errors.New(errors.ErrCodePipelineNoDatasource, "data source cannot be nil")
	}

	p.source = source

	return nil
}

// SetGenerator sets the report generator. Without one the run still prepares
// the excerpt and finishes with an empty report.
func (p *Pipeline) SetGenerator(generator report.Generator) {
	p.generator = generator
}

// SetSpecs replaces the indicator specs for the run.
func (p *Pipeline) SetSpecs(specs []indicator.Spec) error {
	for _, spec := range specs {
		if err := spec.Validate(); err != nil {
			return errors.Wrapf(errors.ErrCodePipelineConfigError, err, "invalid indicator spec %s_%d", spec.Kind, spec.Window)
		}
	}

	p.specs = specs

	return nil
}

// SetDateRange bounds ingestion to the given dates, both inclusive.
func (p *Pipeline) SetDateRange(start optional.Option[time.Time], end optional.Option[time.Time]) error {
	if start.IsSome() && end.IsSome() && end.Unwrap().Before(start.Unwrap()) {
		return errors.Newf(errors.ErrCodePipelineConfigError, "end date %s is before start date %s",
			end.Unwrap().Format(time.DateOnly), start.Unwrap().Format(time.DateOnly))
	}

	p.start = start
	p.end = end

	return nil
}

// SetAnalysisPeriodDays sets the excerpt window in calendar days.
func (p *Pipeline) SetAnalysisPeriodDays(days int) error {
	if days < 1 {
		return errors.Newf(errors.ErrCodePipelineConfigError, "analysis period must be at least 1 day, got %d", days)
	}

	p.days = days

	return nil
}

// State reports the current pipeline state.
func (p *Pipeline) State() State {
	return p.state
}

func (p *Pipeline) preRunCheck() error {
	if p.source == nil {
		return errors.New(errors.ErrCodePipelineNoDatasource, "no data source configured")
	}

	return nil
}

// Run executes the stages in order. Stage failures land in the result, not
// in the returned error; the error is reserved for a misconfigured or
// already-used pipeline.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	if p.state != StateIdle {
		return nil, errors.Newf(errors.ErrCodePipelineNotIdle, "pipeline already ran, state is %s", p.state)
	}

	if err := p.preRunCheck(); err != nil {
		return nil, err
	}

	result := &Result{
		RunID:     uuid.New().String(),
		StartedAt: time.Now(),
	}

	p.log.Info("pipeline run started", zap.String("run_id", result.RunID))

	p.state = StateIngesting

	table, err := p.source.Load(ctx, p.start, p.end)
	if err != nil {
		return p.fail(result, StageIngestion, err), nil
	}

	if table == nil || table.Length() == 0 {
		return p.fail(result, StageIngestion,
			errors.New(errors.ErrCodeInputAbsent, "data source produced no rows")), nil
	}

	result.Table = table

	p.state = StateComputingIndicators

	if err := p.engine.Apply(table, p.specs); err != nil {
		return p.fail(result, StageIndicators, err), nil
	}

	p.state = StateFormattingReport

	excerpt, err := report.BuildExcerpt(table, p.days)
	if err != nil {
		return p.fail(result, StageReport, err), nil
	}

	result.Excerpt = excerpt

	if p.generator != nil {
		text, err := p.generator.Generate(ctx, report.BuildPrompt(excerpt))
		if err != nil {
			return p.fail(result, StageReport, err), nil
		}

		if strings.HasPrefix(strings.TrimSpace(text), errorReportPrefix) {
			return p.fail(result, StageReport, errors.Newf(errors.ErrCodeReportFailed, "model reported a failure: %s", text)), nil
		}

		result.Report = text
	}

	p.state = StateDone
	result.State = StateDone

	p.log.Info("pipeline run finished",
		zap.String("run_id", result.RunID),
		zap.Int("rows", table.Length()),
		zap.Int("excerpt_rows", excerpt.Rows),
	)

	return result, nil
}

// fail marks the run failed at the given stage. Failure is terminal, the
// remaining stages never run.
func (p *Pipeline) fail(result *Result, stage string, cause error) *Result {
	p.state = StateFailed
	result.State = StateFailed
	result.FailedStage = stage
	result.Cause = cause

	p.log.Error("pipeline stage failed",
		zap.String("run_id", result.RunID),
		zap.String("stage", stage),
		zap.Error(cause),
	)

	return result
}
