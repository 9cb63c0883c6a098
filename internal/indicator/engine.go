package indicator

import (
	"github.com/chartscribe-lab/chartscribe/internal/logger"
	"github.com/chartscribe-lab/chartscribe/internal/series"
	"github.com/chartscribe-lab/chartscribe/internal/types"
	"github.com/chartscribe-lab/chartscribe/pkg/errors"
	"github.com/moznion/go-optional"
	"go.uber.org/zap"
)

// Engine derives indicator columns on a price table. Computation is pure;
// the engine only appends columns and never rewrites price data.
type Engine struct {
	registry IndicatorRegistry
	logger   *logger.Logger
}

// NewEngine creates an engine over the given registry.
func NewEngine(registry IndicatorRegistry, l *logger.Logger) *Engine {
	if l == nil {
		l = logger.NewNopLogger()
	}

	return &Engine{
		registry: registry,
		logger:   l,
	}
}

// plannedColumn is one resolved spec, ready to compute.
type plannedColumn struct {
	name      string
	indicator Indicator
	spec      Spec
}

// Apply appends one column per spec, in order. Every spec is resolved and
// checked before the first column lands, so a rejected spec leaves the table
// untouched. A table with too few rows for a spec is not an error: that
// column is added fully empty and the engine moves on.
func (e *Engine) Apply(table *series.Table, specs []Spec) error {
	if table == nil {
		return errors.New(errors.ErrCodeInvalidParameter, "table is nil")
	}

	closes, err := table.Column(types.ColumnClose)
	if err != nil {
		return errors.Wrap(errors.ErrCodeMissingRequiredColumn,
			"close prices are required for indicator computation", err)
	}

	planned, err := e.plan(table, specs)
	if err != nil {
		return err
	}

	for _, p := range planned {
		values, err := e.computeColumn(closes, table.Length(), p)
		if err != nil {
			var insufficient *errors.InsufficientDataError
			if !errors.As(err, &insufficient) {
				return err
			}

			e.logger.Warn("insufficient history for indicator, column left empty",
				zap.String("column", p.name),
				zap.Int("required", insufficient.Required),
				zap.Int("actual", insufficient.Actual),
			)

			values = make([]optional.Option[float64], table.Length())
		}

		if err := table.AddColumn(p.name, values); err != nil {
			return errors.Wrapf(errors.ErrCodeIndicatorCalculation, err, "failed to add column %s", p.name)
		}
	}

	return nil
}

// plan resolves all specs against the registry and checks the resulting
// column names against the table and against each other.
func (e *Engine) plan(table *series.Table, specs []Spec) ([]plannedColumn, error) {
	planned := make([]plannedColumn, 0, len(specs))
	seen := make(map[string]struct{}, len(specs))

	for _, spec := range specs {
		if err := spec.Validate(); err != nil {
			return nil, err
		}

		ind, err := e.registry.GetIndicator(spec.Kind)
		if err != nil {
			return nil, err
		}

		name := ind.ColumnName(spec.Window)
		if _, dup := seen[name]; dup {
			return nil, errors.Newf(errors.ErrCodeDuplicateColumn, "column %s requested more than once", name)
		}
		if table.HasColumn(name) {
			return nil, errors.Newf(errors.ErrCodeDuplicateColumn, "column already exists: %s", name)
		}

		seen[name] = struct{}{}
		planned = append(planned, plannedColumn{name: name, indicator: ind, spec: spec})
	}

	return planned, nil
}

// computeColumn runs one planned indicator. A table shorter than the spec's
// minimum row count yields an InsufficientDataError for the caller to absorb.
func (e *Engine) computeColumn(closes []optional.Option[float64], length int, p plannedColumn) ([]optional.Option[float64], error) {
	minRows := p.spec.MinRows
	if minRows == 0 {
		minRows = p.indicator.MinRows(p.spec.Window)
	}

	if length < minRows {
		return nil, errors.NewInsufficientDataErrorf(minRows, length, p.name,
			"insufficient history for %s: required %d rows, got %d", p.name, minRows, length)
	}

	return p.indicator.Compute(closes, p.spec.Window), nil
}
