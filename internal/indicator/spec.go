package indicator

import (
	"github.com/chartscribe-lab/chartscribe/internal/types"
	"github.com/chartscribe-lab/chartscribe/pkg/errors"
)

// Spec selects one indicator computation over a price table.
type Spec struct {
	// Kind of indicator to compute.
	Kind types.IndicatorType `json:"kind" yaml:"kind" jsonschema:"required,enum=sma,enum=rsi" validate:"required,oneof=sma rsi"`
	// Window is the trailing window length in rows.
	Window int `json:"window" yaml:"window" jsonschema:"required" validate:"required,min=1"`
	// MinRows overrides the minimum table length required before any value
	// is produced. Zero keeps the indicator's own default.
	MinRows int `json:"min_rows,omitempty" yaml:"min_rows,omitempty" validate:"omitempty,min=1"`
}

// Validate checks the window parameters. Kind resolution is left to the
// registry so the set of known indicators stays in one place.
func (s Spec) Validate() error {
	if s.Window < 1 {
		return errors.Newf(errors.ErrCodeInvalidPeriod, "window must be a positive integer, got %d", s.Window)
	}
	if s.MinRows < 0 {
		return errors.Newf(errors.ErrCodeInvalidPeriod, "min_rows cannot be negative, got %d", s.MinRows)
	}

	return nil
}

// DefaultSpecs is the stock analysis set: short and long simple moving
// averages plus a 14-day RSI.
func DefaultSpecs() []Spec {
	return []Spec{
		{Kind: types.IndicatorTypeSMA, Window: 5},
		{Kind: types.IndicatorTypeSMA, Window: 20},
		{Kind: types.IndicatorTypeRSI, Window: 14},
	}
}
