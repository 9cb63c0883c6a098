package indicator

import (
	"github.com/chartscribe-lab/chartscribe/internal/types"
	"github.com/moznion/go-optional"
)

// Indicator interface defines methods that any technical indicator must implement
type Indicator interface {
	// Name returns the kind of the indicator
	Name() types.IndicatorType
	// ColumnName returns the table column the indicator fills for a window
	ColumnName(window int) string
	// MinRows returns the smallest table length that yields any value for a window
	MinRows(window int) int
	// Compute derives one optional value per input row from aligned close prices
	Compute(closes []optional.Option[float64], window int) []optional.Option[float64]
}
