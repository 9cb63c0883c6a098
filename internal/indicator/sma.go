package indicator

import (
	"fmt"

	"github.com/chartscribe-lab/chartscribe/internal/types"
	"github.com/moznion/go-optional"
)

// SMA indicator implements Simple Moving Average calculation.
type SMA struct{}

// NewSMA creates a new SMA indicator.
func NewSMA() Indicator {
	return &SMA{}
}

// Name returns the kind of the indicator.
func (s *SMA) Name() types.IndicatorType {
	return types.IndicatorTypeSMA
}

// ColumnName returns the table column filled for the given window.
func (s *SMA) ColumnName(window int) string {
	return fmt.Sprintf("sma_%d", window)
}

// MinRows returns the smallest table length that yields any value. The first
// SMA lands on row window-1, so window rows are enough for one value.
func (s *SMA) MinRows(window int) int {
	return window
}

// Compute derives one value per row. A row holds the mean of the trailing
// window closes; rows without a full window, or with any missing close
// inside it, stay empty.
func (s *SMA) Compute(closes []optional.Option[float64], window int) []optional.Option[float64] {
	values := make([]optional.Option[float64], len(closes))
	for i := range closes {
		values[i] = smaAt(closes, i, window)
	}

	return values
}

func smaAt(closes []optional.Option[float64], i, window int) optional.Option[float64] {
	if i < window-1 {
		return optional.None[float64]()
	}

	sum := 0.0
	for j := i - window + 1; j <= i; j++ {
		if closes[j].IsNone() {
			return optional.None[float64]()
		}
		sum += closes[j].Unwrap()
	}

	return optional.Some(sum / float64(window))
}
