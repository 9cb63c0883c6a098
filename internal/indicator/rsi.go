package indicator

import (
	"fmt"

	"github.com/chartscribe-lab/chartscribe/internal/types"
	"github.com/moznion/go-optional"
)

// RSI indicator implements the Relative Strength Index calculation.
type RSI struct{}

// NewRSI creates a new RSI indicator.
func NewRSI() Indicator {
	return &RSI{}
}

// Name returns the kind of the indicator.
func (r *RSI) Name() types.IndicatorType {
	return types.IndicatorTypeRSI
}

// ColumnName returns the table column filled for the given window.
func (r *RSI) ColumnName(window int) string {
	return fmt.Sprintf("rsi_%d", window)
}

// MinRows returns the smallest table length that yields any value. Row i
// needs window day-over-day changes, so the first RSI lands on row window
// and needs window+1 rows.
func (r *RSI) MinRows(window int) int {
	return window + 1
}

// Compute derives one value per row from the trailing window of day-over-day
// changes. Gains and losses are averaged over the whole window, counting
// flat days as zero on both sides.
func (r *RSI) Compute(closes []optional.Option[float64], window int) []optional.Option[float64] {
	values := make([]optional.Option[float64], len(closes))
	for i := range closes {
		values[i] = rsiAt(closes, i, window)
	}

	return values
}

// rsiAt needs closes[i-window .. i] all present: window changes ending at
// row i. Any gap inside that range leaves the row empty.
func rsiAt(closes []optional.Option[float64], i, window int) optional.Option[float64] {
	if i < window {
		return optional.None[float64]()
	}

	gainSum := 0.0
	lossSum := 0.0

	for j := i - window + 1; j <= i; j++ {
		if closes[j-1].IsNone() || closes[j].IsNone() {
			return optional.None[float64]()
		}

		change := closes[j].Unwrap() - closes[j-1].Unwrap()
		if change > 0 {
			gainSum += change
		} else {
			lossSum += -change
		}
	}

	avgGain := gainSum / float64(window)
	avgLoss := lossSum / float64(window)

	if avgGain == 0 && avgLoss == 0 {
		return optional.Some(50.0) // Flat window, neutral
	}

	if avgLoss == 0 {
		return optional.Some(100.0) // Perfect uptrend
	}

	rs := avgGain / avgLoss

	return optional.Some(100 - (100 / (1 + rs)))
}
