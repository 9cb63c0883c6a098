package indicator

import (
	"testing"

	"github.com/chartscribe-lab/chartscribe/internal/types"
	"github.com/moznion/go-optional"
	"github.com/stretchr/testify/suite"
)

type RSIUnitTestSuite struct {
	suite.Suite
}

func TestRSIUnitSuite(t *testing.T) {
	suite.Run(t, new(RSIUnitTestSuite))
}

func (suite *RSIUnitTestSuite) TestName() {
	rsi := NewRSI()
	suite.Equal(types.IndicatorTypeRSI, rsi.Name())
}

func (suite *RSIUnitTestSuite) TestColumnName() {
	rsi := NewRSI()
	suite.Equal("rsi_14", rsi.ColumnName(14))
	suite.Equal("rsi_7", rsi.ColumnName(7))
}

func (suite *RSIUnitTestSuite) TestMinRows() {
	rsi := NewRSI()
	// window changes need window+1 closes
	suite.Equal(15, rsi.MinRows(14))
	suite.Equal(4, rsi.MinRows(3))
}

func (suite *RSIUnitTestSuite) TestComputeStrictlyRising() {
	prices := make([]float64, 16)
	for i := range prices {
		prices[i] = 100 + float64(i)
	}

	rsi := NewRSI()
	values := rsi.Compute(someCloses(prices...), 14)

	suite.Len(values, 16)
	for i := 0; i < 14; i++ {
		suite.True(values[i].IsNone(), "row %d should be empty", i)
	}
	// Only gains inside the window: perfect uptrend
	suite.InDelta(100.0, values[14].Unwrap(), 1e-9)
	suite.InDelta(100.0, values[15].Unwrap(), 1e-9)
}

func (suite *RSIUnitTestSuite) TestComputeStrictlyFalling() {
	prices := make([]float64, 16)
	for i := range prices {
		prices[i] = 200 - float64(i)
	}

	rsi := NewRSI()
	values := rsi.Compute(someCloses(prices...), 14)

	suite.InDelta(0.0, values[14].Unwrap(), 1e-9)
}

func (suite *RSIUnitTestSuite) TestComputeConstantSeries() {
	prices := make([]float64, 16)
	for i := range prices {
		prices[i] = 150
	}

	rsi := NewRSI()
	values := rsi.Compute(someCloses(prices...), 14)

	// No gains and no losses reads as neutral, not division by zero
	suite.InDelta(50.0, values[14].Unwrap(), 1e-9)
	suite.InDelta(50.0, values[15].Unwrap(), 1e-9)
}

func (suite *RSIUnitTestSuite) TestComputeMixedWindow() {
	// Changes: +1, +1, -1, +2
	rsi := NewRSI()
	values := rsi.Compute(someCloses(100, 101, 102, 101, 103), 3)

	suite.True(values[0].IsNone())
	suite.True(values[1].IsNone())
	suite.True(values[2].IsNone())
	// Row 3: gains 2, losses 1 over 3 changes
	suite.InDelta(66.6666666667, values[3].Unwrap(), 1e-9)
	// Row 4: gains 3, losses 1 over 3 changes
	suite.InDelta(75.0, values[4].Unwrap(), 1e-9)
}

func (suite *RSIUnitTestSuite) TestComputeMissingInputPropagates() {
	closes := someCloses(100, 101, 102, 103, 104, 105, 106, 107)
	closes[3] = optional.None[float64]()

	rsi := NewRSI()
	values := rsi.Compute(closes, 3)

	// Rows whose change window touches the gap stay empty
	suite.True(values[3].IsNone())
	suite.True(values[4].IsNone())
	suite.True(values[5].IsNone())
	suite.True(values[6].IsNone())
	// First window fully past the gap: rows 4..7 all present
	suite.InDelta(100.0, values[7].Unwrap(), 1e-9)
}

func (suite *RSIUnitTestSuite) TestComputeShortSeries() {
	rsi := NewRSI()
	values := rsi.Compute(someCloses(100, 101, 102), 14)

	suite.Len(values, 3)
	for _, value := range values {
		suite.True(value.IsNone())
	}
}

func (suite *RSIUnitTestSuite) TestComputeEmptyInput() {
	rsi := NewRSI()
	values := rsi.Compute(nil, 14)
	suite.Empty(values)
}
