package marketdata

import (
	"testing"

	"github.com/chartscribe-lab/chartscribe/pkg/errors"
	"github.com/polygon-io/client-go/rest/models"
	"github.com/stretchr/testify/suite"
)

type TimespanTestSuite struct {
	suite.Suite
}

func TestTimespanSuite(t *testing.T) {
	suite.Run(t, new(TimespanTestSuite))
}

func (suite *TimespanTestSuite) TestParseTimespan() {
	tests := []struct {
		input    string
		expected Timespan
	}{
		{"1d", TimespanOneDay},
		{"1w", TimespanOneWeek},
		{"1M", TimespanOneMonth},
	}

	for _, tc := range tests {
		suite.Run(tc.input, func() {
			parsed, err := ParseTimespan(tc.input)
			suite.Require().NoError(err)
			suite.Equal(tc.expected, parsed)
		})
	}
}

func (suite *TimespanTestSuite) TestParseTimespanRejectsIntraday() {
	for _, input := range []string{"1s", "1m", "15m", "1h", "", "daily"} {
		suite.Run(input, func() {
			_, err := ParseTimespan(input)
			suite.Require().Error(err)
			suite.True(errors.HasCode(err, errors.ErrCodeInvalidTimespan))
		})
	}
}

func (suite *TimespanTestSuite) TestTimespan() {
	tests := []struct {
		timespan Timespan
		expected models.Timespan
	}{
		{TimespanOneDay, models.Day},
		{TimespanOneWeek, models.Week},
		{TimespanOneMonth, models.Month},
	}

	for _, tc := range tests {
		suite.Run(string(tc.timespan), func() {
			suite.Equal(tc.expected, tc.timespan.Timespan())
		})
	}
}

func (suite *TimespanTestSuite) TestTimespanConstants() {
	suite.Equal(Timespan("1d"), TimespanOneDay)
	suite.Equal(Timespan("1w"), TimespanOneWeek)
	suite.Equal(Timespan("1M"), TimespanOneMonth)
	suite.Len(AllTimespans, 3)
}
