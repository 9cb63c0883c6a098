package marketdata

import (
	"github.com/chartscribe-lab/chartscribe/pkg/errors"
	"github.com/polygon-io/client-go/rest/models"
)

// Timespan names a bar interval the downloader can fetch. The analysis
// table keys rows by date, so only daily and coarser bars are supported.
type Timespan string

const (
	TimespanOneDay   Timespan = "1d"
	TimespanOneWeek  Timespan = "1w"
	TimespanOneMonth Timespan = "1M"
)

// AllTimespans lists the supported bar intervals.
var AllTimespans = []Timespan{TimespanOneDay, TimespanOneWeek, TimespanOneMonth}

// ParseTimespan converts a user supplied interval string into a Timespan.
func ParseTimespan(s string) (Timespan, error) {
	switch Timespan(s) {
	case TimespanOneDay, TimespanOneWeek, TimespanOneMonth:
		return Timespan(s), nil
	default:
		return "", errors.Newf(errors.ErrCodeInvalidTimespan, "unsupported timespan %q, expected one of 1d, 1w or 1M", s)
	}
}

// Timespan maps the interval onto a polygon aggregate timespan.
func (t Timespan) Timespan() models.Timespan {
	switch t {
	case TimespanOneWeek:
		return models.Week
	case TimespanOneMonth:
		return models.Month
	default:
		return models.Day
	}
}
