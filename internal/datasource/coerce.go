package datasource

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/chartscribe-lab/chartscribe/internal/types"
	"github.com/chartscribe-lab/chartscribe/pkg/errors"
	"github.com/moznion/go-optional"
)

// dateLayouts are the accepted date formats, tried in order. Raw files from
// brokers and exporters mostly use the first.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"01/02/2006",
}

// parseDate parses a row date. Dates are the row key, so an unparseable one
// is fatal for the whole load.
func parseDate(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return parsed, nil
		}
	}

	return time.Time{}, errors.Newf(errors.ErrCodeIngestFailed, "unparseable date: %q", value)
}

// coerceNumeric turns a raw cell into an optional price value. Anything that
// does not parse as a finite number becomes the missing marker, never zero.
func coerceNumeric(value string) optional.Option[float64] {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return optional.None[float64]()
	}

	return optional.Some(parsed)
}

// filterRange keeps records inside the optional date bounds.
func filterRange(records []types.PriceRecord, start optional.Option[time.Time], end optional.Option[time.Time]) []types.PriceRecord {
	filtered := make([]types.PriceRecord, 0, len(records))
	for _, record := range records {
		if start.IsSome() && record.Date.Before(start.Unwrap()) {
			continue
		}
		if end.IsSome() && record.Date.After(end.Unwrap()) {
			continue
		}

		filtered = append(filtered, record)
	}

	return filtered
}

// columnIndex locates the required source columns inside a header row.
type columnIndex struct {
	date     int
	open     int
	high     int
	low      int
	close    int
	adjClose int
	volume   int
}

// mapHeader resolves the required column positions. Extra columns are
// tolerated; a missing required one fails the load.
func mapHeader(header []string) (columnIndex, error) {
	positions := make(map[string]int, len(header))
	for i, name := range header {
		positions[strings.TrimSpace(name)] = i
	}

	for _, name := range types.RequiredSourceColumns {
		if _, ok := positions[name]; !ok {
			return columnIndex{}, errors.Newf(errors.ErrCodeIngestFailed, "required column %q is missing", name)
		}
	}

	return columnIndex{
		date:     positions["Date"],
		open:     positions["Open"],
		high:     positions["High"],
		low:      positions["Low"],
		close:    positions["Close"],
		adjClose: positions["Adj Close"],
		volume:   positions["Volume"],
	}, nil
}
