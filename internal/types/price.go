package types

import (
	"time"

	"github.com/moznion/go-optional"
)

// Canonical column names for raw price data. Ingestion maps source
// headers onto these; everything downstream addresses columns by them.
const (
	ColumnOpen     = "open"
	ColumnHigh     = "high"
	ColumnLow      = "low"
	ColumnClose    = "close"
	ColumnAdjClose = "adj_close"
	ColumnVolume   = "volume"
)

// RequiredSourceColumns lists the headers a raw daily price file must carry,
// in their conventional order.
var RequiredSourceColumns = []string{"Date", "Open", "High", "Low", "Close", "Adj Close", "Volume"}

// PriceRecord is one day of raw price history. The date is the unique row
// key. Numeric fields are optional: a cell that failed numeric coercion at
// ingestion is None, never zero, so downstream consumers can tell an absent
// value from a zero one.
type PriceRecord struct {
	Date     time.Time
	Open     optional.Option[float64]
	High     optional.Option[float64]
	Low      optional.Option[float64]
	Close    optional.Option[float64]
	AdjClose optional.Option[float64]
	Volume   optional.Option[float64]
}

// Value returns the named price field of the record. Unrecognized names
// report false.
func (r PriceRecord) Value(column string) (optional.Option[float64], bool) {
	switch column {
	case ColumnOpen:
		return r.Open, true
	case ColumnHigh:
		return r.High, true
	case ColumnLow:
		return r.Low, true
	case ColumnClose:
		return r.Close, true
	case ColumnAdjClose:
		return r.AdjClose, true
	case ColumnVolume:
		return r.Volume, true
	default:
		return optional.None[float64](), false
	}
}
