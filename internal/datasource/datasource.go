// Package datasource loads raw daily price history into series tables.
//
// Two sources exist: a strict CSV reader and a DuckDB view over the same
// files. Both produce identical tables: required source columns mapped by
// header, per-cell numeric coercion into missing markers, and strictly
// ascending unique dates. Rows are never reordered; out-of-order input is
// rejected so a bad feed cannot hide behind a silent sort.
package datasource

import (
	"context"
	"time"

	"github.com/chartscribe-lab/chartscribe/internal/series"
	"github.com/moznion/go-optional"
)

// DataSource is implemented by anything that can produce a price table.
type DataSource interface {
	// Load reads the full history within the optional date bounds.
	Load(ctx context.Context, start optional.Option[time.Time], end optional.Option[time.Time]) (*series.Table, error)
	// Close releases any resources held by the source.
	Close() error
}
