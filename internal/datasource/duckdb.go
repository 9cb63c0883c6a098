package datasource

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/chartscribe-lab/chartscribe/internal/logger"
	"github.com/chartscribe-lab/chartscribe/internal/series"
	"github.com/chartscribe-lab/chartscribe/internal/types"
	"github.com/chartscribe-lab/chartscribe/pkg/errors"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/moznion/go-optional"
	"go.uber.org/zap"
)

const rawPricesView = "raw_prices"

// DuckDBDataSource loads daily price history through an in-memory DuckDB
// view over the raw CSV file. Cells are read as text and pushed through the
// same coercion as the plain CSV source, so both sources agree on what
// counts as missing.
type DuckDBDataSource struct {
	db     *sql.DB
	path   string
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

// NewDuckDBDataSource opens an in-memory DuckDB instance and binds a view
// over the given CSV file.
func NewDuckDBDataSource(path string, l *logger.Logger) (*DuckDBDataSource, error) {
	if l == nil {
		l = logger.NewNopLogger()
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeInputAbsent, err, "price data file is absent: %s", path)
	}

	if info.Size() == 0 {
		return nil, errors.Newf(errors.ErrCodeInputAbsent, "price data file is empty: %s", path)
	}

	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to open duckdb", err)
	}

	// Keep the embedded database small; a daily price file is tiny
	if _, err := db.Exec(`
		SET memory_limit='2GB';
		SET threads=2;
	`); err != nil {
		db.Close()

		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to configure duckdb", err)
	}

	d := &DuckDBDataSource{
		db:     db,
		path:   path,
		logger: l,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}

	if err := d.initializeView(); err != nil {
		db.Close()

		return nil, err
	}

	return d, nil
}

// initializeView binds the raw file under a stable view name. all_varchar
// keeps every cell textual so coercion stays in one place.
func (d *DuckDBDataSource) initializeView() error {
	d.logger.Debug("initializing duckdb view", zap.String("path", d.path))

	if _, err := d.db.Exec(fmt.Sprintf(`DROP VIEW IF EXISTS %s;`, rawPricesView)); err != nil {
		return errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to drop existing view", err)
	}

	query := fmt.Sprintf(`
		CREATE VIEW %s AS
		SELECT * FROM read_csv_auto('%s', header=true, all_varchar=true);
	`, rawPricesView, d.path)

	if _, err := d.db.Exec(query); err != nil {
		return errors.Wrapf(errors.ErrCodeIngestFailed, err, "failed to bind view over %s", d.path)
	}

	return d.validateHeader()
}

// validateHeader checks the view exposes every required source column, so a
// bad header fails at construction like it does for the plain CSV source.
func (d *DuckDBDataSource) validateHeader() error {
	rows, err := d.db.Query(fmt.Sprintf(`SELECT * FROM %s LIMIT 0;`, rawPricesView))
	if err != nil {
		return errors.Wrapf(errors.ErrCodeIngestFailed, err, "failed to inspect header of %s", d.path)
	}
	defer rows.Close()

	header, err := rows.Columns()
	if err != nil {
		return errors.Wrapf(errors.ErrCodeIngestFailed, err, "failed to inspect header of %s", d.path)
	}

	if _, err := mapHeader(header); err != nil {
		return errors.Wrapf(errors.ErrCodeIngestFailed, err, "unusable header in %s", d.path)
	}

	return nil
}

// Load implements DataSource.
func (d *DuckDBDataSource) Load(ctx context.Context, start optional.Option[time.Time], end optional.Option[time.Time]) (*series.Table, error) {
	query, args, err := d.sq.
		Select(`"Date"`, `"Open"`, `"High"`, `"Low"`, `"Close"`, `"Adj Close"`, `"Volume"`).
		From(rawPricesView).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build query", err)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to query %s", rawPricesView)
	}
	defer rows.Close()

	var records []types.PriceRecord

	coerced := make(map[string]int)
	row := 1

	for rows.Next() {
		var raw struct {
			date, open, high, low, close, adjClose, volume sql.NullString
		}

		if err := rows.Scan(&raw.date, &raw.open, &raw.high, &raw.low, &raw.close, &raw.adjClose, &raw.volume); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan row", err)
		}

		row++

		date, err := parseDate(raw.date.String)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeIngestFailed, err, "row %d of %s has an unusable date", row, d.path)
		}

		records = append(records, types.PriceRecord{
			Date:     date,
			Open:     coerceNullCell(raw.open, "Open", coerced),
			High:     coerceNullCell(raw.high, "High", coerced),
			Low:      coerceNullCell(raw.low, "Low", coerced),
			Close:    coerceNullCell(raw.close, "Close", coerced),
			AdjClose: coerceNullCell(raw.adjClose, "Adj Close", coerced),
			Volume:   coerceNullCell(raw.volume, "Volume", coerced),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "error iterating rows", err)
	}

	for column, count := range coerced {
		d.logger.Warn("coerced malformed cells to missing",
			zap.String("path", d.path),
			zap.String("column", column),
			zap.Int("cells", count),
		)
	}

	records = filterRange(records, start, end)
	if len(records) == 0 {
		return nil, errors.Newf(errors.ErrCodeInputAbsent, "no usable rows in %s", d.path)
	}

	table, err := series.NewTable(records)
	if err != nil {
		return nil, err
	}

	d.logger.Info("loaded price history",
		zap.String("path", d.path),
		zap.Int("rows", table.Length()),
	)

	return table, nil
}

// Count reports the number of raw rows behind the view, before any date
// filtering.
func (d *DuckDBDataSource) Count(ctx context.Context) (int, error) {
	query, args, err := d.sq.
		Select("COUNT(*)").
		From(rawPricesView).
		ToSql()
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build query", err)
	}

	var count int
	if err := d.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to count rows in %s", rawPricesView)
	}

	return count, nil
}

// Close implements DataSource.
func (d *DuckDBDataSource) Close() error {
	if d.db != nil {
		return d.db.Close()
	}

	return nil
}

// coerceNullCell treats SQL NULL like any other unparseable cell.
func coerceNullCell(value sql.NullString, column string, coerced map[string]int) optional.Option[float64] {
	if !value.Valid {
		coerced[column]++

		return optional.None[float64]()
	}

	return coerceCell(value.String, column, coerced)
}
