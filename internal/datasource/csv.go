package datasource

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"time"

	"github.com/chartscribe-lab/chartscribe/internal/logger"
	"github.com/chartscribe-lab/chartscribe/internal/series"
	"github.com/chartscribe-lab/chartscribe/internal/types"
	"github.com/chartscribe-lab/chartscribe/pkg/errors"
	"github.com/moznion/go-optional"
	"go.uber.org/zap"
)

// CSVDataSource reads daily price history from a headered CSV file.
type CSVDataSource struct {
	path   string
	logger *logger.Logger
}

// NewCSVDataSource creates a CSV data source over the given file path.
func NewCSVDataSource(path string, l *logger.Logger) *CSVDataSource {
	if l == nil {
		l = logger.NewNopLogger()
	}

	return &CSVDataSource{
		path:   path,
		logger: l,
	}
}

// Load implements DataSource. Malformed numeric cells coerce to the missing
// marker with a logged warning; a malformed date, header, or row structure
// fails the whole load.
func (d *CSVDataSource) Load(_ context.Context, start optional.Option[time.Time], end optional.Option[time.Time]) (*series.Table, error) {
	file, err := os.Open(d.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(errors.ErrCodeInputAbsent, err, "price data file is absent: %s", d.path)
		}

		return nil, errors.Wrapf(errors.ErrCodeInputAbsent, err, "price data file is unreadable: %s", d.path)
	}
	defer file.Close()

	reader := csv.NewReader(file)

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.Newf(errors.ErrCodeInputAbsent, "price data file is empty: %s", d.path)
	}
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeIngestFailed, err, "failed to read header of %s", d.path)
	}

	index, err := mapHeader(header)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeIngestFailed, err, "unusable header in %s", d.path)
	}

	var records []types.PriceRecord

	coerced := make(map[string]int)
	row := 1

	for {
		cells, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeIngestFailed, err, "malformed csv row in %s", d.path)
		}

		row++

		date, err := parseDate(cells[index.date])
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeIngestFailed, err, "row %d of %s has an unusable date", row, d.path)
		}

		records = append(records, types.PriceRecord{
			Date:     date,
			Open:     coerceCell(cells[index.open], "Open", coerced),
			High:     coerceCell(cells[index.high], "High", coerced),
			Low:      coerceCell(cells[index.low], "Low", coerced),
			Close:    coerceCell(cells[index.close], "Close", coerced),
			AdjClose: coerceCell(cells[index.adjClose], "Adj Close", coerced),
			Volume:   coerceCell(cells[index.volume], "Volume", coerced),
		})
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

// Close implements DataSource.
func (d *CSVDataSource) Close() error {
	return nil
}

// coerceCell coerces one cell and tallies the failures per column.
func coerceCell(value string, column string, coerced map[string]int) optional.Option[float64] {
	parsed := coerceNumeric(value)
	if parsed.IsNone() {
		coerced[column]++
	}

	return parsed
}
