package writer

import (
	"database/sql"
	"fmt"

	"github.com/chartscribe-lab/chartscribe/internal/logger"
	"github.com/chartscribe-lab/chartscribe/internal/types"
	"github.com/chartscribe-lab/chartscribe/pkg/errors"
	"github.com/google/uuid"
	_ "github.com/marcboeker/go-duckdb"
	"go.uber.org/zap"
)

// CSVWriter stages bars in an in-memory DuckDB table and exports them on
// Finalize as a headered CSV file in the column layout the ingestion
// loaders expect.
type CSVWriter struct {
	db         *sql.DB
	tx         *sql.Tx
	stmt       *sql.Stmt
	outputPath string
	rows       int
	logger     *logger.Logger
}

// NewCSVWriter creates a writer that exports to outputPath on Finalize.
func NewCSVWriter(outputPath string, l *logger.Logger) MarketDataWriter {
	if l == nil {
		l = logger.NewNopLogger()
	}

	return &CSVWriter{
		outputPath: outputPath,
		logger:     l,
	}
}

// Initialize opens the staging database, creates the bar table, begins a
// transaction and prepares the insert statement.
func (w *CSVWriter) Initialize() (err error) {
	w.db, err = sql.Open("duckdb", ":memory:")
	if err != nil {
		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to open staging database", err)
	}

	_, err = w.db.Exec(`
		CREATE TABLE IF NOT EXISTS market_data (
			id TEXT,
			time TIMESTAMP,
			symbol TEXT,
			open DOUBLE,
			high DOUBLE,
			low DOUBLE,
			close DOUBLE,
			volume DOUBLE
		)
	`)
	if err != nil {
		w.db.Close()

		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to create staging table", err)
	}

	w.tx, err = w.db.Begin()
	if err != nil {
		w.db.Close()

		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to begin transaction", err)
	}

	w.stmt, err = w.tx.Prepare(`
		INSERT INTO market_data (id, time, symbol, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		w.tx.Rollback()
		w.db.Close()

		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to prepare insert", err)
	}

	return nil
}

// Write stages a single bar inside the open transaction.
func (w *CSVWriter) Write(data types.MarketData) error {
	if w.stmt == nil {
		return errors.New(errors.ErrCodeMarketDataWriteFailed, "writer not initialized")
	}

	_, err := w.stmt.Exec(
		uuid.New().String(),
		data.Time,
		data.Symbol,
		data.Open,
		data.High,
		data.Low,
		data.Close,
		data.Volume,
	)
	if err != nil {
		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to stage bar", err)
	}

	w.rows++

	return nil
}

// Finalize commits the staged rows and exports them as CSV. Providers hand
// over adjusted bars, so the close value doubles as the adjusted close.
func (w *CSVWriter) Finalize() (string, error) {
	if w.tx == nil {
		return "", errors.New(errors.ErrCodeMarketDataWriteFailed, "writer not initialized")
	}

	if err := w.tx.Commit(); err != nil {
		w.tx.Rollback()

		return "", errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to commit staged bars", err)
	}

	w.tx = nil

	exportSQL := fmt.Sprintf(`
		COPY (
			SELECT
				CAST(time AS DATE) AS "Date",
				open AS "Open",
				high AS "High",
				low AS "Low",
				close AS "Close",
				close AS "Adj Close",
				volume AS "Volume"
			FROM market_data
			ORDER BY time
		) TO '%s' (FORMAT CSV, HEADER)
	`, w.outputPath)

	if _, err := w.db.Exec(exportSQL); err != nil {
		return "", errors.Wrapf(errors.ErrCodeMarketDataWriteFailed, err, "failed to export CSV to %s", w.outputPath)
	}

	w.logger.Info("exported price history",
		zap.String("path", w.outputPath),
		zap.Int("rows", w.rows))

	return w.outputPath, nil
}

// Close releases the statement, any open transaction and the database.
// Closing twice is safe.
func (w *CSVWriter) Close() error {
	var closeErrors []error

	if w.stmt != nil {
		if err := w.stmt.Close(); err != nil {
			closeErrors = append(closeErrors, err)
		}

		w.stmt = nil
	}

	// An active transaction means Finalize was never reached; roll it back.
	if w.tx != nil {
		if err := w.tx.Rollback(); err != nil {
			w.logger.Warn("failed to roll back staging transaction", zap.Error(err))
		}

		w.tx = nil
	}

	if w.db != nil {
		if err := w.db.Close(); err != nil {
			closeErrors = append(closeErrors, err)
		}

		w.db = nil
	}

	if len(closeErrors) > 0 {
		msg := "errors closing writer:"
		for _, e := range closeErrors {
			msg += fmt.Sprintf("\n- %v", e)
		}

		return errors.New(errors.ErrCodeMarketDataWriteFailed, msg)
	}

	return nil
}

// GetOutputPath returns the configured output file path.
func (w *CSVWriter) GetOutputPath() string {
	return w.outputPath
}
