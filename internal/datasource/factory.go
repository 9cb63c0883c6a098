package datasource

import (
	"github.com/chartscribe-lab/chartscribe/internal/logger"
	"github.com/chartscribe-lab/chartscribe/pkg/errors"
)

// New constructs the data source named by kind. Supported kinds are "csv"
// and "duckdb".
func New(kind, path string, l *logger.Logger) (DataSource, error) {
	switch kind {
	case "csv":
		return NewCSVDataSource(path, l), nil
	case "duckdb":
		return NewDuckDBDataSource(path, l)
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidConfiguration, "unknown data source kind: %s", kind)
	}
}
