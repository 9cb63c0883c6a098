package datasource

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/chartscribe-lab/chartscribe/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDataSourceByKind(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prices.csv")
	require.NoError(t, os.WriteFile(path, []byte(wellFormedCSV), 0644))

	csvSource, err := New("csv", path, nil)
	require.NoError(t, err)
	assert.IsType(t, &CSVDataSource{}, csvSource)

	duckdbSource, err := New("duckdb", path, nil)
	require.NoError(t, err)
	assert.IsType(t, &DuckDBDataSource{}, duckdbSource)
	require.NoError(t, duckdbSource.Close())

	_, err = New("parquet", path, nil)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}
