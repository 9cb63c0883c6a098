// Package testhelper provides shared fixtures for pipeline end to end tests.
package testhelper

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/chartscribe-lab/chartscribe/internal/types"
	"github.com/chartscribe-lab/chartscribe/mocks"
	"github.com/moznion/go-optional"
	"github.com/stretchr/testify/suite"
	"gopkg.in/yaml.v3"
)

// E2ETestSuite is a base test suite for pipeline E2E tests.
type E2ETestSuite struct {
	suite.Suite
}

// WritePriceCSV writes records as a raw price CSV at path. Missing cells
// become empty fields.
func (s *E2ETestSuite) WritePriceCSV(path string, records []types.PriceRecord) {
	file, err := os.Create(path)
	s.Require().NoError(err)
	defer file.Close()

	w := csv.NewWriter(file)
	s.Require().NoError(w.Write(types.RequiredSourceColumns))

	for _, record := range records {
		row := []string{record.Date.Format(time.DateOnly)}
		for _, cell := range []optional.Option[float64]{
			record.Open, record.High, record.Low, record.Close, record.AdjClose, record.Volume,
		} {
			if cell.IsNone() {
				row = append(row, "")
				continue
			}
			row = append(row, strconv.FormatFloat(cell.Unwrap(), 'f', -1, 64))
		}

		s.Require().NoError(w.Write(row))
	}

	w.Flush()
	s.Require().NoError(w.Error())
}

// GenerateFixture writes count days of generated prices under dir and returns
// the file path.
func (s *E2ETestSuite) GenerateFixture(dir string, count int) string {
	gen := mocks.NewDataGenerator(7)
	genConfig := mocks.DefaultConfig()
	genConfig.Count = count

	path := filepath.Join(dir, "prices.csv")
	s.WritePriceCSV(path, gen.Generate(genConfig))

	return path
}

// ReadRunSummaries reads back a run summary file.
func (s *E2ETestSuite) ReadRunSummaries(path string) []types.RunSummary {
	content, err := os.ReadFile(path)
	s.Require().NoError(err)

	var summaries []types.RunSummary
	s.Require().NoError(yaml.Unmarshal(content, &summaries))

	return summaries
}
