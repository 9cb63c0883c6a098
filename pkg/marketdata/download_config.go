package marketdata

import (
	"encoding/json"
	"time"

	"github.com/chartscribe-lab/chartscribe/pkg/errors"
	"github.com/go-playground/validator/v10"
)

// DownloadConfig describes one requested download in a batch file.
type DownloadConfig struct {
	Ticker    string `json:"ticker" validate:"required"`
	StartDate string `json:"startDate" validate:"required"`
	EndDate   string `json:"endDate"`
	Timespan  string `json:"timespan" validate:"omitempty,oneof=1d 1w 1M"`
}

// BatchDownloadConfig is the JSON document consumed by the download
// command's config flag. It lets one invocation refresh several raw data
// files at once.
type BatchDownloadConfig struct {
	Downloads []DownloadConfig `json:"downloads" validate:"required,min=1,dive"`
}

// downloadDateLayouts are the accepted date formats in batch files.
var downloadDateLayouts = []string{time.DateOnly, time.RFC3339}

func parseDownloadDate(field, value string) (time.Time, error) {
	for _, layout := range downloadDateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, nil
		}
	}

	return time.Time{}, errors.Newf(errors.ErrCodeInvalidParameter, "%s %q is not a date, use YYYY-MM-DD", field, value)
}

// ToDownloadParams converts one batch entry into download parameters. An
// omitted end date means today and an omitted timespan means daily bars.
func (c *DownloadConfig) ToDownloadParams() (DownloadParams, error) {
	startDate, err := parseDownloadDate("startDate", c.StartDate)
	if err != nil {
		return DownloadParams{}, err
	}

	endDate := time.Now()

	if c.EndDate != "" {
		endDate, err = parseDownloadDate("endDate", c.EndDate)
		if err != nil {
			return DownloadParams{}, err
		}
	}

	timespan := TimespanOneDay

	if c.Timespan != "" {
		timespan, err = ParseTimespan(c.Timespan)
		if err != nil {
			return DownloadParams{}, err
		}
	}

	return DownloadParams{
		Ticker:    c.Ticker,
		StartDate: startDate,
		EndDate:   endDate,
		Timespan:  timespan,
	}, nil
}

// ParseBatchConfig parses and validates a batch download document.
func ParseBatchConfig(jsonConfig []byte) (*BatchDownloadConfig, error) {
	var config BatchDownloadConfig
	if err := json.Unmarshal(jsonConfig, &config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidParameter, "failed to parse download config", err)
	}

	validate := validator.New()
	if err := validate.Struct(&config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidParameter, "invalid download config", err)
	}

	return &config, nil
}
