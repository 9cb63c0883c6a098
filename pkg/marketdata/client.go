// Package marketdata downloads historical price data from external
// providers and exports it as the raw CSV files the analysis pipeline
// ingests.
package marketdata

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chartscribe-lab/chartscribe/internal/logger"
	"github.com/chartscribe-lab/chartscribe/pkg/errors"
	"github.com/chartscribe-lab/chartscribe/pkg/marketdata/provider"
	"github.com/chartscribe-lab/chartscribe/pkg/marketdata/writer"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// ProviderType defines the type of market data provider.
type ProviderType string

const (
	ProviderPolygon ProviderType = "polygon"
	ProviderBinance ProviderType = "binance"
)

// WriterType defines the output format for downloaded data.
type WriterType string

const (
	WriterCSV WriterType = "csv"
)

// ClientConfig holds the configuration for the market data client.
type ClientConfig struct {
	ProviderType  ProviderType `validate:"required,oneof=polygon binance"`
	WriterType    WriterType   `validate:"required,oneof=csv"`
	DataPath      string       `validate:"required"`
	PolygonApiKey string       `validate:"required_if=ProviderType polygon"`
}

// DownloadParams holds the parameters for a market data download request.
type DownloadParams struct {
	Ticker    string    `validate:"required"`
	StartDate time.Time `validate:"required"`
	EndDate   time.Time `validate:"required,gtfield=StartDate"`
	Timespan  Timespan  `validate:"required,oneof=1d 1w 1M"`
}

// Client downloads data from a provider and stores it through a writer.
type Client struct {
	provider   provider.Provider
	config     ClientConfig
	validate   *validator.Validate
	logger     *logger.Logger
	onProgress provider.OnDownloadProgress
}

// NewClient creates a new market data client with the given configuration.
// onProgress may be nil when no progress reporting is wanted.
func NewClient(config ClientConfig, onProgress provider.OnDownloadProgress, l *logger.Logger) (*Client, error) {
	if l == nil {
		l = logger.NewNopLogger()
	}

	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid client configuration", err)
	}

	var marketProvider provider.Provider

	var err error

	switch config.ProviderType {
	case ProviderPolygon:
		marketProvider, err = provider.NewPolygonClient(config.PolygonApiKey)
		if err != nil {
			return nil, err
		}
	case ProviderBinance:
		marketProvider, err = provider.NewBinanceClient()
		if err != nil {
			return nil, err
		}
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported provider type: %s", config.ProviderType)
	}

	return &Client{
		provider:   marketProvider,
		config:     config,
		validate:   validate,
		logger:     l,
		onProgress: onProgress,
	}, nil
}

// Download fetches history for the given parameters and returns the path of
// the written file. The context can be used to cancel the download.
func (c *Client) Download(ctx context.Context, params DownloadParams) (string, error) {
	if err := c.validate.Struct(params); err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidParameter, "invalid download parameters", err)
	}

	marketWriter, err := c.setupWriter(params)
	if err != nil {
		return "", err
	}

	c.provider.ConfigWriter(marketWriter)

	path, err := c.provider.Download(
		ctx,
		params.Ticker,
		params.StartDate,
		params.EndDate,
		params.Timespan.Timespan(),
		c.onProgress,
	)
	if err != nil {
		return "", err
	}

	c.logger.Info("download finished",
		zap.String("ticker", params.Ticker),
		zap.String("path", path))

	return path, nil
}

// setupWriter initializes the appropriate market data writer based on
// configuration.
func (c *Client) setupWriter(params DownloadParams) (writer.MarketDataWriter, error) {
	switch c.config.WriterType {
	case WriterCSV:
		// Construct filename: TICKER_START_END_TIMESPAN.csv
		outputFileName := fmt.Sprintf("%s_%s_%s_%s.csv",
			params.Ticker,
			params.StartDate.Format(time.DateOnly),
			params.EndDate.Format(time.DateOnly),
			params.Timespan)
		outputPath := filepath.Join(c.config.DataPath, outputFileName)

		if _, err := os.Stat(c.config.DataPath); os.IsNotExist(err) {
			if err := os.MkdirAll(c.config.DataPath, 0755); err != nil {
				return nil, errors.Wrapf(errors.ErrCodeMarketDataWriteFailed, err, "failed to create data directory %s", c.config.DataPath)
			}
		}

		return writer.NewCSVWriter(outputPath, c.logger), nil
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidConfiguration, "unsupported writer type: %s", c.config.WriterType)
	}
}
