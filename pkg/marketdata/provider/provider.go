// Package provider implements the market data vendors the downloader can
// pull historical bars from.
package provider

import (
	"context"
	"time"

	"github.com/chartscribe-lab/chartscribe/pkg/marketdata/writer"
	"github.com/polygon-io/client-go/rest/models"
)

// OnDownloadProgress receives progress callbacks while a download runs.
type OnDownloadProgress = func(current float64, total float64, message string)

// Provider downloads historical bars from one market data vendor.
type Provider interface {
	// ConfigWriter sets the writer the provider persists bars through.
	// It must be called before Download.
	ConfigWriter(w writer.MarketDataWriter)
	// Download fetches bars for the ticker between startDate and endDate
	// and writes them through the configured writer. It returns the path
	// of the finalized output file. The context can be used to cancel
	// the download operation.
	Download(ctx context.Context, ticker string, startDate time.Time, endDate time.Time, timespan models.Timespan, onProgress OnDownloadProgress) (path string, err error)
}
