package provider

import (
	"context"
	"fmt"
	"strconv"
	"time"

	binance "github.com/adshao/go-binance/v2"
	"github.com/chartscribe-lab/chartscribe/internal/types"
	"github.com/chartscribe-lab/chartscribe/pkg/errors"
	"github.com/chartscribe-lab/chartscribe/pkg/marketdata/writer"
	"github.com/polygon-io/client-go/rest/models"
)

// binancePageSize is the kline page size served by the public API.
const binancePageSize = 500

// BinanceClient downloads klines from the Binance public API. The public
// market data endpoints need no authentication.
type BinanceClient struct {
	client *binance.Client
	writer writer.MarketDataWriter
}

func NewBinanceClient() (Provider, error) {
	return &BinanceClient{
		client: binance.NewClient("", ""),
		writer: nil,
	}, nil
}

func (c *BinanceClient) ConfigWriter(w writer.MarketDataWriter) {
	c.writer = w
}

// Download fetches klines page by page and writes each bar. Binance serves
// at most 500 klines per request, so the window advances past the last
// close time until the range is covered.
func (c *BinanceClient) Download(ctx context.Context, ticker string, startDate time.Time, endDate time.Time, timespan models.Timespan, onProgress OnDownloadProgress) (path string, err error) {
	interval, err := binanceInterval(timespan)
	if err != nil {
		return "", err
	}

	if c.writer == nil {
		return "", errors.New(errors.ErrCodeInvalidConfiguration, "no writer configured for BinanceClient, call ConfigWriter first")
	}

	if err = c.writer.Initialize(); err != nil {
		return "", err
	}

	defer func() {
		if cerr := c.writer.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	startTimeMillis := startDate.UnixMilli()
	endTimeMillis := endDate.UnixMilli()
	currentStartTime := startTimeMillis

	for {
		klines, fetchErr := c.client.NewKlinesService().
			Symbol(ticker).
			Interval(interval).
			StartTime(currentStartTime).
			EndTime(endTimeMillis).
			Do(ctx)
		if fetchErr != nil {
			return "", errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, fetchErr, "failed to fetch %s klines", ticker)
		}

		if err = c.writeKlines(ticker, klines); err != nil {
			return "", err
		}

		if onProgress != nil {
			onProgress(float64(currentStartTime-startTimeMillis), float64(endTimeMillis-startTimeMillis),
				fmt.Sprintf("Downloading %s klines from Binance", ticker))
		}

		if len(klines) < binancePageSize {
			break
		}

		// Advance past the last kline's close time to avoid duplicates.
		currentStartTime = klines[len(klines)-1].CloseTime + 1
		if currentStartTime >= endTimeMillis {
			break
		}
	}

	outputPath, err := c.writer.Finalize()
	if err != nil {
		return "", err
	}

	return outputPath, nil
}

// writeKlines converts one page of klines and writes each bar.
func (c *BinanceClient) writeKlines(ticker string, klines []*binance.Kline) error {
	for _, k := range klines {
		bar, err := klineToMarketData(ticker, k)
		if err != nil {
			return err
		}

		if err := c.writer.Write(bar); err != nil {
			return err
		}
	}

	return nil
}

// klineToMarketData parses the string valued kline fields into a bar.
func klineToMarketData(ticker string, k *binance.Kline) (types.MarketData, error) {
	open, err := parseKlineField(ticker, k.OpenTime, "open", k.Open)
	if err != nil {
		return types.MarketData{}, err
	}

	high, err := parseKlineField(ticker, k.OpenTime, "high", k.High)
	if err != nil {
		return types.MarketData{}, err
	}

	low, err := parseKlineField(ticker, k.OpenTime, "low", k.Low)
	if err != nil {
		return types.MarketData{}, err
	}

	closePrice, err := parseKlineField(ticker, k.OpenTime, "close", k.Close)
	if err != nil {
		return types.MarketData{}, err
	}

	volume, err := parseKlineField(ticker, k.OpenTime, "volume", k.Volume)
	if err != nil {
		return types.MarketData{}, err
	}

	return types.MarketData{
		Id:     "",
		Symbol: ticker,
		Time:   time.UnixMilli(k.OpenTime),
		Open:   open,
		High:   high,
		Low:    low,
		Close:  closePrice,
		Volume: volume,
	}, nil
}

func parseKlineField(ticker string, openTime int64, name, value string) (float64, error) {
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, errors.Wrapf(errors.ErrCodeMarketDataParseFailed, err, "malformed %s in %s kline at %d", name, ticker, openTime)
	}

	return parsed, nil
}

// binanceInterval maps an aggregate timespan onto a Binance kline interval.
// Ref: https://binance-docs.github.io/apidocs/spot/en/#kline-candlestick-data
func binanceInterval(timespan models.Timespan) (string, error) {
	switch timespan {
	case models.Day:
		return "1d", nil
	case models.Week:
		return "1w", nil
	case models.Month:
		return "1M", nil
	default:
		return "", errors.Newf(errors.ErrCodeInvalidTimespan, "unsupported timespan for Binance: %s", timespan)
	}
}
