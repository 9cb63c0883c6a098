package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/chartscribe-lab/chartscribe/pkg/marketdata"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
)

// downloadAction builds the market data client and runs every requested
// download, either the single ticker named by flags or the whole batch file.
func downloadAction(ctx context.Context, cmd *cli.Command) error {
	providerFlag := cmd.String("provider")

	clientConfig := marketdata.ClientConfig{
		ProviderType:  marketdata.ProviderType(providerFlag),
		WriterType:    marketdata.WriterType(cmd.String("writer")),
		DataPath:      cmd.String("data"),
		PolygonApiKey: os.Getenv("POLYGON_API_KEY"),
	}

	client, err := marketdata.NewClient(clientConfig, nil, nil)
	if err != nil {
		return fmt.Errorf("failed to create market data client: %w", err)
	}

	allParams, err := collectDownloadParams(cmd)
	if err != nil {
		return err
	}

	for _, params := range allParams {
		log.Printf("Starting download for %s from %s to %s using %s provider...",
			params.Ticker, params.StartDate.Format("2006-01-02"), params.EndDate.Format("2006-01-02"), providerFlag)

		outputPath, err := client.Download(ctx, params)
		if err != nil {
			return fmt.Errorf("download failed for %s: %w", params.Ticker, err)
		}

		log.Printf("Wrote %s", outputPath)
	}

	return nil
}

// collectDownloadParams resolves what to download. A config file wins over
// the single-ticker flags; without one, ticker and start date are required.
func collectDownloadParams(cmd *cli.Command) ([]marketdata.DownloadParams, error) {
	if configPath := cmd.String("config"); configPath != "" {
		content, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read batch config: %w", err)
		}

		batch, err := marketdata.ParseBatchConfig(content)
		if err != nil {
			return nil, fmt.Errorf("failed to parse batch config: %w", err)
		}

		allParams := make([]marketdata.DownloadParams, 0, len(batch.Downloads))

		for _, download := range batch.Downloads {
			params, err := download.ToDownloadParams()
			if err != nil {
				return nil, err
			}

			allParams = append(allParams, params)
		}

		return allParams, nil
	}

	ticker := cmd.String("ticker")
	if ticker == "" {
		return nil, fmt.Errorf("either --ticker or --config is required")
	}

	startDate := cmd.Timestamp("start")
	if startDate.IsZero() {
		return nil, fmt.Errorf("--start is required when downloading a single ticker")
	}

	timespan, err := marketdata.ParseTimespan(cmd.String("timespan"))
	if err != nil {
		return nil, err
	}

	return []marketdata.DownloadParams{{
		Ticker:    ticker,
		StartDate: startDate,
		EndDate:   cmd.Timestamp("end"),
		Timespan:  timespan,
	}}, nil
}

func main() {
	// A .env file can carry POLYGON_API_KEY in development setups.
	_ = godotenv.Load()

	cmd := &cli.Command{
		Name:  "download",
		Usage: "Download historical price data for analysis",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "ticker",
				Aliases: []string{"t"},
				Usage:   "Ticker symbol to download",
			},
			&cli.TimestampFlag{
				Name:    "start",
				Aliases: []string{"s"},
				Usage:   "Start date in `YYYY-MM-DD` format",
				Config: cli.TimestampConfig{
					Layouts: []string{"2006-01-02"},
				},
			},
			&cli.TimestampFlag{
				Name:    "end",
				Aliases: []string{"e"},
				Usage:   "End date in `YYYY-MM-DD` format. Defaults to today.",
				Value:   time.Now(),
				Config: cli.TimestampConfig{
					Layouts: []string{"2006-01-02"},
				},
			},
			&cli.StringFlag{
				Name:  "timespan",
				Usage: fmt.Sprintf("Bar size, one of %v", marketdata.AllTimespans),
				Value: string(marketdata.TimespanOneDay),
			},
			&cli.StringFlag{
				Name:    "provider",
				Aliases: []string{"p"},
				Usage:   fmt.Sprintf("Data provider to use (e.g., %s, %s)", marketdata.ProviderPolygon, marketdata.ProviderBinance),
				Value:   string(marketdata.ProviderPolygon),
			},
			&cli.StringFlag{
				Name:    "writer",
				Aliases: []string{"w"},
				Usage:   fmt.Sprintf("Output format (e.g., %s)", marketdata.WriterCSV),
				Value:   string(marketdata.WriterCSV),
			},
			&cli.StringFlag{
				Name:    "data",
				Aliases: []string{"d"},
				Usage:   "Path to the data output directory",
				Value:   "data",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a JSON batch file listing several downloads",
			},
		},
		Action: downloadAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
