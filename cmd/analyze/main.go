package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/chartscribe-lab/chartscribe/internal/config"
	"github.com/chartscribe-lab/chartscribe/internal/datasource"
	"github.com/chartscribe-lab/chartscribe/internal/logger"
	"github.com/chartscribe-lab/chartscribe/internal/pipeline"
	"github.com/chartscribe-lab/chartscribe/internal/report"
	"github.com/chartscribe-lab/chartscribe/internal/types"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/urfave/cli/v3"
)

const defaultConfigPath = "config/chartscribe-config.yaml"

// sharedFlags apply to both the run and watch subcommands.
func sharedFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to the pipeline config file",
			Value:   defaultConfigPath,
		},
		&cli.StringFlag{
			Name:    "data",
			Aliases: []string{"d"},
			Usage:   "Raw price file, overrides the config",
		},
		&cli.BoolFlag{
			Name:  "no-report",
			Usage: "Skip the language model and stop after preparing the excerpt",
		},
		&cli.StringFlag{
			Name:    "summary",
			Aliases: []string{"s"},
			Usage:   "Write run summaries of this invocation to the given YAML file",
		},
	}
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if dataPath := cmd.String("data"); dataPath != "" {
		cfg.Data.RawDataPath = dataPath
	}

	return cfg, nil
}

// runOnce executes one full pipeline run against a fresh data source.
func runOnce(ctx context.Context, cfg *config.Config, l *logger.Logger, noReport bool) (*pipeline.Result, types.RunSummary, error) {
	source, err := datasource.New(string(cfg.Data.Source), cfg.Data.RawDataPath, l)
	if err != nil {
		return nil, types.RunSummary{}, fmt.Errorf("failed to open data source: %w", err)
	}
	defer source.Close()

	p := pipeline.NewPipeline(l)

	if err := p.SetDataSource(source); err != nil {
		return nil, types.RunSummary{}, err
	}

	if err := p.SetSpecs(cfg.Indicators); err != nil {
		return nil, types.RunSummary{}, err
	}

	if err := p.SetDateRange(cfg.Data.StartDate, cfg.Data.EndDate); err != nil {
		return nil, types.RunSummary{}, err
	}

	if err := p.SetAnalysisPeriodDays(cfg.Report.AnalysisPeriodDays); err != nil {
		return nil, types.RunSummary{}, err
	}

	if !noReport {
		p.SetGenerator(report.NewOllamaGenerator(cfg.Report.OllamaURL, cfg.Report.LLMModelID, cfg.Report.Timeout(), l))
	}

	result, err := p.Run(ctx)
	if err != nil {
		return nil, types.RunSummary{}, err
	}

	summary := result.Summary(cfg.Data.RawDataPath, cfg.Report.LLMModelID, cfg.Report.AnalysisPeriodDays)

	return result, summary, nil
}

// printResult renders the run outcome. Without a generated report the
// excerpt itself is shown, so a no-report run still prints its table.
func printResult(result *pipeline.Result, summary types.RunSummary) {
	w := table.NewWriter()
	w.SetOutputMirror(os.Stdout)
	w.AppendHeader(table.Row{"Run", "State", "Rows", "First", "Last", "Excerpt Rows"})
	w.AppendRow(table.Row{
		result.RunID[:8],
		string(result.State),
		summary.Data.Rows,
		summary.Data.FirstDate,
		summary.Data.LastDate,
		summary.Report.ExcerptRows,
	})
	w.Render()

	switch {
	case result.Report != "":
		fmt.Println()
		fmt.Println(result.Report)
	case result.Excerpt != nil:
		fmt.Println()
		fmt.Println(result.Excerpt.Markdown)
	}
}

func runAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	appLogger, err := logger.NewLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer appLogger.Sync()

	result, summary, err := runOnce(ctx, cfg, appLogger, cmd.Bool("no-report"))
	if err != nil {
		return err
	}

	if path := cmd.String("summary"); path != "" {
		if err := types.WriteRunSummaries(path, []types.RunSummary{summary}); err != nil {
			return err
		}
	}

	printResult(result, summary)

	if result.State == pipeline.StateFailed {
		return fmt.Errorf("pipeline failed at %s stage: %v", result.FailedStage, result.Cause)
	}

	return nil
}

func watchAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	appLogger, err := logger.NewLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer appLogger.Sync()

	var (
		mu        sync.Mutex
		summaries []types.RunSummary
	)

	runAndRecord := func() {
		mu.Lock()
		defer mu.Unlock()

		result, summary, err := runOnce(ctx, cfg, appLogger, cmd.Bool("no-report"))
		if err != nil {
			log.Printf("Scheduled run did not start: %v", err)
			return
		}

		summaries = append(summaries, summary)

		if path := cmd.String("summary"); path != "" {
			if err := types.WriteRunSummaries(path, summaries); err != nil {
				log.Printf("Failed to write run summaries: %v", err)
			}
		}

		if result.State == pipeline.StateFailed {
			log.Printf("Pipeline failed at %s stage: %v", result.FailedStage, result.Cause)
			return
		}

		log.Printf("Run %s finished with %d rows", result.RunID, summary.Data.Rows)
	}

	schedule := cmd.String("cron")

	c := cron.New()
	if _, err := c.AddFunc(schedule, runAndRecord); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", schedule, err)
	}

	if cmd.Bool("immediate") {
		runAndRecord()
	}

	c.Start()
	log.Printf("Watching with schedule %q, press Ctrl+C to stop", schedule)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	c.Stop()
	log.Println("Watch stopped")

	return nil
}

func main() {
	// A .env file can override the environment in development setups.
	_ = godotenv.Load()

	cmd := &cli.Command{
		Name:  "analyze",
		Usage: "Run the price analysis pipeline",
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "Run the pipeline once and print the report",
				Flags:  sharedFlags(),
				Action: runAction,
			},
			{
				Name:  "schema",
				Usage: "Print the config JSON schema",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg := config.DefaultConfig()

					schemaJSON, err := cfg.GenerateSchemaJSON()
					if err != nil {
						return err
					}

					fmt.Println(schemaJSON)

					return nil
				},
			},
			{
				Name:  "watch",
				Usage: "Re-run the pipeline on a cron schedule",
				Flags: append(sharedFlags(),
					&cli.StringFlag{
						Name:  "cron",
						Usage: "Cron schedule for pipeline runs",
						Value: "0 18 * * 1-5",
					},
					&cli.BoolFlag{
						Name:  "immediate",
						Usage: "Run once right away before the first scheduled run",
					},
				),
				Action: watchAction,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
