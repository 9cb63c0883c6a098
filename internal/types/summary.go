package types

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RunDataInfo struct {
	// Path of the raw price file the run ingested.
	Path string `yaml:"path"`
	// Row count of the ingested table.
	Rows int `yaml:"rows"`
	// Date of the first row, YYYY-MM-DD.
	FirstDate string `yaml:"first_date,omitempty"`
	// Date of the last row, YYYY-MM-DD.
	LastDate string `yaml:"last_date,omitempty"`
}

type RunReportInfo struct {
	// Model that produced the report.
	ModelID string `yaml:"model_id,omitempty"`
	// Trailing window the excerpt covered, in calendar days.
	AnalysisPeriodDays int `yaml:"analysis_period_days,omitempty"`
	// Number of excerpt rows handed to the model.
	ExcerptRows int `yaml:"excerpt_rows,omitempty"`
}

type RunSummary struct {
	// ID is the unique identifier for this pipeline run.
	ID string `yaml:"id" json:"id"`
	// Timestamp is when this run was executed.
	Timestamp time.Time `yaml:"timestamp" json:"timestamp"`
	// Final state of the run: "done" or "failed".
	State string `yaml:"state"`
	// Stage that failed. Empty when the run finished.
	FailedStage string `yaml:"failed_stage,omitempty"`
	// Cause of the failure. Empty when the run finished.
	FailureCause string `yaml:"failure_cause,omitempty"`
	// Data describes the ingested input.
	Data RunDataInfo `yaml:"data"`
	// Columns present on the table after indicator computation.
	Columns []string `yaml:"columns,omitempty"`
	// Report describes the report stage.
	Report RunReportInfo `yaml:"report"`
}

func WriteRunSummaries(path string, summaries []RunSummary) error {
	// Marshal the struct to YAML
	data, err := yaml.Marshal(summaries)
	if err != nil {
		return fmt.Errorf("failed to marshal run summaries to YAML: %w", err)
	}

	// Write the YAML data to the file
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write run summaries to file: %w", err)
	}

	return nil
}
