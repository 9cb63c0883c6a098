package pipeline

import (
	"time"

	"github.com/chartscribe-lab/chartscribe/internal/types"
)

// Summary condenses the result into one run log entry. A failed run keeps
// whatever the finished stages produced, so the entry can still describe the
// ingested data.
func (r *Result) Summary(dataPath, modelID string, analysisPeriodDays int) types.RunSummary {
	summary := types.RunSummary{
		ID:        r.RunID,
		Timestamp: r.StartedAt,
		State:     string(r.State),
		Data: types.RunDataInfo{
			Path: dataPath,
		},
		Report: types.RunReportInfo{
			AnalysisPeriodDays: analysisPeriodDays,
		},
	}

	if r.State == StateFailed {
		summary.FailedStage = r.FailedStage
		if r.Cause != nil {
			summary.FailureCause = r.Cause.Error()
		}
	}

	if r.Table != nil && r.Table.Length() > 0 {
		summary.Data.Rows = r.Table.Length()
		summary.Columns = r.Table.Columns()

		if first := r.Table.Date(0); !first.IsZero() {
			summary.Data.FirstDate = first.Format(time.DateOnly)
		}

		if last := r.Table.Date(r.Table.Length() - 1); !last.IsZero() {
			summary.Data.LastDate = last.Format(time.DateOnly)
		}
	}

	if r.Excerpt != nil {
		summary.Report.ExcerptRows = r.Excerpt.Rows
	}

	if r.Report != "" {
		summary.Report.ModelID = modelID
	}

	return summary
}
