package main

import "github.com/chartscribe-lab/chartscribe/internal/pipeline"

// ResultMsg carries a finished pipeline run.
type ResultMsg struct {
	Result *pipeline.Result
}

// RunErrorMsg indicates the run could not start.
type RunErrorMsg struct {
	Err error
}
