package httptransport

import (
	"time"

	"modsieve/internal/check"
	"modsieve/internal/record"
	"modsieve/internal/run"
)

// EvaluateResponse is the HTTP response for POST /evaluate.
type EvaluateResponse struct {
	EvaluationID string        `json:"evaluationId"`
	ActivityID   string        `json:"activityId"`
	Runs         []RunResponse `json:"runs"`
	Stopped      bool          `json:"stopped,omitempty"`
	StartedAt    time.Time     `json:"startedAt"`
	DurationMS   int64         `json:"durationMs"`
}

// RunResponse is one run's portion of the evaluation response.
type RunResponse struct {
	RunName string          `json:"runName"`
	Results []*check.Result `json:"results"`
}

// FromReport converts an evaluation report to an HTTP response.
func FromReport(report *run.Report) *EvaluateResponse {
	resp := &EvaluateResponse{
		EvaluationID: report.EvaluationID,
		ActivityID:   report.ActivityID,
		Runs:         make([]RunResponse, 0, len(report.Runs)),
		Stopped:      report.Stopped,
		StartedAt:    report.StartedAt,
		DurationMS:   report.Duration.Milliseconds(),
	}
	for _, rr := range report.Runs {
		resp.Runs = append(resp.Runs, RunResponse{RunName: rr.RunName, Results: rr.Results})
	}
	return resp
}

// RecentResultsResponse is the HTTP response for GET /results/recent.
type RecentResultsResponse struct {
	Entries []record.Entry `json:"entries"`
}
