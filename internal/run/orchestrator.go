package run

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"modsieve/internal/activity"
	"modsieve/internal/check"
	"modsieve/internal/record"
)

// Orchestrator drives a full evaluation suite over one activity at a time.
// Evaluations of different activities are independent and may run
// concurrently on the same Orchestrator.
type Orchestrator struct {
	runs     []*Run
	index    map[string]int
	recorder *record.Recorder
	logger   *slog.Logger
	timeout  time.Duration
	dryRun   bool
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithRecorder attaches the result recorder resolving recordTo destinations.
func WithRecorder(r *record.Recorder) Option {
	return func(o *Orchestrator) { o.recorder = r }
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = logger }
}

// WithTimeout bounds one full activity evaluation. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.timeout = d }
}

// WithDryRun suppresses action side effects suite-wide.
func WithDryRun(dryRun bool) Option {
	return func(o *Orchestrator) { o.dryRun = dryRun }
}

// New validates the configuration and builds the orchestrator. recordTo
// destinations are checked against the recorder when one is attached.
func New(cfg Config, deps check.Deps, opts ...Option) (*Orchestrator, error) {
	runs, index, err := buildRuns(cfg, deps)
	if err != nil {
		return nil, err
	}

	o := &Orchestrator{runs: runs, index: index}
	for _, opt := range opts {
		opt(o)
	}

	if o.recorder != nil {
		for _, r := range runs {
			for _, c := range r.checks {
				onTrigger, onFail := c.Directives()
				for _, d := range []check.Directive{onTrigger, onFail} {
					for _, dest := range d.RecordTo {
						if !o.recorder.Has(dest) {
							return nil, fmt.Errorf("run %q check %q: unknown record destination %q", r.name, c.Name(), dest)
						}
					}
				}
			}
		}
	}

	return o, nil
}

// RunReport collects the results produced while iterating one run.
type RunReport struct {
	RunName string          `json:"runName"`
	Results []*check.Result `json:"results"`
}

// Report is the outcome of evaluating one activity against the whole suite.
type Report struct {
	EvaluationID string        `json:"evaluationId"`
	ActivityID   string        `json:"activityId"`
	Runs         []RunReport   `json:"runs"`
	Stopped      bool          `json:"stopped,omitempty"`
	StartedAt    time.Time     `json:"startedAt"`
	Duration     time.Duration `json:"duration"`
}

// Evaluate runs the suite over one activity, honoring each check's
// post-behavior: next continues, nextRun abandons the current run, stop
// abandons everything, goto jumps to a named run. Jumps are bounded so a
// goto cycle cannot loop forever.
func (o *Orchestrator) Evaluate(ctx context.Context, act *activity.Activity) (*Report, error) {
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	report := &Report{
		EvaluationID: uuid.NewString(),
		ActivityID:   act.ID,
		StartedAt:    time.Now(),
	}
	defer func() { report.Duration = time.Since(report.StartedAt) }()

	opts := check.Options{DryRun: o.dryRun}
	maxJumps := len(o.runs) * 2
	jumps := 0

	for i := 0; i < len(o.runs); {
		r := o.runs[i]
		runReport := RunReport{RunName: r.name}
		next := i + 1

	checks:
		for _, c := range r.checks {
			if err := ctx.Err(); err != nil {
				report.Runs = append(report.Runs, runReport)
				return report, fmt.Errorf("evaluation aborted: %w", err)
			}

			res, err := c.Handle(ctx, act, opts)
			if err != nil {
				// A processing error still carries the best-available partial
				// result; record it and keep the suite alive.
				var procErr *check.ProcessingError
				if errors.As(err, &procErr) && procErr.Partial != nil {
					res = procErr.Partial
				}
				if o.logger != nil {
					o.logger.ErrorContext(ctx, "check processing failed",
						"run", r.name,
						"check", c.Name(),
						"activity", act.ID,
						"error", err,
					)
				}
				if res == nil {
					continue
				}
			}

			runReport.Results = append(runReport.Results, res)
			o.record(ctx, r.name, act, res, report.EvaluationID)

			switch res.PostBehavior.Behavior {
			case check.BehaviorNext:
				continue
			case check.BehaviorNextRun:
				break checks
			case check.BehaviorStop:
				report.Runs = append(report.Runs, runReport)
				report.Stopped = true
				return report, nil
			case check.BehaviorGoto:
				jumps++
				if jumps > maxJumps {
					report.Runs = append(report.Runs, runReport)
					return report, fmt.Errorf("goto loop detected after %d jump(s)", jumps)
				}
				next = o.index[res.PostBehavior.Target]
				break checks
			}
		}

		report.Runs = append(report.Runs, runReport)
		i = next
	}

	return report, nil
}

// record fans the result out to its directive's destinations.
func (o *Orchestrator) record(ctx context.Context, runName string, act *activity.Activity, res *check.Result, evaluationID string) {
	if o.recorder == nil || len(res.PostBehavior.RecordTo) == 0 {
		return
	}
	o.recorder.Record(ctx, res.PostBehavior.RecordTo, record.Entry{
		RecordedAt:   time.Now(),
		RunName:      runName,
		ActivityID:   act.ID,
		Community:    act.Community,
		AuthorName:   act.AuthorName,
		CheckResult:  res,
		EvaluationID: evaluationID,
	})
}
