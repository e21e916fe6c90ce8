// Package action implements the side-effecting operations a triggered check
// runs, and the strictly-ordered runner that executes them.
package action

import (
	"context"
	"fmt"

	"modsieve/internal/activity"
	"modsieve/internal/rule"
)

// Kind selects a concrete action behavior. The set is closed: New rejects
// anything outside this list.
type Kind string

const (
	KindApprove Kind = "approve"
	KindComment Kind = "comment"
	KindFlair   Kind = "flair"
	KindLock    Kind = "lock"
	KindRemove  Kind = "remove"
	KindReport  Kind = "report"
)

// Result records one completed action execution, dry runs included. A failing
// action produces no Result; it is represented by the *Error naming it.
type Result struct {
	ActionName string `json:"actionName"`
	Kind       Kind   `json:"kind"`
	Ran        bool   `json:"ran"`
	DryRun     bool   `json:"dryRun"`
	Success    bool   `json:"success"`
	RunReason  string `json:"runReason,omitempty"`
	Detail     string `json:"detail,omitempty"`
}

// Options carries execution-scope settings into a run.
type Options struct {
	// DryRun suppresses side effects for every action that has not pinned its
	// own dry-run setting.
	DryRun bool
}

// Action is one ordered, potentially side-effecting operation. Run receives
// the rule results that triggered the check and the results of the actions
// already executed in the same invocation.
type Action interface {
	Name() string
	Kind() Kind
	Run(ctx context.Context, act *activity.Activity, triggered []*rule.Result, prior []*Result, opts Options) (*Result, error)
}

// Error wraps an action failure together with the results of the actions that
// completed before it stopped the run.
type Error struct {
	ActionName string
	Results    []*Result
	Err        error
}

func (e *Error) Error() string {
	return fmt.Sprintf("action %q failed after %d completed action(s): %v", e.ActionName, len(e.Results), e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// RunAll executes actions strictly in declared order. The first failure stops
// the run; the results of the already-completed actions are surfaced through
// the returned *Error, and the failing action contributes none.
func RunAll(ctx context.Context, actions []Action, act *activity.Activity, triggered []*rule.Result, opts Options) ([]*Result, error) {
	results := make([]*Result, 0, len(actions))
	for _, a := range actions {
		res, err := a.Run(ctx, act, triggered, results, opts)
		if err != nil {
			return results, &Error{ActionName: a.Name(), Results: results, Err: err}
		}
		if res == nil {
			res = &Result{ActionName: a.Name(), Kind: a.Kind()}
		}
		results = append(results, res)
	}
	return results, nil
}
