package check

import (
	"fmt"
	"strings"
)

// Behavior is what the orchestrator does after this check completes.
type Behavior string

const (
	// BehaviorNext continues with the next check in the current run.
	BehaviorNext Behavior = "next"
	// BehaviorNextRun abandons the remaining checks of this run and proceeds
	// to the next run.
	BehaviorNextRun Behavior = "nextRun"
	// BehaviorStop abandons all remaining runs.
	BehaviorStop Behavior = "stop"
	// BehaviorGoto jumps to the named run.
	BehaviorGoto Behavior = "goto"
)

// Directive pairs a post-evaluation behavior with the output destinations the
// result should be recorded to. A check carries two: one for the triggered
// path and one for the failed path.
type Directive struct {
	Behavior Behavior `json:"behavior"`
	// Target is the run label for goto directives.
	Target string `json:"target,omitempty"`
	// RecordTo names the recorder destinations for this result.
	RecordTo []string `json:"recordTo,omitempty"`
}

// ParseDirective resolves a post-behavior string to one of the four
// recognized values. Anything else is a configuration error.
func ParseDirective(raw string, recordTo []string) (Directive, error) {
	switch {
	case raw == "" || raw == string(BehaviorNext):
		return Directive{Behavior: BehaviorNext, RecordTo: recordTo}, nil
	case raw == string(BehaviorNextRun):
		return Directive{Behavior: BehaviorNextRun, RecordTo: recordTo}, nil
	case raw == string(BehaviorStop):
		return Directive{Behavior: BehaviorStop, RecordTo: recordTo}, nil
	case strings.HasPrefix(raw, string(BehaviorGoto)+":"):
		target := strings.TrimPrefix(raw, string(BehaviorGoto)+":")
		if target == "" {
			return Directive{}, fmt.Errorf("goto post-behavior needs a run label")
		}
		return Directive{Behavior: BehaviorGoto, Target: target, RecordTo: recordTo}, nil
	}
	return Directive{}, fmt.Errorf("unrecognized post-behavior %q", raw)
}

// String renders the directive in its configuration form.
func (d Directive) String() string {
	if d.Behavior == BehaviorGoto {
		return string(BehaviorGoto) + ":" + d.Target
	}
	return string(d.Behavior)
}
