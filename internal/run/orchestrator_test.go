package run

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"modsieve/internal/action"
	"modsieve/internal/activity"
	"modsieve/internal/activity/mocks"
	"modsieve/internal/check"
	"modsieve/internal/criteria"
	"modsieve/internal/record"
	"modsieve/internal/rule"
)

// testDeps builds check dependencies with mocked collaborators that expect no
// calls; the control-flow tests use checks whose outcomes are fixed by their
// configuration alone.
func testDeps(t *testing.T) check.Deps {
	ctrl := gomock.NewController(t)
	provider := mocks.NewMockProvider(ctrl)
	return check.Deps{
		Matcher:   criteria.NewMatcher(provider),
		Provider:  provider,
		Scorer:    mocks.NewMockScoreProvider(ctrl),
		Moderator: mocks.NewMockModerator(ctrl),
	}
}

// =============================================================================
// Orchestrator Test Suite
// =============================================================================
// The orchestrator owns the control flow between checks: which run comes next,
// when iteration stops, and where results get recorded. Checks here are either
// always-triggering (empty rule list) or never-triggering (unmatchable regex),
// so each test pins down one flow decision.

type OrchestratorSuite struct {
	suite.Suite
	ctrl *gomock.Controller
	mod  *mocks.MockModerator
	deps check.Deps
}

func TestOrchestratorSuite(t *testing.T) {
	suite.Run(t, new(OrchestratorSuite))
}

func (s *OrchestratorSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	provider := mocks.NewMockProvider(s.ctrl)
	s.mod = mocks.NewMockModerator(s.ctrl)
	s.deps = check.Deps{
		Matcher:   criteria.NewMatcher(provider),
		Provider:  provider,
		Scorer:    mocks.NewMockScoreProvider(s.ctrl),
		Moderator: s.mod,
	}
}

func (s *OrchestratorSuite) post() *activity.Activity {
	return &activity.Activity{
		ID:         "t3_abc",
		Kind:       activity.KindPost,
		Community:  "golang",
		AuthorName: "gopher",
		Title:      "hello world",
		CreatedAt:  time.Now().Add(-time.Hour),
	}
}

// triggering has no rules, so it always fires and follows its postTrigger.
func triggering(name, postTrigger string, recordTo ...string) check.Config {
	return check.Config{Name: name, PostTrigger: postTrigger, PostTriggerRecordTo: recordTo}
}

// failing carries a rule that never matches, so it follows its postFail.
func failing(name, postFail string) check.Config {
	return check.Config{
		Name:     name,
		Rules:    []rule.Config{{Kind: rule.KindRegex, Regex: &rule.RegexConfig{Patterns: []string{`\bzzznever\b`}}}},
		PostFail: postFail,
	}
}

func (s *OrchestratorSuite) runNames(report *Report) []string {
	names := make([]string, 0, len(report.Runs))
	for _, r := range report.Runs {
		names = append(names, r.RunName)
	}
	return names
}

func (s *OrchestratorSuite) TestEvaluateFlow() {
	ctx := context.Background()

	s.Run("next walks every run in order", func() {
		cfg := Config{Runs: []RunConfig{
			{Name: "first", Checks: []check.Config{triggering("a", ""), failing("b", "")}},
			{Name: "second", Checks: []check.Config{triggering("c", "")}},
		}}
		o, err := New(cfg, s.deps)
		s.Require().NoError(err)

		report, err := o.Evaluate(ctx, s.post())
		s.Require().NoError(err)
		s.Equal([]string{"first", "second"}, s.runNames(report))
		s.Len(report.Runs[0].Results, 2)
		s.Len(report.Runs[1].Results, 1)
		s.False(report.Stopped)
		s.NotEmpty(report.EvaluationID)
		s.Equal("t3_abc", report.ActivityID)
	})

	s.Run("nextRun abandons the remaining checks of the run", func() {
		cfg := Config{Runs: []RunConfig{
			{Name: "first", Checks: []check.Config{triggering("a", "nextRun"), triggering("b", "")}},
			{Name: "second", Checks: []check.Config{triggering("c", "")}},
		}}
		o, err := New(cfg, s.deps)
		s.Require().NoError(err)

		report, err := o.Evaluate(ctx, s.post())
		s.Require().NoError(err)
		s.Len(report.Runs[0].Results, 1)
		s.Equal("a", report.Runs[0].Results[0].CheckName)
		s.Len(report.Runs[1].Results, 1)
	})

	s.Run("stop abandons the whole suite", func() {
		cfg := Config{Runs: []RunConfig{
			{Name: "first", Checks: []check.Config{triggering("a", "stop"), triggering("b", "")}},
			{Name: "second", Checks: []check.Config{triggering("c", "")}},
		}}
		o, err := New(cfg, s.deps)
		s.Require().NoError(err)

		report, err := o.Evaluate(ctx, s.post())
		s.Require().NoError(err)
		s.True(report.Stopped)
		s.Equal([]string{"first"}, s.runNames(report))
		s.Len(report.Runs[0].Results, 1)
	})

	s.Run("goto jumps to the named run", func() {
		cfg := Config{Runs: []RunConfig{
			{Name: "first", Checks: []check.Config{triggering("a", "goto:third")}},
			{Name: "second", Checks: []check.Config{triggering("b", "")}},
			{Name: "third", Checks: []check.Config{triggering("c", "")}},
		}}
		o, err := New(cfg, s.deps)
		s.Require().NoError(err)

		report, err := o.Evaluate(ctx, s.post())
		s.Require().NoError(err)
		s.Equal([]string{"first", "third"}, s.runNames(report))
	})

	s.Run("goto cycles are cut off", func() {
		cfg := Config{Runs: []RunConfig{
			{Name: "loop", Checks: []check.Config{triggering("a", "goto:loop")}},
		}}
		o, err := New(cfg, s.deps)
		s.Require().NoError(err)

		_, err = o.Evaluate(ctx, s.post())
		s.Require().Error(err)
		s.Contains(err.Error(), "goto loop detected")
	})

	s.Run("postFail steers checks that did not trigger", func() {
		cfg := Config{Runs: []RunConfig{
			{Name: "first", Checks: []check.Config{failing("a", "stop"), triggering("b", "")}},
			{Name: "second", Checks: []check.Config{triggering("c", "")}},
		}}
		o, err := New(cfg, s.deps)
		s.Require().NoError(err)

		report, err := o.Evaluate(ctx, s.post())
		s.Require().NoError(err)
		s.True(report.Stopped)
		s.Equal([]string{"first"}, s.runNames(report))
		s.False(report.Runs[0].Results[0].Triggered)
	})

	s.Run("canceled context aborts evaluation", func() {
		cfg := Config{Runs: []RunConfig{
			{Name: "first", Checks: []check.Config{triggering("a", "")}},
		}}
		o, err := New(cfg, s.deps)
		s.Require().NoError(err)

		canceled, cancel := context.WithCancel(ctx)
		cancel()

		report, err := o.Evaluate(canceled, s.post())
		s.Require().Error(err)
		s.Contains(err.Error(), "evaluation aborted")
		s.NotNil(report)
	})
}

func (s *OrchestratorSuite) TestRecording() {
	ctx := context.Background()
	sink := record.NewMemorySink(8)
	recorder := record.NewRecorder(map[string]record.Sink{"memory": sink}, nil)

	s.Run("unknown record destinations are rejected at build time", func() {
		cfg := Config{Runs: []RunConfig{
			{Name: "main", Checks: []check.Config{triggering("a", "", "kafka")}},
		}}
		_, err := New(cfg, s.deps, WithRecorder(recorder))
		s.Require().Error(err)
		s.Contains(err.Error(), `unknown record destination "kafka"`)
	})

	s.Run("triggered results land in the named sink", func() {
		cfg := Config{Runs: []RunConfig{
			{Name: "main", Checks: []check.Config{triggering("a", "", "memory"), failing("b", "")}},
		}}
		o, err := New(cfg, s.deps, WithRecorder(recorder))
		s.Require().NoError(err)

		report, err := o.Evaluate(ctx, s.post())
		s.Require().NoError(err)

		// Only "a" names a destination; "b" produced a result but recorded
		// nothing.
		entries := sink.Recent(0)
		s.Require().Len(entries, 1)
		s.Equal("main", entries[0].RunName)
		s.Equal("t3_abc", entries[0].ActivityID)
		s.Equal("golang", entries[0].Community)
		s.Equal("gopher", entries[0].AuthorName)
		s.Equal(report.EvaluationID, entries[0].EvaluationID)
		s.Require().NotNil(entries[0].CheckResult)
		s.Equal("a", entries[0].CheckResult.CheckName)
	})
}

func (s *OrchestratorSuite) TestProcessingErrors() {
	ctx := context.Background()

	s.Run("a panicking check does not kill the suite", func() {
		s.mod.EXPECT().Remove(gomock.Any(), "t3_abc").DoAndReturn(
			func(context.Context, string) error { panic("moderator gone") },
		)

		cfg := Config{Runs: []RunConfig{
			{Name: "main", Checks: []check.Config{
				{Name: "a", Actions: []action.Config{{Kind: action.KindRemove}}},
				triggering("b", ""),
			}},
		}}
		o, err := New(cfg, s.deps)
		s.Require().NoError(err)

		report, err := o.Evaluate(ctx, s.post())
		s.Require().NoError(err)
		s.Require().Len(report.Runs, 1)

		// The partial result of the failed check is kept alongside the healthy
		// one.
		s.Require().Len(report.Runs[0].Results, 2)
		s.Equal("a", report.Runs[0].Results[0].CheckName)
		s.Equal("b", report.Runs[0].Results[1].CheckName)
	})
}

func (s *OrchestratorSuite) TestDryRun() {
	ctx := context.Background()

	// No moderator expectations: a dry run must never reach it.
	cfg := Config{Runs: []RunConfig{
		{Name: "main", Checks: []check.Config{
			{Name: "a", Actions: []action.Config{{Kind: action.KindRemove}}},
		}},
	}}
	o, err := New(cfg, s.deps, WithDryRun(true))
	s.Require().NoError(err)

	report, err := o.Evaluate(ctx, s.post())
	s.Require().NoError(err)
	s.Require().Len(report.Runs[0].Results, 1)
	res := report.Runs[0].Results[0]
	s.True(res.Triggered)
	s.Require().Len(res.ActionResults, 1)
	s.True(res.ActionResults[0].DryRun)
}
