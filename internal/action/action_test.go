package action

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"modsieve/internal/activity"
	"modsieve/internal/activity/mocks"
	"modsieve/internal/rule"
)

// =============================================================================
// Action Runner Test Suite
// =============================================================================
// Ordering, dry-run resolution, and fail-stop behavior are contracts of the
// runner, observable through a mocked moderator client.

type ActionSuite struct {
	suite.Suite
	ctrl *gomock.Controller
	mod  *mocks.MockModerator
}

func TestActionSuite(t *testing.T) {
	suite.Run(t, new(ActionSuite))
}

func (s *ActionSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mod = mocks.NewMockModerator(s.ctrl)
}

func (s *ActionSuite) build(cfgs ...Config) []Action {
	actions := make([]Action, 0, len(cfgs))
	for _, cfg := range cfgs {
		a, err := New(cfg, s.mod)
		s.Require().NoError(err)
		actions = append(actions, a)
	}
	return actions
}

func (s *ActionSuite) activity() *activity.Activity {
	return &activity.Activity{ID: "t3_abc", Kind: activity.KindPost, AuthorName: "gopher"}
}

func triggeredBy(names ...string) []*rule.Result {
	out := make([]*rule.Result, 0, len(names))
	for _, n := range names {
		out = append(out, &rule.Result{RuleName: n, Outcome: rule.OutcomeTriggered})
	}
	return out
}

// =============================================================================
// Factory Tests
// =============================================================================

func (s *ActionSuite) TestNew() {
	s.Run("unknown kind is rejected", func() {
		_, err := New(Config{Kind: "shadowban"}, s.mod)
		s.Error(err)
		s.Contains(err.Error(), "unknown action kind")
	})

	s.Run("nil moderator is rejected", func() {
		_, err := New(Config{Kind: KindRemove}, nil)
		s.Error(err)
		s.Contains(err.Error(), "moderator client is required")
	})

	s.Run("comment needs a body", func() {
		_, err := New(Config{Kind: KindComment, Comment: &CommentConfig{}}, s.mod)
		s.Error(err)
	})

	s.Run("report needs a reason", func() {
		_, err := New(Config{Kind: KindReport}, s.mod)
		s.Error(err)
	})

	s.Run("name defaults to the kind", func() {
		a, err := New(Config{Kind: KindLock}, s.mod)
		s.Require().NoError(err)
		s.Equal("lock", a.Name())
	})
}

// =============================================================================
// RunAll Tests
// =============================================================================

func (s *ActionSuite) TestRunAll() {
	ctx := context.Background()

	s.Run("executes in declared order", func() {
		var order []string
		gomock.InOrder(
			s.mod.EXPECT().Remove(gomock.Any(), "t3_abc").DoAndReturn(func(context.Context, string) error {
				order = append(order, "remove")
				return nil
			}),
			s.mod.EXPECT().Lock(gomock.Any(), "t3_abc").DoAndReturn(func(context.Context, string) error {
				order = append(order, "lock")
				return nil
			}),
		)

		actions := s.build(Config{Kind: KindRemove}, Config{Kind: KindLock})
		results, err := RunAll(ctx, actions, s.activity(), triggeredBy("spam"), Options{})
		s.Require().NoError(err)
		s.Equal([]string{"remove", "lock"}, order)
		s.Len(results, 2)
		for _, r := range results {
			s.True(r.Ran)
			s.True(r.Success)
		}
	})

	s.Run("run reason names the triggering rules", func() {
		s.mod.EXPECT().Approve(gomock.Any(), "t3_abc").Return(nil)

		actions := s.build(Config{Kind: KindApprove})
		results, err := RunAll(ctx, actions, s.activity(), triggeredBy("trusted author", "low reports"), Options{})
		s.Require().NoError(err)
		s.Equal("triggered by trusted author, low reports", results[0].RunReason)
	})

	s.Run("failure stops the run and keeps only completed results", func() {
		s.mod.EXPECT().Remove(gomock.Any(), "t3_abc").Return(nil)
		s.mod.EXPECT().Report(gomock.Any(), "t3_abc", "spam").Return(errors.New("api unavailable"))

		actions := s.build(
			Config{Kind: KindRemove},
			Config{Kind: KindReport, Report: &ReportConfig{Reason: "spam"}},
			Config{Kind: KindLock}, // never reached
		)

		results, err := RunAll(ctx, actions, s.activity(), triggeredBy("spam"), Options{})
		s.Require().Error(err)

		var actionErr *Error
		s.Require().ErrorAs(err, &actionErr)
		s.Equal("report", actionErr.ActionName)

		// The failing action contributes no result.
		s.Require().Len(results, 1)
		s.Equal("remove", results[0].ActionName)
		s.True(results[0].Success)
		s.Equal(results, actionErr.Results)
	})

	s.Run("comment succeeds then lock fails", func() {
		s.mod.EXPECT().Reply(gomock.Any(), "t3_abc", "please review the rules", false).Return(nil)
		s.mod.EXPECT().Lock(gomock.Any(), "t3_abc").Return(errors.New("api unavailable"))

		actions := s.build(
			Config{Kind: KindComment, Comment: &CommentConfig{Body: "please review the rules"}},
			Config{Kind: KindLock},
		)

		results, err := RunAll(ctx, actions, s.activity(), triggeredBy("spam"), Options{})
		s.Require().Error(err)

		var actionErr *Error
		s.Require().ErrorAs(err, &actionErr)
		s.Equal("lock", actionErr.ActionName)
		s.Require().Len(results, 1)
		s.Equal(Kind("comment"), results[0].Kind)
		s.True(results[0].Success)
	})
}

// =============================================================================
// Dry-Run Tests
// =============================================================================

func (s *ActionSuite) TestDryRun() {
	ctx := context.Background()

	s.Run("run-scope dry run suppresses side effects", func() {
		actions := s.build(Config{Kind: KindRemove})
		results, err := RunAll(ctx, actions, s.activity(), triggeredBy("spam"), Options{DryRun: true})
		s.Require().NoError(err)
		s.False(results[0].Ran)
		s.True(results[0].DryRun)
		s.True(results[0].Success)
	})

	s.Run("action-scope setting overrides the run scope", func() {
		wet := false
		s.mod.EXPECT().Lock(gomock.Any(), "t3_abc").Return(nil)

		actions := s.build(
			Config{Kind: KindRemove},             // inherits dry run
			Config{Kind: KindLock, DryRun: &wet}, // pinned live
		)
		results, err := RunAll(ctx, actions, s.activity(), triggeredBy("spam"), Options{DryRun: true})
		s.Require().NoError(err)
		s.False(results[0].Ran)
		s.True(results[1].Ran)
	})

	s.Run("comment dry run still records detail", func() {
		actions := s.build(Config{
			Kind:    KindComment,
			Comment: &CommentConfig{Body: "removed, see the rules", Sticky: true},
		})
		results, err := RunAll(ctx, actions, s.activity(), triggeredBy("spam"), Options{DryRun: true})
		s.Require().NoError(err)
		s.Contains(results[0].Detail, "sticky=true")
	})
}
