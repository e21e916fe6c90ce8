package httptransport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"modsieve/internal/activity"
	"modsieve/internal/check"
	"modsieve/internal/record"
	"modsieve/internal/run"
)

// =============================================================================
// HTTP Handler Test Suite
// =============================================================================
// The handler is a translation layer; the tests pin request validation, the
// response shape, and the error envelopes without any real orchestrator.

type stubEvaluator struct {
	lastActivity *activity.Activity
	report       *run.Report
	err          error
}

func (s *stubEvaluator) Evaluate(_ context.Context, act *activity.Activity) (*run.Report, error) {
	s.lastActivity = act
	return s.report, s.err
}

type stubRegistry struct {
	authors []*activity.Author
}

func (s *stubRegistry) PutAuthor(a *activity.Author) { s.authors = append(s.authors, a) }

type HandlerSuite struct {
	suite.Suite
	evaluator *stubEvaluator
	registry  *stubRegistry
	recent    *record.MemorySink
	router    chi.Router
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.evaluator = &stubEvaluator{
		report: &run.Report{
			EvaluationID: "eval-1",
			ActivityID:   "t3_abc",
			Runs: []run.RunReport{
				{RunName: "main", Results: []*check.Result{{CheckName: "spam", Triggered: true}}},
			},
			StartedAt: time.Now(),
			Duration:  42 * time.Millisecond,
		},
	}
	s.registry = &stubRegistry{}
	s.recent = record.NewMemorySink(8)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.router = chi.NewRouter()
	New(s.evaluator, s.registry, s.recent, logger).Register(s.router)
}

func (s *HandlerSuite) do(method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func validBody() string {
	return `{
		"activity": {
			"id": "t3_abc",
			"kind": "post",
			"community": "golang",
			"authorName": "gopher",
			"title": "hello",
			"createdAt": "2026-03-01T10:00:00Z"
		}
	}`
}

// =============================================================================
// POST /evaluate
// =============================================================================

func (s *HandlerSuite) TestEvaluate() {
	s.Run("returns the evaluation report", func() {
		rec := s.do(http.MethodPost, "/evaluate", validBody())
		s.Equal(http.StatusOK, rec.Code)

		var resp EvaluateResponse
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
		s.Equal("eval-1", resp.EvaluationID)
		s.Equal("t3_abc", resp.ActivityID)
		s.Require().Len(resp.Runs, 1)
		s.Equal("main", resp.Runs[0].RunName)
		s.Require().Len(resp.Runs[0].Results, 1)
		s.True(resp.Runs[0].Results[0].Triggered)
		s.Equal(int64(42), resp.DurationMS)

		s.Require().NotNil(s.evaluator.lastActivity)
		s.Equal(activity.KindPost, s.evaluator.lastActivity.Kind)
		s.Equal("gopher", s.evaluator.lastActivity.AuthorName)
	})

	s.Run("rejects malformed JSON", func() {
		rec := s.do(http.MethodPost, "/evaluate", `{"activity":`)
		s.Equal(http.StatusBadRequest, rec.Code)
		s.Contains(rec.Body.String(), "invalid request body")
	})

	s.Run("rejects missing fields", func() {
		rec := s.do(http.MethodPost, "/evaluate", `{"activity":{"kind":"post"}}`)
		s.Equal(http.StatusBadRequest, rec.Code)
		s.Contains(rec.Body.String(), "activity.id is required")
	})

	s.Run("rejects unknown kinds", func() {
		body := strings.Replace(validBody(), `"post"`, `"chat"`, 1)
		rec := s.do(http.MethodPost, "/evaluate", body)
		s.Equal(http.StatusBadRequest, rec.Code)
		s.Contains(rec.Body.String(), "activity.kind")
	})

	s.Run("registers a supplied author profile", func() {
		body := `{
			"activity": {
				"id": "t3_abc",
				"kind": "post",
				"community": "golang",
				"authorName": "gopher",
				"createdAt": "2026-03-01T10:00:00Z"
			},
			"author": {"createdAt": "2020-01-01T00:00:00Z", "linkKarma": 500}
		}`
		rec := s.do(http.MethodPost, "/evaluate", body)
		s.Equal(http.StatusOK, rec.Code)

		// Author name defaults to the activity's author when omitted.
		s.Require().Len(s.registry.authors, 1)
		s.Equal("gopher", s.registry.authors[0].Name)
		s.Equal(500, s.registry.authors[0].LinkKarma)
	})

	s.Run("evaluator failure maps to 500", func() {
		s.evaluator.err = errors.New("suite exploded")
		rec := s.do(http.MethodPost, "/evaluate", validBody())
		s.Equal(http.StatusInternalServerError, rec.Code)
		s.Contains(rec.Body.String(), "evaluation failed")
		s.NotContains(rec.Body.String(), "suite exploded")
	})
}

// =============================================================================
// GET /results/recent
// =============================================================================

func (s *HandlerSuite) TestRecentResults() {
	s.Run("empty sink yields an empty list", func() {
		rec := s.do(http.MethodGet, "/results/recent", "")
		s.Equal(http.StatusOK, rec.Code)

		var resp RecentResultsResponse
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
		s.Empty(resp.Entries)
	})

	s.Run("returns recorded entries newest first", func() {
		ctx := context.Background()
		for _, id := range []string{"t3_a", "t3_b"} {
			s.Require().NoError(s.recent.Record(ctx, record.Entry{
				ActivityID:  id,
				CheckResult: &check.Result{CheckName: "spam"},
			}))
		}

		rec := s.do(http.MethodGet, "/results/recent?limit=1", "")
		s.Equal(http.StatusOK, rec.Code)

		var resp RecentResultsResponse
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
		s.Require().Len(resp.Entries, 1)
		s.Equal("t3_b", resp.Entries[0].ActivityID)
	})

	s.Run("rejects a negative limit", func() {
		rec := s.do(http.MethodGet, "/results/recent?limit=-1", "")
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}
