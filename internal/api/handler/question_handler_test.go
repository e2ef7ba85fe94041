package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/sal22/qanda-api/internal/core/domain"
	"github.com/sal22/qanda-api/internal/core/ports"
)

func sampleQuestionView() *ports.QuestionView {
	up := true
	return &ports.QuestionView{
		Question:     &domain.Question{ID: "q1", UserID: "u1", Content: "How do channels work?", AcceptedAnswer: "a1", CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		Author:       &ports.UserSummary{ID: "u1", Username: "alice", Avatar: "3f2a.png"},
		Votes:        domain.VoteTally{ItemID: "q1", Upvotes: 3, Downvotes: 1, ViewerVote: &up},
		AnswersCount: 2,
	}
}

func TestQuestionHandler_List(t *testing.T) {
	var got ports.ListQuestionsInput
	svc := &stubQuestionService{
		listFn: func(ctx context.Context, in ports.ListQuestionsInput) (*ports.QuestionPage, error) {
			got = in
			return &ports.QuestionPage{
				Items: []ports.QuestionView{*sampleQuestionView()},
				Meta:  domain.PageMeta{Total: 21, CurrentPage: 2, PerPage: 20},
			}, nil
		},
	}
	c, rec := newTestContext(http.MethodGet, "/api/questions?page=2&search=chan", "", alice)

	if err := NewQuestionHandler(svc, nil, nil).List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if got.Page != 2 || got.Search != "chan" || got.Viewer != alice {
		t.Fatalf("unexpected input: %+v", got)
	}

	var resp struct {
		Data []map[string]any `json:"data"`
		Meta domain.PageMeta  `json:"meta"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Meta.Total != 21 || len(resp.Data) != 1 {
		t.Fatalf("unexpected page: %+v", resp)
	}
	q := resp.Data[0]
	if q["upvotes"] != float64(3) || q["viewer_vote"] != true || q["accepted_answer"] != "a1" || q["answers_count"] != float64(2) {
		t.Fatalf("unexpected question payload: %+v", q)
	}
	user := q["user"].(map[string]any)
	if user["avatar"] != "/uploads/3f2a.png" {
		t.Fatalf("expected avatar url, got %v", user["avatar"])
	}
}

func TestQuestionHandler_ListEmptyPage(t *testing.T) {
	svc := &stubQuestionService{
		listFn: func(ctx context.Context, in ports.ListQuestionsInput) (*ports.QuestionPage, error) {
			return &ports.QuestionPage{Meta: domain.PageMeta{Total: 3, CurrentPage: 9, PerPage: 20}}, nil
		},
	}
	c, rec := newTestContext(http.MethodGet, "/api/questions?page=9", "", nil)

	if err := NewQuestionHandler(svc, nil, nil).List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if data, ok := resp["data"].([]any); !ok || len(data) != 0 {
		t.Fatalf("expected empty array, got %v", resp["data"])
	}
}

func TestQuestionHandler_PageParamFallsBack(t *testing.T) {
	var page int
	svc := &stubQuestionService{
		listFn: func(ctx context.Context, in ports.ListQuestionsInput) (*ports.QuestionPage, error) {
			page = in.Page
			return &ports.QuestionPage{}, nil
		},
	}
	c, _ := newTestContext(http.MethodGet, "/api/questions?page=abc", "", nil)

	if err := NewQuestionHandler(svc, nil, nil).List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if page != 1 {
		t.Fatalf("expected page 1, got %d", page)
	}
}

func TestQuestionHandler_CreateRequiresAuth(t *testing.T) {
	svc := &stubQuestionService{
		createFn: func(ctx context.Context, p *domain.Principal, content string) (*ports.QuestionView, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	c, _ := newTestContext(http.MethodPost, "/api/questions", `{"content":"hi"}`, nil)

	if err := NewQuestionHandler(svc, nil, nil).Create(c); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestQuestionHandler_UpdateForwardsPatch(t *testing.T) {
	var patch domain.QuestionPatch
	svc := &stubQuestionService{
		updateFn: func(ctx context.Context, p *domain.Principal, id string, in domain.QuestionPatch) (*ports.QuestionView, error) {
			if id != "q1" {
				t.Fatalf("unexpected id %q", id)
			}
			patch = in
			return sampleQuestionView(), nil
		},
	}
	c, rec := newTestContext(http.MethodPatch, "/api/questions/q1", `{"accepted_answer":""}`, alice)
	c.SetParamNames("id")
	c.SetParamValues("q1")

	if err := NewQuestionHandler(svc, nil, nil).Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if patch.Content != nil || patch.AcceptedAnswer == nil || *patch.AcceptedAnswer != "" {
		t.Fatalf("expected only a clear of accepted_answer, got %+v", patch)
	}
}

func TestQuestionHandler_DeleteForbidden(t *testing.T) {
	svc := &stubQuestionService{
		deleteFn: func(ctx context.Context, p *domain.Principal, id string) error {
			return domain.ErrForbidden
		},
	}
	c, _ := newTestContext(http.MethodDelete, "/api/questions/q1", "", alice)
	c.SetParamNames("id")
	c.SetParamValues("q1")

	if err := NewQuestionHandler(svc, nil, nil).Delete(c); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestQuestionHandler_Vote(t *testing.T) {
	votes := &stubVoteService{
		castFn: func(ctx context.Context, p *domain.Principal, kind domain.ItemKind, itemID string, value domain.VoteValue) (*domain.VoteTally, error) {
			if kind != domain.KindQuestion || itemID != "q1" || value != domain.VoteDown {
				t.Fatalf("unexpected cast: %s %s %v", kind, itemID, value)
			}
			down := false
			return &domain.VoteTally{ItemID: itemID, Downvotes: 1, ViewerVote: &down}, nil
		},
	}
	c, rec := newTestContext(http.MethodPost, "/api/questions/q1/vote", `{"vote":2}`, alice)
	c.SetParamNames("id")
	c.SetParamValues("q1")

	if err := NewQuestionHandler(nil, nil, votes).Vote(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["id"] != "q1" || resp["downvotes"] != float64(1) || resp["viewer_vote"] != false {
		t.Fatalf("unexpected tally: %+v", resp)
	}
}

func TestQuestionHandler_VoteRejectsBadValues(t *testing.T) {
	votes := &stubVoteService{
		castFn: func(ctx context.Context, p *domain.Principal, kind domain.ItemKind, itemID string, value domain.VoteValue) (*domain.VoteTally, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	for _, body := range []string{`{"vote":3}`, `{}`} {
		c, _ := newTestContext(http.MethodPost, "/api/questions/q1/vote", body, alice)
		err := NewQuestionHandler(nil, nil, votes).Vote(c)
		var verr *domain.ValidationError
		if !errors.As(err, &verr) || verr.Field != "vote" {
			t.Fatalf("%s: expected vote ValidationError, got %v", body, err)
		}
	}
}

func TestAnswerHandler_VoteUsesAnswerLedger(t *testing.T) {
	var kind domain.ItemKind
	votes := &stubVoteService{
		castFn: func(ctx context.Context, p *domain.Principal, k domain.ItemKind, itemID string, value domain.VoteValue) (*domain.VoteTally, error) {
			kind = k
			if value != domain.VoteNone {
				t.Fatalf("expected removal, got %v", value)
			}
			return &domain.VoteTally{ItemID: itemID}, nil
		},
	}
	c, _ := newTestContext(http.MethodPost, "/api/answers/a1/vote", `{"vote":0}`, alice)
	c.SetParamNames("id")
	c.SetParamValues("a1")

	if err := NewAnswerHandler(nil, votes).Vote(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if kind != domain.KindAnswer {
		t.Fatalf("expected answer ledger, got %s", kind)
	}
}
