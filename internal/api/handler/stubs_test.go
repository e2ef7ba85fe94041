package handler

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/sal22/qanda-api/internal/api/middleware"
	"github.com/sal22/qanda-api/internal/core/domain"
	"github.com/sal22/qanda-api/internal/core/ports"
)

// newTestContext builds a request context with the validator installed and,
// when p is non-nil, the principal the Auth middleware would have injected.
func newTestContext(method, target, body string, p *domain.Principal) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if p != nil {
		c.Set(middleware.PrincipalKey, p)
	}
	return c, rec
}

var alice = &domain.Principal{UserID: "u1", Username: "alice"}

type stubAuthService struct {
	registerFn func(ctx context.Context, in ports.RegisterInput) (string, *domain.User, error)
	loginFn    func(ctx context.Context, username, password string) (string, *domain.User, error)
	logoutFn   func(ctx context.Context, p *domain.Principal) error
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (string, *domain.User, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	return s.loginFn(ctx, username, password)
}

func (s *stubAuthService) Logout(ctx context.Context, p *domain.Principal) error {
	return s.logoutFn(ctx, p)
}

func (s *stubAuthService) Verify(context.Context, string) (*domain.Principal, error) {
	return nil, domain.ErrUnauthenticated
}

type stubQuestionService struct {
	listFn   func(ctx context.Context, in ports.ListQuestionsInput) (*ports.QuestionPage, error)
	getFn    func(ctx context.Context, id string, viewer *domain.Principal) (*ports.QuestionView, error)
	createFn func(ctx context.Context, p *domain.Principal, content string) (*ports.QuestionView, error)
	updateFn func(ctx context.Context, p *domain.Principal, id string, patch domain.QuestionPatch) (*ports.QuestionView, error)
	deleteFn func(ctx context.Context, p *domain.Principal, id string) error
}

func (s *stubQuestionService) List(ctx context.Context, in ports.ListQuestionsInput) (*ports.QuestionPage, error) {
	return s.listFn(ctx, in)
}

func (s *stubQuestionService) Get(ctx context.Context, id string, viewer *domain.Principal) (*ports.QuestionView, error) {
	return s.getFn(ctx, id, viewer)
}

func (s *stubQuestionService) Create(ctx context.Context, p *domain.Principal, content string) (*ports.QuestionView, error) {
	return s.createFn(ctx, p, content)
}

func (s *stubQuestionService) Update(ctx context.Context, p *domain.Principal, id string, patch domain.QuestionPatch) (*ports.QuestionView, error) {
	return s.updateFn(ctx, p, id, patch)
}

func (s *stubQuestionService) Delete(ctx context.Context, p *domain.Principal, id string) error {
	return s.deleteFn(ctx, p, id)
}

type stubVoteService struct {
	castFn func(ctx context.Context, p *domain.Principal, kind domain.ItemKind, itemID string, value domain.VoteValue) (*domain.VoteTally, error)
}

func (s *stubVoteService) Cast(ctx context.Context, p *domain.Principal, kind domain.ItemKind, itemID string, value domain.VoteValue) (*domain.VoteTally, error) {
	return s.castFn(ctx, p, kind, itemID, value)
}

func (s *stubVoteService) Tally(context.Context, domain.ItemKind, string, *domain.Principal) (domain.VoteTally, error) {
	return domain.VoteTally{}, nil
}

type stubNotificationService struct {
	listFn func(ctx context.Context, p *domain.Principal, page int) (*ports.NotificationPage, error)
	markFn func(ctx context.Context, p *domain.Principal, id string) (*domain.Notification, error)
}

func (s *stubNotificationService) Notify(context.Context, string, string, string) {}

func (s *stubNotificationService) ListFor(ctx context.Context, p *domain.Principal, page int) (*ports.NotificationPage, error) {
	return s.listFn(ctx, p, page)
}

func (s *stubNotificationService) MarkRead(ctx context.Context, p *domain.Principal, id string) (*domain.Notification, error) {
	return s.markFn(ctx, p, id)
}

func (s *stubNotificationService) UnreadCount(context.Context, string) (int64, error) {
	return 0, nil
}

type stubUploadService struct {
	uploadFn func(ctx context.Context, p *domain.Principal, in ports.UploadInput) (string, error)
	openFn   func(ctx context.Context, name string) (io.ReadCloser, string, error)
}

func (s *stubUploadService) Upload(ctx context.Context, p *domain.Principal, in ports.UploadInput) (string, error) {
	return s.uploadFn(ctx, p, in)
}

func (s *stubUploadService) Open(ctx context.Context, name string) (io.ReadCloser, string, error) {
	return s.openFn(ctx, name)
}

func (s *stubUploadService) Exists(context.Context, string) (bool, error) {
	return false, nil
}
