package ports

import (
	"context"

	"github.com/sal22/qanda-api/internal/core/domain"
)

// QuestionView is a question enriched with its author and vote tally.
type QuestionView struct {
	Question     *domain.Question
	Author       *UserSummary
	Votes        domain.VoteTally
	AnswersCount int64
}

// AnswerView is an answer enriched with its author and vote tally.
type AnswerView struct {
	Answer *domain.Answer
	Author *UserSummary
	Votes  domain.VoteTally
}

type QuestionPage struct {
	Items []QuestionView
	Meta  domain.PageMeta
}

type AnswerPage struct {
	Items []AnswerView
	Meta  domain.PageMeta
}

// ListQuestionsInput carries listing parameters. Viewer may be nil.
type ListQuestionsInput struct {
	Search string
	Page   int
	Viewer *domain.Principal
}

// QuestionService defines use-case operations for questions.
type QuestionService interface {
	List(ctx context.Context, in ListQuestionsInput) (*QuestionPage, error)
	Get(ctx context.Context, id string, viewer *domain.Principal) (*QuestionView, error)
	Create(ctx context.Context, p *domain.Principal, content string) (*QuestionView, error)
	Update(ctx context.Context, p *domain.Principal, id string, patch domain.QuestionPatch) (*QuestionView, error)
	Delete(ctx context.Context, p *domain.Principal, id string) error
}

// AnswerService defines use-case operations for answers.
type AnswerService interface {
	ListForQuestion(ctx context.Context, questionID string, page int, viewer *domain.Principal) (*AnswerPage, error)
	Get(ctx context.Context, id string, viewer *domain.Principal) (*AnswerView, error)
	Create(ctx context.Context, p *domain.Principal, questionID, content string) (*AnswerView, error)
	Update(ctx context.Context, p *domain.Principal, id string, patch domain.AnswerPatch) (*AnswerView, error)
	Delete(ctx context.Context, p *domain.Principal, id string) error
}

// VoteService casts votes and reads tallies.
type VoteService interface {
	Cast(ctx context.Context, p *domain.Principal, kind domain.ItemKind, itemID string, value domain.VoteValue) (*domain.VoteTally, error)
	Tally(ctx context.Context, kind domain.ItemKind, itemID string, viewer *domain.Principal) (domain.VoteTally, error)
}

// NotificationPage is one page of a user's mailbox with the live unread count.
type NotificationPage struct {
	Items       []*domain.Notification
	UnreadCount int64
	Meta        domain.PageMeta
}

// Notifier appends notifications. Failures never reach the caller.
type Notifier interface {
	Notify(ctx context.Context, ownerID, content, url string)
}

// NotificationService is the per-user outbox.
type NotificationService interface {
	Notifier
	ListFor(ctx context.Context, p *domain.Principal, page int) (*NotificationPage, error)
	MarkRead(ctx context.Context, p *domain.Principal, id string) (*domain.Notification, error)
	UnreadCount(ctx context.Context, userID string) (int64, error)
}
