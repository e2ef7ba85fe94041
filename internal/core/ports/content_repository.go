package ports

import (
	"context"

	"github.com/sal22/qanda-api/internal/core/domain"
)

// QuestionFilter carries the optional listing criteria for questions.
type QuestionFilter struct {
	Search string // case-insensitive substring over content
	UserID string // only questions owned by this user
	Page   domain.PageRequest
}

// QuestionRepository defines persistence operations for questions.
// Listings are ordered by created_at descending.
type QuestionRepository interface {
	Create(ctx context.Context, q *domain.Question) error
	FindByID(ctx context.Context, id string) (*domain.Question, error)
	List(ctx context.Context, filter QuestionFilter) ([]*domain.Question, int64, error)
	// UpdateFields writes only the non-nil fields of patch and returns the
	// stored question. An empty AcceptedAnswer removes the pointer.
	UpdateFields(ctx context.Context, id string, patch domain.QuestionPatch) (*domain.Question, error)
	Delete(ctx context.Context, id string) error
	// ClearAcceptedAnswer unsets the pointer only when it still references answerID.
	ClearAcceptedAnswer(ctx context.Context, questionID, answerID string) error
	CountByUser(ctx context.Context, userID string) (int64, error)
}

// AnswerRepository defines persistence operations for answers.
type AnswerRepository interface {
	Create(ctx context.Context, a *domain.Answer) error
	FindByID(ctx context.Context, id string) (*domain.Answer, error)
	ListByQuestion(ctx context.Context, questionID string, page domain.PageRequest) ([]*domain.Answer, int64, error)
	Update(ctx context.Context, a *domain.Answer) error
	Delete(ctx context.Context, id string) error
	// ClaimForQuestion stamps the answer as accepted by questionID. It fails with
	// ErrAnswerNotFound when the answer is gone or belongs to another question,
	// and it conflicts with a concurrent Delete of the same answer.
	ClaimForQuestion(ctx context.Context, answerID, questionID string) error
	// DeleteByQuestion removes every answer of a question and returns their ids.
	DeleteByQuestion(ctx context.Context, questionID string) ([]string, error)
	CountByQuestion(ctx context.Context, questionID string) (int64, error)
	CountByUser(ctx context.Context, userID string) (int64, error)
}

// Transactor runs fn as one atomic unit. Repositories called with the ctx
// passed to fn take part in the transaction.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
