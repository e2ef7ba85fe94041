package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/sal22/qanda-api/internal/core/domain"
	"github.com/sal22/qanda-api/internal/core/ports"
	"github.com/sal22/qanda-api/internal/pkg/metrics"
)

type answerService struct {
	answers   ports.AnswerRepository
	questions ports.QuestionRepository
	users     ports.UserRepository
	ledgers   ports.VoteLedgers
	tx        ports.Transactor
	renderer  ports.ContentRenderer
	notifier  ports.Notifier
	log       zerolog.Logger
	now       func() time.Time
}

// NewAnswerService returns an AnswerService implementation. Answer bodies are
// passed through renderer before they are stored.
func NewAnswerService(
	answers ports.AnswerRepository,
	questions ports.QuestionRepository,
	users ports.UserRepository,
	ledgers ports.VoteLedgers,
	tx ports.Transactor,
	renderer ports.ContentRenderer,
	notifier ports.Notifier,
	log zerolog.Logger,
) ports.AnswerService {
	return &answerService{
		answers:   answers,
		questions: questions,
		users:     users,
		ledgers:   ledgers,
		tx:        tx,
		renderer:  renderer,
		notifier:  notifier,
		log:       log.With().Str("component", "answers").Logger(),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *answerService) view(ctx context.Context, a *domain.Answer, viewer *domain.Principal, authors *authorCache) (ports.AnswerView, error) {
	author, err := authors.get(ctx, a.UserID)
	if err != nil {
		return ports.AnswerView{}, err
	}
	votes, err := tally(ctx, s.ledgers.Ledger(domain.KindAnswer), a.ID, viewer)
	if err != nil {
		return ports.AnswerView{}, err
	}
	return ports.AnswerView{Answer: a, Author: author, Votes: votes}, nil
}

// ListForQuestion pages through a question's answers, NestedAnswersPageSize at a time.
func (s *answerService) ListForQuestion(ctx context.Context, questionID string, page int, viewer *domain.Principal) (*ports.AnswerPage, error) {
	if _, err := s.questions.FindByID(ctx, questionID); err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	req := domain.NewPageRequest(page, 0, domain.NestedAnswersPageSize)
	items, total, err := s.answers.ListByQuestion(ctx, questionID, req)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}

	authors := newAuthorCache(s.users)
	out := &ports.AnswerPage{Items: make([]ports.AnswerView, 0, len(items)), Meta: req.Meta(total)}
	for _, a := range items {
		av, err := s.view(ctx, a, viewer, authors)
		if err != nil {
			return nil, fmt.Errorf("list answers: %w", err)
		}
		out.Items = append(out.Items, av)
	}
	return out, nil
}

func (s *answerService) Get(ctx context.Context, id string, viewer *domain.Principal) (*ports.AnswerView, error) {
	a, err := s.answers.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get answer: %w", err)
	}
	av, err := s.view(ctx, a, viewer, newAuthorCache(s.users))
	if err != nil {
		return nil, fmt.Errorf("get answer: %w", err)
	}
	return &av, nil
}

func (s *answerService) render(content string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", domain.NewValidationError("content", "is required")
	}
	html := strings.TrimSpace(s.renderer.Render(content))
	if html == "" {
		return "", domain.NewValidationError("content", "has no displayable text")
	}
	return html, nil
}

// Create posts an answer and tells the question owner about it.
func (s *answerService) Create(ctx context.Context, p *domain.Principal, questionID, content string) (*ports.AnswerView, error) {
	if p == nil {
		return nil, domain.ErrUnauthenticated
	}
	if strings.TrimSpace(questionID) == "" {
		return nil, domain.NewValidationError("question_id", "is required")
	}
	html, err := s.render(content)
	if err != nil {
		return nil, err
	}
	q, err := s.questions.FindByID(ctx, questionID)
	if err != nil {
		return nil, fmt.Errorf("create answer: %w", err)
	}

	a := &domain.Answer{UserID: p.UserID, QuestionID: q.ID, Content: html, CreatedAt: s.now()}
	if err := s.answers.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("create answer: %w", err)
	}
	metrics.ContentCreatedTotal.WithLabelValues(string(domain.KindAnswer)).Inc()
	s.log.Info().Str("answer_id", a.ID).Str("question_id", q.ID).Str("user_id", p.UserID).Msg("answer created")

	s.notifier.Notify(WithActor(ctx, p.UserID), q.UserID, p.Username+" answered your question", questionURL(q.ID))

	av, err := s.view(ctx, a, p, newAuthorCache(s.users))
	if err != nil {
		return nil, fmt.Errorf("create answer: %w", err)
	}
	return &av, nil
}

func (s *answerService) Update(ctx context.Context, p *domain.Principal, id string, patch domain.AnswerPatch) (*ports.AnswerView, error) {
	a, err := s.answers.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("update answer: %w", err)
	}
	if err := domain.AuthorizeEdit(p, a); err != nil {
		return nil, err
	}
	if patch.Content != nil {
		html, err := s.render(*patch.Content)
		if err != nil {
			return nil, err
		}
		a.Content = html
	}
	if err := s.answers.Update(ctx, a); err != nil {
		return nil, fmt.Errorf("update answer: %w", err)
	}
	av, err := s.view(ctx, a, p, newAuthorCache(s.users))
	if err != nil {
		return nil, fmt.Errorf("update answer: %w", err)
	}
	return &av, nil
}

// Delete removes the answer and its votes, and clears the parent's accepted
// pointer when it referenced this answer. All three commit together.
func (s *answerService) Delete(ctx context.Context, p *domain.Principal, id string) error {
	a, err := s.answers.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("delete answer: %w", err)
	}
	if err := domain.AuthorizeDelete(p, a, domain.KindAnswer.DeletePermission()); err != nil {
		return err
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.ledgers.Ledger(domain.KindAnswer).DeleteByItems(ctx, a.ID); err != nil {
			return err
		}
		if err := s.answers.Delete(ctx, a.ID); err != nil {
			return err
		}
		return s.questions.ClearAcceptedAnswer(ctx, a.QuestionID, a.ID)
	})
	if err != nil {
		return fmt.Errorf("delete answer: %w", err)
	}

	by := deletedBy(p, a)
	metrics.ContentDeletedTotal.WithLabelValues(string(domain.KindAnswer), by).Inc()
	s.log.Info().Str("answer_id", a.ID).Str("question_id", a.QuestionID).Str("actor", p.UserID).Str("by", by).Msg("answer deleted")
	return nil
}
