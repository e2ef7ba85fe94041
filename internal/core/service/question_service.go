package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/sal22/qanda-api/internal/core/domain"
	"github.com/sal22/qanda-api/internal/core/ports"
	"github.com/sal22/qanda-api/internal/pkg/metrics"
)

// questionViewer enriches stored questions for responses.
type questionViewer struct {
	questions ports.QuestionRepository
	answers   ports.AnswerRepository
	users     ports.UserRepository
	ledger    ports.VoteRepository
}

func (v questionViewer) view(ctx context.Context, q *domain.Question, viewer *domain.Principal, authors *authorCache) (ports.QuestionView, error) {
	author, err := authors.get(ctx, q.UserID)
	if err != nil {
		return ports.QuestionView{}, err
	}
	votes, err := tally(ctx, v.ledger, q.ID, viewer)
	if err != nil {
		return ports.QuestionView{}, err
	}
	count, err := v.answers.CountByQuestion(ctx, q.ID)
	if err != nil {
		return ports.QuestionView{}, fmt.Errorf("count answers: %w", err)
	}
	return ports.QuestionView{Question: q, Author: author, Votes: votes, AnswersCount: count}, nil
}

func (v questionViewer) page(ctx context.Context, filter ports.QuestionFilter, viewer *domain.Principal) (*ports.QuestionPage, error) {
	items, total, err := v.questions.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	authors := newAuthorCache(v.users)
	page := &ports.QuestionPage{Items: make([]ports.QuestionView, 0, len(items)), Meta: filter.Page.Meta(total)}
	for _, q := range items {
		qv, err := v.view(ctx, q, viewer, authors)
		if err != nil {
			return nil, fmt.Errorf("list questions: %w", err)
		}
		page.Items = append(page.Items, qv)
	}
	return page, nil
}

func errAnswerMissing() error {
	return domain.NewValidationError("accepted_answer", "answer does not exist")
}

type questionService struct {
	questions ports.QuestionRepository
	answers   ports.AnswerRepository
	ledgers   ports.VoteLedgers
	tx        ports.Transactor
	viewer    questionViewer
	log       zerolog.Logger
	now       func() time.Time
}

// NewQuestionService returns a QuestionService implementation.
func NewQuestionService(
	questions ports.QuestionRepository,
	answers ports.AnswerRepository,
	users ports.UserRepository,
	ledgers ports.VoteLedgers,
	tx ports.Transactor,
	log zerolog.Logger,
) ports.QuestionService {
	return &questionService{
		questions: questions,
		answers:   answers,
		ledgers:   ledgers,
		tx:        tx,
		viewer: questionViewer{
			questions: questions,
			answers:   answers,
			users:     users,
			ledger:    ledgers.Ledger(domain.KindQuestion),
		},
		log: log.With().Str("component", "questions").Logger(),
		now: func() time.Time { return time.Now().UTC() },
	}
}

// List returns questions newest first. Pages past the end are empty, not an error.
func (s *questionService) List(ctx context.Context, in ports.ListQuestionsInput) (*ports.QuestionPage, error) {
	filter := ports.QuestionFilter{
		Search: strings.TrimSpace(in.Search),
		Page:   domain.NewPageRequest(in.Page, 0, domain.DefaultPageSize),
	}
	return s.viewer.page(ctx, filter, in.Viewer)
}

func (s *questionService) Get(ctx context.Context, id string, viewer *domain.Principal) (*ports.QuestionView, error) {
	q, err := s.questions.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get question: %w", err)
	}
	qv, err := s.viewer.view(ctx, q, viewer, newAuthorCache(s.viewer.users))
	if err != nil {
		return nil, fmt.Errorf("get question: %w", err)
	}
	return &qv, nil
}

func (s *questionService) Create(ctx context.Context, p *domain.Principal, content string) (*ports.QuestionView, error) {
	if p == nil {
		return nil, domain.ErrUnauthenticated
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, domain.NewValidationError("content", "is required")
	}

	q := &domain.Question{UserID: p.UserID, Content: content, CreatedAt: s.now()}
	if err := s.questions.Create(ctx, q); err != nil {
		return nil, fmt.Errorf("create question: %w", err)
	}
	metrics.ContentCreatedTotal.WithLabelValues(string(domain.KindQuestion)).Inc()
	s.log.Info().Str("question_id", q.ID).Str("user_id", p.UserID).Msg("question created")

	qv, err := s.viewer.view(ctx, q, p, newAuthorCache(s.viewer.users))
	if err != nil {
		return nil, fmt.Errorf("create question: %w", err)
	}
	return &qv, nil
}

// Update applies an owner edit. An accepted answer must belong to the question;
// an empty accepted_answer clears the pointer. Only the patched fields are
// written, and accepting an answer commits together with a claim on it so a
// concurrent delete of that answer cannot leave the pointer dangling.
func (s *questionService) Update(ctx context.Context, p *domain.Principal, id string, patch domain.QuestionPatch) (*ports.QuestionView, error) {
	q, err := s.questions.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("update question: %w", err)
	}
	if err := domain.AuthorizeEdit(p, q); err != nil {
		return nil, err
	}

	var fields domain.QuestionPatch
	if patch.Content != nil {
		content := strings.TrimSpace(*patch.Content)
		if content == "" {
			return nil, domain.NewValidationError("content", "must not be empty")
		}
		fields.Content = &content
	}
	if patch.AcceptedAnswer != nil {
		answerID := strings.TrimSpace(*patch.AcceptedAnswer)
		if answerID != "" {
			a, err := s.answers.FindByID(ctx, answerID)
			switch {
			case errors.Is(err, domain.ErrNotFound):
				return nil, errAnswerMissing()
			case err != nil:
				return nil, fmt.Errorf("update question: %w", err)
			case a.QuestionID != q.ID:
				return nil, domain.NewValidationError("accepted_answer", "answer does not belong to this question")
			}
		}
		fields.AcceptedAnswer = &answerID
	}

	var updated *domain.Question
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if fields.AcceptedAnswer != nil && *fields.AcceptedAnswer != "" {
			if err := s.answers.ClaimForQuestion(ctx, *fields.AcceptedAnswer, q.ID); err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					return errAnswerMissing()
				}
				return err
			}
		}
		var err error
		updated, err = s.questions.UpdateFields(ctx, q.ID, fields)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("update question: %w", err)
	}

	qv, err := s.viewer.view(ctx, updated, p, newAuthorCache(s.viewer.users))
	if err != nil {
		return nil, fmt.Errorf("update question: %w", err)
	}
	return &qv, nil
}

// Delete removes a question with its answers and every vote on either, atomically.
func (s *questionService) Delete(ctx context.Context, p *domain.Principal, id string) error {
	q, err := s.questions.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("delete question: %w", err)
	}
	if err := domain.AuthorizeDelete(p, q, domain.KindQuestion.DeletePermission()); err != nil {
		return err
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		answerIDs, err := s.answers.DeleteByQuestion(ctx, q.ID)
		if err != nil {
			return err
		}
		if len(answerIDs) > 0 {
			if err := s.ledgers.Ledger(domain.KindAnswer).DeleteByItems(ctx, answerIDs...); err != nil {
				return err
			}
		}
		if err := s.ledgers.Ledger(domain.KindQuestion).DeleteByItems(ctx, q.ID); err != nil {
			return err
		}
		return s.questions.Delete(ctx, q.ID)
	})
	if err != nil {
		return fmt.Errorf("delete question: %w", err)
	}

	by := deletedBy(p, q)
	metrics.ContentDeletedTotal.WithLabelValues(string(domain.KindQuestion), by).Inc()
	s.log.Info().Str("question_id", q.ID).Str("actor", p.UserID).Str("by", by).Msg("question deleted")
	return nil
}
