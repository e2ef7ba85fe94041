package service

import (
	"context"
	"fmt"
	"html"
	"time"

	"github.com/rs/zerolog"

	"github.com/sal22/qanda-api/internal/core/domain"
	"github.com/sal22/qanda-api/internal/core/ports"
	"github.com/sal22/qanda-api/internal/pkg/metrics"
)

// ReportOptions addresses abuse reports.
type ReportOptions struct {
	AdminEmail string
	BaseURL    string
	Timeout    time.Duration
}

type reportService struct {
	questions ports.QuestionRepository
	answers   ports.AnswerRepository
	sender    ports.MailSender
	opts      ReportOptions
	log       zerolog.Logger
}

// NewReportService returns a ReportService that mails the administrator synchronously.
func NewReportService(
	questions ports.QuestionRepository,
	answers ports.AnswerRepository,
	sender ports.MailSender,
	opts ReportOptions,
	log zerolog.Logger,
) ports.ReportService {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	return &reportService{
		questions: questions,
		answers:   answers,
		sender:    sender,
		opts:      opts,
		log:       log.With().Str("component", "reports").Logger(),
	}
}

func (s *reportService) ReportQuestion(ctx context.Context, p *domain.Principal, questionID string) error {
	if p == nil {
		return domain.ErrUnauthenticated
	}
	q, err := s.questions.FindByID(ctx, questionID)
	if err != nil {
		return fmt.Errorf("report question: %w", err)
	}
	return s.send(ctx, p, domain.KindQuestion, q.ID, q.Content, questionURL(q.ID))
}

func (s *reportService) ReportAnswer(ctx context.Context, p *domain.Principal, answerID string) error {
	if p == nil {
		return domain.ErrUnauthenticated
	}
	a, err := s.answers.FindByID(ctx, answerID)
	if err != nil {
		return fmt.Errorf("report answer: %w", err)
	}
	return s.send(ctx, p, domain.KindAnswer, a.ID, a.Content, answerURL(a.QuestionID, a.ID))
}

func (s *reportService) send(ctx context.Context, p *domain.Principal, kind domain.ItemKind, id, content, url string) error {
	link := s.opts.BaseURL + url
	m := ports.Mail{
		To:      s.opts.AdminEmail,
		Subject: fmt.Sprintf("Reported %s %s", kind, id),
		Text: fmt.Sprintf("%s reported %s %s.\n\n%s\n\n%s",
			p.Username, kind, id, content, link),
		HTML: fmt.Sprintf(`<p><b>%s</b> reported %s <code>%s</code>.</p><blockquote>%s</blockquote><p><a href="%s">%s</a></p>`,
			html.EscapeString(p.Username), kind, id, html.EscapeString(content), link, link),
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	if err := s.sender.Send(ctx, m); err != nil {
		metrics.MailSentTotal.WithLabelValues("report", "error").Inc()
		s.log.Error().Err(err).Str("kind", string(kind)).Str("item_id", id).Msg("report mail failed")
		return fmt.Errorf("report %s: %w", kind, domain.ErrUnavailable)
	}
	metrics.MailSentTotal.WithLabelValues("report", "ok").Inc()
	s.log.Info().Str("kind", string(kind)).Str("item_id", id).Str("reporter", p.UserID).Msg("content reported")
	return nil
}
