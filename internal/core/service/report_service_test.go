package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/sal22/qanda-api/internal/core/domain"
)

func newTestReportService(sender *stubMailSender) (*stubQuestionRepo, *stubAnswerRepo, *reportService) {
	questions := newStubQuestionRepo()
	answers := newStubAnswerRepo()
	questions.add(domain.Question{ID: "q1", UserID: "alice", Content: "<b>spam</b>"})
	answers.add(domain.Answer{ID: "a1", UserID: "alice", QuestionID: "q1", Content: "<p>spam</p>"})
	svc := NewReportService(questions, answers, sender, ReportOptions{AdminEmail: "admin@example.com"}, zerolog.Nop())
	return questions, answers, svc.(*reportService)
}

func TestReportService_MailsAdmin(t *testing.T) {
	sender := &stubMailSender{}
	_, _, svc := newTestReportService(sender)

	if err := svc.ReportQuestion(context.Background(), bob, "q1"); err != nil {
		t.Fatalf("ReportQuestion: %v", err)
	}
	if err := svc.ReportAnswer(context.Background(), bob, "a1"); err != nil {
		t.Fatalf("ReportAnswer: %v", err)
	}
	if len(sender.sent) != 2 {
		t.Fatalf("expected two mails, got %d", len(sender.sent))
	}
	m := sender.sent[0]
	if m.To != "admin@example.com" || !strings.Contains(m.Subject, "q1") {
		t.Fatalf("unexpected mail: %+v", m)
	}
	if strings.Contains(m.HTML, "<b>spam</b>") {
		t.Fatalf("reported content must be escaped in the HTML body")
	}
}

func TestReportService_Errors(t *testing.T) {
	sender := &stubMailSender{}
	_, _, svc := newTestReportService(sender)
	ctx := context.Background()

	if err := svc.ReportQuestion(ctx, bob, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := svc.ReportAnswer(ctx, nil, "a1"); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}

	sender.err = errors.New("smtp down")
	if err := svc.ReportAnswer(ctx, bob, "a1"); !errors.Is(err, domain.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}
