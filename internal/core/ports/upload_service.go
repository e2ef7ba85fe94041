package ports

import (
	"context"
	"io"

	"github.com/sal22/qanda-api/internal/core/domain"
)

// UploadInput is a client file as received by the transport layer.
type UploadInput struct {
	Filename string
	Size     int64
	Body     io.Reader
}

// UploadService validates and stores images.
type UploadService interface {
	Upload(ctx context.Context, p *domain.Principal, in UploadInput) (string, error)
	Open(ctx context.Context, name string) (io.ReadCloser, string, error)
	Exists(ctx context.Context, name string) (bool, error)
}

// ReportService mails abuse reports to the site administrator.
type ReportService interface {
	ReportQuestion(ctx context.Context, p *domain.Principal, questionID string) error
	ReportAnswer(ctx context.Context, p *domain.Principal, answerID string) error
}
