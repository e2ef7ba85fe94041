package ports

import (
	"context"
	"io"
	"time"
)

// RevocationStore is the credential denylist keyed by token id.
type RevocationStore interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// BlobStore keeps uploaded files.
type BlobStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, string, error)
	Exists(ctx context.Context, key string) (bool, error)
}

// Mail is a single outgoing message.
type Mail struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// MailSender delivers mail synchronously.
type MailSender interface {
	Send(ctx context.Context, m Mail) error
}

// MailQueue accepts mail for asynchronous, best-effort delivery.
type MailQueue interface {
	Enqueue(m Mail)
}

// ContentRenderer turns untrusted user text into safe HTML.
type ContentRenderer interface {
	Render(content string) string
}
