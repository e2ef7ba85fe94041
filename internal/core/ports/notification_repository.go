package ports

import (
	"context"

	"github.com/sal22/qanda-api/internal/core/domain"
)

// NotificationRepository stores per-user notifications, newest first.
type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	FindByID(ctx context.Context, id string) (*domain.Notification, error)
	ListByUser(ctx context.Context, userID string, page domain.PageRequest) ([]*domain.Notification, int64, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, id string) error
}
