package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"time"

	"github.com/rs/zerolog"

	"github.com/sal22/qanda-api/internal/core/domain"
	"github.com/sal22/qanda-api/internal/core/ports"
	"github.com/sal22/qanda-api/internal/pkg/metrics"
)

// NotificationOptions tunes side channels of the outbox.
type NotificationOptions struct {
	// NotifySelf keeps notifications for actions on one's own content.
	NotifySelf bool
	// Email sends a mail copy of each notification through the mail queue.
	Email bool
	// BaseURL prefixes notification URLs in mail copies.
	BaseURL string
}

type notificationService struct {
	repo  ports.NotificationRepository
	users ports.UserRepository
	mail  ports.MailQueue
	opts  NotificationOptions
	log   zerolog.Logger
	now   func() time.Time
}

// NewNotificationService returns the per-user outbox. mail may be nil when
// Email is off.
func NewNotificationService(
	repo ports.NotificationRepository,
	users ports.UserRepository,
	mail ports.MailQueue,
	opts NotificationOptions,
	log zerolog.Logger,
) ports.NotificationService {
	return &notificationService{
		repo:  repo,
		users: users,
		mail:  mail,
		opts:  opts,
		log:   log.With().Str("component", "notifications").Logger(),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

type actorKey struct{}

// WithActor records who is acting so the outbox can recognise self-notifications.
func WithActor(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, actorKey{}, userID)
}

func actorFrom(ctx context.Context) string {
	id, _ := ctx.Value(actorKey{}).(string)
	return id
}

// Notify appends to ownerID's mailbox. Errors are logged and swallowed.
func (s *notificationService) Notify(ctx context.Context, ownerID, content, url string) {
	if ownerID == "" {
		return
	}
	if !s.opts.NotifySelf && actorFrom(ctx) == ownerID {
		metrics.NotificationsTotal.WithLabelValues("skipped_self").Inc()
		return
	}

	n := &domain.Notification{UserID: ownerID, Content: content, URL: url, CreatedAt: s.now()}
	if err := s.repo.Create(ctx, n); err != nil {
		metrics.NotificationsTotal.WithLabelValues("failed").Inc()
		s.log.Warn().Err(err).Str("owner_id", ownerID).Str("url", url).Msg("notification not stored")
		return
	}
	metrics.NotificationsTotal.WithLabelValues("created").Inc()

	if s.opts.Email && s.mail != nil {
		s.mailCopy(ctx, n)
	}
}

func (s *notificationService) mailCopy(ctx context.Context, n *domain.Notification) {
	owner, err := s.users.FindByID(ctx, n.UserID)
	if err != nil {
		s.log.Warn().Err(err).Str("owner_id", n.UserID).Msg("notification mail skipped")
		return
	}
	if owner.Email == "" {
		return
	}
	link := s.opts.BaseURL + n.URL
	s.mail.Enqueue(ports.Mail{
		To:      owner.Email,
		Subject: "New activity on your content",
		Text:    n.Content + "\n\n" + link,
		HTML:    fmt.Sprintf(`<p>%s</p><p><a href="%s">View</a></p>`, html.EscapeString(n.Content), html.EscapeString(link)),
	})
}

// ListFor returns the principal's notifications newest first with the live unread count.
func (s *notificationService) ListFor(ctx context.Context, p *domain.Principal, page int) (*ports.NotificationPage, error) {
	if p == nil {
		return nil, domain.ErrUnauthenticated
	}
	req := domain.NewPageRequest(page, 0, domain.DefaultPageSize)
	items, total, err := s.repo.ListByUser(ctx, p.UserID, req)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	unread, err := s.repo.CountUnread(ctx, p.UserID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	if items == nil {
		items = []*domain.Notification{}
	}
	return &ports.NotificationPage{Items: items, UnreadCount: unread, Meta: req.Meta(total)}, nil
}

// MarkRead flips is_read for the owner. Repeating it is a no-op.
func (s *notificationService) MarkRead(ctx context.Context, p *domain.Principal, id string) (*domain.Notification, error) {
	n, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("mark read: %w", err)
	}
	if err := domain.AuthorizeEdit(p, n); err != nil {
		return nil, err
	}
	if n.IsRead {
		return n, nil
	}
	if err := s.repo.MarkRead(ctx, n.ID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("mark read: %w", err)
	}
	n.IsRead = true
	return n, nil
}

func (s *notificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}
