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
)

type userService struct {
	users         ports.UserRepository
	questions     ports.QuestionRepository
	answers       ports.AnswerRepository
	notifications ports.NotificationRepository
	blobs         ports.BlobStore
	viewer        questionViewer
	bcryptCost    int
	log           zerolog.Logger
	now           func() time.Time
}

// NewUserService returns a UserService implementation.
func NewUserService(
	users ports.UserRepository,
	questions ports.QuestionRepository,
	answers ports.AnswerRepository,
	notifications ports.NotificationRepository,
	ledgers ports.VoteLedgers,
	blobs ports.BlobStore,
	bcryptCost int,
	log zerolog.Logger,
) ports.UserService {
	return &userService{
		users:         users,
		questions:     questions,
		answers:       answers,
		notifications: notifications,
		blobs:         blobs,
		viewer: questionViewer{
			questions: questions,
			answers:   answers,
			users:     users,
			ledger:    ledgers.Ledger(domain.KindQuestion),
		},
		bcryptCost: bcryptCost,
		log:        log.With().Str("component", "users").Logger(),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *userService) profile(ctx context.Context, u *domain.User) (*ports.UserProfile, error) {
	questions, err := s.questions.CountByUser(ctx, u.ID)
	if err != nil {
		return nil, fmt.Errorf("count questions: %w", err)
	}
	answers, err := s.answers.CountByUser(ctx, u.ID)
	if err != nil {
		return nil, fmt.Errorf("count answers: %w", err)
	}
	return &ports.UserProfile{
		UserSummary:    *summarize(u),
		Bio:            u.Bio,
		QuestionsCount: questions,
		AnswersCount:   answers,
		CreatedAt:      u.CreatedAt,
	}, nil
}

func (s *userService) ownProfile(ctx context.Context, u *domain.User) (*ports.OwnProfile, error) {
	pub, err := s.profile(ctx, u)
	if err != nil {
		return nil, err
	}
	unread, err := s.notifications.CountUnread(ctx, u.ID)
	if err != nil {
		return nil, fmt.Errorf("count unread: %w", err)
	}
	return &ports.OwnProfile{UserProfile: *pub, Email: u.Email, Phone: u.Phone, UnreadNotifications: unread}, nil
}

func (s *userService) OwnData(ctx context.Context, p *domain.Principal) (*ports.OwnProfile, error) {
	if p == nil {
		return nil, domain.ErrUnauthenticated
	}
	u, err := s.users.FindByID(ctx, p.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Credential outlived its account.
			return nil, domain.ErrUnauthenticated
		}
		return nil, fmt.Errorf("own data: %w", err)
	}
	out, err := s.ownProfile(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("own data: %w", err)
	}
	return out, nil
}

// UpdateProfile applies a self-service edit. Uniqueness violations are reported
// with the offending field.
func (s *userService) UpdateProfile(ctx context.Context, p *domain.Principal, patch domain.UserPatch) (*ports.OwnProfile, error) {
	if p == nil {
		return nil, domain.ErrUnauthenticated
	}
	u, err := s.users.FindByID(ctx, p.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthenticated
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}

	if err := s.apply(ctx, u, patch); err != nil {
		return nil, err
	}
	u.UpdatedAt = s.now()

	if err := s.users.Update(ctx, u); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, resolveConflict(ctx, s.users, u)
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}
	s.log.Info().Str("user_id", u.ID).Msg("profile updated")

	out, err := s.ownProfile(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return out, nil
}

func (s *userService) apply(ctx context.Context, u *domain.User, patch domain.UserPatch) error {
	if patch.FirstName != nil {
		u.FirstName = strings.TrimSpace(*patch.FirstName)
		if u.FirstName == "" {
			return domain.NewValidationError("first_name", "must not be empty")
		}
	}
	if patch.LastName != nil {
		u.LastName = strings.TrimSpace(*patch.LastName)
		if u.LastName == "" {
			return domain.NewValidationError("last_name", "must not be empty")
		}
	}
	if patch.Email != nil {
		u.Email = domain.NormalizeEmail(*patch.Email)
		if !strings.Contains(u.Email, "@") {
			return domain.NewValidationError("email", "must be a valid email")
		}
	}
	if patch.Username != nil {
		u.Username = domain.NormalizeUsername(*patch.Username)
		if len(u.Username) < 4 || len(u.Username) > 20 {
			return domain.NewValidationError("username", "must be between 4 and 20 characters")
		}
	}
	if patch.Phone != nil {
		u.Phone = strings.TrimSpace(*patch.Phone)
	}
	if patch.Job != nil {
		u.Job = strings.TrimSpace(*patch.Job)
	}
	if patch.Bio != nil {
		u.Bio = *patch.Bio
	}
	if patch.Password != nil {
		if n := len(*patch.Password); n < 8 || n > 28 {
			return domain.NewValidationError("password", "must be between 8 and 28 characters")
		}
		hash, err := hashPassword(*patch.Password, s.bcryptCost)
		if err != nil {
			return err
		}
		u.PasswordHash = hash
	}
	if patch.Avatar != nil {
		avatar := strings.TrimSpace(*patch.Avatar)
		if avatar != "" {
			ok, err := s.blobs.Exists(ctx, avatar)
			if err != nil {
				return fmt.Errorf("check avatar: %w", err)
			}
			if !ok {
				return domain.NewValidationError("avatar", "file does not exist")
			}
		}
		u.Avatar = avatar
	}
	return nil
}

func (s *userService) GetProfile(ctx context.Context, username string) (*ports.UserProfile, error) {
	u, err := s.users.FindByUsername(ctx, domain.NormalizeUsername(username))
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	out, err := s.profile(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return out, nil
}

// ListQuestions pages through the questions a user asked, newest first.
func (s *userService) ListQuestions(ctx context.Context, username string, page int, viewer *domain.Principal) (*ports.QuestionPage, error) {
	u, err := s.users.FindByUsername(ctx, domain.NormalizeUsername(username))
	if err != nil {
		return nil, fmt.Errorf("list user questions: %w", err)
	}
	filter := ports.QuestionFilter{
		UserID: u.ID,
		Page:   domain.NewPageRequest(page, 0, domain.DefaultPageSize),
	}
	return s.viewer.page(ctx, filter, viewer)
}
