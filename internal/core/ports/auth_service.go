package ports

import (
	"context"
	"time"

	"github.com/sal22/qanda-api/internal/core/domain"
)

// RegisterInput carries the fields of a new account.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Username  string
	Password  string
	Phone     string
	Job       string
	Bio       string
}

// TokenVerifier resolves a bearer credential to the acting identity.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*domain.Principal, error)
}

// AuthService covers registration, login and credential lifecycle.
type AuthService interface {
	TokenVerifier
	Register(ctx context.Context, in RegisterInput) (string, *domain.User, error)
	Login(ctx context.Context, username, password string) (string, *domain.User, error)
	Logout(ctx context.Context, p *domain.Principal) error
}

// UserSummary is the public fragment embedded in content views.
type UserSummary struct {
	ID        string
	Username  string
	FirstName string
	LastName  string
	Job       string
	Avatar    string
}

// UserProfile is the public profile of an account.
type UserProfile struct {
	UserSummary
	Bio            string
	QuestionsCount int64
	AnswersCount   int64
	CreatedAt      time.Time
}

// OwnProfile adds confidential fields visible only to the account holder.
type OwnProfile struct {
	UserProfile
	Email               string
	Phone               string
	UnreadNotifications int64
}

// UserService covers profile reads and self-service updates.
type UserService interface {
	OwnData(ctx context.Context, p *domain.Principal) (*OwnProfile, error)
	UpdateProfile(ctx context.Context, p *domain.Principal, patch domain.UserPatch) (*OwnProfile, error)
	GetProfile(ctx context.Context, username string) (*UserProfile, error)
	ListQuestions(ctx context.Context, username string, page int, viewer *domain.Principal) (*QuestionPage, error)
}
