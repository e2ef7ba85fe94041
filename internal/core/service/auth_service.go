package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sal22/qanda-api/internal/core/domain"
	"github.com/sal22/qanda-api/internal/core/ports"
	"github.com/sal22/qanda-api/internal/pkg/metrics"
)

// TokenConfig controls credential issuance.
type TokenConfig struct {
	Secret     string
	TTL        time.Duration
	BcryptCost int
}

// tokenClaims is the credential payload. Permissions are a snapshot of the
// role at issuance time.
type tokenClaims struct {
	Username    string   `json:"username"`
	Permissions []string `json:"permissions"`
	jwt.RegisteredClaims
}

// AuthService implements registration, login and credential verification.
type AuthService struct {
	users   ports.UserRepository
	roles   ports.RoleRepository
	revoked ports.RevocationStore
	cfg     TokenConfig
	log     zerolog.Logger
	now     func() time.Time
}

func NewAuthService(
	users ports.UserRepository,
	roles ports.RoleRepository,
	revoked ports.RevocationStore,
	cfg TokenConfig,
	log zerolog.Logger,
) *AuthService {
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * 24 * time.Hour
	}
	return &AuthService{
		users:   users,
		roles:   roles,
		revoked: revoked,
		cfg:     cfg,
		log:     log.With().Str("component", "auth").Logger(),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Register creates an account with the general role and returns a credential for it.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (string, *domain.User, error) {
	user := &domain.User{
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Email:     domain.NormalizeEmail(in.Email),
		Username:  domain.NormalizeUsername(in.Username),
		Phone:     strings.TrimSpace(in.Phone),
		Job:       strings.TrimSpace(in.Job),
		Bio:       in.Bio,
		Role:      domain.RoleGeneral,
	}
	if err := validateAccount(user, in.Password); err != nil {
		return "", nil, err
	}

	role, err := s.roles.FindByName(ctx, domain.RoleGeneral)
	if err != nil {
		return "", nil, fmt.Errorf("register: default role: %w", err)
	}

	hash, err := hashPassword(in.Password, s.cfg.BcryptCost)
	if err != nil {
		return "", nil, err
	}
	now := s.now()
	user.PasswordHash = hash
	user.CreatedAt = now
	user.UpdatedAt = now

	created, err := s.users.Create(ctx, user)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return "", nil, resolveConflict(ctx, s.users, user)
		}
		return "", nil, fmt.Errorf("register: %w", err)
	}

	token, err := s.issue(created, role)
	if err != nil {
		return "", nil, err
	}
	s.log.Info().Str("user_id", created.ID).Str("username", created.Username).Msg("user registered")
	return token, created, nil
}

// Login checks the password and returns a credential carrying the role's permissions.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	username = domain.NormalizeUsername(username)
	if username == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("login: %w", err)
	}
	if !checkPassword(user.PasswordHash, password) {
		return "", nil, domain.ErrInvalidCredentials
	}

	role, err := s.roles.FindByName(ctx, user.Role)
	if err != nil {
		return "", nil, fmt.Errorf("login: role %q: %w", user.Role, err)
	}

	token, err := s.issue(user, role)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// Logout puts the credential on the denylist until it would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, p *domain.Principal) error {
	if p == nil {
		return domain.ErrUnauthenticated
	}
	if s.revoked == nil || p.TokenID == "" {
		return nil
	}
	ttl := p.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.revoked.Revoke(ctx, p.TokenID, ttl); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	s.log.Info().Str("user_id", p.UserID).Str("jti", p.TokenID).Msg("credential revoked")
	return nil
}

// Verify decodes a bearer credential. Missing, malformed, expired and revoked
// credentials all yield domain.ErrUnauthenticated.
func (s *AuthService) Verify(ctx context.Context, token string) (*domain.Principal, error) {
	if token == "" {
		return nil, domain.ErrUnauthenticated
	}

	claims := &tokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return []byte(s.cfg.Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid {
		if errors.Is(err, jwt.ErrTokenExpired) {
			metrics.TokenVerificationsTotal.WithLabelValues("expired").Inc()
		} else {
			metrics.TokenVerificationsTotal.WithLabelValues("invalid").Inc()
		}
		return nil, domain.ErrUnauthenticated
	}
	if claims.Subject == "" {
		metrics.TokenVerificationsTotal.WithLabelValues("invalid").Inc()
		return nil, domain.ErrUnauthenticated
	}

	if s.revoked != nil && claims.ID != "" {
		revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
		if err != nil {
			s.log.Error().Err(err).Str("jti", claims.ID).Msg("revocation lookup failed")
			return nil, fmt.Errorf("verify: %w", domain.ErrUnavailable)
		}
		if revoked {
			metrics.TokenVerificationsTotal.WithLabelValues("revoked").Inc()
			return nil, domain.ErrUnauthenticated
		}
	}

	metrics.TokenVerificationsTotal.WithLabelValues("ok").Inc()
	p := &domain.Principal{
		UserID:      claims.Subject,
		Username:    claims.Username,
		Permissions: claims.Permissions,
		TokenID:     claims.ID,
	}
	if claims.ExpiresAt != nil {
		p.ExpiresAt = claims.ExpiresAt.Time
	}
	return p, nil
}

func (s *AuthService) issue(user *domain.User, role *domain.Role) (string, error) {
	now := s.now()
	claims := tokenClaims{
		Username:    user.Username,
		Permissions: role.PermissionNames(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TTL)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func validateAccount(u *domain.User, password string) error {
	switch {
	case u.FirstName == "":
		return domain.NewValidationError("first_name", "is required")
	case u.LastName == "":
		return domain.NewValidationError("last_name", "is required")
	case u.Email == "" || !strings.Contains(u.Email, "@"):
		return domain.NewValidationError("email", "must be a valid email")
	case len(u.Username) < 4 || len(u.Username) > 20:
		return domain.NewValidationError("username", "must be between 4 and 20 characters")
	case len(password) < 8 || len(password) > 28:
		return domain.NewValidationError("password", "must be between 8 and 28 characters")
	}
	return nil
}
