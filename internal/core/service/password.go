package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/sal22/qanda-api/internal/core/domain"
	"github.com/sal22/qanda-api/internal/core/ports"
)

// DefaultBcryptCost matches the work factor accounts have always been hashed with.
const DefaultBcryptCost = 12

func hashPassword(password string, cost int) (string, error) {
	if cost == 0 {
		cost = DefaultBcryptCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// resolveConflict probes which unique field of u is held by another account.
// The store only says a unique index fired; the probe order is email,
// username, phone.
func resolveConflict(ctx context.Context, users ports.UserRepository, u *domain.User) error {
	probes := []struct {
		field string
		value string
		find  func(context.Context, string) (*domain.User, error)
	}{
		{"email", u.Email, users.FindByEmail},
		{"username", u.Username, users.FindByUsername},
		{"phone", u.Phone, users.FindByPhone},
	}
	for _, p := range probes {
		if p.value == "" {
			continue
		}
		other, err := p.find(ctx, p.value)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("probe %s: %w", p.field, err)
		}
		if other.ID != u.ID {
			return &domain.ConflictError{Field: p.field}
		}
	}
	// The index fired but the holder vanished in between; report the likeliest field.
	return &domain.ConflictError{Field: "phone"}
}
