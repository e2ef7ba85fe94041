package ports

import (
	"context"

	"github.com/sal22/qanda-api/internal/core/domain"
)

// UserRepository defines persistence for accounts. Unique indexes on email,
// username and phone reject duplicates with domain.ErrDuplicate.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByPhone(ctx context.Context, phone string) (*domain.User, error)
}

// RoleRepository reads roles and lets the seed command install them.
type RoleRepository interface {
	FindByName(ctx context.Context, name string) (*domain.Role, error)
	UpsertPermission(ctx context.Context, perm domain.Permission) error
	UpsertRole(ctx context.Context, role *domain.Role) error
}
