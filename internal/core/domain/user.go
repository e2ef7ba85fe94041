package domain

import (
	"strings"
	"time"
)

// Seeded roles.
const (
	RoleGeneral    = "general"
	RoleSuperAdmin = "superadmin"
)

// Permission names an elevated capability carried in a credential.
type Permission string

const (
	PermDeleteUsers     Permission = "delete:users"
	PermDeleteAnswers   Permission = "delete:answers"
	PermDeleteQuestions Permission = "delete:questions"
)

// AllPermissions is the full set held by the superadmin role.
var AllPermissions = []Permission{PermDeleteUsers, PermDeleteAnswers, PermDeleteQuestions}

// Role groups permissions. Roles are created by the seed command only.
type Role struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Permissions []Permission `json:"permissions"`
}

// PermissionNames returns the role's permissions as plain strings for token claims.
func (r *Role) PermissionNames() []string {
	names := make([]string, 0, len(r.Permissions))
	for _, p := range r.Permissions {
		names = append(names, string(p))
	}
	return names
}

// User models a registered account.
type User struct {
	ID           string    `json:"id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	Job          string    `json:"job,omitempty"`
	Bio          string    `json:"bio,omitempty"`
	Avatar       string    `json:"avatar,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// UserPatch carries a self-service profile update. Nil fields are left untouched.
type UserPatch struct {
	FirstName *string
	LastName  *string
	Email     *string
	Username  *string
	Password  *string
	Phone     *string
	Job       *string
	Bio       *string
	Avatar    *string
}

// NormalizeEmail trims and lower-cases an email so uniqueness is case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeUsername trims and lower-cases a username.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}
