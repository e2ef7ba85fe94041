package domain

import "time"

// Principal is the acting identity resolved from a verified credential.
// Permissions are the snapshot taken when the credential was issued; role
// changes do not affect it until the credential is reissued.
type Principal struct {
	UserID      string
	Username    string
	Permissions []string
	TokenID     string
	ExpiresAt   time.Time
}

// HasPermission is a pure set-membership test against the credential snapshot.
func (p *Principal) HasPermission(perm Permission) bool {
	if p == nil {
		return false
	}
	for _, name := range p.Permissions {
		if name == string(perm) {
			return true
		}
	}
	return false
}

// Owns reports whether the principal owns the resource.
func (p *Principal) Owns(resource Ownable) bool {
	return p != nil && resource != nil && resource.OwnerID() == p.UserID
}

// Ownable is implemented by entities that belong to a single user.
type Ownable interface {
	OwnerID() string
}

// AuthorizeEdit allows only the owner to modify a resource.
func AuthorizeEdit(p *Principal, resource Ownable) error {
	if p == nil {
		return ErrUnauthenticated
	}
	if !p.Owns(resource) {
		return ErrForbidden
	}
	return nil
}

// AuthorizeDelete allows the owner, or anyone holding perm, to remove a resource.
func AuthorizeDelete(p *Principal, resource Ownable, perm Permission) error {
	if p == nil {
		return ErrUnauthenticated
	}
	if p.Owns(resource) || p.HasPermission(perm) {
		return nil
	}
	return ErrForbidden
}
