package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sal22/qanda-api/internal/core/domain"
)

// RoleRepository stores roles with their permission names embedded, plus the
// catalogue of known permissions.
type RoleRepository struct {
	roles       *mongo.Collection
	permissions *mongo.Collection
}

func NewRoleRepository(db *mongo.Database) *RoleRepository {
	return &RoleRepository{
		roles:       db.Collection(collectionRoles),
		permissions: db.Collection(collectionPermissions),
	}
}

type mongoRole struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Permissions []string           `bson:"permissions"`
}

func (r *RoleRepository) FindByName(ctx context.Context, name string) (*domain.Role, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mr mongoRole
	if err := r.roles.FindOne(ctx, bson.M{"name": name}).Decode(&mr); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRoleNotFound
		}
		return nil, fmt.Errorf("find role: %w", err)
	}

	role := &domain.Role{ID: mr.ID.Hex(), Name: mr.Name, Permissions: make([]domain.Permission, 0, len(mr.Permissions))}
	for _, p := range mr.Permissions {
		role.Permissions = append(role.Permissions, domain.Permission(p))
	}
	return role, nil
}

// UpsertPermission registers a permission name. Repeating it is a no-op.
func (r *RoleRepository) UpsertPermission(ctx context.Context, perm domain.Permission) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.permissions.UpdateOne(ctx,
		bson.M{"name": string(perm)},
		bson.M{"$setOnInsert": bson.M{"name": string(perm)}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("upsert permission %s: %w", perm, err)
	}
	return nil
}

// UpsertRole creates the role or replaces its permission set.
func (r *RoleRepository) UpsertRole(ctx context.Context, role *domain.Role) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.roles.UpdateOne(ctx,
		bson.M{"name": role.Name},
		bson.M{"$set": bson.M{"permissions": role.PermissionNames()}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("upsert role %s: %w", role.Name, err)
	}
	return nil
}
