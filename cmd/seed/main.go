// Command seed installs the permissions, roles and indexes the API expects.
// It is idempotent and safe to run on every deploy.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sal22/qanda-api/internal/core/domain"
	mongodb "github.com/sal22/qanda-api/internal/infrastructure/db/mongo"
	"github.com/sal22/qanda-api/internal/pkg/config"
	"github.com/sal22/qanda-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.IsDevelopment(), Service: "qanda-seed"})

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("connect mongodb")
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("ensure indexes")
	}

	roles := mongodb.NewRoleRepository(db)
	for _, perm := range domain.AllPermissions {
		if err := roles.UpsertPermission(ctx, perm); err != nil {
			log.Fatal().Err(err).Str("permission", string(perm)).Msg("seed permission")
		}
	}

	seed := []*domain.Role{
		{Name: domain.RoleGeneral},
		{Name: domain.RoleSuperAdmin, Permissions: domain.AllPermissions},
	}
	for _, role := range seed {
		if err := roles.UpsertRole(ctx, role); err != nil {
			log.Fatal().Err(err).Str("role", role.Name).Msg("seed role")
		}
		log.Info().Str("role", role.Name).Int("permissions", len(role.Permissions)).Msg("role seeded")
	}
}
