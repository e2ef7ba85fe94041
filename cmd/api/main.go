// Command api serves the Q&A HTTP API.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sal22/qanda-api/internal/api"
	"github.com/sal22/qanda-api/internal/api/handler"
	"github.com/sal22/qanda-api/internal/core/service"
	"github.com/sal22/qanda-api/internal/infrastructure/blob"
	mongodb "github.com/sal22/qanda-api/internal/infrastructure/db/mongo"
	redisdb "github.com/sal22/qanda-api/internal/infrastructure/db/redis"
	"github.com/sal22/qanda-api/internal/infrastructure/mail"
	"github.com/sal22/qanda-api/internal/infrastructure/queue"
	"github.com/sal22/qanda-api/internal/infrastructure/render"
	"github.com/sal22/qanda-api/internal/pkg/config"
	"github.com/sal22/qanda-api/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

// @title                       Q&A API
// @version                     1.0
// @description                 Questions, answers, votes and notifications.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "qanda-api",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Storage ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("connect mongodb")
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()
	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("ensure indexes")
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		log.Fatal().Err(err).Msg("connect redis")
	}
	defer func() { _ = rdb.Close() }()

	blobs, err := blob.NewStore(blob.Config{
		Endpoint:  cfg.MinIO.Endpoint,
		AccessKey: cfg.MinIO.AccessKey,
		SecretKey: cfg.MinIO.SecretKey,
		Bucket:    cfg.MinIO.Bucket,
		UseSSL:    cfg.MinIO.UseSSL,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("create blob store")
	}
	if err := blobs.EnsureBucket(ctx); err != nil {
		log.Fatal().Err(err).Msg("ensure bucket")
	}

	// --- Mail ---
	sender := mail.NewSender(mail.SMTPConfig{
		Host:     cfg.Mail.Host,
		Port:     cfg.Mail.Port,
		Username: cfg.Mail.Username,
		Password: cfg.Mail.Password,
		From:     cfg.Mail.From,
	})
	dispatcher := queue.NewDispatcher(cfg.Mail.Workers, sender, log.With().Str("component", "mail").Logger())
	// Workers outlive the signal context so queued mail drains while HTTP shuts down.
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	dispatcher.Start(workerCtx)

	// --- Repositories ---
	users := mongodb.NewUserRepository(db)
	roles := mongodb.NewRoleRepository(db)
	questions := mongodb.NewQuestionRepository(db)
	answers := mongodb.NewAnswerRepository(db)
	notificationRepo := mongodb.NewNotificationRepository(db)
	ledgers := mongodb.NewVoteLedgers(db)
	tx := mongodb.NewTransactor(mongoClient)

	// --- Services ---
	notifications := service.NewNotificationService(notificationRepo, users, dispatcher, service.NotificationOptions{
		NotifySelf: cfg.Notify.Self,
		Email:      cfg.Notify.Email,
		BaseURL:    cfg.BaseURL,
	}, log)
	authService := service.NewAuthService(users, roles, redisdb.NewRevocationStore(rdb), service.TokenConfig{
		Secret:     cfg.JWTSecret,
		TTL:        cfg.TokenTTL,
		BcryptCost: cfg.BcryptCost,
	}, log)

	services := api.Services{
		Auth:          authService,
		Users:         service.NewUserService(users, questions, answers, notificationRepo, ledgers, blobs, cfg.BcryptCost, log),
		Questions:     service.NewQuestionService(questions, answers, users, ledgers, tx, log),
		Answers:       service.NewAnswerService(answers, questions, users, ledgers, tx, render.NewMarkdown(), notifications, log),
		Votes:         service.NewVoteService(ledgers, questions, answers, notifications, log),
		Notifications: notifications,
		Uploads: service.NewUploadService(blobs, service.UploadOptions{
			AllowedExt: cfg.Upload.AllowedExt,
			MaxBytes:   cfg.Upload.MaxBytes,
		}, log),
		Reports: service.NewReportService(questions, answers, sender, service.ReportOptions{
			AdminEmail: cfg.Mail.Admin,
			BaseURL:    cfg.BaseURL,
		}, log),
	}

	e := api.NewRouter(services, api.RouterOptions{
		CORSOrigins:    cfg.CORSOrigins,
		UploadMaxBytes: cfg.Upload.MaxBytes,
		Readiness: []handler.DependencyCheck{
			{Name: "mongodb", Ping: func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) }},
			{Name: "redis", Ping: redisdb.Ready(rdb)},
			{Name: "minio", Ping: blobs.Ping},
		},
	}, log)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.Env).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}

	stopWorkers()
	dispatcher.Wait()
	log.Info().Msg("stopped")
}
