package api

import (
	"strconv"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/sal22/qanda-api/docs"
	"github.com/sal22/qanda-api/internal/api/handler"
	"github.com/sal22/qanda-api/internal/api/middleware"
	"github.com/sal22/qanda-api/internal/core/ports"
)

const (
	defaultBodyLimit = "1M"
	multipartSlack   = 64 << 10
)

// Services are the use cases the HTTP layer dispatches to.
type Services struct {
	Auth          ports.AuthService
	Users         ports.UserService
	Questions     ports.QuestionService
	Answers       ports.AnswerService
	Votes         ports.VoteService
	Notifications ports.NotificationService
	Uploads       ports.UploadService
	Reports       ports.ReportService
}

// RouterOptions tune transport concerns.
type RouterOptions struct {
	CORSOrigins    []string
	UploadMaxBytes int64
	Readiness      []handler.DependencyCheck
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(svc Services, opts RouterOptions, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(log))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: opts.CORSOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(echoprometheus.NewMiddleware("qanda"))

	// --- Operations (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(opts.Readiness...)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(svc.Auth)
	userHandler := handler.NewUserHandler(svc.Users)
	questionHandler := handler.NewQuestionHandler(svc.Questions, svc.Answers, svc.Votes)
	answerHandler := handler.NewAnswerHandler(svc.Answers, svc.Votes)
	notificationHandler := handler.NewNotificationHandler(svc.Notifications)
	uploadHandler := handler.NewUploadHandler(svc.Uploads)
	reportHandler := handler.NewReportHandler(svc.Reports)

	requireAuth := middleware.Auth(svc.Auth, false)
	optionalAuth := middleware.Auth(svc.Auth, true)
	jsonLimit := echomiddleware.BodyLimit(defaultBodyLimit)
	uploadLimit := echomiddleware.BodyLimit(strconv.FormatInt(opts.UploadMaxBytes+multipartSlack, 10))

	e.GET("/uploads/:filename", uploadHandler.Serve)

	api := e.Group("/api")

	// --- Accounts ---
	api.POST("/register", authHandler.Register, jsonLimit)
	api.POST("/login", authHandler.Login, jsonLimit)
	api.POST("/logout", authHandler.Logout, requireAuth)
	api.GET("/own-data", userHandler.OwnData, requireAuth)
	api.PATCH("/user", userHandler.UpdateProfile, requireAuth, jsonLimit)
	api.GET("/users/:username", userHandler.GetProfile)
	api.GET("/users/:username/questions", userHandler.ListQuestions, optionalAuth)

	// --- Questions ---
	api.GET("/questions", questionHandler.List, optionalAuth)
	api.GET("/questions/:id", questionHandler.Get, optionalAuth)
	api.GET("/questions/:id/answers", questionHandler.ListAnswers, optionalAuth)
	api.POST("/questions", questionHandler.Create, requireAuth, jsonLimit)
	api.PATCH("/questions/:id", questionHandler.Update, requireAuth, jsonLimit)
	api.DELETE("/questions/:id", questionHandler.Delete, requireAuth)
	api.POST("/questions/:id/vote", questionHandler.Vote, requireAuth, jsonLimit)

	// --- Answers ---
	api.GET("/answers/:id", answerHandler.Get, optionalAuth)
	api.POST("/answers", answerHandler.Create, requireAuth, jsonLimit)
	api.PATCH("/answers/:id", answerHandler.Update, requireAuth, jsonLimit)
	api.DELETE("/answers/:id", answerHandler.Delete, requireAuth)
	api.POST("/answers/:id/vote", answerHandler.Vote, requireAuth, jsonLimit)

	// --- Notifications ---
	api.GET("/notifications", notificationHandler.List, requireAuth)
	api.POST("/notifications/:id/read", notificationHandler.MarkRead, requireAuth)

	// --- Uploads and reports ---
	api.POST("/upload", uploadHandler.Upload, requireAuth, uploadLimit)
	api.POST("/report/question", reportHandler.ReportQuestion, requireAuth, jsonLimit)
	api.POST("/report/answer", reportHandler.ReportAnswer, requireAuth, jsonLimit)

	return e
}

// requestLogger feeds Echo's request logging into zerolog.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Status >= 500 {
				evt = log.Error().Err(v.Error)
			}
			evt.
				Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	})
}
