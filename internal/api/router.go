package api

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jackc/pgx/v5/pgxpool"

	swagger "github.com/go-swagno/swagno-fiber/swagger"
	"github.com/saturnino-fabrica-de-software/presenca/internal/api/docs"
	"github.com/saturnino-fabrica-de-software/presenca/internal/api/handler"
	"github.com/saturnino-fabrica-de-software/presenca/internal/api/middleware"
	"github.com/saturnino-fabrica-de-software/presenca/internal/config"
	"github.com/saturnino-fabrica-de-software/presenca/internal/event"
	"github.com/saturnino-fabrica-de-software/presenca/internal/gallery"
	"github.com/saturnino-fabrica-de-software/presenca/internal/provider"
	"github.com/saturnino-fabrica-de-software/presenca/internal/repository"
	"github.com/saturnino-fabrica-de-software/presenca/internal/service"
)

type Dependencies struct {
	Config       *config.Config
	FaceProvider provider.FaceProvider
	DB           *pgxpool.Pool
}

type Router struct {
	app           *fiber.App
	logger        *slog.Logger
	deps          *Dependencies
	rateLimiter   *middleware.RateLimiter
	eventWorker   *event.Worker
	autoEndWorker *service.AutoEndWorker
	cancelWorkers context.CancelFunc
}

func NewRouter(logger *slog.Logger, deps *Dependencies) *Router {
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(logger),
		AppName:      "Presenca API",
	})

	return &Router{
		app:    app,
		logger: logger,
		deps:   deps,
	}
}

func (r *Router) Setup() {
	// Global middlewares
	r.app.Use(requestid.New())
	r.app.Use(middleware.Recover(r.logger))
	r.app.Use(middleware.Logger(r.logger))
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	// Swagger documentation (no auth required)
	sw := docs.NewSwagger()
	swagger.SwaggerHandler(r.app, sw.MustToJson())

	// Health check endpoints (no auth required)
	var healthHandler *handler.HealthHandler
	if r.deps != nil && r.deps.DB != nil {
		healthHandler = handler.NewHealthHandler(r.deps.DB)
	} else {
		healthHandler = handler.NewHealthHandler(nil)
	}
	r.app.Get("/health", healthHandler.Health)
	r.app.Get("/ready", healthHandler.Ready)

	// API v1 group with authentication
	v1 := r.app.Group("/v1")

	// Only configure authenticated routes if dependencies were provided
	if r.deps == nil {
		return
	}

	cfg := r.deps.Config

	// Auth middleware (service API key)
	v1.Use(middleware.Auth(cfg.APIKeyHash))

	// Rate limiting - must come after auth
	r.rateLimiter = middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig())
	v1.Use(r.rateLimiter.Handler())

	// Repositories
	encodingRepo := repository.NewEncodingRepository(r.deps.DB)
	sessionRepo := repository.NewSessionRepository(r.deps.DB)
	attendanceRepo := repository.NewAttendanceRepository(r.deps.DB)

	// Gallery cache over the encoding store
	galleryCache := gallery.NewCache(encodingRepo)

	workersCtx, cancelWorkers := context.WithCancel(context.Background())
	r.cancelWorkers = cancelWorkers

	// Event sinks: always log; deliver webhooks when configured
	sinks := []event.Sink{event.NewSlogSink(r.logger)}

	if cfg.EventWebhookURL != "" {
		webhookSink := event.NewWebhookSink(r.deps.DB, r.logger, cfg.EventWebhookURL, cfg.EventWebhookSecret)
		sinks = append(sinks, webhookSink)

		r.eventWorker = event.NewWorker(r.deps.DB, webhookSink, r.logger)
		go r.eventWorker.Run(workersCtx)
	}

	var sink event.Sink = event.NewMultiSink(sinks...)

	// Services
	enrollmentService := service.NewEnrollmentService(encodingRepo, r.deps.FaceProvider, galleryCache)
	sessionService := service.NewSessionService(sessionRepo, attendanceRepo, sink, service.SessionDefaults{
		WindowMinutes:    cfg.WindowMinutes,
		MaxMinutes:       cfg.MaxSessionMinutes,
		LateAfterMinutes: cfg.LateAfterMinutes,
	})
	recognitionService := service.NewRecognitionService(
		sessionRepo,
		attendanceRepo,
		r.deps.FaceProvider,
		galleryCache,
		sink,
		cfg.MatchThreshold,
	)

	// Session auto-end worker
	r.autoEndWorker = service.NewAutoEndWorker(sessionRepo, sink, r.logger)
	go r.autoEndWorker.Run(workersCtx)

	// Handlers
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentService, r.logger)
	sessionHandler := handler.NewSessionHandler(sessionService, r.logger)
	recognitionHandler := handler.NewRecognitionHandler(recognitionService, r.logger)

	// Enrollment routes
	v1.Post("/enrollments", enrollmentHandler.Enroll)
	v1.Delete("/enrollments/:student_id", enrollmentHandler.Revoke)

	// Session routes
	v1.Post("/sessions", sessionHandler.Start)
	v1.Get("/sessions/:id", sessionHandler.Get)
	v1.Post("/sessions/:id/end", sessionHandler.End)
	v1.Get("/sessions/:id/window", sessionHandler.Window)

	// Recognition route
	v1.Post("/sessions/:id/recognize", recognitionHandler.Recognize)

	// Attendance routes
	v1.Post("/sessions/:id/attendance", sessionHandler.MarkManual)
	v1.Get("/sessions/:id/attendance", sessionHandler.ListAttendance)
}

func (r *Router) App() *fiber.App {
	return r.app
}

func (r *Router) Listen(addr string) error {
	return r.app.Listen(addr)
}

func (r *Router) Shutdown() error {
	// Stop background workers
	if r.cancelWorkers != nil {
		r.cancelWorkers()
	}

	// Stop rate limiter cleanup goroutine
	if r.rateLimiter != nil {
		r.rateLimiter.Stop()
	}

	return r.app.Shutdown()
}
