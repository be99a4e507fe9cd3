package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-progress-api/internal/config"
	"github.com/noah-isme/gema-progress-api/internal/database"
	"github.com/noah-isme/gema-progress-api/internal/handler"
	"github.com/noah-isme/gema-progress-api/internal/middleware"
	"github.com/noah-isme/gema-progress-api/internal/repository"
	"github.com/noah-isme/gema-progress-api/internal/router"
	"github.com/noah-isme/gema-progress-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", cfg.AppName).Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}

	checks := []database.Check{database.PostgresCheck(db)}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisClient.Close()
		checks = append(checks, database.RedisCheck(redisClient))
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL, cfg.AppName)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to nats")
		}
		defer natsConn.Close()
		checks = append(checks, database.NATSCheck(natsConn))
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	studentRepo := repository.NewStudentRepository(db)
	historyRepo := repository.NewGradeHistoryRepository(db)
	courseRepo := repository.NewCourseRepository(db)

	totalScoreService := service.NewTotalScoreService(studentRepo, historyRepo, redisClient, logger)

	var events service.GradingEventBus
	if cfg.UsesBroker() {
		broker := service.NewBrokerGradingEventBus(redisClient, natsConn, cfg.EventsChannel, logger)
		broker.Subscribe(totalScoreService.HandleGradingEvent)
		if err := broker.Start(ctx); err != nil {
			logger.Fatal().Err(err).Msg("failed to start grading event consumer")
		}
		events = broker
	} else {
		local := service.NewLocalGradingEventBus()
		local.Subscribe(totalScoreService.HandleGradingEvent)
		events = local
	}

	progressService := service.NewCourseProgressService(repository.NewProgressStore(db), courseRepo, logger)
	gradingService := service.NewGradingService(repository.NewGradingRepository(db), events, validate, logger)
	submissionService := service.NewSubmissionService(service.SubmissionDependencies{
		Assessments: repository.NewAssessmentRepository(db),
		Responses:   repository.NewAssessmentResponseRepository(db),
		Projects:    repository.NewProjectSubmissionRepository(db),
		Completions: repository.NewWeekCompletionRepository(db),
		Progress:    progressService,
		Events:      events,
	}, validate, logger)
	statsService := service.NewStudentStatsService(studentRepo, redisClient, cfg.StatsCacheTTL, logger)
	seedService := service.NewSeedService(courseRepo, validate, cfg.SeedEnabled, cfg.SeedToken, logger)

	scheduler, err := service.NewReconcileScheduler(totalScoreService, cfg.ReconcileSchedule, cfg.ReconcileBatchSize, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure reconciliation")
	}
	scheduler.Start()
	defer scheduler.Stop()

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger, AllowOrigins: cfg.CORSAllowOrigins})
	router.Register(app, cfg, router.Dependencies{
		CourseProgressHandler: handler.NewCourseProgressHandler(progressService, logger),
		SubmissionHandler:     handler.NewSubmissionHandler(submissionService, logger),
		GradingHandler:        handler.NewGradingHandler(gradingService, logger),
		StudentStatsHandler:   handler.NewStudentStatsHandler(statsService, logger),
		SeedHandler:           handler.NewSeedHandler(seedService, logger),
		JWTMiddleware:         middleware.JWTProtected(cfg.JWTSecret),
		HealthChecks:          checks,
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	waitForShutdown(ctx, app, logger)
}

func waitForShutdown(ctx context.Context, app *fiber.App, logger zerolog.Logger) {
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("server stopped")
}
