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

	"github.com/noah-isme/entbridge-go-api/internal/config"
	"github.com/noah-isme/entbridge-go-api/internal/database"
	"github.com/noah-isme/entbridge-go-api/internal/handler"
	"github.com/noah-isme/entbridge-go-api/internal/middleware"
	"github.com/noah-isme/entbridge-go-api/internal/models"
	"github.com/noah-isme/entbridge-go-api/internal/repository"
	"github.com/noah-isme/entbridge-go-api/internal/router"
	"github.com/noah-isme/entbridge-go-api/internal/service"
	"github.com/noah-isme/entbridge-go-api/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Subject{},
		&models.Question{},
		&models.Option{},
		&models.TestResult{},
		&models.TestResultDetail{},
		&models.Homework{},
		&models.HomeworkAttachment{},
		&models.HomeworkSubmission{},
		&models.SubmissionAttachment{},
		&models.AuditLog{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	}

	store, err := storage.NewLocal(cfg.StorageDir, int(cfg.MaxUploadMB), logger)
	if err != nil {
		log.Fatalf("failed to initialise file storage: %v", err)
	}

	var notifier service.ReviewNotifier
	if cfg.NATSURL != "" {
		conn, err := nats.Connect(cfg.NATSURL, nats.Name(cfg.AppName))
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer conn.Drain()
		notifier = service.NewNATSReviewNotifier(conn, cfg.ReviewSubject, logger)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	subjectRepo := repository.NewSubjectRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	resultRepo := repository.NewTestResultRepository(db)
	userRepo := repository.NewUserRepository(db)
	homeworkRepo := repository.NewHomeworkRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	attachmentRepo := repository.NewAttachmentRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)
	uow := repository.NewUnitOfWork(db)

	testService := service.NewTestService(subjectRepo, questionRepo, resultRepo, uow, redisClient, cfg.QuestionCacheTTL, validate, logger)
	homeworkService := service.NewHomeworkService(homeworkRepo, submissionRepo, attachmentRepo, subjectRepo, userRepo, uow, store, notifier, validate, logger)
	adminService := service.NewAdminService(subjectRepo, questionRepo, resultRepo, userRepo, uow, redisClient, validate, logger)
	auditService := service.NewAuditService(auditRepo, logger)

	testHandler := handler.NewTestHandler(testService, logger)
	homeworkHandler := handler.NewHomeworkHandler(homeworkService, logger)
	adminHandler := handler.NewAdminHandler(adminService, auditService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    int(cfg.MaxUploadMB+1) * 1024 * 1024,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		TestHandler:     testHandler,
		HomeworkHandler: homeworkHandler,
		AdminHandler:    adminHandler,
		JWTMiddleware:   middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
