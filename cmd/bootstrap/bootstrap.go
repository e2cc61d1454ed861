package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/yashdave182/medinote/config"
	deliveryHttp "github.com/yashdave182/medinote/internal/delivery/http"
	"github.com/yashdave182/medinote/internal/delivery/http/handler"
	"github.com/yashdave182/medinote/internal/delivery/http/middleware"
	"github.com/yashdave182/medinote/internal/infrastructure/cache"
	"github.com/yashdave182/medinote/internal/infrastructure/database"
	"github.com/yashdave182/medinote/internal/infrastructure/llm"
	"github.com/yashdave182/medinote/internal/infrastructure/messaging"
	"github.com/yashdave182/medinote/internal/infrastructure/speech"
	"github.com/yashdave182/medinote/internal/infrastructure/storage"
	"github.com/yashdave182/medinote/internal/recorder"
	"github.com/yashdave182/medinote/internal/repository"
	"github.com/yashdave182/medinote/internal/service"
	"github.com/yashdave182/medinote/internal/usecase"
	"github.com/yashdave182/medinote/pkg/jwt"
	"github.com/yashdave182/medinote/pkg/validator"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const (
	cleanupLeaseKey = "medinote:recording-cleanup"
	shutdownTimeout = 10 * time.Second
)

type eventPublisher interface {
	usecase.EventPublisher
	Close() error
}

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	Log         *logrus.Logger
	DB          *gorm.DB
	RedisClient *redis.Client
	Server      *http.Server

	sessions  *recorder.SessionRegistry
	cleanup   *service.RecordingCleanupService
	publisher eventPublisher
}

// New creates a new App instance with all dependencies initialized
func New() (*App, error) {
	app := &App{}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	app.Config = cfg

	// Setup logger
	log := setupLogger(cfg.App)
	app.Log = log
	log.Info("Configuration loaded successfully")

	if cfg.App.AutoMigrate {
		if err := database.RunMigrations(cfg.DB, log); err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		log.Info("Database migrations applied")
	}

	// Initialize database
	db, err := database.NewPostgresConnection(cfg.DB, cfg.App.Env, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db
	log.Info("Database connected successfully")

	// Initialize Redis
	redisClient, err := cache.NewRedisClient(cfg.Redis, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	app.RedisClient = redisClient
	log.Info("Redis connected successfully")

	if err := app.initialize(log); err != nil {
		app.Close()
		return nil, err
	}

	return app, nil
}

// setupLogger configures the logrus logger
func setupLogger(cfg config.AppConfig) *logrus.Logger {
	log := logrus.StandardLogger()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	return log
}

// initialize wires every layer and creates the HTTP server
func (app *App) initialize(log *logrus.Logger) error {
	cfg := app.Config
	db := app.DB

	// Initialize JWT service
	jwtService := jwt.NewJWTService(cfg.JWT)
	tokenStore := cache.NewTokenStore(app.RedisClient)

	// Initialize validator
	customValidator := validator.NewValidator()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	consultationRepo := repository.NewConsultationRepository(db)
	noteRepo := repository.NewMedicalNoteRepository(db)
	recordingRepo := repository.NewAudioRecordingRepository(db)
	auditLogRepo := repository.NewAuditLogRepository(db)

	// Initialize vendor clients
	transcriber := speech.NewClient(cfg.Speech, log)
	generator := llm.NewClient(cfg.LLM, log)
	if cfg.Speech.APIKey == "" {
		log.Warn("SPEECH_API_KEY is not set, recordings will get placeholder notes")
	}
	if cfg.LLM.APIKey == "" {
		log.Warn("LLM_API_KEY is not set, note generation is disabled")
	}

	// Audio storage is optional
	var audioStore usecase.AudioStore
	var objectDeleter service.ObjectDeleter
	if cfg.Storage.Bucket != "" {
		s3Store, err := storage.NewS3AudioStore(context.Background(), cfg.Storage, log)
		if err != nil {
			return fmt.Errorf("failed to initialize audio storage: %w", err)
		}
		audioStore = s3Store
		objectDeleter = s3Store
		log.Infof("Audio storage enabled: bucket=%s", cfg.Storage.Bucket)
	} else {
		log.Warn("S3_BUCKET is not set, recorded audio will not be kept")
	}

	// Lifecycle events
	if len(cfg.Kafka.Brokers) > 0 {
		app.publisher = messaging.NewKafkaPublisher(cfg.Kafka, log)
		log.Infof("Lifecycle events enabled: topic=%s", cfg.Kafka.Topic)
	} else {
		app.publisher = messaging.NopPublisher{}
	}

	// Initialize services
	auditService := service.NewAuditService(log, auditLogRepo)
	app.sessions = recorder.NewSessionRegistry(cfg.Recording.ChunkInterval, cfg.Recording.SessionIdleTimeout, log)
	app.cleanup = service.NewRecordingCleanupService(
		recordingRepo,
		objectDeleter,
		cache.NewLease(app.RedisClient, cleanupLeaseKey, cfg.Recording.CleanupInterval),
		cfg.Recording.CleanupInterval,
		log,
	)

	// Initialize usecases
	authUsecase := usecase.NewAuthUsecase(log, userRepo, jwtService, tokenStore, auditService)
	profileUsecase := usecase.NewProfileUsecase(log, profileRepo, auditService)
	consultationUsecase := usecase.NewConsultationUsecase(log, consultationRepo, noteRepo, auditService, app.publisher)
	noteUsecase := usecase.NewNoteUsecase(log, consultationRepo, noteRepo, generator, auditService, app.publisher)
	recordingUsecase := usecase.NewRecordingUsecase(log, consultationRepo, recordingRepo, noteUsecase, app.sessions, audioStore, transcriber, usecase.RecordingOptions{
		Retention:      cfg.Recording.Retention,
		MaxUploadBytes: cfg.Recording.MaxUploadBytes,
	})
	auditLogUsecase := usecase.NewAuditLogUsecase(log, auditLogRepo)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authUsecase, customValidator)
	profileHandler := handler.NewProfileHandler(profileUsecase, customValidator)
	consultationHandler := handler.NewConsultationHandler(consultationUsecase, customValidator)
	noteHandler := handler.NewNoteHandler(noteUsecase, customValidator)
	recordingHandler := handler.NewRecordingHandler(recordingUsecase, customValidator, cfg.Recording.MaxUploadBytes)
	auditLogHandler := handler.NewAuditLogHandler(auditLogUsecase)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService, tokenStore)
	corsMiddleware := middleware.NewCORSMiddleware()

	// Initialize router
	router := deliveryHttp.NewRouter(
		authHandler,
		profileHandler,
		consultationHandler,
		noteHandler,
		recordingHandler,
		auditLogHandler,
		authMiddleware,
		corsMiddleware,
	)

	app.Server = &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.App.Port),
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return nil
}

// Run serves HTTP and runs the cleanup job until SIGINT/SIGTERM, then shuts
// everything down
func (app *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		app.Log.Infof("Server starting on port %s", app.Config.App.Port)
		app.Log.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	})

	app.cleanup.Start(gctx)

	g.Go(func() error {
		<-gctx.Done()
		app.Log.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := app.Server.Shutdown(shutdownCtx); err != nil {
			app.Log.Errorf("Server forced to shutdown: %v", err)
		}
		return nil
	})

	err := g.Wait()
	app.Close()
	app.Log.Info("Server shutdown complete")
	return err
}

// Close stops background workers and closes all connections
func (app *App) Close() {
	if app.cleanup != nil {
		app.cleanup.Stop()
	}
	if app.sessions != nil {
		app.sessions.Stop()
	}
	if app.publisher != nil {
		if err := app.publisher.Close(); err != nil {
			app.Log.Warnf("Failed to close event publisher: %+v", err)
		}
	}

	// Close database connection
	if app.DB != nil {
		sqlDB, err := app.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	// Close Redis connection
	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
}
