// @title FinLearn API
// @version 1.0
// @description Course content, quiz scoring and learning progress for the FinLearn app.
// @host localhost:8090
// @BasePath /api
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type 'Bearer YOUR_JWT_TOKEN' to authorize.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	_ "finlearn/cmd/api/docs"
	"finlearn/internal/adapter"
	"finlearn/internal/adapter/storage"
	"finlearn/internal/cache"
	"finlearn/internal/config"
	"finlearn/internal/database"
	"finlearn/internal/handler"
	"finlearn/internal/logger"
	"finlearn/internal/middleware"
	"finlearn/internal/repository"
	"finlearn/internal/service"
	"finlearn/internal/session"
	"finlearn/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"
)

const sessionEventBuffer = 256

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := logger.Initialize(cfg.Logger); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	ctx := context.Background()

	db, err := database.NewPostgresDB(ctx, cfg)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	cacheAdapter := adapter.NewRedisCacheAdapter(redisClient)

	courseRepo := repository.NewCourseDatabaseAdapter(db)
	progressRepo := repository.NewProgressDatabaseAdapter(db)
	profileRepo := repository.NewProfileDatabaseAdapter(db)
	txManager := repository.NewTransactionManagerAdapter(db)
	avatarStorage := storage.NewSupabaseStorage(cfg.Storage)

	hub := session.NewHub(sessionEventBuffer)
	if err := hub.Start(); err != nil {
		appLogger.Fatal("Failed to start session hub", zap.Error(err))
	}

	authService, err := service.NewAuthService(cfg.Auth, cacheAdapter, hub)
	if err != nil {
		appLogger.Fatal("Failed to create AuthService", zap.Error(err))
	}
	recorder := service.NewAttemptRecorder(progressRepo)
	progressService := service.NewProgressService(courseRepo, progressRepo, txManager, recorder,
		service.NewProgressCache(cacheAdapter, cfg.Cache.ProgressTTL))
	courseService := service.NewCourseService(courseRepo, progressRepo)
	quizService := service.NewQuizService(courseRepo, progressService)
	avatarService := service.NewAvatarService(profileRepo, avatarStorage, cacheAdapter, cfg.Cache.AvatarTTL)
	notificationService := service.NewNotificationService(cacheAdapter)
	profileService := service.NewProfileService(profileRepo, avatarService, notificationService, cfg.Server.WriteTimeout)

	signOuts, err := service.ListenForSignOut(hub, progressService, avatarService)
	if err != nil {
		appLogger.Fatal("Failed to subscribe to sign-outs", zap.Error(err))
	}
	defer signOuts.Close()

	v := validation.NewValidator()
	handlers := handler.Handlers{
		Course:   handler.NewCourseHandler(courseService),
		Quiz:     handler.NewQuizHandler(quizService, v),
		Progress: handler.NewProgressHandler(progressService, v),
		User:     handler.NewUserHandler(profileService, avatarService, v),
		Auth:     handler.NewAuthHandler(authService),
		Health: handler.NewHealthHandler(map[string]handler.Pinger{
			"database": db,
			"cache":    handler.PingFunc(cacheAdapter.Ping),
		}),
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout * 2,
		BodyLimit:    10 * 1024 * 1024,
		ErrorHandler: middleware.ErrorHandler(),
	})
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.RequestLogger())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.AllowOrigins,
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization,X-Request-ID",
		MaxAge:       300,
	}))
	app.Get("/swagger/*", swagger.HandlerDefault)
	handler.SetupRoutes(app, handlers, authService, hub, v)

	go func() {
		appLogger.Info("Starting server", zap.Int("port", cfg.Server.Port), zap.String("env", cfg.Logger.Env))
		if err := app.Listen(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := profileService.Shutdown(shutdownCtx); err != nil {
		appLogger.Warn("Pending profile writes abandoned", zap.Error(err))
	}
	if err := hub.Close(); err != nil {
		appLogger.Warn("Failed to close session hub", zap.Error(err))
	}
	appLogger.Info("Server exited gracefully")
}
