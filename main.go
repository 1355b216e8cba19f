package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"usuarios-api/config"
	"usuarios-api/events"
	"usuarios-api/handlers"
	"usuarios-api/helper"
	"usuarios-api/logging"
	"usuarios-api/repositories"
	"usuarios-api/routes"
	"usuarios-api/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if !cfg.EnvFileLoaded {
		logger.Info("No .env file found, using process environment")
	}
	logger.Info("configuration loaded", zap.Stringer("config", cfg))

	// Initialize database
	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := config.InitDB(initCtx, cfg.Database)
	cancel()
	if err != nil {
		logger.Fatal("database init failed", zap.Error(err))
	}
	logger.Info("connected to PostgreSQL")

	publisher := events.New(cfg.Kafka)
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Warn("close event publisher", zap.Error(err))
		}
	}()

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)

	validator, err := helper.NewValidator()
	if err != nil {
		logger.Fatal("validator init failed", zap.Error(err))
	}

	// Initialize services
	tokenService := services.NewTokenService(cfg.JWT)
	userService := services.NewUserService(
		userRepo,
		services.NewPasswordHasher(),
		tokenService,
		validator,
		publisher,
	)

	// Setup router
	gin.SetMode(cfg.Server.GinMode)
	router := routes.New(routes.Deps{
		Logger:        logger,
		AllowedOrigin: cfg.Server.AllowedOrigin,
		UserHandler:   handlers.NewUserHandler(userService),
		HealthHandler: handlers.NewHealthHandler(userRepo),
		Tokens:        tokenService,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		ReadHeaderTimeout: 3 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	if err := serve(srv, quit, 10*time.Second, logger); err != nil {
		logger.Error("server failed", zap.Error(err))
		return
	}
	logger.Info("server stopped")
}

// serve runs srv until a signal arrives on quit or the listener fails, and
// shuts it down gracefully in the first case.
func serve(srv *http.Server, quit <-chan os.Signal, shutdownTimeout time.Duration, logger *zap.Logger) error {
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		return err
	case <-quit:
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
