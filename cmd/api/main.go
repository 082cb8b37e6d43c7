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

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"studymate/internal/app"
	"studymate/internal/config"
	"studymate/internal/database"
	"studymate/internal/logger"
	"studymate/internal/ratelimit"
	"studymate/internal/token"
	"studymate/internal/validator"
)

// @title           StudyMate API
// @version         1.0
// @description     StudyMate keeps a student's assignments and pocket money in one place.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token.

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if appConfig.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create database manager
	dbManager, err := database.NewManager(database.NewConfig(appConfig))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnf("database close error: %v", err)
		}
	}()

	// Run migrations
	if err := dbManager.Migrate(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	validator.Register()

	deps := app.Deps{
		DB:         dbManager.DB(),
		Tokens:     token.NewService(appConfig.JWTSecret, appConfig.TokenTTL),
		CORSOrigin: appConfig.CORSOrigin,
	}

	if appConfig.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     appConfig.RedisAddr,
			Password: appConfig.RedisPassword,
			DB:       appConfig.RedisDB,
		})
		defer func() { _ = rdb.Close() }()

		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warnw("redis unreachable, login throttling fails open", "addr", appConfig.RedisAddr, "error", err)
		}
		cancel()

		deps.LoginLimiter = ratelimit.New(rdb, "studymate", appConfig.LoginRate, appConfig.LoginBurst)
		log.Infow("Login throttling enabled", "rate", appConfig.LoginRate, "burst", appConfig.LoginBurst)
	} else {
		log.Info("REDIS_ADDR not set, login throttling disabled")
	}

	srv := &http.Server{
		Addr:         ":" + appConfig.Port,
		Handler:      app.NewRouter(deps),
		ReadTimeout:  appConfig.ReadTimeout,
		WriteTimeout: appConfig.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting StudyMate server on port %s", appConfig.Port)
		log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case sig := <-quit:
		log.Infow("Shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
