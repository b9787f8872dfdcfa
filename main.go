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

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"sitepulse/api/aggregate"
	"sitepulse/api/classify"
	"sitepulse/api/config"
	"sitepulse/api/database"
	"sitepulse/api/handlers"
	"sitepulse/api/logger"
	"sitepulse/api/middleware"
	"sitepulse/api/models"
	"sitepulse/api/store"
	"sitepulse/api/utils"
)

func main() {
	// Load .env file at the very start
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found or error loading .env: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zapLogger, err := logger.New(cfg.Environment)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	initCtx, cancelInit := context.WithTimeout(context.Background(), 30*time.Second)
	events, closeEvents, err := openEventLog(initCtx, cfg, zapLogger)
	cancelInit()
	if err != nil {
		zapLogger.Fatal("Failed to initialize event log", zap.Error(err), zap.String("store", cfg.EventStore))
	}
	defer closeEvents()

	tokens, err := utils.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		zapLogger.Fatal("Failed to initialize token issuer", zap.Error(err))
	}

	paths := classify.NewPathPolicy(cfg.Tracking.TrackedPrefixes...)
	traffic := classify.NewTrafficPolicy(cfg.Tracking.SearchEngineHosts...)
	summaries := aggregate.NewSummaryService(events, traffic, zapLogger)

	trackingHandlers := handlers.NewTrackingHandlers(events, summaries, cfg.Tracking.MaxRangeDays, zapLogger)
	trackingHandlers.Trackable = paths.Trackable

	operator := models.Operator{
		Email:          cfg.Auth.OperatorEmail,
		HashedPassword: []byte(cfg.Auth.OperatorPasswordHash),
	}
	if operator.Email == "" || len(operator.HashedPassword) == 0 {
		zapLogger.Warn("No operator credentials configured, dashboard login is disabled")
	}
	authHandlers := handlers.NewAuthHandlers(operator, tokens, gin.Mode() == gin.ReleaseMode, zapLogger)

	r := handlers.NewRouter(handlers.RouterConfig{
		Tracking:        trackingHandlers,
		Auth:            authHandlers,
		Tokens:          tokens,
		Limiter:         middleware.NewIPRateLimiter(cfg.Tracking.RatePerSec, cfg.Tracking.RateBurst),
		DashboardAPIKey: cfg.Auth.DashboardAPIKey,
		FrontendOrigin:  cfg.FrontendURL,
		Log:             zapLogger,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		zapLogger.Info("API server starting",
			zap.String("port", cfg.Port),
			zap.String("store", cfg.EventStore),
			zap.Strings("tracked_prefixes", cfg.Tracking.TrackedPrefixes))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("API server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exiting")
}

// openEventLog connects the configured backend and makes sure its schema exists.
func openEventLog(ctx context.Context, cfg *config.Config, log *zap.Logger) (store.EventLog, func(), error) {
	switch cfg.EventStore {
	case config.StoreClickHouse:
		chClient, err := database.NewClickHouseDB(ctx, cfg.ClickHouse, log)
		if err != nil {
			return nil, nil, err
		}
		events := store.NewClickHouseEventLog(chClient, log)
		if err := events.InitSchema(ctx); err != nil {
			chClient.Close()
			return nil, nil, err
		}
		return events, func() { chClient.Close() }, nil

	case config.StorePostgres:
		dbClient, err := database.NewPostgresDB(ctx, cfg.Postgres, log)
		if err != nil {
			return nil, nil, err
		}
		events := store.NewPostgresEventLog(dbClient, log)
		if err := events.InitSchema(ctx); err != nil {
			dbClient.Close()
			return nil, nil, err
		}
		return events, func() { dbClient.Close() }, nil

	case config.StoreMemory:
		log.Warn("Using in-memory event log, events are lost on restart")
		return store.NewMemoryEventLog(), func() {}, nil
	}
	return nil, nil, fmt.Errorf("unsupported event store %q", cfg.EventStore)
}
