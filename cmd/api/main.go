package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"marketplace-api/internal/analytics"
	"marketplace-api/internal/apperror"
	"marketplace-api/internal/client"
	"marketplace-api/internal/config"
	"marketplace-api/internal/fallback"
	"marketplace-api/internal/mock"
	"marketplace-api/internal/model"
	"marketplace-api/internal/repository"
	"marketplace-api/internal/server"
	"marketplace-api/internal/service"

	"github.com/joho/godotenv"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg, err := config.Load()
	if err != nil {
		var notConfigured *apperror.NotConfiguredError
		if errors.As(err, &notConfigured) {
			fmt.Fprintf(os.Stderr, "%v\n", notConfigured)
		} else {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		}
		os.Exit(1)
	}

	logger := newLogger(cfg.Log)
	slog.SetDefault(logger)

	db := client.NewDBClient(&cfg.Database, logger)
	connectCtx, connectCancel := context.WithTimeout(context.Background(), cfg.Database.ConnectTimeout)
	if err := db.Connect(connectCtx); err != nil {
		logger.Warn("starting without database, reads will fall back", "error", err)
	}
	connectCancel()

	planRepo := repository.NewPlanRepository(db)
	if db.Connected() && cfg.Database.AutoMigrate {
		if err := planRepo.Seed(context.Background(), model.DefaultPlans()); err != nil {
			logger.Warn("seed default plans", "error", err)
		}
	}

	repos := service.Repositories{
		Plans:         planRepo,
		Products:      repository.NewProductRepository(db),
		Stores:        repository.NewStoreRepository(db),
		SystemConfigs: repository.NewSystemConfigRepository(db),
		Stats:         repository.NewStatsRepository(db),
	}
	rest := service.RestTiers{
		Service: client.NewRestClient(&cfg.Rest, client.RoleService),
		Anon:    client.NewRestClient(&cfg.Rest, client.RoleAnon),
	}

	chain := fallback.NewChain(logger, cfg.Fallback.TierTimeout)
	mockProvider := mock.NewProvider(logger)

	catalogService := service.NewCatalogService(chain, repos, rest, mockProvider)
	adminService := service.NewAdminService(chain, repos, rest, mockProvider, logger)

	dispatcher := analytics.NewDispatcher(&cfg.Analytics, func(ctx context.Context) (model.TrackingConfig, error) {
		res, err := catalogService.GetTrackingConfigs(ctx)
		return res.Data, err
	}, logger)

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port

	// Init HTTP server
	srv := server.NewServer(server.Deps{
		CatalogService: catalogService,
		AdminService:   adminService,
		Dispatcher:     dispatcher,
		DB:             db,
		TierStats:      chain,
		BaseURL:        cfg.BaseURL,
		JWTSecret:      cfg.Auth.JWTSecret,
		Logger:         logger,
	})

	logger.Info("starting HTTP server", "addr", serverAddr, "environment", cfg.Environment.Name)
	go func() {
		if err := srv.Start(serverAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	logger.Info("signal received, starting graceful shutdown")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}
	if err := db.Disconnect(); err != nil {
		logger.Error("database disconnect error", "error", err)
	}
}

func newLogger(cfg config.Log) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "text") {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
