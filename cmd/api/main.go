package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/MrJamesThe3rd/syndic/internal/app"
	"github.com/MrJamesThe3rd/syndic/internal/config"
	"github.com/MrJamesThe3rd/syndic/internal/export"
	syndicHttp "github.com/MrJamesThe3rd/syndic/internal/http"
	dealHandler "github.com/MrJamesThe3rd/syndic/internal/http/deal"
	exportHandler "github.com/MrJamesThe3rd/syndic/internal/http/export"
	importHandler "github.com/MrJamesThe3rd/syndic/internal/http/importcsv"
	investorHandler "github.com/MrJamesThe3rd/syndic/internal/http/investor"
	"github.com/MrJamesThe3rd/syndic/internal/http/middleware"
	"github.com/MrJamesThe3rd/syndic/internal/importer"
	"github.com/MrJamesThe3rd/syndic/internal/present"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	policy, err := present.ParsePolicy(cfg.View.DefaultStatus)
	if err != nil {
		slog.Error("invalid view policy", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	services, err := app.Open(ctx, cfg)
	if err != nil {
		slog.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer services.Close()

	trackerService := services.Tracker

	if err := app.Seed(ctx, cfg, trackerService); err != nil {
		slog.Error("failed to seed book", "error", err)
		os.Exit(1)
	}

	var (
		exportService = export.NewService(trackerService)
		importService = importer.NewService(trackerService, services.Aliases)
	)

	var (
		dealH     = dealHandler.NewHandler(trackerService, exportService, policy)
		investorH = investorHandler.NewHandler(trackerService, exportService)
		exportH   = exportHandler.NewHandler(exportService)
		importH   = importHandler.NewHandler(importService, services.Aliases, trackerService)
	)

	opts := syndicHttp.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		IdempotencyTTL: cfg.Redis.IdempotencyTTL,
	}

	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		defer rdb.Close()

		if err := rdb.Ping(ctx).Err(); err != nil {
			slog.Error("failed to connect to redis", "addr", cfg.Redis.Addr, "error", err)
			os.Exit(1)
		}

		opts.Idempotency = middleware.NewRedisStore(rdb)
	}

	router := syndicHttp.New(dealH, investorH, exportH, importH, opts)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.Timeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown failed", "error", err)
		}
	}()

	slog.Info("starting server", "name", cfg.App.Name, "port", srv.Addr, "store", cfg.App.Store)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
