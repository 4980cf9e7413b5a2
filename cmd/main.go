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

	"github.com/ThusharaSampath/stock-portfolio/config"
	"github.com/ThusharaSampath/stock-portfolio/data"
	"github.com/ThusharaSampath/stock-portfolio/data/cache"
	"github.com/ThusharaSampath/stock-portfolio/data/repository/postgres"
	"github.com/ThusharaSampath/stock-portfolio/internal/externalApi/cloudStorageApi/googleDriveApi"
	"github.com/ThusharaSampath/stock-portfolio/internal/externalApi/cseApi"
	"github.com/ThusharaSampath/stock-portfolio/internal/reportGenerator/xslsxGenerator"
	"github.com/ThusharaSampath/stock-portfolio/internal/scheduler"
	"github.com/ThusharaSampath/stock-portfolio/internal/service/portfolioService"
	transport "github.com/ThusharaSampath/stock-portfolio/internal/transport/http"
)

func main() {
	cfg := config.MustLoad()

	setupLogger(cfg)

	slog.Debug("config", slog.Any("cfg", cfg))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pgClient := data.NewPostgresClient(cfg)
	defer pgClient.Close()

	pgRepo := postgres.NewPostgres(cfg, pgClient)

	redisClient := data.NewRedisClient(cfg)
	defer redisClient.Close()

	redisCache := cache.NewRedisCache(redisClient, cfg)

	cseApiClient := cseApi.New(cfg)

	reportGenerator := xslsxGenerator.New()

	googleCloudStorage := googleDriveApi.New(ctx, cfg)

	portfolioSrv := portfolioService.New(pgRepo, redisCache, cseApiClient, reportGenerator, googleCloudStorage)

	sched := scheduler.New()
	sched.NewIntervalJob("refresh market prices", portfolioSrv.RefreshPrices, cfg.Jobs.RefreshPricesInterval, true)
	sched.NewCrontabJob("portfolio snapshots", portfolioSrv.SnapshotAllUsers, cfg.Jobs.SnapshotCrontab, false)
	sched.NewIntervalJob("cleanup report files", portfolioSrv.CleanupReports, cfg.GoogleDrive.FileTTL, false)
	sched.Start()
	defer sched.Stop()

	controller := transport.NewController(cfg, portfolioSrv)
	router := transport.NewRouter(controller)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	go func() {
		slog.Info("http server started", slog.Int("port", cfg.HTTP.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server failed", slog.String("err", err.Error()))
			cancel()
		}
	}()

	// Waiting interruption signal
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	select {
	case <-interrupt:
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown failed", slog.String("err", err.Error()))
	}
}

func setupLogger(cfg *config.Config) {
	var logLevel slog.Level

	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warning":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(log)
}
