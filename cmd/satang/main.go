package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"

	"satang/internal/config"
	"satang/internal/exchange"
	apphttp "satang/internal/http"
	applog "satang/internal/log"
	"satang/internal/rate"
	"satang/internal/scan"
	"satang/internal/services"
	"satang/internal/storage"
	"satang/internal/store"
)

func main() {
	// Load .env file for local development (ignore errors in production)
	_ = godotenv.Load()

	// Setup structured logging
	logger := applog.New(applog.Config{
		Component: applog.ComponentApp,
		Handler: tint.NewHandler(os.Stdout, &tint.Options{
			Level:      slog.LevelInfo,
			TimeFormat: time.Kitchen,
		}),
	})
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}

	// Choose the key-value backend (default: sqlite).
	var kv storage.KV
	switch cfg.DataBackend {
	case "memory":
		kv = storage.NewMemoryKV()
		logger.Info("Initialized memory backend", "backend", cfg.DataBackend)
	default:
		sqliteKV, err := storage.NewSQLiteKV(cfg.SQLiteDBPath)
		if err != nil {
			logger.Error("Failed to initialize SQLite storage", applog.FieldError, err, "path", cfg.SQLiteDBPath)
			os.Exit(1)
		}
		defer sqliteKV.Close()
		kv = sqliteKV
		logger.Info("Initialized SQLite backend", "backend", cfg.DataBackend, "db_path", cfg.SQLiteDBPath)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Expense store: load the persisted collection into memory.
	expenses := store.New(kv)
	expenses.Load(ctx)

	// Rate holder: persisted value, or one automatic live fetch on first run.
	rates := rate.NewHolder(kv, exchange.NewClientWith(cfg.RateBaseURL, cfg.RateTimeout))
	rates.Startup(ctx)

	// Receipt scanning is optional; without a key the feature is off.
	var scanner scan.Scanner = scan.Disabled{}
	if cfg.GeminiAPIKey != "" {
		scanner = scan.NewGemini(cfg.GeminiAPIKey, cfg.GeminiModel)
		logger.Info("Receipt scanning enabled", "model", cfg.GeminiModel)
	}

	svc := services.NewExpenseService(expenses, rates, scanner, cfg.Location())
	srv := apphttp.NewServer(":"+cfg.Port, svc)

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", applog.FieldOperation, applog.OpShutdown, "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", applog.FieldOperation, applog.OpShutdown, applog.FieldError, err)
		}
		cancel()
	}()

	logger.Info("Starting satang server",
		applog.FieldOperation, applog.OpStartup,
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		applog.FieldCount, expenses.Len(),
		applog.FieldRate, rates.Get())
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
