// Package main запускает HTTP-сервер сервиса оформления заказов.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mmeshcher/checkout-system/internal/catalog"
	"github.com/mmeshcher/checkout-system/internal/config"
	"github.com/mmeshcher/checkout-system/internal/handler"
	"github.com/mmeshcher/checkout-system/internal/notifier"
	"github.com/mmeshcher/checkout-system/internal/repository"
	"github.com/mmeshcher/checkout-system/internal/service"
	"github.com/mmeshcher/checkout-system/internal/session"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	sugar := logger.Sugar()

	cfg, err := config.Parse()
	if err != nil {
		sugar.Fatalw("configuration error", "error", err.Error())
	}

	// Бэкенд хранилища выбирается один раз при старте: PostgreSQL при
	// заданном DATABASE_URI, иначе эфемерное хранилище в памяти.
	var store repository.Store
	if cfg.DatabaseURI != "" {
		pgStore, err := repository.NewPostgresStore(cfg.DatabaseURI)
		if err != nil {
			sugar.Fatalw("database initialization error", "error", err.Error())
		}
		store = pgStore
	} else {
		sugar.Infow("DATABASE_URI is empty, using in-memory order store")
		store = repository.NewMemoryStore()
	}
	defer store.Close()

	notifyClient := notifier.NewClient(notifier.TelegramAPIBase, cfg.TelegramBotToken, cfg.TelegramChatID, logger)
	if !notifyClient.Configured() {
		sugar.Infow("telegram is not configured, notifications go to the log")
	}

	svc := service.NewService(store, catalog.Default(), notifyClient, cfg.NotifyTimeout, logger)

	sessions := session.NewManager(cfg.SessionSecret)
	h := handler.NewHandler(svc, logger, sessions)

	r := h.SetupRouter()

	server := &http.Server{
		Addr:    cfg.RunAddress,
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	// Запуск HTTP-сервера
	g.Go(func() error {
		sugar.Infow("starting checkout server", "addr", cfg.RunAddress)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown при отмене контекста (сигнал или ошибка в другой горутине)
	g.Go(func() error {
		<-ctx.Done()
		sugar.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		sugar.Info("server stopped gracefully")
		return nil
	})

	if err := g.Wait(); err != nil {
		sugar.Fatalw("application terminated with error", "error", err)
	}
}
