package app

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

	"go-task-manager/internal/config"
	"go-task-manager/internal/database"
	"go-task-manager/internal/event"
	"go-task-manager/internal/handler"
	"go-task-manager/internal/middleware"
	"go-task-manager/internal/repository"
	"go-task-manager/internal/router"
	"go-task-manager/internal/service"
)

type App struct {
	server       *http.Server
	db           *database.DB
	cleanupFuncs []func()
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	slog.Info("connecting to PostgreSQL")
	db, err := database.New(context.Background(), cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.EnsureSchema(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure database schema: %w", err)
	}

	taskRepo := repository.NewTaskRepository(db.Pool)
	slog.Info("database ready")

	principals, err := service.NewPrincipalStore(cfg.UsersFile)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to load principals: %w", err)
	}

	codec := service.NewTokenCodec(cfg.JWTSecret)
	sessions := service.NewRefreshTokenStore()
	authService := service.NewAuthService(codec, principals, sessions, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)
	authMiddleware := middleware.NewAuthMiddleware(authService)
	authHandler := handler.NewAuthHandler(authService)

	events := event.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
	if events.Enabled() {
		slog.Info("task event publisher enabled", "topic", cfg.KafkaTopic)
	}

	taskService := service.NewTaskService(taskRepo, events)
	taskHandler := handler.NewTaskHandler(taskService)

	appRouter := router.New(cfg, authMiddleware, authHandler, taskHandler)

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           appRouter,
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return &App{
		server: server,
		db:     db,
		cleanupFuncs: []func(){
			func() {
				if err := events.Close(); err != nil {
					slog.Warn("closing event publisher", "error", err)
				}
			},
			func() {
				db.Close()
			},
		},
	}, nil
}

func (a *App) Run() error {
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if serveErr := a.server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Error("server failed", "error", serveErr)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	for _, cleanup := range a.cleanupFuncs {
		cleanup()
	}

	slog.Info("server stopped")
	return nil
}
