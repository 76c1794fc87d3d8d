package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/httprate"
	"github.com/spf13/cobra"

	"github.com/cepadmin/cepadmin/internal/app"
	"github.com/cepadmin/cepadmin/internal/auth"
	"github.com/cepadmin/cepadmin/internal/directory"
	"github.com/cepadmin/cepadmin/internal/observability"
	"github.com/cepadmin/cepadmin/internal/platform/ratelimit"
	"github.com/cepadmin/cepadmin/internal/rbac"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	cfg, err := app.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := app.NewLogger(cfg)
	metrics := observability.NewMetrics()

	dirClient, err := directory.NewClient(ctx, cfg.DirectoryConfig())
	if err != nil {
		return err
	}
	dirClient.WithMetrics(directory.NewMetrics(metrics.Registerer()))

	rbacService := rbac.NewService(dirClient, rbac.DefaultCatalog(), cfg.ServiceConfig(), logger).
		WithRecorder(metrics)

	authService, err := auth.NewService(cfg.AuthConfig())
	if err != nil {
		return err
	}

	var counter httprate.LimitCounter
	if cfg.RedisAddr != "" {
		redisClient, err := ratelimit.NewRedisClient(ctx, cfg.RedisAddr)
		if err != nil {
			logger.Warn("redis unavailable, rate limit stays per replica", slog.Any("error", err))
		} else {
			defer func() {
				if err := redisClient.Close(); err != nil {
					logger.Warn("redis close", slog.Any("error", err))
				}
			}()
			counter = ratelimit.NewRedisCounter(redisClient, "", logger)
		}
	}

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		RolesHandler:   rbac.NewHandler(logger, rbacService),
		AuthMiddleware: authService.Middleware(logger),
		LimitCounter:   counter,
		Metrics:        metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	ctx, stop := context.WithCancel(ctx)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("auth_mode", cfg.AuthMode))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}

	select {
	case err := <-serveErr:
		return fmt.Errorf("http server: %w", err)
	default:
		return nil
	}
}
