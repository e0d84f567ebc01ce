package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/appdex/jobtrack-backend/internal/adapter/postgres"
	applicationrepo "github.com/appdex/jobtrack-backend/internal/adapter/postgres/application"
	tagrepo "github.com/appdex/jobtrack-backend/internal/adapter/postgres/tag"
	userrepo "github.com/appdex/jobtrack-backend/internal/adapter/postgres/user"
	"github.com/appdex/jobtrack-backend/internal/auth"
	"github.com/appdex/jobtrack-backend/internal/config"
	applicationsvc "github.com/appdex/jobtrack-backend/internal/service/application"
	authsvc "github.com/appdex/jobtrack-backend/internal/service/auth"
	tagsvc "github.com/appdex/jobtrack-backend/internal/service/tag"
	"github.com/appdex/jobtrack-backend/internal/transport/middleware"
	"github.com/appdex/jobtrack-backend/internal/transport/rest"
)

// Run is the application entry point. It loads configuration, connects to
// PostgreSQL, runs pending migrations, wires repositories, services, and
// HTTP handlers, and serves until ctx is cancelled. Shutdown drains
// in-flight requests within the configured timeout.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	if cfg.Database.Migrate {
		if err := postgres.Migrate(ctx, cfg.Database.DSN); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	}

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	txManager := postgres.NewTxManager(pool)
	apps := applicationrepo.New(pool)
	tags := tagrepo.New(pool)
	users := userrepo.New(pool)

	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AccessTokenTTL)

	applicationService := applicationsvc.NewService(logger, apps, tags, txManager, cfg.Tracker)
	tagService := tagsvc.NewService(logger, tags, cfg.Tracker)
	authService := authsvc.NewService(logger, users, jwtManager, cfg.Auth)

	rateLimiter := middleware.NewRateLimiter(time.Minute)
	defer rateLimiter.Stop()

	handler := rest.NewRouter(rest.RouterDeps{
		Log:          logger,
		CORS:         cfg.CORS,
		RatePerMin:   cfg.Server.RatePerMinute,
		RateLimiter:  rateLimiter,
		Auth:         rest.NewAuthHandler(authService, logger),
		Applications: rest.NewApplicationHandler(applicationService, logger),
		Tags:         rest.NewTagHandler(tagService, logger),
		Health:       rest.NewHealthHandler(pool, BuildVersion()),
		Validator:    middleware.Auth(jwtManager),
	})

	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	logger.Info("stopped")
	return nil
}
