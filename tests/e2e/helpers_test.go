//go:build e2e

package e2e_test

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/appdex/jobtrack-backend/internal/adapter/postgres"
	applicationrepo "github.com/appdex/jobtrack-backend/internal/adapter/postgres/application"
	tagrepo "github.com/appdex/jobtrack-backend/internal/adapter/postgres/tag"
	"github.com/appdex/jobtrack-backend/internal/adapter/postgres/testhelper"
	userrepo "github.com/appdex/jobtrack-backend/internal/adapter/postgres/user"
	authpkg "github.com/appdex/jobtrack-backend/internal/auth"
	"github.com/appdex/jobtrack-backend/internal/client/api"
	"github.com/appdex/jobtrack-backend/internal/config"
	applicationsvc "github.com/appdex/jobtrack-backend/internal/service/application"
	authsvc "github.com/appdex/jobtrack-backend/internal/service/auth"
	tagsvc "github.com/appdex/jobtrack-backend/internal/service/tag"
	"github.com/appdex/jobtrack-backend/internal/transport/middleware"
	"github.com/appdex/jobtrack-backend/internal/transport/rest"
)

// testServer wraps the full-stack HTTP server for E2E tests.
type testServer struct {
	URL    string
	Client *http.Client
	Pool   *pgxpool.Pool
}

// testLogWriter adapts testing.T to io.Writer for slog.
type testLogWriter struct{ t *testing.T }

func (w testLogWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(string(p))
	return len(p), nil
}

// setupTestServer wires the real repository, service, and transport layers
// against the shared PostgreSQL testcontainer and serves them over
// httptest. Rate limiting is disabled so tests can hammer the API.
func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	pool := testhelper.SetupTestDB(t)
	logger := slog.New(slog.NewTextHandler(testLogWriter{t}, &slog.HandlerOptions{Level: slog.LevelWarn}))

	trackerCfg := config.TrackerConfig{
		MaxPageSize:      100,
		MaxTagsPerUser:   200,
		MaxBulkBatchSize: 500,
		ExportMaxEntries: 10000,
	}
	authCfg := config.AuthConfig{
		JWTSecret:      "e2e-test-secret",
		JWTIssuer:      "jobtrack-e2e",
		AccessTokenTTL: time.Hour,
	}

	txManager := postgres.NewTxManager(pool)
	apps := applicationrepo.New(pool)
	tags := tagrepo.New(pool)
	users := userrepo.New(pool)

	jwtManager := authpkg.NewJWTManager(authCfg.JWTSecret, authCfg.JWTIssuer, authCfg.AccessTokenTTL)

	applicationService := applicationsvc.NewService(logger, apps, tags, txManager, trackerCfg)
	tagService := tagsvc.NewService(logger, tags, trackerCfg)
	authService := authsvc.NewService(logger, users, jwtManager, authCfg)

	handler := rest.NewRouter(rest.RouterDeps{
		Log:          logger,
		CORS:         config.CORSConfig{AllowedOrigins: "*"},
		Auth:         rest.NewAuthHandler(authService, logger),
		Applications: rest.NewApplicationHandler(applicationService, logger),
		Tags:         rest.NewTagHandler(tagService, logger),
		Health:       rest.NewHealthHandler(pool, "e2e"),
		Validator:    middleware.Auth(jwtManager),
	})

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return &testServer{URL: srv.URL, Client: srv.Client(), Pool: pool}
}

var accountSeq int

// registerClient registers a fresh account and returns an authenticated
// API client for it.
func registerClient(t *testing.T, ts *testServer) *api.Client {
	t.Helper()

	accountSeq++
	email := fmt.Sprintf("e2e-%d-%d@example.com", time.Now().UnixNano(), accountSeq)
	username := fmt.Sprintf("e2e-user-%d", accountSeq)

	client := api.New(ts.URL, api.WithHTTPClient(ts.Client))
	require.NoError(t, client.Register(context.Background(), email, username, "password-123"))
	return client
}
