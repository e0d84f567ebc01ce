package rest

import (
	"log/slog"
	"net/http"

	"github.com/appdex/jobtrack-backend/internal/config"
	"github.com/appdex/jobtrack-backend/internal/transport/middleware"
)

// RouterDeps bundles everything NewRouter needs.
type RouterDeps struct {
	Log          *slog.Logger
	CORS         config.CORSConfig
	RatePerMin   int
	RateLimiter  *middleware.RateLimiter
	Auth         *AuthHandler
	Applications *ApplicationHandler
	Tags         *TagHandler
	Health       *HealthHandler
	Validator    middleware.Middleware // token validation, from middleware.Auth
}

// NewRouter assembles the HTTP mux. Everything under /api requires a valid
// Bearer token except registration and login; health probes sit outside
// /api and are unauthenticated.
func NewRouter(d RouterDeps) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /live", d.Health.Live)
	mux.HandleFunc("GET /ready", d.Health.Ready)
	mux.HandleFunc("GET /health", d.Health.Health)

	mux.HandleFunc("POST /api/auth/register", d.Auth.Register)
	mux.HandleFunc("POST /api/auth/login", d.Auth.Login)
	mux.Handle("GET /api/auth/me", middleware.RequireAuth(http.HandlerFunc(d.Auth.Me)))

	protected := func(h http.HandlerFunc) http.Handler {
		return middleware.RequireAuth(h)
	}

	mux.Handle("GET /api/applications", protected(d.Applications.List))
	mux.Handle("GET /api/applications/all", protected(d.Applications.ListAll))
	mux.Handle("GET /api/applications/stats", protected(d.Applications.Stats))
	mux.Handle("POST /api/applications", protected(d.Applications.Create))
	// The literal statusUpdate segment takes precedence over {id}.
	mux.Handle("PATCH /api/applications/statusUpdate", protected(d.Applications.BulkStatus))
	mux.Handle("GET /api/applications/{id}", protected(d.Applications.Get))
	mux.Handle("PUT /api/applications/{id}", protected(d.Applications.Update))
	mux.Handle("PATCH /api/applications/{id}", protected(d.Applications.Patch))
	mux.Handle("DELETE /api/applications/{id}", protected(d.Applications.Delete))

	mux.Handle("GET /api/tags", protected(d.Tags.List))
	mux.Handle("POST /api/tags", protected(d.Tags.Create))
	mux.Handle("DELETE /api/tags/{id}", protected(d.Tags.Delete))

	mws := []middleware.Middleware{
		middleware.Recovery(d.Log),
		middleware.RequestID,
		middleware.CORS(d.CORS),
		middleware.Logger(d.Log),
	}
	if d.RateLimiter != nil && d.RatePerMin > 0 {
		mws = append(mws, d.RateLimiter.Limit(d.RatePerMin))
	}
	if d.Validator != nil {
		mws = append(mws, d.Validator)
	}

	return middleware.Chain(mws...)(mux)
}
