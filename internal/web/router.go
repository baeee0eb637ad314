package web

import (
	"log/slog"
	"net/http"

	"github.com/jusunglee/kyrlat/internal/db"
	"github.com/jusunglee/kyrlat/internal/web/handlers"
	"github.com/jusunglee/kyrlat/internal/web/middleware"
)

// MaxBodyBytes caps every request body.
const MaxBodyBytes = 64 << 10

type Config struct {
	// AdminPassword guards history pruning. Pruning answers 503 when empty.
	AdminPassword  string
	AllowedOrigins []string
	// RateLimit is the number of romanize requests allowed per IP per minute.
	RateLimit int
}

type Router struct {
	romanizer handlers.Romanizer
	repo      db.Repository
	log       *slog.Logger
	cfg       Config
	limiter   *middleware.IPRateLimiter
}

// NewRouter builds the API router. History routes are only registered when
// repo is non-nil.
func NewRouter(romanizer handlers.Romanizer, repo db.Repository, log *slog.Logger, cfg Config) *Router {
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 60
	}
	return &Router{
		romanizer: romanizer,
		repo:      repo,
		log:       log,
		cfg:       cfg,
		limiter:   middleware.NewRateLimiter(cfg.RateLimit, 60),
	}
}

// Close stops the rate limiter's background sweep.
func (r *Router) Close() {
	r.limiter.Stop()
}

func (r *Router) Handler() http.Handler {
	mux := http.NewServeMux()

	romanizeHandler := handlers.NewRomanizeHandler(r.romanizer, r.log)

	mux.Handle("POST /api/v1/romanize",
		middleware.Chain(
			http.HandlerFunc(romanizeHandler.Romanize),
			middleware.PrometheusMetrics(),
			middleware.RequestLogger(r.log),
			middleware.RateLimit(r.limiter),
			middleware.MaxBytes(MaxBodyBytes),
		),
	)

	mux.Handle("POST /api/v1/romanize/batch",
		middleware.Chain(
			http.HandlerFunc(romanizeHandler.Batch),
			middleware.PrometheusMetrics(),
			middleware.RequestLogger(r.log),
			middleware.RateLimit(r.limiter),
			middleware.MaxBytes(MaxBodyBytes),
		),
	)

	mux.Handle("GET /api/v1/languages",
		middleware.Chain(
			http.HandlerFunc(romanizeHandler.Languages),
			middleware.PrometheusMetrics(),
			middleware.RequestLogger(r.log),
			middleware.CacheControl("public, max-age=3600"),
		),
	)

	if r.repo != nil {
		historyHandler := handlers.NewHistoryHandler(r.repo, r.log)

		mux.Handle("GET /api/v1/romanizations",
			middleware.Chain(
				http.HandlerFunc(historyHandler.List),
				middleware.PrometheusMetrics(),
				middleware.RequestLogger(r.log),
				middleware.CacheControl("public, s-maxage=5, max-age=0"),
			),
		)

		mux.Handle("GET /api/v1/romanizations/{id}",
			middleware.Chain(
				http.HandlerFunc(historyHandler.Get),
				middleware.PrometheusMetrics(),
				middleware.RequestLogger(r.log),
				middleware.CacheControl("public, s-maxage=5, max-age=0"),
			),
		)

		mux.Handle("DELETE /api/v1/romanizations",
			middleware.Chain(
				http.HandlerFunc(historyHandler.Prune),
				middleware.PrometheusMetrics(),
				middleware.RequestLogger(r.log),
				middleware.BasicAuth(r.cfg.AdminPassword),
			),
		)
	}

	return middleware.CORS(r.cfg.AllowedOrigins)(mux)
}
