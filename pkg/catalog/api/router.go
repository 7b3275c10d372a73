package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth"

	"github.com/tendant/simple-catalog/pkg/catalog"
	"github.com/tendant/simple-catalog/pkg/catalog/auth"
)

// RouterConfig holds the dependencies of the HTTP API
type RouterConfig struct {
	Service catalog.Service
	Uploads *catalog.Uploads
	// Pinger backs /readyz; nil reports ready.
	Pinger    catalog.Pinger
	TokenAuth *jwtauth.JWTAuth
	Revoker   auth.Revoker
	Logger    *slog.Logger

	// CORSOrigins enables CORS when non-empty.
	CORSOrigins []string
	// RequestTimeout bounds catalog requests; zero disables it.
	RequestTimeout time.Duration
}

// NewRouter mounts the catalog API under /api together with /healthz and
// /readyz.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(cfg.Logger))
	r.Use(Recoverer(cfg.Logger))
	if len(cfg.CORSOrigins) > 0 {
		r.Use(CORS(cfg.CORSOrigins...))
	}

	r.Get("/healthz", Healthz)
	r.Get("/readyz", Readyz(cfg.Pinger))

	catalogHandler := NewCatalogHandler(cfg.Service)
	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if cfg.RequestTimeout > 0 {
				r.Use(middleware.Timeout(cfg.RequestTimeout))
			}
			r.Mount("/categories", catalogHandler.CategoryRoutes())
			r.Mount("/lessons", catalogHandler.LessonRoutes())
			r.Mount("/series", catalogHandler.SeriesRoutes())
			r.Mount("/seriesLessons", catalogHandler.SeriesLessonRoutes())
		})
		if cfg.Uploads != nil {
			r.Mount("/uploads", NewUploadHandler(cfg.Uploads).Routes())
		}
		r.Mount("/auth", NewAuthHandler(cfg.TokenAuth, cfg.Revoker).Routes())
	})

	return r
}
