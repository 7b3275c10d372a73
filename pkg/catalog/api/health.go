package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/tendant/simple-catalog/pkg/catalog"
)

const readinessTimeout = 2 * time.Second

// Healthz reports that the process is serving
func Healthz(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "ok"})
}

// Readyz reports whether the store answers a ping
func Readyz(pinger catalog.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if pinger != nil {
			ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
			defer cancel()
			if err := pinger.Ping(ctx); err != nil {
				render.Status(r, http.StatusServiceUnavailable)
				render.JSON(w, r, map[string]string{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		render.JSON(w, r, map[string]string{"status": "ok"})
	}
}
