package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth"

	"github.com/tendant/simple-catalog/pkg/catalog"
	"github.com/tendant/simple-catalog/pkg/catalog/auth"
)

// AuthHandler handles logout. Tokens are issued elsewhere; logout revokes
// the presented bearer token until it expires.
type AuthHandler struct {
	tokenAuth *jwtauth.JWTAuth
	revoker   auth.Revoker
	now       func() time.Time
}

// NewAuthHandler creates a new auth handler. A nil tokenAuth rejects every
// logout with 401.
func NewAuthHandler(tokenAuth *jwtauth.JWTAuth, revoker auth.Revoker) *AuthHandler {
	if revoker == nil {
		revoker = auth.NewMemoryRevoker()
	}
	return &AuthHandler{tokenAuth: tokenAuth, revoker: revoker, now: time.Now}
}

// Routes returns the routes mounted at /api/auth
func (h *AuthHandler) Routes() chi.Router {
	r := chi.NewRouter()
	if h.tokenAuth != nil {
		r.Use(jwtauth.Verifier(h.tokenAuth))
	}
	r.Post("/logout", h.Logout)
	return r
}

// Logout revokes the caller's token
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if h.tokenAuth == nil {
		writeError(w, r, fmt.Errorf("%w: token verification is not configured", errUnauthenticated))
		return
	}

	token, raw, err := auth.Authenticate(r, h.revoker)
	if err != nil {
		if !errors.Is(err, catalog.ErrStorage) && !errors.Is(err, auth.ErrRevoked) {
			err = fmt.Errorf("%w: %v", errUnauthenticated, err)
		}
		writeError(w, r, err)
		return
	}

	id := auth.TokenID(token, raw)
	if err := h.revoker.Revoke(r.Context(), id, auth.RevokeUntil(token, h.now())); err != nil {
		writeError(w, r, catalog.NewStorageError("revoker", "revoke", err))
		return
	}

	slog.Info("Token revoked", "subject", token.Subject())
	w.WriteHeader(http.StatusNoContent)
}
