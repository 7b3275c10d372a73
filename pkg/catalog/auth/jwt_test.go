package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/jwtauth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-catalog/pkg/catalog"
)

func TestTokenID(t *testing.T) {
	ja := NewJWTAuth("secret")

	withJTI, _, err := ja.Encode(map[string]interface{}{"jti": "abc"})
	require.NoError(t, err)
	assert.Equal(t, "jti:abc", TokenID(withJTI, "ignored"))

	withoutJTI, raw, err := ja.Encode(map[string]interface{}{"sub": "u1"})
	require.NoError(t, err)
	id := TokenID(withoutJTI, raw)
	assert.Contains(t, id, "raw:")
	assert.Equal(t, id, TokenID(withoutJTI, raw))
	assert.NotEqual(t, id, TokenID(withoutJTI, raw+"x"))
}

func TestRevokeUntil(t *testing.T) {
	ja := NewJWTAuth("secret")
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	exp := now.Add(time.Hour)

	tok, _, err := ja.Encode(map[string]interface{}{"exp": exp.Unix()})
	require.NoError(t, err)
	assert.True(t, exp.Equal(RevokeUntil(tok, now)))

	noExp, _, err := ja.Encode(map[string]interface{}{"sub": "u1"})
	require.NoError(t, err)
	assert.Equal(t, now.Add(DefaultRevocationTTL), RevokeUntil(noExp, now))
}

func TestAuthenticate(t *testing.T) {
	ja := NewJWTAuth("secret")
	revoker := NewMemoryRevoker()
	_, raw, err := ja.Encode(map[string]interface{}{"jti": "t1", "exp": time.Now().Add(time.Hour).Unix()})
	require.NoError(t, err)

	var gotErr error
	handler := jwtauth.Verifier(ja)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _, gotErr = Authenticate(r, revoker)
	}))

	call := func(header string) error {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		handler.ServeHTTP(httptest.NewRecorder(), req)
		return gotErr
	}

	assert.NoError(t, call("Bearer "+raw))
	assert.Error(t, call(""))
	assert.Error(t, call("Bearer not-a-token"))

	require.NoError(t, revoker.Revoke(context.Background(), "jti:t1", time.Now().Add(time.Hour)))
	err = call("Bearer " + raw)
	assert.ErrorIs(t, err, ErrRevoked)
	assert.NotErrorIs(t, err, catalog.ErrStorage)
}

func TestAuthenticateCookieToken(t *testing.T) {
	ja := NewJWTAuth("secret")
	revoker := NewMemoryRevoker()
	_, first, err := ja.Encode(map[string]interface{}{"sub": "u1"})
	require.NoError(t, err)
	_, second, err := ja.Encode(map[string]interface{}{"sub": "u2"})
	require.NoError(t, err)

	var gotRaw string
	var gotErr error
	handler := jwtauth.Verifier(ja)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, gotRaw, gotErr = Authenticate(r, revoker)
	}))
	call := func(cookie string) error {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
		req.AddCookie(&http.Cookie{Name: "jwt", Value: cookie})
		handler.ServeHTTP(httptest.NewRecorder(), req)
		return gotErr
	}

	require.NoError(t, call(first))
	assert.Equal(t, first, gotRaw)

	require.NoError(t, revoker.Revoke(context.Background(), TokenID(nil, first), time.Now().Add(time.Hour)))
	assert.ErrorIs(t, call(first), ErrRevoked)
	assert.NoError(t, call(second))
}

func TestRawToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, "", RawToken(req))

	req.AddCookie(&http.Cookie{Name: "jwt", Value: "from-cookie"})
	assert.Equal(t, "from-cookie", RawToken(req))

	req.Header.Set("Authorization", "Bearer from-header")
	assert.Equal(t, "from-header", RawToken(req))
}
