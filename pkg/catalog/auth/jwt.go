package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/jwtauth"
	"github.com/lestrrat-go/jwx/jwt"

	"github.com/tendant/simple-catalog/pkg/catalog"
)

// DefaultRevocationTTL bounds revocation of tokens that carry no expiry.
const DefaultRevocationTTL = 24 * time.Hour

// ErrRevoked is returned for a token that was logged out.
var ErrRevoked = errors.New("token revoked")

// ErrNoRawToken is returned when a verified token cannot be read back from
// the Authorization header or the jwt cookie.
var ErrNoRawToken = errors.New("raw token not found")

// NewJWTAuth returns an HS256 verifier for secret.
func NewJWTAuth(secret string) *jwtauth.JWTAuth {
	return jwtauth.New("HS256", []byte(secret), nil)
}

// TokenID is the revocation key for a token: its jti claim, or a SHA-256
// digest of the raw token when no jti is present.
func TokenID(token jwt.Token, raw string) string {
	if token != nil && token.JwtID() != "" {
		return "jti:" + token.JwtID()
	}
	sum := sha256.Sum256([]byte(raw))
	return "raw:" + hex.EncodeToString(sum[:])
}

// RevokeUntil is the instant a revocation can be forgotten.
func RevokeUntil(token jwt.Token, now time.Time) time.Time {
	if token != nil {
		if exp := token.Expiration(); !exp.IsZero() {
			return exp
		}
	}
	return now.Add(DefaultRevocationTTL)
}

// RawToken returns the encoded token from the places jwtauth.Verifier
// searches by default: the Authorization header, then the jwt cookie.
func RawToken(r *http.Request) string {
	if raw := jwtauth.TokenFromHeader(r); raw != "" {
		return raw
	}
	return jwtauth.TokenFromCookie(r)
}

// Authenticate resolves the verified token on r, which must have passed
// through jwtauth.Verifier. Revoker failures are returned as *catalog.StorageError;
// any other error means the caller is unauthenticated.
func Authenticate(r *http.Request, revoker Revoker) (jwt.Token, string, error) {
	token, _, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return nil, "", err
	}
	if token == nil {
		return nil, "", jwtauth.ErrNoTokenFound
	}
	raw := RawToken(r)
	if raw == "" {
		return nil, "", ErrNoRawToken
	}
	if revoker != nil {
		revoked, err := revoker.IsRevoked(r.Context(), TokenID(token, raw))
		if err != nil {
			return nil, "", catalog.NewStorageError("revoker", "is revoked", err)
		}
		if revoked {
			return nil, "", ErrRevoked
		}
	}
	return token, raw, nil
}
