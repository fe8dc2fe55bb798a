// Package localsession verifies the host application's own session tokens.
// They are HS256 JWTs carrying the user id and the collection the user lives in.
package localsession

import (
	"net/http"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-idp-bridge/internal/config"
	"github.com/jrsteele09/go-idp-bridge/internal/errors"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Session identifies a locally logged-in user.
type Session struct {
	ID         string
	Collection string
}

type Verifier interface {
	Verify(r *http.Request) (Session, error)
}

type sessionClaims struct {
	ID         string `json:"id"`
	Collection string `json:"collection"`
	jwtlib.RegisteredClaims
}

var _ Verifier = (*JWTVerifier)(nil)

// JWTVerifier reads a token from the session cookie, or from an
// "Authorization: JWT <token>" / "Bearer <token>" header, and checks its
// HS256 signature and expiry.
type JWTVerifier struct {
	secret     []byte
	cookieName string
}

func NewJWTVerifier(cfg config.SessionConfig) *JWTVerifier {
	return &JWTVerifier{
		secret:     []byte(cfg.GetLocalSessionSecret()),
		cookieName: cfg.GetLocalSessionCookie(),
	}
}

// Enabled reports whether a secret is configured.
func (v *JWTVerifier) Enabled() bool {
	return len(v.secret) > 0
}

func (v *JWTVerifier) Verify(r *http.Request) (Session, error) {
	if !v.Enabled() {
		return Session{}, errors.Wrapf(errors.ErrMissingConfig, "local session secret")
	}
	raw := v.extract(r)
	if raw == "" {
		return Session{}, errors.ErrNoToken
	}

	var c sessionClaims
	token, err := jwtlib.ParseWithClaims(raw, &c, func(t *jwtlib.Token) (interface{}, error) {
		return v.secret, nil
	},
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithExpirationRequired(),
		jwtlib.WithTimeFunc(NowTimeFunc),
	)
	if err != nil || !token.Valid {
		return Session{}, errors.Wrapf(errors.ErrInvalidToken, "local session: %v", err)
	}
	if c.ID == "" || c.Collection == "" {
		return Session{}, errors.Wrapf(errors.ErrInvalidToken, "local session: missing id or collection")
	}
	return Session{ID: c.ID, Collection: c.Collection}, nil
}

// Sign issues a token for s valid for ttl.
func (v *JWTVerifier) Sign(s Session, ttl time.Duration) (string, error) {
	if !v.Enabled() {
		return "", errors.Wrapf(errors.ErrMissingConfig, "local session secret")
	}
	now := NowTimeFunc()
	c := sessionClaims{
		ID:         s.ID,
		Collection: s.Collection,
		RegisteredClaims: jwtlib.RegisteredClaims{
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, c).SignedString(v.secret)
}

func (v *JWTVerifier) extract(r *http.Request) string {
	if v.cookieName != "" {
		if c, err := r.Cookie(v.cookieName); err == nil && c.Value != "" {
			return c.Value
		}
	}
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok {
		return ""
	}
	switch strings.ToLower(scheme) {
	case "jwt", "bearer":
		return strings.TrimSpace(token)
	}
	return ""
}
