package localsession_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jrsteele09/go-idp-bridge/internal/config"
	"github.com/jrsteele09/go-idp-bridge/internal/errors"
	"github.com/jrsteele09/go-idp-bridge/localsession"
	"github.com/stretchr/testify/require"
)

func newVerifier(secret string) *localsession.JWTVerifier {
	return localsession.NewJWTVerifier(config.LocalSession{Secret: secret, CookieName: "payload-token"})
}

func TestVerifyFromCookie(t *testing.T) {
	v := newVerifier("s3cret")
	tok, err := v.Sign(localsession.Session{ID: "42", Collection: "users"}, time.Hour)
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/me", nil)
	r.AddCookie(&http.Cookie{Name: "payload-token", Value: tok})

	s, err := v.Verify(r)
	require.NoError(t, err)
	require.Equal(t, localsession.Session{ID: "42", Collection: "users"}, s)
}

func TestVerifyFromHeader(t *testing.T) {
	v := newVerifier("s3cret")
	tok, err := v.Sign(localsession.Session{ID: "7", Collection: "admins"}, time.Hour)
	require.NoError(t, err)

	for _, scheme := range []string{"JWT", "Bearer"} {
		r := httptest.NewRequest(http.MethodGet, "/me", nil)
		r.Header.Set("Authorization", scheme+" "+tok)
		s, err := v.Verify(r)
		require.NoError(t, err, scheme)
		require.Equal(t, "admins", s.Collection)
	}
}

func TestVerifyRejects(t *testing.T) {
	v := newVerifier("s3cret")
	other := newVerifier("other")

	forged, err := other.Sign(localsession.Session{ID: "1", Collection: "users"}, time.Hour)
	require.NoError(t, err)
	expired, err := v.Sign(localsession.Session{ID: "1", Collection: "users"}, -time.Minute)
	require.NoError(t, err)
	noCollection, err := v.Sign(localsession.Session{ID: "1"}, time.Hour)
	require.NoError(t, err)

	for name, tok := range map[string]string{
		"wrong key":     forged,
		"expired":       expired,
		"no collection": noCollection,
		"garbage":       "a.b.c",
	} {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "JWT "+tok)
		_, err := v.Verify(r)
		require.ErrorIs(t, err, errors.ErrInvalidToken, name)
	}
}

func TestVerifyNoToken(t *testing.T) {
	v := newVerifier("s3cret")
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Basic abc")
	_, err := v.Verify(r)
	require.ErrorIs(t, err, errors.ErrNoToken)
}

func TestDisabledWithoutSecret(t *testing.T) {
	v := newVerifier("")
	require.False(t, v.Enabled())
	_, err := v.Verify(httptest.NewRequest(http.MethodGet, "/", nil))
	require.ErrorIs(t, err, errors.ErrMissingConfig)
}
