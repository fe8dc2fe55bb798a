package server

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// tokenMaxAge is the cookie lifetime in seconds for tok, or 0 when the
// provider declared none. The expires_in value from the token response wins;
// Expiry is only a fallback because oauth2 derives it from the same value.
func tokenMaxAge(tok *oauth2.Token) int {
	if secs, ok := expiresIn(tok.Extra("expires_in")); ok && secs > 0 {
		return secs
	}
	if tok.ExpiresIn > 0 {
		return int(tok.ExpiresIn)
	}
	if !tok.Expiry.IsZero() {
		if d := tok.Expiry.Sub(NowTimeFunc()).Round(time.Second); d > 0 {
			return int(d / time.Second)
		}
	}
	return 0
}

// expiresIn reads expires_in as decoded from a JSON or form token response.
func expiresIn(v any) (int, bool) {
	switch t := v.(type) {
	case float64:
		return int(math.Round(t)), true
	case json.Number:
		f, err := t.Float64()
		return int(math.Round(f)), err == nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		return n, err == nil
	}
	return 0, false
}

func (s *Server) tokenCookie(value string) *http.Cookie {
	return &http.Cookie{
		Name:     s.config.GetCookieName(),
		Value:    value,
		Path:     "/",
		Domain:   s.config.GetCookieDomain(),
		HttpOnly: true,
		Secure:   s.config.GetCookieSecure(),
		SameSite: s.config.GetCookieSameSite(),
	}
}

// SetTokenCookie stores the provider access token for the bridge to pick up
// on later requests.
func (s *Server) SetTokenCookie(w http.ResponseWriter, tok *oauth2.Token) {
	c := s.tokenCookie(tok.AccessToken)
	if maxAge := tokenMaxAge(tok); maxAge > 0 {
		c.MaxAge = maxAge
		c.Expires = NowTimeFunc().Add(time.Duration(maxAge) * time.Second)
	}
	http.SetCookie(w, c)
}

// ClearTokenCookie expires the token cookie using the attributes it was set
// with, so the browser matches and drops it.
func (s *Server) ClearTokenCookie(w http.ResponseWriter) {
	c := s.tokenCookie("")
	c.MaxAge = -1
	c.Expires = time.Unix(0, 0)
	http.SetCookie(w, c)
}

func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

func writeJSONError(w http.ResponseWriter, errorCode, description string, statusCode int) {
	writeJSON(w, statusCode, map[string]string{
		"error":             errorCode,
		"error_description": description,
	})
}
