package server

import (
	"net/http"

	"github.com/jrsteele09/go-idp-bridge/strategy"
)

// Authenticate runs the strategy chain and attaches the resolved user, if
// any, to the request context. Anonymous requests continue.
func (s *Server) Authenticate(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res := s.strategies.Authenticate(r)
		switch {
		case res.Err != nil:
			s.logger.Error().Err(res.Err).Str("strategy", res.Strategy).Msg("Authentication error")
			writeJSONError(w, "server_error", "authentication failed", http.StatusInternalServerError)
			return
		case res.Status != 0:
			writeJSONError(w, "access_denied", http.StatusText(res.Status), res.Status)
			return
		case res.User != nil:
			r = r.WithContext(strategy.WithUser(r.Context(), res.User))
		}
		next(w, r)
	}
}

// RequireUser rejects requests Authenticate left anonymous.
func (s *Server) RequireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := strategy.UserFromContext(r.Context()); !ok {
			writeJSONError(w, "unauthorized", "not authenticated", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}
