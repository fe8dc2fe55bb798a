package server

import (
	"errors"
	"fmt"
	"net/http"

	bridgeerrors "github.com/jrsteele09/go-idp-bridge/internal/errors"
	"github.com/jrsteele09/go-idp-bridge/pkce"
	"golang.org/x/oauth2"
)

// CallbackHandler finishes the authorization code flow: the code verifier is
// recovered from state, the code exchanged for an access token and the token
// stored in a cookie. Nothing is retried; on failure the user starts over.
func (s *Server) CallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()

		rawState := query.Get("state")
		if rawState == "" {
			http.Error(w, "Invalid 'state'", http.StatusBadRequest)
			return
		}

		if errorParam := query.Get("error"); errorParam != "" {
			desc := query.Get("error_description")
			if desc == "" {
				desc = errorParam
			}
			s.logger.Error().Str("error", errorParam).Str("description", desc).Msg("Provider returned an authorization error")
			http.Error(w, fmt.Sprintf("There was an error: %s", desc), http.StatusInternalServerError)
			return
		}

		state, err := pkce.DecodeState(rawState)
		if err != nil {
			s.logger.Warn().Err(err).Msg("Rejected callback state")
			http.Error(w, "Invalid 'state'", http.StatusBadRequest)
			return
		}

		code := query.Get("code")
		if code == "" {
			s.logger.Warn().Err(bridgeerrors.ErrMissingCode).Msg("Rejected callback")
			http.Error(w, "Missing 'code'", http.StatusBadRequest)
			return
		}

		tok, err := s.provider.Exchange(r.Context(), code, state.CodeVerifier)
		if err != nil {
			var rErr *oauth2.RetrieveError
			switch {
			case errors.As(err, &rErr) && rErr.ErrorCode != "":
				s.logger.Error().Str("error", rErr.ErrorCode).Str("description", rErr.ErrorDescription).Msg("Token endpoint rejected the code")
				http.Error(w, fmt.Sprintf("Error: %s (%s)", rErr.ErrorCode, rErr.ErrorDescription), http.StatusBadRequest)
			case errors.Is(err, bridgeerrors.ErrMissingConfig):
				s.logger.Error().Err(err).Msg("Token endpoint is not configured")
				http.Error(w, "Token endpoint is not configured", http.StatusInternalServerError)
			default:
				s.logger.Error().Err(err).Msg("Token exchange failed")
				http.Error(w, "Token exchange failed", http.StatusBadGateway)
			}
			return
		}

		s.SetTokenCookie(w, tok)
		http.Redirect(w, r, RouteIndex, http.StatusFound)
	}
}
