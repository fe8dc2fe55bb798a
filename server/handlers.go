package server

import (
	"fmt"
	"html"
	"net/http"

	"github.com/jrsteele09/go-idp-bridge/pkce"
	"github.com/jrsteele09/go-idp-bridge/strategy"
	"github.com/jrsteele09/go-idp-bridge/users"
)

func (s *Server) IndexHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		name := html.EscapeString(s.config.GetAppName())
		user, ok := strategy.UserFromContext(r.Context())
		if !ok {
			fmt.Fprintf(w, "<h1>%s</h1><p><a href=%q>Login with Zitadel</a></p>", name, RouteLogin)
			return
		}
		who := user.String(users.FieldEmail)
		if who == "" {
			who = user.ID()
		}
		fmt.Fprintf(w, "<h1>%s</h1><p>Signed in as %s. <a href=%q>Logout</a></p>", name, html.EscapeString(who), RouteLogout)
	}
}

// LoginHandler starts the authorization code flow with a fresh PKCE pair.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pair, err := pkce.Generate()
		if err != nil {
			s.logger.Error().Err(err).Msg("Failed to generate PKCE pair")
			http.Error(w, "Failed to start login", http.StatusInternalServerError)
			return
		}
		authURL, err := s.provider.AuthorizationURL(pair)
		if err != nil {
			s.logger.Error().Err(err).Msg("Failed to build authorization URL")
			http.Error(w, "Failed to start login", http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, authURL, http.StatusFound)
	}
}

func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.ClearTokenCookie(w)
		http.Redirect(w, r, RouteIndex, http.StatusFound)
	}
}

// MeHandler returns the authenticated user without its password.
func (s *Server) MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := strategy.UserFromContext(r.Context())
		out := user.Clone()
		delete(out, users.FieldPassword)
		writeJSON(w, http.StatusOK, out)
	}
}
