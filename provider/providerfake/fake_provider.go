// Package providerfake is an httptest OpenID Connect provider exposing
// discovery, token and user-info endpoints with scripted answers.
package providerfake

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"

	"github.com/jrsteele09/go-idp-bridge/internal/config"
)

const (
	AuthorizePath = "/oauth/v2/authorize"
	TokenPath     = "/oauth/v2/token"
	UserInfoPath  = "/oidc/v1/userinfo"
)

type response struct {
	status int
	body   any
}

type Server struct {
	*httptest.Server

	lock          sync.Mutex
	userInfo      response
	token         response
	tokenRequests []url.Values
	bearerTokens  []string
}

// New starts a provider that answers user-info with an empty claim set and
// the token endpoint with a one hour access token.
func New() *Server {
	s := &Server{
		userInfo: response{status: http.StatusOK, body: map[string]any{}},
		token: response{status: http.StatusOK, body: map[string]any{
			"access_token": "access-token",
			"token_type":   "Bearer",
			"expires_in":   3600,
		}},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /.well-known/openid-configuration", s.discovery)
	mux.HandleFunc("POST "+TokenPath, s.tokenHandler)
	mux.HandleFunc("GET "+UserInfoPath, s.userInfoHandler)
	s.Server = httptest.NewServer(mux)
	return s
}

func (s *Server) AuthorizeURL() string { return s.URL + AuthorizePath }
func (s *Server) TokenURL() string     { return s.URL + TokenPath }
func (s *Server) UserInfoURL() string  { return s.URL + UserInfoPath }

// Config returns provider configuration with every endpoint set explicitly.
func (s *Server) Config(redirectURI string) config.Zitadel {
	return config.Zitadel{
		AuthorizeEndpoint: s.AuthorizeURL(),
		TokenEndpoint:     s.TokenURL(),
		UserInfoEndpoint:  s.UserInfoURL(),
		ClientID:          "client-id",
		RedirectURI:       redirectURI,
		Scope:             config.DefaultScope,
		Collection:        config.DefaultCollection,
	}
}

func (s *Server) SetUserInfo(status int, body any) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.userInfo = response{status: status, body: body}
}

func (s *Server) SetToken(status int, body any) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.token = response{status: status, body: body}
}

// TokenRequests returns the form bodies posted to the token endpoint.
func (s *Server) TokenRequests() []url.Values {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]url.Values(nil), s.tokenRequests...)
}

// BearerTokens returns the Authorization headers sent to user-info.
func (s *Server) BearerTokens() []string {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]string(nil), s.bearerTokens...)
}

func (s *Server) discovery(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"issuer":                 s.URL,
		"authorization_endpoint": s.AuthorizeURL(),
		"token_endpoint":         s.TokenURL(),
		"userinfo_endpoint":      s.UserInfoURL(),
		"jwks_uri":               s.URL + "/oauth/v2/keys",
	})
}

func (s *Server) tokenHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.lock.Lock()
	s.tokenRequests = append(s.tokenRequests, r.PostForm)
	resp := s.token
	s.lock.Unlock()
	writeJSON(w, resp.status, resp.body)
}

func (s *Server) userInfoHandler(w http.ResponseWriter, r *http.Request) {
	s.lock.Lock()
	s.bearerTokens = append(s.bearerTokens, r.Header.Get("Authorization"))
	resp := s.userInfo
	s.lock.Unlock()
	if raw, ok := resp.body.(string); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(resp.status)
		_, _ = w.Write([]byte(raw))
		return
	}
	writeJSON(w, resp.status, resp.body)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
