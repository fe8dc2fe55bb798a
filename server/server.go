package server

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/jrsteele09/go-idp-bridge/internal/config"
	"github.com/jrsteele09/go-idp-bridge/internal/logging"
	"github.com/jrsteele09/go-idp-bridge/provider"
	"github.com/jrsteele09/go-idp-bridge/strategy"
	"github.com/rs/zerolog"
)

type Server struct {
	env          string // Environment (e.g., "DEV", "PROD")
	mux          *http.ServeMux
	routes       []string
	config       config.Config
	provider     *provider.Client
	strategies   strategy.Chain
	callbackPath string
	logger       zerolog.Logger
}

// New wires the HTTP routes. Requests to protected routes are authenticated
// by strategies, tried in order.
func New(cfg config.Config, p *provider.Client, strategies strategy.Chain, logger zerolog.Logger) *Server {
	s := &Server{
		env:          cfg.GetEnv(),
		mux:          http.NewServeMux(),
		config:       cfg,
		provider:     p,
		strategies:   strategies,
		callbackPath: callbackPath(p.RedirectURI()),
		logger:       logging.Named(logger, "server"),
	}

	s.initRoutes()
	s.logRoutes()

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		method, path, ok := strings.Cut(route, " ")
		if !ok {
			method, path = "", route
		}
		s.logger.Debug().Str("method", method).Str("path", path).Msg("Route registered")
	}
}

// callbackPath takes the path of the configured redirect URI, falling back
// to RouteCallback.
func callbackPath(redirectURI string) string {
	u, err := url.Parse(redirectURI)
	if err != nil || u.Path == "" || u.Path == "/" {
		return RouteCallback
	}
	return u.Path
}
