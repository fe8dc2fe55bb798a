package server

func (s *Server) initRoutes() {
	s.RegisterRouteFunc("GET "+RouteIndex+"{$}", ChainMiddleware(s.IndexHandler(), s.HTMLMiddleware(s.Authenticate)...))

	// LOGIN
	s.RegisterRouteFunc("GET "+RouteLogin, ChainMiddleware(s.LoginHandler(), s.HTMLMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteLogout, ChainMiddleware(s.LogoutHandler(), s.HTMLMiddleware()...))
	s.RegisterRouteFunc("GET "+s.callbackPath, ChainMiddleware(s.CallbackHandler(), s.HTMLMiddleware()...))

	// API routes
	s.RegisterRouteFunc("GET "+RouteMe, ChainMiddleware(s.MeHandler(), s.APIMiddleware(s.Authenticate, s.RequireUser)...))
}
