package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	RouteIndex = "/"

	// Auth Routes - Login & Logout
	RouteLogin  = "/login"
	RouteLogout = "/logout"

	// RouteCallback is used when the redirect URI has no path of its own.
	RouteCallback = "/oidc/callback"

	// API Routes
	RouteMe = "/me"
)
