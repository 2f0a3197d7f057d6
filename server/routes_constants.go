package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	RouteIndex   = "/"
	RouteHealth  = "/healthz"
	RouteMetrics = "/metrics"

	// Auth API, mounted under RouteAuthPrefix
	RouteAuthPrefix = "/api/auth"
	RouteRegister   = RouteAuthPrefix + "/register"
	RouteLogin      = RouteAuthPrefix + "/login"
	RouteRefresh    = RouteAuthPrefix + "/refresh"
	RouteLogout     = RouteAuthPrefix + "/logout"
	RouteMe         = RouteAuthPrefix + "/me"
	RoutePrivate    = RouteAuthPrefix + "/private"

	// The refresh cookie is scoped to RouteRefresh, so browsers only send it
	// to paths below it. Logging out here lets the server revoke the token.
	RouteRefreshLogout = RouteRefresh + "/logout"
)
