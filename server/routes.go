package server

import (
	"net/http"
	"strings"

	apperrors "github.com/jrsteele09/go-token-auth/internal/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) initRoutes() {
	s.RegisterRouteFunc("GET "+RouteIndex+"{$}", s.IndexHandler())
	s.RegisterRouteFunc("GET "+RouteHealth, s.HealthHandler())
	s.RegisterRouteHandler("GET "+RouteMetrics, promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	s.registerAPIRoute(http.MethodPost, RouteRegister, s.RegisterHandler())
	s.registerAPIRoute(http.MethodPost, RouteLogin, s.LoginHandler())
	s.registerAPIRoute(http.MethodPost, RouteRefresh, s.RefreshHandler())
	s.registerAPIRoute(http.MethodPost, RouteLogout, s.LogoutHandler())
	s.registerAPIRoute(http.MethodPost, RouteRefreshLogout, s.LogoutHandler())

	// Protected routes (require a valid bearer access token)
	s.registerAPIRoute(http.MethodGet, RouteMe, s.MeHandler(), s.RequireAuth())
	s.registerAPIRoute(http.MethodGet, RoutePrivate, s.PrivateHandler(), s.RequireAuth())

	s.RegisterRouteFunc(RouteAuthPrefix+"/", ChainMiddleware(notFoundHandler, s.APIMiddleware()...))
}

// registerAPIRoute serves method on path and answers every other method on
// the same path with 405, or 204 for a preflight.
func (s *Server) registerAPIRoute(method, path string, handler http.HandlerFunc, mw ...func(http.HandlerFunc) http.HandlerFunc) {
	s.RegisterRouteFunc(method+" "+path, ChainMiddleware(handler, s.APIMiddleware(mw...)...))
	s.RegisterRouteFunc(path, ChainMiddleware(methodNotAllowedHandler(method), s.APIMiddleware()...))
}

func methodNotAllowedHandler(allowed ...string) http.HandlerFunc {
	allow := strings.Join(append(allowed, http.MethodOptions), ", ")
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Allow", allow)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeError(w, r, apperrors.ErrMethodNotAllowed)
	}
}

func notFoundHandler(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, apperrors.ErrNotFound)
}
