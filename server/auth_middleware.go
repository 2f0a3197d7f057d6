package server

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-token-auth/users"
	"github.com/rs/zerolog/hlog"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeyUser stores the authenticated *users.Profile
const ContextKeyUser ContextKey = "user"

// RequireAuth is middleware that validates a Bearer access token and attaches
// the caller's profile to the request context.
func (s *Server) RequireAuth() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			token, err := bearerToken(r)
			if err != nil {
				writeError(w, r, err)
				return
			}

			profile, err := s.auth.Authenticate(r.Context(), token)
			if err != nil {
				hlog.FromRequest(r).Debug().Err(err).Msg("access token rejected")
				writeError(w, r, err)
				return
			}

			next(w, r.WithContext(WithUser(r.Context(), profile)))
		}
	}
}

func WithUser(ctx context.Context, profile *users.Profile) context.Context {
	return context.WithValue(ctx, ContextKeyUser, profile)
}

// UserFromContext returns the profile attached by RequireAuth.
func UserFromContext(ctx context.Context) (*users.Profile, bool) {
	profile, ok := ctx.Value(ContextKeyUser).(*users.Profile)
	return profile, ok && profile != nil
}
