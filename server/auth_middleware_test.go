package server_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jrsteele09/go-token-auth/server"
	"github.com/jrsteele09/go-token-auth/token"
	"github.com/jrsteele09/go-token-auth/token/jwt"
	"github.com/jrsteele09/go-token-auth/users"
	"github.com/stretchr/testify/require"
)

func TestRequireAuth_Rejects(t *testing.T) {
	f := setupTestFixture(t)
	registered, _ := f.register(t)

	wrongSecret, err := jwt.NewIssuer(token.NewHMACSigner("some-other-secret-0123456789abcdef"), token.NewHMACSigner(refreshSecret)).
		IssueAccess(registered.ID)
	require.NoError(t, err)

	expired, err := jwt.NewIssuer(token.NewHMACSigner(accessSecret), token.NewHMACSigner(refreshSecret),
		jwt.WithNowFunc(func() time.Time { return time.Now().Add(-time.Hour) })).
		IssueAccess(registered.ID)
	require.NoError(t, err)

	refreshAsAccess, err := f.issuer.IssueRefresh(registered.ID)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		code   string
	}{
		{"missing header", "", "missing_token"},
		{"wrong scheme", "Basic " + registered.AccessToken, "missing_token"},
		{"no token", "Bearer ", "missing_token"},
		{"scheme only", "Bearer", "missing_token"},
		{"malformed token", "Bearer not.a.jwt", "invalid_token"},
		{"wrong secret", "Bearer " + wrongSecret, "invalid_token"},
		{"expired", "Bearer " + expired, "invalid_token"},
		{"refresh token", "Bearer " + refreshAsAccess, "invalid_token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, http.MethodGet, server.RouteMe, nil, func(r *http.Request) {
				if tt.header != "" {
					r.Header.Set("Authorization", tt.header)
				}
			})
			require.Equal(t, http.StatusUnauthorized, rec.Code)
			require.Equal(t, tt.code, decodeError(t, rec).Error)
		})
	}
}

func TestRequireAuth_SchemeCaseInsensitive(t *testing.T) {
	f := setupTestFixture(t)
	registered, _ := f.register(t)

	rec := f.do(t, http.MethodGet, server.RouteMe, nil, func(r *http.Request) {
		r.Header.Set("Authorization", "bearer "+registered.AccessToken)
	})
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAuth_UserDeleted(t *testing.T) {
	f := setupTestFixture(t)
	registered, _ := f.register(t)
	require.NoError(t, f.userRepo.Delete(context.Background(), registered.ID))

	rec := f.do(t, http.MethodGet, server.RouteMe, nil, withBearer(registered.AccessToken))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "user_not_found", decodeError(t, rec).Error)
}

func TestRequireAuth_AttachesProfile(t *testing.T) {
	f := setupTestFixture(t)
	registered, _ := f.register(t)

	var seen *users.Profile
	handler := server.ChainMiddleware(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = server.UserFromContext(r.Context())
	}, f.server.RequireAuth())

	req := httptest.NewRequest(http.MethodGet, "/anything", nil)
	req.Header.Set("Authorization", "Bearer "+registered.AccessToken)
	handler(httptest.NewRecorder(), req)

	require.NotNil(t, seen)
	require.Equal(t, registered.ID, seen.ID)
}

func TestUserFromContext_Empty(t *testing.T) {
	_, ok := server.UserFromContext(context.Background())
	require.False(t, ok)

	ctx := server.WithUser(context.Background(), &users.Profile{ID: "u1"})
	profile, ok := server.UserFromContext(ctx)
	require.True(t, ok)
	require.Equal(t, "u1", profile.ID)
}
