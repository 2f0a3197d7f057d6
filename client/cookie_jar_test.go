package client_test

import (
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jrsteele09/go-token-auth/client"
	"github.com/stretchr/testify/require"
)

func mustParseURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestFileCookieJar_PersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "cookies.json")
	refreshURL := mustParseURL(t, "http://127.0.0.1:5000/api/auth/refresh")
	meURL := mustParseURL(t, "http://127.0.0.1:5000/api/auth/me")

	jar, err := client.NewFileCookieJar(path)
	require.NoError(t, err)
	jar.SetCookies(refreshURL, []*http.Cookie{{
		Name:     "refreshToken",
		Value:    "r1",
		Path:     "/api/auth/refresh",
		HttpOnly: true,
		MaxAge:   3600,
	}})
	require.Len(t, jar.Cookies(refreshURL), 1)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	reloaded, err := client.NewFileCookieJar(path)
	require.NoError(t, err)
	cookies := reloaded.Cookies(refreshURL)
	require.Len(t, cookies, 1)
	require.Equal(t, "refreshToken", cookies[0].Name)
	require.Equal(t, "r1", cookies[0].Value)
	require.Empty(t, reloaded.Cookies(meURL), "the cookie path still applies after a reload")

	// A replacement overwrites the saved value.
	reloaded.SetCookies(refreshURL, []*http.Cookie{{Name: "refreshToken", Value: "r2", Path: "/api/auth/refresh", MaxAge: 3600}})
	again, err := client.NewFileCookieJar(path)
	require.NoError(t, err)
	require.Equal(t, "r2", again.Cookies(refreshURL)[0].Value)
}

func TestFileCookieJar_ClearedCookieIsForgotten(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.json")
	u := mustParseURL(t, "http://127.0.0.1:5000/api/auth/refresh/logout")

	jar, err := client.NewFileCookieJar(path)
	require.NoError(t, err)
	jar.SetCookies(u, []*http.Cookie{{Name: "refreshToken", Value: "r1", Path: "/api/auth/refresh", MaxAge: 3600}})
	jar.SetCookies(u, []*http.Cookie{{Name: "refreshToken", Path: "/api/auth/refresh", MaxAge: -1, Expires: time.Unix(0, 0)}})
	require.Empty(t, jar.Cookies(u))

	reloaded, err := client.NewFileCookieJar(path)
	require.NoError(t, err)
	require.Empty(t, reloaded.Cookies(u))
}

func TestFileCookieJar_SkipsExpiredOnLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.json")
	content := `[{"url":"http://127.0.0.1:5000","cookie":{"Name":"refreshToken","Value":"old","Path":"/","Expires":"2001-01-01T00:00:00Z"}}]`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	jar, err := client.NewFileCookieJar(path)
	require.NoError(t, err)
	require.Empty(t, jar.Cookies(mustParseURL(t, "http://127.0.0.1:5000/")))
}

func TestFileCookieJar_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := client.NewFileCookieJar(path)
	require.Error(t, err)
}
