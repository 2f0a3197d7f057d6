package client_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jrsteele09/go-token-auth/client"
	"github.com/stretchr/testify/require"
)

const freshToken = "fresh-token"

// stubAPI accepts only freshToken and counts refresh calls.
type stubAPI struct {
	refreshCalls atomic.Int32
	got401       chan struct{}

	waitFor401s  int           // refresh answers after this many 401s were served
	refreshFails bool          // refresh answers 401
	always401    bool          // protected routes never accept a token
	refreshDelay chan struct{} // refresh blocks until closed, if set
	on401        func()
}

func newStubAPI(t *testing.T, api *stubAPI) *httptest.Server {
	t.Helper()
	api.got401 = make(chan struct{}, 100)

	mux := http.NewServeMux()
	protected := func(w http.ResponseWriter, r *http.Request) bool {
		if !api.always401 && r.Header.Get("Authorization") == "Bearer "+freshToken {
			return true
		}
		if api.on401 != nil {
			api.on401()
		}
		api.got401 <- struct{}{}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid_token","message":"not authorized, token failed"}`))
		return false
	}

	mux.HandleFunc("GET /api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		if !protected(w, r) {
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "u1", "name": "Jane", "email": "jane@example.com"})
	})
	mux.HandleFunc("POST /api/auth/echo", func(w http.ResponseWriter, r *http.Request) {
		if !protected(w, r) {
			return
		}
		_, _ = io.Copy(w, r.Body)
	})
	mux.HandleFunc("POST /api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		api.refreshCalls.Add(1)
		if api.refreshDelay != nil {
			<-api.refreshDelay
		}
		timeout := time.After(2 * time.Second)
		for i := 0; i < api.waitFor401s; i++ {
			select {
			case <-api.got401:
			case <-timeout:
			}
		}
		if api.refreshFails {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"token_revoked","message":"refresh token revoked"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"accessToken": freshToken})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newController(t *testing.T, srv *httptest.Server, token string, opts ...client.Option) (*client.SessionController, *client.MemoryTokenStore) {
	t.Helper()
	store := client.NewMemoryTokenStore()
	require.NoError(t, store.Set(token))

	opts = append([]client.Option{client.WithTokenStore(store)}, opts...)
	c, err := client.New(srv.URL+"/api/auth", opts...)
	require.NoError(t, err)
	return c, store
}

func TestNew_InvalidBaseURL(t *testing.T) {
	_, err := client.New("not a url")
	require.Error(t, err)
	_, err = client.New("/relative/only")
	require.Error(t, err)
}

func TestDo_PassesThroughNon401(t *testing.T) {
	api := &stubAPI{}
	srv := newStubAPI(t, api)
	c, _ := newController(t, srv, freshToken)

	user, err := c.Me(context.Background())
	require.NoError(t, err)
	require.Equal(t, "u1", user.ID)
	require.Equal(t, int32(0), api.refreshCalls.Load())
}

func TestDo_ConcurrentExpiredRequestsShareOneRefresh(t *testing.T) {
	const n = 5
	api := &stubAPI{waitFor401s: n}
	srv := newStubAPI(t, api)
	c, store := newController(t, srv, "expired-token")

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = c.Me(context.Background())
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	require.Equal(t, int32(1), api.refreshCalls.Load())
	require.Equal(t, freshToken, store.Get())
}

func TestDo_RefreshFailureExpiresSessionOnce(t *testing.T) {
	const n = 5
	api := &stubAPI{waitFor401s: n, refreshFails: true}
	srv := newStubAPI(t, api)

	var expired atomic.Int32
	c, store := newController(t, srv, "expired-token", client.WithOnSessionExpired(func() { expired.Add(1) }))

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = c.Me(context.Background())
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.ErrorIs(t, err, client.ErrSessionExpired)
	}
	require.Equal(t, int32(1), api.refreshCalls.Load())
	require.Equal(t, int32(1), expired.Load())
	require.Empty(t, store.Get())
}

func TestDo_RetriesOnlyOnce(t *testing.T) {
	api := &stubAPI{always401: true}
	srv := newStubAPI(t, api)
	c, _ := newController(t, srv, "expired-token")

	_, err := c.Me(context.Background())
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	require.Equal(t, "invalid_token", apiErr.Code)
	require.Equal(t, int32(1), api.refreshCalls.Load())
}

func TestDo_StaleTokenRetriesWithoutRefresh(t *testing.T) {
	api := &stubAPI{}
	srv := newStubAPI(t, api)
	c, store := newController(t, srv, "old-token")

	// Another request finished a refresh while this one was in flight.
	api.on401 = func() { _ = store.Set(freshToken) }

	user, err := c.Me(context.Background())
	require.NoError(t, err)
	require.Equal(t, "u1", user.ID)
	require.Equal(t, int32(0), api.refreshCalls.Load())
}

func TestDo_ReplaysBodyOnRetry(t *testing.T) {
	api := &stubAPI{}
	srv := newStubAPI(t, api)
	c, _ := newController(t, srv, "expired-token")

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/auth/echo", io.NopCloser(strings.NewReader("hello")))
	require.NoError(t, err)

	resp, err := c.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, "hello", string(body))
}

func TestDo_RefreshTimeout(t *testing.T) {
	release := make(chan struct{})
	api := &stubAPI{refreshDelay: release}
	srv := newStubAPI(t, api)
	t.Cleanup(func() { close(release) })

	var expired atomic.Int32
	c, store := newController(t, srv, "expired-token",
		client.WithRefreshTimeout(50*time.Millisecond),
		client.WithOnSessionExpired(func() { expired.Add(1) }))

	_, err := c.Me(context.Background())
	require.ErrorIs(t, err, client.ErrSessionExpired)
	require.Equal(t, int32(1), expired.Load())
	require.Empty(t, store.Get())
}

func TestDo_SessionClearedWhileInFlight(t *testing.T) {
	api := &stubAPI{}
	srv := newStubAPI(t, api)
	c, store := newController(t, srv, "old-token")

	api.on401 = func() { _ = store.Clear() }

	_, err := c.Me(context.Background())
	require.ErrorIs(t, err, client.ErrSessionExpired)
	require.Equal(t, int32(0), api.refreshCalls.Load())
}
