// Package client is the Go counterpart of the browser session handling: it
// attaches the access token to requests and, when the server answers 401,
// refreshes it through the refresh cookie with at most one refresh in flight.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/net/publicsuffix"
)

const (
	DefaultRefreshTimeout = 10 * time.Second

	pathRegister = "register"
	pathLogin    = "login"
	pathRefresh  = "refresh"
	pathMe       = "me"
	// The refresh cookie is scoped to the refresh path, so logout goes
	// through the alias beneath it.
	pathLogout = "refresh/logout"
)

// SessionController owns one user's session against the auth API.
type SessionController struct {
	baseURL          *url.URL
	http             *http.Client
	jar              http.CookieJar
	tokens           TokenStore
	refreshTimeout   time.Duration
	onSessionExpired func()
	logger           zerolog.Logger

	mu       sync.Mutex
	inflight *refreshCall
}

// refreshCall is shared by every request that hit a 401 while it was running.
type refreshCall struct {
	done  chan struct{}
	token string
	err   error
}

type Option func(*SessionController)

// WithHTTPClient uses hc for all requests. A cookie jar is added if hc has none.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *SessionController) {
		clone := *hc
		c.http = &clone
	}
}

// WithCookieJar replaces the in-memory jar that holds the refresh cookie, for
// example with a FileCookieJar.
func WithCookieJar(jar http.CookieJar) Option {
	return func(c *SessionController) {
		c.jar = jar
	}
}

func WithTokenStore(store TokenStore) Option {
	return func(c *SessionController) {
		c.tokens = store
	}
}

func WithRefreshTimeout(d time.Duration) Option {
	return func(c *SessionController) {
		if d > 0 {
			c.refreshTimeout = d
		}
	}
}

// WithOnSessionExpired is called once per failed refresh, after the stored
// token has been cleared.
func WithOnSessionExpired(f func()) Option {
	return func(c *SessionController) {
		c.onSessionExpired = f
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *SessionController) {
		c.logger = logger
	}
}

// New creates a controller for the API mounted at baseURL, for example
// "http://localhost:5000/api/auth".
func New(baseURL string, opts ...Option) (*SessionController, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base url %q: scheme and host are required", baseURL)
	}

	c := &SessionController{
		baseURL:        u,
		http:           &http.Client{Timeout: 30 * time.Second},
		tokens:         NewMemoryTokenStore(),
		refreshTimeout: DefaultRefreshTimeout,
		logger:         zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	switch {
	case c.jar != nil:
		c.http.Jar = c.jar
	case c.http.Jar == nil:
		jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, fmt.Errorf("failed to create cookie jar: %w", err)
		}
		c.http.Jar = jar
	}
	return c, nil
}

// Tokens exposes the token store, mainly so callers can check for a session.
func (c *SessionController) Tokens() TokenStore {
	return c.tokens
}

// Do sends req with the current access token. On a 401 it waits for (or
// starts) the single in-flight refresh and retries once with the new token.
// A second 401 is returned to the caller as is. If the refresh fails the
// error wraps ErrSessionExpired.
func (c *SessionController) Do(req *http.Request) (*http.Response, error) {
	if err := bufferBody(req); err != nil {
		return nil, err
	}

	sentWith := c.tokens.Get()
	resp, err := c.send(req, sentWith)
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}
	drain(resp)

	token, err := c.refreshAfter(req.Context(), sentWith)
	if err != nil {
		return nil, err
	}
	return c.send(req, token)
}

// refreshAfter returns an access token newer than stale. If another request
// already replaced stale, that token is returned without a refresh.
func (c *SessionController) refreshAfter(ctx context.Context, stale string) (string, error) {
	c.mu.Lock()
	current := c.tokens.Get()
	switch {
	case current != "" && current != stale:
		c.mu.Unlock()
		return current, nil
	case current == "" && stale != "" && c.inflight == nil:
		// Cleared by a failed refresh or a logout since this request was sent.
		c.mu.Unlock()
		return "", ErrSessionExpired
	}

	call := c.inflight
	if call == nil {
		call = &refreshCall{done: make(chan struct{})}
		c.inflight = call
		go c.runRefresh(call)
	}
	c.mu.Unlock()

	select {
	case <-call.done:
		return call.token, call.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (c *SessionController) runRefresh(call *refreshCall) {
	// Detached from the callers' contexts: one waiter giving up must not fail
	// the refresh for the others.
	ctx, cancel := context.WithTimeout(context.Background(), c.refreshTimeout)
	defer cancel()

	token, err := c.refresh(ctx)

	c.mu.Lock()
	if err == nil {
		if serr := c.tokens.Set(token); serr != nil {
			c.logger.Warn().Err(serr).Msg("failed to store access token")
		}
	} else if cerr := c.tokens.Clear(); cerr != nil {
		c.logger.Warn().Err(cerr).Msg("failed to clear access token")
	}
	c.inflight = nil
	c.mu.Unlock()

	if err != nil {
		c.logger.Debug().Err(err).Msg("session refresh failed")
		if c.onSessionExpired != nil {
			c.onSessionExpired()
		}
	} else {
		c.logger.Debug().Msg("access token refreshed")
	}

	// Waiters resume only after the hook has run.
	call.token, call.err = token, err
	close(call.done)
}

func (c *SessionController) refresh(ctx context.Context) (string, error) {
	req, err := c.newRequest(ctx, http.MethodPost, pathRefresh, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSessionExpired, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSessionExpired, err)
	}

	var body struct {
		AccessToken string `json:"accessToken"`
	}
	if err := decodeResponse(resp, &body); err != nil {
		return "", fmt.Errorf("%w: %w", ErrSessionExpired, err)
	}
	if body.AccessToken == "" {
		return "", fmt.Errorf("%w: %w", ErrSessionExpired, ErrNoAccessToken)
	}
	return body.AccessToken, nil
}

func (c *SessionController) send(req *http.Request, token string) (*http.Response, error) {
	r := req.Clone(req.Context())
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		r.Body = body
	}
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	} else {
		r.Header.Del("Authorization")
	}
	return c.http.Do(r)
}

func (c *SessionController) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.JoinPath(path).String(), reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// bufferBody makes req replayable for the retry.
func bufferBody(req *http.Request) error {
	if req.Body == nil || req.Body == http.NoBody || req.GetBody != nil {
		return nil
	}
	b, err := io.ReadAll(req.Body)
	_ = req.Body.Close()
	if err != nil {
		return fmt.Errorf("failed to buffer request body: %w", err)
	}
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(b)), nil
	}
	req.Body, _ = req.GetBody()
	return nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
}

// decodeResponse closes resp. Non-2xx responses become *APIError.
func decodeResponse(resp *http.Response, v any) error {
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(apiErr)
		return apiErr
	}
	if v == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
