package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/net/publicsuffix"
)

type savedCookie struct {
	URL    string       `json:"url"`
	Cookie *http.Cookie `json:"cookie"`
}

// FileCookieJar is an http.CookieJar that writes every cookie it is given to
// a file and restores them on the next run, so the refresh cookie outlives
// the process the way it outlives a browser tab.
type FileCookieJar struct {
	jar     *cookiejar.Jar
	path    string
	nowFunc func() time.Time

	mu    sync.Mutex
	saved map[string]savedCookie
}

var _ http.CookieJar = (*FileCookieJar)(nil)

// NewFileCookieJar loads path if it exists. Expired cookies are dropped.
func NewFileCookieJar(path string) (*FileCookieJar, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	j := &FileCookieJar{
		jar:     jar,
		path:    path,
		nowFunc: time.Now,
		saved:   make(map[string]savedCookie),
	}
	if err := j.load(); err != nil {
		return nil, err
	}
	return j, nil
}

func (j *FileCookieJar) Cookies(u *url.URL) []*http.Cookie {
	return j.jar.Cookies(u)
}

func (j *FileCookieJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.jar.SetCookies(u, cookies)

	j.mu.Lock()
	defer j.mu.Unlock()

	now := j.nowFunc()
	origin := (&url.URL{Scheme: u.Scheme, Host: u.Host}).String()
	for _, c := range cookies {
		stored := *c
		if stored.Path == "" {
			stored.Path = defaultCookiePath(u.Path)
		}
		key := cookieKey(u.Host, &stored)
		if c.MaxAge < 0 || (!c.Expires.IsZero() && !c.Expires.After(now)) {
			delete(j.saved, key)
			continue
		}
		if stored.MaxAge > 0 {
			stored.Expires = now.Add(time.Duration(stored.MaxAge) * time.Second)
			stored.MaxAge = 0
		}
		stored.Raw = ""
		j.saved[key] = savedCookie{URL: origin, Cookie: &stored}
	}

	if err := j.save(); err != nil {
		log.Warn().Err(err).Str("path", j.path).Msg("failed to persist cookies")
	}
}

func (j *FileCookieJar) load() error {
	b, err := os.ReadFile(j.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read cookie file: %w", err)
	}

	var entries []savedCookie
	if err := json.Unmarshal(b, &entries); err != nil {
		return fmt.Errorf("failed to parse cookie file %s: %w", j.path, err)
	}

	now := j.nowFunc()
	for _, e := range entries {
		if e.Cookie == nil {
			continue
		}
		if !e.Cookie.Expires.IsZero() && !e.Cookie.Expires.After(now) {
			continue
		}
		u, err := url.Parse(e.URL)
		if err != nil {
			continue
		}
		j.jar.SetCookies(u, []*http.Cookie{e.Cookie})
		j.saved[cookieKey(u.Host, e.Cookie)] = e
	}
	return nil
}

// save is called with j.mu held.
func (j *FileCookieJar) save() error {
	entries := make([]savedCookie, 0, len(j.saved))
	for _, e := range j.saved {
		entries = append(entries, e)
	}
	b, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(j.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(j.path, b, 0o600)
}

func cookieKey(host string, c *http.Cookie) string {
	return host + "|" + c.Domain + "|" + c.Path + "|" + c.Name
}

// defaultCookiePath follows RFC 6265 section 5.1.4.
func defaultCookiePath(requestPath string) string {
	if requestPath == "" || requestPath[0] != '/' {
		return "/"
	}
	i := len(requestPath) - 1
	for i > 0 && requestPath[i] != '/' {
		i--
	}
	if i == 0 {
		return "/"
	}
	return requestPath[:i]
}
