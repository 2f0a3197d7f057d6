package client

import (
	"context"
	"net/http"
	"time"
)

// User is the public profile returned by the API.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

type sessionResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	AccessToken string `json:"accessToken"`
}

// Register creates an account and starts a session.
func (c *SessionController) Register(ctx context.Context, name, email, password string) (*User, error) {
	return c.startSession(ctx, pathRegister, map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	})
}

func (c *SessionController) Login(ctx context.Context, email, password string) (*User, error) {
	return c.startSession(ctx, pathLogin, map[string]string{
		"email":    email,
		"password": password,
	})
}

// Me fetches the caller's profile, refreshing the session if needed.
func (c *SessionController) Me(ctx context.Context) (*User, error) {
	req, err := c.newRequest(ctx, http.MethodGet, pathMe, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.Do(req)
	if err != nil {
		return nil, err
	}

	var user User
	if err := decodeResponse(resp, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Logout revokes the refresh token on the server and forgets the access
// token. The local token is cleared even when the call fails.
func (c *SessionController) Logout(ctx context.Context) error {
	defer func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if err := c.tokens.Clear(); err != nil {
			c.logger.Warn().Err(err).Msg("failed to clear access token")
		}
	}()

	req, err := c.newRequest(ctx, http.MethodPost, pathLogout, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	return decodeResponse(resp, nil)
}

// startSession posts credentials without the refresh-on-401 logic: a 401
// here means bad credentials, not an expired token.
func (c *SessionController) startSession(ctx context.Context, path string, body any) (*User, error) {
	req, err := c.newRequest(ctx, http.MethodPost, path, body)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}

	var session sessionResponse
	if err := decodeResponse(resp, &session); err != nil {
		return nil, err
	}

	c.mu.Lock()
	err = c.tokens.Set(session.AccessToken)
	c.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return &User{ID: session.ID, Name: session.Name, Email: session.Email}, nil
}
