package client

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionExpired is returned when the refresh token could not be
	// exchanged. The caller has to log in again.
	ErrSessionExpired = errors.New("session expired")
	ErrNoAccessToken  = errors.New("refresh did not return an access token")
)

// APIError is a non-2xx response decoded from the server's JSON error body.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"error"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("api error: status %d: %s", e.StatusCode, e.Message)
}
