package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/jrsteele09/go-token-auth/auth"
	apperrors "github.com/jrsteele09/go-token-auth/internal/errors"
	"github.com/jrsteele09/go-token-auth/users"
	"github.com/rs/zerolog/hlog"
)

const maxBodyBytes = 1 << 20

// SessionResponse is returned by register and login.
type SessionResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	AccessToken string `json:"accessToken"`
}

type AccessTokenResponse struct {
	AccessToken string `json:"accessToken"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type PrivateResponse struct {
	Message string         `json:"message"`
	User    *users.Profile `json:"user"`
}

// IndexHandler answers the bare liveness probe at "/".
func (s *Server) IndexHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("API running"))
	}
}

// HealthHandler runs every registered HealthCheck.
func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		checks := make(map[string]string, len(s.healthChecks))
		for name, check := range s.healthChecks {
			if err := check(ctx); err != nil {
				hlog.FromRequest(r).Warn().Err(err).Str("check", name).Msg("health check failed")
				checks[name] = "unavailable"
				status = http.StatusServiceUnavailable
				continue
			}
			checks[name] = "ok"
		}

		body := map[string]any{"status": "ok", "checks": checks}
		if status != http.StatusOK {
			body["status"] = "unavailable"
		}
		writeJSON(w, status, body)
	}
}

func (s *Server) RegisterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req auth.RegisterRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err)
			return
		}

		session, err := s.auth.Register(r.Context(), req)
		if err != nil {
			writeError(w, r, err)
			return
		}
		s.writeSession(w, http.StatusCreated, session)
	}
}

func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req auth.LoginRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		if req.Email == "" || req.Password == "" {
			writeError(w, r, fmt.Errorf("%w: email and password are required", apperrors.ErrInvalidInput))
			return
		}

		session, err := s.auth.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			writeError(w, r, err)
			return
		}
		s.writeSession(w, http.StatusOK, session)
	}
}

// RefreshHandler rotates the refresh cookie and returns a new access token.
func (s *Server) RefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := s.auth.Refresh(r.Context(), s.refreshCookie(r))
		if err != nil {
			hlog.FromRequest(r).Debug().Err(err).Msg("refresh rejected")
			writeError(w, r, err)
			return
		}
		s.setRefreshCookie(w, session.RefreshToken)
		writeJSON(w, http.StatusOK, AccessTokenResponse{AccessToken: session.AccessToken})
	}
}

// LogoutHandler always succeeds and always clears the refresh cookie.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.auth.Logout(r.Context(), s.refreshCookie(r))
		s.clearRefreshCookie(w)
		writeJSON(w, http.StatusOK, MessageResponse{Message: "Logged out"})
	}
}

func (s *Server) MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok {
			writeError(w, r, apperrors.ErrMissingToken)
			return
		}

		profile, err := s.auth.Profile(r.Context(), user.ID)
		if err != nil {
			if apperrors.Is(err, apperrors.ErrUserNotFound) {
				writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "not_found", Message: err.Error()})
				return
			}
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, profile)
	}
}

func (s *Server) PrivateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok {
			writeError(w, r, apperrors.ErrMissingToken)
			return
		}
		writeJSON(w, http.StatusOK, PrivateResponse{
			Message: "You accessed a protected route!",
			User:    user,
		})
	}
}

func (s *Server) writeSession(w http.ResponseWriter, status int, session *auth.Session) {
	s.setRefreshCookie(w, session.RefreshToken)
	writeJSON(w, status, SessionResponse{
		ID:          session.User.ID,
		Name:        session.User.Name,
		Email:       session.User.Email,
		AccessToken: session.AccessToken,
	})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: malformed JSON body", apperrors.ErrInvalidInput)
	}
	return nil
}
