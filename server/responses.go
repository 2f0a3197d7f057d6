package server

import (
	"encoding/json"
	"errors"
	"net/http"

	apperrors "github.com/jrsteele09/go-token-auth/internal/errors"
	"github.com/rs/zerolog/hlog"
)

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type errorKind struct {
	err    error
	status int
	code   string
}

// Checked in order: an error wrapping several kinds reports the first match.
var errorKinds = []errorKind{
	{apperrors.ErrInvalidInput, http.StatusBadRequest, "invalid_input"},
	{apperrors.ErrDuplicateEmail, http.StatusConflict, "duplicate_email"},
	{apperrors.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
	{apperrors.ErrNoToken, http.StatusUnauthorized, "no_token"},
	{apperrors.ErrMissingToken, http.StatusUnauthorized, "missing_token"},
	{apperrors.ErrInvalidOrExpiredToken, http.StatusUnauthorized, "invalid_token"},
	{apperrors.ErrInvalidSignature, http.StatusUnauthorized, "invalid_signature"},
	{apperrors.ErrExpired, http.StatusUnauthorized, "token_expired"},
	{apperrors.ErrTokenRevoked, http.StatusUnauthorized, "token_revoked"},
	{apperrors.ErrUserNotFound, http.StatusUnauthorized, "user_not_found"},
	{apperrors.ErrNotFound, http.StatusNotFound, "not_found"},
	{apperrors.ErrMethodNotAllowed, http.StatusMethodNotAllowed, "method_not_allowed"},
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err onto a status code and a short message. Unknown errors
// become a 500 with a generic message and are logged.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	for _, k := range errorKinds {
		if !errors.Is(err, k.err) {
			continue
		}
		msg := k.err.Error()
		if k.err == apperrors.ErrInvalidInput {
			msg = err.Error()
		}
		writeJSON(w, k.status, ErrorResponse{Error: k.code, Message: msg})
		return
	}

	hlog.FromRequest(r).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "internal server error",
	})
}
