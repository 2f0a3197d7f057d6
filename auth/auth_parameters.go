package auth

import (
	"strings"

	"github.com/jrsteele09/go-token-auth/users"
)

// RegisterRequest is the body of POST /register.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Normalize trims the name and normalises the email in place.
func (r *RegisterRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = users.NormalizeEmail(r.Email)
}

// LoginRequest is the body of POST /login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Session is the outcome of a successful register, login or refresh. The
// refresh token travels back to the browser in a cookie only.
type Session struct {
	User         *users.Profile
	AccessToken  string
	RefreshToken string
}
