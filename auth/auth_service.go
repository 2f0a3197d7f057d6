// Package auth implements registration, login, refresh rotation and logout on
// top of the token issuer and the refresh digest store.
package auth

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	apperrors "github.com/jrsteele09/go-token-auth/internal/errors"
	"github.com/jrsteele09/go-token-auth/token/jwt"
	"github.com/jrsteele09/go-token-auth/token/refresh"
	"github.com/jrsteele09/go-token-auth/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// dummyPasswordHash is compared against when a login names an unknown email,
// so both failure paths cost one bcrypt comparison.
var dummyPasswordHash = sync.OnceValue(func() string {
	hash, err := users.HashPassword("not-a-real-password-8Xk2")
	if err != nil {
		log.Err(err).Msg("failed to prepare dummy password hash")
	}
	return hash
})

// Service provides the register/login/refresh/logout protocol.
type Service struct {
	users   users.UserRepo
	issuer  *jwt.Issuer
	refresh *refresh.Store
	metrics *Metrics
	nowTime func() time.Time
}

// ServiceOption defines a function type to modify the Service instance.
type ServiceOption func(*Service)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ServiceOption {
	return func(s *Service) {
		s.nowTime = nowFunc
	}
}

func WithMetrics(m *Metrics) ServiceOption {
	return func(s *Service) {
		s.metrics = m
	}
}

func NewService(userRepo users.UserRepo, issuer *jwt.Issuer, refreshStore *refresh.Store, options ...ServiceOption) (*Service, error) {
	if userRepo == nil {
		return nil, errors.New("[NewService] Users repo is required")
	}
	if issuer == nil {
		return nil, errors.New("[NewService] token issuer is required")
	}
	if refreshStore == nil {
		return nil, errors.New("[NewService] refresh store is required")
	}

	s := &Service{
		users:   userRepo,
		issuer:  issuer,
		refresh: refreshStore,
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = NewMetrics(nil)
	}
	return s, nil
}

// Register creates the user and starts their session.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (session *Session, err error) {
	defer func() { s.metrics.observe(opRegister, err) }()

	req.Normalize()
	if err := ValidateRegisterRequest(&req); err != nil {
		return nil, err
	}

	_, err = s.users.GetByEmail(ctx, req.Email)
	switch {
	case err == nil:
		return nil, apperrors.ErrDuplicateEmail
	case !apperrors.Is(err, apperrors.ErrUserNotFound):
		return nil, errors.Wrap(err, "[Service.Register] GetByEmail")
	}

	hash, err := users.HashPassword(req.Password)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.Register] HashPassword")
	}

	now := s.nowTime()
	user := &users.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if apperrors.Is(err, apperrors.ErrDuplicateEmail) {
			return nil, apperrors.ErrDuplicateEmail
		}
		return nil, errors.Wrap(err, "[Service.Register] Create")
	}

	session, err = s.startSession(ctx, user)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.Register] startSession")
	}
	log.Info().Str("user_id", user.ID).Msg("user registered")
	return session, nil
}

// Login verifies credentials. Unknown email and wrong password fail with the
// same error.
func (s *Service) Login(ctx context.Context, email, password string) (session *Session, err error) {
	defer func() { s.metrics.observe(opLogin, err) }()

	user, err := s.users.GetByEmail(ctx, users.NormalizeEmail(email))
	if err != nil {
		if !apperrors.Is(err, apperrors.ErrUserNotFound) {
			return nil, errors.Wrap(err, "[Service.Login] GetByEmail")
		}
		users.CheckPasswordHash(password, dummyPasswordHash())
		return nil, apperrors.ErrInvalidCredentials
	}
	if !user.CheckPassword(password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	session, err = s.startSession(ctx, user)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.Login] startSession")
	}
	log.Debug().Str("user_id", user.ID).Msg("user logged in")
	return session, nil
}

// Refresh exchanges a refresh token for a new access token and a new refresh
// token. The presented token stops working once this returns successfully.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (session *Session, err error) {
	defer func() { s.metrics.observe(opRefresh, err) }()

	if strings.TrimSpace(refreshToken) == "" {
		return nil, apperrors.ErrNoToken
	}
	claims, err := s.issuer.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, claims.SubjectID())
	if err != nil {
		if apperrors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, errors.Wrap(err, "[Service.Refresh] GetByID")
	}

	access, next, err := s.issuePair(user.ID)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.Refresh] issuePair")
	}
	if err := s.refresh.Rotate(ctx, user.ID, refreshToken, next); err != nil {
		if apperrors.Is(err, apperrors.ErrTokenRevoked) {
			return nil, apperrors.ErrTokenRevoked
		}
		return nil, errors.Wrap(err, "[Service.Refresh] Rotate")
	}

	return &Session{User: user.Profile(), AccessToken: access, RefreshToken: next}, nil
}

// Logout revokes the user's refresh token if the presented one is genuine.
// It never fails: the caller clears the cookie regardless.
func (s *Service) Logout(ctx context.Context, refreshToken string) {
	defer func() { s.metrics.observe(opLogout, nil) }()

	if strings.TrimSpace(refreshToken) == "" {
		return
	}
	claims, err := s.issuer.VerifyRefresh(refreshToken)
	if err != nil {
		log.Debug().Err(err).Msg("logout with unverifiable refresh token")
		return
	}
	if err := s.refresh.Clear(ctx, claims.SubjectID()); err != nil {
		if apperrors.Is(err, apperrors.ErrUserNotFound) {
			log.Debug().Str("user_id", claims.SubjectID()).Msg("logout for unknown user")
			return
		}
		log.Warn().Err(err).Str("user_id", claims.SubjectID()).Msg("failed to revoke refresh token on logout")
	}
}

// Profile returns the public record of userID.
func (s *Service) Profile(ctx context.Context, userID string) (*users.Profile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, errors.Wrap(err, "[Service.Profile] GetByID")
	}
	return user.Profile(), nil
}

// Authenticate resolves a bearer access token to the user it was issued to.
func (s *Service) Authenticate(ctx context.Context, accessToken string) (*users.Profile, error) {
	if strings.TrimSpace(accessToken) == "" {
		return nil, apperrors.ErrMissingToken
	}
	claims, err := s.issuer.VerifyAccess(accessToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrInvalidOrExpiredToken, err)
	}
	return s.Profile(ctx, claims.SubjectID())
}

func (s *Service) startSession(ctx context.Context, user *users.User) (*Session, error) {
	access, refreshToken, err := s.issuePair(user.ID)
	if err != nil {
		return nil, err
	}
	if err := s.refresh.Save(ctx, user.ID, refreshToken); err != nil {
		return nil, err
	}
	return &Session{User: user.Profile(), AccessToken: access, RefreshToken: refreshToken}, nil
}

func (s *Service) issuePair(userID string) (string, string, error) {
	access, err := s.issuer.IssueAccess(userID)
	if err != nil {
		return "", "", err
	}
	refreshToken, err := s.issuer.IssueRefresh(userID)
	if err != nil {
		return "", "", err
	}
	return access, refreshToken, nil
}
