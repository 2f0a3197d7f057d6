package refresh

import (
	"context"

	"github.com/jrsteele09/go-token-auth/internal/utils"
	"github.com/jrsteele09/go-token-auth/users"
)

// UserDigestRepo keeps the digest on the user record itself.
type UserDigestRepo struct {
	users users.UserRepo
}

var _ DigestRepo = (*UserDigestRepo)(nil)

func NewUserDigestRepo(repo users.UserRepo) *UserDigestRepo {
	return &UserDigestRepo{users: repo}
}

func (r *UserDigestRepo) GetDigest(ctx context.Context, userID string) (*string, error) {
	u, err := r.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !u.HasActiveSession() {
		return nil, nil
	}
	return utils.Copy(u.RefreshTokenDigest), nil
}

func (r *UserDigestRepo) SetDigest(ctx context.Context, userID, digest string) error {
	return r.users.SetRefreshTokenDigest(ctx, userID, utils.Ptr(digest))
}

func (r *UserDigestRepo) ClearDigest(ctx context.Context, userID string) error {
	return r.users.SetRefreshTokenDigest(ctx, userID, nil)
}

func (r *UserDigestRepo) SwapDigest(ctx context.Context, userID, old, next string) (bool, error) {
	return r.users.SwapRefreshTokenDigest(ctx, userID, old, next)
}
