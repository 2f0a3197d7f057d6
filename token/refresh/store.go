// Package refresh keeps refresh tokens hashed at rest and rotates them.
package refresh

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"

	apperrors "github.com/jrsteele09/go-token-auth/internal/errors"
	"github.com/pkg/errors"
)

// Digest returns the hex SHA-256 of a refresh token.
func Digest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Store handles refresh token persistence, matching and rotation.
type Store struct {
	repo DigestRepo
}

func NewStore(repo DigestRepo) *Store {
	return &Store{repo: repo}
}

// Save overwrites whatever digest the user had, so older tokens stop matching.
func (s *Store) Save(ctx context.Context, userID, token string) error {
	if err := s.repo.SetDigest(ctx, userID, Digest(token)); err != nil {
		return errors.Wrap(err, "failed to store refresh token digest")
	}
	return nil
}

func (s *Store) Clear(ctx context.Context, userID string) error {
	if err := s.repo.ClearDigest(ctx, userID); err != nil {
		return errors.Wrap(err, "failed to clear refresh token digest")
	}
	return nil
}

// Matches reports whether token is the user's current refresh token. The
// refresh protocol does not call it: Rotate performs the same check inside its swap.
func (s *Store) Matches(ctx context.Context, userID, token string) (bool, error) {
	stored, err := s.repo.GetDigest(ctx, userID)
	if err != nil {
		return false, errors.Wrap(err, "failed to read refresh token digest")
	}
	if stored == nil {
		return false, nil
	}
	presented := Digest(token)
	return subtle.ConstantTimeCompare([]byte(*stored), []byte(presented)) == 1, nil
}

// Rotate replaces presented with next in a single compare-and-swap. When two
// rotations race on the same token only one succeeds; the other, and any
// presented token that is not current, gets errors.ErrTokenRevoked.
func (s *Store) Rotate(ctx context.Context, userID, presented, next string) error {
	ok, err := s.repo.SwapDigest(ctx, userID, Digest(presented), Digest(next))
	if err != nil {
		return errors.Wrap(err, "failed to rotate refresh token digest")
	}
	if !ok {
		return apperrors.ErrTokenRevoked
	}
	return nil
}
