package refresh

import "context"

// DigestRepo persists the digest of the single refresh token that is valid
// for a user. Only digests are stored, never the tokens themselves.
type DigestRepo interface {
	// GetDigest returns nil when the user has no active refresh token.
	GetDigest(ctx context.Context, userID string) (*string, error)
	SetDigest(ctx context.Context, userID, digest string) error
	ClearDigest(ctx context.Context, userID string) error
	// SwapDigest replaces old with next atomically and reports whether it won.
	SwapDigest(ctx context.Context, userID, old, next string) (bool, error)
}
