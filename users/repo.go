package users

import "context"

// UserRepo persists user records keyed by id. Implementations return
// errors.ErrUserNotFound for unknown users and errors.ErrDuplicateEmail when
// a create collides on the (case-insensitive) email.
type UserRepo interface {
	Create(ctx context.Context, user *User) error
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	List(ctx context.Context, offset, limit int) ([]*User, error)

	// SetRefreshTokenDigest overwrites the stored digest; nil clears it.
	SetRefreshTokenDigest(ctx context.Context, id string, digest *string) error
	// SwapRefreshTokenDigest replaces the digest with next only if it still equals old.
	// It reports false when another writer got there first.
	SwapRefreshTokenDigest(ctx context.Context, id, old, next string) (bool, error)
}
