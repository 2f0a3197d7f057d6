// Package seed loads the sample accounts used for local development.
package seed

import (
	"context"
	"fmt"

	"github.com/jrsteele09/go-token-auth/users"
)

// SamplePassword is shared by every sample account.
const SamplePassword = "123456"

type sampleUser struct {
	Name  string
	Email string
}

var sampleUsers = []sampleUser{
	{Name: "Test User", Email: "test@example.com"},
	{Name: "Second User", Email: "second@example.com"},
}

// Import replaces every user in repo with the sample accounts.
func Import(ctx context.Context, repo users.UserRepo) ([]*users.User, error) {
	if err := repo.DeleteAll(ctx); err != nil {
		return nil, fmt.Errorf("[seed.Import] delete users: %w", err)
	}

	hash, err := users.HashPassword(SamplePassword)
	if err != nil {
		return nil, fmt.Errorf("[seed.Import] hash password: %w", err)
	}

	created := make([]*users.User, 0, len(sampleUsers))
	for _, s := range sampleUsers {
		u := &users.User{
			Name:         s.Name,
			Email:        s.Email,
			PasswordHash: hash,
		}
		if err := repo.Create(ctx, u); err != nil {
			return nil, fmt.Errorf("[seed.Import] create %s: %w", s.Email, err)
		}
		created = append(created, u)
	}
	return created, nil
}

// Destroy removes every user.
func Destroy(ctx context.Context, repo users.UserRepo) error {
	if err := repo.DeleteAll(ctx); err != nil {
		return fmt.Errorf("[seed.Destroy] delete users: %w", err)
	}
	return nil
}
