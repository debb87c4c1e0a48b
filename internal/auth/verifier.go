package auth

import (
	"context"
	"crypto/subtle"
	"errors"

	repo "github.com/taskhub/taskhub-backend/internal/repository"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// CredentialVerifier checks a username/password pair. The transport layer
// depends on this interface only, so the backing store is swappable.
type CredentialVerifier interface {
	Verify(ctx context.Context, username, password string) error
}

// RepoVerifier checks credentials against the user store.
type RepoVerifier struct{ users repo.Users }

func NewRepoVerifier(users repo.Users) *RepoVerifier { return &RepoVerifier{users: users} }

func (v *RepoVerifier) Verify(ctx context.Context, username, password string) error {
	u, err := v.users.GetByUsername(ctx, username)
	if err != nil {
		// Burn a hash comparison anyway so unknown usernames cost the
		// same as wrong passwords.
		_ = VerifyPassword(password, "$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5B0G1n1vZLC8a3kSC1vFZxYyo0l6y")
		return ErrInvalidCredentials
	}
	if VerifyPassword(password, u.PasswordHash) != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// StaticVerifier holds fixed plaintext credentials, for bootstrapping and
// tests.
type StaticVerifier struct{ creds map[string]string }

func NewStaticVerifier(creds map[string]string) *StaticVerifier {
	c := make(map[string]string, len(creds))
	for k, v := range creds {
		c[k] = v
	}
	return &StaticVerifier{creds: c}
}

func (v *StaticVerifier) Verify(_ context.Context, username, password string) error {
	want, ok := v.creds[username]
	if !ok {
		return ErrInvalidCredentials
	}
	if subtle.ConstantTimeCompare([]byte(want), []byte(password)) != 1 {
		return ErrInvalidCredentials
	}
	return nil
}

// Chain tries verifiers in order; the first success wins.
type Chain []CredentialVerifier

func (c Chain) Verify(ctx context.Context, username, password string) error {
	for _, v := range c {
		if err := v.Verify(ctx, username, password); err == nil {
			return nil
		}
	}
	return ErrInvalidCredentials
}
