// Package service provides credential hashing for identity records.
// Implements Argon2id password hashing with self-describing encoded hashes, so
// verification needs no parameters beyond the stored hash itself.
package service

import (
	"github.com/allisson/go-pwdhash"

	apperrors "github.com/openride/openride/internal/errors"
)

// PasswordService defines the one-way credential transform shared by both
// identity domains. Implementations hold no mutable state and are safe for
// concurrent use from many requests.
type PasswordService interface {
	// Hash transforms a plaintext password into a salted, self-describing hash.
	Hash(plainPassword string) (string, error)

	// Compare checks a plaintext password against a stored hash. A plain
	// mismatch returns (false, nil); an error is returned only when the stored
	// hash cannot be parsed (ErrCorruptCredential).
	Compare(plainPassword string, passwordHash string) (bool, error)
}

// passwordService implements PasswordService using Argon2id.
type passwordService struct {
	hasher *pwdhash.PasswordHasher
}

// Hash hashes a plain text password using Argon2id.
func (s *passwordService) Hash(plainPassword string) (string, error) {
	passwordHash, err := s.hasher.Hash([]byte(plainPassword))
	if err != nil {
		return "", apperrors.Wrap(err, "failed to hash password")
	}
	return passwordHash, nil
}

// Compare performs a constant-time comparison between a plain password and its hash.
func (s *passwordService) Compare(plainPassword string, passwordHash string) (bool, error) {
	ok, err := s.hasher.Verify([]byte(plainPassword), passwordHash)
	if err != nil {
		// Verify only errors on an unparseable stored hash, never on a mismatch.
		return false, apperrors.Wrap(apperrors.ErrCorruptCredential, err.Error())
	}
	return ok, nil
}

// NewPasswordService creates a new PasswordService instance using Argon2id hashing.
// Uses the Interactive policy, tuned for login-path latency under concurrent load.
func NewPasswordService() PasswordService {
	hasher, err := pwdhash.New(
		pwdhash.WithPolicy(pwdhash.PolicyInteractive),
	)
	if err != nil {
		// This should never happen with valid policy
		panic(err)
	}

	return &passwordService{
		hasher: hasher,
	}
}
