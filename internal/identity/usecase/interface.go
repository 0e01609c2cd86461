// Package usecase implements the identity business logic shared by the rider
// and captain domains. One implementation is instantiated per domain; the
// repository it is wired with determines which namespace it operates on.
package usecase

import (
	"context"

	"github.com/google/uuid"

	"github.com/openride/openride/internal/identity/domain"
)

// IdentityRepository defines persistence operations for identity records.
// Implementations must support transaction-aware operations via context propagation.
type IdentityRepository interface {
	// Create stores a new identity. Returns ErrEmailAlreadyExists when the
	// email is taken within the repository's domain.
	Create(ctx context.Context, identity *domain.Identity) error

	// GetByID retrieves an identity by ID. Returns ErrIdentityNotFound if not found.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Identity, error)

	// GetByEmail retrieves an identity by email. Returns ErrIdentityNotFound if not found.
	GetByEmail(ctx context.Context, email string) (*domain.Identity, error)
}

// IdentityUseCase defines business logic operations for identity records.
type IdentityUseCase interface {
	// Register validates the input, hashes the password, and stores a new
	// identity. Returns ErrInvalidInput with field details on validation
	// failure and ErrEmailAlreadyExists on a duplicate email.
	Register(ctx context.Context, input *domain.RegisterInput) (*domain.Identity, error)

	// Authenticate verifies an email and password pair.
	//
	// Unknown email and wrong password produce the same ErrInvalidCredentials,
	// so the caller's response cannot be used for account enumeration.
	Authenticate(ctx context.Context, input *domain.LoginInput) (*domain.Identity, error)

	// GetByID retrieves an identity by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Identity, error)
}
