// Package domain defines the identity domain models shared by riders and captains.
//
// The service manages two structurally identical but fully independent identity
// namespaces: riders ("user") and drivers ("captain"). A single Identity shape is
// parameterized by a Domain tag; each domain persists to its own table, so a
// rider and a captain may register the same email without conflict and never
// share an identifier namespace.
package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/openride/openride/internal/errors"
)

// Domain tags the identity namespace a record belongs to.
type Domain string

const (
	// DomainUser is the rider identity namespace, served under /users.
	DomainUser Domain = "user"

	// DomainCaptain is the driver identity namespace, served under /captains.
	DomainCaptain Domain = "captain"
)

// Valid reports whether the domain is one of the known identity namespaces.
func (d Domain) Valid() bool {
	return d == DomainUser || d == DomainCaptain
}

// Table returns the storage table backing the domain. Keeping one table per
// domain is what guarantees the separate login-uniqueness namespaces.
func (d Domain) Table() string {
	switch d {
	case DomainCaptain:
		return "captains"
	default:
		return "users"
	}
}

// RoutePrefix returns the HTTP route prefix for the domain.
func (d Domain) RoutePrefix() string {
	switch d {
	case DomainCaptain:
		return "/captains"
	default:
		return "/users"
	}
}

// Identity represents a registered rider or captain.
type Identity struct {
	ID           uuid.UUID // Unique identifier (UUIDv7), immutable
	Domain       Domain    // Identity namespace the record lives in
	Email        string    // Login key, lower-cased, unique within the domain
	FirstName    string
	LastName     string
	PasswordHash string // Argon2id hash, never the plaintext
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identity domain errors.
var (
	// ErrIdentityNotFound indicates the requested identity does not exist in its domain.
	ErrIdentityNotFound = errors.Wrap(errors.ErrNotFound, "identity not found")

	// ErrEmailAlreadyExists indicates an identity with the same email already
	// exists in the same domain.
	ErrEmailAlreadyExists = errors.Wrap(errors.ErrConflict, "email already in use")

	// ErrInvalidCredentials merges unknown-email and wrong-password failures so
	// login responses cannot be used for account enumeration.
	ErrInvalidCredentials = errors.Wrap(errors.ErrUnauthorized, "invalid credentials")
)

// RegisterInput contains the parameters for registering a new identity.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// LoginInput contains the parameters for authenticating an identity.
type LoginInput struct {
	Email    string
	Password string
}
