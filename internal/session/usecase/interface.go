// Package usecase defines business logic interfaces for session management.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	identityDomain "github.com/openride/openride/internal/identity/domain"
	"github.com/openride/openride/internal/session/domain"
)

// RevokedTokenRepository defines persistence operations for the session
// revocation list. Implementations must support transaction-aware operations
// via context propagation.
type RevokedTokenRepository interface {
	// Create stores a revoked token. Revoking an already-revoked token is a no-op.
	Create(ctx context.Context, revokedToken *domain.RevokedToken) error

	// Exists reports whether the token ID is on the revocation list.
	Exists(ctx context.Context, tokenID uuid.UUID) (bool, error)

	// CountExpired counts revocation rows whose tokens expired before now.
	CountExpired(ctx context.Context, now time.Time) (int64, error)

	// DeleteExpired removes revocation rows whose tokens expired before now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// SessionUseCase defines business logic operations for session tokens.
type SessionUseCase interface {
	// Issue creates a signed session token for the identity.
	//
	// The returned plain token is the session credential and should only be
	// transmitted over the session cookie or an Authorization header.
	Issue(ctx context.Context, identityID uuid.UUID, dom identityDomain.Domain) (string, *domain.Claims, error)

	// Authenticate verifies a presented session token and returns its claims.
	//
	// Signature, expiry, and revocation failures all surface as
	// ErrInvalidSessionToken so responses reveal nothing about why a token
	// was rejected.
	Authenticate(ctx context.Context, plainToken string) (*domain.Claims, error)

	// Revoke invalidates a session token before its natural expiry. The token
	// must still verify; revoking an already-revoked token succeeds silently.
	Revoke(ctx context.Context, plainToken string) error

	// CleanupExpired prunes revocation rows for tokens past their natural
	// expiry. Returns the number of rows removed; with dryRun set, only counts.
	CleanupExpired(ctx context.Context, dryRun bool) (int64, error)
}
