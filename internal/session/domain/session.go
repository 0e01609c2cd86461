// Package domain defines the session models shared by both identity domains.
//
// Sessions are carried as signed, self-contained tokens: every claim needed to
// authenticate a request travels inside the token itself, so request
// authentication never requires a session row lookup. The only storage the
// session context keeps is the revocation list written on logout.
package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/openride/openride/internal/errors"
	identityDomain "github.com/openride/openride/internal/identity/domain"
)

// Claims is the decoded payload of a session token.
type Claims struct {
	IdentityID uuid.UUID             // Identity the session belongs to
	Domain     identityDomain.Domain // Identity namespace the session was issued for
	TokenID    uuid.UUID             // Unique token identifier, keys the revocation list
	IssuedAt   time.Time
	ExpiresAt  time.Time
}

// RevokedToken records a session token invalidated before its natural expiry.
// Rows become garbage once ExpiresAt passes, since verification rejects
// expired tokens before consulting the revocation list.
type RevokedToken struct {
	TokenID   uuid.UUID
	ExpiresAt time.Time
	RevokedAt time.Time
}

// Session domain errors.
var (
	// ErrInvalidSessionToken covers every token verification failure: bad
	// signature, malformed payload, expiry, and revocation. Collapsing them
	// keeps responses from revealing why a presented token was rejected.
	ErrInvalidSessionToken = errors.Wrap(errors.ErrUnauthorized, "invalid session token")
)
