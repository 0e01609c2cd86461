// Package http provides HTTP handlers and middleware for the identity domains.
package http

import (
	"context"

	"github.com/openride/openride/internal/identity/domain"
	sessionDomain "github.com/openride/openride/internal/session/domain"
)

// identityKey is a context key type for storing authenticated identities.
type identityKey struct{}

// claimsKey is a context key type for storing verified session claims.
type claimsKey struct{}

// WithIdentity stores an authenticated identity in the context.
// Called by the authentication middleware after successful token verification.
func WithIdentity(ctx context.Context, identity *domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// GetIdentity retrieves an authenticated identity from the context.
// Returns (identity, true) if present, or (nil, false) if no identity was set.
func GetIdentity(ctx context.Context) (*domain.Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(*domain.Identity)
	return identity, ok
}

// WithClaims stores verified session claims in the context.
// Handlers that revoke the current session need the token ID from here.
func WithClaims(ctx context.Context, claims *sessionDomain.Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// GetClaims retrieves verified session claims from the context.
// Returns (claims, true) if present, or (nil, false) if no claims were set.
func GetClaims(ctx context.Context) (*sessionDomain.Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*sessionDomain.Claims)
	return claims, ok
}
