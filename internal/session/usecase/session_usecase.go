package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	identityDomain "github.com/openride/openride/internal/identity/domain"
	"github.com/openride/openride/internal/session/domain"
	sessionService "github.com/openride/openride/internal/session/service"
)

// sessionUseCase implements SessionUseCase on top of signed tokens plus a
// stored revocation list.
type sessionUseCase struct {
	tokenService     sessionService.TokenService
	revokedTokenRepo RevokedTokenRepository
}

// Issue creates a signed session token for the identity. No state is written:
// the token carries everything verification needs.
func (s *sessionUseCase) Issue(
	ctx context.Context,
	identityID uuid.UUID,
	dom identityDomain.Domain,
) (string, *domain.Claims, error) {
	return s.tokenService.Issue(identityID, dom)
}

// Authenticate verifies a presented session token.
//
// The signature and expiry checks are local; only tokens that pass them cost
// a revocation list lookup. A revoked token is reported with the same error
// as a forged or expired one.
func (s *sessionUseCase) Authenticate(ctx context.Context, plainToken string) (*domain.Claims, error) {
	claims, err := s.tokenService.Verify(plainToken)
	if err != nil {
		return nil, err
	}

	revoked, err := s.revokedTokenRepo.Exists(ctx, claims.TokenID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, domain.ErrInvalidSessionToken
	}

	return claims, nil
}

// Revoke puts a session token on the revocation list. The token must still
// verify; there is nothing to revoke in an expired or forged token.
func (s *sessionUseCase) Revoke(ctx context.Context, plainToken string) error {
	claims, err := s.tokenService.Verify(plainToken)
	if err != nil {
		return err
	}

	revokedToken := &domain.RevokedToken{
		TokenID:   claims.TokenID,
		ExpiresAt: claims.ExpiresAt,
		RevokedAt: time.Now().UTC(),
	}
	return s.revokedTokenRepo.Create(ctx, revokedToken)
}

// CleanupExpired prunes revocation rows for tokens past their natural expiry.
// Expired tokens fail verification on their own, so these rows no longer
// affect any authentication decision.
func (s *sessionUseCase) CleanupExpired(ctx context.Context, dryRun bool) (int64, error) {
	now := time.Now().UTC()

	if dryRun {
		return s.revokedTokenRepo.CountExpired(ctx, now)
	}
	return s.revokedTokenRepo.DeleteExpired(ctx, now)
}

// NewSessionUseCase creates a new SessionUseCase with the provided dependencies.
func NewSessionUseCase(
	tokenService sessionService.TokenService,
	revokedTokenRepo RevokedTokenRepository,
) SessionUseCase {
	return &sessionUseCase{
		tokenService:     tokenService,
		revokedTokenRepo: revokedTokenRepo,
	}
}
