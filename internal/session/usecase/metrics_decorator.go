package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	identityDomain "github.com/openride/openride/internal/identity/domain"
	"github.com/openride/openride/internal/metrics"
	"github.com/openride/openride/internal/session/domain"
)

// sessionUseCaseWithMetrics decorates SessionUseCase with metrics instrumentation.
type sessionUseCaseWithMetrics struct {
	next    SessionUseCase
	metrics metrics.BusinessMetrics
}

// NewSessionUseCaseWithMetrics wraps a SessionUseCase with metrics recording.
func NewSessionUseCaseWithMetrics(useCase SessionUseCase, m metrics.BusinessMetrics) SessionUseCase {
	return &sessionUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Issue records metrics for session issuance operations.
func (s *sessionUseCaseWithMetrics) Issue(
	ctx context.Context,
	identityID uuid.UUID,
	dom identityDomain.Domain,
) (string, *domain.Claims, error) {
	start := time.Now()
	plainToken, claims, err := s.next.Issue(ctx, identityID, dom)

	status := "success"
	if err != nil {
		status = "error"
	}

	s.metrics.RecordOperation(ctx, "session", "issue", status)
	s.metrics.RecordDuration(ctx, "session", "issue", time.Since(start), status)

	return plainToken, claims, err
}

// Authenticate records metrics for session verification operations.
func (s *sessionUseCaseWithMetrics) Authenticate(ctx context.Context, plainToken string) (*domain.Claims, error) {
	start := time.Now()
	claims, err := s.next.Authenticate(ctx, plainToken)

	status := "success"
	if err != nil {
		status = "error"
	}

	s.metrics.RecordOperation(ctx, "session", "authenticate", status)
	s.metrics.RecordDuration(ctx, "session", "authenticate", time.Since(start), status)

	return claims, err
}

// Revoke records metrics for session revocation operations.
func (s *sessionUseCaseWithMetrics) Revoke(ctx context.Context, plainToken string) error {
	start := time.Now()
	err := s.next.Revoke(ctx, plainToken)

	status := "success"
	if err != nil {
		status = "error"
	}

	s.metrics.RecordOperation(ctx, "session", "revoke", status)
	s.metrics.RecordDuration(ctx, "session", "revoke", time.Since(start), status)

	return err
}

// CleanupExpired records metrics for revocation list cleanup operations.
func (s *sessionUseCaseWithMetrics) CleanupExpired(ctx context.Context, dryRun bool) (int64, error) {
	start := time.Now()
	count, err := s.next.CleanupExpired(ctx, dryRun)

	status := "success"
	if err != nil {
		status = "error"
	}

	s.metrics.RecordOperation(ctx, "session", "cleanup_expired", status)
	s.metrics.RecordDuration(ctx, "session", "cleanup_expired", time.Since(start), status)

	return count, err
}
