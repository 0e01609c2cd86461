package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/openride/openride/internal/identity/domain"
	"github.com/openride/openride/internal/metrics"
)

// identityUseCaseWithMetrics decorates IdentityUseCase with metrics instrumentation.
// The identity domain rides in the operation name so rider and captain traffic
// stay distinguishable on the same dashboard.
type identityUseCaseWithMetrics struct {
	next    IdentityUseCase
	domain  domain.Domain
	metrics metrics.BusinessMetrics
}

// NewIdentityUseCaseWithMetrics wraps an IdentityUseCase with metrics recording.
func NewIdentityUseCaseWithMetrics(
	useCase IdentityUseCase,
	dom domain.Domain,
	m metrics.BusinessMetrics,
) IdentityUseCase {
	return &identityUseCaseWithMetrics{
		next:    useCase,
		domain:  dom,
		metrics: m,
	}
}

// Register records metrics for registration operations.
func (i *identityUseCaseWithMetrics) Register(
	ctx context.Context,
	input *domain.RegisterInput,
) (*domain.Identity, error) {
	start := time.Now()
	identity, err := i.next.Register(ctx, input)

	status := "success"
	if err != nil {
		status = "error"
	}

	operation := string(i.domain) + "_register"
	i.metrics.RecordOperation(ctx, "identity", operation, status)
	i.metrics.RecordDuration(ctx, "identity", operation, time.Since(start), status)

	return identity, err
}

// Authenticate records metrics for credential verification operations.
func (i *identityUseCaseWithMetrics) Authenticate(
	ctx context.Context,
	input *domain.LoginInput,
) (*domain.Identity, error) {
	start := time.Now()
	identity, err := i.next.Authenticate(ctx, input)

	status := "success"
	if err != nil {
		status = "error"
	}

	operation := string(i.domain) + "_authenticate"
	i.metrics.RecordOperation(ctx, "identity", operation, status)
	i.metrics.RecordDuration(ctx, "identity", operation, time.Since(start), status)

	return identity, err
}

// GetByID records metrics for identity retrieval operations.
func (i *identityUseCaseWithMetrics) GetByID(ctx context.Context, id uuid.UUID) (*domain.Identity, error) {
	start := time.Now()
	identity, err := i.next.GetByID(ctx, id)

	status := "success"
	if err != nil {
		status = "error"
	}

	operation := string(i.domain) + "_get"
	i.metrics.RecordOperation(ctx, "identity", operation, status)
	i.metrics.RecordDuration(ctx, "identity", operation, time.Since(start), status)

	return identity, err
}
