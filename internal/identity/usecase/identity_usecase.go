package usecase

import (
	"context"
	"strings"
	"time"

	validation "github.com/jellydator/validation"

	"github.com/google/uuid"

	"github.com/openride/openride/internal/database"
	apperrors "github.com/openride/openride/internal/errors"
	"github.com/openride/openride/internal/identity/domain"
	identityService "github.com/openride/openride/internal/identity/service"
	appValidation "github.com/openride/openride/internal/validation"
)

// identityUseCase implements IdentityUseCase for a single identity domain.
type identityUseCase struct {
	domain          domain.Domain
	txManager       database.TxManager
	identityRepo    IdentityRepository
	passwordService identityService.PasswordService
}

// validateRegisterInput validates registration input using jellydator/validation.
// Password policy is length-only: hashing is byte-oriented, so no character
// class is worth rejecting.
func (uc *identityUseCase) validateRegisterInput(input *domain.RegisterInput) error {
	err := validation.ValidateStruct(input,
		validation.Field(&input.FirstName,
			validation.Required.Error("first name is required"),
			appValidation.NotBlank,
			validation.Length(3, 255).Error("first name must be between 3 and 255 characters"),
		),
		validation.Field(&input.LastName,
			validation.Required.Error("last name is required"),
			appValidation.NotBlank,
			validation.Length(3, 255).Error("last name must be between 3 and 255 characters"),
		),
		validation.Field(&input.Email,
			validation.Required.Error("email is required"),
			appValidation.NotBlank,
			appValidation.Email,
			validation.Length(5, 255).Error("email must be between 5 and 255 characters"),
		),
		validation.Field(&input.Password,
			validation.Required.Error("password is required"),
			appValidation.PasswordStrength{MinLength: 8, MaxLength: 128},
		),
	)
	return appValidation.WrapValidationError(err)
}

// validateLoginInput validates login input. Only shape is checked here; the
// credential check itself happens against the stored hash.
func (uc *identityUseCase) validateLoginInput(input *domain.LoginInput) error {
	err := validation.ValidateStruct(input,
		validation.Field(&input.Email,
			validation.Required.Error("email is required"),
			appValidation.NotBlank,
			appValidation.Email,
		),
		validation.Field(&input.Password,
			validation.Required.Error("password is required"),
		),
	)
	return appValidation.WrapValidationError(err)
}

// Register creates a new identity in the use case's domain.
func (uc *identityUseCase) Register(ctx context.Context, input *domain.RegisterInput) (*domain.Identity, error) {
	if err := uc.validateRegisterInput(input); err != nil {
		return nil, err
	}

	passwordHash, err := uc.passwordService.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	identity := &domain.Identity{
		ID:           uuid.Must(uuid.NewV7()),
		Domain:       uc.domain,
		Email:        normalizeEmail(input.Email),
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		return uc.identityRepo.Create(ctx, identity)
	})
	if err != nil {
		return nil, err
	}

	return identity, nil
}

// Authenticate verifies an email and password pair against the stored hash.
//
// Unknown email and wrong password both return ErrInvalidCredentials. A
// corrupt stored hash is the one failure that must NOT collapse into it:
// that identity could otherwise never log in and nobody would know why.
func (uc *identityUseCase) Authenticate(ctx context.Context, input *domain.LoginInput) (*domain.Identity, error) {
	if err := uc.validateLoginInput(input); err != nil {
		return nil, err
	}

	identity, err := uc.identityRepo.GetByEmail(ctx, normalizeEmail(input.Email))
	if err != nil {
		if apperrors.Is(err, domain.ErrIdentityNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := uc.passwordService.Compare(input.Password, identity.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrInvalidCredentials
	}

	return identity, nil
}

// GetByID retrieves an identity by ID.
func (uc *identityUseCase) GetByID(ctx context.Context, id uuid.UUID) (*domain.Identity, error) {
	return uc.identityRepo.GetByID(ctx, id)
}

// normalizeEmail trims whitespace and lower-cases an email so lookups and the
// unique index agree on one canonical form.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NewIdentityUseCase creates an IdentityUseCase bound to the given domain.
func NewIdentityUseCase(
	dom domain.Domain,
	txManager database.TxManager,
	identityRepo IdentityRepository,
	passwordService identityService.PasswordService,
) IdentityUseCase {
	return &identityUseCase{
		domain:          dom,
		txManager:       txManager,
		identityRepo:    identityRepo,
		passwordService: passwordService,
	}
}
