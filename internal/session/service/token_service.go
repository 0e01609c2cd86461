// Package service implements session token signing and verification.
package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	apperrors "github.com/openride/openride/internal/errors"
	identityDomain "github.com/openride/openride/internal/identity/domain"
	"github.com/openride/openride/internal/session/domain"
)

// TokenService signs and verifies self-contained session tokens.
type TokenService interface {
	// Issue creates a signed token for the identity and returns it with the
	// claims that were embedded in it.
	Issue(identityID uuid.UUID, dom identityDomain.Domain) (string, *domain.Claims, error)

	// Verify checks the token signature and expiry and returns the decoded
	// claims. Every failure mode returns ErrInvalidSessionToken.
	Verify(plainToken string) (*domain.Claims, error)
}

// sessionClaims is the wire shape of the token payload. RegisteredClaims
// carries subject (identity ID), jti (token ID), iat and exp; the domain tag
// rides in a private claim.
type sessionClaims struct {
	jwt.RegisteredClaims
	Domain string `json:"dom"`
}

// tokenService implements TokenService using HMAC-SHA256 signatures.
type tokenService struct {
	signingKey []byte
	expiration time.Duration
}

// Issue creates a signed session token with a fresh token ID and an expiry
// relative to now.
func (t *tokenService) Issue(identityID uuid.UUID, dom identityDomain.Domain) (string, *domain.Claims, error) {
	now := time.Now().UTC()
	claims := &domain.Claims{
		IdentityID: identityID,
		Domain:     dom,
		TokenID:    uuid.Must(uuid.NewV7()),
		IssuedAt:   now,
		ExpiresAt:  now.Add(t.expiration),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.IdentityID.String(),
			ID:        claims.TokenID.String(),
			IssuedAt:  jwt.NewNumericDate(claims.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(claims.ExpiresAt),
		},
		Domain: string(claims.Domain),
	})

	plainToken, err := token.SignedString(t.signingKey)
	if err != nil {
		return "", nil, apperrors.Wrap(err, "failed to sign session token")
	}

	return plainToken, claims, nil
}

// Verify parses and validates a session token. The signature is checked
// before any payload claim, so a forged token is rejected as invalid even
// when its expiry also passed.
func (t *tokenService) Verify(plainToken string) (*domain.Claims, error) {
	parsed, err := jwt.ParseWithClaims(
		plainToken,
		&sessionClaims{},
		func(token *jwt.Token) (any, error) {
			return t.signingKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return nil, domain.ErrInvalidSessionToken
	}

	wireClaims, ok := parsed.Claims.(*sessionClaims)
	if !ok {
		return nil, domain.ErrInvalidSessionToken
	}

	identityID, err := uuid.Parse(wireClaims.Subject)
	if err != nil {
		return nil, domain.ErrInvalidSessionToken
	}
	tokenID, err := uuid.Parse(wireClaims.ID)
	if err != nil {
		return nil, domain.ErrInvalidSessionToken
	}
	dom := identityDomain.Domain(wireClaims.Domain)
	if !dom.Valid() {
		return nil, domain.ErrInvalidSessionToken
	}

	claims := &domain.Claims{
		IdentityID: identityID,
		Domain:     dom,
		TokenID:    tokenID,
		ExpiresAt:  wireClaims.ExpiresAt.Time,
	}
	if wireClaims.IssuedAt != nil {
		claims.IssuedAt = wireClaims.IssuedAt.Time
	}

	return claims, nil
}

// NewTokenService creates a TokenService signing with the given key. Tokens
// expire after the given duration.
func NewTokenService(signingKey string, expiration time.Duration) TokenService {
	return &tokenService{
		signingKey: []byte(signingKey),
		expiration: expiration,
	}
}
