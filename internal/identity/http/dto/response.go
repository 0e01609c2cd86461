package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/openride/openride/internal/identity/domain"
)

// IdentityResponse is the public representation of an identity.
// The password hash never appears here.
type IdentityResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FullName  FullName  `json:"fullName"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewIdentityResponse converts a domain identity to its public representation.
func NewIdentityResponse(identity *domain.Identity) IdentityResponse {
	return IdentityResponse{
		ID:    identity.ID,
		Email: identity.Email,
		FullName: FullName{
			FirstName: identity.FirstName,
			LastName:  identity.LastName,
		},
		CreatedAt: identity.CreatedAt,
		UpdatedAt: identity.UpdatedAt,
	}
}

// AuthResponse is returned by register and login. The token also travels in
// the session cookie; it is repeated in the body for clients that prefer the
// Authorization header.
type AuthResponse struct {
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expires_at"`
	Identity  IdentityResponse `json:"identity"`
}

// MessageResponse is a simple confirmation message body.
type MessageResponse struct {
	Message string `json:"message"`
}
