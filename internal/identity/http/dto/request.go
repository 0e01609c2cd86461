// Package dto provides data transfer objects for identity HTTP request and
// response handling. Both identity domains share these shapes.
package dto

import (
	"github.com/openride/openride/internal/identity/domain"
)

// FullName is the structured name carried in register requests and identity
// responses.
type FullName struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// RegisterRequest contains the parameters for registering a new identity.
type RegisterRequest struct {
	FullName FullName `json:"fullName"`
	Email    string   `json:"email"`
	Password string   `json:"password"`
}

// ToInput converts the request to a domain registration input.
// Field validation happens in the use case.
func (r *RegisterRequest) ToInput() *domain.RegisterInput {
	return &domain.RegisterInput{
		FirstName: r.FullName.FirstName,
		LastName:  r.FullName.LastName,
		Email:     r.Email,
		Password:  r.Password,
	}
}

// LoginRequest contains the parameters for authenticating an identity.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ToInput converts the request to a domain login input.
func (r *LoginRequest) ToInput() *domain.LoginInput {
	return &domain.LoginInput{
		Email:    r.Email,
		Password: r.Password,
	}
}
