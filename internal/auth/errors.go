package auth

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrMissingCredential indicates no bearer token was presented outside
// local env.
type ErrMissingCredential struct{}

func (e *ErrMissingCredential) Error() string {
	return "missing bearer token"
}

// ErrInvalidCredential indicates the token failed signature or claim
// verification.
type ErrInvalidCredential struct {
	Err error
}

func (e *ErrInvalidCredential) Error() string {
	return fmt.Sprintf("invalid token: %v", e.Err)
}

func (e *ErrInvalidCredential) Unwrap() error {
	return e.Err
}

// ErrMissingRoleOrUser indicates a valid token whose claims carry no usable
// role or subject. Forbidden rather than unauthorized: the credential
// itself verified.
type ErrMissingRoleOrUser struct{}

func (e *ErrMissingRoleOrUser) Error() string {
	return "missing role or user"
}

// ErrForbidden indicates a resolved identity whose role is not in the
// endpoint's allowed set.
type ErrForbidden struct {
	Role Role
}

func (e *ErrForbidden) Error() string {
	return fmt.Sprintf("role %s not permitted for this endpoint", e.Role)
}

// HTTPStatus maps auth errors to response codes.
func HTTPStatus(err error) int {
	var missing *ErrMissingCredential
	var invalid *ErrInvalidCredential
	var noRole *ErrMissingRoleOrUser
	var forbidden *ErrForbidden
	switch {
	case errors.As(err, &missing), errors.As(err, &invalid):
		return http.StatusUnauthorized
	case errors.As(err, &noRole), errors.As(err, &forbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
