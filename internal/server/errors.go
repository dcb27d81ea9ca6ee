package server

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/hirematch/hirematch-api/internal/auth"
	"github.com/hirematch/hirematch-api/internal/store"
)

// ErrBadRequest indicates an unusable request body or parameter.
type ErrBadRequest struct {
	Message string
}

func (e *ErrBadRequest) Error() string {
	return e.Message
}

// ErrUpstream indicates the scoring model could not be reached.
type ErrUpstream struct {
	Err error
}

func (e *ErrUpstream) Error() string {
	return "upstream model error: " + e.Err.Error()
}

func (e *ErrUpstream) Unwrap() error {
	return e.Err
}

// ErrMatchingDisabled indicates the server runs without a model key.
type ErrMatchingDisabled struct{}

func (e *ErrMatchingDisabled) Error() string {
	return "matching is not configured"
}

// httpStatus maps an error to its HTTP status code, deferring to the
// auth package for credential and role failures.
func httpStatus(err error) int {
	var badReq *ErrBadRequest
	var vErrs validator.ValidationErrors
	var notFound *store.ErrNotFound
	var upstream *ErrUpstream
	var disabled *ErrMatchingDisabled
	switch {
	case errors.As(err, &badReq), errors.As(err, &vErrs):
		return http.StatusBadRequest
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &upstream):
		return http.StatusBadGateway
	case errors.As(err, &disabled):
		return http.StatusServiceUnavailable
	default:
		return auth.HTTPStatus(err)
	}
}
