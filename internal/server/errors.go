// Package server provides the HTTP REST API for prospect-scout.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/prospect-scout/internal/review"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrBadRequest indicates a malformed request body or parameter
type ErrBadRequest struct {
	Message string
}

func (e *ErrBadRequest) Error() string {
	return e.Message
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	if errors.Is(err, review.ErrNotFound) {
		return http.StatusNotFound
	}

	var transitionErr *review.InvalidTransitionError
	if errors.As(err, &transitionErr) {
		return http.StatusConflict
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return http.StatusBadRequest
	}

	switch err.(type) {
	case *ErrValidation, *ErrBadRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
