package services

import (
	"errors"

	"github.com/evofit/evofit-backend/internal/models"
)

var (
	ErrConflict           = errors.New("username or email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrValidation         = errors.New("validation failed")
	ErrUserNotFound       = errors.New("user not found")
	ErrPostNotFound       = errors.New("post not found")
	ErrLookupFailed       = errors.New("nutrition lookup failed")
	ErrUploadUnavailable  = errors.New("image uploads are not configured")
)

// InputError is a rejected payload. errors.Is(err, ErrValidation) holds
// for every InputError; Error returns the message shown to the client.
type InputError struct {
	Message string
	Err     error
}

func (e *InputError) Error() string { return e.Message }

func (e *InputError) Unwrap() error { return e.Err }

func (e *InputError) Is(target error) bool { return target == ErrValidation }

func invalidInput(message string) error {
	return &InputError{Message: message}
}

// validatePayload runs the struct tag checks and wraps a failure.
func validatePayload(v interface{}) error {
	if err := models.Validate(v); err != nil {
		return &InputError{Message: models.Describe(err), Err: err}
	}
	return nil
}
