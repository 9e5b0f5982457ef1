package errs

import "errors"

var (
	// common errors
	ErrNotFound = errors.New("not found")

	// auth-specific errors
	ErrInvalidToken       = errors.New("invalid token")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// authorization errors
	ErrForbidden = errors.New("access denied")

	// uniqueness/state conflicts
	ErrConflict = errors.New("already exists")
)

// ValidationError reports missing or malformed input with a caller-facing message.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// Validation builds a ValidationError with the given message.
func Validation(msg string) error {
	return &ValidationError{Msg: msg}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Conflict wraps ErrConflict with a caller-facing message.
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string {
	return e.Msg
}

func (e *ConflictError) Unwrap() error {
	return ErrConflict
}

// Conflict builds a ConflictError with the given message.
func Conflict(msg string) error {
	return &ConflictError{Msg: msg}
}
