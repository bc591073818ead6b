package identity

import (
	"errors"
	"fmt"
)

var (
	ErrNotAuthenticated   = errors.New("user not authenticated")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidInput       = errors.New("invalid input")
	ErrSessionExpired     = errors.New("session expired")
	ErrUnavailable        = errors.New("identity service unavailable")
)

// AuthError is returned when no identity is present, when sign-up/sign-in
// input is rejected, or when the identity service refuses a request.
// Message is meant for the user; Code is the provider-specific code when
// one exists.
type AuthError struct {
	Code    string
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "authentication error"
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// NotAuthenticated is the error for operations that need a signed-in user.
func NotAuthenticated() *AuthError {
	return &AuthError{Code: "not-authenticated", Message: "User not authenticated", Err: ErrNotAuthenticated}
}

// Unavailable wraps a transport failure talking to the identity service.
func Unavailable(provider string, err error) *AuthError {
	return &AuthError{
		Code:    "unavailable",
		Message: fmt.Sprintf("%s is unreachable, try again later", provider),
		Err:     fmt.Errorf("%w: %w", ErrUnavailable, err),
	}
}
