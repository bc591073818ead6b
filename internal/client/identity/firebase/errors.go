package firebase

import (
	"strings"

	"github.com/dmitrijs2005/codelife/internal/client/identity"
)

type errorKind struct {
	message string
	err     error
}

var knownErrors = map[string]errorKind{
	"EMAIL_EXISTS":                {"The email address is already in use by another account.", identity.ErrInvalidInput},
	"INVALID_EMAIL":               {"The email address is badly formatted.", identity.ErrInvalidInput},
	"MISSING_PASSWORD":            {"A password is required.", identity.ErrInvalidInput},
	"WEAK_PASSWORD":               {"Password should be at least 6 characters.", identity.ErrInvalidInput},
	"EMAIL_NOT_FOUND":             {"Invalid email or password.", identity.ErrInvalidCredentials},
	"INVALID_PASSWORD":            {"Invalid email or password.", identity.ErrInvalidCredentials},
	"INVALID_LOGIN_CREDENTIALS":   {"Invalid email or password.", identity.ErrInvalidCredentials},
	"USER_DISABLED":               {"This account has been disabled.", identity.ErrSessionExpired},
	"USER_NOT_FOUND":              {"This account no longer exists.", identity.ErrSessionExpired},
	"TOKEN_EXPIRED":               {"Your session has expired, please sign in again.", identity.ErrSessionExpired},
	"INVALID_REFRESH_TOKEN":       {"Your session has expired, please sign in again.", identity.ErrSessionExpired},
	"INVALID_ID_TOKEN":            {"Your session has expired, please sign in again.", identity.ErrSessionExpired},
	"TOO_MANY_ATTEMPTS_TRY_LATER": {"Too many attempts. Try again later.", identity.ErrUnavailable},
	"OPERATION_NOT_ALLOWED":       {"Email/password sign-in is disabled for this project.", identity.ErrInvalidInput},
}

// mapError turns a Firebase error message ("CODE" or "CODE : details")
// into an *identity.AuthError.
func mapError(message string) *identity.AuthError {
	code, detail, _ := strings.Cut(message, " : ")
	code = strings.TrimSpace(code)

	if k, ok := knownErrors[code]; ok {
		return &identity.AuthError{Code: code, Message: k.message, Err: k.err}
	}
	if detail != "" {
		return &identity.AuthError{Code: code, Message: strings.TrimSpace(detail)}
	}
	return &identity.AuthError{Code: code, Message: "Authentication failed: " + code}
}
