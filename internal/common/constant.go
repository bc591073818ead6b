// Package common contains constants and small helpers shared by the
// CodeLife client packages.
package common

// HTTP header names and values used on outbound backend requests.
const (
	AuthorizationHeaderName = "Authorization"
	ContentTypeHeaderName   = "Content-Type"
	RequestIDHeaderName     = "X-Request-ID"

	BearerPrefix    = "Bearer "
	ContentTypeJSON = "application/json"
)

// MinPasswordLength is the shortest password the identity services accept.
const MinPasswordLength = 6
