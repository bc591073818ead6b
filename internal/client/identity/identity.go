// Package identity describes the identity services the CodeLife client can
// sign users in with, and the errors they report.
//
// An identity service owns two things: the user record (Identity) and a
// long-lived provider credential (Credential.Secret – a Firebase refresh
// token or a Kratos session token). Bearer tokens for the backend API are
// derived from the credential on demand through Provider.Token.
package identity

import "context"

// Identity is the read-only view of the signed-in user.
type Identity struct {
	UID           string
	Email         string
	EmailVerified bool
}

// Credential binds an Identity to the provider secret that can mint tokens
// for it.
type Credential struct {
	Identity Identity
	Secret   string
}

// Provider is implemented by every identity service back-end.
//
// All methods report failures as *AuthError. Token may rotate the provider
// secret; callers must keep the returned Credential.
type Provider interface {
	Name() string
	SignUp(ctx context.Context, email, password string) (*Credential, error)
	SignIn(ctx context.Context, email, password string) (*Credential, error)
	SignOut(ctx context.Context, cred *Credential) error
	Token(ctx context.Context, cred *Credential) (string, *Credential, error)
	Lookup(ctx context.Context, cred *Credential) (*Identity, error)
}
