// Package session holds the signed-in state of the CLI.
//
// A Session wraps an identity.Provider, exposes the current identity as a
// read-only copy, mints a bearer token on demand and notifies subscribers
// synchronously whenever the identity changes (sign-in, sign-out, expiry or
// a change made by another process sharing the credential store).
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/dmitrijs2005/codelife/internal/client/identity"
	"github.com/dmitrijs2005/codelife/internal/client/store"
	"github.com/dmitrijs2005/codelife/internal/logging"
	"github.com/dmitrijs2005/codelife/internal/validation"
)

// Listener receives the new identity, or nil after sign-out.
type Listener func(id *identity.Identity)

type subscription struct {
	id int
	fn Listener
}

type Session struct {
	provider identity.Provider
	store    store.CredentialStore
	log      logging.Logger

	mu   sync.Mutex
	cred *identity.Credential

	lmu       sync.Mutex
	listeners []subscription
	nextID    int
}

func New(p identity.Provider, s store.CredentialStore, log logging.Logger) *Session {
	if s == nil {
		s = store.NewMemoryCredentialStore()
	}
	if log == nil {
		log = logging.Discard()
	}
	return &Session{provider: p, store: s, log: log.With("component", "session")}
}

// Current returns a copy of the signed-in identity, or nil.
func (s *Session) Current() *identity.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cred == nil {
		return nil
	}
	id := s.cred.Identity
	return &id
}

func (s *Session) SignUp(ctx context.Context, email, password string) (*identity.Identity, error) {
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}
	cred, err := s.provider.SignUp(ctx, email, password)
	if err != nil {
		return nil, err
	}
	s.log.Info(ctx, "signed up", "uid", cred.Identity.UID)
	return s.establish(ctx, cred), nil
}

func (s *Session) SignIn(ctx context.Context, email, password string) (*identity.Identity, error) {
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}
	cred, err := s.provider.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}
	s.log.Info(ctx, "signed in", "uid", cred.Identity.UID)
	return s.establish(ctx, cred), nil
}

// SignOut revokes the credential at the provider (best effort), forgets it
// locally and notifies subscribers.
func (s *Session) SignOut(ctx context.Context) error {
	s.mu.Lock()
	cred := s.cred
	s.mu.Unlock()

	if cred == nil {
		return nil
	}

	if err := s.provider.SignOut(ctx, cred); err != nil {
		s.log.Warn(ctx, "provider sign-out failed", "error", err)
	}

	s.log.Info(ctx, "signed out", "uid", cred.Identity.UID)
	return s.drop(ctx, cred)
}

// Token returns a bearer token minted for this call, or "" with a nil error
// when nobody is signed in. A provider answer meaning the session is gone
// signs the user out before the error is returned.
func (s *Session) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	cred := s.cred
	s.mu.Unlock()

	if cred == nil {
		return "", nil
	}

	token, updated, err := s.provider.Token(ctx, cred)
	if err != nil {
		if errors.Is(err, identity.ErrSessionExpired) {
			s.log.Warn(ctx, "session expired", "uid", cred.Identity.UID)
			if dropErr := s.drop(ctx, cred); dropErr != nil {
				s.log.Error(ctx, "clearing expired session", "error", dropErr)
			}
		}
		return "", err
	}

	if updated != nil && *updated != *cred {
		s.replace(ctx, cred, updated)
	}
	return token, nil
}

// Subscribe registers fn for identity changes. The returned func removes it.
func (s *Session) Subscribe(fn Listener) func() {
	s.lmu.Lock()
	defer s.lmu.Unlock()

	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, subscription{id: id, fn: fn})

	return func() {
		s.lmu.Lock()
		defer s.lmu.Unlock()
		for i, l := range s.listeners {
			if l.id == id {
				s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

func validateCredentials(email, password string) error {
	form := struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=6"`
	}{email, password}

	if err := validation.Struct(form); err != nil {
		return &identity.AuthError{Code: "invalid-input", Message: err.Error(), Err: identity.ErrInvalidInput}
	}
	return nil
}

// establish stores a fresh credential and announces the identity.
func (s *Session) establish(ctx context.Context, cred *identity.Credential) *identity.Identity {
	if err := s.store.Save(ctx, s.provider.Name(), cred); err != nil {
		s.log.Warn(ctx, "persisting credential failed", "error", err)
	}

	s.mu.Lock()
	s.cred = cred
	s.mu.Unlock()

	id := cred.Identity
	s.notify(&id)
	return &id
}

// replace swaps old for updated if old is still the active credential.
func (s *Session) replace(ctx context.Context, old, updated *identity.Credential) {
	s.mu.Lock()
	if s.cred != old {
		s.mu.Unlock()
		return
	}
	s.cred = updated
	s.mu.Unlock()

	if old.Secret != updated.Secret {
		if err := s.store.Save(ctx, s.provider.Name(), updated); err != nil {
			s.log.Warn(ctx, "persisting rotated credential failed", "error", err)
		}
	}
	if old.Identity != updated.Identity {
		id := updated.Identity
		s.notify(&id)
	}
}

// drop forgets cred if it is still the active credential.
func (s *Session) drop(ctx context.Context, cred *identity.Credential) error {
	s.mu.Lock()
	if s.cred != cred {
		s.mu.Unlock()
		return nil
	}
	s.cred = nil
	s.mu.Unlock()

	err := s.store.Clear(ctx)
	s.notify(nil)
	return err
}

func (s *Session) notify(id *identity.Identity) {
	s.lmu.Lock()
	ls := make([]subscription, len(s.listeners))
	copy(ls, s.listeners)
	s.lmu.Unlock()

	for _, l := range ls {
		if id == nil {
			l.fn(nil)
			continue
		}
		c := *id
		l.fn(&c)
	}
}
