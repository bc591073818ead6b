package session

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/codelife/internal/client/identity"
)

// Restore resumes a credential persisted by an earlier run. An expired
// credential is discarded; if the provider cannot be reached the stored
// identity is trusted until the next successful check.
func (s *Session) Restore(ctx context.Context) error {
	cred, err := s.store.Load(ctx, s.provider.Name())
	if err != nil {
		return err
	}
	if cred == nil {
		return nil
	}

	id, err := s.provider.Lookup(ctx, cred)
	switch {
	case err == nil:
		restored := *cred
		restored.Identity = *id
		s.log.Info(ctx, "session restored", "uid", id.UID)
		s.establish(ctx, &restored)
		return nil
	case errors.Is(err, identity.ErrSessionExpired):
		s.log.Info(ctx, "stored session expired", "uid", cred.Identity.UID)
		return s.store.Clear(ctx)
	case errors.Is(err, identity.ErrUnavailable):
		s.log.Warn(ctx, "identity service unreachable, using stored session", "uid", cred.Identity.UID)
		s.establish(ctx, cred)
		return nil
	default:
		return err
	}
}

// Watch re-validates the session every interval until ctx ends. It picks up
// sign-in/sign-out done by another process through the shared store and
// expiry or revocation reported by the identity service.
func (s *Session) Watch(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			checkCtx, cancel := context.WithTimeout(ctx, interval)
			s.check(checkCtx)
			cancel()
		case <-ctx.Done():
			return
		}
	}
}

func (s *Session) check(ctx context.Context) {
	s.mu.Lock()
	cur := s.cred
	s.mu.Unlock()

	stored, err := s.store.Load(ctx, s.provider.Name())
	if err != nil {
		s.log.Warn(ctx, "reading credential store failed", "error", err)
		return
	}

	switch {
	case cur == nil && stored != nil:
		s.log.Info(ctx, "signed in elsewhere", "uid", stored.Identity.UID)
		s.adopt(stored)
		return
	case cur != nil && stored == nil:
		s.log.Info(ctx, "signed out elsewhere", "uid", cur.Identity.UID)
		s.forget(cur)
		return
	case cur != nil && stored.Secret != cur.Secret:
		if stored.Identity.UID != cur.Identity.UID {
			s.log.Info(ctx, "account switched elsewhere", "uid", stored.Identity.UID)
		}
		s.adopt(stored)
		return
	case cur == nil:
		return
	}

	id, err := s.provider.Lookup(ctx, cur)
	switch {
	case err == nil:
		if *id != cur.Identity {
			updated := *cur
			updated.Identity = *id
			s.replace(ctx, cur, &updated)
		}
	case errors.Is(err, identity.ErrSessionExpired):
		s.log.Warn(ctx, "session no longer valid", "uid", cur.Identity.UID)
		if err := s.drop(ctx, cur); err != nil {
			s.log.Error(ctx, "clearing expired session", "error", err)
		}
	default:
		s.log.Debug(ctx, "session check failed", "error", err)
	}
}

// adopt installs a credential written by someone else without saving it back.
func (s *Session) adopt(cred *identity.Credential) {
	s.mu.Lock()
	s.cred = cred
	s.mu.Unlock()

	id := cred.Identity
	s.notify(&id)
}

// forget clears cur without touching the store, which is already empty.
func (s *Session) forget(cur *identity.Credential) {
	s.mu.Lock()
	if s.cred != cur {
		s.mu.Unlock()
		return
	}
	s.cred = nil
	s.mu.Unlock()

	s.notify(nil)
}
