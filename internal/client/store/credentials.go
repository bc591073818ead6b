package store

import (
	"context"
	"database/sql"
	"strconv"
	"sync"

	"github.com/dmitrijs2005/codelife/internal/client/identity"
)

const (
	keyProvider      = "provider"
	keyUID           = "uid"
	keyEmail         = "email"
	keyEmailVerified = "email_verified"
	keySecret        = "provider_secret"
)

// CredentialStore keeps at most one provider credential.
type CredentialStore interface {
	// Load returns (nil, nil) when nothing is stored for provider.
	Load(ctx context.Context, provider string) (*identity.Credential, error)
	Save(ctx context.Context, provider string, cred *identity.Credential) error
	Clear(ctx context.Context) error
}

type SQLiteCredentialStore struct {
	db *sql.DB
}

func NewSQLiteCredentialStore(db *sql.DB) *SQLiteCredentialStore {
	return &SQLiteCredentialStore{db: db}
}

func (s *SQLiteCredentialStore) Load(ctx context.Context, provider string) (*identity.Credential, error) {
	values, err := NewMetadataRepository(s.db).Values(ctx, keyProvider, keyUID, keyEmail, keyEmailVerified, keySecret)
	if err != nil {
		return nil, err
	}

	// A credential minted by another identity service is useless here.
	if string(values[keyProvider]) != provider || len(values[keySecret]) == 0 {
		return nil, nil
	}

	verified, _ := strconv.ParseBool(string(values[keyEmailVerified]))

	return &identity.Credential{
		Identity: identity.Identity{
			UID:           string(values[keyUID]),
			Email:         string(values[keyEmail]),
			EmailVerified: verified,
		},
		Secret: string(values[keySecret]),
	}, nil
}

// Save replaces whatever was stored with cred.
func (s *SQLiteCredentialStore) Save(ctx context.Context, provider string, cred *identity.Credential) error {
	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		repo := NewMetadataRepository(tx)
		if err := repo.Clear(ctx); err != nil {
			return err
		}
		return repo.Put(ctx, map[string][]byte{
			keyProvider:      []byte(provider),
			keyUID:           []byte(cred.Identity.UID),
			keyEmail:         []byte(cred.Identity.Email),
			keyEmailVerified: []byte(strconv.FormatBool(cred.Identity.EmailVerified)),
			keySecret:        []byte(cred.Secret),
		})
	})
}

func (s *SQLiteCredentialStore) Clear(ctx context.Context) error {
	return NewMetadataRepository(s.db).Clear(ctx)
}

// MemoryCredentialStore is used when persistence is disabled.
type MemoryCredentialStore struct {
	mu       sync.Mutex
	provider string
	cred     *identity.Credential
}

func NewMemoryCredentialStore() *MemoryCredentialStore {
	return &MemoryCredentialStore{}
}

func (m *MemoryCredentialStore) Load(_ context.Context, provider string) (*identity.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cred == nil || m.provider != provider {
		return nil, nil
	}
	c := *m.cred
	return &c, nil
}

func (m *MemoryCredentialStore) Save(_ context.Context, provider string, cred *identity.Credential) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *cred
	m.provider, m.cred = provider, &c
	return nil
}

func (m *MemoryCredentialStore) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.provider, m.cred = "", nil
	return nil
}
