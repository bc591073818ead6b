package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// MetadataRepository is a tiny key/value table. Multi-key reads and writes
// are single statements.
type MetadataRepository struct {
	db Querier
}

func NewMetadataRepository(db Querier) *MetadataRepository {
	return &MetadataRepository{db: db}
}

// Values returns the stored values of keys. Absent keys are left out of
// the map.
func (r *MetadataRepository) Values(ctx context.Context, keys ...string) (map[string][]byte, error) {
	out := make(map[string][]byte, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = k
	}
	query := `SELECT key, value FROM metadata WHERE key IN (` + placeholders(len(keys)) + `)`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			k string
			v []byte
		)
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("failed to scan metadata: %w", err)
		}
		out[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}
	return out, nil
}

// Put upserts every pair in values with a single statement.
func (r *MetadataRepository) Put(ctx context.Context, values map[string][]byte) error {
	if len(values) == 0 {
		return nil
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rowsSQL := make([]string, len(keys))
	args := make([]any, 0, 2*len(keys))
	for i, k := range keys {
		rowsSQL[i] = "(?, ?)"
		args = append(args, k, values[k])
	}

	query := `INSERT INTO metadata (key, value) VALUES ` + strings.Join(rowsSQL, ", ") + `
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to write metadata %v: %w", keys, err)
	}
	return nil
}

func (r *MetadataRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM metadata`); err != nil {
		return fmt.Errorf("failed to clear metadata: %w", err)
	}
	return nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
