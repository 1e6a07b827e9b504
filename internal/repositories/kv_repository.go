package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq" // For pq.Error
)

// Storage keys for the three persisted collections.
const (
	KeyConfig    = "ocelo_db_config"
	KeyProducts  = "ocelo_db_products"
	KeyCustomers = "ocelo_db_customers"
)

// KVRepository is a load/save-by-key store for JSON blobs.
type KVRepository interface {
	Get(ctx context.Context, key string) ([]byte, error) // ErrNotFound when the key is absent
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
}

type kvRepository struct {
	db      SQLExecutor
	sqlite  bool
	nowFunc func() time.Time
}

// NewPostgresKVRepository creates a KVRepository over the kv_store table in PostgreSQL.
func NewPostgresKVRepository(db SQLExecutor) KVRepository {
	return &kvRepository{db: db, nowFunc: time.Now}
}

// NewSQLiteKVRepository creates a KVRepository over the kv_store table in SQLite.
func NewSQLiteKVRepository(db SQLExecutor) KVRepository {
	return &kvRepository{db: db, sqlite: true, nowFunc: time.Now}
}

// NewKVRepository picks the implementation matching the database driver name.
func NewKVRepository(db SQLExecutor, driver string) KVRepository {
	if driver == "sqlite" {
		return NewSQLiteKVRepository(db)
	}
	return NewPostgresKVRepository(db)
}

// rebind rewrites $N placeholders to ? for SQLite.
func (r *kvRepository) rebind(query string) string {
	if !r.sqlite {
		return query
	}
	for i := 3; i >= 1; i-- {
		query = strings.ReplaceAll(query, fmt.Sprintf("$%d", i), "?")
	}
	return query
}

func wrapDriverError(err error, op string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Code.Name() == "unique_violation" {
			return fmt.Errorf("%w: %s (constraint: %s)", ErrDuplicateKey, pqErr.Message, pqErr.Constraint)
		}
		return fmt.Errorf("%w: %s: %s (%s)", ErrDatabaseError, op, pqErr.Message, pqErr.Code.Name())
	}
	return fmt.Errorf("%w: %s: %v", ErrDatabaseError, op, err)
}

// Get returns the raw blob stored under key.
func (r *kvRepository) Get(ctx context.Context, key string) ([]byte, error) {
	var value string
	err := r.db.QueryRowContext(ctx, r.rebind(`SELECT value FROM kv_store WHERE key = $1`), key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, wrapDriverError(err, "getting key "+key)
	}
	return []byte(value), nil
}

// Set overwrites the blob stored under key.
func (r *kvRepository) Set(ctx context.Context, key string, value []byte) error {
	query := `INSERT INTO kv_store (key, value, updated_at) VALUES ($1, $2, $3)
	          ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`
	_, err := r.db.ExecContext(ctx, r.rebind(query), key, string(value), r.nowFunc().UTC())
	if err != nil {
		return wrapDriverError(err, "setting key "+key)
	}
	return nil
}

// Delete removes key; deleting an absent key is not an error.
func (r *kvRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, r.rebind(`DELETE FROM kv_store WHERE key = $1`), key); err != nil {
		return wrapDriverError(err, "deleting key "+key)
	}
	return nil
}

// Keys lists every stored key in lexical order.
func (r *kvRepository) Keys(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT key FROM kv_store ORDER BY key`)
	if err != nil {
		return nil, wrapDriverError(err, "listing keys")
	}
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("%w: scanning key: %v", ErrDatabaseError, err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating keys: %v", ErrDatabaseError, err)
	}
	return keys, nil
}
