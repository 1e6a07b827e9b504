package repositories

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"ocelo_loyalty_backend/internal/database"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockKV(t *testing.T) (KVRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresKVRepository(db), mock
}

func TestKVRepository_Get(t *testing.T) {
	kv, mock := newMockKV(t)
	query := regexp.QuoteMeta(`SELECT value FROM kv_store WHERE key = $1`)

	mock.ExpectQuery(query).WithArgs(KeyConfig).
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(`{"currency":"ARS"}`))
	raw, err := kv.Get(context.Background(), KeyConfig)
	require.NoError(t, err)
	assert.JSONEq(t, `{"currency":"ARS"}`, string(raw))

	mock.ExpectQuery(query).WithArgs("missing").WillReturnRows(sqlmock.NewRows([]string{"value"}))
	_, err = kv.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	mock.ExpectQuery(query).WithArgs(KeyProducts).WillReturnError(errors.New("connection reset"))
	_, err = kv.Get(context.Background(), KeyProducts)
	assert.ErrorIs(t, err, ErrDatabaseError)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestKVRepository_Set(t *testing.T) {
	kv, mock := newMockKV(t)
	query := regexp.QuoteMeta(`INSERT INTO kv_store (key, value, updated_at) VALUES ($1, $2, $3)`)

	mock.ExpectExec(query).WithArgs(KeyCustomers, `[]`, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, kv.Set(context.Background(), KeyCustomers, []byte(`[]`)))

	mock.ExpectExec(query).WithArgs(KeyCustomers, `[]`, sqlmock.AnyArg()).
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key", Constraint: "kv_store_pkey"})
	err := kv.Set(context.Background(), KeyCustomers, []byte(`[]`))
	assert.ErrorIs(t, err, ErrDuplicateKey)
	assert.True(t, IsConstraint(err, "kv_store_pkey"))

	mock.ExpectExec(query).WithArgs(KeyCustomers, `[]`, sqlmock.AnyArg()).
		WillReturnError(&pq.Error{Code: "53300", Message: "too many connections"})
	err = kv.Set(context.Background(), KeyCustomers, []byte(`[]`))
	assert.ErrorIs(t, err, ErrDatabaseError)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestKVRepository_DeleteAndKeys(t *testing.T) {
	kv, mock := newMockKV(t)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM kv_store WHERE key = $1`)).WithArgs(KeyConfig).
		WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, kv.Delete(context.Background(), KeyConfig))

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT key FROM kv_store ORDER BY key`)).
		WillReturnRows(sqlmock.NewRows([]string{"key"}).AddRow(KeyConfig).AddRow(KeyCustomers))
	keys, err := kv.Keys(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{KeyConfig, KeyCustomers}, keys)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestKVRepository_SQLite(t *testing.T) {
	ctx := context.Background()
	db, err := database.Open(ctx, database.Settings{Driver: database.DriverSQLite, SQLitePath: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.ApplySchema(ctx, db, database.DriverSQLite))

	kv := NewKVRepository(db, database.DriverSQLite)
	kv.(*kvRepository).nowFunc = func() time.Time { return time.Date(2024, 5, 20, 10, 0, 0, 0, time.UTC) }

	_, err = kv.Get(ctx, KeyConfig)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, kv.Set(ctx, KeyConfig, []byte(`{"a":1}`)))
	require.NoError(t, kv.Set(ctx, KeyConfig, []byte(`{"a":2}`)))
	raw, err := kv.Get(ctx, KeyConfig)
	require.NoError(t, err)
	assert.Equal(t, `{"a":2}`, string(raw))

	keys, err := kv.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{KeyConfig}, keys)

	require.NoError(t, kv.Delete(ctx, KeyConfig))
	_, err = kv.Get(ctx, KeyConfig)
	assert.ErrorIs(t, err, ErrNotFound)
}
