package services

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"ocelo_loyalty_backend/internal/models"
	"ocelo_loyalty_backend/internal/repositories"
	"ocelo_loyalty_backend/pkg/utils"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	passwordHashCost = bcrypt.MinCost
	utils.InitJWT("test-secret", time.Hour)
	os.Exit(m.Run())
}

// memKV is an in-memory repositories.KVRepository.
type memKV struct {
	mu   sync.Mutex
	data map[string][]byte
	err  error
}

func (m *memKV) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return v, nil
}

func (m *memKV) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *memKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *memKV) Keys(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := []string{}
	for k := range m.data {
		keys = append(keys, k)
	}
	return keys, nil
}

// testingT is satisfied by *testing.T and *rapid.T.
type testingT interface {
	require.TestingT
	Helper()
}

type testStore struct {
	kv        *memKV
	customers repositories.CustomerRepository
	products  repositories.ProductRepository
	settings  repositories.SettingRepository
}

// newTestStore seeds repositories with the built-in defaults, replacing customers when given.
func newTestStore(t testingT, customers ...models.Customer) *testStore {
	t.Helper()
	ctx := context.Background()
	defaults := repositories.BuiltinDefaults()
	if customers != nil {
		defaults.Customers = customers
	}

	kv := &memKV{data: map[string][]byte{}}
	customerRepo, err := repositories.NewCustomerRepository(ctx, kv, defaults.Customers)
	require.NoError(t, err)
	productRepo, err := repositories.NewProductRepository(ctx, kv, defaults.Products)
	require.NoError(t, err)
	settingRepo, err := repositories.NewSettingRepository(ctx, kv, defaults.Config)
	require.NoError(t, err)
	return &testStore{kv: kv, customers: customerRepo, products: productRepo, settings: settingRepo}
}

// fixedClock returns a clock stuck at 2024-05-20 12:00 UTC.
func fixedClock() func() time.Time {
	return func() time.Time { return time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC) }
}
