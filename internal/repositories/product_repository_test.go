package repositories

import (
	"context"
	"errors"
	"testing"

	"ocelo_loyalty_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	repo, err := NewProductRepository(ctx, kv, BuiltinDefaults().Products)
	require.NoError(t, err)
	require.Len(t, repo.List(), 2)

	p := models.Product{ID: "3", Name: "Round Tortoise", Category: "Receta", Price: 30000, Stock: 5}
	require.NoError(t, repo.Create(ctx, p))
	assert.ErrorIs(t, repo.Create(ctx, p), ErrDuplicateKey)

	p.Stock = 4
	require.NoError(t, repo.Update(ctx, p))
	got, err := repo.GetByID("3")
	require.NoError(t, err)
	assert.Equal(t, 4, got.Stock)

	reloaded, err := NewProductRepository(ctx, kv, nil)
	require.NoError(t, err)
	assert.Equal(t, repo.List(), reloaded.List())

	require.NoError(t, repo.Delete(ctx, "3"))
	_, err = repo.GetByID("3")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Update(ctx, models.Product{ID: "404"}), ErrNotFound)
}

func TestProductRepository_SaveErrorKeepsMemory(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	repo, err := NewProductRepository(ctx, kv, BuiltinDefaults().Products)
	require.NoError(t, err)

	kv.setErr = errors.New("read-only")
	require.Error(t, repo.Delete(ctx, "1"))
	assert.Len(t, repo.List(), 2)
}

func TestSettingRepository(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	kv.data[KeyConfig] = []byte(`[]`)

	repo, err := NewSettingRepository(ctx, kv, BuiltinDefaults().Config)
	require.NoError(t, err)
	assert.Equal(t, "ARS", repo.Get().Currency)

	cfg := repo.Get()
	cfg.PrimaryColor = "#112233"
	cfg.PointsPerArs = 0.1
	require.NoError(t, repo.Replace(ctx, cfg))

	reloaded, err := NewSettingRepository(ctx, kv, BuiltinDefaults().Config)
	require.NoError(t, err)
	assert.Equal(t, cfg, reloaded.Get())

	kv.setErr = errors.New("boom")
	cfg.PrimaryColor = "#000000"
	require.Error(t, repo.Replace(ctx, cfg))
	assert.Equal(t, "#112233", repo.Get().PrimaryColor)
}
