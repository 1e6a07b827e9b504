package services

import (
	"context"
	"testing"

	"ocelo_loyalty_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(i int) *int { return &i }

func TestProductService(t *testing.T) {
	store := newTestStore(t)
	svc := NewProductService(store.products)
	ctx := context.Background()

	p, err := svc.CreateProduct(ctx, CreateProductRequest{Name: "Round Tortoise", Category: "Receta", Price: 30000, Stock: 8})
	require.NoError(t, err)
	assert.Regexp(t, `^prod_[0-9a-f-]{36}$`, p.ID)

	_, err = svc.CreateProduct(ctx, CreateProductRequest{Name: "Bad", Category: "Sol", Price: -1})
	assert.ErrorIs(t, err, ErrValidation)

	sol, err := svc.GetProducts("sol")
	require.NoError(t, err)
	assert.Len(t, sol, 2)

	p, err = svc.UpdateProduct(ctx, p.ID, UpdateProductRequest{Stock: intPtr(2)})
	require.NoError(t, err)
	assert.Equal(t, 2, p.Stock)
	assert.Equal(t, 30000, p.Price)

	_, err = svc.UpdateProduct(ctx, p.ID, UpdateProductRequest{Stock: intPtr(-3)})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.UpdateProduct(ctx, "missing", UpdateProductRequest{})
	assert.ErrorIs(t, err, ErrProductNotFound)

	require.NoError(t, svc.DeleteProduct(ctx, p.ID))
	assert.ErrorIs(t, svc.DeleteProduct(ctx, p.ID), ErrProductNotFound)
	_, err = svc.GetProductByID(p.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestSettingService(t *testing.T) {
	store := newTestStore(t)
	svc := NewSettingService(store.settings)
	ctx := context.Background()

	cfg := svc.GetConfig()
	assert.Equal(t, 365, cfg.PointExpiryDays)

	cfg.Currency = " usd "
	cfg.PointsPerArs = 0.1
	updated, err := svc.ReplaceConfig(ctx, cfg)
	require.NoError(t, err)
	assert.Equal(t, "USD", updated.Currency)
	assert.Equal(t, 0.1, svc.GetConfig().PointsPerArs)

	cfg.PointExpiryDays = 0
	_, err = svc.ReplaceConfig(ctx, cfg)
	assert.ErrorIs(t, err, ErrValidation)

	cfg.PointExpiryDays = 30
	cfg.PointsPerArs = -1
	_, err = svc.ReplaceConfig(ctx, cfg)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestReportService(t *testing.T) {
	store := newTestStore(t)
	ledger := newTestLedger(store)
	ctx := context.Background()

	_, err := ledger.Redeem(ctx, "user_1", 450, "Redeemed: kit")
	require.NoError(t, err)
	_, err = ledger.EarnPurchase(ctx, "user_2", PurchaseRequest{Amount: 2000})
	require.NoError(t, err)

	svc := NewReportService(store.customers, store.products)
	summary := svc.DashboardSummary()
	assert.Equal(t, models.DashboardSummary{
		CustomerCount:     3,
		ProductCount:      2,
		LowStockProducts:  1,
		RedemptionCount:   1,
		PointsOutstanding: 10000 + 16000 + 2200,
		PointsRedeemed:    450,
		PointsIssued:      100,
	}, summary)

	stats := svc.ReferralStats()
	require.Len(t, stats, 3)
	assert.Equal(t, "user_1", stats[0].OwnerID)
	assert.Equal(t, 1, stats[0].ReferralCount)
	assert.Equal(t, ReferrerBonusPoints, stats[0].TotalPointsGenerated)
	assert.True(t, stats[0].Active)
	assert.False(t, stats[1].Active)
}

func TestReportService_LowStockBoundary(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	base := NewReportService(store.customers, store.products).DashboardSummary().LowStockProducts

	require.NoError(t, store.products.Create(ctx, models.Product{ID: "at", Name: "At threshold", Category: "Accesorios", Stock: LowStockThreshold}))
	require.NoError(t, store.products.Create(ctx, models.Product{ID: "above", Name: "Above threshold", Category: "Accesorios", Stock: LowStockThreshold + 1}))

	summary := NewReportService(store.customers, store.products).DashboardSummary()
	assert.Equal(t, base+1, summary.LowStockProducts)
}
