package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"ocelo_loyalty_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomerRepository_SeedsDefaultsWhenEmpty(t *testing.T) {
	kv := newMemKV()
	repo, err := NewCustomerRepository(context.Background(), kv, BuiltinDefaults().Customers)
	require.NoError(t, err)

	customers := repo.List()
	require.Len(t, customers, 3)
	assert.Equal(t, "user_sandra", customers[0].ID)
	assert.NotNil(t, customers[0].PointsDetail)

	raw, err := kv.Get(context.Background(), KeyCustomers)
	require.NoError(t, err)
	var stored []models.Customer
	require.NoError(t, json.Unmarshal(raw, &stored))
	assert.Len(t, stored, 3)
}

func TestCustomerRepository_MalformedBlobFallsBack(t *testing.T) {
	kv := newMemKV()
	kv.data[KeyCustomers] = []byte(`{not json`)

	repo, err := NewCustomerRepository(context.Background(), kv, BuiltinDefaults().Customers)
	require.NoError(t, err)
	assert.Len(t, repo.List(), 3)
}

func TestCustomerRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	repo, err := NewCustomerRepository(ctx, kv, nil)
	require.NoError(t, err)

	c := models.Customer{
		ID: "user_9", Name: "Lucia", Email: "lucia@ocelo.com", ReferralCode: "OCELO-LU9X2", TotalPoints: 150,
		History:      []models.Transaction{{ID: "tx_1", Date: "2024-05-01", Amount: 3000, PointsEarned: 150, Items: []string{"Armazón"}}},
		PointsDetail: []models.PointEntry{{ID: "p_1", Amount: 150, Type: models.EntryTypePurchase, Date: "2024-05-01", ExpiryDate: "2025-05-01", Status: models.EntryStatusActive, Description: "Compra"}},
	}
	require.NoError(t, repo.Create(ctx, c))

	reloaded, err := NewCustomerRepository(ctx, kv, BuiltinDefaults().Customers)
	require.NoError(t, err)
	got, err := reloaded.GetByID("user_9")
	require.NoError(t, err)
	assert.Equal(t, repo.List(), reloaded.List())
	assert.Equal(t, 150, got.TotalPoints)
	assert.Equal(t, []string{}, got.Referrals)
}

func TestCustomerRepository_Lookups(t *testing.T) {
	repo, err := NewCustomerRepository(context.Background(), newMemKV(), BuiltinDefaults().Customers)
	require.NoError(t, err)

	c, err := repo.GetByEmail("  JUAN@ocelo.com ")
	require.NoError(t, err)
	assert.Equal(t, "user_2", c.ID)

	c, err = repo.GetByReferralCode(" ocelo-mari-2024")
	require.NoError(t, err)
	assert.Equal(t, "user_1", c.ID)

	_, err = repo.GetByReferralCode("")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.GetByID("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCustomerRepository_ReturnedCopiesAreIsolated(t *testing.T) {
	repo, err := NewCustomerRepository(context.Background(), newMemKV(), BuiltinDefaults().Customers)
	require.NoError(t, err)

	c, err := repo.GetByID("user_1")
	require.NoError(t, err)
	c.Referrals[0] = "tampered"
	c.TotalPoints = 0

	again, err := repo.GetByID("user_1")
	require.NoError(t, err)
	assert.Equal(t, []string{"user_2"}, again.Referrals)
	assert.Equal(t, 16450, again.TotalPoints)
}

func TestCustomerRepository_Uniqueness(t *testing.T) {
	ctx := context.Background()
	repo, err := NewCustomerRepository(ctx, newMemKV(), BuiltinDefaults().Customers)
	require.NoError(t, err)

	err = repo.Create(ctx, models.Customer{ID: "user_1", Email: "other@ocelo.com"})
	assert.ErrorIs(t, err, ErrDuplicateKey)
	assert.True(t, IsConstraint(err, ConstraintCustomerID))

	err = repo.Create(ctx, models.Customer{ID: "user_x", Email: "Sandra@Ocelo.com"})
	assert.True(t, IsConstraint(err, ConstraintCustomerEmail))

	err = repo.Create(ctx, models.Customer{ID: "user_y", Email: "y@ocelo.com", ReferralCode: "ocelo-juan-11"})
	assert.True(t, IsConstraint(err, ConstraintCustomerReferralCode))

	assert.Len(t, repo.List(), 3)
}

func TestCustomerRepository_MutateRollsBackOnSaveError(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	repo, err := NewCustomerRepository(ctx, kv, BuiltinDefaults().Customers)
	require.NoError(t, err)

	kv.setErr = errors.New("disk full")
	err = repo.Mutate(ctx, func(customers []models.Customer) ([]models.Customer, error) {
		customers[0].TotalPoints = 1
		return customers, nil
	})
	require.Error(t, err)

	c, err := repo.GetByID("user_sandra")
	require.NoError(t, err)
	assert.Equal(t, 10000, c.TotalPoints)
}

func TestCustomerRepository_MutateAndDelete(t *testing.T) {
	ctx := context.Background()
	repo, err := NewCustomerRepository(ctx, newMemKV(), BuiltinDefaults().Customers)
	require.NoError(t, err)

	require.NoError(t, repo.Mutate(ctx, func(customers []models.Customer) ([]models.Customer, error) {
		for i := range customers {
			if customers[i].ID == "user_2" {
				customers[i].Phone = "+54 9 11 0000-0000"
			}
		}
		return customers, nil
	}))

	c, err := repo.GetByID("user_2")
	require.NoError(t, err)
	assert.Equal(t, "+54 9 11 0000-0000", c.Phone)

	require.NoError(t, repo.Delete(ctx, "user_2"))
	assert.ErrorIs(t, repo.Delete(ctx, "user_2"), ErrNotFound)
	assert.Len(t, repo.List(), 2)
}

func TestCustomerRepository_StoredDuplicatesDoNotBlockWrites(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	kv.data[KeyCustomers] = []byte(`[
		{"id":"u1","name":"Ana","email":"a@x.com","referralCode":"OCELO-AAAAA","totalPoints":1000},
		{"id":"u2","name":"Ana B","email":"A@x.com","referralCode":"OCELO-AAAAA","totalPoints":50}
	]`)

	repo, err := NewCustomerRepository(ctx, kv, BuiltinDefaults().Customers)
	require.NoError(t, err)
	require.Len(t, repo.List(), 2)

	err = repo.Mutate(ctx, func(customers []models.Customer) ([]models.Customer, error) {
		customers[0].TotalPoints -= 100
		return customers, nil
	})
	require.NoError(t, err)
	c, err := repo.GetByID("u1")
	require.NoError(t, err)
	assert.Equal(t, 900, c.TotalPoints)

	require.NoError(t, repo.Create(ctx, models.Customer{ID: "u3", Email: "new@x.com", ReferralCode: "OCELO-BBBBB"}))

	err = repo.Create(ctx, models.Customer{ID: "u4", Email: "a@X.com"})
	assert.True(t, IsConstraint(err, ConstraintCustomerEmail))
	err = repo.Create(ctx, models.Customer{ID: "u5", Email: "z@x.com", ReferralCode: "ocelo-aaaaa"})
	assert.True(t, IsConstraint(err, ConstraintCustomerReferralCode))
	assert.Len(t, repo.List(), 3)
}

func TestCheckCustomerUniqueness(t *testing.T) {
	dupes := []models.Customer{{ID: "u1", Email: "a@x.com"}, {ID: "u2", Email: "A@x.com"}}

	assert.True(t, IsConstraint(checkCustomerUniqueness(nil, dupes), ConstraintCustomerEmail))
	assert.NoError(t, checkCustomerUniqueness(dupes, dupes))

	renamed := []models.Customer{{ID: "u1", Email: "a@x.com"}, {ID: "u2", Email: "b@x.com"}}
	assert.NoError(t, checkCustomerUniqueness(dupes, renamed))

	sameID := []models.Customer{{ID: "u1", Email: "a@x.com"}, {ID: "u1", Email: "c@x.com"}}
	assert.True(t, IsConstraint(checkCustomerUniqueness(renamed, sameID), ConstraintCustomerID))
}

func TestCustomerRepository_ConcurrentMutationsDoNotLoseWrites(t *testing.T) {
	ctx := context.Background()
	repo, err := NewCustomerRepository(ctx, newMemKV(), BuiltinDefaults().Customers)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = repo.Mutate(ctx, func(customers []models.Customer) ([]models.Customer, error) {
				for j := range customers {
					if customers[j].ID == "user_2" {
						customers[j].TotalPoints -= 10
					}
				}
				return customers, nil
			})
		}()
	}
	wg.Wait()

	c, err := repo.GetByID("user_2")
	require.NoError(t, err)
	assert.Equal(t, 2100-500, c.TotalPoints)
}
