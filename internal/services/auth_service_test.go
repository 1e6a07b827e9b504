package services

import (
	"context"
	"errors"
	"testing"

	"ocelo_loyalty_backend/internal/models"
	"ocelo_loyalty_backend/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStaffAccount(t *testing.T) StaffAccount {
	t.Helper()
	hashed, err := HashPassword("ocelo-admin")
	require.NoError(t, err)
	return StaffAccount{Username: "admin", PasswordHash: hashed}
}

func TestAuthenticateStaff(t *testing.T) {
	svc := NewAuthService(newTestStore(t).customers, newStaffAccount(t))

	assert.True(t, svc.AuthenticateStaff("admin", "ocelo-admin"))
	assert.False(t, svc.AuthenticateStaff("Admin", "ocelo-admin"))
	assert.False(t, svc.AuthenticateStaff("admin", "wrong"))

	session, err := svc.LoginStaff(models.StaffCredentials{Username: "admin", Password: "ocelo-admin"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleStaff, session.Role)
	claims, err := utils.ValidateToken(session.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Subject)
	assert.Equal(t, models.RoleStaff, claims.Role)

	_, err = svc.LoginStaff(models.StaffCredentials{Username: "admin", Password: "nope"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginStaff_NotConfigured(t *testing.T) {
	svc := NewAuthService(newTestStore(t).customers, StaffAccount{Username: "admin"})
	assert.False(t, svc.AuthenticateStaff("admin", ""))
	_, err := svc.LoginStaff(models.StaffCredentials{Username: "admin", Password: "x"})
	assert.ErrorIs(t, err, ErrStaffNotConfigured)
}

func TestStaffAccountFromEnv(t *testing.T) {
	t.Setenv("STAFF_USERNAME", "gerencia")
	t.Setenv("STAFF_PASSWORD_HASH", "")
	t.Setenv("STAFF_PASSWORD", "plain-secret")

	account, err := StaffAccountFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "gerencia", account.Username)
	assert.NotEqual(t, "plain-secret", account.PasswordHash)

	svc := NewAuthService(newTestStore(t).customers, account)
	assert.True(t, svc.AuthenticateStaff("gerencia", "plain-secret"))
}

func TestCustomerLoginAndLegacyMigration(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, models.Customer{
		ID: "user_legacy", Name: "Legacy", Email: "Legacy@Ocelo.com", Password: "hunter22", ReferralCode: "OCELO-LEG01",
	}, models.Customer{
		ID: "user_nopass", Name: "Walk-in", Email: "walkin@ocelo.com", ReferralCode: "OCELO-WALK1",
	})
	svc := NewAuthService(store.customers, newStaffAccount(t))

	_, err := svc.LoginCustomer(models.CustomerCredentials{Email: "legacy@ocelo.com", Password: "hunter22"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	n, err := svc.MigrateLegacyPasswords(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	stored, err := store.customers.GetByID("user_legacy")
	require.NoError(t, err)
	assert.Empty(t, stored.Password)
	assert.NotEmpty(t, stored.PasswordHash)

	session, err := svc.LoginCustomer(models.CustomerCredentials{Email: "LEGACY@ocelo.com", Password: "hunter22"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleCustomer, session.Role)
	require.NotNil(t, session.Customer)
	assert.Equal(t, "user_legacy", session.Customer.ID)
	assert.Empty(t, session.Customer.PasswordHash)

	_, err = svc.LoginCustomer(models.CustomerCredentials{Email: "legacy@ocelo.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.LoginCustomer(models.CustomerCredentials{Email: "walkin@ocelo.com", Password: ""})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.LoginCustomer(models.CustomerCredentials{Email: "ghost@ocelo.com", Password: "x"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	n, err = svc.MigrateLegacyPasswords(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestGetCustomerProfile(t *testing.T) {
	svc := NewAuthService(newTestStore(t).customers, StaffAccount{})

	c, err := svc.GetCustomerProfile("user_1")
	require.NoError(t, err)
	assert.Equal(t, "Mariana Rodriguez", c.Name)

	_, err = svc.GetCustomerProfile("ghost")
	assert.ErrorIs(t, err, ErrCustomerNotFound)
}

func TestMigrateLegacyPasswords_NoWriteWhenNothingToMigrate(t *testing.T) {
	store := newTestStore(t)
	store.kv.err = errors.New("read-only storage")
	svc := NewAuthService(store.customers, StaffAccount{})

	n, err := svc.MigrateLegacyPasswords(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMigrateLegacyPasswords_ImportedDuplicateEmails(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t,
		models.Customer{ID: "u1", Name: "Ana", Email: "a@x.com", Password: "hunter22", ReferralCode: "OCELO-AAAA1", TotalPoints: 1000},
		models.Customer{ID: "u2", Name: "Ana B", Email: "A@x.com", ReferralCode: "OCELO-AAAA2"},
	)
	svc := NewAuthService(store.customers, StaffAccount{})

	n, err := svc.MigrateLegacyPasswords(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	ledger := NewLedgerService(store.customers, store.products, store.settings)
	c, err := ledger.Redeem(ctx, "u1", 100, "Coupon")
	require.NoError(t, err)
	assert.Equal(t, 900, c.TotalPoints)
}
