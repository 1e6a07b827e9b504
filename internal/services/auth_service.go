package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"ocelo_loyalty_backend/internal/models"
	"ocelo_loyalty_backend/internal/repositories"
	"ocelo_loyalty_backend/pkg/utils"

	"golang.org/x/crypto/bcrypt"
)

// --- Custom Service Errors ---
var (
	ErrInvalidCredentials = errors.New("invalid email/username or password")
	ErrTokenGeneration    = errors.New("failed to generate token")
	ErrStaffNotConfigured = errors.New("staff credentials are not configured")
)

// passwordHashCost is lowered in tests.
var passwordHashCost = bcrypt.DefaultCost

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), passwordHashCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// StaffAccount is the single staff credential pair.
type StaffAccount struct {
	Username     string
	PasswordHash string
}

// StaffAccountFromEnv reads STAFF_USERNAME and STAFF_PASSWORD_HASH, hashing STAFF_PASSWORD
// when no hash is given. With neither set, staff login stays disabled.
func StaffAccountFromEnv() (StaffAccount, error) {
	account := StaffAccount{
		Username:     utils.Getenv("STAFF_USERNAME", "admin"),
		PasswordHash: utils.Getenv("STAFF_PASSWORD_HASH", ""),
	}
	if account.PasswordHash != "" {
		return account, nil
	}
	plain := utils.Getenv("STAFF_PASSWORD", "")
	if plain == "" {
		utils.LogWarn("No staff password configured, staff login is disabled")
		return account, nil
	}
	hashed, err := HashPassword(plain)
	if err != nil {
		return account, err
	}
	account.PasswordHash = hashed
	return account, nil
}

// --- AuthService Interface ---
type AuthService interface {
	AuthenticateStaff(username, password string) bool
	LoginStaff(req models.StaffCredentials) (*models.Session, error)
	AuthenticateCustomer(email, password string) (*models.Customer, error)
	LoginCustomer(req models.CustomerCredentials) (*models.Session, error)
	GetCustomerProfile(customerID string) (*models.Customer, error)
	MigrateLegacyPasswords(ctx context.Context) (int, error)
}

// --- authService Implementation ---
type authService struct {
	customerRepo repositories.CustomerRepository
	staff        StaffAccount
}

// NewAuthService creates a new instance of AuthService.
func NewAuthService(customerRepo repositories.CustomerRepository, staff StaffAccount) AuthService {
	return &authService{customerRepo: customerRepo, staff: staff}
}

// AuthenticateStaff reports whether the pair matches the configured staff account.
func (s *authService) AuthenticateStaff(username, password string) bool {
	if s.staff.PasswordHash == "" {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.staff.Username)) == 1
	passOK := bcrypt.CompareHashAndPassword([]byte(s.staff.PasswordHash), []byte(password)) == nil
	return userOK && passOK
}

// LoginStaff authenticates staff and issues a session token.
func (s *authService) LoginStaff(req models.StaffCredentials) (*models.Session, error) {
	if s.staff.PasswordHash == "" {
		return nil, ErrStaffNotConfigured
	}
	if !s.AuthenticateStaff(req.Username, req.Password) {
		return nil, ErrInvalidCredentials
	}
	return newSession(s.staff.Username, models.RoleStaff, nil)
}

// AuthenticateCustomer matches the email case-insensitively and checks the password hash.
func (s *authService) AuthenticateCustomer(email, password string) (*models.Customer, error) {
	customer, err := s.customerRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login attempt failed: %w", err)
	}
	if customer.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(customer.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	public := customer.Public()
	return &public, nil
}

// LoginCustomer authenticates a customer and issues a session token.
func (s *authService) LoginCustomer(req models.CustomerCredentials) (*models.Session, error) {
	customer, err := s.AuthenticateCustomer(req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	return newSession(customer.ID, models.RoleCustomer, customer)
}

func newSession(subject, role string, customer *models.Customer) (*models.Session, error) {
	token, expiresAt, err := utils.GenerateAccessToken(subject, role)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenGeneration, err)
	}
	return &models.Session{Role: role, AccessToken: token, ExpiresAt: expiresAt, Customer: customer}, nil
}

// GetCustomerProfile retrieves the logged-in customer without credential fields.
func (s *authService) GetCustomerProfile(customerID string) (*models.Customer, error) {
	customer, err := s.customerRepo.GetByID(customerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to retrieve customer profile: %w", err)
	}
	public := customer.Public()
	return &public, nil
}

// MigrateLegacyPasswords hashes any plaintext passwords imported from older data and clears them.
func (s *authService) MigrateLegacyPasswords(ctx context.Context) (int, error) {
	pending := false
	for _, c := range s.customerRepo.List() {
		if c.Password != "" {
			pending = true
			break
		}
	}
	if !pending {
		return 0, nil
	}

	migrated := 0
	err := s.customerRepo.Mutate(ctx, func(customers []models.Customer) ([]models.Customer, error) {
		migrated = 0
		for i := range customers {
			if customers[i].Password == "" {
				continue
			}
			if customers[i].PasswordHash == "" {
				hashed, err := HashPassword(customers[i].Password)
				if err != nil {
					return nil, err
				}
				customers[i].PasswordHash = hashed
			}
			customers[i].Password = ""
			migrated++
		}
		return customers, nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to migrate legacy passwords: %w", err)
	}
	if migrated > 0 {
		utils.LogInfo("Upgraded legacy plaintext passwords", map[string]interface{}{"count": migrated})
	}
	return migrated, nil
}
