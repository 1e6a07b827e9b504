package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ocelo_loyalty_backend/internal/models"
	"ocelo_loyalty_backend/internal/repositories"
	"ocelo_loyalty_backend/pkg/utils"

	"github.com/google/uuid"
)

// --- Custom Service Errors for Customer ---
var (
	ErrCustomerNotFound   = errors.New("customer not found")
	ErrReferralCodeExists = errors.New("referral code already exists")
	ErrValidation         = errors.New("data validation error")
)

// --- Customer DTOs ---
type CreateCustomerRequest struct {
	Name         string `json:"name" binding:"required"`
	Email        string `json:"email" binding:"required"`
	Phone        string `json:"phone"`
	Password     string `json:"password"`
	ReferralCode string `json:"referralCode"`
}

type UpdateCustomerRequest struct {
	Name         *string `json:"name"`
	Email        *string `json:"email"`
	Phone        *string `json:"phone"`
	Password     *string `json:"password"`
	ReferralCode *string `json:"referralCode"`
}

// --- CustomerService Interface ---
type CustomerService interface {
	CreateCustomer(ctx context.Context, req CreateCustomerRequest) (*models.CreatedCustomer, error)
	GetCustomerByID(customerID string) (*models.Customer, error)
	GetCustomers(page, pageSize int, searchTerm string) ([]models.Customer, int, error)
	UpdateCustomer(ctx context.Context, customerID string, req UpdateCustomerRequest) (*models.Customer, error)
	DeleteCustomer(ctx context.Context, customerID string) error
}

// --- customerService Implementation ---
type customerService struct {
	customerRepo repositories.CustomerRepository
}

// NewCustomerService creates a new instance of CustomerService.
func NewCustomerService(repo repositories.CustomerRepository) CustomerService {
	return &customerService{customerRepo: repo}
}

func mapCustomerWriteError(err error, op string) error {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return ErrCustomerNotFound
	case repositories.IsConstraint(err, repositories.ConstraintCustomerEmail):
		return ErrEmailExists
	case repositories.IsConstraint(err, repositories.ConstraintCustomerReferralCode):
		return ErrReferralCodeExists
	case errors.Is(err, ErrValidation):
		return err
	}
	return fmt.Errorf("failed to %s customer: %w", op, err)
}

// CreateCustomer registers a customer by hand: zero balance, empty ledger, no referral bonus.
// Without a password one is generated and returned once so staff can hand it over.
func (s *customerService) CreateCustomer(ctx context.Context, req CreateCustomerRequest) (*models.CreatedCustomer, error) {
	if utils.IsEmpty(req.Name) {
		return nil, fmt.Errorf("%w: name cannot be empty", ErrValidation)
	}
	if !utils.IsValidEmail(req.Email) {
		return nil, fmt.Errorf("%w: email format is invalid", ErrValidation)
	}

	customer := models.Customer{
		ID:           "user_" + uuid.NewString(),
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.TrimSpace(req.Email),
		Phone:        strings.TrimSpace(req.Phone),
		ReferralCode: utils.NormalizeCode(req.ReferralCode),
		History:      []models.Transaction{},
		PointsDetail: []models.PointEntry{},
		Referrals:    []string{},
	}
	password, generated := req.Password, ""
	if password == "" {
		var err error
		if generated, err = GeneratePassword(); err != nil {
			return nil, err
		}
		password = generated
	}
	if !utils.IsValidPasswordLength(password, minPasswordLength) {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLength)
	}
	hashed, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	customer.PasswordHash = hashed

	if customer.ReferralCode == "" {
		code, err := GenerateReferralCode(s.referralCodeTaken)
		if err != nil {
			return nil, err
		}
		customer.ReferralCode = code
	}

	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, mapCustomerWriteError(err, "create")
	}
	return &models.CreatedCustomer{Customer: customer.Public(), GeneratedPassword: generated}, nil
}

func (s *customerService) referralCodeTaken(code string) bool {
	_, err := s.customerRepo.GetByReferralCode(code)
	return err == nil
}

func (s *customerService) GetCustomerByID(customerID string) (*models.Customer, error) {
	customer, err := s.customerRepo.GetByID(customerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to get customer by ID: %w", err)
	}
	public := customer.Public()
	return &public, nil
}

// GetCustomers filters by name or email and returns one page plus the filtered total.
func (s *customerService) GetCustomers(page, pageSize int, searchTerm string) ([]models.Customer, int, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 10
	}
	searchTerm = strings.TrimSpace(searchTerm)

	matched := []models.Customer{}
	for _, c := range s.customerRepo.List() {
		if searchTerm == "" || utils.ContainsFold(c.Name, searchTerm) || utils.ContainsFold(c.Email, searchTerm) {
			matched = append(matched, c.Public())
		}
	}

	total := len(matched)
	start := (page - 1) * pageSize
	if start >= total {
		return []models.Customer{}, total, nil
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (s *customerService) UpdateCustomer(ctx context.Context, customerID string, req UpdateCustomerRequest) (*models.Customer, error) {
	if req.Name != nil && utils.IsEmpty(*req.Name) {
		return nil, fmt.Errorf("%w: name cannot be empty if provided", ErrValidation)
	}
	if req.Email != nil && !utils.IsValidEmail(*req.Email) {
		return nil, fmt.Errorf("%w: email format is invalid", ErrValidation)
	}
	if req.ReferralCode != nil && utils.NormalizeCode(*req.ReferralCode) == "" {
		return nil, fmt.Errorf("%w: referral code cannot be empty if provided", ErrValidation)
	}

	var passwordHash string
	if req.Password != nil {
		if !utils.IsValidPasswordLength(*req.Password, minPasswordLength) {
			return nil, fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLength)
		}
		hashed, err := HashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		passwordHash = hashed
	}

	var updated models.Customer
	err := s.customerRepo.Mutate(ctx, func(customers []models.Customer) ([]models.Customer, error) {
		for i := range customers {
			if customers[i].ID != customerID {
				continue
			}
			c := &customers[i]
			if req.Name != nil {
				c.Name = strings.TrimSpace(*req.Name)
			}
			if req.Email != nil {
				c.Email = strings.TrimSpace(*req.Email)
			}
			if req.Phone != nil {
				c.Phone = strings.TrimSpace(*req.Phone)
			}
			if req.ReferralCode != nil {
				c.ReferralCode = utils.NormalizeCode(*req.ReferralCode)
			}
			if passwordHash != "" {
				c.PasswordHash = passwordHash
				c.Password = ""
			}
			updated = c.Clone()
			return customers, nil
		}
		return nil, repositories.ErrNotFound
	})
	if err != nil {
		return nil, mapCustomerWriteError(err, "update")
	}
	public := updated.Public()
	return &public, nil
}

// DeleteCustomer removes the customer. Ids left in other customers' referral lists are kept as history.
func (s *customerService) DeleteCustomer(ctx context.Context, customerID string) error {
	if err := s.customerRepo.Delete(ctx, customerID); err != nil {
		return mapCustomerWriteError(err, "delete")
	}
	return nil
}
