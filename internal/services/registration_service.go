package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"ocelo_loyalty_backend/internal/models"
	"ocelo_loyalty_backend/internal/repositories"
	"ocelo_loyalty_backend/pkg/utils"

	"github.com/google/uuid"
)

var (
	ErrEmailExists             = errors.New("email already exists")
	ErrInvalidVerificationCode = errors.New("invalid verification code")
	ErrVerificationExpired     = errors.New("verification code expired or not requested")
	ErrCodeDelivery            = errors.New("could not deliver verification code")
	ErrTooManyAttempts         = errors.New("too many wrong verification codes")
)

// Referral rewards.
const (
	ReferrerBonusPoints = 5000
	WelcomeBonusPoints  = 500
	referralCodePrefix  = "OCELO-"
	referralCodeLength  = 5
	referralCodeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	minPasswordLength   = 6
	generatedPassLength = 8
)

func randomFromCharset(length int) (string, error) {
	charsetLen := big.NewInt(int64(len(referralCodeCharset)))
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, charsetLen)
		if err != nil {
			return "", err
		}
		b.WriteByte(referralCodeCharset[n.Int64()])
	}
	return b.String(), nil
}

// GeneratePassword returns an 8 character password from [A-Z0-9] for accounts created by staff.
func GeneratePassword() (string, error) {
	pass, err := randomFromCharset(generatedPassLength)
	if err != nil {
		return "", fmt.Errorf("could not generate password: %w", err)
	}
	return pass, nil
}

// GenerateReferralCode returns an OCELO- code that taken does not report as in use.
func GenerateReferralCode(taken func(code string) bool) (string, error) {
	for attempt := 0; attempt < 100; attempt++ {
		suffix, err := randomFromCharset(referralCodeLength)
		if err != nil {
			return "", fmt.Errorf("could not generate referral code: %w", err)
		}
		if code := referralCodePrefix + suffix; taken == nil || !taken(code) {
			return code, nil
		}
	}
	return "", errors.New("could not generate a unique referral code")
}

// --- RegistrationService Interface ---
type RegistrationService interface {
	StartRegistration(ctx context.Context, form models.RegistrationForm) (time.Time, error)
	CompleteRegistration(ctx context.Context, email, code string) (*models.Customer, error)
	Register(ctx context.Context, form models.RegistrationForm) (*models.Customer, error)
}

type registrationService struct {
	customerRepo repositories.CustomerRepository
	issuer       CodeIssuer
	sender       CodeSender
	pending      *pendingRegistrations
	nowFunc      func() time.Time
}

// NewRegistrationService creates a new instance of RegistrationService.
func NewRegistrationService(customerRepo repositories.CustomerRepository, issuer CodeIssuer, sender CodeSender) RegistrationService {
	return &registrationService{
		customerRepo: customerRepo,
		issuer:       issuer,
		sender:       sender,
		pending:      newPendingRegistrations(),
		nowFunc:      time.Now,
	}
}

func validateRegistrationForm(form models.RegistrationForm) error {
	if utils.IsEmpty(form.Name) {
		return fmt.Errorf("%w: name cannot be empty", ErrValidation)
	}
	if !utils.IsValidEmail(form.Email) {
		return fmt.Errorf("%w: email format is invalid", ErrValidation)
	}
	if !utils.IsValidPasswordLength(form.Password, minPasswordLength) {
		return fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLength)
	}
	return nil
}

func (s *registrationService) emailTaken(email string) (bool, error) {
	_, err := s.customerRepo.GetByEmail(email)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, repositories.ErrNotFound) {
		return false, nil
	}
	return false, err
}

// StartRegistration validates the form, rejects known emails and sends a verification code.
func (s *registrationService) StartRegistration(ctx context.Context, form models.RegistrationForm) (time.Time, error) {
	if err := validateRegistrationForm(form); err != nil {
		return time.Time{}, err
	}
	taken, err := s.emailTaken(form.Email)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to check email uniqueness: %w", err)
	}
	if taken {
		return time.Time{}, ErrEmailExists
	}
	if code := utils.NormalizeCode(form.ReferralCode); code != "" {
		if _, err := s.customerRepo.GetByReferralCode(code); errors.Is(err, repositories.ErrNotFound) {
			utils.LogWarn("Registration started with an unknown referral code", map[string]interface{}{"code": code})
		}
	}

	code, err := s.issuer.Issue()
	if err != nil {
		return time.Time{}, err
	}
	now := s.nowFunc()
	s.pending.sweep(now)

	key := utils.NormalizeEmail(form.Email)
	expiresAt := now.Add(VerificationTTL)
	s.pending.put(key, models.PendingRegistration{Form: form, Code: code, ExpiresAt: expiresAt})

	if err := s.sender.SendVerificationCode(ctx, key, form.Name, code); err != nil {
		s.pending.remove(key)
		utils.LogError(err, "Failed to send verification code")
		return time.Time{}, fmt.Errorf("%w: %v", ErrCodeDelivery, err)
	}
	return expiresAt, nil
}

// CompleteRegistration creates the account once the code for email matches. After
// MaxVerificationAttempts wrong codes the registration has to be started again.
func (s *registrationService) CompleteRegistration(ctx context.Context, email, code string) (*models.Customer, error) {
	key := utils.NormalizeEmail(email)
	pending, ok := s.pending.get(key)
	if !ok {
		return nil, ErrVerificationExpired
	}
	if s.nowFunc().After(pending.ExpiresAt) {
		s.pending.remove(key)
		return nil, ErrVerificationExpired
	}
	if strings.TrimSpace(code) != pending.Code {
		if s.pending.miss(key) == 0 {
			utils.LogWarn("Pending registration dropped after repeated wrong codes", map[string]interface{}{"email": key})
			return nil, ErrTooManyAttempts
		}
		return nil, ErrInvalidVerificationCode
	}

	customer, err := s.Register(ctx, pending.Form)
	if err != nil {
		if errors.Is(err, ErrEmailExists) {
			s.pending.remove(key)
		}
		return nil, err
	}
	s.pending.remove(key)
	return customer, nil
}

// Register creates the customer and applies referral bonuses when the code names an existing customer.
func (s *registrationService) Register(ctx context.Context, form models.RegistrationForm) (*models.Customer, error) {
	if err := validateRegistrationForm(form); err != nil {
		return nil, err
	}
	hashed, err := HashPassword(form.Password)
	if err != nil {
		return nil, err
	}

	now := s.nowFunc()
	today := now.Format(models.DateLayout)
	expiry := now.AddDate(1, 0, 0).Format(models.DateLayout)
	submittedCode := utils.NormalizeCode(form.ReferralCode)

	var created models.Customer
	err = s.customerRepo.Mutate(ctx, func(customers []models.Customer) ([]models.Customer, error) {
		codes := make(map[string]struct{}, len(customers))
		referrer := -1
		for i, c := range customers {
			if utils.NormalizeEmail(c.Email) == utils.NormalizeEmail(form.Email) {
				return nil, ErrEmailExists
			}
			code := utils.NormalizeCode(c.ReferralCode)
			codes[code] = struct{}{}
			if submittedCode != "" && code == submittedCode && referrer == -1 {
				referrer = i
			}
		}

		referralCode, err := GenerateReferralCode(func(code string) bool {
			_, used := codes[code]
			return used
		})
		if err != nil {
			return nil, err
		}

		created = models.Customer{
			ID:           "user_" + uuid.NewString(),
			Name:         strings.TrimSpace(form.Name),
			Email:        strings.TrimSpace(form.Email),
			PasswordHash: hashed,
			Phone:        strings.TrimSpace(form.Phone),
			ReferralCode: referralCode,
			History:      []models.Transaction{},
			PointsDetail: []models.PointEntry{},
			Referrals:    []string{},
		}

		if referrer >= 0 {
			owner := &customers[referrer]
			owner.TotalPoints += ReferrerBonusPoints
			owner.PointsDetail = append([]models.PointEntry{{
				ID:          "bonus_ref_" + uuid.NewString(),
				Amount:      ReferrerBonusPoints,
				Type:        models.EntryTypeReferral,
				Date:        today,
				ExpiryDate:  expiry,
				Status:      models.EntryStatusActive,
				Description: "Referral bonus for " + created.Name,
			}}, owner.PointsDetail...)
			owner.Referrals = append(owner.Referrals, created.ID)

			created.TotalPoints = WelcomeBonusPoints
			created.PointsDetail = []models.PointEntry{{
				ID:          "welcome_" + uuid.NewString(),
				Amount:      WelcomeBonusPoints,
				Type:        models.EntryTypeReferral,
				Date:        today,
				ExpiryDate:  expiry,
				Status:      models.EntryStatusActive,
				Description: "Welcome bonus for joining by referral",
			}}
		} else if submittedCode != "" {
			utils.LogInfo("Referral code did not match any customer", map[string]interface{}{"code": submittedCode})
		}

		return append(customers, created), nil
	})
	if err != nil {
		if errors.Is(err, ErrEmailExists) || errors.Is(err, ErrValidation) {
			return nil, err
		}
		if repositories.IsConstraint(err, repositories.ConstraintCustomerEmail) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("failed to register customer: %w", err)
	}

	utils.LogInfo("Customer registered", map[string]interface{}{"customer_id": created.ID, "referred": created.TotalPoints > 0})
	public := created.Public()
	return &public, nil
}
