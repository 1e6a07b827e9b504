package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"sort"
	"strings"
	"time"

	"ocelo_loyalty_backend/internal/models"
	"ocelo_loyalty_backend/internal/repositories"
	"ocelo_loyalty_backend/pkg/utils"

	"github.com/google/uuid"
)

var (
	ErrNothingToRedeem = errors.New("balance is zero, nothing to redeem")
)

// DefaultExpiryWindowDays is the look-ahead used when no window is requested.
const DefaultExpiryWindowDays = 60

// MaxPoints bounds both the points one purchase can earn and a customer's balance.
const MaxPoints = math.MaxInt32

// InsufficientPointsError is returned when a redemption costs more than the balance.
type InsufficientPointsError struct {
	Balance   int
	Cost      int
	Shortfall int
	Language  string
}

func (e *InsufficientPointsError) Error() string {
	return fmt.Sprintf("insufficient points: %s pts missing", utils.FormatPoints(e.Shortfall, e.Language))
}

// --- DTOs ---
type RedeemRequest struct {
	ProductID string `json:"productId"`
	// FullBalance redeems the whole balance for a coupon when no product is named.
	FullBalance bool `json:"fullBalance"`
}

type PurchaseRequest struct {
	Amount float64  `json:"amount" binding:"required"`
	Items  []string `json:"items"`
}

// --- LedgerService Interface ---
type LedgerService interface {
	Redeem(ctx context.Context, customerID string, cost int, description string) (*models.Customer, error)
	RedeemProduct(ctx context.Context, customerID, productID string) (*models.Customer, error)
	RedeemBalance(ctx context.Context, customerID string) (*models.Customer, error)
	EarnPurchase(ctx context.Context, customerID string, req PurchaseRequest) (*models.Customer, error)
	ExpiringSoon(customerID string, windowDays int) (*models.ExpiringPoints, error)
	Audit(customerID string) (*models.BalanceAudit, error)
	ShareLink(customerID string) (string, error)
	Referrals(customerID string) ([]models.Customer, error)
}

type ledgerService struct {
	customerRepo repositories.CustomerRepository
	productRepo  repositories.ProductRepository
	settingRepo  repositories.SettingRepository
	nowFunc      func() time.Time
}

// NewLedgerService creates a new instance of LedgerService.
func NewLedgerService(customerRepo repositories.CustomerRepository, productRepo repositories.ProductRepository, settingRepo repositories.SettingRepository) LedgerService {
	return &ledgerService{
		customerRepo: customerRepo,
		productRepo:  productRepo,
		settingRepo:  settingRepo,
		nowFunc:      time.Now,
	}
}

// updateCustomer runs fn on the customer inside a repository mutation and returns the result.
func (s *ledgerService) updateCustomer(ctx context.Context, customerID string, fn func(c *models.Customer) error) (*models.Customer, error) {
	var updated models.Customer
	err := s.customerRepo.Mutate(ctx, func(customers []models.Customer) ([]models.Customer, error) {
		for i := range customers {
			if customers[i].ID == customerID {
				if err := fn(&customers[i]); err != nil {
					return nil, err
				}
				updated = customers[i].Clone()
				return customers, nil
			}
		}
		return nil, ErrCustomerNotFound
	})
	if err != nil {
		return nil, err
	}
	public := updated.Public()
	return &public, nil
}

// Redeem debits cost from the balance and records a used redemption entry at the head of the ledger.
func (s *ledgerService) Redeem(ctx context.Context, customerID string, cost int, description string) (*models.Customer, error) {
	if cost <= 0 {
		return nil, fmt.Errorf("%w: redemption cost must be positive", ErrValidation)
	}
	lang := s.settingRepo.Get().Language
	today := s.nowFunc().Format(models.DateLayout)

	customer, err := s.updateCustomer(ctx, customerID, func(c *models.Customer) error {
		if c.TotalPoints < cost {
			return &InsufficientPointsError{Balance: c.TotalPoints, Cost: cost, Shortfall: cost - c.TotalPoints, Language: lang}
		}
		c.TotalPoints -= cost
		c.PointsDetail = append([]models.PointEntry{{
			ID:          "red_" + uuid.NewString(),
			Amount:      -cost,
			Type:        models.EntryTypeRedemption,
			Date:        today,
			Status:      models.EntryStatusUsed,
			Description: description,
		}}, c.PointsDetail...)
		return nil
	})
	if err != nil {
		var insufficient *InsufficientPointsError
		if errors.As(err, &insufficient) || errors.Is(err, ErrCustomerNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to redeem points: %w", err)
	}

	utils.LogInfo("Points redeemed", map[string]interface{}{"customer_id": customerID, "cost": cost, "balance": customer.TotalPoints})
	return customer, nil
}

// RedeemProduct redeems the product's price. Stock is informational and left untouched.
func (s *ledgerService) RedeemProduct(ctx context.Context, customerID, productID string) (*models.Customer, error) {
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product for redemption: %w", err)
	}
	return s.Redeem(ctx, customerID, product.Price, "Redeemed: "+product.Name)
}

// RedeemBalance converts the whole balance into a coupon.
func (s *ledgerService) RedeemBalance(ctx context.Context, customerID string) (*models.Customer, error) {
	customer, err := s.customerRepo.GetByID(customerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}
	if customer.TotalPoints <= 0 {
		return nil, ErrNothingToRedeem
	}
	return s.Redeem(ctx, customerID, customer.TotalPoints, "Full balance redeemed for coupon")
}

// EarnPurchase credits floor(amount * pointsPerArs) points for an in-store purchase.
func (s *ledgerService) EarnPurchase(ctx context.Context, customerID string, req PurchaseRequest) (*models.Customer, error) {
	if req.Amount <= 0 || math.IsInf(req.Amount, 0) || math.IsNaN(req.Amount) {
		return nil, fmt.Errorf("%w: purchase amount must be positive", ErrValidation)
	}
	cfg := s.settingRepo.Get()
	raw := math.Floor(req.Amount * cfg.PointsPerArs)
	if math.IsInf(raw, 0) || math.IsNaN(raw) || raw > MaxPoints {
		return nil, fmt.Errorf("%w: purchase amount earns more than %d points", ErrValidation, MaxPoints)
	}
	points := int(raw)

	now := s.nowFunc()
	today := now.Format(models.DateLayout)
	expiry := ""
	if cfg.PointExpiryDays > 0 {
		expiry = now.AddDate(0, 0, cfg.PointExpiryDays).Format(models.DateLayout)
	}
	items := []string{}
	for _, item := range req.Items {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}

	customer, err := s.updateCustomer(ctx, customerID, func(c *models.Customer) error {
		txID := "tx_" + uuid.NewString()
		c.History = append([]models.Transaction{{
			ID:           txID,
			Date:         today,
			Amount:       req.Amount,
			PointsEarned: points,
			Items:        items,
		}}, c.History...)
		if points <= 0 {
			return nil
		}
		if c.TotalPoints > MaxPoints-points {
			return fmt.Errorf("%w: balance would exceed %d points", ErrValidation, MaxPoints)
		}
		c.TotalPoints += points
		c.PointsDetail = append([]models.PointEntry{{
			ID:          "pur_" + uuid.NewString(),
			Amount:      points,
			Type:        models.EntryTypePurchase,
			Date:        today,
			ExpiryDate:  expiry,
			Status:      models.EntryStatusActive,
			Description: fmt.Sprintf("Purchase %s", txID),
		}}, c.PointsDetail...)
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrCustomerNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to record purchase: %w", err)
	}
	utils.LogInfo("Purchase recorded", map[string]interface{}{"customer_id": customerID, "amount": req.Amount, "points": points})
	return customer, nil
}

// ExpiringSoon lists active entries whose expiry falls on or before today plus windowDays,
// earliest first. Entries already past their expiry are included.
func (s *ledgerService) ExpiringSoon(customerID string, windowDays int) (*models.ExpiringPoints, error) {
	customer, err := s.customerRepo.GetByID(customerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}
	if windowDays <= 0 {
		windowDays = DefaultExpiryWindowDays
	}

	now := s.nowFunc()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	limit := today.AddDate(0, 0, windowDays)

	type dated struct {
		entry  models.PointEntry
		expiry time.Time
	}
	matches := []dated{}
	for _, e := range customer.PointsDetail {
		if e.Status != models.EntryStatusActive || e.ExpiryDate == "" {
			continue
		}
		expiry, err := time.Parse(models.DateLayout, e.ExpiryDate)
		if err != nil {
			utils.LogDebug("Skipping entry with unparseable expiry", map[string]interface{}{"entry_id": e.ID, "expiry": e.ExpiryDate})
			continue
		}
		if !expiry.After(limit) {
			matches = append(matches, dated{entry: e, expiry: expiry})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].expiry.Before(matches[j].expiry) })

	result := &models.ExpiringPoints{WindowDays: windowDays, Entries: make([]models.PointEntry, 0, len(matches))}
	for _, m := range matches {
		result.Entries = append(result.Entries, m.entry)
		result.Total += m.entry.Amount
	}
	return result, nil
}

// Audit compares the stored balance with the sum of the ledger entries.
func (s *ledgerService) Audit(customerID string) (*models.BalanceAudit, error) {
	customer, err := s.customerRepo.GetByID(customerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}
	derived := 0
	for _, e := range customer.PointsDetail {
		derived += e.Amount
	}
	audit := &models.BalanceAudit{
		CustomerID: customer.ID,
		Stored:     customer.TotalPoints,
		Derived:    derived,
		Drift:      customer.TotalPoints - derived,
	}
	if audit.Drift != 0 {
		utils.LogWarn("Balance drift detected", map[string]interface{}{"customer_id": customer.ID, "drift": audit.Drift})
	}
	return audit, nil
}

// ShareLink builds a WhatsApp share URL carrying the customer's referral code.
func (s *ledgerService) ShareLink(customerID string) (string, error) {
	customer, err := s.customerRepo.GetByID(customerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return "", ErrCustomerNotFound
		}
		return "", err
	}
	text := fmt.Sprintf("¡Hola! Te comparto mi código de Ocelo Vision: %s. Usalo en tu primera compra para obtener beneficios exclusivos.", customer.ReferralCode)
	return "https://wa.me/?text=" + strings.ReplaceAll(url.QueryEscape(text), "+", "%20"), nil
}

// Referrals returns the customers this one referred, skipping ids that no longer exist.
func (s *ledgerService) Referrals(customerID string) ([]models.Customer, error) {
	customer, err := s.customerRepo.GetByID(customerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}
	referred := []models.Customer{}
	for _, id := range customer.Referrals {
		c, err := s.customerRepo.GetByID(id)
		if err != nil {
			continue
		}
		referred = append(referred, c.Public())
	}
	return referred, nil
}
