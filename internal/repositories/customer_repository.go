package repositories

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"ocelo_loyalty_backend/internal/models"
	"ocelo_loyalty_backend/pkg/utils"
)

// Constraint names reported inside ErrDuplicateKey errors.
const (
	ConstraintCustomerID           = "customers_id_key"
	ConstraintCustomerEmail        = "customers_email_key"
	ConstraintCustomerReferralCode = "customers_referral_code_key"
)

// CustomerRepository holds the customer collection in memory and mirrors it to storage.
type CustomerRepository interface {
	List() []models.Customer
	GetByID(id string) (*models.Customer, error)
	GetByEmail(email string) (*models.Customer, error)
	GetByReferralCode(code string) (*models.Customer, error)
	Create(ctx context.Context, customer models.Customer) error
	Delete(ctx context.Context, id string) error
	// Mutate runs fn over a copy of the collection and, if fn succeeds without introducing a
	// new id, email or referral code collision, stores the result as the new collection.
	Mutate(ctx context.Context, fn func(customers []models.Customer) ([]models.Customer, error)) error
	Reload(ctx context.Context) error
}

type customerRepository struct {
	mu        sync.RWMutex
	kv        KVRepository
	defaults  []models.Customer
	customers []models.Customer
}

// NewCustomerRepository loads the customer collection, falling back to defaults.
func NewCustomerRepository(ctx context.Context, kv KVRepository, defaults []models.Customer) (CustomerRepository, error) {
	r := &customerRepository{kv: kv, defaults: cloneCustomers(defaults)}
	if err := r.Reload(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

func normalizeCustomer(c models.Customer) models.Customer {
	if c.History == nil {
		c.History = []models.Transaction{}
	}
	for i := range c.History {
		if c.History[i].Items == nil {
			c.History[i].Items = []string{}
		}
	}
	if c.PointsDetail == nil {
		c.PointsDetail = []models.PointEntry{}
	}
	if c.Referrals == nil {
		c.Referrals = []string{}
	}
	return c
}

func cloneCustomers(in []models.Customer) []models.Customer {
	out := make([]models.Customer, len(in))
	for i, c := range in {
		out[i] = normalizeCustomer(c).Clone()
	}
	return out
}

// Reload re-reads the collection from storage. With nothing usable stored, the defaults are
// adopted and written back so the next start reads them from storage.
func (r *customerRepository) Reload(ctx context.Context) error {
	loaded, ok := loadBlob[[]models.Customer](ctx, r.kv, KeyCustomers)

	r.mu.Lock()
	defer r.mu.Unlock()
	if ok {
		r.customers = cloneCustomers(loaded)
		if err := checkCustomerUniqueness(nil, r.customers); err != nil {
			utils.LogWarn("Stored customers contain duplicates; existing entries are kept as is", map[string]interface{}{"error": err.Error()})
		}
		return nil
	}
	r.customers = cloneCustomers(r.defaults)
	if err := saveBlob(ctx, r.kv, KeyCustomers, r.customers); err != nil {
		utils.LogError(err, "Failed to persist default customers")
	}
	return nil
}

// List returns copies of every customer in storage order.
func (r *customerRepository) List() []models.Customer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneCustomers(r.customers)
}

func (r *customerRepository) find(match func(models.Customer) bool) (*models.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.customers {
		if match(c) {
			found := c.Clone()
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

// GetByID retrieves a customer by id.
func (r *customerRepository) GetByID(id string) (*models.Customer, error) {
	return r.find(func(c models.Customer) bool { return c.ID == id })
}

// GetByEmail retrieves a customer by email, ignoring case.
func (r *customerRepository) GetByEmail(email string) (*models.Customer, error) {
	email = utils.NormalizeEmail(email)
	return r.find(func(c models.Customer) bool { return utils.NormalizeEmail(c.Email) == email })
}

// GetByReferralCode retrieves the owner of a referral code, ignoring case and surrounding space.
func (r *customerRepository) GetByReferralCode(code string) (*models.Customer, error) {
	code = utils.NormalizeCode(code)
	if code == "" {
		return nil, ErrNotFound
	}
	return r.find(func(c models.Customer) bool { return utils.NormalizeCode(c.ReferralCode) == code })
}

// Create appends a customer to the collection.
func (r *customerRepository) Create(ctx context.Context, customer models.Customer) error {
	return r.Mutate(ctx, func(customers []models.Customer) ([]models.Customer, error) {
		return append(customers, customer), nil
	})
}

// Delete removes the customer with the given id.
func (r *customerRepository) Delete(ctx context.Context, id string) error {
	return r.Mutate(ctx, func(customers []models.Customer) ([]models.Customer, error) {
		for i := range customers {
			if customers[i].ID == id {
				return append(customers[:i], customers[i+1:]...), nil
			}
		}
		return nil, ErrNotFound
	})
}

// Mutate applies fn atomically. The in-memory collection only changes once storage accepted it.
func (r *customerRepository) Mutate(ctx context.Context, fn func(customers []models.Customer) ([]models.Customer, error)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	next, err := fn(cloneCustomers(r.customers))
	if err != nil {
		return err
	}
	next = cloneCustomers(next)
	if err := checkCustomerUniqueness(r.customers, next); err != nil {
		return err
	}
	if err := saveBlob(ctx, r.kv, KeyCustomers, next); err != nil {
		return err
	}
	r.customers = next
	return nil
}

type customerKeyCounts struct {
	ids    map[string]int
	emails map[string]int
	codes  map[string]int
}

func countCustomerKeys(customers []models.Customer) customerKeyCounts {
	counts := customerKeyCounts{
		ids:    make(map[string]int, len(customers)),
		emails: make(map[string]int, len(customers)),
		codes:  make(map[string]int, len(customers)),
	}
	for _, c := range customers {
		counts.ids[c.ID]++
		if email := utils.NormalizeEmail(c.Email); email != "" {
			counts.emails[email]++
		}
		if code := utils.NormalizeCode(c.ReferralCode); code != "" {
			counts.codes[code]++
		}
	}
	return counts
}

// newCollision returns a key shared by several entries of next that was shared by fewer before.
func newCollision(before, next map[string]int) (string, bool) {
	for key, n := range next {
		if n > 1 && n > before[key] {
			return key, true
		}
	}
	return "", false
}

// checkCustomerUniqueness rejects collisions that next adds on top of before. Duplicates already
// present in before, such as those of an imported collection, are left alone.
func checkCustomerUniqueness(before, next []models.Customer) error {
	prev := countCustomerKeys(before)
	cur := countCustomerKeys(next)
	if id, dup := newCollision(prev.ids, cur.ids); dup {
		return fmt.Errorf("%w: id %q (constraint: %s)", ErrDuplicateKey, id, ConstraintCustomerID)
	}
	if email, dup := newCollision(prev.emails, cur.emails); dup {
		return fmt.Errorf("%w: email %q (constraint: %s)", ErrDuplicateKey, email, ConstraintCustomerEmail)
	}
	if code, dup := newCollision(prev.codes, cur.codes); dup {
		return fmt.Errorf("%w: referral code %q (constraint: %s)", ErrDuplicateKey, code, ConstraintCustomerReferralCode)
	}
	return nil
}

// IsConstraint reports whether a duplicate-key error names the given constraint.
func IsConstraint(err error, constraint string) bool {
	return err != nil && strings.Contains(err.Error(), "constraint: "+constraint)
}
