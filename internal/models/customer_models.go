package models

// EntryType classifies a point entry.
type EntryType string

const (
	EntryTypePurchase   EntryType = "purchase"
	EntryTypeReferral   EntryType = "referral"
	EntryTypeRedemption EntryType = "redemption"
)

// EntryStatus is advisory: nothing transitions an entry to expired on its own.
type EntryStatus string

const (
	EntryStatusActive  EntryStatus = "active"
	EntryStatusExpired EntryStatus = "expired"
	EntryStatusUsed    EntryStatus = "used"
)

// DateLayout is the calendar-day format used for entry and transaction dates.
const DateLayout = "2006-01-02"

// PointEntry is one immutable, signed, dated line item in a customer's ledger.
type PointEntry struct {
	ID          string      `json:"id" yaml:"id"`
	Amount      int         `json:"amount" yaml:"amount"`
	Type        EntryType   `json:"type" yaml:"type"`
	Date        string      `json:"date" yaml:"date"`
	ExpiryDate  string      `json:"expiryDate" yaml:"expiryDate"` // Empty when the entry never expires
	Status      EntryStatus `json:"status" yaml:"status"`
	Description string      `json:"description" yaml:"description"`
}

// Transaction records an in-store purchase that earned points.
type Transaction struct {
	ID           string   `json:"id" yaml:"id"`
	Date         string   `json:"date" yaml:"date"`
	Amount       float64  `json:"amount" yaml:"amount"`
	PointsEarned int      `json:"pointsEarned" yaml:"pointsEarned"`
	Items        []string `json:"items" yaml:"items"`
}

// Customer is a loyalty program member.
// TotalPoints is maintained incrementally next to PointsDetail and is not recomputed on read.
type Customer struct {
	ID           string        `json:"id" yaml:"id"`
	Name         string        `json:"name" yaml:"name"`
	Email        string        `json:"email" yaml:"email"`
	Password     string        `json:"password,omitempty" yaml:"password,omitempty"` // Legacy plaintext, hashed on load
	PasswordHash string        `json:"passwordHash,omitempty" yaml:"passwordHash,omitempty"`
	Phone        string        `json:"phone,omitempty" yaml:"phone,omitempty"`
	ReferralCode string        `json:"referralCode" yaml:"referralCode"`
	TotalPoints  int           `json:"totalPoints" yaml:"totalPoints"`
	History      []Transaction `json:"history" yaml:"history"`
	PointsDetail []PointEntry  `json:"pointsDetail" yaml:"pointsDetail"` // Newest first
	Referrals    []string      `json:"referrals" yaml:"referrals"`
}

// Clone returns a deep copy so callers never share slices with the repository.
func (c Customer) Clone() Customer {
	out := c
	out.History = make([]Transaction, len(c.History))
	for i, t := range c.History {
		t.Items = append([]string(nil), t.Items...)
		if t.Items == nil {
			t.Items = []string{}
		}
		out.History[i] = t
	}
	out.PointsDetail = append(make([]PointEntry, 0, len(c.PointsDetail)), c.PointsDetail...)
	out.Referrals = append(make([]string, 0, len(c.Referrals)), c.Referrals...)
	return out
}

// Public strips credential material before a customer leaves the service boundary.
func (c Customer) Public() Customer {
	out := c.Clone()
	out.Password = ""
	out.PasswordHash = ""
	return out
}

// CreatedCustomer is returned once when staff add a customer. GeneratedPassword is only set when
// the password was generated for them and is never stored in clear.
type CreatedCustomer struct {
	Customer
	GeneratedPassword string `json:"generatedPassword,omitempty"`
}
