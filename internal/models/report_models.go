package models

// DashboardSummary aggregates the key metrics shown on the staff dashboard.
type DashboardSummary struct {
	CustomerCount     int `json:"customer_count"`
	ProductCount      int `json:"product_count"`
	LowStockProducts  int `json:"low_stock_products"`
	RedemptionCount   int `json:"redemption_count"`
	PointsOutstanding int `json:"points_outstanding"`
	PointsRedeemed    int `json:"points_redeemed"`
	PointsIssued      int `json:"points_issued"`
}

// ReferralStats describes how productive one customer's referral code has been.
type ReferralStats struct {
	Code                 string `json:"code"`
	OwnerID              string `json:"ownerId"`
	OwnerName            string `json:"ownerName"`
	ReferralCount        int    `json:"referralCount"`
	TotalPointsGenerated int    `json:"totalPointsGenerated"`
	Active               bool   `json:"active"`
}

// ExpiringPoints is the answer to "what is about to expire" for one customer.
type ExpiringPoints struct {
	WindowDays int          `json:"window_days"`
	Total      int          `json:"total"`
	Entries    []PointEntry `json:"entries"`
}

// BalanceAudit compares the cached balance with the sum of ledger entries.
type BalanceAudit struct {
	CustomerID string `json:"customer_id"`
	Stored     int    `json:"stored"`
	Derived    int    `json:"derived"`
	Drift      int    `json:"drift"`
}
