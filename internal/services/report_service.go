package services

import (
	"sort"

	"ocelo_loyalty_backend/internal/models"
	"ocelo_loyalty_backend/internal/repositories"
)

// LowStockThreshold marks products at or below this stock as running out.
const LowStockThreshold = 5

// ReportService aggregates figures for the staff dashboard.
type ReportService interface {
	DashboardSummary() models.DashboardSummary
	ReferralStats() []models.ReferralStats
}

type reportService struct {
	customerRepo repositories.CustomerRepository
	productRepo  repositories.ProductRepository
}

// NewReportService creates a new instance of ReportService.
func NewReportService(customerRepo repositories.CustomerRepository, productRepo repositories.ProductRepository) ReportService {
	return &reportService{customerRepo: customerRepo, productRepo: productRepo}
}

func (s *reportService) DashboardSummary() models.DashboardSummary {
	var summary models.DashboardSummary

	customers := s.customerRepo.List()
	summary.CustomerCount = len(customers)
	for _, c := range customers {
		summary.PointsOutstanding += c.TotalPoints
		for _, e := range c.PointsDetail {
			switch {
			case e.Type == models.EntryTypeRedemption:
				summary.RedemptionCount++
				summary.PointsRedeemed += -e.Amount
			case e.Amount > 0:
				summary.PointsIssued += e.Amount
			}
		}
	}

	products := s.productRepo.List()
	summary.ProductCount = len(products)
	for _, p := range products {
		if p.Stock <= LowStockThreshold {
			summary.LowStockProducts++
		}
	}
	return summary
}

// ReferralStats reports every customer's code, most productive first.
func (s *reportService) ReferralStats() []models.ReferralStats {
	customers := s.customerRepo.List()
	stats := make([]models.ReferralStats, 0, len(customers))
	for _, c := range customers {
		stats = append(stats, models.ReferralStats{
			Code:                 c.ReferralCode,
			OwnerID:              c.ID,
			OwnerName:            c.Name,
			ReferralCount:        len(c.Referrals),
			TotalPointsGenerated: len(c.Referrals) * ReferrerBonusPoints,
			Active:               len(c.Referrals) > 0,
		})
	}
	sort.SliceStable(stats, func(i, j int) bool { return stats[i].ReferralCount > stats[j].ReferralCount })
	return stats
}
