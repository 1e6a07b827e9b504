package handlers

import (
	"net/http"

	"ocelo_loyalty_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// ReportHandler serves staff reporting.
type ReportHandler struct {
	reportService services.ReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(rs services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: rs}
}

// GetDashboardSummary provides a summary of key metrics for the dashboard.
func (h *ReportHandler) GetDashboardSummary(c *gin.Context) {
	c.JSON(http.StatusOK, h.reportService.DashboardSummary())
}

// GetReferralReport lists referral statistics for every customer code.
func (h *ReportHandler) GetReferralReport(c *gin.Context) {
	c.JSON(http.StatusOK, h.reportService.ReferralStats())
}
