package handlers

import (
	"net/http"
	"strconv"

	"ocelo_loyalty_backend/internal/middleware"
	"ocelo_loyalty_backend/internal/models"
	"ocelo_loyalty_backend/internal/services"
	"ocelo_loyalty_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// LedgerHandler serves the customer-facing points endpoints.
type LedgerHandler struct {
	authService   services.AuthService
	ledgerService services.LedgerService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(as services.AuthService, ls services.LedgerService) *LedgerHandler {
	return &LedgerHandler{authService: as, ledgerService: ls}
}

// GetMyPoints returns the balance with its ledger and purchase history.
func (h *LedgerHandler) GetMyPoints(c *gin.Context) {
	customer, err := h.authService.GetCustomerProfile(middleware.Subject(c))
	if err != nil {
		respondServiceError(c, err, "fetch points")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"totalPoints":  customer.TotalPoints,
		"pointsDetail": customer.PointsDetail,
		"history":      customer.History,
	})
}

// GetExpiringPoints lists points expiring within ?days (default 60).
func (h *LedgerHandler) GetExpiringPoints(c *gin.Context) {
	days := services.DefaultExpiryWindowDays
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			utils.RespondValidationFailed(c, "days must be a positive integer")
			return
		}
		days = parsed
	}

	expiring, err := h.ledgerService.ExpiringSoon(middleware.Subject(c), days)
	if err != nil {
		respondServiceError(c, err, "fetch expiring points")
		return
	}
	c.JSON(http.StatusOK, expiring)
}

// Redeem spends points on a product or converts the whole balance into a coupon.
func (h *LedgerHandler) Redeem(c *gin.Context) {
	var req services.RedeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "Redeem")
		return
	}
	hasProduct := req.ProductID != ""
	if hasProduct == req.FullBalance {
		utils.RespondValidationFailed(c, "provide either productId or fullBalance")
		return
	}

	customerID := middleware.Subject(c)
	var customer *models.Customer
	var err error
	if req.FullBalance {
		customer, err = h.ledgerService.RedeemBalance(c.Request.Context(), customerID)
	} else {
		customer, err = h.ledgerService.RedeemProduct(c.Request.Context(), customerID, req.ProductID)
	}
	if err != nil {
		respondServiceError(c, err, "redeem points")
		return
	}
	c.JSON(http.StatusOK, customer)
}

// GetMyReferrals lists the customers the caller referred.
func (h *LedgerHandler) GetMyReferrals(c *gin.Context) {
	referred, err := h.ledgerService.Referrals(middleware.Subject(c))
	if err != nil {
		respondServiceError(c, err, "fetch referrals")
		return
	}
	c.JSON(http.StatusOK, referred)
}

// GetShareLink returns the WhatsApp share URL for the caller's referral code.
func (h *LedgerHandler) GetShareLink(c *gin.Context) {
	link, err := h.ledgerService.ShareLink(middleware.Subject(c))
	if err != nil {
		respondServiceError(c, err, "build share link")
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": link})
}
