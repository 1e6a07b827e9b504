package handlers

import (
	"errors"
	"net/http"

	"ocelo_loyalty_backend/internal/middleware"
	"ocelo_loyalty_backend/internal/models"
	"ocelo_loyalty_backend/internal/services"
	"ocelo_loyalty_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// AuthHandler holds the identity services.
type AuthHandler struct {
	authService         services.AuthService
	registrationService services.RegistrationService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(as services.AuthService, rs services.RegistrationService) *AuthHandler {
	return &AuthHandler{authService: as, registrationService: rs}
}

// StaffLogin handles the staff credential check.
func (h *AuthHandler) StaffLogin(c *gin.Context) {
	var req models.StaffCredentials
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "StaffLogin")
		return
	}

	session, err := h.authService.LoginStaff(req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) || errors.Is(err, services.ErrStaffNotConfigured) {
			utils.LogWarn("Staff login rejected", map[string]interface{}{"username": req.Username, "ip": c.ClientIP()})
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Invalid username or password.", ""))
		} else {
			utils.LogError(err, "StaffLogin: Error from authService.LoginStaff")
			utils.RespondInternal(c, "Failed to login.")
		}
		return
	}
	c.JSON(http.StatusOK, session)
}

// CustomerLogin handles customer email/password login.
func (h *AuthHandler) CustomerLogin(c *gin.Context) {
	var req models.CustomerCredentials
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "CustomerLogin")
		return
	}

	session, err := h.authService.LoginCustomer(req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Invalid email or password.", ""))
		} else {
			utils.LogError(err, "CustomerLogin: Error from authService.LoginCustomer")
			utils.RespondInternal(c, "Failed to login.")
		}
		return
	}
	c.JSON(http.StatusOK, session)
}

// StartRegistration sends a verification code to the submitted email.
func (h *AuthHandler) StartRegistration(c *gin.Context) {
	var form models.RegistrationForm
	if err := c.ShouldBindJSON(&form); err != nil {
		respondBindError(c, err, "StartRegistration")
		return
	}

	expiresAt, err := h.registrationService.StartRegistration(c.Request.Context(), form)
	if err != nil {
		if errors.Is(err, services.ErrCodeDelivery) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadGateway, utils.ErrCodeInternalServerError, "Could not send the verification code.", ""))
			return
		}
		respondServiceError(c, err, "start registration")
		return
	}
	c.JSON(http.StatusAccepted, gin.H{
		"message":    "Verification code sent.",
		"email":      utils.NormalizeEmail(form.Email),
		"expires_at": expiresAt,
	})
}

type verifyRegistrationRequest struct {
	Email string `json:"email" binding:"required"`
	Code  string `json:"code" binding:"required"`
}

// VerifyRegistration completes a pending registration and logs the new customer in.
func (h *AuthHandler) VerifyRegistration(c *gin.Context) {
	var req verifyRegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "VerifyRegistration")
		return
	}

	customer, err := h.registrationService.CompleteRegistration(c.Request.Context(), req.Email, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidVerificationCode):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeInvalidCode, "Invalid verification code.", ""))
		case errors.Is(err, services.ErrTooManyAttempts):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusTooManyRequests, utils.ErrCodeTooManyRequests, "Too many wrong codes, register again.", ""))
		case errors.Is(err, services.ErrVerificationExpired):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusGone, utils.ErrCodeInvalidCode, "Verification code expired, register again.", ""))
		default:
			respondServiceError(c, err, "complete registration")
		}
		return
	}

	token, expiresAt, err := utils.GenerateAccessToken(customer.ID, models.RoleCustomer)
	if err != nil {
		utils.LogError(err, "VerifyRegistration: token generation failed")
		c.JSON(http.StatusCreated, gin.H{"customer": customer})
		return
	}
	c.JSON(http.StatusCreated, models.Session{Role: models.RoleCustomer, AccessToken: token, ExpiresAt: expiresAt, Customer: customer})
}

// GetCurrentCustomer returns the profile of the authenticated customer.
func (h *AuthHandler) GetCurrentCustomer(c *gin.Context) {
	customer, err := h.authService.GetCustomerProfile(middleware.Subject(c))
	if err != nil {
		respondServiceError(c, err, "retrieve customer profile")
		return
	}
	c.JSON(http.StatusOK, customer)
}

// Logout is a client-side action for stateless tokens.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully. Please discard your token."})
}
