package handlers

import (
	"errors"
	"net/http"

	"ocelo_loyalty_backend/internal/services"
	"ocelo_loyalty_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// respondServiceError maps the service sentinel errors shared by several handlers.
// op names the failed operation in the fallback 500 message.
func respondServiceError(c *gin.Context, err error, op string) {
	var insufficient *services.InsufficientPointsError
	switch {
	case errors.As(err, &insufficient):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeInsufficientPoints, "Not enough points for this redemption.", insufficient.Error()).
			WithMeta("shortfall", insufficient.Shortfall).
			WithMeta("balance", insufficient.Balance).
			WithMeta("cost", insufficient.Cost))
	case errors.Is(err, services.ErrCustomerNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Customer not found.", err.Error()))
	case errors.Is(err, services.ErrProductNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Product not found.", err.Error()))
	case errors.Is(err, services.ErrUnknownCollection):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Collection not found.", err.Error()))
	case errors.Is(err, services.ErrValidation):
		utils.RespondValidationFailed(c, err.Error())
	case errors.Is(err, services.ErrEmailExists):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Email already exists.", err.Error()))
	case errors.Is(err, services.ErrReferralCodeExists):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Referral code already exists.", err.Error()))
	case errors.Is(err, services.ErrNothingToRedeem):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeInsufficientPoints, "There are no points to redeem.", err.Error()).WithMeta("shortfall", 0))
	default:
		utils.LogError(err, op)
		utils.RespondInternal(c, "Failed to "+op+".")
	}
}

func respondBindError(c *gin.Context, err error, op string) {
	utils.LogDebug(op+": failed to bind JSON", map[string]interface{}{"error": err.Error()})
	utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, "Invalid request payload.", err.Error()))
}
