package handlers

import (
	"net/http"
	"strconv"

	"ocelo_loyalty_backend/internal/models"
	"ocelo_loyalty_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// CustomerHandler serves staff customer administration.
type CustomerHandler struct {
	customerService services.CustomerService
	ledgerService   services.LedgerService
}

// NewCustomerHandler creates a new CustomerHandler.
func NewCustomerHandler(cs services.CustomerService, ls services.LedgerService) *CustomerHandler {
	return &CustomerHandler{customerService: cs, ledgerService: ls}
}

// CreateCustomer handles manual customer entry by staff.
func (h *CustomerHandler) CreateCustomer(c *gin.Context) {
	var req services.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "CreateCustomer")
		return
	}

	customer, err := h.customerService.CreateCustomer(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err, "create customer")
		return
	}
	c.JSON(http.StatusCreated, customer)
}

// GetCustomers handles listing customers with search and pagination.
func (h *CustomerHandler) GetCustomers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 10
	}

	customers, totalCount, err := h.customerService.GetCustomers(page, pageSize, c.Query("search"))
	if err != nil {
		respondServiceError(c, err, "fetch customers")
		return
	}
	if customers == nil {
		customers = []models.Customer{}
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      customers,
		"total":     totalCount,
		"page":      page,
		"page_size": pageSize,
	})
}

// GetCustomerByID handles fetching a single customer.
func (h *CustomerHandler) GetCustomerByID(c *gin.Context) {
	customer, err := h.customerService.GetCustomerByID(c.Param("id"))
	if err != nil {
		respondServiceError(c, err, "fetch customer")
		return
	}
	c.JSON(http.StatusOK, customer)
}

// UpdateCustomer handles partial customer updates.
func (h *CustomerHandler) UpdateCustomer(c *gin.Context) {
	var req services.UpdateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "UpdateCustomer")
		return
	}

	customer, err := h.customerService.UpdateCustomer(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondServiceError(c, err, "update customer")
		return
	}
	c.JSON(http.StatusOK, customer)
}

// DeleteCustomer handles customer removal.
func (h *CustomerHandler) DeleteCustomer(c *gin.Context) {
	if err := h.customerService.DeleteCustomer(c.Request.Context(), c.Param("id")); err != nil {
		respondServiceError(c, err, "delete customer")
		return
	}
	c.Status(http.StatusNoContent)
}

// RecordPurchase credits points for an in-store purchase.
func (h *CustomerHandler) RecordPurchase(c *gin.Context) {
	var req services.PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "RecordPurchase")
		return
	}

	customer, err := h.ledgerService.EarnPurchase(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondServiceError(c, err, "record purchase")
		return
	}
	c.JSON(http.StatusCreated, customer)
}

// AuditCustomer compares a customer's stored balance with the ledger sum.
func (h *CustomerHandler) AuditCustomer(c *gin.Context) {
	audit, err := h.ledgerService.Audit(c.Param("id"))
	if err != nil {
		respondServiceError(c, err, "audit customer balance")
		return
	}
	c.JSON(http.StatusOK, audit)
}
