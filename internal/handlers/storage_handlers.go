package handlers

import (
	"net/http"

	"ocelo_loyalty_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// StorageHandler exposes maintenance of the persisted collections to staff.
type StorageHandler struct {
	storageService services.StorageService
}

// NewStorageHandler creates a new StorageHandler.
func NewStorageHandler(ss services.StorageService) *StorageHandler {
	return &StorageHandler{storageService: ss}
}

func (h *StorageHandler) GetStatus(c *gin.Context) {
	status, err := h.storageService.Status(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "read storage status")
		return
	}
	c.JSON(http.StatusOK, status)
}

func (h *StorageHandler) Reload(c *gin.Context) {
	if err := h.storageService.Reload(c.Request.Context()); err != nil {
		respondServiceError(c, err, "reload storage")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Storage reloaded"})
}

// ResetCollection restores the defaults of the collection named in the path.
func (h *StorageHandler) ResetCollection(c *gin.Context) {
	if err := h.storageService.Reset(c.Request.Context(), c.Param("collection")); err != nil {
		respondServiceError(c, err, "reset collection")
		return
	}
	c.Status(http.StatusNoContent)
}
