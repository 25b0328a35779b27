package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/shoeshop/pos-backend/internal/domain/apperr"
	"github.com/shoeshop/pos-backend/internal/domain/models"
	"github.com/shoeshop/pos-backend/internal/service/inventory"
)

// InventoryHandler adapts stock ledger operations to HTTP.
type InventoryHandler struct {
	svc    *inventory.Service
	logger *zap.Logger
}

// NewInventoryHandler constructs the HTTP handler adapter.
func NewInventoryHandler(svc *inventory.Service, logger *zap.Logger) *InventoryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InventoryHandler{svc: svc, logger: logger}
}

// Restock ingests a stock delivery.
func (h *InventoryHandler) Restock(c *gin.Context) {
	var req models.RestockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, h.logger, apperr.Validation("invalid restock payload: %v", err))
		return
	}

	result, err := h.svc.Restock(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":       "stock added/updated successfully",
		"insertedCount": result.InsertedCount,
		"updatedCount":  result.UpdatedCount,
		"units":         result.Units,
	})
}

// CurrentStock returns the grouped stock view.
func (h *InventoryHandler) CurrentStock(c *gin.Context) {
	rows, err := h.svc.CurrentStock(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// ResolveCode resolves a scanned label code, with or without its per-unit
// suffix, to the current stock record.
func (h *InventoryHandler) ResolveCode(c *gin.Context) {
	rec, err := h.svc.ResolveCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// Get loads one stock record by id.
func (h *InventoryHandler) Get(c *gin.Context) {
	rec, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// Update applies a manual correction to one stock record.
func (h *InventoryHandler) Update(c *gin.Context) {
	var patch models.StockPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		writeError(c, h.logger, apperr.Validation("invalid stock patch: %v", err))
		return
	}

	rec, err := h.svc.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}
