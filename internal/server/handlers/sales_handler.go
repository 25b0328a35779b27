package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/shoeshop/pos-backend/internal/domain/apperr"
	"github.com/shoeshop/pos-backend/internal/domain/models"
	"github.com/shoeshop/pos-backend/internal/service/sales"
)

// SalesHandler adapts sale processing and history editing to HTTP.
type SalesHandler struct {
	svc    *sales.Service
	logger *zap.Logger
}

// NewSalesHandler constructs the HTTP handler adapter.
func NewSalesHandler(svc *sales.Service, logger *zap.Logger) *SalesHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SalesHandler{svc: svc, logger: logger}
}

// Sell processes a cart and returns the new sale id.
func (h *SalesHandler) Sell(c *gin.Context) {
	var req models.SellRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, h.logger, apperr.Validation("invalid sell payload: %v", err))
		return
	}

	saleID, err := h.svc.Sell(c.Request.Context(), req.Cart)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "sale completed successfully",
		"saleId":  saleID,
	})
}

// GetSale returns one sale document.
func (h *SalesHandler) GetSale(c *gin.Context) {
	sale, err := h.svc.GetSale(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, sale)
}

// ListSales returns sales newest-first, optionally filtered by the closed
// interval given by the from/to query parameters, plus the gross total.
func (h *SalesHandler) ListSales(c *gin.Context) {
	from, err := parseTimeParam(c.Query("from"))
	if err != nil {
		writeError(c, h.logger, apperr.Validation("invalid from parameter: %v", err))
		return
	}
	to, err := parseTimeParam(c.Query("to"))
	if err != nil {
		writeError(c, h.logger, apperr.Validation("invalid to parameter: %v", err))
		return
	}

	result, err := h.svc.ListSales(c.Request.Context(), from, to)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ReplaceItems overwrites a sale's line items wholesale.
func (h *SalesHandler) ReplaceItems(c *gin.Context) {
	var req struct {
		Items []models.SaleLineItem `json:"items"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, h.logger, apperr.Validation("invalid items payload: %v", err))
		return
	}

	sale, err := h.svc.ReplaceItems(c.Request.Context(), c.Param("id"), req.Items)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "sale items replaced successfully",
		"sale":    sale,
	})
}

// PatchItem corrects a single line of a recorded sale.
func (h *SalesHandler) PatchItem(c *gin.Context) {
	idx, err := strconv.Atoi(c.Param("itemIndex"))
	if err != nil {
		writeError(c, h.logger, apperr.Validation("invalid item index %q", c.Param("itemIndex")))
		return
	}

	var patch models.SaleItemPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		writeError(c, h.logger, apperr.Validation("invalid item patch: %v", err))
		return
	}

	item, err := h.svc.PatchItem(c.Request.Context(), c.Param("id"), idx, patch)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":     "sale item updated successfully",
		"updatedItem": item,
	})
}

func parseTimeParam(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
