// Package sales implements the sale transaction processor and the sale
// history editor.
//
// A sale runs in two phases: every cart line is validated against current
// stock first, then each decrement is issued as a conditional write that
// re-checks sufficiency at write time. If any conditional write fails, every
// line already applied is re-incremented before the conflict is reported, so
// stock never goes negative and no partial sale is recorded.
//
// History edits recompute only totalAmount. Profit keeps its at-sale value
// and stock is never re-adjusted by an edit.
package sales

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/shoeshop/pos-backend/internal/domain/apperr"
	"github.com/shoeshop/pos-backend/internal/domain/models"
	"github.com/shoeshop/pos-backend/internal/repository/mongodb"
)

// Notifier receives best-effort pushes when a sale drains a SKU to or below
// the configured threshold. Failures are logged, never propagated.
type Notifier interface {
	NotifyLowStock(ctx context.Context, rec models.StockRecord) error
}

// Service exposes sale processing and history editing.
type Service struct {
	stock             mongodb.StockRepository
	sales             mongodb.SaleRepository
	notifier          Notifier
	lowStockThreshold int
	logger            *zap.Logger
	now               func() time.Time
}

// NewService wires a new sales service instance. The notifier may be nil to
// disable low-stock pushes.
func NewService(stock mongodb.StockRepository, sales mongodb.SaleRepository, notifier Notifier, lowStockThreshold int, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		stock:             stock,
		sales:             sales,
		notifier:          notifier,
		lowStockThreshold: lowStockThreshold,
		logger:            logger,
		now:               time.Now,
	}
}

// Sell processes a cart as one logical unit and returns the new sale's id.
// Either every line is decremented and exactly one sale record is written,
// or nothing is mutated; a storage failure between the two steps is the one
// documented exception and surfaces as a storage error.
func (s *Service) Sell(ctx context.Context, cart []models.CartItem) (string, error) {
	if len(cart) == 0 {
		return "", apperr.Validation("cart is empty")
	}

	// Phase 1: validate every line before touching anything.
	items := make([]models.SaleLineItem, 0, len(cart))
	for _, entry := range cart {
		if entry.SKUCode == "" || entry.Quantity <= 0 || entry.UnitSellPrice <= 0 {
			return "", apperr.Validation("cart item needs skuCode, quantity and unitSellPrice")
		}
		if entry.Discount < 0 {
			return "", apperr.Validation("discount must be non-negative for %s", entry.SKUCode)
		}

		rec, err := s.stock.FindBySKUCode(ctx, entry.SKUCode)
		if err != nil {
			return "", apperr.Storage(err, "stock lookup failed for %s", entry.SKUCode)
		}
		if rec == nil {
			return "", apperr.NotFound("no stock record for skuCode %s", entry.SKUCode)
		}
		if rec.QuantityOnHand < entry.Quantity {
			return "", apperr.Conflict("insufficient stock for skuCode %s", entry.SKUCode)
		}

		items = append(items, models.SaleLineItem{
			SKUCode:     entry.SKUCode,
			Quantity:    entry.Quantity,
			SellPrice:   entry.UnitSellPrice,
			Discount:    entry.Discount,
			Profit:      (entry.UnitSellPrice - rec.UnitPrice) * float64(entry.Quantity),
			TotalAmount: lineTotal(entry.Quantity, entry.UnitSellPrice, entry.Discount),
			ShoeInfo: models.ShoeInfo{
				Name:          rec.Name,
				Brand:         rec.Brand,
				ArticleNumber: rec.ArticleNumber,
				Size:          rec.Size,
				Color:         rec.Color,
			},
		})
	}

	// Phase 2: conditional decrements, compensating on conflict.
	for i, item := range items {
		ok, err := s.stock.DecrementIfAvailable(ctx, item.SKUCode, item.Quantity)
		if err != nil {
			return "", apperr.Storage(err, "stock decrement failed for %s", item.SKUCode)
		}
		if !ok {
			s.compensate(ctx, items[:i])
			return "", apperr.Conflict("insufficient stock for skuCode %s", item.SKUCode)
		}
	}

	sale := models.SaleRecord{Items: items, SoldAt: s.now()}
	id, err := s.sales.Insert(ctx, sale)
	if err != nil {
		// Decrements already applied; surfaced, not rolled back.
		return "", apperr.Storage(err, "sale record insert failed after stock decrement")
	}

	s.logger.Info("sale completed",
		zap.String("sale_id", id.Hex()),
		zap.Int("lines", len(items)))

	s.pushLowStockAlerts(ctx, items)

	return id.Hex(), nil
}

// GetSale loads one sale by id.
func (s *Service) GetSale(ctx context.Context, idHex string) (*models.SaleRecord, error) {
	id, err := primitive.ObjectIDFromHex(idHex)
	if err != nil {
		return nil, apperr.Validation("malformed sale id %q", idHex)
	}
	sale, err := s.sales.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Storage(err, "sale lookup failed")
	}
	if sale == nil {
		return nil, apperr.NotFound("no sale with id %s", idHex)
	}
	return sale, nil
}

// ListSales returns sales newest-first, optionally restricted to the closed
// interval [from, to], with the gross total over all returned line items.
func (s *Service) ListSales(ctx context.Context, from, to *time.Time) (*models.SaleListResult, error) {
	sales, err := s.sales.List(ctx, from, to)
	if err != nil {
		return nil, apperr.Storage(err, "sale listing failed")
	}

	result := &models.SaleListResult{Sales: sales}
	for _, sale := range sales {
		for _, item := range sale.Items {
			result.GrossTotal += item.TotalAmount
		}
	}
	return result, nil
}

// ReplaceItems overwrites a sale's line items wholesale, recomputing each
// item's totalAmount. Profit and stock are left as recorded.
func (s *Service) ReplaceItems(ctx context.Context, idHex string, items []models.SaleLineItem) (*models.SaleRecord, error) {
	id, err := primitive.ObjectIDFromHex(idHex)
	if err != nil {
		return nil, apperr.Validation("malformed sale id %q", idHex)
	}
	if len(items) == 0 {
		return nil, apperr.Validation("items must not be empty")
	}

	for i := range items {
		if items[i].Quantity <= 0 {
			return nil, apperr.Validation("item %d quantity must be positive", i)
		}
		if items[i].SellPrice < 0 || items[i].Discount < 0 {
			return nil, apperr.Validation("item %d price fields must be non-negative", i)
		}
		items[i].TotalAmount = lineTotal(items[i].Quantity, items[i].SellPrice, items[i].Discount)
	}

	matched, err := s.sales.ReplaceItems(ctx, id, items)
	if err != nil {
		return nil, apperr.Storage(err, "sale items replace failed")
	}
	if !matched {
		return nil, apperr.NotFound("no sale with id %s", idHex)
	}

	s.logger.Info("sale items replaced", zap.String("sale_id", idHex), zap.Int("lines", len(items)))
	return &models.SaleRecord{ID: id, Items: items}, nil
}

// PatchItem corrects a single line of a recorded sale. Supplied fields are
// merged over the existing line, totalAmount is recomputed and the whole
// item sequence is persisted. Other lines are untouched byte for byte.
func (s *Service) PatchItem(ctx context.Context, idHex string, itemIndex int, patch models.SaleItemPatch) (*models.SaleLineItem, error) {
	sale, err := s.GetSale(ctx, idHex)
	if err != nil {
		return nil, err
	}
	if itemIndex < 0 || itemIndex >= len(sale.Items) {
		return nil, apperr.NotFound("sale %s has no item at index %d", idHex, itemIndex)
	}

	item := sale.Items[itemIndex]
	if patch.Quantity != nil {
		item.Quantity = *patch.Quantity
	}
	if patch.SellPrice != nil {
		item.SellPrice = *patch.SellPrice
	}
	if patch.Discount != nil {
		item.Discount = *patch.Discount
	}

	if item.Quantity <= 0 {
		return nil, apperr.Validation("quantity must be positive")
	}
	if item.SellPrice < 0 || item.Discount < 0 {
		return nil, apperr.Validation("price fields must be non-negative")
	}

	item.TotalAmount = lineTotal(item.Quantity, item.SellPrice, item.Discount)
	sale.Items[itemIndex] = item

	matched, err := s.sales.ReplaceItems(ctx, sale.ID, sale.Items)
	if err != nil {
		return nil, apperr.Storage(err, "sale item update failed")
	}
	if !matched {
		return nil, apperr.NotFound("no sale with id %s", idHex)
	}

	s.logger.Info("sale item corrected", zap.String("sale_id", idHex), zap.Int("index", itemIndex))
	return &item, nil
}

func (s *Service) compensate(ctx context.Context, applied []models.SaleLineItem) {
	for _, item := range applied {
		if err := s.stock.IncrementBySKUCode(ctx, item.SKUCode, item.Quantity); err != nil {
			s.logger.Error("compensating re-increment failed",
				zap.String("skuCode", item.SKUCode),
				zap.Int("quantity", item.Quantity),
				zap.Error(err))
		}
	}
}

func (s *Service) pushLowStockAlerts(ctx context.Context, items []models.SaleLineItem) {
	if s.notifier == nil {
		return
	}
	for _, item := range items {
		rec, err := s.stock.FindBySKUCode(ctx, item.SKUCode)
		if err != nil || rec == nil {
			continue
		}
		if rec.QuantityOnHand > s.lowStockThreshold {
			continue
		}
		if err := s.notifier.NotifyLowStock(ctx, *rec); err != nil {
			s.logger.Warn("low stock notification failed",
				zap.String("skuCode", rec.SKUCode),
				zap.Error(err))
		}
	}
}

func lineTotal(quantity int, sellPrice, discount float64) float64 {
	return sellPrice*float64(quantity) - discount
}
