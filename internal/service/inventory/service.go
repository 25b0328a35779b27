// Package inventory implements the stock ledger: merge-or-insert restock
// with per-pair label minting, the grouped current-stock view, scanned code
// resolution and manual record corrections.
package inventory

import (
	"context"
	"sort"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/shoeshop/pos-backend/internal/domain/apperr"
	"github.com/shoeshop/pos-backend/internal/domain/models"
	"github.com/shoeshop/pos-backend/internal/identity"
	"github.com/shoeshop/pos-backend/internal/repository/mongodb"
)

// Service exposes the stock ledger operations.
type Service struct {
	stock  mongodb.StockRepository
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires a new inventory service instance.
func NewService(stock mongodb.StockRepository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{stock: stock, logger: logger, now: time.Now}
}

// Restock reconciles one delivery into stock. Each valid (size, count) entry
// either increments the record matching the full merge key or inserts a new
// record carrying a freshly derived skuCode, and mints count traceable label
// codes. Entries whose size or count does not coerce to a positive number
// are skipped without error.
func (s *Service) Restock(ctx context.Context, req models.RestockRequest) (*models.RestockResult, error) {
	if req.Name == "" || req.Brand == "" {
		return nil, apperr.Validation("name and brand are required")
	}
	if req.UnitPrice < 0 {
		return nil, apperr.Validation("unitPrice must be non-negative")
	}
	if len(req.QuantitiesBySize) == 0 {
		return nil, apperr.Validation("quantitiesBySize must not be empty")
	}

	batch := s.now()
	result := &models.RestockResult{Units: []models.TraceableUnit{}}

	for _, entry := range sortedSizeEntries(req.QuantitiesBySize) {
		rec, err := s.stock.FindByKey(ctx, models.MergeKey{
			Name:          req.Name,
			Brand:         req.Brand,
			ArticleNumber: req.ArticleNumber,
			Color:         req.Color,
			Size:          entry.size,
			UnitPrice:     req.UnitPrice,
		})
		if err != nil {
			return nil, apperr.Storage(err, "restock lookup failed")
		}

		if rec != nil {
			if err := s.stock.IncrementQuantity(ctx, rec.ID, entry.count); err != nil {
				return nil, apperr.Storage(err, "restock merge failed")
			}
			result.UpdatedCount++
		} else {
			_, err := s.stock.Insert(ctx, models.StockRecord{
				Name:           req.Name,
				Brand:          req.Brand,
				ArticleNumber:  req.ArticleNumber,
				Color:          req.Color,
				Size:           entry.size,
				QuantityOnHand: entry.count,
				UnitPrice:      req.UnitPrice,
				SKUCode:        identity.Fingerprint(req.Brand, req.ArticleNumber, entry.size),
				CreatedAt:      batch,
			})
			if err != nil {
				return nil, apperr.Storage(err, "restock insert failed")
			}
			result.InsertedCount++
		}

		for i := 0; i < entry.count; i++ {
			result.Units = append(result.Units, models.TraceableUnit{
				Brand:         req.Brand,
				ArticleNumber: req.ArticleNumber,
				Size:          entry.size,
				Code:          identity.TraceableCode(req.Brand, req.ArticleNumber, entry.size, batch, i),
			})
		}
	}

	s.logger.Info("restock applied",
		zap.String("brand", req.Brand),
		zap.String("name", req.Name),
		zap.Int("inserted", result.InsertedCount),
		zap.Int("updated", result.UpdatedCount),
		zap.Int("units_minted", len(result.Units)))

	return result, nil
}

// CurrentStock returns the grouped stock view, newest first. Duplicate rows
// for the same merge key are summed rather than assumed unique.
func (s *Service) CurrentStock(ctx context.Context) ([]models.StockSummary, error) {
	rows, err := s.stock.AggregateCurrent(ctx)
	if err != nil {
		return nil, apperr.Storage(err, "current stock aggregation failed")
	}
	return rows, nil
}

// FindBySKUCode resolves an exact skuCode, as scanned at the register.
func (s *Service) FindBySKUCode(ctx context.Context, code string) (*models.StockRecord, error) {
	if code == "" {
		return nil, apperr.Validation("code must not be empty")
	}
	rec, err := s.stock.FindBySKUCode(ctx, code)
	if err != nil {
		return nil, apperr.Storage(err, "sku lookup failed")
	}
	if rec == nil {
		return nil, apperr.NotFound("no stock record for code %s", code)
	}
	return rec, nil
}

// ResolveCode resolves a scanned code that may carry a per-unit suffix. The
// exact code is tried first, then the fingerprint with the batch/sequence
// suffix stripped. The resolved record reflects the current price for that
// fingerprint, not the unit's price at mint time.
func (s *Service) ResolveCode(ctx context.Context, scanned string) (*models.StockRecord, error) {
	if scanned == "" {
		return nil, apperr.Validation("code must not be empty")
	}

	rec, err := s.stock.FindBySKUCode(ctx, scanned)
	if err != nil {
		return nil, apperr.Storage(err, "code lookup failed")
	}
	if rec == nil {
		if base := identity.BaseCode(scanned); base != scanned {
			rec, err = s.stock.FindBySKUCode(ctx, base)
			if err != nil {
				return nil, apperr.Storage(err, "code lookup failed")
			}
		}
	}
	if rec == nil {
		return nil, apperr.NotFound("no stock record for code %s", scanned)
	}
	return rec, nil
}

// Get loads a single record by its store id.
func (s *Service) Get(ctx context.Context, idHex string) (*models.StockRecord, error) {
	id, err := primitive.ObjectIDFromHex(idHex)
	if err != nil {
		return nil, apperr.Validation("malformed stock id %q", idHex)
	}
	rec, err := s.stock.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Storage(err, "stock lookup failed")
	}
	if rec == nil {
		return nil, apperr.NotFound("no stock record with id %s", idHex)
	}
	return rec, nil
}

// Update applies a manual correction to a single record. Supplied fields
// override stored ones, the skuCode is re-derived from the merged identity
// attributes, and no merge-or-insert semantics apply.
func (s *Service) Update(ctx context.Context, idHex string, patch models.StockPatch) (*models.StockRecord, error) {
	rec, err := s.Get(ctx, idHex)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		rec.Name = *patch.Name
	}
	if patch.Brand != nil {
		rec.Brand = *patch.Brand
	}
	if patch.ArticleNumber != nil {
		rec.ArticleNumber = *patch.ArticleNumber
	}
	if patch.Color != nil {
		rec.Color = *patch.Color
	}
	if patch.Size != nil {
		rec.Size = *patch.Size
	}
	if patch.QuantityOnHand != nil {
		rec.QuantityOnHand = *patch.QuantityOnHand
	}
	if patch.UnitPrice != nil {
		rec.UnitPrice = *patch.UnitPrice
	}

	if rec.Name == "" || rec.Brand == "" {
		return nil, apperr.Validation("name and brand must not be empty")
	}
	if rec.QuantityOnHand < 0 {
		return nil, apperr.Validation("quantityOnHand must be non-negative")
	}
	if rec.UnitPrice < 0 {
		return nil, apperr.Validation("unitPrice must be non-negative")
	}

	rec.SKUCode = identity.Fingerprint(rec.Brand, rec.ArticleNumber, rec.Size)

	matched, err := s.stock.Update(ctx, rec.ID, *rec)
	if err != nil {
		return nil, apperr.Storage(err, "stock update failed")
	}
	if !matched {
		return nil, apperr.NotFound("no stock record with id %s", idHex)
	}

	s.logger.Info("stock record corrected", zap.String("id", idHex), zap.String("skuCode", rec.SKUCode))
	return rec, nil
}

type sizeEntry struct {
	size  float64
	count int
}

// sortedSizeEntries coerces the loose size/count mapping into numeric pairs,
// dropping invalid entries, ordered by size for deterministic minting.
func sortedSizeEntries(quantities map[string]any) []sizeEntry {
	entries := make([]sizeEntry, 0, len(quantities))
	for rawSize, rawCount := range quantities {
		size, ok := toNumber(rawSize)
		if !ok {
			continue
		}
		count, ok := toNumber(rawCount)
		if !ok || count <= 0 {
			continue
		}
		entries = append(entries, sizeEntry{size: size, count: int(count)})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].size < entries[j].size })
	return entries
}

func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case string:
		parsed, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}
