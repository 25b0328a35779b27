package sales

import (
	"context"
	"reflect"
	"strings"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shoeshop/pos-backend/internal/domain/apperr"
	"github.com/shoeshop/pos-backend/internal/domain/models"
)

type fakeStockRepo struct {
	records []*models.StockRecord
	// skuCodes whose conditional decrement fails even when the earlier
	// sufficiency check passed, simulating a racing seller.
	raceConflicts map[string]bool
}

func (f *fakeStockRepo) FindByKey(_ context.Context, key models.MergeKey) (*models.StockRecord, error) {
	for _, rec := range f.records {
		if rec.Key() == key {
			copied := *rec
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeStockRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.StockRecord, error) {
	for _, rec := range f.records {
		if rec.ID == id {
			copied := *rec
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeStockRepo) FindBySKUCode(_ context.Context, code string) (*models.StockRecord, error) {
	for _, rec := range f.records {
		if rec.SKUCode == code {
			copied := *rec
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeStockRepo) Insert(_ context.Context, rec models.StockRecord) (primitive.ObjectID, error) {
	rec.ID = primitive.NewObjectID()
	f.records = append(f.records, &rec)
	return rec.ID, nil
}

func (f *fakeStockRepo) IncrementQuantity(_ context.Context, id primitive.ObjectID, delta int) error {
	for _, rec := range f.records {
		if rec.ID == id {
			rec.QuantityOnHand += delta
		}
	}
	return nil
}

func (f *fakeStockRepo) Update(_ context.Context, id primitive.ObjectID, updated models.StockRecord) (bool, error) {
	for _, rec := range f.records {
		if rec.ID == id {
			updated.ID = rec.ID
			*rec = updated
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStockRepo) AggregateCurrent(_ context.Context) ([]models.StockSummary, error) {
	return nil, nil
}

func (f *fakeStockRepo) DecrementIfAvailable(_ context.Context, skuCode string, qty int) (bool, error) {
	if f.raceConflicts[skuCode] {
		return false, nil
	}
	for _, rec := range f.records {
		if rec.SKUCode == skuCode && rec.QuantityOnHand >= qty {
			rec.QuantityOnHand -= qty
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStockRepo) IncrementBySKUCode(_ context.Context, skuCode string, qty int) error {
	for _, rec := range f.records {
		if rec.SKUCode == skuCode {
			rec.QuantityOnHand += qty
			return nil
		}
	}
	return nil
}

func (f *fakeStockRepo) quantityOf(skuCode string) int {
	for _, rec := range f.records {
		if rec.SKUCode == skuCode {
			return rec.QuantityOnHand
		}
	}
	return -1
}

type fakeSaleRepo struct {
	sales []*models.SaleRecord
}

func (f *fakeSaleRepo) Insert(_ context.Context, sale models.SaleRecord) (primitive.ObjectID, error) {
	sale.ID = primitive.NewObjectID()
	f.sales = append(f.sales, &sale)
	return sale.ID, nil
}

func (f *fakeSaleRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.SaleRecord, error) {
	for _, sale := range f.sales {
		if sale.ID == id {
			copied := *sale
			copied.Items = append([]models.SaleLineItem(nil), sale.Items...)
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeSaleRepo) List(_ context.Context, from, to *time.Time) ([]models.SaleRecord, error) {
	var out []models.SaleRecord
	for _, sale := range f.sales {
		if from != nil && sale.SoldAt.Before(*from) {
			continue
		}
		if to != nil && sale.SoldAt.After(*to) {
			continue
		}
		out = append(out, *sale)
	}
	// Newest first, as the store-side sort would return them.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func (f *fakeSaleRepo) ReplaceItems(_ context.Context, id primitive.ObjectID, items []models.SaleLineItem) (bool, error) {
	for _, sale := range f.sales {
		if sale.ID == id {
			sale.Items = append([]models.SaleLineItem(nil), items...)
			return true, nil
		}
	}
	return false, nil
}

func newTestService(t *testing.T) (*Service, *fakeStockRepo, *fakeSaleRepo) {
	t.Helper()
	stock := &fakeStockRepo{raceConflicts: map[string]bool{}}
	saleRepo := &fakeSaleRepo{}
	svc := NewService(stock, saleRepo, nil, 0, nil)
	return svc, stock, saleRepo
}

func seedStock(stock *fakeStockRepo, skuCode string, qty int, unitPrice float64) {
	_, _ = stock.Insert(context.Background(), models.StockRecord{
		Name: "Air Max", Brand: "Nike", ArticleNumber: "AX1", Color: "red",
		Size: 9, QuantityOnHand: qty, UnitPrice: unitPrice,
		SKUCode: skuCode, CreatedAt: time.Now(),
	})
}

func TestSellComputesTotalsAndDecrementsStock(t *testing.T) {
	svc, stock, saleRepo := newTestService(t)
	seedStock(stock, "Nike-AX1-9", 2, 50)

	saleID, err := svc.Sell(context.Background(), []models.CartItem{
		{SKUCode: "Nike-AX1-9", Quantity: 2, UnitSellPrice: 60, Discount: 5},
	})
	if err != nil {
		t.Fatalf("sell failed: %v", err)
	}
	if saleID == "" {
		t.Fatalf("expected a sale id")
	}

	if len(saleRepo.sales) != 1 {
		t.Fatalf("expected one sale record, got %d", len(saleRepo.sales))
	}
	item := saleRepo.sales[0].Items[0]
	if item.TotalAmount != 115 {
		t.Fatalf("totalAmount = %v, want 115", item.TotalAmount)
	}
	if item.Profit != 20 {
		t.Fatalf("profit = %v, want 20", item.Profit)
	}
	if item.ShoeInfo.Name != "Air Max" || item.ShoeInfo.Brand != "Nike" {
		t.Fatalf("shoe snapshot missing: %+v", item.ShoeInfo)
	}
	if got := stock.quantityOf("Nike-AX1-9"); got != 0 {
		t.Fatalf("stock should drop to 0, got %d", got)
	}
}

func TestSellRejectsEmptyCart(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Sell(context.Background(), nil)
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSellRejectsIncompleteLine(t *testing.T) {
	svc, stock, _ := newTestService(t)
	seedStock(stock, "Nike-AX1-9", 2, 50)

	_, err := svc.Sell(context.Background(), []models.CartItem{
		{SKUCode: "Nike-AX1-9", Quantity: 1},
	})
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for missing price, got %v", err)
	}
}

func TestSellUnknownSKUNamesTheCode(t *testing.T) {
	svc, _, saleRepo := newTestService(t)

	_, err := svc.Sell(context.Background(), []models.CartItem{
		{SKUCode: "Puma-NA-8", Quantity: 1, UnitSellPrice: 40},
	})
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}
	if !strings.Contains(err.Error(), "Puma-NA-8") {
		t.Fatalf("error should name the failing skuCode: %v", err)
	}
	if len(saleRepo.sales) != 0 {
		t.Fatalf("no sale record should exist")
	}
}

func TestSellInsufficientStockLeavesEverythingUntouched(t *testing.T) {
	svc, stock, saleRepo := newTestService(t)
	seedStock(stock, "Nike-AX1-9", 5, 50)
	seedStock(stock, "Nike-AX1-10", 0, 50)

	_, err := svc.Sell(context.Background(), []models.CartItem{
		{SKUCode: "Nike-AX1-9", Quantity: 2, UnitSellPrice: 60},
		{SKUCode: "Nike-AX1-10", Quantity: 1, UnitSellPrice: 60},
	})
	if !apperr.IsKind(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if !strings.Contains(err.Error(), "Nike-AX1-10") {
		t.Fatalf("error should name the failing skuCode: %v", err)
	}

	if got := stock.quantityOf("Nike-AX1-9"); got != 5 {
		t.Fatalf("first line must not be decremented, got %d", got)
	}
	if got := stock.quantityOf("Nike-AX1-10"); got != 0 {
		t.Fatalf("second line must not be decremented, got %d", got)
	}
	if len(saleRepo.sales) != 0 {
		t.Fatalf("no sale record should exist")
	}
}

func TestSellCompensatesWhenConditionalWriteLoses(t *testing.T) {
	svc, stock, saleRepo := newTestService(t)
	seedStock(stock, "Nike-AX1-9", 5, 50)
	seedStock(stock, "Nike-AX1-10", 3, 50)
	stock.raceConflicts["Nike-AX1-10"] = true

	_, err := svc.Sell(context.Background(), []models.CartItem{
		{SKUCode: "Nike-AX1-9", Quantity: 2, UnitSellPrice: 60},
		{SKUCode: "Nike-AX1-10", Quantity: 1, UnitSellPrice: 60},
	})
	if !apperr.IsKind(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	if got := stock.quantityOf("Nike-AX1-9"); got != 5 {
		t.Fatalf("applied decrement must be compensated, got %d", got)
	}
	if len(saleRepo.sales) != 0 {
		t.Fatalf("no sale record should exist after compensation")
	}
}

func seedSale(t *testing.T, svc *Service, stock *fakeStockRepo) string {
	t.Helper()
	seedStock(stock, "Nike-AX1-8", 10, 40)
	seedStock(stock, "Nike-AX1-9", 10, 50)
	seedStock(stock, "Nike-AX1-10", 10, 60)

	saleID, err := svc.Sell(context.Background(), []models.CartItem{
		{SKUCode: "Nike-AX1-8", Quantity: 1, UnitSellPrice: 55},
		{SKUCode: "Nike-AX1-9", Quantity: 2, UnitSellPrice: 65, Discount: 5},
		{SKUCode: "Nike-AX1-10", Quantity: 3, UnitSellPrice: 75},
	})
	if err != nil {
		t.Fatalf("seed sale failed: %v", err)
	}
	return saleID
}

func TestPatchItemTouchesOnlyThatIndex(t *testing.T) {
	svc, stock, _ := newTestService(t)
	saleID := seedSale(t, svc, stock)

	before, err := svc.GetSale(context.Background(), saleID)
	if err != nil {
		t.Fatalf("get sale failed: %v", err)
	}

	newQty := 4
	updated, err := svc.PatchItem(context.Background(), saleID, 1, models.SaleItemPatch{Quantity: &newQty})
	if err != nil {
		t.Fatalf("patch failed: %v", err)
	}
	if updated.Quantity != 4 {
		t.Fatalf("quantity not patched: %d", updated.Quantity)
	}
	if updated.TotalAmount != 65*4-5 {
		t.Fatalf("totalAmount not recomputed: %v", updated.TotalAmount)
	}
	if updated.Profit != before.Items[1].Profit {
		t.Fatalf("profit must keep its at-sale value")
	}

	after, err := svc.GetSale(context.Background(), saleID)
	if err != nil {
		t.Fatalf("get sale failed: %v", err)
	}
	if !reflect.DeepEqual(after.Items[0], before.Items[0]) {
		t.Fatalf("item 0 changed: %+v vs %+v", after.Items[0], before.Items[0])
	}
	if !reflect.DeepEqual(after.Items[2], before.Items[2]) {
		t.Fatalf("item 2 changed: %+v vs %+v", after.Items[2], before.Items[2])
	}
}

func TestPatchItemDoesNotAdjustStock(t *testing.T) {
	svc, stock, _ := newTestService(t)
	saleID := seedSale(t, svc, stock)
	beforeQty := stock.quantityOf("Nike-AX1-9")

	newQty := 1
	if _, err := svc.PatchItem(context.Background(), saleID, 1, models.SaleItemPatch{Quantity: &newQty}); err != nil {
		t.Fatalf("patch failed: %v", err)
	}

	if got := stock.quantityOf("Nike-AX1-9"); got != beforeQty {
		t.Fatalf("editing a sale must not return stock: %d vs %d", got, beforeQty)
	}
}

func TestPatchItemOutOfRange(t *testing.T) {
	svc, stock, _ := newTestService(t)
	saleID := seedSale(t, svc, stock)

	newQty := 1
	_, err := svc.PatchItem(context.Background(), saleID, 9, models.SaleItemPatch{Quantity: &newQty})
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("expected not-found for out-of-range index, got %v", err)
	}
}

func TestReplaceItemsRecomputesTotals(t *testing.T) {
	svc, stock, _ := newTestService(t)
	saleID := seedSale(t, svc, stock)

	sale, err := svc.ReplaceItems(context.Background(), saleID, []models.SaleLineItem{
		{SKUCode: "Nike-AX1-8", Quantity: 2, SellPrice: 50, Discount: 10, TotalAmount: 12345},
	})
	if err != nil {
		t.Fatalf("replace failed: %v", err)
	}
	if sale.Items[0].TotalAmount != 90 {
		t.Fatalf("totalAmount must be recomputed, got %v", sale.Items[0].TotalAmount)
	}
}

func TestReplaceItemsRejectsEmpty(t *testing.T) {
	svc, stock, _ := newTestService(t)
	saleID := seedSale(t, svc, stock)

	_, err := svc.ReplaceItems(context.Background(), saleID, nil)
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGetSaleMalformedID(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.GetSale(context.Background(), "zzz")
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestListSalesComputesGrossTotal(t *testing.T) {
	svc, stock, _ := newTestService(t)
	seedSale(t, svc, stock)

	result, err := svc.ListSales(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(result.Sales) != 1 {
		t.Fatalf("expected one sale, got %d", len(result.Sales))
	}
	// 55 + (65*2-5) + 75*3 = 55 + 125 + 225
	if result.GrossTotal != 405 {
		t.Fatalf("grossTotal = %v, want 405", result.GrossTotal)
	}
}

func TestListSalesHonorsDateRange(t *testing.T) {
	svc, stock, saleRepo := newTestService(t)
	seedSale(t, svc, stock)

	past := time.Now().Add(-48 * time.Hour)
	saleRepo.sales[0].SoldAt = past

	from := time.Now().Add(-1 * time.Hour)
	result, err := svc.ListSales(context.Background(), &from, nil)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(result.Sales) != 0 || result.GrossTotal != 0 {
		t.Fatalf("sale outside the range should be excluded: %+v", result)
	}
}
