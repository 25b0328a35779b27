package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ShoeInfo is the descriptive snapshot captured on each sale line so that
// historical sales stay readable after the underlying SKU is edited.
type ShoeInfo struct {
	Name          string  `bson:"name" json:"name"`
	Brand         string  `bson:"brand" json:"brand"`
	ArticleNumber string  `bson:"articleNumber" json:"articleNumber"`
	Size          float64 `bson:"size" json:"size"`
	Color         string  `bson:"color" json:"color"`
}

// SaleLineItem is one product entry within a sale.
//
// TotalAmount is always quantity*sellPrice-discount. Profit is computed once
// against the SKU's unit price at sale time and is not re-derived when the
// line is edited later.
type SaleLineItem struct {
	SKUCode     string   `bson:"skuCode" json:"skuCode"`
	Quantity    int      `bson:"quantity" json:"quantity"`
	SellPrice   float64  `bson:"sellPrice" json:"sellPrice"`
	Discount    float64  `bson:"discount" json:"discount"`
	Profit      float64  `bson:"profit" json:"profit"`
	TotalAmount float64  `bson:"totalAmount" json:"totalAmount"`
	ShoeInfo    ShoeInfo `bson:"shoeInfo" json:"shoeInfo"`
}

// SaleRecord is one completed transaction. Items is never empty at creation
// time; it may be rewritten afterward by the sale history editor.
type SaleRecord struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Items  []SaleLineItem     `bson:"items" json:"items"`
	SoldAt time.Time          `bson:"soldAt" json:"soldAt"`
}

// CartItem is one requested line of a sale before validation.
type CartItem struct {
	SKUCode       string  `json:"skuCode"`
	Quantity      int     `json:"quantity"`
	UnitSellPrice float64 `json:"unitSellPrice"`
	Discount      float64 `json:"discount"`
}

// SellRequest wraps the cart submitted by the register.
type SellRequest struct {
	Cart []CartItem `json:"cart"`
}

// SaleListResult is the date-filtered sale listing plus the gross total over
// every returned line item. The total is derived at read time, never stored.
type SaleListResult struct {
	Sales      []SaleRecord `json:"sales"`
	GrossTotal float64      `json:"grossTotal"`
}

// SaleItemPatch holds optional overrides for a single sale line. Nil fields
// keep their recorded value; totalAmount is recomputed from the merged line.
type SaleItemPatch struct {
	Quantity  *int     `json:"quantity"`
	SellPrice *float64 `json:"sellPrice"`
	Discount  *float64 `json:"discount"`
}
