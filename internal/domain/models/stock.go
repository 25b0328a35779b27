package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StockRecord is one inventory row per distinct
// (name, brand, articleNumber, color, size, unitPrice) combination.
type StockRecord struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name           string             `bson:"name" json:"name"`
	Brand          string             `bson:"brand" json:"brand"`
	ArticleNumber  string             `bson:"articleNumber" json:"articleNumber"`
	Color          string             `bson:"color" json:"color"`
	Size           float64            `bson:"size" json:"size"`
	QuantityOnHand int                `bson:"quantityOnHand" json:"quantityOnHand"`
	UnitPrice      float64            `bson:"unitPrice" json:"unitPrice"`
	SKUCode        string             `bson:"skuCode" json:"skuCode"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
}

// MergeKey is the natural key used to decide between the merge and insert
// paths on restock. All six attributes must match exactly.
type MergeKey struct {
	Name          string
	Brand         string
	ArticleNumber string
	Color         string
	Size          float64
	UnitPrice     float64
}

// Key extracts the merge key from a stock record.
func (r StockRecord) Key() MergeKey {
	return MergeKey{
		Name:          r.Name,
		Brand:         r.Brand,
		ArticleNumber: r.ArticleNumber,
		Color:         r.Color,
		Size:          r.Size,
		UnitPrice:     r.UnitPrice,
	}
}

// TraceableUnit is a per-pair label identifier minted at restock time. It is
// never persisted; the code is printed on the physical label and resolved
// back to a StockRecord by its fingerprint prefix.
type TraceableUnit struct {
	Brand         string  `json:"brand"`
	ArticleNumber string  `json:"articleNumber"`
	Size          float64 `json:"size"`
	Code          string  `json:"code"`
}

// RestockRequest carries one delivery of a single shoe model in one or more
// sizes. Size keys and counts arrive as loose JSON values; entries that do
// not coerce to positive numbers are skipped rather than rejected.
type RestockRequest struct {
	Name             string         `json:"name" binding:"required"`
	Brand            string         `json:"brand" binding:"required"`
	ArticleNumber    string         `json:"articleNumber"`
	Color            string         `json:"color"`
	UnitPrice        float64        `json:"unitPrice"`
	QuantitiesBySize map[string]any `json:"quantitiesBySize" binding:"required"`
}

// RestockResult reports how a delivery was reconciled into stock.
type RestockResult struct {
	InsertedCount int             `json:"insertedCount"`
	UpdatedCount  int             `json:"updatedCount"`
	Units         []TraceableUnit `json:"units"`
}

// StockSummary is one row of the grouped current-stock view. Quantities are
// summed across any residual duplicate rows sharing the same merge key.
type StockSummary struct {
	ID             primitive.ObjectID `bson:"id" json:"id"`
	Name           string             `bson:"name" json:"name"`
	Brand          string             `bson:"brand" json:"brand"`
	ArticleNumber  string             `bson:"articleNumber" json:"articleNumber"`
	Color          string             `bson:"color" json:"color"`
	Size           float64            `bson:"size" json:"size"`
	UnitPrice      float64            `bson:"unitPrice" json:"unitPrice"`
	QuantityOnHand int                `bson:"quantityOnHand" json:"quantityOnHand"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
}

// StockPatch holds optional field overrides for a manual stock correction.
// Nil fields keep their stored value. No merge semantics apply here.
type StockPatch struct {
	Name           *string  `json:"name"`
	Brand          *string  `json:"brand"`
	ArticleNumber  *string  `json:"articleNumber"`
	Color          *string  `json:"color"`
	Size           *float64 `json:"size"`
	QuantityOnHand *int     `json:"quantityOnHand"`
	UnitPrice      *float64 `json:"unitPrice"`
}
