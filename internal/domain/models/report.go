package models

import "time"

// DailySummary aggregates one day's sales for reporting.
type DailySummary struct {
	Date          time.Time `bson:"date" json:"date"`
	Transactions  int       `bson:"transactions" json:"transactions"`
	UnitsSold     int       `bson:"units_sold" json:"units_sold"`
	GrossAmount   float64   `bson:"gross_amount" json:"gross_amount"`
	TotalDiscount float64   `bson:"total_discount" json:"total_discount"`
	TotalProfit   float64   `bson:"total_profit" json:"total_profit"`
	CreatedAt     time.Time `bson:"created_at" json:"created_at"`
}
