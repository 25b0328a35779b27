// Package mongodb adapts the document store the core persists into. The
// connection is established once at process start and injected into each
// service; per-document writes are atomic, cross-document sequences are not.
package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	stockCollection  = "shoes"
	salesCollection  = "sales"
	reportCollection = "daily_summaries"
)

// Store owns the MongoDB client for the process lifetime and hands out
// collection-scoped repositories.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect dials MongoDB and verifies the connection with a ping.
func Connect(ctx context.Context, uri, dbName string) (*Store, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &Store{client: client, db: client.Database(dbName)}, nil
}

// Stock returns the stock ledger repository.
func (s *Store) Stock() StockRepository {
	return &mongoStockRepository{coll: s.db.Collection(stockCollection)}
}

// Sales returns the sale record repository.
func (s *Store) Sales() SaleRepository {
	return &mongoSaleRepository{coll: s.db.Collection(salesCollection)}
}

// Reports returns the daily summary repository.
func (s *Store) Reports() ReportRepository {
	return &mongoReportRepository{coll: s.db.Collection(reportCollection)}
}

// Close releases the MongoDB connection.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
