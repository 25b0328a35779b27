package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/shoeshop/pos-backend/internal/domain/models"
)

// ReportRepository persists generated daily summaries.
type ReportRepository interface {
	InsertDailySummary(ctx context.Context, summary models.DailySummary) error
}

type mongoReportRepository struct {
	coll *mongo.Collection
}

func (r *mongoReportRepository) InsertDailySummary(ctx context.Context, summary models.DailySummary) error {
	if _, err := r.coll.InsertOne(ctx, summary); err != nil {
		return fmt.Errorf("insert daily summary: %w", err)
	}
	return nil
}
