package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shoeshop/pos-backend/internal/domain/models"
)

// SaleRepository defines the persistence operations over sale records.
type SaleRepository interface {
	Insert(ctx context.Context, sale models.SaleRecord) (primitive.ObjectID, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.SaleRecord, error)
	List(ctx context.Context, from, to *time.Time) ([]models.SaleRecord, error)
	ReplaceItems(ctx context.Context, id primitive.ObjectID, items []models.SaleLineItem) (bool, error)
}

type mongoSaleRepository struct {
	coll *mongo.Collection
}

func (r *mongoSaleRepository) Insert(ctx context.Context, sale models.SaleRecord) (primitive.ObjectID, error) {
	res, err := r.coll.InsertOne(ctx, sale)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("insert sale record: %w", err)
	}
	id, _ := res.InsertedID.(primitive.ObjectID)
	return id, nil
}

func (r *mongoSaleRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.SaleRecord, error) {
	var sale models.SaleRecord
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&sale)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find sale record: %w", err)
	}
	return &sale, nil
}

// List returns sales newest-first, optionally restricted to the closed
// interval [from, to] on soldAt.
func (r *mongoSaleRepository) List(ctx context.Context, from, to *time.Time) ([]models.SaleRecord, error) {
	filter := bson.M{}
	if from != nil || to != nil {
		soldAt := bson.M{}
		if from != nil {
			soldAt["$gte"] = *from
		}
		if to != nil {
			soldAt["$lte"] = *to
		}
		filter["soldAt"] = soldAt
	}

	opts := options.Find().SetSort(bson.D{{Key: "soldAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list sale records: %w", err)
	}
	defer cursor.Close(ctx)

	var sales []models.SaleRecord
	if err := cursor.All(ctx, &sales); err != nil {
		return nil, fmt.Errorf("decode sale records: %w", err)
	}
	return sales, nil
}

func (r *mongoSaleRepository) ReplaceItems(ctx context.Context, id primitive.ObjectID, items []models.SaleLineItem) (bool, error) {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"items": items}})
	if err != nil {
		return false, fmt.Errorf("replace sale items: %w", err)
	}
	return res.MatchedCount > 0, nil
}
