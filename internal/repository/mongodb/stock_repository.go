package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/shoeshop/pos-backend/internal/domain/models"
)

// StockRepository defines the persistence operations the stock ledger needs.
// Lookups that miss return (nil, nil); callers decide what a miss means.
type StockRepository interface {
	FindByKey(ctx context.Context, key models.MergeKey) (*models.StockRecord, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.StockRecord, error)
	FindBySKUCode(ctx context.Context, code string) (*models.StockRecord, error)
	Insert(ctx context.Context, rec models.StockRecord) (primitive.ObjectID, error)
	IncrementQuantity(ctx context.Context, id primitive.ObjectID, delta int) error
	Update(ctx context.Context, id primitive.ObjectID, rec models.StockRecord) (bool, error)
	AggregateCurrent(ctx context.Context) ([]models.StockSummary, error)
	DecrementIfAvailable(ctx context.Context, skuCode string, qty int) (bool, error)
	IncrementBySKUCode(ctx context.Context, skuCode string, qty int) error
}

type mongoStockRepository struct {
	coll *mongo.Collection
}

func (r *mongoStockRepository) FindByKey(ctx context.Context, key models.MergeKey) (*models.StockRecord, error) {
	filter := bson.M{
		"name":          key.Name,
		"brand":         key.Brand,
		"articleNumber": key.ArticleNumber,
		"color":         key.Color,
		"size":          key.Size,
		"unitPrice":     key.UnitPrice,
	}
	return r.findOne(ctx, filter)
}

func (r *mongoStockRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.StockRecord, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoStockRepository) FindBySKUCode(ctx context.Context, code string) (*models.StockRecord, error) {
	return r.findOne(ctx, bson.M{"skuCode": code})
}

func (r *mongoStockRepository) findOne(ctx context.Context, filter bson.M) (*models.StockRecord, error) {
	var rec models.StockRecord
	err := r.coll.FindOne(ctx, filter).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find stock record: %w", err)
	}
	return &rec, nil
}

func (r *mongoStockRepository) Insert(ctx context.Context, rec models.StockRecord) (primitive.ObjectID, error) {
	res, err := r.coll.InsertOne(ctx, rec)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("insert stock record: %w", err)
	}
	id, _ := res.InsertedID.(primitive.ObjectID)
	return id, nil
}

func (r *mongoStockRepository) IncrementQuantity(ctx context.Context, id primitive.ObjectID, delta int) error {
	_, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"quantityOnHand": delta}})
	if err != nil {
		return fmt.Errorf("increment quantity: %w", err)
	}
	return nil
}

func (r *mongoStockRepository) Update(ctx context.Context, id primitive.ObjectID, rec models.StockRecord) (bool, error) {
	set := bson.M{
		"name":           rec.Name,
		"brand":          rec.Brand,
		"articleNumber":  rec.ArticleNumber,
		"color":          rec.Color,
		"size":           rec.Size,
		"quantityOnHand": rec.QuantityOnHand,
		"unitPrice":      rec.UnitPrice,
		"skuCode":        rec.SKUCode,
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return false, fmt.Errorf("update stock record: %w", err)
	}
	return res.MatchedCount > 0, nil
}

// AggregateCurrent folds the collection by merge key, summing quantities
// across residual duplicate rows and keeping the most recent createdAt.
func (r *mongoStockRepository) AggregateCurrent(ctx context.Context) ([]models.StockSummary, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{
				{Key: "name", Value: "$name"},
				{Key: "brand", Value: "$brand"},
				{Key: "articleNumber", Value: "$articleNumber"},
				{Key: "color", Value: "$color"},
				{Key: "size", Value: "$size"},
				{Key: "unitPrice", Value: "$unitPrice"},
			}},
			{Key: "quantityOnHand", Value: bson.D{{Key: "$sum", Value: "$quantityOnHand"}}},
			{Key: "createdAt", Value: bson.D{{Key: "$max", Value: "$createdAt"}}},
			{Key: "id", Value: bson.D{{Key: "$first", Value: "$_id"}}},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: 0},
			{Key: "id", Value: 1},
			{Key: "name", Value: "$_id.name"},
			{Key: "brand", Value: "$_id.brand"},
			{Key: "articleNumber", Value: "$_id.articleNumber"},
			{Key: "color", Value: "$_id.color"},
			{Key: "size", Value: "$_id.size"},
			{Key: "unitPrice", Value: "$_id.unitPrice"},
			{Key: "quantityOnHand", Value: 1},
			{Key: "createdAt", Value: 1},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate current stock: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []models.StockSummary
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode current stock rows: %w", err)
	}
	return rows, nil
}

// DecrementIfAvailable applies a conditional decrement: the write only
// matches while quantityOnHand covers the requested amount, so stock can
// never go negative even when sellers race.
func (r *mongoStockRepository) DecrementIfAvailable(ctx context.Context, skuCode string, qty int) (bool, error) {
	filter := bson.M{
		"skuCode":        skuCode,
		"quantityOnHand": bson.M{"$gte": qty},
	}
	res, err := r.coll.UpdateOne(ctx, filter, bson.M{"$inc": bson.M{"quantityOnHand": -qty}})
	if err != nil {
		return false, fmt.Errorf("decrement stock for %s: %w", skuCode, err)
	}
	return res.ModifiedCount > 0, nil
}

func (r *mongoStockRepository) IncrementBySKUCode(ctx context.Context, skuCode string, qty int) error {
	_, err := r.coll.UpdateOne(ctx, bson.M{"skuCode": skuCode}, bson.M{"$inc": bson.M{"quantityOnHand": qty}})
	if err != nil {
		return fmt.Errorf("re-increment stock for %s: %w", skuCode, err)
	}
	return nil
}
