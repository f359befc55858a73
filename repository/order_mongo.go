package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yeremiapane/dineflow/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	ordersCollection   = "orders"
	countersCollection = "counters"
)

// MongoOrderRepository stores each order as one document with embedded items.
// Numeric ids come from a counters collection so the API looks the same as
// with the SQL store.
type MongoOrderRepository struct {
	orders   *mongo.Collection
	counters *mongo.Collection
}

func NewMongoOrderRepository(db *mongo.Database) *MongoOrderRepository {
	return &MongoOrderRepository{
		orders:   db.Collection(ordersCollection),
		counters: db.Collection(countersCollection),
	}
}

// EnsureIndexes creates the indexes List relies on.
func (r *MongoOrderRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.orders.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "table_id", Value: 1}}},
	})
	return err
}

func (r *MongoOrderRepository) nextID(ctx context.Context) (uint, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": ordersCollection},
		bson.M{"$inc": bson.M{"seq": 1}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("allocate order id: %w", err)
	}
	return uint(counter.Seq), nil
}

func (r *MongoOrderRepository) Create(ctx context.Context, order *models.Order) error {
	id, err := r.nextID(ctx)
	if err != nil {
		return err
	}

	now := time.Now()
	order.ID = id
	if order.Version == 0 {
		order.Version = 1
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = now
	order.RecomputeTotal()
	for i := range order.Items {
		order.Items[i].OrderID = id
	}

	if _, err := r.orders.InsertOne(ctx, order); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (r *MongoOrderRepository) FindByID(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := r.orders.FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("order %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find order %d: %w", id, err)
	}
	fillItemOrderIDs(&order)
	return &order, nil
}

func (r *MongoOrderRepository) List(ctx context.Context, filter OrderFilter) ([]models.Order, error) {
	query := bson.M{}
	if len(filter.Statuses) > 0 {
		query["status"] = bson.M{"$in": filter.Statuses}
	}
	if filter.TableID != "" {
		query["table_id"] = filter.TableID
	}
	created := bson.M{}
	if filter.From != nil {
		created["$gte"] = *filter.From
	}
	if filter.To != nil {
		created["$lt"] = *filter.To
	}
	if len(created) > 0 {
		query["created_at"] = created
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}

	cursor, err := r.orders.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer cursor.Close(ctx)

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}
	for i := range orders {
		fillItemOrderIDs(&orders[i])
	}
	return orders, nil
}

func (r *MongoOrderRepository) UpdateStatus(ctx context.Context, order *models.Order, expectedVersion uint) error {
	res, err := r.orders.UpdateOne(ctx,
		bson.M{"_id": order.ID, "version": expectedVersion},
		bson.M{"$set": bson.M{
			"status":       order.Status,
			"preparing_at": order.PreparingAt,
			"ready_at":     order.ReadyAt,
			"delivered_at": order.DeliveredAt,
			"version":      order.Version,
			"updated_at":   order.UpdatedAt,
		}},
	)
	if err != nil {
		return fmt.Errorf("update order %d status: %w", order.ID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("order %d at version %d: %w", order.ID, expectedVersion, models.ErrVersionConflict)
	}
	return nil
}

func (r *MongoOrderRepository) SetPaymentMethod(ctx context.Context, id uint, method string) error {
	res, err := r.orders.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"payment_method": method, "updated_at": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("set payment method on order %d: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("order %d: %w", id, models.ErrNotFound)
	}
	return nil
}

func (r *MongoOrderRepository) CountByStatus(ctx context.Context) (map[models.OrderStatus]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$status"},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
	cursor, err := r.orders.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("count orders by status: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Status models.OrderStatus `bson:"_id"`
		Total  int64              `bson:"total"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode status counts: %w", err)
	}

	counts := make(map[models.OrderStatus]int64, len(models.AllOrderStatuses))
	for _, s := range models.AllOrderStatuses {
		counts[s] = 0
	}
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}

func fillItemOrderIDs(order *models.Order) {
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
	}
}
