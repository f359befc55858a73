package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/dineflow/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func newMockMongo(t *testing.T) *mtest.T {
	return mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
}

func TestMongoCreateRecomputesTotal(t *testing.T) {
	mt := newMockMongo(t)

	mt.Run("allocates id from counter", func(mt *mtest.T) {
		repo := NewMongoOrderRepository(mt.DB)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
				{Key: "_id", Value: ordersCollection},
				{Key: "seq", Value: int64(12)},
			}}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
		)

		order := sampleOrder()
		require.NoError(mt, repo.Create(context.Background(), order))
		assert.Equal(mt, uint(12), order.ID)
		assert.Equal(mt, 79.0, order.TotalAmount)
		assert.Equal(mt, uint(1), order.Version)
		assert.False(mt, order.CreatedAt.IsZero())
		for _, item := range order.Items {
			assert.Equal(mt, uint(12), item.OrderID)
		}
	})

	mt.Run("counter failure", func(mt *mtest.T) {
		repo := NewMongoOrderRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Message: "bad counter",
			Name:    "BadValue",
		}))

		order := sampleOrder()
		err := repo.Create(context.Background(), order)
		require.Error(mt, err)
		assert.Contains(mt, err.Error(), "allocate order id")
		assert.Zero(mt, order.ID)
	})
}

func TestMongoFindByID(t *testing.T) {
	mt := newMockMongo(t)

	mt.Run("not found", func(mt *mtest.T) {
		repo := NewMongoOrderRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "dineflow.orders", mtest.FirstBatch))

		_, err := repo.FindByID(context.Background(), 404)
		assert.ErrorIs(mt, err, models.ErrNotFound)
	})

	mt.Run("fills item order ids", func(mt *mtest.T) {
		repo := NewMongoOrderRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "dineflow.orders", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: int64(3)},
			{Key: "table_id", Value: "A1"},
			{Key: "status", Value: "ready"},
			{Key: "total_amount", Value: 64.0},
			{Key: "version", Value: int64(4)},
			{Key: "items", Value: bson.A{
				bson.D{{Key: "dish_id", Value: int64(1)}, {Key: "name", Value: "Rendang"}, {Key: "price", Value: 32.0}, {Key: "quantity", Value: 2}},
			}},
		}))

		order, err := repo.FindByID(context.Background(), 3)
		require.NoError(mt, err)
		assert.Equal(mt, uint(3), order.ID)
		assert.Equal(mt, models.StatusReady, order.Status)
		assert.Equal(mt, uint(4), order.Version)
		require.Len(mt, order.Items, 1)
		assert.Equal(mt, uint(3), order.Items[0].OrderID)
		assert.Equal(mt, "Rendang", order.Items[0].Name)
	})
}

func TestMongoUpdateStatus(t *testing.T) {
	mt := newMockMongo(t)

	mt.Run("stale version", func(mt *mtest.T) {
		repo := NewMongoOrderRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		order := &models.Order{ID: 3, Status: models.StatusReady, Version: 3}
		err := repo.UpdateStatus(context.Background(), order, 2)
		assert.ErrorIs(mt, err, models.ErrVersionConflict)
	})

	mt.Run("matched", func(mt *mtest.T) {
		repo := NewMongoOrderRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		order := &models.Order{ID: 3, Status: models.StatusReady, Version: 3}
		assert.NoError(mt, repo.UpdateStatus(context.Background(), order, 2))
	})
}

func TestMongoSetPaymentMethodMissingOrder(t *testing.T) {
	mt := newMockMongo(t)

	mt.Run("no match", func(mt *mtest.T) {
		repo := NewMongoOrderRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		err := repo.SetPaymentMethod(context.Background(), 99, "cash")
		assert.ErrorIs(mt, err, models.ErrNotFound)
	})
}

func TestMongoCountByStatusZeroFills(t *testing.T) {
	mt := newMockMongo(t)

	mt.Run("partial groups", func(mt *mtest.T) {
		repo := NewMongoOrderRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "dineflow.orders", mtest.FirstBatch,
			bson.D{{Key: "_id", Value: "pending"}, {Key: "total", Value: int64(2)}},
			bson.D{{Key: "_id", Value: "ready"}, {Key: "total", Value: int64(1)}},
		))

		counts, err := repo.CountByStatus(context.Background())
		require.NoError(mt, err)
		require.Len(mt, counts, len(models.AllOrderStatuses))
		assert.Equal(mt, int64(2), counts[models.StatusPending])
		assert.Equal(mt, int64(1), counts[models.StatusReady])
		assert.Equal(mt, int64(0), counts[models.StatusPreparing])
		assert.Equal(mt, int64(0), counts[models.StatusCancelled])
	})
}
