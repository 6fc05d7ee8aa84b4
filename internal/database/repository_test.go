package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"storefront/internal/models"
	"storefront/internal/orders"
)

func TestRepositoriesAgainstMockDeployment(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("decrement returns remaining stock", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "value", Value: bson.D{{Key: "_id", Value: "p1"}, {Key: "stock", Value: 2}}},
		))
		repo := NewProductRepository(mt.DB)

		remaining, err := repo.DecrementStock(context.Background(), "p1", 3)
		require.NoError(mt, err)
		assert.Equal(mt, 2, remaining)
	})

	mt.Run("decrement on untracked product", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))
		repo := NewProductRepository(mt.DB)

		_, err := repo.DecrementStock(context.Background(), "p1", 1)
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("missing order", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "storefront.orders", mtest.FirstBatch))
		repo := NewOrderRepository(mt.DB)

		_, err := repo.FindOrder(context.Background(), "nope")
		assert.ErrorIs(mt, err, ErrNotFound)
		assert.ErrorIs(mt, err, orders.ErrOrderNotFound)
	})

	mt.Run("status update matched", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))
		repo := NewOrderRepository(mt.DB)

		ok, err := repo.UpdateOrderStatus(context.Background(), "order-1", models.StatusPending, models.StatusConfirmed, time.Now())
		require.NoError(mt, err)
		assert.True(mt, ok)
	})

	mt.Run("status update on moved order", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))
		repo := NewOrderRepository(mt.DB)

		ok, err := repo.UpdateOrderStatus(context.Background(), "order-1", models.StatusPending, models.StatusConfirmed, time.Now())
		require.NoError(mt, err)
		assert.False(mt, ok)
	})

	mt.Run("complement ids", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "storefront.category_complements", mtest.FirstBatch,
			bson.D{{Key: "category", Value: "marmitas"}, {Key: "complementId", Value: "rice"}},
			bson.D{{Key: "category", Value: "meals"}, {Key: "complementId", Value: "beans"}},
		))
		repo := NewComplementRepository(mt.DB)

		ids, err := repo.IDsFor(context.Background(), models.CategoryMeals)
		require.NoError(mt, err)
		assert.Equal(mt, []string{"rice", "beans"}, ids)
	})
}
