package database

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"

	"storefront/internal/models"
)

func TestDecimalCodecRoundTrip(t *testing.T) {
	reg := NewRegistry()
	change := decimal.RequireFromString("50.00")
	order := models.Order{
		ID: "order-1",
		Customer: models.OrderCustomer{
			Name:          "Maria",
			DeliveryMode:  models.ModePickup,
			PaymentMethod: models.PaymentCash,
			ChangeFor:     &change,
			DeliveryFee:   decimal.Zero,
		},
		Items: []models.CartLine{{
			ID:       "p1",
			Product:  models.Product{ID: "p1", Name: "Meal", Price: decimal.RequireFromString("18.90"), Stock: models.IntPtr(3)},
			Quantity: 2,
		}},
		Subtotal:  decimal.RequireFromString("37.80"),
		Total:     decimal.RequireFromString("37.80"),
		Status:    models.StatusPending,
		CreatedAt: time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC),
	}

	raw, err := bson.MarshalWithRegistry(reg, order)
	require.NoError(t, err)

	total, err := bson.Raw(raw).LookupErr("total")
	require.NoError(t, err)
	assert.Equal(t, bsontype.Decimal128, total.Type)

	var decoded models.Order
	require.NoError(t, bson.UnmarshalWithRegistry(reg, raw, &decoded))
	assert.True(t, decoded.Total.Equal(order.Total))
	assert.True(t, decoded.Items[0].Product.Price.Equal(order.Items[0].Product.Price))
	require.NotNil(t, decoded.Customer.ChangeFor)
	assert.True(t, decoded.Customer.ChangeFor.Equal(change))
	assert.Equal(t, 3, *decoded.Items[0].Product.Stock)
}

func TestDecimalCodecReadsLegacyNumbers(t *testing.T) {
	reg := NewRegistry()
	raw, err := bson.Marshal(bson.M{
		"_id":       "p1",
		"name":      "Marmita",
		"price":     18.9,
		"available": true,
		"category":  "marmitas",
		"stock":     int32(4),
	})
	require.NoError(t, err)

	var p models.Product
	require.NoError(t, bson.UnmarshalWithRegistry(reg, raw, &p))
	assert.Equal(t, "18.90", p.Price.StringFixed(2))
	assert.Equal(t, models.CategoryMeals, p.Category)
	assert.Equal(t, 4, *p.Stock)

	for _, value := range []any{int32(5), int64(5), "5.00"} {
		raw, err := bson.Marshal(bson.M{"price": value})
		require.NoError(t, err)
		var out struct {
			Price decimal.Decimal `bson:"price"`
		}
		require.NoError(t, bson.UnmarshalWithRegistry(reg, raw, &out))
		assert.Equal(t, "5.00", out.Price.StringFixed(2))
	}
}

func TestDiffLinks(t *testing.T) {
	add, remove := DiffLinks([]string{"a", "b", "c"}, []string{"b", "d", "d", ""})
	assert.Equal(t, []string{"d"}, add)
	assert.Equal(t, []string{"a", "c"}, remove)

	add, remove = DiffLinks(nil, nil)
	assert.Empty(t, add)
	assert.Empty(t, remove)
}

func TestProductUpdateDocument(t *testing.T) {
	name := "Marmita"
	price := decimal.RequireFromString("20")
	doc := ProductUpdate{Name: &name, Price: &price, ClearStock: true, Stock: models.IntPtr(3)}.document()

	assert.Equal(t, bson.M{"name": "Marmita", "price": price}, doc["$set"])
	assert.Equal(t, bson.M{"stock": ""}, doc["$unset"])
	assert.Empty(t, ProductUpdate{}.document())
}

func TestIndexPlanCoversCollections(t *testing.T) {
	seen := map[string]bool{}
	for _, plan := range indexPlan() {
		seen[plan.collection] = true
		assert.NotEmpty(t, plan.models)
	}
	for _, name := range []string{productsCollection, ordersCollection, categoryComplementsCollection, adminsCollection, refreshTokensCollection} {
		assert.True(t, seen[name], name)
	}
}
