package cart

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/models"
)

func product(id, price string) models.Product {
	return models.Product{ID: id, Name: "Product " + id, Price: decimal.RequireFromString(price), Available: true}
}

func side(id, price string) models.ComplementLine {
	p := product(id, price)
	p.Category = models.CategorySides
	return models.ComplementLine{Product: p, Quantity: 1}
}

// expectedTotal recomputes the total independently of models.SumLines.
func expectedTotal(s State) decimal.Decimal {
	total := decimal.Zero
	for _, l := range s.Lines {
		unit := l.Product.Price
		for _, c := range l.Complements {
			unit = unit.Add(c.Product.Price.Mul(decimal.NewFromInt(int64(c.Quantity))))
		}
		total = total.Add(unit.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}

func TestEmptyState(t *testing.T) {
	s := Empty()
	assert.True(t, s.IsEmpty())
	assert.Equal(t, models.ModeDelivery, s.Mode)
	assert.True(t, s.Total.IsZero())
}

func TestAddItemMergesPlainLines(t *testing.T) {
	p := product("a", "18.90")
	s := Empty().AddItem(p).AddItem(p)

	require.Len(t, s.Lines, 1)
	assert.Equal(t, 2, s.Lines[0].Quantity)
	assert.Equal(t, "a", s.Lines[0].ID)
	assert.Equal(t, "37.80", s.Total.StringFixed(2))
}

func TestAddItemWithComplementsNeverMerges(t *testing.T) {
	p := product("a", "10.00")
	extras := []models.ComplementLine{side("s1", "2.50")}

	s := Empty().
		AddItemWithComplements(p, extras, "sem sal").
		AddItemWithComplements(p, extras, "sem sal")

	require.Len(t, s.Lines, 2)
	assert.NotEqual(t, s.Lines[0].ID, s.Lines[1].ID)
	assert.True(t, s.Lines[0].Configured())
	assert.Equal(t, "25.00", s.Total.StringFixed(2))

	s = s.AddItem(p)
	require.Len(t, s.Lines, 3)
	assert.Equal(t, "35.00", s.Total.StringFixed(2))
}

func TestAddItemWithComplementsDropsZeroQuantities(t *testing.T) {
	zero := side("s2", "4.00")
	zero.Quantity = 0
	s := Empty().AddItemWithComplements(product("a", "10.00"), []models.ComplementLine{side("s1", "1.00"), zero}, "")

	require.Len(t, s.Lines[0].Complements, 1)
	assert.Equal(t, "11.00", s.Total.StringFixed(2))
}

func TestRemoveItemDropsEveryLineForProduct(t *testing.T) {
	a := product("a", "10.00")
	b := product("b", "3.00")
	s := Empty().AddItem(a).AddItemWithComplements(a, nil, "bem passado").AddItem(b)

	s = s.RemoveItem("a")
	require.Len(t, s.Lines, 1)
	assert.Equal(t, "b", s.Lines[0].Product.ID)
	assert.Equal(t, "3.00", s.Total.StringFixed(2))
}

func TestUpdateQuantity(t *testing.T) {
	a := product("a", "10.00")
	s := Empty().AddItem(a)

	s = s.UpdateQuantity("a", 4)
	assert.Equal(t, 4, s.Lines[0].Quantity)
	assert.Equal(t, "40.00", s.Total.StringFixed(2))

	assert.True(t, s.UpdateQuantity("a", 0).IsEmpty())
	assert.True(t, s.UpdateQuantity("a", -3).IsEmpty())
	assert.True(t, s.UpdateQuantity("a", 0).Total.IsZero())

	unchanged := s.UpdateQuantity("missing", 9)
	assert.Equal(t, s.Lines, unchanged.Lines)
}

func TestUpdateObservation(t *testing.T) {
	s := Empty().AddItem(product("a", "10.00")).UpdateObservation("a", "sem cebola")
	assert.Equal(t, "sem cebola", s.Lines[0].Observation)
}

func TestSetDeliveryModeKeepsTotal(t *testing.T) {
	fee := decimal.RequireFromString("2.00")
	s := Empty().AddItem(product("a", "18.90")).AddItem(product("a", "18.90"))

	pickup := s.SetDeliveryMode(models.ModePickup)
	assert.True(t, pickup.Total.Equal(s.Total))
	assert.True(t, pickup.DeliveryFee(fee).IsZero())
	assert.Equal(t, "37.80", pickup.GrandTotal(fee).StringFixed(2))

	delivery := pickup.SetDeliveryMode(models.ModeDelivery)
	assert.Equal(t, "2.00", delivery.DeliveryFee(fee).StringFixed(2))
	assert.Equal(t, "39.80", delivery.GrandTotal(fee).StringFixed(2))
}

func TestClearResetsMode(t *testing.T) {
	s := Empty().AddItem(product("a", "1.00")).SetDeliveryMode(models.ModePickup).Clear()
	assert.True(t, s.IsEmpty())
	assert.Equal(t, models.ModeDelivery, s.Mode)
}

func TestOperationsDoNotMutateReceiver(t *testing.T) {
	a := product("a", "10.00")
	base := Empty().AddItemWithComplements(a, []models.ComplementLine{side("s1", "1.00")}, "x").AddItem(a)
	snapshot := base.Lines[0]

	_ = base.UpdateQuantity(snapshot.ID, 7)
	_ = base.UpdateObservation(snapshot.ID, "changed")
	_ = base.AddItem(a)
	_ = base.RemoveItem("a")

	assert.Equal(t, snapshot, base.Lines[0])
	assert.Equal(t, 1, base.Lines[1].Quantity)
	assert.Equal(t, "21.00", base.Total.StringFixed(2))
}

func TestTotalNeverDrifts(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	catalog := []models.Product{product("a", "18.90"), product("b", "4.50"), product("c", "0.99")}
	extras := []models.ComplementLine{side("s1", "2.00"), side("s2", "1.25")}

	s := Empty()
	for i := 0; i < 500; i++ {
		p := catalog[rng.Intn(len(catalog))]
		switch rng.Intn(7) {
		case 0, 1:
			s = s.AddItem(p)
		case 2:
			s = s.AddItemWithComplements(p, extras[:rng.Intn(len(extras)+1)], "")
		case 3:
			s = s.RemoveItem(p.ID)
		case 4:
			if len(s.Lines) > 0 {
				s = s.UpdateQuantity(s.Lines[rng.Intn(len(s.Lines))].ID, rng.Intn(6)-1)
			}
		case 5:
			s = s.SetDeliveryMode(models.ModePickup)
		case 6:
			if rng.Intn(10) == 0 {
				s = s.Clear()
			}
		}

		require.True(t, s.Total.Equal(expectedTotal(s)), "step %d", i)
		for _, l := range s.Lines {
			require.GreaterOrEqual(t, l.Quantity, 1)
		}
	}
}
