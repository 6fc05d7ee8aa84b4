package stock

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/models"
)

func tracked(id string, stock *int) models.Product {
	return models.Product{ID: id, Name: "Product " + id, Price: decimal.RequireFromString("10.00"), Available: true, Stock: stock}
}

func TestCheckAvailabilityUntrackedAlwaysPasses(t *testing.T) {
	lines := []models.CartLine{{ID: "a", Product: tracked("a", nil), Quantity: 999}}
	assert.NoError(t, CheckAvailability(lines))
}

func TestCheckAvailabilityShortage(t *testing.T) {
	lines := []models.CartLine{
		{ID: "a", Product: tracked("a", models.IntPtr(5)), Quantity: 1},
		{ID: "b", Product: tracked("b", models.IntPtr(2)), Quantity: 3},
		{ID: "c", Product: tracked("c", models.IntPtr(0)), Quantity: 1},
	}

	err := CheckAvailability(lines)
	var shortage *ShortageError
	require.ErrorAs(t, err, &shortage)
	assert.Equal(t, "b", shortage.ProductID)
	assert.Equal(t, 2, shortage.Available)
	assert.Equal(t, 3, shortage.Requested)
	assert.Contains(t, shortage.Reason(), "only 2 unit(s)")
}

func TestCheckAvailabilitySoldOut(t *testing.T) {
	lines := []models.CartLine{{ID: "c", Product: tracked("c", models.IntPtr(0)), Quantity: 1}}

	var shortage *ShortageError
	require.ErrorAs(t, CheckAvailability(lines), &shortage)
	assert.Equal(t, 0, shortage.Available)
	assert.Equal(t, "Product c is out of stock", shortage.Reason())
}

func TestCheckAvailabilityComplementsScaleWithLine(t *testing.T) {
	lines := []models.CartLine{{
		ID:       "a#1",
		Product:  tracked("a", nil),
		Quantity: 2,
		Complements: []models.ComplementLine{
			{Product: tracked("rice", models.IntPtr(3)), Quantity: 2},
		},
	}}

	var shortage *ShortageError
	require.ErrorAs(t, CheckAvailability(lines), &shortage)
	assert.Equal(t, "rice", shortage.ProductID)
	assert.Equal(t, 4, shortage.Requested)
}

func TestPlanDecrementsAggregatesByProduct(t *testing.T) {
	p1 := tracked("p1", models.IntPtr(5))
	p2 := tracked("p2", models.IntPtr(1))
	lines := []models.CartLine{
		{ID: "p1", Product: p1, Quantity: 2},
		{ID: "p1#1", Product: p1, Quantity: 1},
		{ID: "p2", Product: p2, Quantity: 1},
		{ID: "free", Product: tracked("free", nil), Quantity: 4},
	}

	plan := PlanDecrements(lines)
	require.Len(t, plan, 2)
	assert.Equal(t, Decrement{ProductID: "p1", ProductName: "Product p1", Quantity: 3, Snapshot: 5}, plan[0])
	assert.Equal(t, Decrement{ProductID: "p2", ProductName: "Product p2", Quantity: 1, Snapshot: 1}, plan[1])
	assert.Equal(t, 2, plan[0].Remaining())
	assert.Equal(t, 0, plan[1].Remaining())
}

func TestPlanDecrementsIncludesComplements(t *testing.T) {
	rice := tracked("rice", models.IntPtr(10))
	lines := []models.CartLine{
		{ID: "a#1", Product: tracked("a", nil), Quantity: 3, Complements: []models.ComplementLine{{Product: rice, Quantity: 2}}},
		{ID: "rice", Product: rice, Quantity: 1},
	}

	plan := PlanDecrements(lines)
	require.Len(t, plan, 1)
	assert.Equal(t, 7, plan[0].Quantity)
}

func TestDecrementRemainingFloorsAtZero(t *testing.T) {
	assert.Equal(t, 0, Decrement{Quantity: 5, Snapshot: 2}.Remaining())
}

func TestCheckAvailabilitySumsProductAcrossLines(t *testing.T) {
	p1 := tracked("p1", models.IntPtr(2))
	lines := []models.CartLine{
		{ID: "p1", Product: p1, Quantity: 2},
		{ID: "p1#1", Product: p1, Quantity: 1, Observation: "sem cebola"},
	}

	var shortage *ShortageError
	require.ErrorAs(t, CheckAvailability(lines), &shortage)
	assert.Equal(t, "p1", shortage.ProductID)
	assert.Equal(t, 2, shortage.Available)
	assert.Equal(t, 3, shortage.Requested)

	assert.NoError(t, CheckAvailability(lines[:1]))
}

func TestCheckAvailabilitySumsComplementAcrossLines(t *testing.T) {
	rice := tracked("rice", models.IntPtr(3))
	lines := []models.CartLine{
		{ID: "a#1", Product: tracked("a", nil), Quantity: 1, Complements: []models.ComplementLine{{Product: rice, Quantity: 2}}},
		{ID: "b#2", Product: tracked("b", nil), Quantity: 1, Complements: []models.ComplementLine{{Product: rice, Quantity: 2}}},
	}

	var shortage *ShortageError
	require.ErrorAs(t, CheckAvailability(lines), &shortage)
	assert.Equal(t, "rice", shortage.ProductID)
	assert.Equal(t, 4, shortage.Requested)
}

func TestCheckAvailabilityUsesLowestSnapshot(t *testing.T) {
	lines := []models.CartLine{
		{ID: "p1", Product: tracked("p1", models.IntPtr(5)), Quantity: 1},
		{ID: "p1#1", Product: tracked("p1", models.IntPtr(1)), Quantity: 1},
	}

	var shortage *ShortageError
	require.ErrorAs(t, CheckAvailability(lines), &shortage)
	assert.Equal(t, 1, shortage.Available)
}

func TestRequestedCountsLinesAndComplements(t *testing.T) {
	rice := tracked("rice", models.IntPtr(10))
	lines := []models.CartLine{
		{ID: "rice", Product: rice, Quantity: 1},
		{ID: "a#1", Product: tracked("a", nil), Quantity: 3, Complements: []models.ComplementLine{{Product: rice, Quantity: 2}}},
	}

	assert.Equal(t, 7, Requested(lines, "rice"))
	assert.Equal(t, 3, Requested(lines, "a"))
	assert.Zero(t, Requested(lines, "ghost"))
}
