// Package stock checks cart quantities against product stock snapshots and
// plans the decrements applied after an order is placed.
//
// Snapshots come from the catalogue read that built the cart, so the check is
// optimistic: nothing here guards against stock being consumed concurrently.
package stock

import (
	"fmt"

	"storefront/internal/models"
)

// ShortageError is the not-ok outcome of an availability check.
type ShortageError struct {
	ProductID   string
	ProductName string
	Available   int
	Requested   int
}

func (e *ShortageError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d", e.ProductName, e.Requested, e.Available)
}

// Reason is the user-facing explanation of the shortage.
func (e *ShortageError) Reason() string {
	if e.Available <= 0 {
		return fmt.Sprintf("%s is out of stock", e.ProductName)
	}
	return fmt.Sprintf("only %d unit(s) of %s available, %d requested", e.Available, e.ProductName, e.Requested)
}

// CheckProduct compares a requested quantity with the product snapshot.
// Untracked products always pass.
func CheckProduct(p models.Product, requested int) error {
	if !p.TracksStock() {
		return nil
	}
	available := *p.Stock
	if requested > available {
		return &ShortageError{
			ProductID:   p.ID,
			ProductName: p.Name,
			Available:   available,
			Requested:   requested,
		}
	}
	return nil
}

// CheckAvailability sums the quantity requested for each tracked product
// across lines and complements, and returns the first product whose total
// exceeds its snapshot. Each complement counts its quantity times the line
// quantity.
func CheckAvailability(lines []models.CartLine) error {
	for _, d := range aggregate(lines) {
		if d.Quantity > d.Snapshot {
			return &ShortageError{
				ProductID:   d.ProductID,
				ProductName: d.ProductName,
				Available:   d.Snapshot,
				Requested:   d.Quantity,
			}
		}
	}
	return nil
}

// Requested is the total quantity of productID held by lines, counting plain
// lines, configured lines and complements.
func Requested(lines []models.CartLine, productID string) int {
	total := 0
	for _, line := range lines {
		if line.Product.ID == productID {
			total += line.Quantity
		}
		for _, c := range line.Complements {
			if c.Product.ID == productID {
				total += c.Quantity * line.Quantity
			}
		}
	}
	return total
}

// Decrement is the amount to take from one product's stock.
type Decrement struct {
	ProductID   string
	ProductName string
	Quantity    int
	// Snapshot is the stock count the cart saw for the product.
	Snapshot int
}

// Remaining is the floored stock after the decrement, based on the snapshot.
func (d Decrement) Remaining() int {
	return max(0, d.Snapshot-d.Quantity)
}

// PlanDecrements sums quantities per tracked product across all lines and
// complements, in first-seen order.
func PlanDecrements(lines []models.CartLine) []Decrement {
	return aggregate(lines)
}

// aggregate totals quantities per product. When lines carry different
// snapshots of the same product the lowest one is kept.
func aggregate(lines []models.CartLine) []Decrement {
	index := make(map[string]int)
	plan := make([]Decrement, 0, len(lines))
	add := func(p models.Product, qty int) {
		if !p.TracksStock() || qty <= 0 {
			return
		}
		if i, ok := index[p.ID]; ok {
			plan[i].Quantity += qty
			plan[i].Snapshot = min(plan[i].Snapshot, *p.Stock)
			return
		}
		index[p.ID] = len(plan)
		plan = append(plan, Decrement{
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    qty,
			Snapshot:    *p.Stock,
		})
	}
	for _, line := range lines {
		add(line.Product, line.Quantity)
		for _, c := range line.Complements {
			add(c.Product, c.Quantity*line.Quantity)
		}
	}
	return plan
}
