// Package cart holds the shopping-cart state machine and the per-session
// storage around it.
//
// State values are never mutated in place: every operation returns a new State
// whose Total has been recomputed from its lines.
package cart

import (
	"strconv"

	"github.com/shopspring/decimal"

	"storefront/internal/models"
)

const DefaultMode = models.ModeDelivery

type State struct {
	Lines []models.CartLine   `json:"lines"`
	Mode  models.DeliveryMode `json:"deliveryMode"`
	Total decimal.Decimal     `json:"total"`
	// Seq numbers configured lines so their ids stay unique within the cart.
	Seq int `json:"seq"`
}

func Empty() State {
	return State{Lines: []models.CartLine{}, Mode: DefaultMode, Total: decimal.Zero}
}

// IsEmpty reports whether the cart has no lines.
func (s State) IsEmpty() bool {
	return len(s.Lines) == 0
}

// AddItem increments the plain line for p or appends a new one with quantity 1.
func (s State) AddItem(p models.Product) State {
	lines := s.copyLines()
	for i := range lines {
		if !lines[i].Configured() && lines[i].Product.ID == p.ID {
			lines[i].Quantity++
			return s.with(lines)
		}
	}
	lines = append(lines, models.CartLine{ID: p.ID, Product: p, Quantity: 1})
	return s.with(lines)
}

// AddItemWithComplements always appends a distinct line, even when an identical
// configuration is already in the cart.
func (s State) AddItemWithComplements(p models.Product, complements []models.ComplementLine, observation string) State {
	next := s
	next.Seq = s.Seq + 1
	selected := make([]models.ComplementLine, 0, len(complements))
	for _, c := range complements {
		if c.Quantity > 0 {
			selected = append(selected, c)
		}
	}
	lines := append(s.copyLines(), models.CartLine{
		ID:          p.ID + "#" + strconv.Itoa(next.Seq),
		Product:     p,
		Quantity:    1,
		Observation: observation,
		Complements: selected,
	})
	return next.with(lines)
}

// RemoveItem drops every line for productID.
func (s State) RemoveItem(productID string) State {
	lines := make([]models.CartLine, 0, len(s.Lines))
	for _, l := range s.Lines {
		if l.Product.ID == productID {
			continue
		}
		lines = append(lines, cloneLine(l))
	}
	return s.with(lines)
}

// UpdateQuantity sets the quantity of a line. Zero or negative removes it.
func (s State) UpdateQuantity(lineID string, quantity int) State {
	lines := make([]models.CartLine, 0, len(s.Lines))
	for _, l := range s.Lines {
		line := cloneLine(l)
		if line.ID == lineID {
			line.Quantity = max(0, quantity)
		}
		if line.Quantity > 0 {
			lines = append(lines, line)
		}
	}
	return s.with(lines)
}

func (s State) UpdateObservation(lineID, text string) State {
	lines := s.copyLines()
	for i := range lines {
		if lines[i].ID == lineID {
			lines[i].Observation = text
		}
	}
	return s.with(lines)
}

// SetDeliveryMode leaves lines and total untouched; the fee is applied when
// the cart is priced for display or checkout.
func (s State) SetDeliveryMode(mode models.DeliveryMode) State {
	next := s
	next.Lines = s.copyLines()
	next.Mode = mode
	return next
}

func (s State) Clear() State {
	return Empty()
}

// Line returns the line with the given id.
func (s State) Line(lineID string) (models.CartLine, bool) {
	for _, l := range s.Lines {
		if l.ID == lineID {
			return cloneLine(l), true
		}
	}
	return models.CartLine{}, false
}

// DeliveryFee is fee when the cart is in delivery mode and zero for pickup.
func (s State) DeliveryFee(fee decimal.Decimal) decimal.Decimal {
	if s.Mode == models.ModeDelivery {
		return fee
	}
	return decimal.Zero
}

// GrandTotal is the subtotal plus the delivery fee for the current mode.
func (s State) GrandTotal(fee decimal.Decimal) decimal.Decimal {
	return s.Total.Add(s.DeliveryFee(fee))
}

func (s State) with(lines []models.CartLine) State {
	next := s
	next.Lines = lines
	next.Total = models.SumLines(lines)
	if next.Mode == "" {
		next.Mode = DefaultMode
	}
	return next
}

func (s State) copyLines() []models.CartLine {
	lines := make([]models.CartLine, len(s.Lines), len(s.Lines)+1)
	for i, l := range s.Lines {
		lines[i] = cloneLine(l)
	}
	return lines
}

func cloneLine(l models.CartLine) models.CartLine {
	if l.Complements != nil {
		l.Complements = append([]models.ComplementLine(nil), l.Complements...)
	}
	return l
}
