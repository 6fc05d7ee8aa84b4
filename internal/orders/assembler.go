// Package orders builds orders from carts and runs the checkout and
// back-office status workflows around them.
package orders

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"storefront/internal/cart"
	"storefront/internal/models"
)

// Form is the checkout form. An empty DeliveryMode falls back to the mode
// chosen on the cart.
type Form struct {
	Name          string               `json:"name"`
	Phone         string               `json:"phone"`
	DeliveryMode  models.DeliveryMode  `json:"deliveryMode"`
	Street        string               `json:"street"`
	Number        string               `json:"number"`
	Neighborhood  string               `json:"neighborhood"`
	PaymentMethod models.PaymentMethod `json:"paymentMethod" binding:"required"`
	ChangeFor     *decimal.Decimal     `json:"changeFor"`
}

func (f Form) normalized() Form {
	f.Name = strings.TrimSpace(f.Name)
	f.Phone = strings.TrimSpace(f.Phone)
	f.Street = strings.TrimSpace(f.Street)
	f.Number = strings.TrimSpace(f.Number)
	f.Neighborhood = strings.TrimSpace(f.Neighborhood)
	return f
}

// Fulfillment resolves the form into a delivery or a pickup.
func (f Form) Fulfillment(fallback models.DeliveryMode) models.Fulfillment {
	mode := f.DeliveryMode
	if mode == "" {
		mode = fallback
	}
	if mode == models.ModePickup {
		return models.Pickup{}
	}
	return models.Delivery{Street: f.Street, Number: f.Number, Neighborhood: f.Neighborhood}
}

// Assembler turns a cart and a checkout form into an order.
type Assembler struct {
	Fee   decimal.Decimal
	Now   func() time.Time
	NewID func() string
}

func NewAssembler(fee decimal.Decimal) *Assembler {
	return &Assembler{
		Fee:   fee,
		Now:   time.Now,
		NewID: uuid.NewString,
	}
}

func (a *Assembler) feeFor(f models.Fulfillment) decimal.Decimal {
	switch f.(type) {
	case models.Delivery:
		return a.Fee
	case models.Pickup:
		return decimal.Zero
	}
	return decimal.Zero
}

// Validate checks the form against the cart it would be submitted with.
// The first failing field is returned as a *ValidationError.
func (a *Assembler) Validate(state cart.State, form Form) error {
	form = form.normalized()
	if state.IsEmpty() {
		return invalid("items", ErrEmptyCart.Error())
	}
	if form.Name == "" {
		return invalid("name", "name is required")
	}
	if form.Phone == "" {
		return invalid("phone", "phone is required")
	}

	fulfillment := form.Fulfillment(state.Mode)
	switch f := fulfillment.(type) {
	case models.Delivery:
		if f.Street == "" {
			return invalid("street", "street is required for delivery")
		}
		if f.Number == "" {
			return invalid("number", "number is required for delivery")
		}
		if f.Neighborhood == "" {
			return invalid("neighborhood", "neighborhood is required for delivery")
		}
	case models.Pickup:
	}

	switch form.PaymentMethod {
	case models.PaymentCard, models.PaymentTransfer:
	case models.PaymentCash:
		total := state.Total.Add(a.feeFor(fulfillment))
		if form.ChangeFor == nil {
			return invalid("changeFor", "change amount is required for cash payments")
		}
		if form.ChangeFor.LessThan(total) {
			return invalid("changeFor", "change amount must cover the order total of "+total.StringFixed(2))
		}
	default:
		return invalid("paymentMethod", "payment method is required")
	}
	return nil
}

// Build assembles the order. Callers run Validate first; Build does not
// re-check the form.
func (a *Assembler) Build(state cart.State, form Form) models.Order {
	form = form.normalized()
	fulfillment := form.Fulfillment(state.Mode)
	fee := a.feeFor(fulfillment)
	now := a.Now().UTC()

	customer := models.OrderCustomer{
		Name:          form.Name,
		Phone:         form.Phone,
		DeliveryMode:  fulfillment.Mode(),
		PaymentMethod: form.PaymentMethod,
		DeliveryFee:   fee,
	}
	switch f := fulfillment.(type) {
	case models.Delivery:
		customer.Street = f.Street
		customer.Number = f.Number
		customer.Neighborhood = f.Neighborhood
		customer.Address = f.Address()
	case models.Pickup:
	}
	if form.PaymentMethod == models.PaymentCash && form.ChangeFor != nil {
		change := *form.ChangeFor
		customer.ChangeFor = &change
	}

	items := make([]models.CartLine, len(state.Lines))
	for i, l := range state.Lines {
		items[i] = l
		if l.Complements != nil {
			items[i].Complements = append([]models.ComplementLine(nil), l.Complements...)
		}
	}
	subtotal := models.SumLines(items)

	return models.Order{
		ID:          a.NewID(),
		Customer:    customer,
		Items:       items,
		Subtotal:    subtotal,
		DeliveryFee: fee,
		Total:       subtotal.Add(fee),
		Status:      models.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
