package models

import (
	"fmt"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

type DeliveryMode string

const (
	ModeDelivery DeliveryMode = "delivery"
	ModePickup   DeliveryMode = "pickup"
)

var deliveryModeAliases = map[string]string{
	"delivery": string(ModeDelivery),
	"entrega":  string(ModeDelivery),
	"pickup":   string(ModePickup),
	"retirada": string(ModePickup),
}

func ParseDeliveryMode(raw string) (DeliveryMode, error) {
	value, ok := normalizeLabel(raw, deliveryModeAliases)
	if !ok {
		return "", fmt.Errorf("unknown delivery mode %q", raw)
	}
	return DeliveryMode(value), nil
}

func (m *DeliveryMode) UnmarshalText(text []byte) error {
	if isBlank(text) {
		*m = ""
		return nil
	}
	parsed, err := ParseDeliveryMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

func (m *DeliveryMode) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw, err := decodeLabel(t, data)
	if err != nil {
		return err
	}
	return m.UnmarshalText([]byte(raw))
}

// ComplementLine is an add-on attached to a cart line. Complements never carry
// complements of their own.
type ComplementLine struct {
	Product  Product `bson:"product" json:"product"`
	Quantity int     `bson:"quantity" json:"quantity"`
}

// CartLine holds a product snapshot taken when the line was created.
type CartLine struct {
	ID          string           `bson:"lineId" json:"lineId"`
	Product     Product          `bson:"product" json:"product"`
	Quantity    int              `bson:"quantity" json:"quantity"`
	Observation string           `bson:"observation,omitempty" json:"observation,omitempty"`
	Complements []ComplementLine `bson:"complements,omitempty" json:"complements,omitempty"`
}

// UnitPrice is the product price plus the selected complements for one unit
// of the line.
func (l CartLine) UnitPrice() decimal.Decimal {
	unit := l.Product.Price
	for _, c := range l.Complements {
		unit = unit.Add(c.Product.Price.Mul(decimal.NewFromInt(int64(c.Quantity))))
	}
	return unit
}

func (l CartLine) Subtotal() decimal.Decimal {
	return l.UnitPrice().Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Configured reports whether the line was built with complements or a note
// and therefore never merges with a plain line for the same product.
func (l CartLine) Configured() bool {
	return l.ID != l.Product.ID
}

// SumLines is the cart subtotal, complements included.
func SumLines(lines []CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return total
}
