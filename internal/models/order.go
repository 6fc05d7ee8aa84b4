package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

type PaymentMethod string

const (
	PaymentCard     PaymentMethod = "card"
	PaymentTransfer PaymentMethod = "pix"
	PaymentCash     PaymentMethod = "cash"
)

var paymentAliases = map[string]string{
	"card":     string(PaymentCard),
	"cartao":   string(PaymentCard),
	"cartão":   string(PaymentCard),
	"pix":      string(PaymentTransfer),
	"transfer": string(PaymentTransfer),
	"cash":     string(PaymentCash),
	"dinheiro": string(PaymentCash),
}

func ParsePaymentMethod(raw string) (PaymentMethod, error) {
	value, ok := normalizeLabel(raw, paymentAliases)
	if !ok {
		return "", fmt.Errorf("unknown payment method %q", raw)
	}
	return PaymentMethod(value), nil
}

func (p *PaymentMethod) UnmarshalText(text []byte) error {
	if isBlank(text) {
		*p = ""
		return nil
	}
	parsed, err := ParsePaymentMethod(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

func (p *PaymentMethod) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw, err := decodeLabel(t, data)
	if err != nil {
		return err
	}
	return p.UnmarshalText([]byte(raw))
}

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusConfirmed OrderStatus = "confirmed"
	StatusFulfilled OrderStatus = "fulfilled"
	StatusCancelled OrderStatus = "cancelled"
)

var OrderStatuses = []OrderStatus{StatusPending, StatusConfirmed, StatusFulfilled, StatusCancelled}

var statusAliases = map[string]string{
	"pending":    string(StatusPending),
	"pendente":   string(StatusPending),
	"confirmed":  string(StatusConfirmed),
	"confirmado": string(StatusConfirmed),
	"fulfilled":  string(StatusFulfilled),
	"delivered":  string(StatusFulfilled),
	"entregue":   string(StatusFulfilled),
	"cancelled":  string(StatusCancelled),
	"canceled":   string(StatusCancelled),
	"cancelado":  string(StatusCancelled),
}

func ParseOrderStatus(raw string) (OrderStatus, error) {
	value, ok := normalizeLabel(raw, statusAliases)
	if !ok {
		return "", fmt.Errorf("unknown order status %q", raw)
	}
	return OrderStatus(value), nil
}

func (s *OrderStatus) UnmarshalText(text []byte) error {
	if isBlank(text) {
		*s = ""
		return nil
	}
	parsed, err := ParseOrderStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s *OrderStatus) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw, err := decodeLabel(t, data)
	if err != nil {
		return err
	}
	return s.UnmarshalText([]byte(raw))
}

// Labels lists the canonical value and its legacy spellings for store filters.
func (s OrderStatus) Labels() []string {
	return labelsFor(string(s), statusAliases)
}

// Terminal statuses accept no further transitions.
func (s OrderStatus) Terminal() bool {
	return s == StatusFulfilled || s == StatusCancelled
}

// Fulfillment is either Delivery or Pickup. Switches over it must handle both.
type Fulfillment interface {
	Mode() DeliveryMode
	isFulfillment()
}

type Delivery struct {
	Street       string `json:"street"`
	Number       string `json:"number"`
	Neighborhood string `json:"neighborhood"`
}

func (Delivery) Mode() DeliveryMode { return ModeDelivery }
func (Delivery) isFulfillment()     {}

// Address renders the single-line address kept on delivery orders.
func (d Delivery) Address() string {
	return fmt.Sprintf("%s, %s - %s", d.Street, d.Number, d.Neighborhood)
}

type Pickup struct{}

func (Pickup) Mode() DeliveryMode { return ModePickup }
func (Pickup) isFulfillment()     {}

// OrderCustomer is the customer snapshot embedded in an order document.
type OrderCustomer struct {
	Name          string           `bson:"name" json:"name"`
	Phone         string           `bson:"phone" json:"phone"`
	DeliveryMode  DeliveryMode     `bson:"deliveryMode" json:"deliveryMode"`
	Street        string           `bson:"street,omitempty" json:"street,omitempty"`
	Number        string           `bson:"number,omitempty" json:"number,omitempty"`
	Neighborhood  string           `bson:"neighborhood,omitempty" json:"neighborhood,omitempty"`
	Address       string           `bson:"address,omitempty" json:"address,omitempty"`
	PaymentMethod PaymentMethod    `bson:"paymentMethod" json:"paymentMethod"`
	ChangeFor     *decimal.Decimal `bson:"changeFor,omitempty" json:"changeFor,omitempty"`
	DeliveryFee   decimal.Decimal  `bson:"deliveryFee" json:"deliveryFee"`
}

func (c OrderCustomer) Fulfillment() Fulfillment {
	if c.DeliveryMode == ModeDelivery {
		return Delivery{Street: c.Street, Number: c.Number, Neighborhood: c.Neighborhood}
	}
	return Pickup{}
}

type Order struct {
	ID          string          `bson:"_id" json:"id"`
	Customer    OrderCustomer   `bson:"customer" json:"customer"`
	Items       []CartLine      `bson:"items" json:"items"`
	Subtotal    decimal.Decimal `bson:"subtotal" json:"subtotal"`
	DeliveryFee decimal.Decimal `bson:"deliveryFee" json:"deliveryFee"`
	Total       decimal.Decimal `bson:"total" json:"total"`
	Status      OrderStatus     `bson:"status" json:"status"`
	CreatedAt   time.Time       `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time       `bson:"updatedAt" json:"updatedAt"`
}
