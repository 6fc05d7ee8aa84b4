// Package notify renders orders into chat messages and builds the deep links
// that open the messaging composer pre-filled with them.
package notify

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"storefront/internal/models"
)

const fallbackFirstName = "cliente"

// NewOrderMessage is the message sent to the business channel for a new order.
// Section order is customer, payment, items.
func NewOrderMessage(o models.Order) string {
	var b strings.Builder

	b.WriteString("🔥 *NOVO PEDIDO* 🔥\n")

	b.WriteString("👤 *INFORMAÇÕES DO CLIENTE*\n")
	fmt.Fprintf(&b, "📋 *Nome:* %s\n", o.Customer.Name)
	fmt.Fprintf(&b, "📱 *Telefone:* %s\n", o.Customer.Phone)
	switch f := o.Customer.Fulfillment().(type) {
	case models.Delivery:
		b.WriteString("📍 *Endereço:*\n")
		fmt.Fprintf(&b, "   🏠 *Rua:* %s\n", f.Street)
		fmt.Fprintf(&b, "   🏢 *Número:* %s\n", f.Number)
		fmt.Fprintf(&b, "   🏘️ *Bairro:* %s\n", f.Neighborhood)
	case models.Pickup:
		b.WriteString("🏪 *Tipo:* Retirada no Local\n")
	}
	b.WriteString("\n")

	b.WriteString("💳 *FORMA DE PAGAMENTO*\n")
	emoji, label := paymentLabel(o.Customer.PaymentMethod)
	fmt.Fprintf(&b, "%s *%s*\n", emoji, label)
	if o.Customer.PaymentMethod == models.PaymentCash && o.Customer.ChangeFor != nil {
		fmt.Fprintf(&b, "💰 *Troco para:* %s\n", Money(*o.Customer.ChangeFor))
	}
	b.WriteString("\n")

	b.WriteString("🍽️ *ITENS DO PEDIDO*\n")
	for i, line := range o.Items {
		fmt.Fprintf(&b, "%d. %dx %s\n", i+1, line.Quantity, line.Product.Name)
		for _, c := range line.Complements {
			fmt.Fprintf(&b, "   ➕ %dx %s\n", c.Quantity, c.Product.Name)
		}
		fmt.Fprintf(&b, "   💰 %s\n", Money(line.Subtotal()))
		if line.Observation != "" {
			fmt.Fprintf(&b, "   📝 *Observação:* %s\n", line.Observation)
		}
		b.WriteString("\n")
	}

	if o.DeliveryFee.IsPositive() {
		fmt.Fprintf(&b, "🚚 *Taxa de entrega:* %s\n", Money(o.DeliveryFee))
	}
	fmt.Fprintf(&b, "💵 *Total:* %s\n\n", Money(o.Total))
	b.WriteString("✅ *Pedido recebido com sucesso!*")
	return b.String()
}

// ConfirmedMessage tells the customer the order was accepted and is being prepared.
func ConfirmedMessage(o models.Order) string {
	return fmt.Sprintf("Olá, %s! 👋\n\nSeu pedido foi *confirmado* e já está *em preparo*. 🔥\n\nQualquer novidade avisamos por aqui. Obrigado pela preferência!",
		FirstName(o.Customer.Name))
}

// ReadyMessage tells the customer the order left for delivery or is ready for pickup.
func ReadyMessage(o models.Order) string {
	name := FirstName(o.Customer.Name)
	switch o.Customer.Fulfillment().(type) {
	case models.Delivery:
		return fmt.Sprintf("Olá, %s! 🚚\n\nSeu pedido *saiu para a entrega*. Está a caminho!\n\nQualquer dúvida, pode falar com a gente por aqui.", name)
	default:
		return fmt.Sprintf("Olá, %s! 🎉\n\nSeu pedido está *pronto para retirada*.\n\nEstamos te aguardando. Qualquer dúvida, fale com a gente por aqui.", name)
	}
}

// FirstName is the first whitespace-delimited token of name, or "cliente".
func FirstName(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return fallbackFirstName
	}
	return fields[0]
}

// Money renders an amount as "R$ 0.00".
func Money(d decimal.Decimal) string {
	return "R$ " + d.StringFixed(2)
}

func paymentLabel(m models.PaymentMethod) (string, string) {
	switch m {
	case models.PaymentTransfer:
		return "💚", "PIX"
	case models.PaymentCash:
		return "💵", "DINHEIRO"
	default:
		return "💳", "CARTÃO"
	}
}
