package notifications

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/tapshop/tapshop-backend/pkg/types"
)

// OrderSummary carries everything the seller notification needs. It is a
// snapshot; the dispatcher never reads the database for order data.
type OrderSummary struct {
	SellerID     uuid.UUID
	OrderNumber  string
	BuyerName    string
	BuyerPhone   string
	BuyerAddress string
	Items        types.OrderItems
	Subtotal     int
	DeliveryFee  int
	Total        int
}

// FormatNewOrder renders the seller-facing new-order push text.
func FormatNewOrder(order OrderSummary) string {
	var lines []string
	for _, item := range order.Items {
		lines = append(lines, fmt.Sprintf("  - %s x%d (฿%s)", item.Name, item.Quantity, formatBaht(item.Price*item.Quantity)))
	}

	return fmt.Sprintf(`🛒 New Order! #%s

📦 Items:
%s

💰 Payment:
  Subtotal: ฿%s
  Delivery: ฿%s (COD)
  Total: ฿%s

📍 Deliver to:
  %s
  %s
  %s

👉 Go to your dashboard to confirm payment and ship!`,
		order.OrderNumber,
		strings.Join(lines, "\n"),
		formatBaht(order.Subtotal),
		formatBaht(order.DeliveryFee),
		formatBaht(order.Total),
		order.BuyerName,
		order.BuyerPhone,
		order.BuyerAddress,
	)
}

// FormatShipped renders the buyer-facing shipped push text. shareURL is the
// carrier tracking link, nil for mock shipments.
func FormatShipped(orderNumber string, shareURL *string, codAmount int) string {
	var b strings.Builder
	fmt.Fprintf(&b, `🛵 Your order #%s is on the way!

A driver has been assigned and will deliver your order soon.`, orderNumber)
	if shareURL != nil && *shareURL != "" {
		fmt.Fprintf(&b, "\n\n📍 Track your delivery:\n%s", *shareURL)
	}
	fmt.Fprintf(&b, "\n\nPlease prepare ฿%s for the delivery fee (cash).", formatBaht(codAmount))
	return b.String()
}

// FormatPaymentConfirmed renders the buyer-facing payment-confirmed push text.
func FormatPaymentConfirmed(orderNumber string) string {
	return fmt.Sprintf(`✅ Payment confirmed for order #%s!

Your order is being prepared for shipping. We'll notify you when the driver is on the way.`, orderNumber)
}

// formatBaht groups thousands with commas, matching what buyers see in the
// storefront.
func formatBaht(amount int) string {
	raw := strconv.Itoa(amount)
	negative := strings.HasPrefix(raw, "-")
	if negative {
		raw = raw[1:]
	}
	var b strings.Builder
	for i, r := range raw {
		if i > 0 && (len(raw)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if negative {
		return "-" + b.String()
	}
	return b.String()
}
