package mail

import (
	"fmt"
	"html"
	"strings"

	"github.com/elorajewelry/checkout-service/internal/domain"
)

// ownerMessage builds the merchant-facing email with full order detail.
func ownerMessage(order *domain.Order) (subject, body string) {
	subject = fmt.Sprintf("Nová objednávka %s — %s", order.RefID, order.Total.FormatCZK())

	var b strings.Builder
	fmt.Fprintf(&b, "<h2>Nová zaplacená objednávka %s</h2>", html.EscapeString(order.RefID))
	fmt.Fprintf(&b, "<p><strong>Zákazník:</strong> %s &lt;%s&gt;",
		html.EscapeString(order.Customer.FullName), html.EscapeString(order.Customer.Email))
	if order.Customer.Phone != "" {
		fmt.Fprintf(&b, ", tel. %s", html.EscapeString(order.Customer.Phone))
	}
	b.WriteString("</p>")

	writeShipping(&b, order)
	writeItems(&b, order)

	fmt.Fprintf(&b, "<p><strong>Celkem:</strong> %s</p>", order.Total.FormatCZK())
	fmt.Fprintf(&b, "<p>Transakce: %s</p>", html.EscapeString(order.TransactionID))

	return subject, b.String()
}

// customerMessage builds the customer-facing confirmation.
func customerMessage(order *domain.Order) (subject, body string) {
	subject = fmt.Sprintf("Potvrzení objednávky %s", order.RefID)

	var b strings.Builder
	fmt.Fprintf(&b, "<h2>Děkujeme za Vaši objednávku!</h2>")
	fmt.Fprintf(&b, "<p>Objednávka <strong>%s</strong> byla zaplacena.</p>", html.EscapeString(order.RefID))

	writeShipping(&b, order)
	writeItems(&b, order)

	fmt.Fprintf(&b, "<p><strong>Celkem:</strong> %s</p>", order.Total.FormatCZK())

	return subject, b.String()
}

func writeShipping(b *strings.Builder, order *domain.Order) {
	switch {
	case order.Pickup != nil:
		fmt.Fprintf(b, "<p><strong>Výdejní místo:</strong> %s", html.EscapeString(order.Pickup.PointID))
		if order.Pickup.Name != "" {
			fmt.Fprintf(b, " — %s", html.EscapeString(order.Pickup.Name))
		}
		if order.Pickup.Address != "" {
			fmt.Fprintf(b, ", %s", html.EscapeString(order.Pickup.Address))
		}
		b.WriteString("</p>")
	case order.Address != nil:
		fmt.Fprintf(b, "<p><strong>Doručovací adresa:</strong> %s, %s %s, %s</p>",
			html.EscapeString(order.Address.Street),
			html.EscapeString(order.Address.Zip),
			html.EscapeString(order.Address.City),
			html.EscapeString(order.Address.Country))
	}
}

func writeItems(b *strings.Builder, order *domain.Order) {
	if len(order.Items) == 0 {
		return
	}
	b.WriteString("<ul>")
	for _, item := range order.Items {
		fmt.Fprintf(b, "<li>%s", html.EscapeString(item.Name))
		if item.Variant != "" {
			fmt.Fprintf(b, " (%s)", html.EscapeString(item.Variant))
		}
		fmt.Fprintf(b, " × %d — %s</li>", item.Quantity, item.LineTotal.FormatCZK())
	}
	b.WriteString("</ul>")
}
