package email

import (
	"fmt"
	"strings"
)

// OrderItem represents an order line for email rendering
type OrderItem struct {
	ServiceID string
	Name      string
	Quantity  int
	UnitPrice int
}

// BuildOrderConfirmationBody builds the HTML body of the order confirmation email
func BuildOrderConfirmationBody(orderID string, total int, items []OrderItem) string {
	var sb strings.Builder

	sb.WriteString(`<html><body style="font-family: Arial, sans-serif; color: #333;">`)
	sb.WriteString(`<h2>Thank you for your order</h2>`)
	sb.WriteString(fmt.Sprintf(`<p>Order number: <strong>%s</strong></p>`, orderID))
	sb.WriteString(`<p>We have received your order and the shop will start working on it shortly.</p>`)

	sb.WriteString(`<table style="border-collapse: collapse; width: 100%; margin: 16px 0;">`)
	sb.WriteString(`<tr style="background-color: #f5f5f5;">`)
	sb.WriteString(`<th style="border: 1px solid #ddd; padding: 8px; text-align: left;">Item</th>`)
	sb.WriteString(`<th style="border: 1px solid #ddd; padding: 8px; text-align: right;">Qty</th>`)
	sb.WriteString(`<th style="border: 1px solid #ddd; padding: 8px; text-align: right;">Price</th>`)
	sb.WriteString(`</tr>`)

	for _, item := range items {
		sb.WriteString(`<tr>`)
		sb.WriteString(fmt.Sprintf(`<td style="border: 1px solid #ddd; padding: 8px;">%s</td>`, item.Name))
		sb.WriteString(fmt.Sprintf(`<td style="border: 1px solid #ddd; padding: 8px; text-align: right;">%d</td>`, item.Quantity))
		sb.WriteString(fmt.Sprintf(`<td style="border: 1px solid #ddd; padding: 8px; text-align: right;">$%s</td>`, formatNumber(item.UnitPrice*item.Quantity)))
		sb.WriteString(`</tr>`)
	}

	sb.WriteString(`</table>`)
	sb.WriteString(fmt.Sprintf(`<p style="font-size: 18px;">Total: <strong>$%s</strong></p>`, formatNumber(total)))
	sb.WriteString(`<p>You will receive another email when your order is ready for pickup.</p>`)
	sb.WriteString(`</body></html>`)

	return sb.String()
}

// BuildPickupReadyBody builds the HTML body of the pickup notification email
func BuildPickupReadyBody(orderID, shopName, pickupToken string) string {
	var sb strings.Builder

	sb.WriteString(`<html><body style="font-family: Arial, sans-serif; color: #333;">`)
	sb.WriteString(`<h2>Your order is ready for pickup</h2>`)
	sb.WriteString(fmt.Sprintf(`<p>Order number: <strong>%s</strong></p>`, orderID))
	if shopName != "" {
		sb.WriteString(fmt.Sprintf(`<p>Pick it up at <strong>%s</strong>.</p>`, shopName))
	}
	sb.WriteString(`<p>Show this pickup code at the counter:</p>`)
	sb.WriteString(fmt.Sprintf(`<p style="font-size: 24px; letter-spacing: 2px; background-color: #f5f5f5; padding: 12px; display: inline-block;"><strong>%s</strong></p>`, pickupToken))
	sb.WriteString(`<p>The code can be used once and becomes invalid after pickup.</p>`)
	sb.WriteString(`</body></html>`)

	return sb.String()
}

// BuildReturnDecisionBody builds the HTML body of the return decision email
func BuildReturnDecisionBody(orderID, decision, reviewNotes string) string {
	var sb strings.Builder

	sb.WriteString(`<html><body style="font-family: Arial, sans-serif; color: #333;">`)
	if decision == "approved" {
		sb.WriteString(`<h2>Your return request was approved</h2>`)
		sb.WriteString(fmt.Sprintf(`<p>Order number: <strong>%s</strong></p>`, orderID))
		sb.WriteString(`<p>Your payment has been refunded. Depending on your payment provider it can take a few days to appear.</p>`)
	} else {
		sb.WriteString(`<h2>Your return request was declined</h2>`)
		sb.WriteString(fmt.Sprintf(`<p>Order number: <strong>%s</strong></p>`, orderID))
	}
	if reviewNotes != "" {
		sb.WriteString(fmt.Sprintf(`<p>Note from the shop: %s</p>`, reviewNotes))
	}
	sb.WriteString(`</body></html>`)

	return sb.String()
}

// formatNumber inserts comma separators into a number (1234567 -> 1,234,567)
func formatNumber(n int) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	offset := len(s) % 3
	if offset > 0 {
		result.WriteString(s[:offset])
		if len(s) > offset {
			result.WriteString(",")
		}
	}
	for i := offset; i < len(s); i += 3 {
		result.WriteString(s[i : i+3])
		if i+3 < len(s) {
			result.WriteString(",")
		}
	}
	return result.String()
}
