package usecase

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/pricemarkup/backend/internal/domain"
)

const exportDivider = "----------------------------------"

// BuildLegibleList renders the priced view as a chat-friendly plain-text
// price list. The price shown per item follows the visibility flags:
// suggested price when visible, otherwise the seller price, otherwise none.
func BuildLegibleList(items []domain.PricedProduct, visibility domain.Visibility, now time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "📦 *PRICE LIST - %s*\n%s\n\n", now.Format("01/02/2006"), exportDivider)

	for i, item := range items {
		fmt.Fprintf(&b, "🛍️ *%s*\n", strings.ToUpper(item.Name))
		if item.Brand != "" {
			fmt.Fprintf(&b, "🏷️ Brand: %s\n", item.Brand)
		}
		if visibility.ShowSuggestedPrice {
			fmt.Fprintf(&b, "💰 Price: %s%s\n", item.DisplayCurrency, formatExportPrice(item.SuggestedPrice))
		} else if visibility.ShowSellerPrice {
			fmt.Fprintf(&b, "💰 Price: %s%s\n", item.DisplayCurrency, formatExportPrice(item.SellerPrice))
		}
		b.WriteString(exportDivider)
		if i < len(items)-1 {
			b.WriteString("\n\n")
		}
	}

	return b.String()
}

// formatExportPrice trims trailing zero cents so whole amounts read clean.
func formatExportPrice(value float64) string {
	if value == math.Trunc(value) {
		return fmt.Sprintf("%.0f", value)
	}
	return fmt.Sprintf("%.2f", value)
}
