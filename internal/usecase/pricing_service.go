package usecase

import (
	"math"
	"strings"

	"github.com/pricemarkup/backend/internal/domain"
)

// PricingService projects the master catalog into priced, search-filtered
// view records. Projection is pure and side-effect-free so it can be
// recomputed on every catalog, settings, or search change without
// coordination.
type PricingService struct{}

// NewPricingService creates a new pricing service.
func NewPricingService() *PricingService {
	return &PricingService{}
}

// Project computes the priced view. Per product, in order: search filter,
// local cost (exchange rate), seller price (active tier markup), suggested
// price (client adjustment on top of the seller price), then the rounding
// rule applied identically and independently to both computed prices.
// Visibility flags belong to the caller; they never change the numbers.
func (s *PricingService) Project(
	catalog []domain.CatalogProduct,
	settings *domain.PricingSettings,
	searchTerm string,
) []domain.PricedProduct {
	term := strings.ToLower(strings.TrimSpace(searchTerm))
	markup := settings.ActiveMarkup()

	view := make([]domain.PricedProduct, 0, len(catalog))
	for _, product := range catalog {
		if term != "" &&
			!strings.Contains(strings.ToLower(product.Name), term) &&
			!strings.Contains(strings.ToLower(product.Brand), term) {
			continue
		}

		localCost := product.OriginalPrice * settings.ExchangeRate
		sellerPrice := localCost * (1 + markup/100)
		suggestedPrice := sellerPrice * (1 + settings.ClientAdjustment/100)

		view = append(view, domain.PricedProduct{
			CatalogProduct:  product,
			LocalCost:       localCost,
			SellerPrice:     applyRounding(sellerPrice, settings.Rounding),
			SuggestedPrice:  applyRounding(suggestedPrice, settings.Rounding),
			DisplayCurrency: displayCurrency(product.Currency, settings.GlobalCurrency),
		})
	}

	return view
}

// applyRounding adjusts a computed price according to the rounding rule.
func applyRounding(value float64, rule domain.RoundingRule) float64 {
	switch rule {
	case domain.RoundNearest:
		return math.Round(value)
	case domain.Round99:
		return math.Floor(value) + 0.99
	case domain.RoundUp10:
		return math.Ceil(value/10) * 10
	case domain.RoundUp100:
		return math.Ceil(value/100) * 100
	default:
		return value
	}
}

// displayCurrency resolves the product's own currency against the global
// override. "auto" means keep the per-product symbol.
func displayCurrency(productCurrency, globalCurrency string) string {
	if globalCurrency != "" && globalCurrency != "auto" {
		return globalCurrency
	}
	if productCurrency == "" {
		return "$"
	}
	return productCurrency
}
