package domain

// RoundingRule controls how computed seller and suggested prices are
// adjusted after markup.
type RoundingRule string

const (
	RoundNone    RoundingRule = "none" // leave prices unchanged
	RoundNearest RoundingRule = "00"   // round to nearest whole unit
	Round99      RoundingRule = "99"   // floor to whole unit, add 0.99
	RoundUp10    RoundingRule = "10"   // smallest multiple of 10 >= value
	RoundUp100   RoundingRule = "100"  // smallest multiple of 100 >= value
)

// Tier names a seller-markup percentage. Exactly one tier is active at a time.
type Tier string

const (
	Tier1      Tier = "tier1"
	Tier2      Tier = "tier2"
	Tier3      Tier = "tier3"
	Tier4      Tier = "tier4"
	Tier5      Tier = "tier5"
	TierCustom Tier = "custom"
)

// Visibility controls which computed prices appear in the projected view.
// It never affects computation, only what the caller displays.
type Visibility struct {
	ShowBaseCost       bool `json:"baseCost" mapstructure:"base_cost"`
	ShowSellerPrice    bool `json:"sellerPrice" mapstructure:"seller_price"`
	ShowSuggestedPrice bool `json:"suggestedPrice" mapstructure:"suggested_price"`
}

// PricingSettings is the process-wide, operator-editable pricing
// configuration, persisted independently of the catalog.
type PricingSettings struct {
	ExchangeRate     float64          `json:"exchangeRate"`
	Rounding         RoundingRule     `json:"roundingRule"`
	Markups          map[Tier]float64 `json:"markups"`
	ActiveTier       Tier             `json:"activeTier"`
	ClientAdjustment float64          `json:"clientAdjustment"`
	Visibility       Visibility       `json:"visibility"`
	GlobalCurrency   string           `json:"globalCurrency"` // "auto" or an explicit symbol
}

// DefaultPricingSettings returns the settings used before the operator
// saves any of their own.
func DefaultPricingSettings() *PricingSettings {
	return &PricingSettings{
		ExchangeRate: 1,
		Rounding:     RoundNone,
		Markups: map[Tier]float64{
			Tier1: 10, Tier2: 20, Tier3: 30, Tier4: 50, Tier5: 100,
			TierCustom: 15,
		},
		ActiveTier:       Tier3,
		ClientAdjustment: 15,
		Visibility: Visibility{
			ShowBaseCost:       true,
			ShowSellerPrice:    true,
			ShowSuggestedPrice: true,
		},
		GlobalCurrency: "auto",
	}
}

// ActiveMarkup returns the markup percentage of the active tier.
func (s *PricingSettings) ActiveMarkup() float64 {
	return s.Markups[s.ActiveTier]
}

// PricedProduct is a read-only projection of a catalog product through the
// pricing model. It is recomputed on every catalog, settings, or search
// change and never written back.
type PricedProduct struct {
	CatalogProduct
	LocalCost      float64 `json:"localCost"`
	SellerPrice    float64 `json:"sellerPrice"`
	SuggestedPrice float64 `json:"suggestedPrice"`
	// DisplayCurrency is the product currency unless the settings force a
	// global override.
	DisplayCurrency string `json:"displayCurrency"`
}
