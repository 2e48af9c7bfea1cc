package domain

import "context"

// Store is the persistence collaborator. The core treats it as a set of
// durable key-value slots and does not care about the physical format.
type Store interface {
	LoadCatalog() ([]CatalogProduct, error)
	SaveCatalog([]CatalogProduct) error
	LoadSavedLists() ([]SavedList, error)
	SaveSavedLists([]SavedList) error
	LoadSettings() (*PricingSettings, error)
	SaveSettings(*PricingSettings) error
}

// Extractor is the external extraction collaborator (an LLM-backed
// service). Any failure is an ingestion failure for the whole batch, never
// a partial success.
type Extractor interface {
	ExtractFromImage(ctx context.Context, imageData []byte, mimeType string) (*ExtractionResult, error)
	CleanMessyData(ctx context.Context, textBlock string) (*ExtractionResult, error)
	ExtractFromURL(ctx context.Context, url string) (*ExtractionResult, error)
}
