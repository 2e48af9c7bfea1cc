package domain

import "time"

// Source identifies the provenance of the most recent write to a product.
type Source string

const (
	SourceFile      Source = "file"
	SourceTextBlock Source = "text-block"
	SourceImage     Source = "image"
	SourceURL       Source = "url"
	SourceManual    Source = "manual"
)

// RawProductRecord is the output of ingestion, not yet persisted.
// The JSON field names match the extraction collaborator's response schema.
type RawProductRecord struct {
	Name          string  `json:"name"`
	Brand         string  `json:"brand"`
	OriginalPrice float64 `json:"originalPrice"`
	Currency      string  `json:"currency"`
}

// CatalogProduct is the persisted entity, the unit of the master catalog.
// ID is assigned once at creation and never changes.
type CatalogProduct struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Brand         string    `json:"brand"`
	OriginalPrice float64   `json:"originalPrice"`
	Currency      string    `json:"currency"`
	Source        Source    `json:"source"`
	LastUpdated   time.Time `json:"lastUpdated"`
}

// SavedList is an immutable snapshot of the catalog taken on explicit save.
type SavedList struct {
	ID    string           `json:"id"`
	Name  string           `json:"name"`
	Date  time.Time        `json:"date"`
	Items []CatalogProduct `json:"items"`
}

// ImportSummary is the ephemeral result of one merge operation.
type ImportSummary struct {
	Added   int `json:"added"`
	Updated int `json:"updated"`
}

// GroundingSource is a citation URI returned by a web-search-augmented
// extraction. It is passed through unmodified for display.
type GroundingSource struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// ExtractionResult is the extraction collaborator's response contract.
type ExtractionResult struct {
	Items   []RawProductRecord `json:"items"`
	Sources []GroundingSource  `json:"sources,omitempty"`
}
