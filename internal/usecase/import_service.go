package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/pricemarkup/backend/internal/domain"
)

// ImportServiceConfig holds configuration for the import pipeline
type ImportServiceConfig struct {
	HeaderScanRows     int
	MessyThreshold     float64
	MaxBlockChars      int
	EnableDebugLogging bool
}

// ImportService orchestrates the ingestion pipeline: raw source →
// normalized records → merged catalog. Extraction-backed imports hold a
// single-outstanding-request policy: one in-flight collaborator call, and
// results resolving after a catalog clear are discarded, never merged.
type ImportService struct {
	extractor  domain.Extractor
	catalog    *CatalogService
	normalizer *TabularNormalizer

	// inFlight serializes extraction-backed imports. TryLock failure maps
	// to ErrImportInProgress rather than queueing.
	inFlight sync.Mutex

	enableDebugLogging bool
}

// ImportOutcome is the result of one successful import: the merge summary
// plus any grounding sources returned by a web-search-augmented extraction,
// propagated untouched.
type ImportOutcome struct {
	Summary domain.ImportSummary     `json:"summary"`
	Sources []domain.GroundingSource `json:"sources,omitempty"`
}

// NewImportService creates an import service wired to the extraction
// collaborator and the catalog merge engine.
func NewImportService(extractor domain.Extractor, catalog *CatalogService, config ImportServiceConfig) *ImportService {
	return &ImportService{
		extractor: extractor,
		catalog:   catalog,
		normalizer: NewTabularNormalizer(NormalizerConfig{
			HeaderScanRows:     config.HeaderScanRows,
			MessyThreshold:     config.MessyThreshold,
			MaxBlockChars:      config.MaxBlockChars,
			EnableDebugLogging: config.EnableDebugLogging,
		}),
		enableDebugLogging: config.EnableDebugLogging,
	}
}

// ImportGrid runs the tabular pipeline against a 2-D grid of cells. When a
// messy column is detected, the concatenated block goes to the extraction
// collaborator first; on collaborator failure the import falls back to
// column extraction over the full grid rather than failing outright.
func (s *ImportService) ImportGrid(ctx context.Context, grid [][]string, source domain.Source) (*ImportOutcome, error) {
	if len(grid) == 0 {
		return nil, domain.ErrEmptySource
	}

	if col, ok := s.normalizer.DetectMessyColumn(grid); ok {
		block := s.normalizer.BuildMessyBlock(grid, col)
		outcome, err := s.importViaExtraction(ctx, source, func(ctx context.Context) (*domain.ExtractionResult, error) {
			return s.extractor.CleanMessyData(ctx, block)
		})
		if err == nil {
			return outcome, nil
		}
		// Policy errors are final: a discarded result must not sneak back in
		// through the tabular path, and a second in-flight import must not
		// bypass the single-outstanding-request rule.
		if errors.Is(err, domain.ErrImportDiscarded) || errors.Is(err, domain.ErrImportInProgress) {
			return nil, err
		}
		log.Printf("[IMPORT] messy-column extraction failed (%v), falling back to column extraction", err)
	}

	records := s.normalizer.Normalize(grid)
	if len(records) == 0 {
		return nil, domain.ErrNoValidRecords
	}

	summary, err := s.catalog.Upsert(records, source)
	if err != nil {
		return nil, err
	}

	return &ImportOutcome{Summary: summary}, nil
}

// ImportText hands a free-text block to the extraction collaborator.
func (s *ImportService) ImportText(ctx context.Context, text string) (*ImportOutcome, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrEmptySource
	}
	text = truncateToRuneBoundary(text, s.normalizer.maxBlockChars)

	return s.importViaExtraction(ctx, domain.SourceTextBlock, func(ctx context.Context) (*domain.ExtractionResult, error) {
		return s.extractor.CleanMessyData(ctx, text)
	})
}

// ImportImage runs vision-based extraction against a photographed price
// sheet.
func (s *ImportService) ImportImage(ctx context.Context, imageData []byte, mimeType string) (*ImportOutcome, error) {
	if len(imageData) == 0 || mimeType == "" {
		return nil, fmt.Errorf("%w: image data and mime type are required", domain.ErrInvalidRequest)
	}

	return s.importViaExtraction(ctx, domain.SourceImage, func(ctx context.Context) (*domain.ExtractionResult, error) {
		return s.extractor.ExtractFromImage(ctx, imageData, mimeType)
	})
}

// ImportURL fetches and extracts a web page through the collaborator.
// Grounding sources from the response are passed through for display.
func (s *ImportService) ImportURL(ctx context.Context, url string) (*ImportOutcome, error) {
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("%w: url is required", domain.ErrInvalidRequest)
	}

	return s.importViaExtraction(ctx, domain.SourceURL, func(ctx context.Context) (*domain.ExtractionResult, error) {
		return s.extractor.ExtractFromURL(ctx, url)
	})
}

// importViaExtraction wraps one collaborator call with the
// single-outstanding-request policy and merges its items. Any collaborator
// failure aborts the import with the catalog left at its previous state.
func (s *ImportService) importViaExtraction(
	ctx context.Context,
	source domain.Source,
	extract func(context.Context) (*domain.ExtractionResult, error),
) (*ImportOutcome, error) {
	if !s.inFlight.TryLock() {
		return nil, domain.ErrImportInProgress
	}
	defer s.inFlight.Unlock()

	generation := s.catalog.Generation()

	result, err := extract(ctx)
	if err != nil {
		return nil, err
	}

	// A clear while the request was in flight invalidates the result.
	if s.catalog.Generation() != generation {
		if s.enableDebugLogging {
			log.Printf("[IMPORT] discarding %s extraction result: catalog cleared mid-flight", source)
		}
		return nil, domain.ErrImportDiscarded
	}

	records := sanitizeRecords(result.Items)
	if len(records) == 0 {
		return nil, domain.ErrNoValidRecords
	}

	summary, err := s.catalog.Upsert(records, source)
	if err != nil {
		return nil, err
	}

	return &ImportOutcome{Summary: summary, Sources: result.Sources}, nil
}

// sanitizeRecords canonicalizes raw extraction results: trimmed fields, a
// default currency symbol, and the same filtering the tabular path applies
// (single-character names and non-positive prices are dropped).
func sanitizeRecords(items []domain.RawProductRecord) []domain.RawProductRecord {
	records := make([]domain.RawProductRecord, 0, len(items))
	for _, item := range items {
		name := strings.TrimSpace(item.Name)
		if len([]rune(name)) <= 1 || item.OriginalPrice <= 0 {
			continue
		}

		currency := strings.TrimSpace(item.Currency)
		if currency == "" {
			currency = "$"
		}

		records = append(records, domain.RawProductRecord{
			Name:          name,
			Brand:         strings.TrimSpace(item.Brand),
			OriginalPrice: item.OriginalPrice,
			Currency:      currency,
		})
	}
	return records
}
