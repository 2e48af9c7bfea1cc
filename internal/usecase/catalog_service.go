package usecase

import (
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pricemarkup/backend/internal/domain"
)

// CatalogService owns the master catalog and its saved-list history. All
// mutation goes through the store so that the persisted state is the single
// source of truth; the merge itself is a pure function (MergeRecords) kept
// independently testable.
type CatalogService struct {
	store domain.Store

	mu sync.Mutex
	// generation increments on every destructive catalog replacement
	// (clear, restore). Imports that resolve against an older generation
	// are discarded instead of merged.
	generation uint64

	enableDebugLogging bool
}

// NewCatalogService creates a catalog service backed by the given store.
func NewCatalogService(store domain.Store, enableDebugLogging bool) *CatalogService {
	return &CatalogService{
		store:              store,
		enableDebugLogging: enableDebugLogging,
	}
}

// mergeKey is the identity key for upserts: case-insensitive exact match on
// name. Brand is informational, not part of the identity. Near-duplicate
// names are deliberately treated as distinct products.
func mergeKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// MergeRecords upserts incoming records into the catalog and returns the
// new catalog state plus a summary. Existing entries (matched by name) get
// their brand, price, currency, source, and timestamp overwritten in place;
// new entries are prepended so the most recent import surfaces first.
// Entries absent from incoming are left untouched.
func MergeRecords(
	catalog []domain.CatalogProduct,
	incoming []domain.RawProductRecord,
	source domain.Source,
	now time.Time,
) ([]domain.CatalogProduct, domain.ImportSummary) {
	index := make(map[string]int, len(catalog))
	for i, p := range catalog {
		index[mergeKey(p.Name)] = i
	}

	merged := make([]domain.CatalogProduct, len(catalog))
	copy(merged, catalog)

	var summary domain.ImportSummary
	var added []domain.CatalogProduct

	for _, rec := range incoming {
		key := mergeKey(rec.Name)
		if i, ok := index[key]; ok {
			// Negative indexes point into the block added by this batch, so
			// an in-batch duplicate updates instead of duplicating.
			var target *domain.CatalogProduct
			if i >= 0 {
				target = &merged[i]
			} else {
				target = &added[-i-1]
			}
			target.Brand = rec.Brand
			target.OriginalPrice = rec.OriginalPrice
			target.Currency = rec.Currency
			target.Source = source
			target.LastUpdated = now
			summary.Updated++
			continue
		}

		product := domain.CatalogProduct{
			ID:            uuid.NewString(),
			Name:          strings.TrimSpace(rec.Name),
			Brand:         rec.Brand,
			OriginalPrice: rec.OriginalPrice,
			Currency:      rec.Currency,
			Source:        source,
			LastUpdated:   now,
		}
		added = append(added, product)
		index[key] = -len(added)
		summary.Added++
	}

	return append(added, merged...), summary
}

// Catalog returns the current catalog state.
func (s *CatalogService) Catalog() ([]domain.CatalogProduct, error) {
	return s.store.LoadCatalog()
}

// Upsert merges incoming records into the persistent catalog and reports
// how many entries were added versus updated.
func (s *CatalogService) Upsert(incoming []domain.RawProductRecord, source domain.Source) (domain.ImportSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	catalog, err := s.store.LoadCatalog()
	if err != nil {
		return domain.ImportSummary{}, err
	}

	merged, summary := MergeRecords(catalog, incoming, source, time.Now())

	if err := s.store.SaveCatalog(merged); err != nil {
		return domain.ImportSummary{}, err
	}

	if s.enableDebugLogging {
		log.Printf("[CATALOG] upsert from %s: %d added, %d updated, %d total",
			source, summary.Added, summary.Updated, len(merged))
	}

	return summary, nil
}

// AddManual prepends a blank placeholder product for the operator to edit.
// A zero price is legitimate here; only imports reject non-positive prices.
func (s *CatalogService) AddManual() (domain.CatalogProduct, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	catalog, err := s.store.LoadCatalog()
	if err != nil {
		return domain.CatalogProduct{}, err
	}

	product := domain.CatalogProduct{
		ID:          uuid.NewString(),
		Name:        "New Product",
		Brand:       "",
		Currency:    "$",
		Source:      domain.SourceManual,
		LastUpdated: time.Now(),
	}

	catalog = append([]domain.CatalogProduct{product}, catalog...)
	if err := s.store.SaveCatalog(catalog); err != nil {
		return domain.CatalogProduct{}, err
	}

	return product, nil
}

// ProductUpdate carries the fields of a manual field edit; nil means leave
// unchanged.
type ProductUpdate struct {
	Name          *string  `json:"name"`
	Brand         *string  `json:"brand"`
	OriginalPrice *float64 `json:"originalPrice"`
	Currency      *string  `json:"currency"`
}

// UpdateProduct applies a manual field edit to one catalog entry.
func (s *CatalogService) UpdateProduct(id string, update ProductUpdate) (domain.CatalogProduct, error) {
	if update.Name != nil && strings.TrimSpace(*update.Name) == "" {
		return domain.CatalogProduct{}, fmt.Errorf("%w: name must not be empty", domain.ErrInvalidRequest)
	}
	if update.OriginalPrice != nil && *update.OriginalPrice < 0 {
		return domain.CatalogProduct{}, fmt.Errorf("%w: price must not be negative", domain.ErrInvalidRequest)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	catalog, err := s.store.LoadCatalog()
	if err != nil {
		return domain.CatalogProduct{}, err
	}

	for i := range catalog {
		if catalog[i].ID != id {
			continue
		}

		if update.Name != nil {
			catalog[i].Name = strings.TrimSpace(*update.Name)
		}
		if update.Brand != nil {
			catalog[i].Brand = strings.TrimSpace(*update.Brand)
		}
		if update.OriginalPrice != nil {
			catalog[i].OriginalPrice = *update.OriginalPrice
		}
		if update.Currency != nil {
			catalog[i].Currency = *update.Currency
		}
		catalog[i].LastUpdated = time.Now()

		if err := s.store.SaveCatalog(catalog); err != nil {
			return domain.CatalogProduct{}, err
		}
		return catalog[i], nil
	}

	return domain.CatalogProduct{}, domain.ErrProductNotFound
}

// DeleteProduct removes one entry from the catalog.
func (s *CatalogService) DeleteProduct(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	catalog, err := s.store.LoadCatalog()
	if err != nil {
		return err
	}

	for i := range catalog {
		if catalog[i].ID == id {
			catalog = append(catalog[:i], catalog[i+1:]...)
			return s.store.SaveCatalog(catalog)
		}
	}

	return domain.ErrProductNotFound
}

// Clear empties the catalog outright. This is the only destructive merge
// path; imports resolving after a clear are discarded by generation check.
func (s *CatalogService) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.SaveCatalog([]domain.CatalogProduct{}); err != nil {
		return err
	}
	s.generation++

	if s.enableDebugLogging {
		log.Printf("[CATALOG] cleared, generation now %d", s.generation)
	}
	return nil
}

// Generation returns the current catalog generation counter.
func (s *CatalogService) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// SaveList snapshots the current catalog into the saved-list history.
func (s *CatalogService) SaveList(name string) (domain.SavedList, error) {
	if strings.TrimSpace(name) == "" {
		return domain.SavedList{}, fmt.Errorf("%w: list name must not be empty", domain.ErrInvalidRequest)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	catalog, err := s.store.LoadCatalog()
	if err != nil {
		return domain.SavedList{}, err
	}
	if len(catalog) == 0 {
		return domain.SavedList{}, fmt.Errorf("%w: catalog is empty", domain.ErrInvalidRequest)
	}

	items := make([]domain.CatalogProduct, len(catalog))
	copy(items, catalog)

	list := domain.SavedList{
		ID:    uuid.NewString(),
		Name:  strings.TrimSpace(name),
		Date:  time.Now(),
		Items: items,
	}

	lists, err := s.store.LoadSavedLists()
	if err != nil {
		return domain.SavedList{}, err
	}

	lists = append([]domain.SavedList{list}, lists...)
	if err := s.store.SaveSavedLists(lists); err != nil {
		return domain.SavedList{}, err
	}

	return list, nil
}

// SavedLists returns the saved-list history, most recent first.
func (s *CatalogService) SavedLists() ([]domain.SavedList, error) {
	return s.store.LoadSavedLists()
}

// RestoreList replaces the entire current catalog with a snapshot's items.
func (s *CatalogService) RestoreList(id string) ([]domain.CatalogProduct, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lists, err := s.store.LoadSavedLists()
	if err != nil {
		return nil, err
	}

	for _, list := range lists {
		if list.ID != id {
			continue
		}

		catalog := make([]domain.CatalogProduct, len(list.Items))
		copy(catalog, list.Items)

		if err := s.store.SaveCatalog(catalog); err != nil {
			return nil, err
		}
		// Restoring is a full replacement, so pending import results must
		// not merge into it.
		s.generation++
		return catalog, nil
	}

	return nil, domain.ErrListNotFound
}

// DeleteList removes one snapshot from the history.
func (s *CatalogService) DeleteList(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lists, err := s.store.LoadSavedLists()
	if err != nil {
		return err
	}

	for i := range lists {
		if lists[i].ID == id {
			lists = append(lists[:i], lists[i+1:]...)
			return s.store.SaveSavedLists(lists)
		}
	}

	return domain.ErrListNotFound
}

// ClearLists wipes the entire saved-list history.
func (s *CatalogService) ClearLists() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.SaveSavedLists([]domain.SavedList{})
}

// Settings returns the persisted pricing settings, or defaults when none
// were saved yet.
func (s *CatalogService) Settings() (*domain.PricingSettings, error) {
	return s.store.LoadSettings()
}

// SaveSettings validates and persists the pricing settings.
func (s *CatalogService) SaveSettings(settings *domain.PricingSettings) error {
	if settings == nil {
		return domain.ErrInvalidRequest
	}
	if settings.ExchangeRate <= 0 {
		return fmt.Errorf("%w: exchange rate must be positive", domain.ErrInvalidRequest)
	}
	switch settings.Rounding {
	case domain.RoundNone, domain.RoundNearest, domain.Round99, domain.RoundUp10, domain.RoundUp100:
	default:
		return fmt.Errorf("%w: unknown rounding rule %q", domain.ErrInvalidRequest, settings.Rounding)
	}
	if _, ok := settings.Markups[settings.ActiveTier]; !ok {
		return fmt.Errorf("%w: active tier %q has no markup", domain.ErrInvalidRequest, settings.ActiveTier)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.SaveSettings(settings)
}
