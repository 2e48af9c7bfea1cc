package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pricemarkup/backend/internal/domain"
)

// Slot file names under the store directory.
const (
	slotCatalog  = "catalog.json"
	slotLists    = "saved_lists.json"
	slotSettings = "settings.json"
)

// FileStore persists each slot as a JSON file under a directory. Writes go
// through a temp file and rename so a crash never leaves a half-written
// slot behind.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore creates the directory if needed and returns a store over it.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create store dir: %v", domain.ErrStorageFailure, err)
	}
	return &FileStore{dir: dir}, nil
}

// LoadCatalog returns the persisted catalog; an absent slot is an empty
// catalog, not an error.
func (s *FileStore) LoadCatalog() ([]domain.CatalogProduct, error) {
	var catalog []domain.CatalogProduct
	found, err := s.loadSlot(slotCatalog, &catalog)
	if err != nil {
		return nil, err
	}
	if !found {
		return []domain.CatalogProduct{}, nil
	}
	return catalog, nil
}

// SaveCatalog replaces the catalog slot.
func (s *FileStore) SaveCatalog(catalog []domain.CatalogProduct) error {
	return s.saveSlot(slotCatalog, catalog)
}

// LoadSavedLists returns the saved-list history; absent slot means empty.
func (s *FileStore) LoadSavedLists() ([]domain.SavedList, error) {
	var lists []domain.SavedList
	found, err := s.loadSlot(slotLists, &lists)
	if err != nil {
		return nil, err
	}
	if !found {
		return []domain.SavedList{}, nil
	}
	return lists, nil
}

// SaveSavedLists replaces the saved-list slot.
func (s *FileStore) SaveSavedLists(lists []domain.SavedList) error {
	return s.saveSlot(slotLists, lists)
}

// LoadSettings returns the persisted pricing settings, or defaults when the
// operator never saved any.
func (s *FileStore) LoadSettings() (*domain.PricingSettings, error) {
	var settings domain.PricingSettings
	found, err := s.loadSlot(slotSettings, &settings)
	if err != nil {
		return nil, err
	}
	if !found {
		return domain.DefaultPricingSettings(), nil
	}
	return &settings, nil
}

// SaveSettings replaces the settings slot.
func (s *FileStore) SaveSettings(settings *domain.PricingSettings) error {
	return s.saveSlot(slotSettings, settings)
}

// loadSlot reads one slot file. Returns found=false when the slot does not
// exist yet.
func (s *FileStore) loadSlot(name string, v interface{}) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: read %s: %v", domain.ErrStorageFailure, name, err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("%w: decode %s: %v", domain.ErrStorageFailure, name, err)
	}
	return true, nil
}

// saveSlot atomically replaces one slot file.
func (s *FileStore) saveSlot(name string, v interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", domain.ErrStorageFailure, name, err)
	}

	path := filepath.Join(s.dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("%w: write %s: %v", domain.ErrStorageFailure, name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("%w: replace %s: %v", domain.ErrStorageFailure, name, err)
	}
	return nil
}
