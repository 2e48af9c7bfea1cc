package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/pricemarkup/backend/internal/domain"
)

// SQLiteStore persists the same slots as FileStore in a single-table SQLite
// database, for deployments that want one durable file instead of a
// directory.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteStore opens (or creates) the database at path and ensures the
// slot table exists.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: open sqlite: %v", domain.ErrStorageFailure, err)
	}

	const schema = `CREATE TABLE IF NOT EXISTS slots (
		name    TEXT PRIMARY KEY,
		payload TEXT NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: create schema: %v", domain.ErrStorageFailure, err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) LoadCatalog() ([]domain.CatalogProduct, error) {
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

func (s *SQLiteStore) SaveCatalog(catalog []domain.CatalogProduct) error {
	return s.saveSlot(slotCatalog, catalog)
}

func (s *SQLiteStore) LoadSavedLists() ([]domain.SavedList, error) {
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

func (s *SQLiteStore) SaveSavedLists(lists []domain.SavedList) error {
	return s.saveSlot(slotLists, lists)
}

func (s *SQLiteStore) LoadSettings() (*domain.PricingSettings, error) {
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

func (s *SQLiteStore) SaveSettings(settings *domain.PricingSettings) error {
	return s.saveSlot(slotSettings, settings)
}

func (s *SQLiteStore) loadSlot(name string, v interface{}) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var payload string
	err := s.db.QueryRow(`SELECT payload FROM slots WHERE name = ?`, name).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: read slot %s: %v", domain.ErrStorageFailure, name, err)
	}

	if err := json.Unmarshal([]byte(payload), v); err != nil {
		return false, fmt.Errorf("%w: decode slot %s: %v", domain.ErrStorageFailure, name, err)
	}
	return true, nil
}

func (s *SQLiteStore) saveSlot(name string, v interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: encode slot %s: %v", domain.ErrStorageFailure, name, err)
	}

	_, err = s.db.Exec(
		`INSERT INTO slots (name, payload) VALUES (?, ?)
		 ON CONFLICT(name) DO UPDATE SET payload = excluded.payload`,
		name, string(payload),
	)
	if err != nil {
		return fmt.Errorf("%w: write slot %s: %v", domain.ErrStorageFailure, name, err)
	}
	return nil
}
