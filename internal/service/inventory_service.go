package service

import (
	"sync"

	"github.com/andresuchdata/atim/backend-go/internal/domain"
	"github.com/andresuchdata/atim/backend-go/internal/inventory"
)

// InventoryService serves the configured inventory file. The store is
// loaded on first use so the server can start before the file exists.
type InventoryService struct {
	path string
	calc *inventory.DefaultsCalculator

	mu    sync.Mutex
	store *inventory.Store
}

func NewInventoryService(path string, defaultLeadTimeDays int) *InventoryService {
	return &InventoryService{
		path: path,
		calc: inventory.NewDefaultsCalculator(defaultLeadTimeDays),
	}
}

func (s *InventoryService) loadStore() (*inventory.Store, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.store != nil {
		return s.store, nil
	}
	store, err := inventory.NewStore(s.path, s.calc)
	if err != nil {
		return nil, err
	}
	s.store = store
	return store, nil
}

func (s *InventoryService) Summary() (domain.InventorySummary, error) {
	store, err := s.loadStore()
	if err != nil {
		return domain.InventorySummary{}, err
	}
	return store.Summary(), nil
}

func (s *InventoryService) LowStock() ([]domain.InventoryItem, error) {
	store, err := s.loadStore()
	if err != nil {
		return nil, err
	}
	return store.LowStock(), nil
}

// UpdateStock sets one item's stock and persists the file.
func (s *InventoryService) UpdateStock(productName string, newStock int) (bool, error) {
	store, err := s.loadStore()
	if err != nil {
		return false, err
	}
	return store.UpdateStock(productName, newStock, true)
}

// Reload re-reads the file, picking up edits made outside the service.
// A store that was never loaded is loaded now.
func (s *InventoryService) Reload() error {
	s.mu.Lock()
	store := s.store
	s.mu.Unlock()

	if store == nil {
		_, err := s.loadStore()
		return err
	}
	return store.Reload()
}
