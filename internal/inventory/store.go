package inventory

import (
	"strings"
	"sync"

	"github.com/andresuchdata/atim/backend-go/internal/domain"
	"github.com/rs/zerolog/log"
)

// Store owns the decoded inventory for one CSV source
type Store struct {
	path string
	calc *DefaultsCalculator

	mu    sync.RWMutex
	items []domain.InventoryItem
}

// NewStore loads path and returns a store bound to it.
func NewStore(path string, calc *DefaultsCalculator) (*Store, error) {
	if calc == nil {
		calc = NewDefaultsCalculator(0)
	}
	s := &Store{path: path, calc: calc}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the CSV source the store reads and writes.
func (s *Store) Path() string {
	return s.path
}

// Reload re-reads the source, discarding in-memory state. On error the
// previous items are kept.
func (s *Store) Reload() error {
	items, err := LoadFile(s.path, s.calc)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.items = items
	s.mu.Unlock()

	log.Debug().Str("path", s.path).Int("items", len(items)).Msg("inventory: loaded")
	return nil
}

// Items returns a copy of every item in source order.
func (s *Store) Items() []domain.InventoryItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.InventoryItem, len(s.items))
	copy(out, s.items)
	return out
}

// FindByKeyword returns items whose name or category contains keyword,
// case-insensitively.
func (s *Store) FindByKeyword(keyword string) []domain.InventoryItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return MatchKeyword(s.items, keyword)
}

// Summary computes the inventory summary for the current items.
func (s *Store) Summary() domain.InventorySummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Summarize(s.items)
}

// LowStock returns items at or below their reorder point.
func (s *Store) LowStock() []domain.InventoryItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return LowStock(s.items)
}

// Keywords derives trend keywords from product names, lowercased and
// de-duplicated in source order. Extra keywords are appended when new.
func (s *Store) Keywords(extra ...string) []string {
	s.mu.RLock()
	names := make([]string, 0, len(s.items)+len(extra))
	for _, it := range s.items {
		names = append(names, it.ProductName)
	}
	s.mu.RUnlock()

	names = append(names, extra...)

	seen := make(map[string]struct{}, len(names))
	keywords := make([]string, 0, len(names))
	for _, n := range names {
		k := strings.ToLower(strings.TrimSpace(n))
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		keywords = append(keywords, k)
	}
	return keywords
}

// UpdateStock sets the stock of the item whose name matches exactly,
// ignoring case. It returns false when no item matches. With persist the
// whole item set is written back to the source; a write failure is
// returned but the in-memory update stands.
func (s *Store) UpdateStock(productName string, newStock int, persist bool) (bool, error) {
	if newStock < 0 {
		return false, &domain.ValidationError{Field: "new_stock", Message: "must be >= 0"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	for i := range s.items {
		if strings.EqualFold(s.items[i].ProductName, productName) {
			s.items[i].CurrentStock = newStock
			found = true
			break
		}
	}
	if !found {
		return false, nil
	}

	if persist {
		if err := SaveFile(s.path, s.items); err != nil {
			log.Warn().Err(err).Str("path", s.path).Msg("inventory: could not save to csv")
			return true, err
		}
	}
	return true, nil
}

// Save writes the current items back to the source.
func (s *Store) Save() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return SaveFile(s.path, s.items)
}

// MatchKeyword filters items by case-insensitive substring match on name or category.
func MatchKeyword(items []domain.InventoryItem, keyword string) []domain.InventoryItem {
	kw := strings.ToLower(keyword)
	var matches []domain.InventoryItem
	for _, it := range items {
		if strings.Contains(strings.ToLower(it.ProductName), kw) || strings.Contains(strings.ToLower(it.Category), kw) {
			matches = append(matches, it)
		}
	}
	return matches
}

// Summarize builds an InventorySummary for items.
func Summarize(items []domain.InventoryItem) domain.InventorySummary {
	summary := domain.InventorySummary{
		TotalItems: len(items),
		Items:      make([]domain.ItemStatus, 0, len(items)),
	}
	for _, it := range items {
		status := domain.ItemStatusAdequate
		if it.IsLowStock() {
			summary.LowStockItems++
			status = domain.ItemStatusLowStock
		}
		summary.TotalInventoryValue += it.StockValue()
		summary.Items = append(summary.Items, domain.ItemStatus{
			ProductName:  it.ProductName,
			CurrentStock: it.CurrentStock,
			ReorderPoint: it.ReorderPoint,
			Status:       status,
		})
	}
	return summary
}

// LowStock returns the items at or below their reorder point, in order.
func LowStock(items []domain.InventoryItem) []domain.InventoryItem {
	low := make([]domain.InventoryItem, 0)
	for _, it := range items {
		if it.IsLowStock() {
			low = append(low, it)
		}
	}
	return low
}
