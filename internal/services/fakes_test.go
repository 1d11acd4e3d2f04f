package services

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pius-coder/dropIndrop-v1-sub000/internal/models"
)

// memoryDropStore is an in-memory DropStore for service tests.
type memoryDropStore struct {
	mu    sync.Mutex
	drops map[string]models.Drop
}

func newMemoryDropStore() *memoryDropStore {
	return &memoryDropStore{drops: map[string]models.Drop{}}
}

func (m *memoryDropStore) Create(drop models.Drop) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.drops[drop.ID]; ok {
		return models.NewConflictError(fmt.Sprintf("drop already exists: %s", drop.ID))
	}
	m.drops[drop.ID] = drop
	return nil
}

func (m *memoryDropStore) FindByID(id string) (models.Drop, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	drop, ok := m.drops[id]
	if !ok {
		return models.Drop{}, models.NewNotFoundError(fmt.Sprintf("drop not found: %s", id))
	}
	return drop, nil
}

func (m *memoryDropStore) Update(drop models.Drop) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.drops[drop.ID]; !ok {
		return models.NewNotFoundError(fmt.Sprintf("drop not found: %s", drop.ID))
	}
	m.drops[drop.ID] = drop
	return nil
}

func (m *memoryDropStore) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.drops[id]; !ok {
		return models.NewNotFoundError(fmt.Sprintf("drop not found: %s", id))
	}
	delete(m.drops, id)
	return nil
}

func (m *memoryDropStore) all() []models.Drop {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Drop, 0, len(m.drops))
	for _, drop := range m.drops {
		out = append(out, drop)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledDate.Before(out[j].ScheduledDate) })
	return out
}

func (m *memoryDropStore) List(filters models.DropFilters, page, limit int) ([]models.Drop, int, error) {
	matched := []models.Drop{}
	for _, drop := range m.all() {
		if filters.Status != "" && drop.Status != filters.Status {
			continue
		}
		if filters.CreatedBy != "" && drop.CreatedBy != filters.CreatedBy {
			continue
		}
		if filters.Search != "" && !strings.Contains(strings.ToLower(drop.Name), strings.ToLower(filters.Search)) {
			continue
		}
		matched = append(matched, drop)
	}

	total := len(matched)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (m *memoryDropStore) FindByScheduledDateRange(from, to time.Time) ([]models.Drop, error) {
	out := []models.Drop{}
	for _, drop := range m.all() {
		if !drop.ScheduledDate.Before(from) && !drop.ScheduledDate.After(to) {
			out = append(out, drop)
		}
	}
	return out, nil
}

func (m *memoryDropStore) FindOverdue(now time.Time) ([]models.Drop, error) {
	out := []models.Drop{}
	for _, drop := range m.all() {
		if drop.Status == models.DropStatusScheduled && drop.ScheduledDate.Before(now) {
			out = append(out, drop)
		}
	}
	return out, nil
}

func (m *memoryDropStore) CountByStatus() (map[string]int, error) {
	counts := map[string]int{}
	for _, drop := range m.all() {
		counts[drop.Status]++
	}
	return counts, nil
}

func (m *memoryDropStore) CountUpcomingOverdue(now time.Time) (int, int, error) {
	upcoming, overdue := 0, 0
	for _, drop := range m.all() {
		if drop.Status != models.DropStatusScheduled {
			continue
		}
		if drop.ScheduledDate.After(now) {
			upcoming++
		} else {
			overdue++
		}
	}
	return upcoming, overdue, nil
}

// memoryCatalog is an in-memory ProductCatalog.
type memoryCatalog struct {
	products map[string]models.Product
}

func (m *memoryCatalog) FindByID(id string) (models.Product, error) {
	product, ok := m.products[id]
	if !ok {
		return models.Product{}, models.NewNotFoundError(fmt.Sprintf("product not found: %s", id))
	}
	return product, nil
}

// memoryDirectory is an in-memory GroupDirectory.
type memoryDirectory struct {
	groups map[string]models.WhatsAppGroup
}

func (m *memoryDirectory) FindByID(id string) (models.WhatsAppGroup, error) {
	group, ok := m.groups[id]
	if !ok {
		return models.WhatsAppGroup{}, models.NewNotFoundError(fmt.Sprintf("group not found: %s", id))
	}
	return group, nil
}

func testCatalog() *memoryCatalog {
	return &memoryCatalog{products: map[string]models.Product{
		"p1": {ID: "p1", Name: "Kaos Polos", Price: 85000, IsActive: true},
		"p2": {ID: "p2", Name: "Kemeja Flanel", Price: 165000, IsActive: true},
		"p3": {ID: "p3", Name: "Produk Lama", Price: 50000, IsActive: false},
	}}
}

func testDirectory() *memoryDirectory {
	return &memoryDirectory{groups: map[string]models.WhatsAppGroup{
		"g1": {ID: "g1", ChatID: "120363001@g.us", Name: "Reseller A", IsActive: true},
		"g2": {ID: "g2", ChatID: "120363002@g.us", Name: "Reseller B", IsActive: true},
		"g3": {ID: "g3", ChatID: "120363003@g.us", Name: "Grup Nonaktif", IsActive: false},
	}}
}
