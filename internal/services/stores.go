package services

import (
	"time"

	"github.com/pius-coder/dropIndrop-v1-sub000/internal/models"
)

// DropStore is the persistence authority for drop aggregates. Implementations
// return *models.NotFoundError for unknown ids and *models.ConflictError for
// uniqueness violations.
type DropStore interface {
	Create(drop models.Drop) error
	FindByID(id string) (models.Drop, error)
	Update(drop models.Drop) error
	Delete(id string) error
	List(filters models.DropFilters, page, limit int) ([]models.Drop, int, error)
	FindByScheduledDateRange(from, to time.Time) ([]models.Drop, error)
	FindOverdue(now time.Time) ([]models.Drop, error)
	CountByStatus() (map[string]int, error)
	CountUpcomingOverdue(now time.Time) (upcoming int, overdue int, err error)
}

// ProductCatalog is the read-only view of the catalog the drop service needs.
type ProductCatalog interface {
	FindByID(id string) (models.Product, error)
}

// GroupDirectory is the read-only view of the recipient groups.
type GroupDirectory interface {
	FindByID(id string) (models.WhatsAppGroup, error)
}
