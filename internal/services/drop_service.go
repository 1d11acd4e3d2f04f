package services

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/pius-coder/dropIndrop-v1-sub000/internal/config"
	"github.com/pius-coder/dropIndrop-v1-sub000/internal/models"

	"github.com/google/uuid"
)

// DropService is the sole writer of drop state. Every operation validates
// against the catalog and the group directory before touching the store.
type DropService struct {
	store    DropStore
	products ProductCatalog
	groups   GroupDirectory
	loc      *time.Location
}

func NewDropService(db *sql.DB) *DropService {
	cfg := config.GetConfig()
	loc, err := time.LoadLocation(cfg.Dispatch.Timezone)
	if err != nil {
		loc = time.Local
	}
	return NewDropServiceWith(
		NewPostgresDropStore(db),
		NewPostgresProductCatalog(db),
		NewPostgresGroupDirectory(db),
		loc,
	)
}

func NewDropServiceWith(store DropStore, products ProductCatalog, groups GroupDirectory, loc *time.Location) *DropService {
	if loc == nil {
		loc = time.Local
	}
	return &DropService{
		store:    store,
		products: products,
		groups:   groups,
		loc:      loc,
	}
}

type CreateDropInput struct {
	Name          string
	ScheduledDate time.Time
	ProductIDs    []string
	GroupIDs      []string
	CreatedBy     string
}

// Create validates the input and persists a new drop in DRAFT.
func (s *DropService) Create(input CreateDropInput) (models.Drop, error) {
	if time.Until(input.ScheduledDate) < models.MinScheduleLeadTime {
		return models.Drop{}, models.NewValidationError("scheduled date must be at least 1 hour in the future")
	}
	if len(input.ProductIDs) == 0 {
		return models.Drop{}, models.NewValidationError("a drop must contain at least one product")
	}
	if len(input.GroupIDs) == 0 {
		return models.Drop{}, models.NewValidationError("a drop must target at least one group")
	}

	items := make([]models.DropItem, 0, len(input.ProductIDs))
	for i, productID := range input.ProductIDs {
		items = append(items, models.DropItem{ProductID: productID, SortOrder: i})
	}
	if err := models.ValidateDropItems(items); err != nil {
		return models.Drop{}, err
	}
	if err := models.ValidateDropGroups(input.GroupIDs); err != nil {
		return models.Drop{}, err
	}

	if err := s.checkProducts(input.ProductIDs); err != nil {
		return models.Drop{}, err
	}
	if err := s.checkGroups(input.GroupIDs); err != nil {
		return models.Drop{}, err
	}

	now := time.Now()
	drop := models.Drop{
		ID:            uuid.New().String(),
		Name:          input.Name,
		ScheduledDate: input.ScheduledDate,
		Status:        models.DropStatusDraft,
		CreatedBy:     input.CreatedBy,
		Items:         items,
		GroupIDs:      append([]string(nil), input.GroupIDs...),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.store.Create(drop); err != nil {
		return models.Drop{}, err
	}
	return s.store.FindByID(drop.ID)
}

// checkProducts fails naming the first product that is missing or inactive.
func (s *DropService) checkProducts(productIDs []string) error {
	for _, id := range productIDs {
		product, err := s.products.FindByID(id)
		if err != nil {
			return err
		}
		if !product.IsActive {
			return models.NewValidationError(fmt.Sprintf("product is not active: %s", product.Name))
		}
	}
	return nil
}

// checkGroups fails naming the first group that is missing or inactive.
func (s *DropService) checkGroups(groupIDs []string) error {
	for _, id := range groupIDs {
		group, err := s.groups.FindByID(id)
		if err != nil {
			return err
		}
		if !group.IsActive {
			return models.NewValidationError(fmt.Sprintf("group is not active: %s", group.Name))
		}
	}
	return nil
}

func (s *DropService) Get(id string) (models.Drop, error) {
	return s.store.FindByID(id)
}

// Update re-runs the existence and active checks for any list supplied and
// applies the change through the entity, so terminal drops never mutate.
func (s *DropService) Update(id string, req models.UpdateDropRequest) (models.Drop, error) {
	drop, err := s.store.FindByID(id)
	if err != nil {
		return models.Drop{}, err
	}

	if drop.IsTerminal() {
		return models.Drop{}, models.NewValidationError(fmt.Sprintf("drop is %s and can no longer be edited", drop.Status))
	}

	upd := models.DropUpdate{Name: req.Name, Status: req.Status}

	if req.ScheduledDate != nil {
		parsed, err := time.Parse(time.RFC3339, *req.ScheduledDate)
		if err != nil {
			return models.Drop{}, models.NewValidationError("invalid scheduled_date format, use RFC3339")
		}
		if time.Until(parsed) < models.MinScheduleLeadTime && !drop.IsSent() {
			return models.Drop{}, models.NewValidationError("scheduled date must be at least 1 hour in the future")
		}
		upd.ScheduledDate = &parsed
	}

	if req.ProductIDs != nil {
		items := make([]models.DropItem, 0, len(req.ProductIDs))
		for i, productID := range req.ProductIDs {
			items = append(items, models.DropItem{ProductID: productID, SortOrder: i})
		}
		if err := models.ValidateDropItems(items); err != nil {
			return models.Drop{}, err
		}
		if err := s.checkProducts(req.ProductIDs); err != nil {
			return models.Drop{}, err
		}
		upd.Items = items
	}

	if req.GroupIDs != nil {
		if err := models.ValidateDropGroups(req.GroupIDs); err != nil {
			return models.Drop{}, err
		}
		if err := s.checkGroups(req.GroupIDs); err != nil {
			return models.Drop{}, err
		}
		upd.GroupIDs = req.GroupIDs
	}

	updated, err := drop.ApplyUpdate(upd)
	if err != nil {
		return models.Drop{}, err
	}

	if err := s.store.Update(updated); err != nil {
		return models.Drop{}, err
	}
	return s.store.FindByID(id)
}

// Delete refuses to remove sent drops: they are an audit record.
func (s *DropService) Delete(id string) error {
	drop, err := s.store.FindByID(id)
	if err != nil {
		return err
	}
	if drop.IsSent() {
		return models.NewValidationError("sent drops cannot be deleted")
	}
	return s.store.Delete(id)
}

func (s *DropService) Schedule(id string) (models.Drop, error) {
	drop, err := s.store.FindByID(id)
	if err != nil {
		return models.Drop{}, err
	}
	scheduled, err := drop.Schedule()
	if err != nil {
		return models.Drop{}, err
	}
	if err := s.store.Update(scheduled); err != nil {
		return models.Drop{}, err
	}
	return scheduled, nil
}

func (s *DropService) Cancel(id string) (models.Drop, error) {
	drop, err := s.store.FindByID(id)
	if err != nil {
		return models.Drop{}, err
	}
	cancelled, err := drop.Cancel()
	if err != nil {
		return models.Drop{}, err
	}
	if err := s.store.Update(cancelled); err != nil {
		return models.Drop{}, err
	}
	return cancelled, nil
}

func (s *DropService) MarkAsSent(id, whatsappMessageID string) (models.Drop, error) {
	drop, err := s.store.FindByID(id)
	if err != nil {
		return models.Drop{}, err
	}
	sent, err := drop.MarkAsSent(whatsappMessageID)
	if err != nil {
		return models.Drop{}, err
	}
	if err := s.store.Update(sent); err != nil {
		return models.Drop{}, err
	}
	return sent, nil
}

func (s *DropService) List(filters models.DropFilters, page, limit int) (models.DropListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	drops, total, err := s.store.List(filters, page, limit)
	if err != nil {
		return models.DropListResponse{}, err
	}

	totalPages := (total + limit - 1) / limit
	return models.DropListResponse{
		Drops:      drops,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}

// GetDropsForDate returns non-terminal drops scheduled within the given
// calendar day in the configured timezone. A poller uses this to find work.
func (s *DropService) GetDropsForDate(date time.Time) ([]models.Drop, error) {
	day := date.In(s.loc)
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, s.loc)
	end := start.Add(24*time.Hour - time.Nanosecond)

	drops, err := s.store.FindByScheduledDateRange(start, end)
	if err != nil {
		return nil, err
	}

	active := make([]models.Drop, 0, len(drops))
	for _, drop := range drops {
		if !drop.IsTerminal() {
			active = append(active, drop)
		}
	}
	return active, nil
}

// GetOverdueDrops returns SCHEDULED drops whose date has passed.
func (s *DropService) GetOverdueDrops() ([]models.Drop, error) {
	return s.store.FindOverdue(time.Now())
}

func (s *DropService) GetAnalytics() (models.DropAnalytics, error) {
	counts, err := s.store.CountByStatus()
	if err != nil {
		return models.DropAnalytics{}, err
	}

	upcoming, overdue, err := s.store.CountUpcomingOverdue(time.Now())
	if err != nil {
		return models.DropAnalytics{}, err
	}

	total := 0
	for _, count := range counts {
		total += count
	}

	return models.DropAnalytics{
		Total:     total,
		Draft:     counts[models.DropStatusDraft],
		Scheduled: counts[models.DropStatusScheduled],
		Sent:      counts[models.DropStatusSent],
		Cancelled: counts[models.DropStatusCancelled],
		Upcoming:  upcoming,
		Overdue:   overdue,
	}, nil
}
