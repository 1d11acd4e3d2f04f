package services

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/pius-coder/dropIndrop-v1-sub000/internal/models"

	"github.com/lib/pq"
)

// PostgresDropStore persists drop aggregates (the drop row plus its ordered
// product list and its group bindings).
type PostgresDropStore struct {
	db *sql.DB
}

func NewPostgresDropStore(db *sql.DB) *PostgresDropStore {
	return &PostgresDropStore{db: db}
}

func (s *PostgresDropStore) Create(drop models.Drop) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO drops (id, name, scheduled_date, status, sent_at, whatsapp_message_id, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, drop.ID, drop.Name, drop.ScheduledDate, drop.Status, drop.SentAt, drop.WhatsAppMessageID, drop.CreatedBy, drop.CreatedAt, drop.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return models.NewConflictError("drop already exists")
		}
		return fmt.Errorf("failed to insert drop: %v", err)
	}

	if err := insertAssociations(tx, drop); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *PostgresDropStore) FindByID(id string) (models.Drop, error) {
	var drop models.Drop
	err := s.db.QueryRow(`
		SELECT id, COALESCE(name, ''), scheduled_date, status, sent_at, whatsapp_message_id, created_by, created_at, updated_at
		FROM drops WHERE id = $1
	`, id).Scan(&drop.ID, &drop.Name, &drop.ScheduledDate, &drop.Status, &drop.SentAt,
		&drop.WhatsAppMessageID, &drop.CreatedBy, &drop.CreatedAt, &drop.UpdatedAt)
	if err == sql.ErrNoRows {
		return models.Drop{}, models.NewNotFoundError(fmt.Sprintf("drop not found: %s", id))
	}
	if err != nil {
		return models.Drop{}, fmt.Errorf("failed to fetch drop: %v", err)
	}

	if err := s.loadAssociations(&drop); err != nil {
		return models.Drop{}, err
	}
	return drop, nil
}

// loadAssociations fills Items (with product snapshots, in sort order) and
// GroupIDs (in binding order).
func (s *PostgresDropStore) loadAssociations(drop *models.Drop) error {
	rows, err := s.db.Query(`
		SELECT dp.product_id, dp.sort_order, p.name, p.price, COALESCE(p.description, '')
		FROM drop_products dp
		JOIN products p ON p.id = dp.product_id
		WHERE dp.drop_id = $1
		ORDER BY dp.sort_order ASC
	`, drop.ID)
	if err != nil {
		return fmt.Errorf("failed to fetch drop products: %v", err)
	}
	defer rows.Close()

	drop.Items = nil
	for rows.Next() {
		var item models.DropItem
		if err := rows.Scan(&item.ProductID, &item.SortOrder, &item.ProductName, &item.ProductPrice, &item.ProductDescription); err != nil {
			return err
		}
		drop.Items = append(drop.Items, item)
	}

	groupRows, err := s.db.Query(`
		SELECT group_id FROM drop_groups WHERE drop_id = $1 ORDER BY id ASC
	`, drop.ID)
	if err != nil {
		return fmt.Errorf("failed to fetch drop groups: %v", err)
	}
	defer groupRows.Close()

	drop.GroupIDs = nil
	for groupRows.Next() {
		var groupID string
		if err := groupRows.Scan(&groupID); err != nil {
			return err
		}
		drop.GroupIDs = append(drop.GroupIDs, groupID)
	}
	return nil
}

func (s *PostgresDropStore) Update(drop models.Drop) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		UPDATE drops
		SET name = $1, scheduled_date = $2, status = $3, sent_at = $4, whatsapp_message_id = $5, updated_at = $6
		WHERE id = $7
	`, drop.Name, drop.ScheduledDate, drop.Status, drop.SentAt, drop.WhatsAppMessageID, drop.UpdatedAt, drop.ID)
	if err != nil {
		return fmt.Errorf("failed to update drop: %v", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return models.NewNotFoundError(fmt.Sprintf("drop not found: %s", drop.ID))
	}

	// Associations are replaced wholesale: the entity already validated the
	// new lists.
	if _, err := tx.Exec(`DELETE FROM drop_products WHERE drop_id = $1`, drop.ID); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM drop_groups WHERE drop_id = $1`, drop.ID); err != nil {
		return err
	}
	if err := insertAssociations(tx, drop); err != nil {
		return err
	}

	return tx.Commit()
}

func insertAssociations(tx *sql.Tx, drop models.Drop) error {
	for _, item := range drop.Items {
		_, err := tx.Exec(`
			INSERT INTO drop_products (drop_id, product_id, sort_order) VALUES ($1, $2, $3)
		`, drop.ID, item.ProductID, item.SortOrder)
		if err != nil {
			if isUniqueViolation(err) {
				return models.NewConflictError(fmt.Sprintf("duplicate product in drop: %s", item.ProductID))
			}
			return fmt.Errorf("failed to insert drop product: %v", err)
		}
	}
	for _, groupID := range drop.GroupIDs {
		_, err := tx.Exec(`
			INSERT INTO drop_groups (drop_id, group_id) VALUES ($1, $2)
		`, drop.ID, groupID)
		if err != nil {
			if isUniqueViolation(err) {
				return models.NewConflictError(fmt.Sprintf("duplicate group in drop: %s", groupID))
			}
			return fmt.Errorf("failed to insert drop group: %v", err)
		}
	}
	return nil
}

func (s *PostgresDropStore) Delete(id string) error {
	res, err := s.db.Exec(`DELETE FROM drops WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete drop: %v", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return models.NewNotFoundError(fmt.Sprintf("drop not found: %s", id))
	}
	return nil
}

func (s *PostgresDropStore) List(filters models.DropFilters, page, limit int) ([]models.Drop, int, error) {
	where := []string{}
	args := []interface{}{}
	argIndex := 1

	if filters.Status != "" {
		where = append(where, fmt.Sprintf("status = $%d", argIndex))
		args = append(args, filters.Status)
		argIndex++
	}
	if filters.CreatedBy != "" {
		where = append(where, fmt.Sprintf("created_by = $%d", argIndex))
		args = append(args, filters.CreatedBy)
		argIndex++
	}
	if filters.ScheduledFrom != nil {
		where = append(where, fmt.Sprintf("scheduled_date >= $%d", argIndex))
		args = append(args, *filters.ScheduledFrom)
		argIndex++
	}
	if filters.ScheduledTo != nil {
		where = append(where, fmt.Sprintf("scheduled_date <= $%d", argIndex))
		args = append(args, *filters.ScheduledTo)
		argIndex++
	}
	if filters.Search != "" {
		where = append(where, fmt.Sprintf("name ILIKE $%d", argIndex))
		args = append(args, "%"+filters.Search+"%")
		argIndex++
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM drops"+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count drops: %v", err)
	}

	query := fmt.Sprintf(`
		SELECT id, COALESCE(name, ''), scheduled_date, status, sent_at, whatsapp_message_id, created_by, created_at, updated_at
		FROM drops%s
		ORDER BY scheduled_date DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, argIndex, argIndex+1)
	args = append(args, limit, (page-1)*limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch drops: %v", err)
	}
	defer rows.Close()

	drops, err := scanDrops(rows)
	if err != nil {
		return nil, 0, err
	}

	for i := range drops {
		if err := s.loadAssociations(&drops[i]); err != nil {
			return nil, 0, err
		}
	}
	return drops, total, nil
}

func (s *PostgresDropStore) FindByScheduledDateRange(from, to time.Time) ([]models.Drop, error) {
	rows, err := s.db.Query(`
		SELECT id, COALESCE(name, ''), scheduled_date, status, sent_at, whatsapp_message_id, created_by, created_at, updated_at
		FROM drops
		WHERE scheduled_date >= $1 AND scheduled_date <= $2
		ORDER BY scheduled_date ASC
	`, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch drops by date: %v", err)
	}
	defer rows.Close()

	drops, err := scanDrops(rows)
	if err != nil {
		return nil, err
	}
	for i := range drops {
		if err := s.loadAssociations(&drops[i]); err != nil {
			return nil, err
		}
	}
	return drops, nil
}

func (s *PostgresDropStore) FindOverdue(now time.Time) ([]models.Drop, error) {
	rows, err := s.db.Query(`
		SELECT id, COALESCE(name, ''), scheduled_date, status, sent_at, whatsapp_message_id, created_by, created_at, updated_at
		FROM drops
		WHERE status = $1 AND scheduled_date < $2
		ORDER BY scheduled_date ASC
	`, models.DropStatusScheduled, now)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch overdue drops: %v", err)
	}
	defer rows.Close()

	drops, err := scanDrops(rows)
	if err != nil {
		return nil, err
	}
	for i := range drops {
		if err := s.loadAssociations(&drops[i]); err != nil {
			return nil, err
		}
	}
	return drops, nil
}

func (s *PostgresDropStore) CountByStatus() (map[string]int, error) {
	rows, err := s.db.Query(`SELECT status, COUNT(*) FROM drops GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count drops by status: %v", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, nil
}

func (s *PostgresDropStore) CountUpcomingOverdue(now time.Time) (int, int, error) {
	var upcoming, overdue int
	err := s.db.QueryRow(`
		SELECT
			COUNT(CASE WHEN scheduled_date >= $2 THEN 1 END),
			COUNT(CASE WHEN scheduled_date < $2 THEN 1 END)
		FROM drops WHERE status = $1
	`, models.DropStatusScheduled, now).Scan(&upcoming, &overdue)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count scheduled drops: %v", err)
	}
	return upcoming, overdue, nil
}

func scanDrops(rows *sql.Rows) ([]models.Drop, error) {
	var drops []models.Drop
	for rows.Next() {
		var drop models.Drop
		if err := rows.Scan(&drop.ID, &drop.Name, &drop.ScheduledDate, &drop.Status, &drop.SentAt,
			&drop.WhatsAppMessageID, &drop.CreatedBy, &drop.CreatedAt, &drop.UpdatedAt); err != nil {
			return nil, err
		}
		drops = append(drops, drop)
	}
	return drops, rows.Err()
}

func isUniqueViolation(err error) bool {
	if pqErr, ok := err.(*pq.Error); ok {
		return pqErr.Code == "23505"
	}
	return false
}

// PostgresProductCatalog backs the catalog lookups the drop service needs.
type PostgresProductCatalog struct {
	db *sql.DB
}

func NewPostgresProductCatalog(db *sql.DB) *PostgresProductCatalog {
	return &PostgresProductCatalog{db: db}
}

func (c *PostgresProductCatalog) FindByID(id string) (models.Product, error) {
	var p models.Product
	err := c.db.QueryRow(`
		SELECT id, name, COALESCE(description, ''), price, currency, image_url, category_id, is_active, stock, COALESCE(created_by::text, ''), created_at, updated_at
		FROM products WHERE id = $1
	`, id).Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Currency, &p.ImageURL,
		&p.CategoryID, &p.IsActive, &p.Stock, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return models.Product{}, models.NewNotFoundError(fmt.Sprintf("product not found: %s", id))
	}
	if err != nil {
		return models.Product{}, fmt.Errorf("failed to fetch product: %v", err)
	}
	return p, nil
}

// PostgresGroupDirectory backs the recipient group lookups.
type PostgresGroupDirectory struct {
	db *sql.DB
}

func NewPostgresGroupDirectory(db *sql.DB) *PostgresGroupDirectory {
	return &PostgresGroupDirectory{db: db}
}

func (d *PostgresGroupDirectory) FindByID(id string) (models.WhatsAppGroup, error) {
	var g models.WhatsAppGroup
	err := d.db.QueryRow(`
		SELECT id, chat_id, name, description, member_count, is_active, last_synced_at, created_at, updated_at
		FROM whatsapp_groups WHERE id = $1
	`, id).Scan(&g.ID, &g.ChatID, &g.Name, &g.Description, &g.MemberCount, &g.IsActive,
		&g.LastSyncedAt, &g.CreatedAt, &g.UpdatedAt)
	if err == sql.ErrNoRows {
		return models.WhatsAppGroup{}, models.NewNotFoundError(fmt.Sprintf("group not found: %s", id))
	}
	if err != nil {
		return models.WhatsAppGroup{}, fmt.Errorf("failed to fetch group: %v", err)
	}
	return g, nil
}
