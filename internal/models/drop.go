package models

import (
	"fmt"
	"time"
)

// Drop status state machine:
// DRAFT -> SCHEDULED -> SENT, with CANCELLED reachable from DRAFT or SCHEDULED.
// SENT and CANCELLED are terminal. These exact values are persisted and are
// part of the reporting contract, do not rename.
const (
	DropStatusDraft     = "DRAFT"
	DropStatusScheduled = "SCHEDULED"
	DropStatusSent      = "SENT"
	DropStatusCancelled = "CANCELLED"
)

// MinScheduleLeadTime is the minimum interval between now and a drop's
// scheduled date when creating or rescheduling.
const MinScheduleLeadTime = time.Hour

type DropItem struct {
	ProductID string `json:"product_id" db:"product_id"`
	SortOrder int    `json:"sort_order" db:"sort_order"`

	// Snapshot fields, populated when the aggregate is loaded for dispatch.
	ProductName        string  `json:"product_name,omitempty"`
	ProductPrice       float64 `json:"product_price,omitempty"`
	ProductDescription string  `json:"product_description,omitempty"`
}

// Drop is the scheduled broadcast unit. Transition methods never mutate the
// receiver: they return a rebuilt copy, so a failed validation leaves the
// original untouched.
type Drop struct {
	ID                string     `json:"id" db:"id"`
	Name              string     `json:"name" db:"name"`
	ScheduledDate     time.Time  `json:"scheduled_date" db:"scheduled_date"`
	Status            string     `json:"status" db:"status"`
	SentAt            *time.Time `json:"sent_at,omitempty" db:"sent_at"`
	WhatsAppMessageID *string    `json:"whatsapp_message_id,omitempty" db:"whatsapp_message_id"`
	CreatedBy         string     `json:"created_by" db:"created_by"`
	Items             []DropItem `json:"items"`
	GroupIDs          []string   `json:"group_ids"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at" db:"updated_at"`
}

func (d Drop) IsSent() bool {
	return d.Status == DropStatusSent
}

func (d Drop) IsCancelled() bool {
	return d.Status == DropStatusCancelled
}

// IsTerminal reports whether the drop reached a state from which no further
// transition or edit is permitted.
func (d Drop) IsTerminal() bool {
	return d.Status == DropStatusSent || d.Status == DropStatusCancelled
}

func (d Drop) CanBeEdited() bool {
	return d.Status == DropStatusDraft || d.Status == DropStatusScheduled
}

func (d Drop) CanBeSent() bool {
	return (d.Status == DropStatusDraft || d.Status == DropStatusScheduled) &&
		len(d.Items) > 0 && len(d.GroupIDs) > 0
}

// HasGroup reports whether the given group is bound to this drop.
func (d Drop) HasGroup(groupID string) bool {
	for _, id := range d.GroupIDs {
		if id == groupID {
			return true
		}
	}
	return false
}

func (d Drop) clone() Drop {
	out := d
	out.Items = append([]DropItem(nil), d.Items...)
	out.GroupIDs = append([]string(nil), d.GroupIDs...)
	if d.SentAt != nil {
		sentAt := *d.SentAt
		out.SentAt = &sentAt
	}
	if d.WhatsAppMessageID != nil {
		msgID := *d.WhatsAppMessageID
		out.WhatsAppMessageID = &msgID
	}
	return out
}

// Schedule promotes the drop to SCHEDULED. Allowed from DRAFT or SCHEDULED
// with at least one item and one group.
func (d Drop) Schedule() (Drop, error) {
	if d.IsTerminal() {
		return Drop{}, NewValidationError(fmt.Sprintf("drop is %s and can no longer be scheduled", d.Status))
	}
	if len(d.Items) == 0 {
		return Drop{}, NewValidationError("cannot schedule a drop without products")
	}
	if len(d.GroupIDs) == 0 {
		return Drop{}, NewValidationError("cannot schedule a drop without target groups")
	}
	out := d.clone()
	out.Status = DropStatusScheduled
	out.UpdatedAt = time.Now()
	return out, nil
}

// MarkAsSent promotes the drop to SENT exactly once and records the dispatch
// message id when the gateway returned one.
func (d Drop) MarkAsSent(whatsappMessageID string) (Drop, error) {
	if d.IsTerminal() {
		return Drop{}, NewValidationError(fmt.Sprintf("drop is %s and cannot be marked as sent", d.Status))
	}
	if len(d.Items) == 0 {
		return Drop{}, NewValidationError("cannot send a drop without products")
	}
	if len(d.GroupIDs) == 0 {
		return Drop{}, NewValidationError("cannot send a drop without target groups")
	}
	now := time.Now()
	out := d.clone()
	out.Status = DropStatusSent
	out.SentAt = &now
	if whatsappMessageID != "" {
		out.WhatsAppMessageID = &whatsappMessageID
	}
	out.UpdatedAt = now
	return out, nil
}

// Cancel moves the drop to CANCELLED from DRAFT or SCHEDULED.
func (d Drop) Cancel() (Drop, error) {
	if d.IsTerminal() {
		return Drop{}, NewValidationError(fmt.Sprintf("drop is %s and cannot be cancelled", d.Status))
	}
	out := d.clone()
	out.Status = DropStatusCancelled
	out.UpdatedAt = time.Now()
	return out, nil
}

// DropUpdate carries the fields an update may change. Nil means "leave as is".
type DropUpdate struct {
	Name          *string
	ScheduledDate *time.Time
	Status        *string
	Items         []DropItem
	GroupIDs      []string
}

// ApplyUpdate rebuilds the drop with the supplied fields after re-running the
// entity-level validation. Terminal drops reject every update.
func (d Drop) ApplyUpdate(upd DropUpdate) (Drop, error) {
	if !d.CanBeEdited() {
		return Drop{}, NewValidationError(fmt.Sprintf("drop is %s and can no longer be edited", d.Status))
	}

	out := d.clone()

	if upd.Name != nil {
		out.Name = *upd.Name
	}
	if upd.ScheduledDate != nil {
		if upd.ScheduledDate.Before(time.Now()) && !d.IsSent() {
			return Drop{}, NewValidationError("scheduled date cannot be in the past")
		}
		out.ScheduledDate = *upd.ScheduledDate
	}
	if upd.Status != nil {
		switch *upd.Status {
		case DropStatusDraft, DropStatusScheduled, DropStatusCancelled:
			out.Status = *upd.Status
		case DropStatusSent:
			// SENT carries sent_at and the gateway message id, only the send
			// flow may set it.
			return Drop{}, NewValidationError("a drop cannot be marked as sent through an update")
		default:
			return Drop{}, NewValidationError(fmt.Sprintf("invalid drop status: %s", *upd.Status))
		}
	}
	if upd.Items != nil {
		if len(upd.Items) == 0 {
			return Drop{}, NewValidationError("a drop must contain at least one product")
		}
		if err := ValidateDropItems(upd.Items); err != nil {
			return Drop{}, err
		}
		out.Items = append([]DropItem(nil), upd.Items...)
	}
	if upd.GroupIDs != nil {
		if len(upd.GroupIDs) == 0 {
			return Drop{}, NewValidationError("a drop must target at least one group")
		}
		if err := ValidateDropGroups(upd.GroupIDs); err != nil {
			return Drop{}, err
		}
		out.GroupIDs = append([]string(nil), upd.GroupIDs...)
	}

	out.UpdatedAt = time.Now()
	return out, nil
}

// ValidateDropItems rejects duplicate product references.
func ValidateDropItems(items []DropItem) error {
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		if seen[item.ProductID] {
			return NewValidationError(fmt.Sprintf("duplicate product in drop: %s", item.ProductID))
		}
		seen[item.ProductID] = true
	}
	return nil
}

// ValidateDropGroups rejects duplicate group references.
func ValidateDropGroups(groupIDs []string) error {
	seen := make(map[string]bool, len(groupIDs))
	for _, id := range groupIDs {
		if seen[id] {
			return NewValidationError(fmt.Sprintf("duplicate group in drop: %s", id))
		}
		seen[id] = true
	}
	return nil
}

// Request/response DTOs

type CreateDropRequest struct {
	Name          string   `json:"name"`
	ScheduledDate string   `json:"scheduled_date" binding:"required"`
	ProductIDs    []string `json:"product_ids" binding:"required"`
	GroupIDs      []string `json:"group_ids" binding:"required"`
}

type UpdateDropRequest struct {
	Name          *string  `json:"name,omitempty"`
	ScheduledDate *string  `json:"scheduled_date,omitempty"`
	Status        *string  `json:"status,omitempty"`
	ProductIDs    []string `json:"product_ids,omitempty"`
	GroupIDs      []string `json:"group_ids,omitempty"`
}

type DropFilters struct {
	Status        string
	CreatedBy     string
	ScheduledFrom *time.Time
	ScheduledTo   *time.Time
	Search        string
}

type DropListResponse struct {
	Drops      []Drop `json:"drops"`
	Total      int    `json:"total"`
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
	TotalPages int    `json:"total_pages"`
}

type DropAnalytics struct {
	Total     int `json:"total"`
	Draft     int `json:"draft"`
	Scheduled int `json:"scheduled"`
	Sent      int `json:"sent"`
	Cancelled int `json:"cancelled"`
	Upcoming  int `json:"upcoming"`
	Overdue   int `json:"overdue"`
}

// DispatchResult is the per-group outcome of one send attempt. It is
// ephemeral: returned to the caller, never persisted.
type DispatchResult struct {
	DropID    string `json:"drop_id"`
	GroupID   string `json:"group_id"`
	Success   bool   `json:"success"`
	MessageID string `json:"message_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

type DispatchReport struct {
	DropID         string           `json:"drop_id"`
	OverallSuccess bool             `json:"overall_success"`
	Results        []DispatchResult `json:"results"`
}
