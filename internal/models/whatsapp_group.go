package models

import (
	"regexp"
	"time"
)

// WhatsApp group chat ids look like "1203630254@g.us".
var groupChatIDPattern = regexp.MustCompile(`^\d+@g\.us$`)

// WhatsAppGroup is a recipient group known to the messaging gateway.
type WhatsAppGroup struct {
	ID           string    `json:"id" db:"id"`
	ChatID       string    `json:"chat_id" db:"chat_id"`
	Name         string    `json:"name" db:"name"`
	Description  *string   `json:"description" db:"description"`
	MemberCount  int       `json:"member_count" db:"member_count"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	LastSyncedAt time.Time `json:"last_synced_at" db:"last_synced_at"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

func IsValidGroupChatID(chatID string) bool {
	return groupChatIDPattern.MatchString(chatID)
}

type UpdateWhatsAppGroupRequest struct {
	Name     *string `json:"name,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

type WhatsAppGroupListResponse struct {
	Groups []WhatsAppGroup `json:"groups"`
	Total  int             `json:"total"`
}
