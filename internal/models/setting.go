package models

import "time"

// Setting is a key/value row backing the configuration wizard.
type Setting struct {
	Key       string    `json:"key" db:"key"`
	Value     string    `json:"value" db:"value"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Wizard keys.
const (
	SettingStoreName     = "store_name"
	SettingStoreCurrency = "store_currency"
	SettingWASession     = "whatsapp_session"
	SettingSetupDone     = "setup_completed"
)

type UpdateSettingsRequest struct {
	Settings map[string]string `json:"settings" binding:"required"`
}

type SetupStatusResponse struct {
	SetupCompleted  bool `json:"setup_completed"`
	HasStoreName    bool `json:"has_store_name"`
	HasActiveGroups bool `json:"has_active_groups"`
	HasProducts     bool `json:"has_products"`
	SessionReady    bool `json:"session_ready"`
}
