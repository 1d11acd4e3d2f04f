package handlers

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/pius-coder/dropIndrop-v1-sub000/internal/models"
	"github.com/pius-coder/dropIndrop-v1-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

type SettingsHandler struct {
	db       *sql.DB
	whatsapp *service.WhatsAppService
}

func NewSettingsHandler(db *sql.DB, whatsapp *service.WhatsAppService) *SettingsHandler {
	return &SettingsHandler{db: db, whatsapp: whatsapp}
}

// GetSettings mengambil semua setting toko
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	rows, err := h.db.Query(`SELECT key, value, updated_at FROM settings ORDER BY key`)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch settings"})
		return
	}
	defer rows.Close()

	settings := map[string]string{}
	for rows.Next() {
		var s models.Setting
		if err := rows.Scan(&s.Key, &s.Value, &s.UpdatedAt); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan setting"})
			return
		}
		settings[s.Key] = s.Value
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Settings retrieved successfully",
		"data":    settings,
	})
}

// UpdateSettings melakukan upsert key/value setting
func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	var req models.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.Settings) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No settings provided"})
		return
	}

	tx, err := h.db.Begin()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
		return
	}
	defer tx.Rollback()

	now := time.Now()
	for key, value := range req.Settings {
		_, err := tx.Exec(`
			INSERT INTO settings (key, value, updated_at) VALUES ($1, $2, $3)
			ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
		`, key, value, now)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update settings"})
			return
		}
	}

	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit settings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Settings updated successfully"})
}

// GetSetupStatus memeriksa kelengkapan wizard awal toko
func (h *SettingsHandler) GetSetupStatus(c *gin.Context) {
	var status models.SetupStatusResponse

	var storeName string
	err := h.db.QueryRow(`SELECT value FROM settings WHERE key = $1`, models.SettingStoreName).Scan(&storeName)
	if err != nil && err != sql.ErrNoRows {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch settings"})
		return
	}
	status.HasStoreName = storeName != ""

	var activeGroups int
	if err := h.db.QueryRow(`SELECT COUNT(*) FROM whatsapp_groups WHERE is_active = true`).Scan(&activeGroups); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count groups"})
		return
	}
	status.HasActiveGroups = activeGroups > 0

	var products int
	if err := h.db.QueryRow(`SELECT COUNT(*) FROM products WHERE is_active = true`).Scan(&products); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count products"})
		return
	}
	status.HasProducts = products > 0

	// Sesi WhatsApp dicek langsung ke gateway
	if h.whatsapp != nil {
		status.SessionReady = h.whatsapp.EnsureSessionReady(c.Request.Context()) == nil
	}

	status.SetupCompleted = status.HasStoreName && status.HasActiveGroups && status.HasProducts && status.SessionReady

	c.JSON(http.StatusOK, gin.H{
		"message": "Setup status retrieved successfully",
		"data":    status,
	})
}
