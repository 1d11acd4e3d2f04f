package handlers

import (
	"database/sql"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pius-coder/dropIndrop-v1-sub000/internal/models"
	"github.com/pius-coder/dropIndrop-v1-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

type WhatsAppGroupHandler struct {
	db       *sql.DB
	whatsapp *service.WhatsAppService
}

func NewWhatsAppGroupHandler(db *sql.DB, whatsapp *service.WhatsAppService) *WhatsAppGroupHandler {
	return &WhatsAppGroupHandler{db: db, whatsapp: whatsapp}
}

// GetGroups mendapatkan daftar group penerima
func (h *WhatsAppGroupHandler) GetGroups(c *gin.Context) {
	activeOnly := c.Query("active") == "true"

	query := `
		SELECT id, chat_id, name, description, member_count, is_active, last_synced_at, created_at, updated_at
		FROM whatsapp_groups
	`
	if activeOnly {
		query += " WHERE is_active = true"
	}
	query += " ORDER BY name ASC"

	rows, err := h.db.Query(query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch groups"})
		return
	}
	defer rows.Close()

	var groups []models.WhatsAppGroup
	for rows.Next() {
		var g models.WhatsAppGroup
		if err := rows.Scan(&g.ID, &g.ChatID, &g.Name, &g.Description, &g.MemberCount,
			&g.IsActive, &g.LastSyncedAt, &g.CreatedAt, &g.UpdatedAt); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan group"})
			return
		}
		groups = append(groups, g)
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Groups retrieved successfully",
		"data": models.WhatsAppGroupListResponse{
			Groups: groups,
			Total:  len(groups),
		},
	})
}

// SyncGroups menarik daftar group dari gateway dan melakukan upsert by chat_id
func (h *WhatsAppGroupHandler) SyncGroups(c *gin.Context) {
	gatewayGroups, err := h.whatsapp.GetGroups(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": fmt.Sprintf("Failed to fetch groups from gateway: %v", err)})
		return
	}

	now := time.Now()
	synced := 0
	skipped := 0

	for _, g := range gatewayGroups {
		if !models.IsValidGroupChatID(g.ID) {
			skipped++
			continue
		}

		_, err := h.db.Exec(`
			INSERT INTO whatsapp_groups (chat_id, name, description, member_count, last_synced_at, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $5, $5)
			ON CONFLICT (chat_id) DO UPDATE
			SET name = EXCLUDED.name, description = EXCLUDED.description,
			    member_count = EXCLUDED.member_count, last_synced_at = EXCLUDED.last_synced_at,
			    updated_at = EXCLUDED.updated_at
		`, g.ID, g.Name, g.Description, g.Participants, now)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upsert group"})
			return
		}
		synced++
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Groups synced successfully",
		"data":    gin.H{"synced": synced, "skipped": skipped},
	})
}

// UpdateGroup mengubah nama tampilan atau status aktif group
func (h *WhatsAppGroupHandler) UpdateGroup(c *gin.Context) {
	groupID := c.Param("id")

	var req models.UpdateWhatsAppGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	setParts := []string{}
	args := []interface{}{}
	argIndex := 1

	if req.Name != nil {
		setParts = append(setParts, fmt.Sprintf("name = $%d", argIndex))
		args = append(args, *req.Name)
		argIndex++
	}
	if req.IsActive != nil {
		setParts = append(setParts, fmt.Sprintf("is_active = $%d", argIndex))
		args = append(args, *req.IsActive)
		argIndex++
	}

	if len(setParts) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No fields to update"})
		return
	}

	setParts = append(setParts, fmt.Sprintf("updated_at = $%d", argIndex))
	args = append(args, time.Now())
	argIndex++

	args = append(args, groupID)
	query := fmt.Sprintf("UPDATE whatsapp_groups SET %s WHERE id = $%d", strings.Join(setParts, ", "), argIndex)

	res, err := h.db.Exec(query, args...)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update group"})
		return
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Group updated successfully",
	})
}

// GetSessionStatus memeriksa kesiapan sesi gateway
func (h *WhatsAppGroupHandler) GetSessionStatus(c *gin.Context) {
	if err := h.whatsapp.EnsureSessionReady(c.Request.Context()); err != nil {
		c.JSON(http.StatusOK, gin.H{
			"message": "Session is not ready",
			"data":    gin.H{"ready": false, "error": err.Error()},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Session is ready",
		"data":    gin.H{"ready": true},
	})
}
