package handlers

import (
	"net/http"
	"time"

	"github.com/pius-coder/dropIndrop-v1-sub000/internal/models"
	"github.com/pius-coder/dropIndrop-v1-sub000/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type DropHandler struct {
	drops    *services.DropService
	dispatch *services.DispatchService
}

func NewDropHandler(drops *services.DropService, dispatch *services.DispatchService) *DropHandler {
	return &DropHandler{drops: drops, dispatch: dispatch}
}

// respondServiceError maps the typed business errors to HTTP statuses.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case models.IsValidationError(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case models.IsNotFoundError(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case models.IsConflictError(err):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// CreateDrop membuat drop baru (admin only)
func (h *DropHandler) CreateDrop(c *gin.Context) {
	userIDInterface, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}
	userID, ok := userIDInterface.(uuid.UUID)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid user ID format"})
		return
	}

	var req models.CreateDropRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	scheduledDate, err := time.Parse(time.RFC3339, req.ScheduledDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid scheduled_date format. Use RFC3339 format"})
		return
	}

	drop, err := h.drops.Create(services.CreateDropInput{
		Name:          req.Name,
		ScheduledDate: scheduledDate,
		ProductIDs:    req.ProductIDs,
		GroupIDs:      req.GroupIDs,
		CreatedBy:     userID.String(),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Drop created successfully",
		"data":    drop,
	})
}

// GetDrops mendapatkan daftar drop dengan filter dan pagination
func (h *DropHandler) GetDrops(c *gin.Context) {
	page := parseIntQuery(c, "page", 1)
	limit := parseIntQuery(c, "limit", 20)

	filters := models.DropFilters{
		Status:    c.Query("status"),
		CreatedBy: c.Query("created_by"),
		Search:    c.Query("search"),
	}

	if from := c.Query("scheduled_from"); from != "" {
		parsed, err := time.Parse(time.RFC3339, from)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid scheduled_from format. Use RFC3339 format"})
			return
		}
		filters.ScheduledFrom = &parsed
	}
	if to := c.Query("scheduled_to"); to != "" {
		parsed, err := time.Parse(time.RFC3339, to)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid scheduled_to format. Use RFC3339 format"})
			return
		}
		filters.ScheduledTo = &parsed
	}

	result, err := h.drops.List(filters, page, limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Drops retrieved successfully",
		"data":    result,
	})
}

func (h *DropHandler) GetDrop(c *gin.Context) {
	drop, err := h.drops.Get(c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Drop retrieved successfully",
		"data":    drop,
	})
}

// UpdateDrop mengupdate drop (hanya DRAFT/SCHEDULED)
func (h *DropHandler) UpdateDrop(c *gin.Context) {
	var req models.UpdateDropRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	drop, err := h.drops.Update(c.Param("id"), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Drop updated successfully",
		"data":    drop,
	})
}

func (h *DropHandler) DeleteDrop(c *gin.Context) {
	if err := h.drops.Delete(c.Param("id")); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Drop deleted successfully",
	})
}

func (h *DropHandler) ScheduleDrop(c *gin.Context) {
	drop, err := h.drops.Schedule(c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Drop scheduled successfully",
		"data":    drop,
	})
}

func (h *DropHandler) CancelDrop(c *gin.Context) {
	drop, err := h.drops.Cancel(c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Drop cancelled successfully",
		"data":    drop,
	})
}

// SendDropToAllGroups mengirim drop ke semua group yang terikat.
// Drop hanya ditandai SENT jika semua pengiriman berhasil.
func (h *DropHandler) SendDropToAllGroups(c *gin.Context) {
	report, err := h.dispatch.SendDropToAllGroups(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if report.OverallSuccess {
		messageID := ""
		if len(report.Results) > 0 {
			messageID = report.Results[0].MessageID
		}
		if _, err := h.drops.MarkAsSent(report.DropID, messageID); err != nil {
			respondServiceError(c, err)
			return
		}
	}

	status := http.StatusOK
	message := "Drop sent to all groups"
	if !report.OverallSuccess {
		// Partial failure: return the full breakdown so the operator can
		// retry only the failed groups.
		status = http.StatusMultiStatus
		message = "Drop sent with failures, drop remains scheduled"
	}

	c.JSON(status, gin.H{
		"message": message,
		"data":    report,
	})
}

// SendDropToGroup mengirim drop ke satu group
func (h *DropHandler) SendDropToGroup(c *gin.Context) {
	result, err := h.dispatch.SendDropToGroup(c.Request.Context(), c.Param("id"), c.Param("group_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if !result.Success {
		c.JSON(http.StatusBadGateway, gin.H{
			"message": "Failed to send drop to group",
			"data":    result,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Drop sent to group",
		"data":    result,
	})
}

func (h *DropHandler) GetDropAnalytics(c *gin.Context) {
	analytics, err := h.drops.GetAnalytics()
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Analytics retrieved successfully",
		"data":    analytics,
	})
}

// GetOverdueDrops untuk scheduler eksternal
func (h *DropHandler) GetOverdueDrops(c *gin.Context) {
	drops, err := h.drops.GetOverdueDrops()
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Overdue drops retrieved successfully",
		"data":    drops,
	})
}

// GetDropsForDate mengembalikan drop non-terminal untuk satu hari kalender
func (h *DropHandler) GetDropsForDate(c *gin.Context) {
	dateStr := c.Query("date")
	if dateStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date query parameter is required (YYYY-MM-DD)"})
		return
	}

	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format. Use YYYY-MM-DD"})
		return
	}

	drops, err := h.drops.GetDropsForDate(date)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Drops retrieved successfully",
		"data":    drops,
	})
}
