package admin

import (
	"errors"
	"math/rand"
	"net/http"
	"strconv"

	"github.com/domku/domku-api/internal/http/handlers/shared"
	"github.com/domku/domku-api/internal/http/response"
	"github.com/domku/domku-api/internal/repository"
	"github.com/domku/domku-api/internal/service"

	"github.com/gin-gonic/gin"
)

// Stats GET /api/admin/stats
func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.admin.GetStats()
	if err != nil {
		shared.RespondError(c, http.StatusInternalServerError, "Failed to load stats", err)
		return
	}
	response.Success(c, gin.H{
		"stats": stats,
		// 面板仪表的占位指标，与真实负载无关
		"server_load":  rand.Intn(60) + 10,
		"memory_usage": rand.Intn(40) + 30,
	})
}

// Users GET /api/admin/users
func (h *Handler) Users(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	users, total, err := h.admin.ListUsers(repository.UserListFilter{
		Keyword:  c.Query("keyword"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		shared.RespondError(c, http.StatusInternalServerError, "Failed to list users", err)
		return
	}
	response.Success(c, gin.H{
		"users": users,
		"total": total,
	})
}

// UpdateSettings POST /api/admin/settings/update
func (h *Handler) UpdateSettings(c *gin.Context) {
	var req struct {
		Settings map[string]string `json:"settings"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Settings) == 0 {
		response.BadRequest(c, "Invalid request body")
		return
	}

	for key, value := range req.Settings {
		if _, err := h.settings.Upsert(key, value); err != nil {
			if errors.Is(err, service.ErrIncompleteInput) {
				response.BadRequest(c, "Setting key is required")
				return
			}
			shared.RespondError(c, http.StatusInternalServerError, "Failed to update settings", err)
			return
		}
	}
	response.Success(c, gin.H{"message": "Settings updated"})
}

// Blacklist GET /api/admin/blacklist
func (h *Handler) Blacklist(c *gin.Context) {
	entries, err := h.admin.ListBlacklist()
	if err != nil {
		shared.RespondError(c, http.StatusInternalServerError, "Failed to list blacklist", err)
		return
	}
	response.Success(c, gin.H{"blacklist": entries})
}

// AddBlacklist POST /api/admin/blacklist
func (h *Handler) AddBlacklist(c *gin.Context) {
	var req struct {
		IP     string `json:"ip"`
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.admin.AddBlacklistEntry(req.IP, req.Reason); err != nil {
		if errors.Is(err, service.ErrIncompleteInput) {
			response.BadRequest(c, "IP address is required")
			return
		}
		shared.RespondError(c, http.StatusInternalServerError, "Failed to add blacklist entry", err)
		return
	}
	response.Success(c, gin.H{"message": "IP added to blacklist"})
}

// RemoveBlacklist DELETE /api/admin/blacklist/:id
func (h *Handler) RemoveBlacklist(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "Invalid blacklist id")
		return
	}
	if err := h.admin.RemoveBlacklistEntry(uint(id)); err != nil {
		shared.RespondError(c, http.StatusInternalServerError, "Failed to remove blacklist entry", err)
		return
	}
	response.Success(c, gin.H{"message": "IP removed from blacklist"})
}

// Notifications GET /api/admin/notifications
func (h *Handler) Notifications(c *gin.Context) {
	rows, err := h.admin.ListNotifications(0)
	if err != nil {
		shared.RespondError(c, http.StatusInternalServerError, "Failed to list notifications", err)
		return
	}
	response.Success(c, gin.H{"notifications": rows})
}

// CreateNotification POST /api/admin/notifications
func (h *Handler) CreateNotification(c *gin.Context) {
	var req struct {
		Title    string `json:"title"`
		Message  string `json:"message"`
		Type     string `json:"type"`
		ImageURL string `json:"image_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	row, err := h.admin.CreateNotification(req.Title, req.Message, req.Type, req.ImageURL)
	if err != nil {
		if errors.Is(err, service.ErrIncompleteInput) {
			response.BadRequest(c, "Title and message are required")
			return
		}
		shared.RespondError(c, http.StatusInternalServerError, "Failed to create notification", err)
		return
	}
	response.Success(c, gin.H{"notification": row})
}

// DeleteNotification DELETE /api/admin/notifications/:id
func (h *Handler) DeleteNotification(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "Invalid notification id")
		return
	}
	if err := h.admin.DeleteNotification(uint(id)); err != nil {
		shared.RespondError(c, http.StatusInternalServerError, "Failed to delete notification", err)
		return
	}
	response.Success(c, gin.H{"message": "Notification deleted"})
}

// GodAction POST /api/admin/god-action
func (h *Handler) GodAction(c *gin.Context) {
	var req struct {
		Action  string `json:"action"`
		Payload struct {
			UserID uint   `json:"userId"`
			Email  string `json:"email"`
		} `json:"payload"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.admin.GodAction(c.Request.Context(), req.Action, req.Payload.Email)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownGodAction):
			response.BadRequest(c, "Unknown action")
		case errors.Is(err, service.ErrIncompleteInput):
			response.BadRequest(c, "Target email is required")
		default:
			shared.RespondError(c, http.StatusInternalServerError, "Action failed", err)
		}
		return
	}
	response.Success(c, gin.H{"message": result})
}

// RegenerateAllKeys POST /api/system/regenerate-all-keys
func (h *Handler) RegenerateAllKeys(c *gin.Context) {
	count, err := h.admin.RegenerateAllKeys()
	if err != nil {
		shared.RespondError(c, http.StatusInternalServerError, "Failed to regenerate keys", err)
		return
	}
	response.Success(c, gin.H{
		"message": "All API keys regenerated",
		"count":   count,
	})
}
