package public

import (
	"net/http"
	"strconv"

	"github.com/domku/domku-api/internal/http/handlers/shared"
	"github.com/domku/domku-api/internal/http/response"
	"github.com/domku/domku-api/internal/models"
	"github.com/domku/domku-api/internal/service"

	"github.com/gin-gonic/gin"
)

// subdomainPayload 子域名对外字段
func subdomainPayload(row *models.Subdomain) gin.H {
	return gin.H{
		"id":            row.ID,
		"name":          row.Name,
		"target":        row.Target,
		"type":          row.Type,
		"parent_domain": row.ParentDomain,
		"created_at":    row.CreatedAt,
	}
}

// CreateSubdomain POST /api/subdomain
func (h *Handler) CreateSubdomain(c *gin.Context) {
	user := shared.CurrentUser(c)
	if user == nil {
		response.Unauthorized(c, "Invalid API key")
		return
	}

	// domain/recordType 为客户端契约字段，parent_domain/type 作为别名保留
	var req struct {
		Subdomain    string `json:"subdomain"`
		Domain       string `json:"domain"`
		ParentDomain string `json:"parent_domain"`
		RecordType   string `json:"recordType"`
		Type         string `json:"type"`
		Target       string `json:"target"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	parent := req.Domain
	if parent == "" {
		parent = req.ParentDomain
	}
	recordType := req.RecordType
	if recordType == "" {
		recordType = req.Type
	}

	row, err := h.subdomains.Create(c.Request.Context(), user, service.CreateInput{
		Label:        req.Subdomain,
		ParentDomain: parent,
		RecordType:   recordType,
		Target:       req.Target,
		IP:           c.ClientIP(),
	})
	if err != nil {
		respondMappedError(c, subdomainErrorRules, err, "Failed to create subdomain")
		return
	}
	response.Success(c, gin.H{
		"message":   "Subdomain created",
		"subdomain": subdomainPayload(row),
	})
}

// DeleteSubdomain DELETE /api/subdomain/:id
func (h *Handler) DeleteSubdomain(c *gin.Context) {
	user := shared.CurrentUser(c)
	if user == nil {
		response.Unauthorized(c, "Invalid API key")
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "Invalid subdomain id")
		return
	}

	if err := h.subdomains.Delete(c.Request.Context(), user, uint(id), c.ClientIP()); err != nil {
		respondMappedError(c, subdomainErrorRules, err, "Failed to delete subdomain")
		return
	}
	response.Success(c, gin.H{"message": "Subdomain deleted"})
}

// ListSubdomains GET /api/subdomain
func (h *Handler) ListSubdomains(c *gin.Context) {
	user := shared.CurrentUser(c)
	if user == nil {
		response.Unauthorized(c, "Invalid API key")
		return
	}

	rows, err := h.subdomains.ListByUser(user.ID)
	if err != nil {
		shared.RespondError(c, http.StatusInternalServerError, "Failed to list subdomains", err)
		return
	}
	items := make([]gin.H, 0, len(rows))
	for i := range rows {
		items = append(items, subdomainPayload(&rows[i]))
	}
	response.Success(c, gin.H{"subdomains": items})
}
