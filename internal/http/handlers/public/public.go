package public

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/domku/domku-api/internal/constants"
	"github.com/domku/domku-api/internal/http/handlers/shared"
	"github.com/domku/domku-api/internal/http/response"

	"github.com/gin-gonic/gin"
)

var lookupClient = &http.Client{Timeout: 10 * time.Second}

// Status GET /api
func (h *Handler) Status(c *gin.Context) {
	response.Success(c, gin.H{
		"name":   "Domku API",
		"status": "ok",
		"time":   time.Now().UTC(),
	})
}

// Config GET /api/config：前端启动所需的公开配置
func (h *Handler) Config(c *gin.Context) {
	maintenance := h.settings.MaintenanceMode()
	siteName, err := h.settings.Get(constants.SettingKeySiteName)
	if err != nil {
		shared.RespondError(c, http.StatusInternalServerError, "Failed to load config", err)
		return
	}
	announce, err := h.settings.Get(constants.SettingKeySiteAnnounce)
	if err != nil {
		shared.RespondError(c, http.StatusInternalServerError, "Failed to load config", err)
		return
	}

	domains, err := h.domains.ListActive()
	if err != nil {
		shared.RespondError(c, http.StatusInternalServerError, "Failed to load config", err)
		return
	}
	names := make([]string, 0, len(domains))
	for _, d := range domains {
		names = append(names, d.Domain)
	}

	response.Success(c, gin.H{
		"maintenance_mode": maintenance,
		"site_name":        siteName,
		"announcement":     announce,
		"domains":          names,
		"default_parent":   h.subCfg.DefaultParent,
		"max_per_user":     h.subCfg.MaxPerUser,
	})
}

// Notifications GET /api/notifications：面向用户的系统广播
func (h *Handler) Notifications(c *gin.Context) {
	rows, err := h.notifications.List(0)
	if err != nil {
		shared.RespondError(c, http.StatusInternalServerError, "Failed to load notifications", err)
		return
	}
	response.Success(c, gin.H{"notifications": rows})
}

// LookupIP GET /api/lookup-ip：代理 ip-api.com 的地理信息查询
func (h *Handler) LookupIP(c *gin.Context) {
	ip := c.Query("ip")
	if ip == "" {
		ip = c.ClientIP()
	}

	resp, err := lookupClient.Get("http://ip-api.com/json/" + url.PathEscape(ip))
	if err != nil {
		shared.RespondError(c, http.StatusBadGateway, "IP lookup failed", err)
		return
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		shared.RespondError(c, http.StatusBadGateway, "IP lookup failed", err)
		return
	}
	var result map[string]interface{}
	if err := json.Unmarshal(body, &result); err != nil {
		shared.RespondError(c, http.StatusBadGateway, "IP lookup failed", err)
		return
	}
	response.Success(c, gin.H{"result": result})
}
