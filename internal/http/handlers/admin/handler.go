package admin

import (
	"github.com/domku/domku-api/internal/service"
)

// Handler 管理面接口处理器
type Handler struct {
	admin    *service.AdminService
	settings *service.SettingService
}

// NewHandler 创建管理面处理器
func NewHandler(admin *service.AdminService, settings *service.SettingService) *Handler {
	return &Handler{
		admin:    admin,
		settings: settings,
	}
}
