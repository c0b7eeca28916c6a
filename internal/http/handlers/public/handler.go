package public

import (
	"github.com/domku/domku-api/internal/config"
	"github.com/domku/domku-api/internal/repository"
	"github.com/domku/domku-api/internal/service"
)

// Handler 公共接口处理器
type Handler struct {
	auth          *service.AuthService
	users         *service.UserService
	subdomains    *service.SubdomainService
	settings      *service.SettingService
	email         *service.EmailService
	notifications repository.NotificationRepository
	domains       repository.DomainRepository
	uploadCfg     config.UploadConfig
	subCfg        config.SubdomainConfig
}

// NewHandler 创建公共接口处理器
func NewHandler(
	auth *service.AuthService,
	users *service.UserService,
	subdomains *service.SubdomainService,
	settings *service.SettingService,
	email *service.EmailService,
	notifications repository.NotificationRepository,
	domains repository.DomainRepository,
	uploadCfg config.UploadConfig,
	subCfg config.SubdomainConfig,
) *Handler {
	return &Handler{
		auth:          auth,
		users:         users,
		subdomains:    subdomains,
		settings:      settings,
		email:         email,
		notifications: notifications,
		domains:       domains,
		uploadCfg:     uploadCfg,
		subCfg:        subCfg,
	}
}
