package provider

import (
	"github.com/domku/domku-api/internal/cache"
	"github.com/domku/domku-api/internal/config"
	"github.com/domku/domku-api/internal/logger"
	"github.com/domku/domku-api/internal/models"
	"github.com/domku/domku-api/internal/queue"
	"github.com/domku/domku-api/internal/repository"
	"github.com/domku/domku-api/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	UserRepo         repository.UserRepository
	PendingRepo      repository.PendingRegistrationRepository
	AuthTokenRepo    repository.AuthTokenRepository
	VerifyCodeRepo   repository.VerificationCodeRepository
	DomainRepo       repository.DomainRepository
	SubdomainRepo    repository.SubdomainRepository
	ActivityLogRepo  repository.ActivityLogRepository
	BannedEmailRepo  repository.BannedEmailRepository
	IPBlacklistRepo  repository.IPBlacklistRepository
	NotificationRepo repository.NotificationRepository
	SettingRepo      repository.SettingRepository

	// Services
	EmailService     *service.EmailService
	AuthService      *service.AuthService
	SubdomainService *service.SubdomainService
	UserService      *service.UserService
	SettingService   *service.SettingService
	AdminService     *service.AdminService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	c.initRepositories()
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.UserRepo = repository.NewUserRepository(db)
	c.PendingRepo = repository.NewPendingRegistrationRepository(db)
	c.AuthTokenRepo = repository.NewAuthTokenRepository(db)
	c.VerifyCodeRepo = repository.NewVerificationCodeRepository(db)
	c.DomainRepo = repository.NewDomainRepository(db)
	c.SubdomainRepo = repository.NewSubdomainRepository(db)
	c.ActivityLogRepo = repository.NewActivityLogRepository(db)
	c.BannedEmailRepo = repository.NewBannedEmailRepository(db)
	c.IPBlacklistRepo = repository.NewIPBlacklistRepository(db)
	c.NotificationRepo = repository.NewNotificationRepository(db)
	c.SettingRepo = repository.NewSettingRepository(db)
}

func (c *Container) initServices() {
	c.SettingService = service.NewSettingService(c.SettingRepo)
	c.EmailService = service.NewEmailService(&c.Config.Email)
	c.SubdomainService = service.NewSubdomainService(
		c.SubdomainRepo,
		c.DomainRepo,
		c.ActivityLogRepo,
		c.QueueClient,
		c.Config.DNS,
		c.Config.Subdomain,
	)
	c.UserService = service.NewUserService(
		c.UserRepo,
		c.AuthTokenRepo,
		c.PendingRepo,
		c.VerifyCodeRepo,
		c.ActivityLogRepo,
		c.SubdomainService,
	)
	c.AuthService = service.NewAuthService(
		c.UserRepo,
		c.PendingRepo,
		c.AuthTokenRepo,
		c.VerifyCodeRepo,
		c.BannedEmailRepo,
		c.ActivityLogRepo,
		c.EmailService,
		c.Config.JWT,
	)
	c.AdminService = service.NewAdminService(
		c.UserRepo,
		c.SubdomainRepo,
		c.ActivityLogRepo,
		c.BannedEmailRepo,
		c.IPBlacklistRepo,
		c.NotificationRepo,
		c.SettingService,
		c.UserService,
		c.QueueClient,
	)
}
