package router

import (
	"github.com/domku/domku-api/internal/config"
	adminhandlers "github.com/domku/domku-api/internal/http/handlers/admin"
	publichandlers "github.com/domku/domku-api/internal/http/handlers/public"
	"github.com/domku/domku-api/internal/logger"
	"github.com/domku/domku-api/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	if logger.L == nil {
		logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	publicHandler := publichandlers.NewHandler(
		c.AuthService,
		c.UserService,
		c.SubdomainService,
		c.SettingService,
		c.EmailService,
		c.NotificationRepo,
		c.DomainRepo,
		cfg.Upload,
		cfg.Subdomain,
	)
	adminHandler := adminhandlers.NewHandler(c.AdminService, c.SettingService)

	// 全局中间件
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(RequestLogger())
	r.Use(CORS(cfg.CORS))
	r.Use(BodySizeLimit(cfg.Security.MaxBodyBytes))
	r.Use(IPBlacklistGate(c.IPBlacklistRepo, cfg.Security.IPBlacklist.Enforce))
	r.Use(RateLimit("general", cfg.Security.RateLimit))

	// 上传的头像与通知图片
	uploadDir := cfg.Upload.Dir
	if uploadDir == "" {
		uploadDir = "uploads"
	}
	r.Static("/uploads", uploadDir)

	api := r.Group("/api")
	api.Use(MaintenanceGate(c.SettingService))
	{
		api.GET("", publicHandler.Status)
		api.GET("/config", publicHandler.Config)
		api.GET("/notifications", publicHandler.Notifications)
		api.GET("/lookup-ip", publicHandler.LookupIP)
		api.POST("/contact/send", publicHandler.ContactSend)

		// 认证接口，独立的更紧限流窗口
		auth := api.Group("/auth")
		auth.Use(RateLimit("auth", cfg.Security.AuthRateLimit))
		{
			auth.POST("/register", publicHandler.Register)
			auth.POST("/verify-email", publicHandler.VerifyEmail)
			auth.POST("/login-check", publicHandler.LoginCheck)
			auth.POST("/verify-otp", publicHandler.VerifyOTP)
			auth.POST("/forgot-password", publicHandler.ForgotPassword)
			auth.POST("/reset-password", publicHandler.ResetPassword)
		}

		// 用户接口，X-API-Key 鉴权
		user := api.Group("/user")
		user.Use(APIKeyAuth(c.UserService))
		{
			user.GET("/me", publicHandler.Me)
			user.POST("/update-profile", publicHandler.UpdateProfile)
			user.POST("/change-password", publicHandler.ChangePassword)
			user.POST("/regenerate-key", publicHandler.RegenerateAPIKey)
			user.GET("/activity", publicHandler.ActivityLogs)
			user.DELETE("/delete-account", publicHandler.DeleteAccount)
			// 兼容不方便带 body 发 DELETE 的客户端
			user.POST("/delete-account", publicHandler.DeleteAccount)
		}

		// 子域名接口，X-API-Key 鉴权
		subdomain := api.Group("/subdomain")
		subdomain.Use(APIKeyAuth(c.UserService))
		{
			subdomain.GET("", publicHandler.ListSubdomains)
			subdomain.POST("", publicHandler.CreateSubdomain)
			subdomain.DELETE("/:id", publicHandler.DeleteSubdomain)
		}

		// 管理接口，会话令牌 + 管理员邮箱白名单
		admin := api.Group("/admin")
		admin.Use(SessionAuth(c.AuthService, c.UserService), AdminGate(cfg.Admin))
		{
			admin.GET("/stats", adminHandler.Stats)
			admin.GET("/users", adminHandler.Users)
			admin.POST("/settings/update", adminHandler.UpdateSettings)
			admin.GET("/blacklist", adminHandler.Blacklist)
			admin.POST("/blacklist", adminHandler.AddBlacklist)
			admin.DELETE("/blacklist/:id", adminHandler.RemoveBlacklist)
			admin.GET("/notifications", adminHandler.Notifications)
			admin.POST("/notifications", adminHandler.CreateNotification)
			admin.DELETE("/notifications/:id", adminHandler.DeleteNotification)
			admin.POST("/god-action", adminHandler.GodAction)
		}

		system := api.Group("/system")
		system.Use(SessionAuth(c.AuthService, c.UserService), AdminGate(cfg.Admin))
		{
			system.POST("/regenerate-all-keys", adminHandler.RegenerateAllKeys)
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
