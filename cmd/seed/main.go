package main

import (
	"github.com/domku/domku-api/internal/config"
	"github.com/domku/domku-api/internal/constants"
	"github.com/domku/domku-api/internal/logger"
	"github.com/domku/domku-api/internal/models"
	"github.com/domku/domku-api/internal/service"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 父域名
	if err := models.InitDefaultDomain(cfg.Subdomain.DefaultParent, cfg.DNS.DefaultZoneID, cfg.DNS.DefaultAPIToken); err != nil {
		stdLog.Printf("Failed to seed default domain: %v", err)
	} else {
		stdLog.Printf("Seeded default domain: %s", cfg.Subdomain.DefaultParent)
	}

	// 系统设置
	if err := models.InitDefaultSettings(map[string]string{
		constants.SettingKeyMaintenanceMode: "false",
		constants.SettingKeySiteName:        "Domku",
		constants.SettingKeySiteAnnounce:    "",
	}); err != nil {
		stdLog.Printf("Failed to seed settings: %v", err)
	}

	// 演示账号
	demoEmail := "demo@domku.my.id"
	var existing models.User
	if err := models.DB.Where("email = ?", demoEmail).First(&existing).Error; err == nil {
		stdLog.Printf("Demo user already exists: %s", demoEmail)
	} else {
		hash, err := bcrypt.GenerateFromPassword([]byte("demo12345"), bcrypt.DefaultCost)
		if err != nil {
			stdLog.Fatalf("Failed to hash demo password: %v", err)
		}
		apiKey, err := service.GenerateCompactKey()
		if err != nil {
			stdLog.Fatalf("Failed to generate demo api key: %v", err)
		}
		user := models.User{
			Email:        demoEmail,
			Name:         "Demo",
			PasswordHash: string(hash),
			APIKey:       apiKey,
		}
		if err := models.DB.Create(&user).Error; err != nil {
			stdLog.Printf("Failed to create demo user: %v", err)
		} else {
			stdLog.Printf("Created demo user %s (api key: %s)", demoEmail, apiKey)
		}
	}

	// 欢迎公告
	var notif models.SystemNotification
	if err := models.DB.Where("title = ?", "Welcome to Domku").First(&notif).Error; err != nil {
		if err := models.DB.Create(&models.SystemNotification{
			Title:   "Welcome to Domku",
			Message: "Register a subdomain and point it anywhere you like.",
			Type:    constants.NotificationTypeInfo,
		}).Error; err != nil {
			stdLog.Printf("Failed to create welcome notification: %v", err)
		} else {
			stdLog.Printf("Created welcome notification")
		}
	}

	stdLog.Printf("Seed finished")
}
