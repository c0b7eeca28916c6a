package main

import (
	"flag"
	"fmt"
	"strings"

	"github.com/domku/domku-api/internal/app"
	"github.com/domku/domku-api/internal/config"
	"github.com/domku/domku-api/internal/constants"
	"github.com/domku/domku-api/internal/logger"
	"github.com/domku/domku-api/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	ansiReset = "\033[0m"
	ansiBold  = "\033[1m"
	ansiDim   = "\033[2m"
	ansiGreen = "\033[32m"
	ansiBlue  = "\033[34m"
	ansiCyan  = "\033[36m"
)

func main() {
	printStartupBanner()

	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()

	if cfg.Server.Mode == "release" {
		if isWeakSecret(cfg.JWT.SecretKey) {
			stdLog.Fatalf("JWT secret 过弱或仍为默认值，请在生产环境中配置强随机密钥")
		}
	} else if isWeakSecret(cfg.JWT.SecretKey) {
		stdLog.Printf("警告: JWT secret 过弱或仍为默认值，建议在生产环境中更换")
	}

	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("数据库初始化失败: %v", err)
	}

	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("数据库迁移失败: %v", err)
	}

	// 初始化默认父域名与系统设置
	if err := models.InitDefaultDomain(cfg.Subdomain.DefaultParent, cfg.DNS.DefaultZoneID, cfg.DNS.DefaultAPIToken); err != nil {
		stdLog.Printf("警告: 初始化默认父域名失败: %v", err)
	}
	if err := models.InitDefaultSettings(map[string]string{
		constants.SettingKeyMaintenanceMode: "false",
		constants.SettingKeySiteName:        "Domku",
		constants.SettingKeySiteAnnounce:    "",
	}); err != nil {
		stdLog.Printf("警告: 初始化默认设置失败: %v", err)
	}

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	var mode string
	flag.StringVar(&mode, "mode", app.ModeAll, "启动模式: all (默认), api, worker")
	flag.Parse()

	if err := app.Run(app.Options{
		Config: cfg,
		Logger: logger.S(),
		Mode:   mode,
	}); err != nil {
		stdLog.Fatalf("服务运行失败: %v", err)
	}
}

func printStartupBanner() {
	fmt.Println(ansiCyan + "██████╗  ██████╗ ███╗   ███╗██╗  ██╗██╗   ██╗" + ansiReset)
	fmt.Println(ansiCyan + "██╔══██╗██╔═══██╗████╗ ████║██║ ██╔╝██║   ██║" + ansiReset)
	fmt.Println(ansiCyan + "██║  ██║██║   ██║██╔████╔██║█████╔╝ ██║   ██║" + ansiReset)
	fmt.Println(ansiCyan + "██║  ██║██║   ██║██║╚██╔╝██║██╔═██╗ ██║   ██║" + ansiReset)
	fmt.Println(ansiCyan + "██████╔╝╚██████╔╝██║ ╚═╝ ██║██║  ██╗╚██████╔╝" + ansiReset)
	fmt.Println(ansiCyan + "╚═════╝  ╚═════╝ ╚═╝     ╚═╝╚═╝  ╚═╝ ╚═════╝ " + ansiReset)
	fmt.Println(ansiGreen + ansiBold + "Domku API - subdomain self-service" + ansiReset)
	fmt.Println(ansiBlue + "• https://github.com/domku/domku-api" + ansiReset)
	fmt.Println(ansiDim + "--------------------------------------------------------------" + ansiReset)
}

func isWeakSecret(secret string) bool {
	if len(secret) < 32 {
		return true
	}
	normalized := strings.ToLower(secret)
	if strings.Contains(normalized, "change-me") ||
		strings.Contains(normalized, "change-in-production") ||
		strings.Contains(normalized, "your-secret-key") {
		return true
	}
	return false
}
