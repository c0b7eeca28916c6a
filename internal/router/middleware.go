package router

import (
	"net/http"
	"strings"
	"time"

	"github.com/domku/domku-api/internal/config"
	"github.com/domku/domku-api/internal/http/handlers/shared"
	"github.com/domku/domku-api/internal/http/response"
	"github.com/domku/domku-api/internal/logger"
	"github.com/domku/domku-api/internal/repository"
	"github.com/domku/domku-api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestID 为每个请求注入 request_id，响应头同步返回
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(shared.ContextKeyRequestID, requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// RequestLogger 记录请求概要日志
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Infow("http_request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"ip", c.ClientIP(),
			"latency_ms", time.Since(start).Milliseconds(),
			"request_id", c.GetString(shared.ContextKeyRequestID),
		)
	}
}

// CORS 按配置放行跨域请求
func CORS(cfg config.CORSConfig) gin.HandlerFunc {
	allowedOrigins := cfg.AllowedOrigins
	allowAll := len(allowedOrigins) == 0
	for _, origin := range allowedOrigins {
		if origin == "*" {
			allowAll = true
			break
		}
	}
	allowMethods := strings.Join(cfg.AllowedMethods, ", ")
	if allowMethods == "" {
		allowMethods = "GET, POST, PUT, DELETE, OPTIONS"
	}
	allowHeaders := strings.Join(cfg.AllowedHeaders, ", ")
	if allowHeaders == "" {
		allowHeaders = "Content-Type, Authorization, X-API-Key"
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			if allowAll {
				c.Header("Access-Control-Allow-Origin", "*")
			} else {
				for _, allowed := range allowedOrigins {
					if strings.EqualFold(allowed, origin) {
						c.Header("Access-Control-Allow-Origin", origin)
						c.Header("Vary", "Origin")
						break
					}
				}
			}
			c.Header("Access-Control-Allow-Methods", allowMethods)
			c.Header("Access-Control-Allow-Headers", allowHeaders)
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// BodySizeLimit 限制请求体大小
func BodySizeLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}

// MaintenanceGate 维护模式下拒绝写操作，管理接口不受影响
func MaintenanceGate(settings *service.SettingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodGet ||
			strings.HasPrefix(c.Request.URL.Path, "/api/admin") ||
			strings.HasPrefix(c.Request.URL.Path, "/api/system") {
			c.Next()
			return
		}
		if settings.MaintenanceMode() {
			response.ServiceUnavailable(c, "Service is under maintenance")
			c.Abort()
			return
		}
		c.Next()
	}
}

// IPBlacklistGate 按黑名单拒绝请求，enforce 关闭时仅记录
func IPBlacklistGate(blacklist repository.IPBlacklistRepository, enforce bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		entry, err := blacklist.GetByIP(ip)
		if err != nil {
			logger.Warnw("blacklist_lookup_failed", "ip", ip, "error", err)
			c.Next()
			return
		}
		if entry == nil {
			c.Next()
			return
		}
		if !enforce {
			logger.Warnw("blacklisted_ip_observed", "ip", ip, "reason", entry.Reason)
			c.Next()
			return
		}
		logger.Warnw("blacklisted_ip_rejected", "ip", ip, "reason", entry.Reason)
		response.Forbidden(c, "Access denied")
		c.Abort()
	}
}

// APIKeyAuth 校验 X-API-Key 并注入当前用户
func APIKeyAuth(users *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := strings.TrimSpace(c.GetHeader("X-API-Key"))
		user, err := users.GetByAPIKey(apiKey)
		if err != nil {
			response.Unauthorized(c, "Invalid API key")
			c.Abort()
			return
		}
		c.Set(shared.ContextKeyUser, user)
		c.Next()
	}
}

// SessionAuth 校验 Bearer 会话令牌并注入当前用户
func SessionAuth(auth *service.AuthService, users *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if token == "" || token == header {
			response.Unauthorized(c, "Missing session token")
			c.Abort()
			return
		}
		claims, err := auth.ParseSessionToken(token)
		if err != nil {
			response.Unauthorized(c, "Invalid session token")
			c.Abort()
			return
		}
		user, err := users.GetByID(claims.UserID)
		if err != nil {
			response.Unauthorized(c, "Invalid session token")
			c.Abort()
			return
		}
		c.Set(shared.ContextKeyUser, user)
		c.Set(shared.ContextKeyEmail, claims.Email)
		c.Next()
	}
}

// AdminGate 仅放行配置内的管理员邮箱，须在 SessionAuth 之后
func AdminGate(cfg config.AdminConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := shared.CurrentUser(c)
		if user == nil || !cfg.IsAdminEmail(user.Email) {
			logger.Warnw("admin_access_denied",
				"ip", c.ClientIP(),
				"path", c.Request.URL.Path,
			)
			response.Forbidden(c, "Admin access required")
			c.Abort()
			return
		}
		c.Next()
	}
}
