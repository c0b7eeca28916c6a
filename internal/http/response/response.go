package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Success 成功响应：{success:true} 合并业务字段，HTTP 200
func Success(c *gin.Context, data gin.H) {
	payload := gin.H{"success": true}
	for key, value := range data {
		payload[key] = value
	}
	c.JSON(http.StatusOK, payload)
}

// Error 错误响应：{success:false, error}，HTTP 状态码即错误语义
func Error(c *gin.Context, status int, message string) {
	payload := gin.H{
		"success": false,
		"error":   message,
	}
	if requestID := requestIDOf(c); requestID != "" {
		payload["request_id"] = requestID
	}
	c.JSON(status, payload)
}

// BadRequest 400 响应
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

// Unauthorized 401 响应
func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, message)
}

// Forbidden 403 响应
func Forbidden(c *gin.Context, message string) {
	Error(c, http.StatusForbidden, message)
}

// NotFound 404 响应
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

// Internal 500 响应
func Internal(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, message)
}

// ServiceUnavailable 503 响应（维护模式）
func ServiceUnavailable(c *gin.Context, message string) {
	Error(c, http.StatusServiceUnavailable, message)
}

func requestIDOf(c *gin.Context) string {
	if c == nil {
		return ""
	}
	if value, ok := c.Get("request_id"); ok {
		if id, ok := value.(string); ok {
			return id
		}
	}
	return ""
}
