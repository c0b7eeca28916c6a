package shared

import (
	"github.com/domku/domku-api/internal/models"

	"github.com/gin-gonic/gin"
)

// gin context 键常量
const (
	ContextKeyRequestID = "request_id"
	ContextKeyUser      = "current_user"
	ContextKeyEmail     = "session_email"
)

// CurrentUser 获取中间件注入的当前用户
func CurrentUser(c *gin.Context) *models.User {
	if value, ok := c.Get(ContextKeyUser); ok {
		if user, ok := value.(*models.User); ok {
			return user
		}
	}
	return nil
}

// SessionEmail 获取会话令牌中的邮箱
func SessionEmail(c *gin.Context) string {
	if value, ok := c.Get(ContextKeyEmail); ok {
		if email, ok := value.(string); ok {
			return email
		}
	}
	return ""
}
