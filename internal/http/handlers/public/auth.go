package public

import (
	"github.com/domku/domku-api/internal/http/response"
	"github.com/domku/domku-api/internal/models"
	"github.com/domku/domku-api/internal/service"

	"github.com/gin-gonic/gin"
)

// userPayload 用户对外字段
func userPayload(user *models.User) gin.H {
	return gin.H{
		"id":         user.ID,
		"name":       user.Name,
		"email":      user.Email,
		"bio":        user.Bio,
		"phone":      user.Phone,
		"avatar_url": user.AvatarURL,
		"api_key":    user.APIKey,
		"created_at": user.CreatedAt,
	}
}

// Register POST /api/auth/register
func (h *Handler) Register(c *gin.Context) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	err := h.auth.Register(service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Origin:   requestOrigin(c),
	})
	if err != nil {
		respondMappedError(c, authErrorRules, err, "Registration failed")
		return
	}
	response.Success(c, gin.H{"message": "Verification email sent"})
}

// VerifyEmail POST /api/auth/verify-email
func (h *Handler) VerifyEmail(c *gin.Context) {
	var req struct {
		Token string `json:"token"`
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.auth.VerifyEmail(req.Token, req.Email)
	if err != nil {
		respondMappedError(c, authErrorRules, err, "Verification failed")
		return
	}
	response.Success(c, gin.H{
		"message": "Email verified",
		"user":    userPayload(user),
	})
}

// LoginCheck POST /api/auth/login-check
func (h *Handler) LoginCheck(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.auth.LoginCheck(req.Email, req.Password); err != nil {
		respondMappedError(c, authErrorRules, err, "Login failed")
		return
	}
	response.Success(c, gin.H{"message": "OTP sent to your email"})
}

// VerifyOTP POST /api/auth/verify-otp
func (h *Handler) VerifyOTP(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
		Code  string `json:"code"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	user, sessionToken, err := h.auth.VerifyOTP(req.Email, req.Code, c.ClientIP())
	if err != nil {
		respondMappedError(c, authErrorRules, err, "Login failed")
		return
	}
	response.Success(c, gin.H{
		"message": "Login successful",
		"token":   sessionToken,
		"user":    userPayload(user),
	})
}

// ForgotPassword POST /api/auth/forgot-password
func (h *Handler) ForgotPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.auth.ForgotPassword(req.Email, requestOrigin(c)); err != nil {
		respondMappedError(c, authErrorRules, err, "Request failed")
		return
	}
	response.Success(c, gin.H{"message": "Password reset email sent"})
}

// ResetPassword POST /api/auth/reset-password
func (h *Handler) ResetPassword(c *gin.Context) {
	var req struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.auth.ResetPassword(req.Token, req.Password); err != nil {
		respondMappedError(c, authErrorRules, err, "Reset failed")
		return
	}
	response.Success(c, gin.H{"message": "Password has been reset"})
}

// requestOrigin 取请求来源，用于拼接邮件里的回跳链接
func requestOrigin(c *gin.Context) string {
	if origin := c.GetHeader("Origin"); origin != "" {
		return origin
	}
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host
}
