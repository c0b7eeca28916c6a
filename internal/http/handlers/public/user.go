package public

import (
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"regexp"

	"github.com/domku/domku-api/internal/http/handlers/shared"
	"github.com/domku/domku-api/internal/http/response"
	"github.com/domku/domku-api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// 上传文件名只保留字母数字和点
var avatarFilenamePattern = regexp.MustCompile(`[^a-zA-Z0-9.]`)

// Me GET /api/user/me
func (h *Handler) Me(c *gin.Context) {
	user := shared.CurrentUser(c)
	if user == nil {
		response.Unauthorized(c, "Invalid API key")
		return
	}
	response.Success(c, gin.H{"user": userPayload(user)})
}

// UpdateProfile POST /api/user/update-profile（multipart，头像可选）
func (h *Handler) UpdateProfile(c *gin.Context) {
	user := shared.CurrentUser(c)
	if user == nil {
		response.Unauthorized(c, "Invalid API key")
		return
	}

	input := service.ProfileInput{
		Name:  c.PostForm("name"),
		Bio:   c.PostForm("bio"),
		Phone: c.PostForm("phone"),
	}

	if file, err := c.FormFile("avatar"); err == nil && file != nil {
		avatarURL, err := h.saveAvatar(c, file.Filename, file)
		if err != nil {
			shared.RespondError(c, http.StatusInternalServerError, "Failed to save avatar", err)
			return
		}
		if err := h.users.UpdateAvatar(user, avatarURL); err != nil {
			shared.RespondError(c, http.StatusInternalServerError, "Failed to update avatar", err)
			return
		}
	}

	if err := h.users.UpdateProfile(user, input, c.ClientIP()); err != nil {
		respondMappedError(c, userErrorRules, err, "Failed to update profile")
		return
	}
	response.Success(c, gin.H{
		"message": "Profile updated",
		"user":    userPayload(user),
	})
}

// ChangePassword POST /api/user/change-password
func (h *Handler) ChangePassword(c *gin.Context) {
	user := shared.CurrentUser(c)
	if user == nil {
		response.Unauthorized(c, "Invalid API key")
		return
	}

	var req struct {
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.users.ChangePassword(user, req.OldPassword, req.NewPassword, c.ClientIP()); err != nil {
		respondMappedError(c, userErrorRules, err, "Failed to change password")
		return
	}
	response.Success(c, gin.H{"message": "Password changed"})
}

// RegenerateAPIKey POST /api/user/regenerate-key
func (h *Handler) RegenerateAPIKey(c *gin.Context) {
	user := shared.CurrentUser(c)
	if user == nil {
		response.Unauthorized(c, "Invalid API key")
		return
	}

	key, err := h.users.RegenerateAPIKey(user, c.ClientIP())
	if err != nil {
		shared.RespondError(c, http.StatusInternalServerError, "Failed to regenerate key", err)
		return
	}
	response.Success(c, gin.H{
		"message": "API key regenerated",
		"api_key": key,
	})
}

// ActivityLogs GET /api/user/activity
func (h *Handler) ActivityLogs(c *gin.Context) {
	user := shared.CurrentUser(c)
	if user == nil {
		response.Unauthorized(c, "Invalid API key")
		return
	}

	rows, err := h.users.ActivityLogs(user.ID, 0)
	if err != nil {
		shared.RespondError(c, http.StatusInternalServerError, "Failed to load activity", err)
		return
	}
	response.Success(c, gin.H{"logs": rows})
}

// DeleteAccount POST /api/user/delete-account
func (h *Handler) DeleteAccount(c *gin.Context) {
	user := shared.CurrentUser(c)
	if user == nil {
		response.Unauthorized(c, "Invalid API key")
		return
	}

	var req struct {
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.users.DeleteAccount(c.Request.Context(), user, req.Password); err != nil {
		respondMappedError(c, userErrorRules, err, "Failed to delete account")
		return
	}
	response.Success(c, gin.H{"message": "Account deleted"})
}

// saveAvatar 保存头像文件，文件名加 uuid 前缀并过滤特殊字符
func (h *Handler) saveAvatar(c *gin.Context, originalName string, file *multipart.FileHeader) (string, error) {
	dir := h.uploadCfg.Dir
	if dir == "" {
		dir = "uploads"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	safeName := avatarFilenamePattern.ReplaceAllString(originalName, "")
	if safeName == "" {
		safeName = "avatar"
	}
	filename := uuid.New().String() + "_" + safeName
	if err := c.SaveUploadedFile(file, filepath.Join(dir, filename)); err != nil {
		return "", err
	}
	return "/uploads/" + filename, nil
}
