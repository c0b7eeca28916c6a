package service

import (
	"context"

	"github.com/domku/domku-api/internal/constants"
	"github.com/domku/domku-api/internal/logger"
	"github.com/domku/domku-api/internal/models"
	"github.com/domku/domku-api/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// UserService 用户资料与账号生命周期服务
type UserService struct {
	users      repository.UserRepository
	tokens     repository.AuthTokenRepository
	pending    repository.PendingRegistrationRepository
	codes      repository.VerificationCodeRepository
	logs       repository.ActivityLogRepository
	subdomains *SubdomainService
}

// NewUserService 创建用户服务
func NewUserService(
	users repository.UserRepository,
	tokens repository.AuthTokenRepository,
	pending repository.PendingRegistrationRepository,
	codes repository.VerificationCodeRepository,
	logs repository.ActivityLogRepository,
	subdomains *SubdomainService,
) *UserService {
	return &UserService{
		users:      users,
		tokens:     tokens,
		pending:    pending,
		codes:      codes,
		logs:       logs,
		subdomains: subdomains,
	}
}

// GetByAPIKey 根据 API Key 获取用户
func (s *UserService) GetByAPIKey(apiKey string) (*models.User, error) {
	if apiKey == "" {
		return nil, ErrInvalidAPIKey
	}
	user, err := s.users.GetByAPIKey(apiKey)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidAPIKey
	}
	return user, nil
}

// GetByID 根据 ID 获取用户
func (s *UserService) GetByID(id uint) (*models.User, error) {
	user, err := s.users.GetByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// ProfileInput 资料更新输入
type ProfileInput struct {
	Name  string
	Bio   string
	Phone string
}

// UpdateProfile 更新资料字段，自由文本统一去标签
func (s *UserService) UpdateProfile(user *models.User, input ProfileInput, ip string) error {
	name := StripMarkup(input.Name)
	if name != "" {
		user.Name = name
	}
	user.Bio = StripMarkup(input.Bio)
	user.Phone = StripMarkup(input.Phone)
	if err := s.users.Update(user); err != nil {
		return err
	}
	s.logActivity(user.ID, constants.ActionUpdateProfile, "Updated profile", ip)
	return nil
}

// UpdateAvatar 更新头像地址，文件落盘由 handler 负责
func (s *UserService) UpdateAvatar(user *models.User, avatarURL string) error {
	user.AvatarURL = avatarURL
	return s.users.Update(user)
}

// ChangePassword 校验旧密码后更换新密码
func (s *UserService) ChangePassword(user *models.User, oldPassword, newPassword string, ip string) error {
	if oldPassword == "" || newPassword == "" {
		return ErrIncompleteInput
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)) != nil {
		return ErrWrongPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hash)
	if err := s.users.Update(user); err != nil {
		return err
	}
	s.logActivity(user.ID, constants.ActionChangePassword, "Changed password", ip)
	return nil
}

// RegenerateAPIKey 为用户轮换 API Key
func (s *UserService) RegenerateAPIKey(user *models.User, ip string) (string, error) {
	key, err := GenerateCompactKey()
	if err != nil {
		return "", err
	}
	user.APIKey = key
	if err := s.users.Update(user); err != nil {
		return "", err
	}
	s.logActivity(user.ID, constants.ActionRegenerateAPIKey, "Regenerated api key", ip)
	return key, nil
}

// ActivityLogs 获取用户最近的活动日志
func (s *UserService) ActivityLogs(userID uint, limit int) ([]models.ActivityLog, error) {
	return s.logs.ListByUser(userID, limit)
}

// DeleteAccount 校验密码后执行注销级联
func (s *UserService) DeleteAccount(ctx context.Context, user *models.User, password string) error {
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return ErrWrongPassword
	}
	return s.CascadeDelete(ctx, user)
}

// CascadeDelete 级联删除：服务商记录、子域名、日志、令牌、验证码、待验证记录、用户行
func (s *UserService) CascadeDelete(ctx context.Context, user *models.User) error {
	if err := s.subdomains.PurgeUserRecords(ctx, user.ID); err != nil {
		return err
	}
	if err := s.logs.DeleteByUser(user.ID); err != nil {
		return err
	}
	if err := s.tokens.DeleteByEmail(user.Email); err != nil {
		return err
	}
	if err := s.codes.DeleteByEmail(user.Email); err != nil {
		return err
	}
	if err := s.pending.DeleteByEmail(user.Email); err != nil {
		return err
	}
	if err := s.users.Delete(user.ID); err != nil {
		return err
	}
	logger.Infow("user_deleted", "user_id", user.ID, "email", user.Email)
	return nil
}

func (s *UserService) logActivity(userID uint, action, details, ip string) {
	if err := s.logs.Create(&models.ActivityLog{
		UserID:    userID,
		Action:    action,
		Details:   details,
		IPAddress: ip,
	}); err != nil {
		logger.Warnw("activity_log_failed", "user_id", userID, "action", action, "error", err)
	}
}
