package service

import (
	"context"
	"strings"

	"github.com/domku/domku-api/internal/constants"
	"github.com/domku/domku-api/internal/logger"
	"github.com/domku/domku-api/internal/models"
	"github.com/domku/domku-api/internal/queue"
	"github.com/domku/domku-api/internal/repository"
)

// AdminService 管理面服务
type AdminService struct {
	users         repository.UserRepository
	subdomains    repository.SubdomainRepository
	logs          repository.ActivityLogRepository
	banned        repository.BannedEmailRepository
	blacklist     repository.IPBlacklistRepository
	notifications repository.NotificationRepository
	settings      *SettingService
	userService   *UserService
	queue         *queue.Client
}

// NewAdminService 创建管理面服务
func NewAdminService(
	users repository.UserRepository,
	subdomains repository.SubdomainRepository,
	logs repository.ActivityLogRepository,
	banned repository.BannedEmailRepository,
	blacklist repository.IPBlacklistRepository,
	notifications repository.NotificationRepository,
	settings *SettingService,
	userService *UserService,
	queueClient *queue.Client,
) *AdminService {
	return &AdminService{
		users:         users,
		subdomains:    subdomains,
		logs:          logs,
		banned:        banned,
		blacklist:     blacklist,
		notifications: notifications,
		settings:      settings,
		userService:   userService,
		queue:         queueClient,
	}
}

// Stats 管理面板统计
type Stats struct {
	Users           int64                `json:"users"`
	Subdomains      int64                `json:"subdomains"`
	ActivityLogs    int64                `json:"activity_logs"`
	BannedEmails    int64                `json:"banned_emails"`
	MaintenanceMode bool                 `json:"maintenance_mode"`
	RecentLogs      []models.ActivityLog `json:"recent_logs"`
}

// GetStats 聚合面板统计与最近 15 条日志
func (s *AdminService) GetStats() (*Stats, error) {
	users, err := s.users.Count()
	if err != nil {
		return nil, err
	}
	subdomains, err := s.subdomains.Count()
	if err != nil {
		return nil, err
	}
	logs, err := s.logs.Count()
	if err != nil {
		return nil, err
	}
	banned, err := s.banned.Count()
	if err != nil {
		return nil, err
	}
	recent, err := s.logs.ListRecent(15)
	if err != nil {
		return nil, err
	}
	return &Stats{
		Users:           users,
		Subdomains:      subdomains,
		ActivityLogs:    logs,
		BannedEmails:    banned,
		MaintenanceMode: s.settings.MaintenanceMode(),
		RecentLogs:      recent,
	}, nil
}

// UserOverview 用户列表条目，附派生风险等级
type UserOverview struct {
	models.User
	SubdomainCount int64  `json:"subdomain_count"`
	ActivityCount  int64  `json:"activity_count"`
	RiskLevel      string `json:"risk_level"`
}

// ListUsers 用户列表，按子域名与日志量派生风险等级
func (s *AdminService) ListUsers(filter repository.UserListFilter) ([]UserOverview, int64, error) {
	users, total, err := s.users.List(filter)
	if err != nil {
		return nil, 0, err
	}
	subCounts, err := s.subdomains.CountsByUser()
	if err != nil {
		return nil, 0, err
	}
	logCounts, err := s.logs.CountsByUser()
	if err != nil {
		return nil, 0, err
	}

	overviews := make([]UserOverview, 0, len(users))
	for _, user := range users {
		subs := subCounts[user.ID]
		acts := logCounts[user.ID]
		overviews = append(overviews, UserOverview{
			User:           user,
			SubdomainCount: subs,
			ActivityCount:  acts,
			RiskLevel:      deriveRiskLevel(subs, acts),
		})
	}
	return overviews, total, nil
}

// deriveRiskLevel 子域名超阈值判高危，日志量超阈值判中危
func deriveRiskLevel(subdomainCount, activityCount int64) string {
	if subdomainCount > constants.RiskHighSubdomainCount {
		return constants.RiskLevelHigh
	}
	if activityCount > constants.RiskMediumLogCount {
		return constants.RiskLevelMedium
	}
	return constants.RiskLevelLow
}

// ListBlacklist IP 黑名单列表
func (s *AdminService) ListBlacklist() ([]models.IPBlacklistEntry, error) {
	return s.blacklist.List()
}

// AddBlacklistEntry 添加 IP 黑名单
func (s *AdminService) AddBlacklistEntry(ip, reason string) error {
	ip = strings.TrimSpace(ip)
	if ip == "" {
		return ErrIncompleteInput
	}
	return s.blacklist.Create(&models.IPBlacklistEntry{
		IPAddress: ip,
		Reason:    StripMarkup(reason),
	})
}

// RemoveBlacklistEntry 移除 IP 黑名单
func (s *AdminService) RemoveBlacklistEntry(id uint) error {
	return s.blacklist.Delete(id)
}

// ListNotifications 系统通知列表
func (s *AdminService) ListNotifications(limit int) ([]models.SystemNotification, error) {
	return s.notifications.List(limit)
}

// CreateNotification 发布系统通知
func (s *AdminService) CreateNotification(title, message, notifType, imageURL string) (*models.SystemNotification, error) {
	title = StripMarkup(title)
	message = StripMarkup(message)
	if title == "" || message == "" {
		return nil, ErrIncompleteInput
	}
	switch notifType {
	case constants.NotificationTypeInfo, constants.NotificationTypeWarning, constants.NotificationTypeCritical:
	default:
		notifType = constants.NotificationTypeInfo
	}
	row := &models.SystemNotification{
		Title:    title,
		Message:  message,
		Type:     notifType,
		ImageURL: strings.TrimSpace(imageURL),
	}
	if err := s.notifications.Create(row); err != nil {
		return nil, err
	}
	if notifType == constants.NotificationTypeCritical {
		s.fanOutNotificationEmails(row)
	}
	return row, nil
}

// fanOutNotificationEmails 把紧急通知逐个投递进邮件队列
func (s *AdminService) fanOutNotificationEmails(row *models.SystemNotification) {
	if s.queue == nil {
		return
	}
	users, err := s.users.ListAll()
	if err != nil {
		logger.Errorw("notification_fanout_list_failed", "notification_id", row.ID, "error", err)
		return
	}
	for i := range users {
		payload := queue.NotificationEmailPayload{
			To:      users[i].Email,
			Subject: row.Title,
			Body:    row.Message,
		}
		if err := s.queue.EnqueueNotificationEmail(payload); err != nil {
			logger.Errorw("notification_fanout_enqueue_failed", "to", users[i].Email, "error", err)
		}
	}
	logger.Infow("notification_fanout_queued", "notification_id", row.ID, "receivers", len(users))
}

// DeleteNotification 删除系统通知
func (s *AdminService) DeleteNotification(id uint) error {
	return s.notifications.Delete(id)
}

// GodAction 执行特权动作，返回面向调用方的结果说明
func (s *AdminService) GodAction(ctx context.Context, action, targetEmail string) (string, error) {
	switch strings.ToUpper(strings.TrimSpace(action)) {
	case constants.GodActionBanUser:
		return s.banUser(ctx, NormalizeEmail(targetEmail))
	case constants.GodActionWipeLogs:
		deleted, err := s.logs.DeleteAll()
		if err != nil {
			return "", err
		}
		logger.Warnw("activity_logs_wiped", "deleted", deleted)
		return "logs wiped", nil
	default:
		return "", ErrUnknownGodAction
	}
}

// banUser 封禁邮箱并级联清理其账号与记录
func (s *AdminService) banUser(ctx context.Context, email string) (string, error) {
	if email == "" {
		return "", ErrIncompleteInput
	}
	if err := s.banned.Create(&models.BannedEmail{
		Email:  email,
		Reason: "banned by operator",
	}); err != nil {
		return "", err
	}

	user, err := s.users.GetByEmail(email)
	if err != nil {
		return "", err
	}
	if user == nil {
		logger.Infow("ban_user_no_account", "email", email)
		return "email banned", nil
	}
	// 队列可用时把级联清理（含服务商记录删除）交给 worker 重试
	if s.queue != nil {
		err := s.queue.EnqueueUserPurge(queue.UserPurgePayload{
			UserID: user.ID,
			Email:  user.Email,
		})
		if err == nil {
			logger.Warnw("user_banned", "email", email, "user_id", user.ID, "purge", "queued")
			return "user banned, purge queued", nil
		}
		logger.Errorw("ban_purge_enqueue_failed", "user_id", user.ID, "error", err)
	}
	if err := s.userService.CascadeDelete(ctx, user); err != nil {
		return "", err
	}
	logger.Warnw("user_banned", "email", email, "user_id", user.ID)
	return "user banned and purged", nil
}

// RegenerateAllKeys 轮换全部用户的 API Key，返回处理数量
func (s *AdminService) RegenerateAllKeys() (int, error) {
	users, err := s.users.ListAll()
	if err != nil {
		return 0, err
	}
	rotated := 0
	for i := range users {
		key, err := GenerateCompactKey()
		if err != nil {
			return rotated, err
		}
		users[i].APIKey = key
		if err := s.users.Update(&users[i]); err != nil {
			return rotated, err
		}
		rotated++
	}
	logger.Warnw("all_api_keys_rotated", "count", rotated)
	return rotated, nil
}
