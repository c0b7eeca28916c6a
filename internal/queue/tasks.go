package queue

import (
	"encoding/json"

	"github.com/domku/domku-api/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskDNSRecordCleanup 服务商记录清理重试任务
	TaskDNSRecordCleanup = constants.TaskDNSRecordCleanup
	// TaskUserPurge 用户级联清理任务
	TaskUserPurge = constants.TaskUserPurge
	// TaskNotificationEmail 通知邮件投递任务
	TaskNotificationEmail = constants.TaskNotificationEmail
)

// DNSRecordCleanupPayload 记录清理任务载荷
type DNSRecordCleanupPayload struct {
	RecordID string `json:"record_id"`
	Name     string `json:"name"`
	ZoneID   string `json:"zone_id"`
	APIToken string `json:"api_token"`
}

// UserPurgePayload 用户级联清理任务载荷
type UserPurgePayload struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
}

// NotificationEmailPayload 通知邮件任务载荷
type NotificationEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NewDNSRecordCleanupTask 创建记录清理任务
func NewDNSRecordCleanupTask(payload DNSRecordCleanupPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDNSRecordCleanup, body), nil
}

// NewUserPurgeTask 创建用户级联清理任务
func NewUserPurgeTask(payload UserPurgePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskUserPurge, body), nil
}

// NewNotificationEmailTask 创建通知邮件任务
func NewNotificationEmailTask(payload NotificationEmailPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskNotificationEmail, body), nil
}
