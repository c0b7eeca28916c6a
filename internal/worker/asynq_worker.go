package worker

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/domku/domku-api/internal/dns/cloudflare"
	"github.com/domku/domku-api/internal/logger"
	"github.com/domku/domku-api/internal/provider"
	"github.com/domku/domku-api/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskDNSRecordCleanup, c.handleDNSRecordCleanup)
	mux.HandleFunc(queue.TaskUserPurge, c.handleUserPurge)
	mux.HandleFunc(queue.TaskNotificationEmail, c.handleNotificationEmail)
}

// handleDNSRecordCleanup 重试删除服务商侧残留的 DNS 记录
func (c *Consumer) handleDNSRecordCleanup(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_dns_cleanup_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.DNSRecordCleanupPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_dns_cleanup_unmarshal_failed", "error", err)
		return err
	}
	if payload.RecordID == "" {
		logger.Debugw("worker_dns_cleanup_skip_invalid_payload", "name", payload.Name)
		return nil
	}

	cfg := cloudflare.Config{
		APIBase:  c.Config.DNS.APIBase,
		ZoneID:   payload.ZoneID,
		APIToken: payload.APIToken,
	}
	if cfg.ZoneID == "" {
		cfg.ZoneID = c.Config.DNS.DefaultZoneID
	}
	if cfg.APIToken == "" {
		cfg.APIToken = c.Config.DNS.DefaultAPIToken
	}
	client, err := cloudflare.New(cfg)
	if err != nil {
		logger.Errorw("worker_dns_cleanup_client_failed", "name", payload.Name, "error", err)
		return err
	}

	if err := client.DeleteRecord(ctx, payload.RecordID); err != nil {
		// 服务商明确拒绝（记录已不存在等）不再重试，传输失败交给队列重试
		if errors.Is(err, cloudflare.ErrAPIError) {
			logger.Warnw("worker_dns_cleanup_rejected",
				"name", payload.Name,
				"record_id", payload.RecordID,
				"error", err,
			)
			return nil
		}
		logger.Warnw("worker_dns_cleanup_failed",
			"name", payload.Name,
			"record_id", payload.RecordID,
			"error", err,
		)
		return err
	}
	logger.Infow("worker_dns_cleanup_done", "name", payload.Name, "record_id", payload.RecordID)
	return nil
}

// handleUserPurge 对仍存在的账号执行注销级联
func (c *Consumer) handleUserPurge(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_user_purge_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.UserPurgePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_user_purge_unmarshal_failed", "error", err)
		return err
	}
	if payload.UserID == 0 {
		logger.Debugw("worker_user_purge_skip_invalid_payload", "email", payload.Email)
		return nil
	}
	user, err := c.UserRepo.GetByID(payload.UserID)
	if err != nil {
		logger.Warnw("worker_user_purge_fetch_failed", "user_id", payload.UserID, "error", err)
		return err
	}
	if user == nil {
		logger.Debugw("worker_user_purge_skip_not_found", "user_id", payload.UserID)
		return nil
	}
	if err := c.UserService.CascadeDelete(ctx, user); err != nil {
		logger.Warnw("worker_user_purge_failed", "user_id", payload.UserID, "error", err)
		return err
	}
	return nil
}

// handleNotificationEmail 投递系统通知邮件
func (c *Consumer) handleNotificationEmail(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_notification_email_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.NotificationEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_notification_email_unmarshal_failed", "error", err)
		return err
	}
	if payload.To == "" {
		logger.Debugw("worker_notification_email_skip_empty_receiver", "subject", payload.Subject)
		return nil
	}
	if c.EmailService == nil {
		logger.Warnw("worker_notification_email_skip_email_service_nil", "to", payload.To)
		return nil
	}
	if err := c.EmailService.SendNotificationEmail(payload.To, payload.Subject, payload.Body); err != nil {
		logger.Warnw("worker_notification_email_send_failed", "to", payload.To, "error", err)
		return err
	}
	return nil
}
