package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/domku/domku-api/internal/config"
	"github.com/domku/domku-api/internal/constants"
	"github.com/domku/domku-api/internal/dns/cloudflare"
	"github.com/domku/domku-api/internal/logger"
	"github.com/domku/domku-api/internal/models"
	"github.com/domku/domku-api/internal/queue"
	"github.com/domku/domku-api/internal/repository"
)

// SubdomainService 子域名生命周期服务
type SubdomainService struct {
	subdomains repository.SubdomainRepository
	domains    repository.DomainRepository
	logs       repository.ActivityLogRepository
	queue      *queue.Client
	dnsCfg     config.DNSConfig
	subCfg     config.SubdomainConfig
}

// NewSubdomainService 创建子域名服务
func NewSubdomainService(
	subdomains repository.SubdomainRepository,
	domains repository.DomainRepository,
	logs repository.ActivityLogRepository,
	queueClient *queue.Client,
	dnsCfg config.DNSConfig,
	subCfg config.SubdomainConfig,
) *SubdomainService {
	return &SubdomainService{
		subdomains: subdomains,
		domains:    domains,
		logs:       logs,
		queue:      queueClient,
		dnsCfg:     dnsCfg,
		subCfg:     subCfg,
	}
}

// CreateInput 创建子域名输入
type CreateInput struct {
	Label        string
	ParentDomain string
	RecordType   string
	Target       string
	IP           string
}

// Create 执行完整创建链路：清洗、校验、配额、重名检查、服务商创建、落库、记日志
func (s *SubdomainService) Create(ctx context.Context, user *models.User, input CreateInput) (*models.Subdomain, error) {
	label := SanitizeSubdomainLabel(input.Label)
	parent := strings.ToLower(strings.TrimSpace(input.ParentDomain))
	if parent == "" {
		parent = strings.ToLower(strings.TrimSpace(s.subCfg.DefaultParent))
	}
	recordType := strings.ToUpper(strings.TrimSpace(input.RecordType))
	if recordType == "" {
		recordType = constants.RecordTypeA
	}
	target := StripMarkup(input.Target)
	if recordType == constants.RecordTypeCNAME {
		target = NormalizeCNAMETarget(target)
	}

	if label == "" || target == "" || parent == "" {
		return nil, ErrIncompleteInput
	}
	if !IsValidSubdomainLabel(label) {
		return nil, ErrInvalidSubdomainName
	}
	if IsBannedSubdomainLabel(label) {
		return nil, ErrSubdomainNameBanned
	}
	switch recordType {
	case constants.RecordTypeA:
		if !IsValidIPv4(target) {
			return nil, ErrInvalidTarget
		}
		if IsPrivateIPv4(target) {
			return nil, ErrPrivateIPTarget
		}
	case constants.RecordTypeAAAA:
		// 点分十进制的内网目标同样拦下，不送到服务商
		if IsPrivateIPv4(target) {
			return nil, ErrPrivateIPTarget
		}
	}

	domain, err := s.resolveActiveDomain(parent)
	if err != nil {
		return nil, err
	}

	count, err := s.subdomains.CountByUser(user.ID)
	if err != nil {
		return nil, err
	}
	maxPerUser := s.subCfg.MaxPerUser
	if maxPerUser <= 0 {
		maxPerUser = 30
	}
	if count >= int64(maxPerUser) {
		return nil, ErrSubdomainQuota
	}

	client, err := s.dnsClient(domain)
	if err != nil {
		return nil, err
	}

	fullName := label + "." + parent
	existing, err := client.ListRecordsByName(ctx, fullName)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, ErrSubdomainTaken
	}

	record, err := client.CreateRecord(ctx, cloudflare.CreateInput{
		Type:    recordType,
		Name:    label,
		Content: target,
	})
	if err != nil {
		if errors.Is(err, cloudflare.ErrPrivateIPRejected) {
			return nil, ErrPrivateIPTarget
		}
		return nil, err
	}

	recordID := strings.TrimSpace(record.ID)
	if recordID == "" {
		recordID = constants.RecordIDUnknown
	}
	row := &models.Subdomain{
		UserID:       user.ID,
		Name:         fullName,
		Target:       target,
		Type:         recordType,
		RecordID:     recordID,
		ParentDomain: parent,
	}
	if err := s.subdomains.Create(row); err != nil {
		if errors.Is(err, repository.ErrSubdomainNameTaken) {
			// 并发窗口内被抢注，回收刚创建的服务商记录
			s.enqueueCleanup(domain, recordID, fullName)
			return nil, ErrSubdomainTaken
		}
		return nil, err
	}

	s.logActivity(user.ID, constants.ActionCreateSubdomain, "Created "+fullName, input.IP)
	logger.Infow("subdomain_created", "user_id", user.ID, "name", fullName, "type", recordType)
	return row, nil
}

// Delete 删除子域名：鉴权、服务商删除（失败转入清理队列）、本地删除、记日志
func (s *SubdomainService) Delete(ctx context.Context, user *models.User, subdomainID uint, ip string) error {
	row, err := s.subdomains.GetByID(subdomainID)
	if err != nil {
		return err
	}
	if row == nil {
		return ErrSubdomainNotFound
	}
	if row.UserID != user.ID {
		return ErrNotSubdomainOwner
	}

	s.deleteProviderRecord(ctx, row)

	if err := s.subdomains.Delete(row.ID); err != nil {
		return err
	}
	s.logActivity(user.ID, constants.ActionDeleteSubdomain, "Deleted "+row.Name, ip)
	logger.Infow("subdomain_deleted", "user_id", user.ID, "name", row.Name)
	return nil
}

// ListByUser 获取用户的子域名列表
func (s *SubdomainService) ListByUser(userID uint) ([]models.Subdomain, error) {
	return s.subdomains.ListByUser(userID)
}

// PurgeUserRecords 删除用户在服务商与本地的全部子域名（注销与封禁级联）
func (s *SubdomainService) PurgeUserRecords(ctx context.Context, userID uint) error {
	rows, err := s.subdomains.ListByUser(userID)
	if err != nil {
		return err
	}
	for i := range rows {
		s.deleteProviderRecord(ctx, &rows[i])
	}
	return s.subdomains.DeleteByUser(userID)
}

// deleteProviderRecord 尝试删除服务商记录，失败时转入重试队列
func (s *SubdomainService) deleteProviderRecord(ctx context.Context, row *models.Subdomain) {
	if row.RecordID == "" || row.RecordID == constants.RecordIDUnknown {
		return
	}
	domain, err := s.domains.GetByDomain(row.ParentDomain)
	if err != nil {
		logger.Warnw("domain_lookup_failed", "parent", row.ParentDomain, "error", err)
	}
	client, err := s.dnsClient(domain)
	if err != nil {
		logger.Errorw("dns_client_init_failed", "parent", row.ParentDomain, "error", err)
		s.enqueueCleanup(domain, row.RecordID, row.Name)
		return
	}
	if err := client.DeleteRecord(ctx, row.RecordID); err != nil {
		logger.Errorw("provider_delete_failed",
			"name", row.Name,
			"record_id", row.RecordID,
			"error", err,
		)
		s.enqueueCleanup(domain, row.RecordID, row.Name)
	}
}

// resolveActiveDomain 查找启用中的父域名
func (s *SubdomainService) resolveActiveDomain(parent string) (*models.Domain, error) {
	domain, err := s.domains.GetByDomain(parent)
	if err != nil {
		return nil, err
	}
	if domain == nil || !domain.IsActive {
		return nil, ErrDomainNotFound
	}
	return domain, nil
}

// dnsClient 构建区域客户端，域名行缺少凭据时回退到全局配置
func (s *SubdomainService) dnsClient(domain *models.Domain) (*cloudflare.Client, error) {
	cfg := cloudflare.Config{APIBase: s.dnsCfg.APIBase}
	if domain != nil {
		cfg.ZoneID = domain.ZoneID
		cfg.APIToken = domain.APIToken
	}
	if cfg.ZoneID == "" {
		cfg.ZoneID = s.dnsCfg.DefaultZoneID
	}
	if cfg.APIToken == "" {
		cfg.APIToken = s.dnsCfg.DefaultAPIToken
	}
	client, err := cloudflare.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDNSNotConfigured, err)
	}
	return client, nil
}

func (s *SubdomainService) enqueueCleanup(domain *models.Domain, recordID, name string) {
	if s.queue == nil || recordID == "" || recordID == constants.RecordIDUnknown {
		return
	}
	payload := queue.DNSRecordCleanupPayload{
		RecordID: recordID,
		Name:     name,
	}
	if domain != nil {
		payload.ZoneID = domain.ZoneID
		payload.APIToken = domain.APIToken
	}
	if err := s.queue.EnqueueDNSRecordCleanup(payload); err != nil {
		logger.Errorw("cleanup_enqueue_failed", "name", name, "record_id", recordID, "error", err)
	}
}

func (s *SubdomainService) logActivity(userID uint, action, details, ip string) {
	if err := s.logs.Create(&models.ActivityLog{
		UserID:    userID,
		Action:    action,
		Details:   details,
		IPAddress: ip,
	}); err != nil {
		logger.Warnw("activity_log_failed", "user_id", userID, "action", action, "error", err)
	}
}
