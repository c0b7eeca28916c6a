package cloudflare

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var (
	ErrConfigInvalid     = errors.New("cloudflare config invalid")
	ErrRequestFailed     = errors.New("cloudflare request failed")
	ErrResponseInvalid   = errors.New("cloudflare response invalid")
	ErrAPIError          = errors.New("cloudflare api error")
	ErrPrivateIPRejected = errors.New("cloudflare rejected private ip content")
)

const defaultAPIBase = "https://api.cloudflare.com/client/v4"

// 记录固定参数：TTL 1 表示自动，代理关闭保证解析直达目标
const (
	recordTTLAuto   = 1
	recordProxied   = false
	requestTimeout  = 15 * time.Second
	maxListPageSize = 100
)

// Config 区域访问配置，每个父域名携带自己的凭据
type Config struct {
	APIBase  string `json:"api_base"`
	ZoneID   string `json:"zone_id"`
	APIToken string `json:"api_token"`
}

// Record DNS 记录
type Record struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Name    string `json:"name"`
	Content string `json:"content"`
	TTL     int    `json:"ttl"`
	Proxied bool   `json:"proxied"`
}

// CreateInput 创建记录输入
type CreateInput struct {
	Type    string
	Name    string
	Content string
}

type apiEnvelope struct {
	Success bool `json:"success"`
	Errors  []struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
	Result json.RawMessage `json:"result"`
}

// Normalize 归一化配置
func (c *Config) Normalize() {
	c.APIBase = strings.TrimRight(strings.TrimSpace(c.APIBase), "/")
	if c.APIBase == "" {
		c.APIBase = defaultAPIBase
	}
	c.ZoneID = strings.TrimSpace(c.ZoneID)
	c.APIToken = strings.TrimSpace(c.APIToken)
}

// Validate 校验配置
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: config is nil", ErrConfigInvalid)
	}
	if c.ZoneID == "" {
		return fmt.Errorf("%w: zone_id is required", ErrConfigInvalid)
	}
	if c.APIToken == "" {
		return fmt.Errorf("%w: api_token is required", ErrConfigInvalid)
	}
	return nil
}

// Client 区域级 DNS 客户端
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// New 创建客户端
func New(cfg Config) (*Client, error) {
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: requestTimeout},
	}, nil
}

// ListRecordsByName 按完整域名查询记录（重名检查）
func (c *Client) ListRecordsByName(ctx context.Context, name string) ([]Record, error) {
	query := url.Values{}
	query.Set("name", strings.ToLower(strings.TrimSpace(name)))
	query.Set("per_page", fmt.Sprintf("%d", maxListPageSize))
	endpoint := fmt.Sprintf("%s/zones/%s/dns_records?%s", c.cfg.APIBase, c.cfg.ZoneID, query.Encode())

	raw, err := c.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	var records []Record
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResponseInvalid, err)
	}
	return records, nil
}

// CreateRecord 创建记录，TTL 自动、代理关闭
func (c *Client) CreateRecord(ctx context.Context, input CreateInput) (*Record, error) {
	if strings.TrimSpace(input.Name) == "" || strings.TrimSpace(input.Content) == "" {
		return nil, fmt.Errorf("%w: name and content are required", ErrConfigInvalid)
	}

	body := map[string]interface{}{
		"type":    strings.ToUpper(strings.TrimSpace(input.Type)),
		"name":    strings.ToLower(strings.TrimSpace(input.Name)),
		"content": strings.TrimSpace(input.Content),
		"ttl":     recordTTLAuto,
		"proxied": recordProxied,
	}

	endpoint := fmt.Sprintf("%s/zones/%s/dns_records", c.cfg.APIBase, c.cfg.ZoneID)
	raw, err := c.do(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, err
	}

	var record Record
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResponseInvalid, err)
	}
	return &record, nil
}

// DeleteRecord 删除记录
func (c *Client) DeleteRecord(ctx context.Context, recordID string) error {
	recordID = strings.TrimSpace(recordID)
	if recordID == "" {
		return fmt.Errorf("%w: record id is required", ErrConfigInvalid)
	}
	endpoint := fmt.Sprintf("%s/zones/%s/dns_records/%s", c.cfg.APIBase, c.cfg.ZoneID, recordID)
	_, err := c.do(ctx, http.MethodDelete, endpoint, nil)
	return err
}

func (c *Client) do(ctx context.Context, method, endpoint string, body interface{}) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
		}
		reader = strings.NewReader(string(payload))
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResponseInvalid, err)
	}

	var envelope apiEnvelope
	if err := json.Unmarshal(respBytes, &envelope); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("%w: http status %d", ErrRequestFailed, resp.StatusCode)
		}
		return nil, fmt.Errorf("%w: %v", ErrResponseInvalid, err)
	}
	if !envelope.Success {
		return nil, apiError(envelope)
	}
	return envelope.Result, nil
}

// apiError 将服务商错误转换为哨兵错误，私有 IP 拒绝单独识别
func apiError(envelope apiEnvelope) error {
	if len(envelope.Errors) == 0 {
		return fmt.Errorf("%w: unknown error", ErrAPIError)
	}
	first := envelope.Errors[0]
	message := strings.ToLower(first.Message)
	if strings.Contains(message, "private ip") || strings.Contains(message, "rfc1918") {
		return ErrPrivateIPRejected
	}
	return fmt.Errorf("%w: %s (code %d)", ErrAPIError, first.Message, first.Code)
}
