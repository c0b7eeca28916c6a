package service

import "errors"

// 认证相关错误
var (
	ErrInvalidEmail        = errors.New("invalid email address")
	ErrIncompleteInput     = errors.New("incomplete input")
	ErrEmailBanned         = errors.New("email banned")
	ErrEmailTaken          = errors.New("email already registered")
	ErrEmailNotRegistered  = errors.New("email not registered")
	ErrWrongPassword       = errors.New("wrong password")
	ErrInvalidToken        = errors.New("invalid or consumed token")
	ErrTokenExpired        = errors.New("token expired")
	ErrPendingNotFound     = errors.New("pending registration not found")
	ErrInvalidOTP          = errors.New("invalid otp code")
	ErrInvalidAPIKey       = errors.New("invalid api key")
	ErrInvalidSessionToken = errors.New("invalid session token")
	ErrUserNotFound        = errors.New("user not found")
)

// 子域名相关错误
var (
	ErrInvalidSubdomainName = errors.New("invalid subdomain name")
	ErrSubdomainNameBanned  = errors.New("subdomain name not allowed")
	ErrInvalidTarget        = errors.New("invalid record target")
	ErrPrivateIPTarget      = errors.New("private ip target not allowed")
	ErrSubdomainQuota       = errors.New("subdomain quota exceeded")
	ErrSubdomainTaken       = errors.New("subdomain already taken")
	ErrSubdomainNotFound    = errors.New("subdomain not found")
	ErrNotSubdomainOwner    = errors.New("not the subdomain owner")
	ErrDomainNotFound       = errors.New("parent domain not available")
	ErrDNSNotConfigured     = errors.New("dns credentials not configured")
)

// 邮件相关错误
var (
	ErrEmailServiceDisabled      = errors.New("email service disabled")
	ErrEmailServiceNotConfigured = errors.New("email service not configured")
	ErrEmailRecipientRejected    = errors.New("email recipient rejected")
)

// 管理面相关错误
var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrBlacklistNotFound    = errors.New("blacklist entry not found")
	ErrUnknownGodAction     = errors.New("unknown god action")
)
