package service

import (
	"net"
	"regexp"
	"strings"
)

// 保留子域名，禁止普通用户注册
var bannedSubdomains = map[string]struct{}{
	"www": {}, "mail": {}, "remote": {}, "blog": {}, "webmail": {},
	"server": {}, "ns1": {}, "ns2": {}, "smtp": {}, "secure": {},
	"vpn": {}, "m": {}, "shop": {}, "admin": {}, "panel": {},
	"cpanel": {}, "whm": {}, "billing": {}, "support": {}, "test": {},
	"dev": {}, "root": {}, "ftp": {}, "pop": {}, "imap": {},
	"status": {}, "api": {}, "app": {}, "dashboard": {}, "auth": {},
	"login": {}, "domku": {},
}

var (
	subdomainNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9.-]*[a-z0-9]$`)
	markupTagPattern     = regexp.MustCompile(`<[^>]*>`)
	schemePrefixPattern  = regexp.MustCompile(`^https?://`)
	emailPattern         = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// StripMarkup 去除自由文本中的标签内容
func StripMarkup(input string) string {
	return strings.TrimSpace(markupTagPattern.ReplaceAllString(input, ""))
}

// NormalizeEmail 归一化邮箱
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsValidEmail 判断邮箱格式
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// SanitizeSubdomainLabel 归一化子域名标签：去标签、去空白、转小写
func SanitizeSubdomainLabel(label string) string {
	return strings.ToLower(StripMarkup(label))
}

// IsValidSubdomainLabel 校验子域名标签格式
func IsValidSubdomainLabel(label string) bool {
	if len(label) < 2 || len(label) > 63 {
		return false
	}
	return subdomainNamePattern.MatchString(label)
}

// IsBannedSubdomainLabel 判断标签是否为保留名
func IsBannedSubdomainLabel(label string) bool {
	_, banned := bannedSubdomains[label]
	return banned
}

// NormalizeCNAMETarget 归一化 CNAME 目标：去协议前缀与尾部斜杠
func NormalizeCNAMETarget(target string) string {
	target = strings.TrimSpace(target)
	target = schemePrefixPattern.ReplaceAllString(target, "")
	return strings.ToLower(strings.TrimRight(target, "/"))
}

// IsValidIPv4 判断是否为合法 IPv4 地址
func IsValidIPv4(value string) bool {
	ip := net.ParseIP(strings.TrimSpace(value))
	return ip != nil && ip.To4() != nil
}

// IsPrivateIPv4 判断 IPv4 是否落在内网或环回段
// 覆盖 10/8、172.16/12、192.168/16、127/8
func IsPrivateIPv4(value string) bool {
	ip := net.ParseIP(strings.TrimSpace(value))
	if ip == nil {
		return false
	}
	v4 := ip.To4()
	if v4 == nil {
		return false
	}
	switch {
	case v4[0] == 10:
		return true
	case v4[0] == 172 && v4[1] >= 16 && v4[1] <= 31:
		return true
	case v4[0] == 192 && v4[1] == 168:
		return true
	case v4[0] == 127:
		return true
	}
	return false
}
