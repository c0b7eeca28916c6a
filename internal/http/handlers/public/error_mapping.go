package public

import (
	"errors"
	"net/http"

	"github.com/domku/domku-api/internal/dns/cloudflare"
	"github.com/domku/domku-api/internal/http/handlers/shared"
	"github.com/domku/domku-api/internal/service"

	"github.com/gin-gonic/gin"
)

// errorRule 业务错误到 HTTP 响应的映射规则，message 为空时透传错误文本
type errorRule struct {
	target  error
	status  int
	message string
}

var authErrorRules = []errorRule{
	{service.ErrIncompleteInput, http.StatusBadRequest, "All fields are required"},
	{service.ErrInvalidEmail, http.StatusBadRequest, "Invalid email address"},
	{service.ErrEmailBanned, http.StatusForbidden, "This email has been banned"},
	{service.ErrEmailTaken, http.StatusBadRequest, "Email is already registered"},
	{service.ErrEmailNotRegistered, http.StatusNotFound, "Email is not registered"},
	{service.ErrWrongPassword, http.StatusUnauthorized, "Incorrect password"},
	{service.ErrInvalidToken, http.StatusBadRequest, "Invalid or expired token"},
	{service.ErrTokenExpired, http.StatusBadRequest, "Token has expired"},
	{service.ErrPendingNotFound, http.StatusBadRequest, "Registration data not found, please register again"},
	{service.ErrInvalidOTP, http.StatusUnauthorized, "Invalid OTP code"},
	{service.ErrUserNotFound, http.StatusNotFound, "Email not found"},
	{service.ErrEmailServiceDisabled, http.StatusServiceUnavailable, "Email service is disabled"},
	{service.ErrEmailServiceNotConfigured, http.StatusServiceUnavailable, "Email service is not configured"},
	{service.ErrEmailRecipientRejected, http.StatusBadRequest, "Recipient address was rejected"},
}

var subdomainErrorRules = []errorRule{
	{service.ErrIncompleteInput, http.StatusBadRequest, "All fields are required"},
	{service.ErrInvalidSubdomainName, http.StatusBadRequest, "Invalid subdomain name"},
	{service.ErrSubdomainNameBanned, http.StatusBadRequest, "This subdomain name is not allowed"},
	{service.ErrInvalidTarget, http.StatusBadRequest, "Invalid target for this record type"},
	{service.ErrPrivateIPTarget, http.StatusBadRequest, "Private IP addresses are not allowed"},
	{service.ErrSubdomainQuota, http.StatusBadRequest, "Subdomain limit reached"},
	{service.ErrSubdomainTaken, http.StatusBadRequest, "Subdomain is already taken"},
	{service.ErrSubdomainNotFound, http.StatusNotFound, "Subdomain not found"},
	{service.ErrNotSubdomainOwner, http.StatusForbidden, "You do not own this subdomain"},
	{service.ErrDomainNotFound, http.StatusBadRequest, "Parent domain is not available"},
	{service.ErrDNSNotConfigured, http.StatusServiceUnavailable, "DNS provider is not configured"},
	// 服务商拒绝原因对排障有用，原样返回
	{cloudflare.ErrAPIError, http.StatusInternalServerError, ""},
}

var userErrorRules = []errorRule{
	{service.ErrIncompleteInput, http.StatusBadRequest, "All fields are required"},
	{service.ErrInvalidAPIKey, http.StatusUnauthorized, "Invalid API key"},
	{service.ErrUserNotFound, http.StatusNotFound, "User not found"},
	{service.ErrWrongPassword, http.StatusUnauthorized, "Incorrect password"},
}

// respondMappedError 按规则表映射业务错误，未命中时返回 500。
func respondMappedError(c *gin.Context, rules []errorRule, err error, fallback string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			message := rule.message
			if message == "" {
				message = err.Error()
			}
			shared.RespondError(c, rule.status, message, err)
			return
		}
	}
	shared.RespondError(c, http.StatusInternalServerError, fallback, err)
}
