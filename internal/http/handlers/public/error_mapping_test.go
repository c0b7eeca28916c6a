package public

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/domku/domku-api/internal/dns/cloudflare"
	"github.com/domku/domku-api/internal/service"

	"github.com/gin-gonic/gin"
)

func mapError(t *testing.T, rules []errorRule, err error) (int, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	respondMappedError(c, rules, err, "Something went wrong")

	var body struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body failed: %v", err)
	}
	if body.Success {
		t.Fatalf("expected success=false, body %s", w.Body.String())
	}
	return w.Code, body.Error
}

func TestSubdomainErrorMapping(t *testing.T) {
	status, message := mapError(t, subdomainErrorRules, service.ErrSubdomainQuota)
	if status != http.StatusBadRequest || message != "Subdomain limit reached" {
		t.Fatalf("unexpected quota mapping: %d %q", status, message)
	}

	if status, _ := mapError(t, subdomainErrorRules, service.ErrNotSubdomainOwner); status != http.StatusForbidden {
		t.Fatalf("expected 403 for foreign subdomain, got %d", status)
	}
	if status, _ := mapError(t, subdomainErrorRules, service.ErrSubdomainNotFound); status != http.StatusNotFound {
		t.Fatalf("expected 404 for missing subdomain, got %d", status)
	}

	// 服务商拒绝原因原样返回给调用方
	providerErr := fmt.Errorf("%w: DNS record type is invalid (code 9106)", cloudflare.ErrAPIError)
	status, message = mapError(t, subdomainErrorRules, providerErr)
	if status != http.StatusInternalServerError {
		t.Fatalf("expected 500 for provider error, got %d", status)
	}
	if message != providerErr.Error() {
		t.Fatalf("expected provider message passed through, got %q", message)
	}

	// 未命中规则时回退到通用文案
	status, message = mapError(t, subdomainErrorRules, errors.New("boom"))
	if status != http.StatusInternalServerError || message != "Something went wrong" {
		t.Fatalf("unexpected fallback mapping: %d %q", status, message)
	}
}

func TestAuthErrorMapping(t *testing.T) {
	status, message := mapError(t, authErrorRules, service.ErrEmailServiceNotConfigured)
	if status != http.StatusServiceUnavailable || message != "Email service is not configured" {
		t.Fatalf("unexpected mapping for unconfigured mailer: %d %q", status, message)
	}
	if status, _ := mapError(t, authErrorRules, service.ErrEmailBanned); status != http.StatusForbidden {
		t.Fatalf("expected 403 for banned email, got %d", status)
	}
	if status, _ := mapError(t, authErrorRules, service.ErrUserNotFound); status != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown email, got %d", status)
	}
}
