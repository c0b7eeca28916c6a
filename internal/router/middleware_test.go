package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/domku/domku-api/internal/config"
	"github.com/domku/domku-api/internal/models"
	"github.com/domku/domku-api/internal/repository"
	"github.com/domku/domku-api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func newMiddlewareTestEnv(t *testing.T) (*service.AuthService, *service.UserService, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.PendingRegistration{},
		&models.AuthToken{},
		&models.VerificationCode{},
		&models.Domain{},
		&models.Subdomain{},
		&models.ActivityLog{},
		&models.BannedEmail{},
		&models.IPBlacklistEntry{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	logRepo := repository.NewActivityLogRepository(db)
	subdomainService := service.NewSubdomainService(
		repository.NewSubdomainRepository(db),
		repository.NewDomainRepository(db),
		logRepo,
		nil,
		config.DNSConfig{},
		config.SubdomainConfig{MaxPerUser: 30, DefaultParent: "domku.my.id"},
	)
	userService := service.NewUserService(
		repository.NewUserRepository(db),
		repository.NewAuthTokenRepository(db),
		repository.NewPendingRegistrationRepository(db),
		repository.NewVerificationCodeRepository(db),
		logRepo,
		subdomainService,
	)
	authService := service.NewAuthService(
		repository.NewUserRepository(db),
		repository.NewPendingRegistrationRepository(db),
		repository.NewAuthTokenRepository(db),
		repository.NewVerificationCodeRepository(db),
		repository.NewBannedEmailRepository(db),
		logRepo,
		nil,
		config.JWTConfig{SecretKey: "0123456789abcdef0123456789abcdef", ExpireHours: 1},
	)
	return authService, userService, db
}

func performRequest(r http.Handler, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAPIKeyAuth(t *testing.T) {
	_, userService, db := newMiddlewareTestEnv(t)
	user := models.User{Email: "u@b.co", Name: "U", PasswordHash: "x", APIKey: "abcd123!@"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user failed: %v", err)
	}

	r := gin.New()
	r.GET("/protected", APIKeyAuth(userService), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	if w := performRequest(r, http.MethodGet, "/protected", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without key, got %d", w.Code)
	}
	if w := performRequest(r, http.MethodGet, "/protected", map[string]string{"X-API-Key": "wrong"}); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with wrong key, got %d", w.Code)
	}
	if w := performRequest(r, http.MethodGet, "/protected", map[string]string{"X-API-Key": "abcd123!@"}); w.Code != http.StatusOK {
		t.Fatalf("expected 200 with valid key, got %d", w.Code)
	}
}

func TestSessionAuthAndAdminGate(t *testing.T) {
	authService, userService, db := newMiddlewareTestEnv(t)
	admin := models.User{Email: "boss@domku.my.id", Name: "B", PasswordHash: "x", APIKey: "wxyz987#$"}
	regular := models.User{Email: "user@b.co", Name: "U", PasswordHash: "x", APIKey: "qrst654%^"}
	if err := db.Create(&admin).Error; err != nil {
		t.Fatalf("seed admin failed: %v", err)
	}
	if err := db.Create(&regular).Error; err != nil {
		t.Fatalf("seed regular failed: %v", err)
	}

	adminCfg := config.AdminConfig{Emails: []string{"Boss@Domku.My.Id"}}
	r := gin.New()
	r.GET("/admin", SessionAuth(authService, userService), AdminGate(adminCfg), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	if w := performRequest(r, http.MethodGet, "/admin", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}
	if w := performRequest(r, http.MethodGet, "/admin", map[string]string{"Authorization": "Bearer junk"}); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with bad token, got %d", w.Code)
	}

	regularToken, err := authService.IssueSessionToken(&regular)
	if err != nil {
		t.Fatalf("issue token failed: %v", err)
	}
	if w := performRequest(r, http.MethodGet, "/admin", map[string]string{"Authorization": "Bearer " + regularToken}); w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin, got %d", w.Code)
	}

	adminToken, err := authService.IssueSessionToken(&admin)
	if err != nil {
		t.Fatalf("issue token failed: %v", err)
	}
	if w := performRequest(r, http.MethodGet, "/admin", map[string]string{"Authorization": "Bearer " + adminToken}); w.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin, got %d", w.Code)
	}
}

func TestIPBlacklistGate(t *testing.T) {
	_, _, db := newMiddlewareTestEnv(t)
	blacklistRepo := repository.NewIPBlacklistRepository(db)
	if err := db.Create(&models.IPBlacklistEntry{IPAddress: "192.0.2.1", Reason: "abuse"}).Error; err != nil {
		t.Fatalf("seed blacklist failed: %v", err)
	}

	build := func(enforce bool) *gin.Engine {
		r := gin.New()
		r.GET("/", IPBlacklistGate(blacklistRepo, enforce), func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"ok": true})
		})
		return r
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:1234"

	w := httptest.NewRecorder()
	build(true).ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 when enforced, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	build(false).ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 when observe-only, got %d", w.Code)
	}

	okReq := httptest.NewRequest(http.MethodGet, "/", nil)
	okReq.RemoteAddr = "198.51.100.7:1234"
	w = httptest.NewRecorder()
	build(true).ServeHTTP(w, okReq)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for clean ip, got %d", w.Code)
	}
}

func TestRateLimitLocalFallback(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/", RateLimit("test", config.RateLimitConfig{WindowSeconds: 60, MaxRequests: 3}), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	for i := 0; i < 3; i++ {
		if w := performRequest(r, http.MethodGet, "/", nil); w.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, w.Code)
		}
	}
	if w := performRequest(r, http.MethodGet, "/", nil); w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 over limit, got %d", w.Code)
	}
}
