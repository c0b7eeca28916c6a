package public

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/domku/domku-api/internal/config"
	"github.com/domku/domku-api/internal/http/handlers/shared"
	"github.com/domku/domku-api/internal/models"
	"github.com/domku/domku-api/internal/repository"
	"github.com/domku/domku-api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func newSubdomainHandlerEnv(t *testing.T) (*gin.Engine, *gorm.DB) {
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
		&models.Domain{},
		&models.Subdomain{},
		&models.ActivityLog{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	// 查重返回空、创建直接成功的最小服务商桩
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "result": []map[string]string{}})
		case http.MethodPost:
			json.NewEncoder(w).Encode(map[string]interface{}{
				"success": true,
				"result":  map[string]string{"id": "rec-1"},
			})
		}
	}))
	t.Cleanup(server.Close)

	if err := db.Create(&models.Domain{Domain: "domku.my.id", ZoneID: "zone-1", APIToken: "token-1", IsActive: true}).Error; err != nil {
		t.Fatalf("seed domain failed: %v", err)
	}
	user := models.User{Email: "u@b.co", Name: "U", PasswordHash: "x", APIKey: "abcd123!@"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user failed: %v", err)
	}

	subCfg := config.SubdomainConfig{MaxPerUser: 30, DefaultParent: "domku.my.id"}
	subdomainService := service.NewSubdomainService(
		repository.NewSubdomainRepository(db),
		repository.NewDomainRepository(db),
		repository.NewActivityLogRepository(db),
		nil,
		config.DNSConfig{APIBase: server.URL},
		subCfg,
	)
	handler := NewHandler(nil, nil, subdomainService, nil, nil, nil, nil, config.UploadConfig{}, subCfg)

	r := gin.New()
	r.POST("/api/subdomain", func(c *gin.Context) {
		c.Set(shared.ContextKeyUser, &user)
	}, handler.CreateSubdomain)
	return r, db
}

func postJSON(r http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateSubdomainBindsClientFields(t *testing.T) {
	r, db := newSubdomainHandlerEnv(t)

	w := postJSON(r, "/api/subdomain", `{"subdomain":"docs","domain":"domku.my.id","recordType":"CNAME","target":"pages.github.io"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body %s", w.Code, w.Body.String())
	}

	var row models.Subdomain
	if err := db.Where("name = ?", "docs.domku.my.id").First(&row).Error; err != nil {
		t.Fatalf("load row failed: %v", err)
	}
	if row.Type != "CNAME" || row.ParentDomain != "domku.my.id" {
		t.Fatalf("unexpected row %+v", row)
	}
}

func TestCreateSubdomainBindsAliasFields(t *testing.T) {
	r, db := newSubdomainHandlerEnv(t)

	w := postJSON(r, "/api/subdomain", `{"subdomain":"mysite","parent_domain":"domku.my.id","type":"A","target":"1.2.3.4"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body %s", w.Code, w.Body.String())
	}

	var row models.Subdomain
	if err := db.Where("name = ?", "mysite.domku.my.id").First(&row).Error; err != nil {
		t.Fatalf("load row failed: %v", err)
	}
	if row.Type != "A" || row.Target != "1.2.3.4" {
		t.Fatalf("unexpected row %+v", row)
	}
}
