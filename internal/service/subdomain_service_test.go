package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/domku/domku-api/internal/config"
	"github.com/domku/domku-api/internal/models"
	"github.com/domku/domku-api/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// fakeDNSServer 内存里的服务商记录表，按照服务商的信封格式应答
type fakeDNSServer struct {
	records map[string]map[string]string // recordID -> fields
	nextID  int
}

func newFakeDNSServer(t *testing.T) (*httptest.Server, *fakeDNSServer) {
	t.Helper()
	fake := &fakeDNSServer{records: map[string]map[string]string{}}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet:
			name := r.URL.Query().Get("name")
			result := []map[string]string{}
			for id, rec := range fake.records {
				if rec["name"] == name {
					entry := map[string]string{"id": id}
					for k, v := range rec {
						entry[k] = v
					}
					result = append(result, entry)
				}
			}
			json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "result": result})
		case r.Method == http.MethodPost:
			var body struct {
				Type    string `json:"type"`
				Name    string `json:"name"`
				Content string `json:"content"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Fatalf("decode create body failed: %v", err)
			}
			fake.nextID++
			id := fmt.Sprintf("rec-%d", fake.nextID)
			fake.records[id] = map[string]string{
				"type": body.Type, "name": body.Name, "content": body.Content,
			}
			json.NewEncoder(w).Encode(map[string]interface{}{
				"success": true,
				"result":  map[string]string{"id": id, "type": body.Type, "name": body.Name, "content": body.Content},
			})
		case r.Method == http.MethodDelete:
			parts := strings.Split(r.URL.Path, "/")
			id := parts[len(parts)-1]
			if _, ok := fake.records[id]; !ok {
				json.NewEncoder(w).Encode(map[string]interface{}{
					"success": false,
					"errors":  []map[string]interface{}{{"code": 81044, "message": "Record does not exist"}},
				})
				return
			}
			delete(fake.records, id)
			json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "result": map[string]string{"id": id}})
		}
	}))
	t.Cleanup(server.Close)
	return server, fake
}

type subdomainTestEnv struct {
	svc  *SubdomainService
	db   *gorm.DB
	fake *fakeDNSServer
	user *models.User
}

func newSubdomainTestEnv(t *testing.T, maxPerUser int) *subdomainTestEnv {
	t.Helper()

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

	server, fake := newFakeDNSServer(t)

	domain := models.Domain{Domain: "domku.my.id", ZoneID: "zone-1", APIToken: "token-1", IsActive: true}
	if err := db.Create(&domain).Error; err != nil {
		t.Fatalf("seed domain failed: %v", err)
	}
	user := models.User{Email: "u@b.co", Name: "U", PasswordHash: "x", APIKey: "abcd123!@"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user failed: %v", err)
	}

	svc := NewSubdomainService(
		repository.NewSubdomainRepository(db),
		repository.NewDomainRepository(db),
		repository.NewActivityLogRepository(db),
		nil,
		config.DNSConfig{APIBase: server.URL},
		config.SubdomainConfig{MaxPerUser: maxPerUser, DefaultParent: "domku.my.id"},
	)
	return &subdomainTestEnv{svc: svc, db: db, fake: fake, user: &user}
}

func TestCreateSubdomainSuccess(t *testing.T) {
	env := newSubdomainTestEnv(t, 30)

	row, err := env.svc.Create(context.Background(), env.user, CreateInput{
		Label:  " MySite ",
		Target: "1.2.3.4",
		IP:     "9.9.9.9",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if row.Name != "mysite.domku.my.id" || row.Type != "A" || row.Target != "1.2.3.4" {
		t.Fatalf("unexpected row %+v", row)
	}
	if row.RecordID == "" || row.RecordID == "unknown" {
		t.Fatalf("expected provider record id, got %q", row.RecordID)
	}
	if len(env.fake.records) != 1 {
		t.Fatalf("expected one provider record, got %d", len(env.fake.records))
	}

	var logCount int64
	if err := env.db.Model(&models.ActivityLog{}).Where("action = ?", "CREATE_SUBDOMAIN").Count(&logCount).Error; err != nil {
		t.Fatalf("count logs failed: %v", err)
	}
	if logCount != 1 {
		t.Fatalf("expected one activity log, got %d", logCount)
	}
}

func TestCreateSubdomainValidation(t *testing.T) {
	env := newSubdomainTestEnv(t, 30)
	ctx := context.Background()

	cases := []struct {
		name  string
		input CreateInput
		want  error
	}{
		{"missing target", CreateInput{Label: "ok"}, ErrIncompleteInput},
		{"invalid label", CreateInput{Label: "-bad-", Target: "1.2.3.4"}, ErrInvalidSubdomainName},
		{"banned label", CreateInput{Label: "admin", Target: "1.2.3.4"}, ErrSubdomainNameBanned},
		{"invalid ip", CreateInput{Label: "okname", Target: "not-an-ip"}, ErrInvalidTarget},
		{"private ip", CreateInput{Label: "okname", Target: "192.168.1.1"}, ErrPrivateIPTarget},
		{"private ip via aaaa", CreateInput{Label: "okname", RecordType: "AAAA", Target: "10.0.0.5"}, ErrPrivateIPTarget},
		{"unknown parent", CreateInput{Label: "okname", Target: "1.2.3.4", ParentDomain: "other.id"}, ErrDomainNotFound},
	}
	for _, c := range cases {
		if _, err := env.svc.Create(ctx, env.user, c.input); !errors.Is(err, c.want) {
			t.Fatalf("%s: expected %v, got %v", c.name, c.want, err)
		}
	}
	if len(env.fake.records) != 0 {
		t.Fatalf("validation failures must not touch the provider, got %d records", len(env.fake.records))
	}
}

func TestCreateSubdomainCNAMENormalized(t *testing.T) {
	env := newSubdomainTestEnv(t, 30)

	row, err := env.svc.Create(context.Background(), env.user, CreateInput{
		Label:      "docs",
		RecordType: "cname",
		Target:     "https://Pages.GitHub.io/",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if row.Type != "CNAME" || row.Target != "pages.github.io" {
		t.Fatalf("unexpected row %+v", row)
	}
}

func TestCreateSubdomainQuota(t *testing.T) {
	env := newSubdomainTestEnv(t, 2)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := env.svc.Create(ctx, env.user, CreateInput{
			Label:  fmt.Sprintf("site%d", i),
			Target: "1.2.3.4",
		}); err != nil {
			t.Fatalf("create %d failed: %v", i, err)
		}
	}
	if _, err := env.svc.Create(ctx, env.user, CreateInput{Label: "overflow", Target: "1.2.3.4"}); !errors.Is(err, ErrSubdomainQuota) {
		t.Fatalf("expected ErrSubdomainQuota, got %v", err)
	}
}

func TestCreateSubdomainTakenAtProvider(t *testing.T) {
	env := newSubdomainTestEnv(t, 30)

	env.fake.records["rec-x"] = map[string]string{
		"type": "A", "name": "taken.domku.my.id", "content": "5.6.7.8",
	}
	if _, err := env.svc.Create(context.Background(), env.user, CreateInput{
		Label:  "taken",
		Target: "1.2.3.4",
	}); !errors.Is(err, ErrSubdomainTaken) {
		t.Fatalf("expected ErrSubdomainTaken, got %v", err)
	}
}

func TestDeleteSubdomain(t *testing.T) {
	env := newSubdomainTestEnv(t, 30)
	ctx := context.Background()

	row, err := env.svc.Create(ctx, env.user, CreateInput{Label: "gone", Target: "1.2.3.4"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	other := models.User{Email: "other@b.co", Name: "O", PasswordHash: "x", APIKey: "wxyz987#$"}
	if err := env.db.Create(&other).Error; err != nil {
		t.Fatalf("seed other user failed: %v", err)
	}
	if err := env.svc.Delete(ctx, &other, row.ID, "9.9.9.9"); !errors.Is(err, ErrNotSubdomainOwner) {
		t.Fatalf("expected ErrNotSubdomainOwner, got %v", err)
	}

	if err := env.svc.Delete(ctx, env.user, row.ID, "9.9.9.9"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if len(env.fake.records) != 0 {
		t.Fatalf("expected provider record removed, got %d", len(env.fake.records))
	}
	if err := env.svc.Delete(ctx, env.user, row.ID, "9.9.9.9"); !errors.Is(err, ErrSubdomainNotFound) {
		t.Fatalf("expected ErrSubdomainNotFound, got %v", err)
	}
}

func TestPurgeUserRecords(t *testing.T) {
	env := newSubdomainTestEnv(t, 30)
	ctx := context.Background()

	for _, label := range []string{"one", "two"} {
		if _, err := env.svc.Create(ctx, env.user, CreateInput{Label: label, Target: "1.2.3.4"}); err != nil {
			t.Fatalf("create %s failed: %v", label, err)
		}
	}
	if err := env.svc.PurgeUserRecords(ctx, env.user.ID); err != nil {
		t.Fatalf("purge failed: %v", err)
	}
	if len(env.fake.records) != 0 {
		t.Fatalf("expected provider records removed, got %d", len(env.fake.records))
	}
	rows, err := env.svc.ListByUser(env.user.ID)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected no local rows, got %d", len(rows))
	}
}

func TestCreateSubdomainUniqueNameRace(t *testing.T) {
	env := newSubdomainTestEnv(t, 30)

	// 先占住本地行，模拟并发窗口里另一请求已落库
	if err := env.db.Create(&models.Subdomain{
		UserID:       env.user.ID + 100,
		Name:         "raced.domku.my.id",
		Target:       "5.6.7.8",
		Type:         "A",
		RecordID:     "rec-other",
		ParentDomain: "domku.my.id",
	}).Error; err != nil {
		t.Fatalf("seed existing row failed: %v", err)
	}

	if _, err := env.svc.Create(context.Background(), env.user, CreateInput{
		Label:  "raced",
		Target: "1.2.3.4",
	}); !errors.Is(err, ErrSubdomainTaken) {
		t.Fatalf("expected ErrSubdomainTaken on unique violation, got %v", err)
	}
}
