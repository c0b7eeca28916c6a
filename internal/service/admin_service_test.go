package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/domku/domku-api/internal/config"
	"github.com/domku/domku-api/internal/models"
	"github.com/domku/domku-api/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func newAdminTestEnv(t *testing.T) (*AdminService, *gorm.DB) {
	t.Helper()

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
		&models.SystemNotification{},
		&models.Setting{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	subRepo := repository.NewSubdomainRepository(db)
	logRepo := repository.NewActivityLogRepository(db)

	subdomainService := NewSubdomainService(
		subRepo,
		repository.NewDomainRepository(db),
		logRepo,
		nil,
		config.DNSConfig{},
		config.SubdomainConfig{MaxPerUser: 30, DefaultParent: "domku.my.id"},
	)
	userService := NewUserService(
		userRepo,
		repository.NewAuthTokenRepository(db),
		repository.NewPendingRegistrationRepository(db),
		repository.NewVerificationCodeRepository(db),
		logRepo,
		subdomainService,
	)
	adminService := NewAdminService(
		userRepo,
		subRepo,
		logRepo,
		repository.NewBannedEmailRepository(db),
		repository.NewIPBlacklistRepository(db),
		repository.NewNotificationRepository(db),
		NewSettingService(repository.NewSettingRepository(db)),
		userService,
		nil,
	)
	return adminService, db
}

func seedAdminTestUser(t *testing.T, db *gorm.DB, email, apiKey string) *models.User {
	t.Helper()
	user := models.User{Email: email, Name: "N", PasswordHash: "x", APIKey: apiKey}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user %s failed: %v", email, err)
	}
	return &user
}

func TestListUsersRiskLevels(t *testing.T) {
	svc, db := newAdminTestEnv(t)

	low := seedAdminTestUser(t, db, "low@b.co", "key-low01")
	medium := seedAdminTestUser(t, db, "mid@b.co", "key-mid01")
	high := seedAdminTestUser(t, db, "high@b.co", "key-high1")

	for i := 0; i < 21; i++ {
		if err := db.Create(&models.Subdomain{
			UserID: high.ID, Name: fmt.Sprintf("h%d.domku.my.id", i),
			Target: "1.2.3.4", Type: "A", RecordID: "r", ParentDomain: "domku.my.id",
		}).Error; err != nil {
			t.Fatalf("seed subdomain failed: %v", err)
		}
	}
	for i := 0; i < 101; i++ {
		if err := db.Create(&models.ActivityLog{UserID: medium.ID, Action: "USER_LOGIN", Details: "x"}).Error; err != nil {
			t.Fatalf("seed log failed: %v", err)
		}
	}

	users, total, err := svc.ListUsers(repository.UserListFilter{Page: 1, PageSize: 50})
	if err != nil {
		t.Fatalf("list users failed: %v", err)
	}
	if total != 3 {
		t.Fatalf("expected 3 users, got %d", total)
	}
	levels := map[uint]string{}
	for _, u := range users {
		levels[u.ID] = u.RiskLevel
	}
	if levels[low.ID] != "LOW" || levels[medium.ID] != "MEDIUM" || levels[high.ID] != "HIGH" {
		t.Fatalf("unexpected risk levels %v", levels)
	}
}

func TestGodActionBanUser(t *testing.T) {
	svc, db := newAdminTestEnv(t)
	user := seedAdminTestUser(t, db, "target@b.co", "key-tg001")
	if err := db.Create(&models.ActivityLog{UserID: user.ID, Action: "USER_LOGIN", Details: "x"}).Error; err != nil {
		t.Fatalf("seed log failed: %v", err)
	}

	result, err := svc.GodAction(context.Background(), "ban_user", "Target@B.co")
	if err != nil {
		t.Fatalf("god action failed: %v", err)
	}
	if result != "user banned and purged" {
		t.Fatalf("unexpected result %q", result)
	}

	var userCount, logCount, bannedCount int64
	db.Model(&models.User{}).Count(&userCount)
	db.Model(&models.ActivityLog{}).Count(&logCount)
	db.Model(&models.BannedEmail{}).Count(&bannedCount)
	if userCount != 0 || logCount != 0 || bannedCount != 1 {
		t.Fatalf("expected full cascade, got users=%d logs=%d banned=%d", userCount, logCount, bannedCount)
	}

	// 未注册邮箱仅封禁
	result, err = svc.GodAction(context.Background(), "BAN_USER", "ghost@b.co")
	if err != nil {
		t.Fatalf("god action failed: %v", err)
	}
	if result != "email banned" {
		t.Fatalf("unexpected result %q", result)
	}
}

func TestGodActionWipeLogsAndUnknown(t *testing.T) {
	svc, db := newAdminTestEnv(t)
	user := seedAdminTestUser(t, db, "u@b.co", "key-u0001")
	for i := 0; i < 3; i++ {
		if err := db.Create(&models.ActivityLog{UserID: user.ID, Action: "USER_LOGIN", Details: "x"}).Error; err != nil {
			t.Fatalf("seed log failed: %v", err)
		}
	}

	result, err := svc.GodAction(context.Background(), "WIPE_LOGS", "")
	if err != nil {
		t.Fatalf("wipe logs failed: %v", err)
	}
	if result != "logs wiped" {
		t.Fatalf("unexpected result %q", result)
	}
	var logCount int64
	db.Model(&models.ActivityLog{}).Count(&logCount)
	if logCount != 0 {
		t.Fatalf("expected logs wiped, got %d", logCount)
	}

	if _, err := svc.GodAction(context.Background(), "EXPLODE", ""); !errors.Is(err, ErrUnknownGodAction) {
		t.Fatalf("expected ErrUnknownGodAction, got %v", err)
	}
}

func TestBlacklistManagement(t *testing.T) {
	svc, _ := newAdminTestEnv(t)

	if err := svc.AddBlacklistEntry(" 1.2.3.4 ", "<b>abuse</b>"); err != nil {
		t.Fatalf("add blacklist failed: %v", err)
	}
	if err := svc.AddBlacklistEntry("", "x"); !errors.Is(err, ErrIncompleteInput) {
		t.Fatalf("expected ErrIncompleteInput, got %v", err)
	}

	entries, err := svc.ListBlacklist()
	if err != nil {
		t.Fatalf("list blacklist failed: %v", err)
	}
	if len(entries) != 1 || entries[0].IPAddress != "1.2.3.4" || entries[0].Reason != "abuse" {
		t.Fatalf("unexpected entries %+v", entries)
	}

	if err := svc.RemoveBlacklistEntry(entries[0].ID); err != nil {
		t.Fatalf("remove blacklist failed: %v", err)
	}
	entries, _ = svc.ListBlacklist()
	if len(entries) != 0 {
		t.Fatalf("expected empty blacklist, got %d", len(entries))
	}
}

func TestNotificationsLifecycle(t *testing.T) {
	svc, _ := newAdminTestEnv(t)

	row, err := svc.CreateNotification("Maintenance", "Scheduled downtime tonight", "bogus-type", "")
	if err != nil {
		t.Fatalf("create notification failed: %v", err)
	}
	if row.Type != "info" {
		t.Fatalf("expected type fallback to info, got %q", row.Type)
	}
	if _, err := svc.CreateNotification("", "x", "info", ""); !errors.Is(err, ErrIncompleteInput) {
		t.Fatalf("expected ErrIncompleteInput, got %v", err)
	}

	rows, err := svc.ListNotifications(0)
	if err != nil || len(rows) != 1 {
		t.Fatalf("list notifications: rows=%d err=%v", len(rows), err)
	}
	if err := svc.DeleteNotification(row.ID); err != nil {
		t.Fatalf("delete notification failed: %v", err)
	}
}

func TestRegenerateAllKeys(t *testing.T) {
	svc, db := newAdminTestEnv(t)
	first := seedAdminTestUser(t, db, "a@b.co", "aaaa111!@")
	second := seedAdminTestUser(t, db, "b@b.co", "bbbb222#$")

	count, err := svc.RegenerateAllKeys()
	if err != nil {
		t.Fatalf("regenerate all keys failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 rotations, got %d", count)
	}

	var reloadedFirst, reloadedSecond models.User
	db.First(&reloadedFirst, first.ID)
	db.First(&reloadedSecond, second.ID)
	if reloadedFirst.APIKey == "aaaa111!@" || reloadedSecond.APIKey == "bbbb222#$" {
		t.Fatalf("expected api keys rotated")
	}
	if len(reloadedFirst.APIKey) != 9 || len(reloadedSecond.APIKey) != 9 {
		t.Fatalf("unexpected key lengths %q %q", reloadedFirst.APIKey, reloadedSecond.APIKey)
	}
}

func TestGetStats(t *testing.T) {
	svc, db := newAdminTestEnv(t)
	user := seedAdminTestUser(t, db, "s@b.co", "ssss333%^")
	if err := db.Create(&models.Subdomain{
		UserID: user.ID, Name: "s.domku.my.id", Target: "1.2.3.4",
		Type: "A", RecordID: "r", ParentDomain: "domku.my.id",
	}).Error; err != nil {
		t.Fatalf("seed subdomain failed: %v", err)
	}
	if err := db.Create(&models.ActivityLog{UserID: user.ID, Action: "USER_LOGIN", Details: "x"}).Error; err != nil {
		t.Fatalf("seed log failed: %v", err)
	}

	stats, err := svc.GetStats()
	if err != nil {
		t.Fatalf("get stats failed: %v", err)
	}
	if stats.Users != 1 || stats.Subdomains != 1 || stats.ActivityLogs != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if len(stats.RecentLogs) != 1 {
		t.Fatalf("expected one recent log, got %d", len(stats.RecentLogs))
	}
}
