package service

import (
	"errors"
	"net/url"
	"testing"

	"github.com/domku/domku-api/internal/config"
	"github.com/domku/domku-api/internal/models"
	"github.com/domku/domku-api/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// stubMailer 捕获外发邮件内容，避免测试依赖 SMTP
type stubMailer struct {
	verifyURL string
	otpCode   string
	resetURL  string
	sendErr   error
}

func (m *stubMailer) SendVerifyEmail(toEmail, name, verifyURL string) error {
	m.verifyURL = verifyURL
	return m.sendErr
}

func (m *stubMailer) SendLoginOTP(toEmail, code string) error {
	m.otpCode = code
	return m.sendErr
}

func (m *stubMailer) SendPasswordReset(toEmail, name, resetURL string) error {
	m.resetURL = resetURL
	return m.sendErr
}

func newAuthTestService(t *testing.T) (*AuthService, *stubMailer, *gorm.DB) {
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
		&models.BannedEmail{},
		&models.ActivityLog{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	mailer := &stubMailer{}
	svc := NewAuthService(
		repository.NewUserRepository(db),
		repository.NewPendingRegistrationRepository(db),
		repository.NewAuthTokenRepository(db),
		repository.NewVerificationCodeRepository(db),
		repository.NewBannedEmailRepository(db),
		repository.NewActivityLogRepository(db),
		mailer,
		config.JWTConfig{SecretKey: "0123456789abcdef0123456789abcdef", ExpireHours: 1},
	)
	return svc, mailer, db
}

func verifyTokenFromURL(t *testing.T, rawURL string) (string, string) {
	t.Helper()
	parsed, err := url.Parse(rawURL)
	if err != nil {
		t.Fatalf("parse url %q failed: %v", rawURL, err)
	}
	return parsed.Query().Get("token"), parsed.Query().Get("email")
}

func TestRegisterVerifyLoginFlow(t *testing.T) {
	svc, mailer, _ := newAuthTestService(t)

	if err := svc.Register(RegisterInput{
		Name:     "Budi",
		Email:    "Budi@Example.com",
		Password: "secret123",
		Origin:   "https://domku.my.id",
	}); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if mailer.verifyURL == "" {
		t.Fatalf("expected verification email to be sent")
	}

	token, email := verifyTokenFromURL(t, mailer.verifyURL)
	if token == "" || email != "budi@example.com" {
		t.Fatalf("unexpected verify link token=%q email=%q", token, email)
	}

	user, err := svc.VerifyEmail(token, email)
	if err != nil {
		t.Fatalf("verify email failed: %v", err)
	}
	if user.Email != "budi@example.com" || user.Name != "Budi" {
		t.Fatalf("unexpected user %+v", user)
	}
	if len(user.APIKey) != 9 {
		t.Fatalf("expected 9-char api key, got %q", user.APIKey)
	}

	// 重复点击验证链接应幂等成功
	again, err := svc.VerifyEmail("", email)
	if err != nil {
		t.Fatalf("repeat verify failed: %v", err)
	}
	if again.ID != user.ID {
		t.Fatalf("expected same user, got %d vs %d", again.ID, user.ID)
	}

	if err := svc.LoginCheck(email, "wrong"); !errors.Is(err, ErrWrongPassword) {
		t.Fatalf("expected ErrWrongPassword, got %v", err)
	}
	if err := svc.LoginCheck(email, "secret123"); err != nil {
		t.Fatalf("login check failed: %v", err)
	}
	if len(mailer.otpCode) != 4 {
		t.Fatalf("expected 4-digit otp, got %q", mailer.otpCode)
	}

	if _, _, err := svc.VerifyOTP(email, "0000", "1.2.3.4"); !errors.Is(err, ErrInvalidOTP) {
		t.Fatalf("expected ErrInvalidOTP, got %v", err)
	}
	loggedIn, sessionToken, err := svc.VerifyOTP(email, mailer.otpCode, "1.2.3.4")
	if err != nil {
		t.Fatalf("verify otp failed: %v", err)
	}
	if loggedIn.ID != user.ID || sessionToken == "" {
		t.Fatalf("unexpected login result user=%d token=%q", loggedIn.ID, sessionToken)
	}

	// 验证码一次性消费
	if _, _, err := svc.VerifyOTP(email, mailer.otpCode, "1.2.3.4"); !errors.Is(err, ErrInvalidOTP) {
		t.Fatalf("expected otp consumed, got %v", err)
	}

	claims, err := svc.ParseSessionToken(sessionToken)
	if err != nil {
		t.Fatalf("parse session token failed: %v", err)
	}
	if claims.UserID != user.ID || claims.Email != email {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if _, err := svc.ParseSessionToken(sessionToken + "x"); !errors.Is(err, ErrInvalidSessionToken) {
		t.Fatalf("expected ErrInvalidSessionToken, got %v", err)
	}
}

func TestRegisterRejections(t *testing.T) {
	svc, _, db := newAuthTestService(t)

	if err := svc.Register(RegisterInput{Name: "X", Email: "bad-email", Password: "pw"}); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("expected ErrInvalidEmail, got %v", err)
	}
	if err := svc.Register(RegisterInput{Name: "", Email: "a@b.co", Password: "pw"}); !errors.Is(err, ErrIncompleteInput) {
		t.Fatalf("expected ErrIncompleteInput, got %v", err)
	}

	if err := db.Create(&models.BannedEmail{Email: "banned@b.co", Reason: "abuse"}).Error; err != nil {
		t.Fatalf("seed banned email failed: %v", err)
	}
	if err := svc.Register(RegisterInput{Name: "X", Email: "banned@b.co", Password: "pw"}); !errors.Is(err, ErrEmailBanned) {
		t.Fatalf("expected ErrEmailBanned, got %v", err)
	}
	if err := svc.LoginCheck("banned@b.co", "pw"); !errors.Is(err, ErrEmailBanned) {
		t.Fatalf("expected ErrEmailBanned on login, got %v", err)
	}

	if err := db.Create(&models.User{Email: "taken@b.co", Name: "T", PasswordHash: "x", APIKey: "abcd123!@"}).Error; err != nil {
		t.Fatalf("seed user failed: %v", err)
	}
	if err := svc.Register(RegisterInput{Name: "X", Email: "taken@b.co", Password: "pw"}); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestRegisterTwiceReplacesPending(t *testing.T) {
	svc, mailer, db := newAuthTestService(t)

	if err := svc.Register(RegisterInput{Name: "Budi", Email: "budi@b.co", Password: "firstpass1", Origin: "https://domku.my.id"}); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	firstURL := mailer.verifyURL
	if err := svc.Register(RegisterInput{Name: "Budi B", Email: "budi@b.co", Password: "secondpass1", Origin: "https://domku.my.id"}); err != nil {
		t.Fatalf("second register failed: %v", err)
	}
	if mailer.verifyURL == firstURL {
		t.Fatalf("expected a fresh verification link")
	}

	// 同一邮箱只保留最后一次的待注册行
	var pendingCount int64
	if err := db.Model(&models.PendingRegistration{}).Where("email = ?", "budi@b.co").Count(&pendingCount).Error; err != nil {
		t.Fatalf("count pending failed: %v", err)
	}
	if pendingCount != 1 {
		t.Fatalf("expected one pending row, got %d", pendingCount)
	}

	token, email := verifyTokenFromURL(t, mailer.verifyURL)
	user, err := svc.VerifyEmail(token, email)
	if err != nil {
		t.Fatalf("verify email failed: %v", err)
	}
	if user.Name != "Budi B" {
		t.Fatalf("expected latest registration to win, got %q", user.Name)
	}
	if err := svc.LoginCheck(email, "firstpass1"); !errors.Is(err, ErrWrongPassword) {
		t.Fatalf("expected first password rejected, got %v", err)
	}
	if err := svc.LoginCheck(email, "secondpass1"); err != nil {
		t.Fatalf("expected second password accepted, got %v", err)
	}
}

func TestForgotAndResetPassword(t *testing.T) {
	svc, mailer, _ := newAuthTestService(t)

	if err := svc.ForgotPassword("nobody@b.co", "https://domku.my.id"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}

	if err := svc.Register(RegisterInput{Name: "Sari", Email: "sari@b.co", Password: "oldpass1", Origin: "https://domku.my.id"}); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	token, email := verifyTokenFromURL(t, mailer.verifyURL)
	if _, err := svc.VerifyEmail(token, email); err != nil {
		t.Fatalf("verify email failed: %v", err)
	}

	if err := svc.ForgotPassword("sari@b.co", "https://domku.my.id"); err != nil {
		t.Fatalf("forgot password failed: %v", err)
	}
	resetToken, _ := verifyTokenFromURL(t, mailer.resetURL)
	if resetToken == "" {
		t.Fatalf("expected reset token in email")
	}

	if err := svc.ResetPassword(resetToken, "newpass1"); err != nil {
		t.Fatalf("reset password failed: %v", err)
	}
	// 重置令牌一次性消费
	if err := svc.ResetPassword(resetToken, "again"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken on reuse, got %v", err)
	}

	if err := svc.LoginCheck("sari@b.co", "oldpass1"); !errors.Is(err, ErrWrongPassword) {
		t.Fatalf("expected old password rejected, got %v", err)
	}
	if err := svc.LoginCheck("sari@b.co", "newpass1"); err != nil {
		t.Fatalf("expected new password accepted, got %v", err)
	}
}
