package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/domku/domku-api/internal/config"
	"github.com/domku/domku-api/internal/constants"
	"github.com/domku/domku-api/internal/logger"
	"github.com/domku/domku-api/internal/models"
	"github.com/domku/domku-api/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// 邮件令牌有效期
const authTokenTTL = 10 * time.Minute

// AuthMailer 认证链路依赖的邮件发送能力
type AuthMailer interface {
	SendVerifyEmail(toEmail, name, verifyURL string) error
	SendLoginOTP(toEmail, code string) error
	SendPasswordReset(toEmail, name, resetURL string) error
}

// AuthService 注册、登录与会话服务
type AuthService struct {
	users   repository.UserRepository
	pending repository.PendingRegistrationRepository
	tokens  repository.AuthTokenRepository
	codes   repository.VerificationCodeRepository
	banned  repository.BannedEmailRepository
	logs    repository.ActivityLogRepository
	email   AuthMailer
	jwtCfg  config.JWTConfig
}

// NewAuthService 创建认证服务
func NewAuthService(
	users repository.UserRepository,
	pending repository.PendingRegistrationRepository,
	tokens repository.AuthTokenRepository,
	codes repository.VerificationCodeRepository,
	banned repository.BannedEmailRepository,
	logs repository.ActivityLogRepository,
	email AuthMailer,
	jwtCfg config.JWTConfig,
) *AuthService {
	return &AuthService{
		users:   users,
		pending: pending,
		tokens:  tokens,
		codes:   codes,
		banned:  banned,
		logs:    logs,
		email:   email,
		jwtCfg:  jwtCfg,
	}
}

// RegisterInput 注册输入
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Origin   string
}

// SessionClaims 会话令牌声明
type SessionClaims struct {
	UserID uint   `json:"uid"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Register 接收注册请求：写入待验证记录并发送验证邮件，用户行在验证后才创建
func (s *AuthService) Register(input RegisterInput) error {
	name := StripMarkup(input.Name)
	email := NormalizeEmail(StripMarkup(input.Email))
	if name == "" || email == "" || input.Password == "" {
		return ErrIncompleteInput
	}
	if !IsValidEmail(email) {
		return ErrInvalidEmail
	}

	if err := s.ensureNotBanned(email); err != nil {
		return err
	}

	existing, err := s.users.GetByEmail(email)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	if err := s.pending.Replace(&models.PendingRegistration{
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
	}); err != nil {
		return err
	}

	token, err := GenerateAuthToken()
	if err != nil {
		return err
	}
	if err := s.tokens.Replace(&models.AuthToken{
		Email:     email,
		Token:     token,
		Type:      constants.TokenTypeVerifyEmail,
		ExpiresAt: time.Now().Add(authTokenTTL),
	}); err != nil {
		return err
	}

	verifyURL := fmt.Sprintf("%s/verify-email?token=%s&email=%s", strings.TrimRight(input.Origin, "/"), token, email)
	if err := s.email.SendVerifyEmail(email, name, verifyURL); err != nil {
		logger.Errorw("verify_email_send_failed", "email", email, "error", err)
		return err
	}
	return nil
}

// VerifyEmail 消费验证令牌并落地用户。令牌缺失但用户已存在时视为重复点击，幂等成功。
func (s *AuthService) VerifyEmail(token, email string) (*models.User, error) {
	email = NormalizeEmail(email)

	row, err := s.tokens.GetByToken(token, constants.TokenTypeVerifyEmail)
	if err != nil {
		return nil, err
	}
	if row == nil {
		if email != "" {
			existing, err := s.users.GetByEmail(email)
			if err != nil {
				return nil, err
			}
			if existing != nil {
				return existing, nil
			}
		}
		return nil, ErrInvalidToken
	}
	if row.Expired(time.Now()) {
		return nil, ErrTokenExpired
	}

	tokenEmail := NormalizeEmail(row.Email)
	pending, err := s.pending.GetByEmail(tokenEmail)
	if err != nil {
		return nil, err
	}
	if pending == nil {
		return nil, ErrPendingNotFound
	}

	apiKey, err := GenerateCompactKey()
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Email:        tokenEmail,
		Name:         pending.Name,
		PasswordHash: pending.PasswordHash,
		APIKey:       apiKey,
	}
	if err := s.users.Create(user); err != nil {
		return nil, err
	}

	if err := s.pending.DeleteByEmail(tokenEmail); err != nil {
		logger.Warnw("pending_cleanup_failed", "email", tokenEmail, "error", err)
	}
	if err := s.tokens.Delete(row.ID); err != nil {
		logger.Warnw("auth_token_cleanup_failed", "email", tokenEmail, "error", err)
	}

	logger.Infow("user_verified", "email", tokenEmail, "user_id", user.ID)
	return user, nil
}

// LoginCheck 校验邮箱密码并下发登录验证码
func (s *AuthService) LoginCheck(email, password string) error {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return ErrIncompleteInput
	}

	if err := s.ensureNotBanned(email); err != nil {
		return err
	}

	user, err := s.users.GetByEmail(email)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrEmailNotRegistered
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return ErrWrongPassword
	}

	code, err := GenerateOTP()
	if err != nil {
		return err
	}
	if err := s.codes.Upsert(email, code); err != nil {
		return err
	}

	if err := s.email.SendLoginOTP(email, code); err != nil {
		logger.Errorw("login_otp_send_failed", "email", email, "error", err)
		return err
	}
	return nil
}

// VerifyOTP 消费验证码，成功后签发会话令牌并记录登录日志
func (s *AuthService) VerifyOTP(email, code, ip string) (*models.User, string, error) {
	email = NormalizeEmail(email)
	if email == "" || code == "" {
		return nil, "", ErrIncompleteInput
	}

	otp, err := s.codes.GetByEmail(email)
	if err != nil {
		return nil, "", err
	}
	if otp == nil || otp.Code != code {
		return nil, "", ErrInvalidOTP
	}

	user, err := s.users.GetByEmail(email)
	if err != nil {
		return nil, "", err
	}
	if user == nil {
		return nil, "", ErrUserNotFound
	}

	if err := s.codes.DeleteByEmail(email); err != nil {
		logger.Warnw("otp_cleanup_failed", "email", email, "error", err)
	}

	if err := s.logs.Create(&models.ActivityLog{
		UserID:    user.ID,
		Action:    constants.ActionUserLogin,
		Details:   "Berhasil Login",
		IPAddress: ip,
	}); err != nil {
		logger.Warnw("login_log_failed", "user_id", user.ID, "error", err)
	}

	sessionToken, err := s.IssueSessionToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, sessionToken, nil
}

// ForgotPassword 下发密码重置令牌
func (s *AuthService) ForgotPassword(email, origin string) error {
	email = NormalizeEmail(email)
	user, err := s.users.GetByEmail(email)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	token, err := GenerateAuthToken()
	if err != nil {
		return err
	}
	if err := s.tokens.Replace(&models.AuthToken{
		Email:     email,
		Token:     token,
		Type:      constants.TokenTypeResetPassword,
		ExpiresAt: time.Now().Add(authTokenTTL),
	}); err != nil {
		return err
	}

	resetURL := fmt.Sprintf("%s/reset-password?token=%s&email=%s", strings.TrimRight(origin, "/"), token, email)
	if err := s.email.SendPasswordReset(email, user.Name, resetURL); err != nil {
		logger.Errorw("password_reset_send_failed", "email", email, "error", err)
		return err
	}
	return nil
}

// ResetPassword 消费重置令牌并更新密码哈希
func (s *AuthService) ResetPassword(token, newPassword string) error {
	if token == "" || newPassword == "" {
		return ErrIncompleteInput
	}

	row, err := s.tokens.GetByToken(token, constants.TokenTypeResetPassword)
	if err != nil {
		return err
	}
	if row == nil {
		return ErrInvalidToken
	}
	if row.Expired(time.Now()) {
		return ErrTokenExpired
	}

	user, err := s.users.GetByEmail(NormalizeEmail(row.Email))
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hash)
	if err := s.users.Update(user); err != nil {
		return err
	}

	if err := s.tokens.Delete(row.ID); err != nil {
		logger.Warnw("auth_token_cleanup_failed", "email", row.Email, "error", err)
	}
	return nil
}

// IssueSessionToken 为用户签发 HS256 会话令牌
func (s *AuthService) IssueSessionToken(user *models.User) (string, error) {
	expireHours := s.jwtCfg.ExpireHours
	if expireHours <= 0 {
		expireHours = 24
	}
	now := time.Now()
	claims := SessionClaims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expireHours) * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtCfg.SecretKey))
}

// ParseSessionToken 校验并解析会话令牌
func (s *AuthService) ParseSessionToken(tokenString string) (*SessionClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSessionToken
		}
		return []byte(s.jwtCfg.SecretKey), nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidSessionToken
	}
	claims, ok := parsed.Claims.(*SessionClaims)
	if !ok {
		return nil, ErrInvalidSessionToken
	}
	return claims, nil
}

func (s *AuthService) ensureNotBanned(email string) error {
	banned, err := s.banned.GetByEmail(email)
	if err != nil {
		return err
	}
	if banned != nil {
		return ErrEmailBanned
	}
	return nil
}
