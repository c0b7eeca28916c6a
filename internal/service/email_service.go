package service

import (
	"bytes"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"mime"
	"net/mail"
	"net/smtp"
	"strings"

	"github.com/domku/domku-api/internal/config"
)

// EmailService 邮件发送服务
type EmailService struct {
	cfg *config.EmailConfig
}

// NewEmailService 创建邮件服务
func NewEmailService(cfg *config.EmailConfig) *EmailService {
	return &EmailService{cfg: cfg}
}

// SendVerifyEmail 发送注册验证邮件，verifyURL 为带令牌的前端链接
func (s *EmailService) SendVerifyEmail(toEmail, name, verifyURL string) error {
	message := fmt.Sprintf(
		"<p>Halo <strong>%s</strong>,</p>"+
			"<p>Terima kasih telah mendaftar di Domku Manager. Untuk mulai mengelola subdomain dan DNS Anda, silakan verifikasi alamat email Anda dengan menekan tombol di bawah ini.</p>"+
			"<p>Link ini hanya berlaku selama 10 menit demi keamanan akun Anda.</p>",
		name)
	html := buildHTMLTemplate("Verifikasi Akun", message, "Verifikasi Email Saya", verifyURL, "")
	return s.sendHTMLEmail(toEmail, "Selesaikan Pendaftaran Anda", html)
}

// SendLoginOTP 发送登录验证码邮件
func (s *EmailService) SendLoginOTP(toEmail, code string) error {
	message := "<p>Kami mendeteksi permintaan masuk ke akun Anda. Gunakan kode OTP di bawah ini untuk melanjutkan.</p>" +
		"<p>Jangan berikan kode ini kepada siapa pun.</p>"
	html := buildHTMLTemplate("Kode Masuk", message, "", "", code)
	return s.sendHTMLEmail(toEmail, "Kode OTP Login", html)
}

// SendPasswordReset 发送密码重置邮件
func (s *EmailService) SendPasswordReset(toEmail, name, resetURL string) error {
	message := fmt.Sprintf(
		"<p>Halo <strong>%s</strong>,</p>"+
			"<p>Kami menerima permintaan untuk mereset password akun Anda. Jika ini bukan Anda, abaikan email ini.</p>",
		name)
	html := buildHTMLTemplate("Reset Password", message, "Ubah Password", resetURL, "")
	return s.sendHTMLEmail(toEmail, "Permintaan Reset Password", html)
}

// SendNotificationEmail 发送系统通知邮件
func (s *EmailService) SendNotificationEmail(toEmail, subject, message string) error {
	html := buildHTMLTemplate(subject, message, "", "", "")
	return s.sendHTMLEmail(toEmail, subject, html)
}

// ContactAttachment 联系表单附件
type ContactAttachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// SendContactMessage 将联系表单转发给运营邮箱，附件可选
func (s *EmailService) SendContactMessage(replyTo, subject, body string, attachment *ContactAttachment) error {
	if s.cfg == nil || !s.cfg.Enabled {
		return ErrEmailServiceDisabled
	}
	to := strings.TrimSpace(s.cfg.ContactTo)
	if to == "" {
		to = s.cfg.From
	}
	content := fmt.Sprintf("<p><strong>Dari:</strong> %s</p><div>%s</div>", replyTo, body)
	html := buildHTMLTemplate("Pesan Baru", content, "", "", "")
	if attachment == nil {
		return s.sendHTMLEmail(to, subject, html)
	}
	return s.sendMultipartEmail(to, subject, html, attachment)
}

func (s *EmailService) sendHTMLEmail(toEmail, subject, html string) error {
	if err := s.checkReady(toEmail); err != nil {
		return err
	}
	from := buildFromAddress(s.cfg.From, s.cfg.FromName)
	msg := buildEmailMessage(from, toEmail, subject, html)
	return s.deliver(toEmail, []byte(msg))
}

func (s *EmailService) sendMultipartEmail(toEmail, subject, html string, attachment *ContactAttachment) error {
	if err := s.checkReady(toEmail); err != nil {
		return err
	}
	from := buildFromAddress(s.cfg.From, s.cfg.FromName)
	msg := buildMultipartMessage(from, toEmail, subject, html, attachment)
	return s.deliver(toEmail, msg)
}

func (s *EmailService) checkReady(toEmail string) error {
	if s.cfg == nil || !s.cfg.Enabled {
		return ErrEmailServiceDisabled
	}
	if s.cfg.Host == "" || s.cfg.Port == 0 || s.cfg.From == "" {
		return ErrEmailServiceNotConfigured
	}
	if _, err := mail.ParseAddress(toEmail); err != nil {
		return ErrInvalidEmail
	}
	return nil
}

func (s *EmailService) deliver(toEmail string, msg []byte) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	var auth smtp.Auth
	if s.cfg.Username != "" || s.cfg.Password != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	if s.cfg.UseSSL {
		return normalizeEmailSendError(sendMailWithSSL(addr, auth, s.cfg.Host, s.cfg.From, []string{toEmail}, msg))
	}
	if s.cfg.UseTLS {
		return normalizeEmailSendError(sendMailWithStartTLS(addr, auth, s.cfg.Host, s.cfg.From, []string{toEmail}, msg))
	}
	return normalizeEmailSendError(sendMailPlain(addr, auth, s.cfg.Host, s.cfg.From, []string{toEmail}, msg))
}

// buildHTMLTemplate 统一的邮件外壳：标题、正文、可选按钮、可选大号验证码
func buildHTMLTemplate(title, message, buttonText, buttonURL, bigCode string) string {
	var buf bytes.Buffer
	buf.WriteString(`<div style="font-family:Arial,sans-serif;max-width:560px;margin:0 auto;padding:24px;border:1px solid #eee;border-radius:12px">`)
	buf.WriteString(fmt.Sprintf(`<h2 style="color:#1a1a2e">%s</h2>`, title))
	buf.WriteString(message)
	if bigCode != "" {
		buf.WriteString(fmt.Sprintf(`<p style="font-size:32px;letter-spacing:8px;font-weight:bold;text-align:center;margin:24px 0">%s</p>`, bigCode))
	}
	if buttonText != "" && buttonURL != "" {
		buf.WriteString(fmt.Sprintf(
			`<p style="text-align:center;margin:24px 0"><a href="%s" style="background:#4f46e5;color:#fff;padding:12px 24px;border-radius:8px;text-decoration:none">%s</a></p>`,
			buttonURL, buttonText))
	}
	buf.WriteString(`<p style="color:#888;font-size:12px">Domku Manager</p>`)
	buf.WriteString(`</div>`)
	return buf.String()
}

func buildFromAddress(from, name string) string {
	if strings.TrimSpace(name) == "" {
		return from
	}
	encoded := mime.QEncoding.Encode("UTF-8", name)
	return (&mail.Address{Name: encoded, Address: from}).String()
}

func buildEmailMessage(from, to, subject, body string) string {
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("From: %s\r\n", from))
	buf.WriteString(fmt.Sprintf("To: %s\r\n", to))
	buf.WriteString(fmt.Sprintf("Subject: %s\r\n", mime.QEncoding.Encode("UTF-8", subject)))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(body)
	return buf.String()
}

func buildMultipartMessage(from, to, subject, html string, attachment *ContactAttachment) []byte {
	boundary := "domku-mail-boundary"
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("From: %s\r\n", from))
	buf.WriteString(fmt.Sprintf("To: %s\r\n", to))
	buf.WriteString(fmt.Sprintf("Subject: %s\r\n", mime.QEncoding.Encode("UTF-8", subject)))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString(fmt.Sprintf("Content-Type: multipart/mixed; boundary=%q\r\n", boundary))
	buf.WriteString("\r\n")

	buf.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	buf.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
	buf.WriteString(html)
	buf.WriteString("\r\n")

	contentType := attachment.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	buf.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	buf.WriteString(fmt.Sprintf("Content-Type: %s\r\n", contentType))
	buf.WriteString("Content-Transfer-Encoding: base64\r\n")
	buf.WriteString(fmt.Sprintf("Content-Disposition: attachment; filename=%q\r\n\r\n", attachment.Filename))

	encoded := base64.StdEncoding.EncodeToString(attachment.Data)
	for len(encoded) > 76 {
		buf.WriteString(encoded[:76])
		buf.WriteString("\r\n")
		encoded = encoded[76:]
	}
	buf.WriteString(encoded)
	buf.WriteString("\r\n")
	buf.WriteString(fmt.Sprintf("--%s--\r\n", boundary))
	return buf.Bytes()
}

func sendMailWithSSL(addr string, auth smtp.Auth, host, from string, to []string, msg []byte) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: host})
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, host)
	if err != nil {
		return err
	}
	defer client.Close()

	if auth != nil {
		if ok, _ := client.Extension("AUTH"); ok {
			if err := client.Auth(auth); err != nil {
				return err
			}
		}
	}

	return sendSMTPData(client, from, to, msg)
}

func sendMailWithStartTLS(addr string, auth smtp.Auth, host, from string, to []string, msg []byte) error {
	client, err := smtp.Dial(addr)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.StartTLS(&tls.Config{ServerName: host}); err != nil {
		return err
	}

	if auth != nil {
		if ok, _ := client.Extension("AUTH"); ok {
			if err := client.Auth(auth); err != nil {
				return err
			}
		}
	}

	return sendSMTPData(client, from, to, msg)
}

func sendMailPlain(addr string, auth smtp.Auth, host, from string, to []string, msg []byte) error {
	client, err := smtp.Dial(addr)
	if err != nil {
		return err
	}
	defer client.Close()

	if auth != nil {
		if ok, _ := client.Extension("AUTH"); ok {
			if err := client.Auth(auth); err != nil {
				return err
			}
		}
	}

	return sendSMTPData(client, from, to, msg)
}

func sendSMTPData(client *smtp.Client, from string, to []string, msg []byte) error {
	if err := client.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}

func normalizeEmailSendError(err error) error {
	if err == nil {
		return nil
	}
	if isEmailRecipientRejected(err) {
		return ErrEmailRecipientRejected
	}
	return err
}

func isEmailRecipientRejected(err error) bool {
	if err == nil {
		return false
	}
	message := strings.ToLower(strings.TrimSpace(err.Error()))
	if message == "" {
		return false
	}
	keywords := []string{
		"no such recipient",
		"no such user",
		"recipient not found",
		"recipient address rejected",
		"invalid recipient",
		"user unknown",
		"unknown user",
		"unknown mailbox",
		"mailbox unavailable",
	}
	for _, keyword := range keywords {
		if strings.Contains(message, keyword) {
			return true
		}
	}
	if strings.Contains(message, "550") {
		hints := []string{"recipient", "user", "mailbox", "address", "rcpt"}
		for _, hint := range hints {
			if strings.Contains(message, hint) {
				return true
			}
		}
	}
	return false
}
