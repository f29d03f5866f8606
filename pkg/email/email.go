// Package email, uygulama genelinde email gönderimi için soyutlama katmanı sağlar.
//
// EmailSender interface'i ile gönderim detayları soyutlanır.
// İki implementasyon var:
//   - resendSender: Resend API ile gerçek gönderim
//   - logSender: Resend yapılandırılmamışsa sadece log'a yazar
package email

import (
	"context"
	"fmt"
	"html"

	"github.com/resend/resend-go/v3"
	"go.uber.org/zap"
)

// EmailSender, email gönderimi için interface.
// Service katmanı bu interface'e bağımlıdır, concrete Resend implementasyonuna değil.
type EmailSender interface {
	// SendVerification, email doğrulama linki gönderir.
	// token: plaintext doğrulama token'ı (link'e gömülür).
	SendVerification(ctx context.Context, toEmail, token string) error

	// SendPasswordReset, şifre sıfırlama linki gönderir.
	SendPasswordReset(ctx context.Context, toEmail, token string) error
}

// resendSender, Resend API ile email gönderen EmailSender implementasyonu.
type resendSender struct {
	client    *resend.Client
	fromEmail string // Gönderici adresi (ör: noreply@mygames.app)
	appURL    string // Frontend'in public URL'i, link'lerde kullanılır
}

// NewResendSender, Resend API client'ı ile yeni bir EmailSender oluşturur.
//
// fromEmail Resend'de doğrulanmış bir domain altında olmalı.
func NewResendSender(apiKey, fromEmail, appURL string) EmailSender {
	return &resendSender{
		client:    resend.NewClient(apiKey),
		fromEmail: fromEmail,
		appURL:    appURL,
	}
}

func (s *resendSender) SendVerification(ctx context.Context, toEmail, token string) error {
	link := fmt.Sprintf("%s/verify-email?token=%s", s.appURL, token)
	body := renderTemplate(
		"Verify your email",
		"Thanks for signing up. Confirm your email address to finish setting up your account.",
		"Verify Email",
		link,
		"This link will expire in 24 hours.",
	)
	return s.send(ctx, toEmail, "Verify your email - mygames", body)
}

// SendPasswordReset, şifre sıfırlama email'i gönderir.
//
// Link format: {appURL}/reset-password?token={token}
// Token email'de plaintext olarak bulunur (DB'de SHA-256 hash saklanır).
func (s *resendSender) SendPasswordReset(ctx context.Context, toEmail, token string) error {
	link := fmt.Sprintf("%s/reset-password?token=%s", s.appURL, token)
	body := renderTemplate(
		"Password Reset Request",
		"We received a request to reset your password. Click the button below to choose a new password.",
		"Reset Password",
		link,
		"This link will expire in 1 hour. If you didn't request a password reset, you can safely ignore this email.",
	)
	return s.send(ctx, toEmail, "Reset your password - mygames", body)
}

func (s *resendSender) send(ctx context.Context, toEmail, subject, body string) error {
	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("mygames <%s>", s.fromEmail),
		To:      []string{toEmail},
		Subject: subject,
		Html:    body,
	}

	if _, err := s.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("failed to send %q email: %w", subject, err)
	}
	return nil
}

func renderTemplate(title, intro, button, link, footer string) string {
	link = html.EscapeString(link)
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="margin:0;padding:0;background-color:#1a1a2e;font-family:Arial,Helvetica,sans-serif;">
  <table width="100%%" cellpadding="0" cellspacing="0" style="background-color:#1a1a2e;padding:40px 0;">
    <tr>
      <td align="center">
        <table width="480" cellpadding="0" cellspacing="0" style="background-color:#16213e;border-radius:8px;padding:40px;">
          <tr>
            <td>
              <h1 style="color:#e2e8f0;font-size:24px;margin:0 0 8px 0;">mygames</h1>
              <h2 style="color:#e2e8f0;font-size:18px;margin:0 0 24px 0;">%s</h2>
              <p style="color:#94a3b8;font-size:15px;line-height:1.6;margin:0 0 24px 0;">%s</p>
              <table cellpadding="0" cellspacing="0" style="margin:0 0 24px 0;">
                <tr>
                  <td style="background-color:#6366f1;border-radius:6px;padding:12px 32px;">
                    <a href="%s" style="color:#ffffff;text-decoration:none;font-size:15px;font-weight:600;">%s</a>
                  </td>
                </tr>
              </table>
              <p style="color:#64748b;font-size:13px;line-height:1.6;margin:0 0 16px 0;">%s</p>
              <p style="color:#475569;font-size:13px;line-height:1.6;margin:0;word-break:break-all;">
                If the button doesn't work, copy and paste this link:<br>
                <a href="%s" style="color:#6366f1;">%s</a>
              </p>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`, title, intro, link, button, footer, link, link)
}

// logSender, email gönderimi yapılandırılmadığında kullanılır.
// Hiçbir şey göndermez, sadece olayı log'a yazar. Token log'a yazılmaz.
type logSender struct {
	logger *zap.Logger
}

// NewLogSender, no-op EmailSender oluşturur.
func NewLogSender(logger *zap.Logger) EmailSender {
	return &logSender{logger: logger}
}

func (s *logSender) SendVerification(_ context.Context, toEmail, _ string) error {
	s.logger.Info("email disabled, verification mail not sent", zap.String("to", toEmail))
	return nil
}

func (s *logSender) SendPasswordReset(_ context.Context, toEmail, _ string) error {
	s.logger.Info("email disabled, password reset mail not sent", zap.String("to", toEmail))
	return nil
}
