// Package main — Service katmanı başlatma.
//
// Sıralama kuralı: TokenService diğerlerinden ÖNCE oluşturulur. Auth middleware
// ona bağlıdır, UserService de cache invalidation için middleware'e bağlıdır.
package main

import (
	"go.uber.org/zap"

	"github.com/akinalp/mygames/config"
	"github.com/akinalp/mygames/pkg/email"
	"github.com/akinalp/mygames/pkg/ratelimit"
	"github.com/akinalp/mygames/services"
	"github.com/akinalp/mygames/ws"
)

// Services, tüm service instance'larını tutan container struct.
type Services struct {
	Token services.TokenService
	Auth  services.AuthService
	User  services.UserService
	Match services.MatchService
}

// RateLimiters, rate limiter instance'larını tutan container.
type RateLimiters struct {
	Login *ratelimit.LoginRateLimiter
}

// initTokenService, refresh token zincirini yöneten service'i oluşturur.
func initTokenService(repos *Repositories, hub ws.EventPublisher, cfg *config.Config, logger *zap.Logger) services.TokenService {
	return services.NewTokenService(
		repos.RefreshToken, repos.User, hub,
		cfg.JWT.Secret, cfg.JWT.AccessExpiry, cfg.JWT.RefreshExpiry,
		logger,
	)
}

// initServices, kalan service'leri ve rate limiter'ları oluşturur.
func initServices(
	repos *Repositories,
	tokens services.TokenService,
	invalidator services.UserInvalidator,
	hub ws.EventPublisher,
	cfg *config.Config,
	logger *zap.Logger,
) (*Services, *RateLimiters) {
	// ─── Email (opsiyonel) ───
	var mailer email.EmailSender
	if cfg.Email.Enabled() {
		mailer = email.NewResendSender(cfg.Email.ResendAPIKey, cfg.Email.FromEmail, cfg.Email.AppURL)
		logger.Info("email service enabled", zap.String("from", cfg.Email.FromEmail))
	} else {
		mailer = email.NewLogSender(logger.Named("email"))
		logger.Warn("email service disabled (RESEND_API_KEY, EMAIL_FROM or APP_URL not set)")
	}

	authService := services.NewAuthService(repos.User, tokens, mailer, services.AuthConfig{
		BcryptCost:           cfg.Security.BcryptCost,
		PasswordMinLength:    cfg.Security.PasswordMinLength,
		RequireVerifiedEmail: cfg.Security.RequireVerifiedEmail,
	}, logger)

	userService := services.NewUserService(repos.User, tokens, invalidator, logger)
	matchService := services.NewMatchService(repos.ClientStorage, hub, cfg.Match.HistoryLimit, logger)

	svcs := &Services{
		Token: tokens,
		Auth:  authService,
		User:  userService,
		Match: matchService,
	}

	limiters := &RateLimiters{
		Login: ratelimit.NewLoginRateLimiter(cfg.RateLimit.LoginMaxAttempts, cfg.RateLimit.LoginWindow),
	}

	return svcs, limiters
}
