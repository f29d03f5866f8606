package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/akinalp/mygames/models"
	"github.com/akinalp/mygames/pkg"
	"github.com/akinalp/mygames/pkg/email"
	"github.com/akinalp/mygames/repository"
	"github.com/akinalp/mygames/ws"
)

const (
	verificationTokenTTL = 24 * time.Hour
	resetTokenTTL        = time.Hour
	accountTokenBytes    = 32

	// ForgotPasswordMessage, email kayıtlı olsun olmasın aynı döner.
	// Böylece endpoint hangi email'lerin kayıtlı olduğunu sızdırmaz.
	ForgotPasswordMessage = "if an account with that email exists, a password reset link has been sent"
)

// AuthService, hesap yaşam döngüsü: kayıt, giriş, email doğrulama, şifre sıfırlama.
type AuthService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.RegisterResponse, error)
	Login(ctx context.Context, req *models.LoginRequest, clientIP string) (*models.AuthResponse, error)
	VerifyEmail(ctx context.Context, token string) error
	ForgotPassword(ctx context.Context, req *models.ForgotPasswordRequest) (string, error)
	ResetPassword(ctx context.Context, req *models.ResetPasswordRequest) error
	Profile(ctx context.Context, userID string) (*models.User, error)
}

// AuthConfig, AuthService'in config'ten aldığı politika değerleri.
type AuthConfig struct {
	BcryptCost           int
	PasswordMinLength    int
	RequireVerifiedEmail bool
}

type authService struct {
	userRepo repository.UserRepository
	tokens   TokenService
	mailer   email.EmailSender
	cfg      AuthConfig
	now      func() time.Time
	logger   *zap.Logger
}

// NewAuthService, constructor.
func NewAuthService(
	userRepo repository.UserRepository,
	tokens TokenService,
	mailer email.EmailSender,
	cfg AuthConfig,
	logger *zap.Logger,
) AuthService {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	return &authService{
		userRepo: userRepo,
		tokens:   tokens,
		mailer:   mailer,
		cfg:      cfg,
		now:      func() time.Time { return time.Now().UTC() },
		logger:   logger.Named("auth"),
	}
}

// Register, yeni kullanıcı oluşturur ve doğrulama email'i gönderir.
// Kayıt token döndürmez, kullanıcı ayrıca login olur.
func (s *authService) Register(ctx context.Context, req *models.RegisterRequest) (*models.RegisterResponse, error) {
	if err := req.Validate(s.cfg.PasswordMinLength); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	// Önce kontrol, sonra UNIQUE constraint ikinci savunma hattı.
	if _, err := s.userRepo.GetByEmail(ctx, req.Email); err == nil {
		return nil, fmt.Errorf("%w: user with this email already exists", pkg.ErrAlreadyExists)
	} else if !errors.Is(err, pkg.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: string(hash),
		FirstName:    optionalString(req.FirstName),
		LastName:     optionalString(req.LastName),
		Role:         models.RoleUser,
		IsActive:     true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.sendVerification(ctx, user)

	s.logger.Info("user registered", zap.String("user_id", user.ID))
	return &models.RegisterResponse{
		Message: "registration successful, please check your email to verify your account",
		User:    user.Summary(),
	}, nil
}

// sendVerification, 24 saatlik doğrulama token'ı oluşturur ve email'i gönderir.
// Gönderim hatası kaydı başarısız saymaz, sadece loglanır.
func (s *authService) sendVerification(ctx context.Context, user *models.User) {
	token, err := randomHex(accountTokenBytes)
	if err != nil {
		s.logger.Error("failed to generate verification token", zap.Error(err))
		return
	}

	if err := s.userRepo.SetVerificationToken(ctx, user.ID, hashToken(token), s.now().Add(verificationTokenTTL)); err != nil {
		s.logger.Error("failed to store verification token", zap.String("user_id", user.ID), zap.Error(err))
		return
	}

	if err := s.mailer.SendVerification(ctx, user.Email, token); err != nil {
		s.logger.Error("failed to send verification email", zap.String("user_id", user.ID), zap.Error(err))
	}
}

func (s *authService) Login(ctx context.Context, req *models.LoginRequest, clientIP string) (*models.AuthResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid credentials", pkg.ErrUnauthorized)
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("%w: invalid credentials", pkg.ErrUnauthorized)
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: account is deactivated", pkg.ErrUnauthorized)
	}
	if s.cfg.RequireVerifiedEmail && !user.IsEmailVerified {
		return nil, fmt.Errorf("%w: please verify your email first", pkg.ErrUnauthorized)
	}

	now := s.now()
	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, fmt.Errorf("failed to update last login: %w", err)
	}
	user.LastLoginAt = &now

	access, err := s.tokens.IssueAccessToken(user)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.Issue(ctx, user, clientIP)
	if err != nil {
		return nil, err
	}

	return &models.AuthResponse{
		AccessToken:  access,
		RefreshToken: refresh.Token,
		User:         user.Summary(),
	}, nil
}

func (s *authService) VerifyEmail(ctx context.Context, token string) error {
	if token == "" {
		return fmt.Errorf("%w: invalid verification token", pkg.ErrBadRequest)
	}

	user, err := s.userRepo.GetByVerificationHash(ctx, hashToken(token))
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			return fmt.Errorf("%w: invalid verification token", pkg.ErrBadRequest)
		}
		return err
	}

	if user.VerificationExpires == nil || !s.now().Before(*user.VerificationExpires) {
		return fmt.Errorf("%w: verification token has expired", pkg.ErrBadRequest)
	}

	return s.userRepo.MarkEmailVerified(ctx, user.ID)
}

// ForgotPassword, kayıtlı email için 1 saatlik sıfırlama token'ı oluşturur.
// Email kayıtlı değilse de aynı mesaj döner.
func (s *authService) ForgotPassword(ctx context.Context, req *models.ForgotPasswordRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			return ForgotPasswordMessage, nil
		}
		return "", err
	}

	token, err := randomHex(accountTokenBytes)
	if err != nil {
		return "", fmt.Errorf("failed to generate reset token: %w", err)
	}
	if err := s.userRepo.SetResetToken(ctx, user.ID, hashToken(token), s.now().Add(resetTokenTTL)); err != nil {
		return "", err
	}

	if err := s.mailer.SendPasswordReset(ctx, user.Email, token); err != nil {
		s.logger.Error("failed to send password reset email", zap.String("user_id", user.ID), zap.Error(err))
	}

	return ForgotPasswordMessage, nil
}

// ResetPassword, şifreyi değiştirir ve kullanıcının tüm oturumlarını kapatır.
func (s *authService) ResetPassword(ctx context.Context, req *models.ResetPasswordRequest) error {
	if err := req.Validate(s.cfg.PasswordMinLength); err != nil {
		return fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	user, err := s.userRepo.GetByResetHash(ctx, hashToken(req.Token))
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			return fmt.Errorf("%w: invalid reset token", pkg.ErrBadRequest)
		}
		return err
	}

	if user.ResetExpires == nil || !s.now().Before(*user.ResetExpires) {
		return fmt.Errorf("%w: reset token has expired", pkg.ErrBadRequest)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), s.cfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.ResetPassword(ctx, user.ID, string(hash)); err != nil {
		return err
	}

	if err := s.tokens.RevokeAll(ctx, user.ID, ws.RevokeReasonPasswordReset); err != nil {
		return err
	}

	s.logger.Info("password reset", zap.String("user_id", user.ID))
	return nil
}

func (s *authService) Profile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			return nil, fmt.Errorf("%w: user not found", pkg.ErrNotFound)
		}
		return nil, err
	}
	return user, nil
}

// hashToken, doğrulama/sıfırlama token'ının DB'de saklanan SHA-256 hash'i.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
