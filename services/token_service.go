// Package services, business logic katmanını barındırır.
//
// Handler (HTTP) ile Repository (DB) arasında oturur. Tüm iş kuralları burada yaşar:
// şifre hash'leme, token üretimi ve rotation, maç geçişleri.
//
// Service ASLA http.Request/Response bilmez, ASLA doğrudan SQL çalıştırmaz.
package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/akinalp/mygames/models"
	"github.com/akinalp/mygames/pkg"
	"github.com/akinalp/mygames/repository"
	"github.com/akinalp/mygames/ws"
)

const (
	refreshTokenBytes = 64
	tokenIssuer       = "mygames"
)

// TokenService, access token (JWT) ve refresh token zincirini yönetir.
type TokenService interface {
	// Issue, kullanıcı için yeni bir refresh token üretir ve kaydeder.
	Issue(ctx context.Context, user *models.User, clientIP string) (*models.RefreshToken, error)

	// Rotate, sunulan refresh token'ı tek kullanımlık olarak tüketir ve yeni
	// bir token çifti döner. Revoke edilmiş bir token sunulursa kullanıcının
	// tüm oturumları kapatılır ve pkg.ErrTokenReuse döner.
	Rotate(ctx context.Context, presented, clientIP string) (*models.TokenPair, error)

	// Revoke, logout içindir. Token yoksa veya zaten revoke edildiyse de nil döner.
	Revoke(ctx context.Context, presented, clientIP string) error

	// RevokeAll, kullanıcının tüm aktif refresh token'larını revoke eder ve
	// açık sekmelerine reason ile session_revoked gönderir.
	RevokeAll(ctx context.Context, userID, reason string) error

	IssueAccessToken(user *models.User) (string, error)
	ValidateAccessToken(tokenString string) (*models.TokenClaims, error)
}

type tokenService struct {
	tokenRepo  repository.RefreshTokenRepository
	userRepo   repository.UserRepository
	hub        ws.EventPublisher
	jwtSecret  []byte
	accessExp  time.Duration
	refreshExp time.Duration
	now        func() time.Time
	logger     *zap.Logger
}

// NewTokenService, constructor.
func NewTokenService(
	tokenRepo repository.RefreshTokenRepository,
	userRepo repository.UserRepository,
	hub ws.EventPublisher,
	jwtSecret string,
	accessExp time.Duration,
	refreshExp time.Duration,
	logger *zap.Logger,
) TokenService {
	return &tokenService{
		tokenRepo:  tokenRepo,
		userRepo:   userRepo,
		hub:        hub,
		jwtSecret:  []byte(jwtSecret),
		accessExp:  accessExp,
		refreshExp: refreshExp,
		now:        func() time.Time { return time.Now().UTC() },
		logger:     logger.Named("token"),
	}
}

func (s *tokenService) Issue(ctx context.Context, user *models.User, clientIP string) (*models.RefreshToken, error) {
	value, err := randomHex(refreshTokenBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	now := s.now()
	token := &models.RefreshToken{
		Token:       value,
		UserID:      user.ID,
		ExpiresAt:   now.Add(s.refreshExp),
		CreatedByIP: optionalString(clientIP),
		CreatedAt:   now,
	}

	if err := s.tokenRepo.Create(ctx, token); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	s.cleanupExpired(ctx, user.ID)
	return token, nil
}

func (s *tokenService) Rotate(ctx context.Context, presented, clientIP string) (*models.TokenPair, error) {
	current, err := s.tokenRepo.GetByToken(ctx, presented)
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid refresh token", pkg.ErrUnauthorized)
		}
		return nil, err
	}

	now := s.now()
	if !current.IsActive(now) {
		if current.IsRevoked {
			return nil, s.handleReuse(ctx, current, clientIP)
		}
		return nil, fmt.Errorf("%w: refresh token expired", pkg.ErrUnauthorized)
	}

	user, err := s.userRepo.GetByID(ctx, current.UserID)
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid refresh token", pkg.ErrUnauthorized)
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: account is deactivated", pkg.ErrUnauthorized)
	}

	value, err := randomHex(refreshTokenBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	next := &models.RefreshToken{
		Token:       value,
		UserID:      user.ID,
		ExpiresAt:   now.Add(s.refreshExp),
		CreatedByIP: optionalString(clientIP),
		CreatedAt:   now,
	}

	if err := s.tokenRepo.Rotate(ctx, current.Token, clientIP, next); err != nil {
		if errors.Is(err, pkg.ErrConflict) {
			// Eşzamanlı bir rotation kazandı. Bu bir saldırı kanıtı değil
			// (ör. iki sekme aynı anda refresh etti), toplu revoke yapılmaz.
			s.logger.Info("concurrent refresh lost the race", zap.String("user_id", user.ID))
			return nil, fmt.Errorf("%w: refresh token already used", pkg.ErrUnauthorized)
		}
		return nil, err
	}

	s.cleanupExpired(ctx, user.ID)

	access, err := s.IssueAccessToken(user)
	if err != nil {
		return nil, err
	}

	return &models.TokenPair{AccessToken: access, RefreshToken: next.Token}, nil
}

// handleReuse, revoke edilmiş bir token'ın tekrar sunulmasını işler.
// Token çalınmış olabilir: sahibinin tüm aktif token'ları revoke edilir.
func (s *tokenService) handleReuse(ctx context.Context, token *models.RefreshToken, clientIP string) error {
	s.logger.Warn("refresh token reuse detected, revoking all sessions",
		zap.String("user_id", token.UserID),
		zap.String("client_ip", clientIP))

	if err := s.RevokeAll(ctx, token.UserID, ws.RevokeReasonTokenReuse); err != nil {
		return err
	}
	return fmt.Errorf("%w, all sessions have been invalidated", pkg.ErrTokenReuse)
}

func (s *tokenService) Revoke(ctx context.Context, presented, clientIP string) error {
	if presented == "" {
		return nil
	}

	changed, err := s.tokenRepo.Revoke(ctx, presented, clientIP, s.now())
	if err != nil {
		// Logout token'ın varlığını sızdırmamalı, hata sadece loglanır.
		s.logger.Error("failed to revoke refresh token on logout", zap.Error(err))
		return nil
	}
	if changed {
		s.logger.Debug("refresh token revoked on logout")
	}
	return nil
}

func (s *tokenService) RevokeAll(ctx context.Context, userID, reason string) error {
	n, err := s.tokenRepo.RevokeAllByUser(ctx, userID, s.now())
	if err != nil {
		return fmt.Errorf("failed to revoke refresh tokens: %w", err)
	}
	s.logger.Info("revoked all refresh tokens",
		zap.String("user_id", userID), zap.String("reason", reason), zap.Int64("count", n))

	s.hub.BroadcastToUser(userID, ws.Event{
		Op:   ws.OpSessionRevoked,
		Data: ws.SessionRevokedData{Reason: reason},
	})
	return nil
}

func (s *tokenService) IssueAccessToken(user *models.User) (string, error) {
	now := s.now()
	claims := &models.TokenClaims{
		Email: user.Email,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessExp)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}

// ValidateAccessToken, JWT'yi doğrular ve claims'i döner.
//
// Signing method kontrolü "alg: none" saldırısını engeller:
// sadece HMAC ile imzalanmış token'lar kabul edilir.
func (s *tokenService) ValidateAccessToken(tokenString string) (*models.TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.TokenClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: invalid token", pkg.ErrUnauthorized)
	}

	claims, ok := token.Claims.(*models.TokenClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, fmt.Errorf("%w: invalid token claims", pkg.ErrUnauthorized)
	}
	return claims, nil
}

// cleanupExpired, kullanıcının süresi dolmuş token'larını siler.
// Best-effort: hata loglanır ama akışı bozmaz.
func (s *tokenService) cleanupExpired(ctx context.Context, userID string) {
	if err := s.tokenRepo.DeleteExpiredByUser(ctx, userID, s.now()); err != nil {
		s.logger.Warn("failed to clean up expired refresh tokens",
			zap.String("user_id", userID), zap.Error(err))
	}
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
