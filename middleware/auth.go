// Package middleware, HTTP request pipeline'ına eklenen ara katmanları barındırır.
//
// Go'da middleware bir fonksiyondur:
//
//	func(next http.Handler) http.Handler
//
// Middleware kendi işini yapar (ör: token doğrula), sonra next'i çağırır.
// Hata varsa next'i çağırmaz ve request burada durur.
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/akinalp/mygames/handlers"
	"github.com/akinalp/mygames/models"
	"github.com/akinalp/mygames/pkg"
	"github.com/akinalp/mygames/pkg/cache"
	"github.com/akinalp/mygames/repository"
	"github.com/akinalp/mygames/ws"
)

const (
	userCacheTTL     = 30 * time.Second
	userCacheCleanup = 5 * time.Minute
)

// AuthMiddleware, Bearer access token doğrulama middleware'ı.
//
// Token geçerli olsa bile kullanıcı pasif yapılmış olabilir. Bu yüzden her
// istekte kullanıcının güncel hali okunur; DB'ye her seferinde gitmemek için
// kısa TTL'li bir cache kullanılır. Admin bir kullanıcıyı değiştirdiğinde
// InvalidateUser ile entry anında düşürülür.
type AuthMiddleware struct {
	tokens   ws.TokenValidator
	userRepo repository.UserRepository
	users    *cache.TTLCache[string, models.User]
	logger   *zap.Logger
}

// NewAuthMiddleware, constructor.
func NewAuthMiddleware(tokens ws.TokenValidator, userRepo repository.UserRepository, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		tokens:   tokens,
		userRepo: userRepo,
		users:    cache.New[string, models.User](userCacheTTL, userCacheCleanup),
		logger:   logger.Named("auth_mw"),
	}
}

// Require, geçerli bir access token zorunlu kılar.
//
// HTTP header formatı: Authorization: Bearer <token>
func (m *AuthMiddleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			pkg.ErrorWithMessage(w, http.StatusUnauthorized, "authorization header required")
			return
		}

		tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found || tokenString == "" {
			pkg.ErrorWithMessage(w, http.StatusUnauthorized, "invalid authorization format, use: Bearer <token>")
			return
		}

		claims, err := m.tokens.ValidateAccessToken(tokenString)
		if err != nil {
			pkg.Error(w, err)
			return
		}

		user, err := m.loadUser(r.Context(), claims.UserID())
		if err != nil {
			if errors.Is(err, pkg.ErrNotFound) {
				pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found")
				return
			}
			m.logger.Error("failed to load user", zap.String("user_id", claims.UserID()), zap.Error(err))
			pkg.Error(w, err)
			return
		}

		if !user.IsActive {
			pkg.ErrorWithMessage(w, http.StatusUnauthorized, "account is deactivated")
			return
		}

		ctx := context.WithValue(r.Context(), handlers.UserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// loadUser, kullanıcıyı önce cache'ten, yoksa DB'den okur.
// Dönen pointer her çağrıda yeni bir kopyadır.
func (m *AuthMiddleware) loadUser(ctx context.Context, userID string) (*models.User, error) {
	if cached, ok := m.users.Get(userID); ok {
		return &cached, nil
	}

	user, err := m.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Hash'ler context'te taşınmamalı
	user.PasswordHash = ""
	user.VerificationTokenHash = nil
	user.ResetTokenHash = nil

	m.users.Set(userID, *user)
	return user, nil
}

// InvalidateUser, kullanıcının cache entry'sini düşürür.
// services.UserInvalidator interface'ini karşılar.
func (m *AuthMiddleware) InvalidateUser(userID string) {
	m.users.Delete(userID)
}

// Close, cache cleanup goroutine'ini durdurur.
func (m *AuthMiddleware) Close() {
	m.users.Close()
}
