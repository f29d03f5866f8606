package repository

import (
	"context"
	"time"

	"github.com/akinalp/mygames/models"
)

// RefreshTokenRepository, refresh token zinciri için interface.
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error

	// GetByToken, token'ı bulur. Bulunamazsa pkg.ErrNotFound döner.
	GetByToken(ctx context.Context, token string) (*models.RefreshToken, error)

	// Rotate, tek transaction içinde next'i ekler ve eski token'ı revoke edip
	// next'e bağlar. Eski token bu arada başka bir istek tarafından revoke
	// edildiyse transaction geri alınır ve pkg.ErrConflict döner.
	Rotate(ctx context.Context, oldToken, revokedByIP string, next *models.RefreshToken) error

	// Revoke, token henüz revoke edilmemişse revoke eder.
	// Bir satır değiştiyse true döner.
	Revoke(ctx context.Context, token, revokedByIP string, at time.Time) (bool, error)

	// RevokeAllByUser, kullanıcının revoke edilmemiş tüm token'larını revoke eder
	// ve etkilenen satır sayısını döner.
	RevokeAllByUser(ctx context.Context, userID string, at time.Time) (int64, error)

	// DeleteExpiredByUser, kullanıcının süresi dolmuş token'larını siler.
	DeleteExpiredByUser(ctx context.Context, userID string, now time.Time) error
}
