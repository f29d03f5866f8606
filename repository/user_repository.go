// Package repository, veritabanı erişim katmanını tanımlar.
//
// Service katmanı doğrudan SQL yazmaz, repository interface'i üzerinden çalışır.
// Testlerde interface'i karşılayan sahte (fake) bir repository verilebilir.
//
// Go'da interface "implicit"tır: bir struct, interface'deki tüm method'ları
// implement ediyorsa otomatik olarak o interface'i sağlar.
package repository

import (
	"context"
	"time"

	"github.com/akinalp/mygames/models"
)

// UserRepository, kullanıcı veritabanı işlemleri için interface.
//
// Bulunamayan kayıtlar için pkg.ErrNotFound döner.
type UserRepository interface {
	// Create, kullanıcıyı ekler. user.ID boşsa yeni bir UUID atanır.
	// Email zaten kayıtlıysa pkg.ErrAlreadyExists döner.
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByVerificationHash(ctx context.Context, tokenHash string) (*models.User, error)
	GetByResetHash(ctx context.Context, tokenHash string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)

	// SetVerificationToken / SetResetToken tek slot'a yazar, önceki token geçersizleşir.
	SetVerificationToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error
	MarkEmailVerified(ctx context.Context, userID string) error
	SetResetToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error

	// ResetPassword, şifre hash'ini günceller ve reset slot'unu temizler.
	ResetPassword(ctx context.Context, userID, passwordHash string) error
	UpdateLastLogin(ctx context.Context, userID string, at time.Time) error
	UpdateRole(ctx context.Context, userID string, role models.Role) error
	SetActive(ctx context.Context, userID string, active bool) error
}
