package models

import "time"

// RefreshToken, uzun ömürlü opak bir oturum token'ı.
//
// Her rotation'da eski satır revoke edilir ve ReplacedByToken ile yenisine
// bağlanır. Böylece her login oturumu tek yönlü bir zincir oluşturur:
//
//	t1 (revoked) → t2 (revoked) → t3 (active)
//
// Revoke edilmiş bir token tekrar sunulursa bu "reuse" sinyalidir.
// Token ya çalınmıştır ya da zincirin eski bir halkası tekrar oynatılmıştır.
type RefreshToken struct {
	Token           string     `json:"-"`
	UserID          string     `json:"user_id"`
	ExpiresAt       time.Time  `json:"expires_at"`
	IsRevoked       bool       `json:"is_revoked"`
	RevokedAt       *time.Time `json:"revoked_at"`
	RevokedByIP     *string    `json:"revoked_by_ip"`
	CreatedByIP     *string    `json:"created_by_ip"`
	ReplacedByToken *string    `json:"-"`
	CreatedAt       time.Time  `json:"created_at"`
}

// IsExpired, now anında token'ın süresinin dolup dolmadığını döner.
func (t *RefreshToken) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// IsActive, token'ın kullanılabilir olup olmadığını döner.
// Her zaman hesaplanır, DB'de saklanmaz.
func (t *RefreshToken) IsActive(now time.Time) bool {
	return !t.IsRevoked && !t.IsExpired(now)
}
