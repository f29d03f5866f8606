package models

import "github.com/golang-jwt/jwt/v5"

// TokenClaims, access token'ın içindeki veriler (payload).
//
// Kullanıcı ID'si RegisteredClaims.Subject ("sub") içinde taşınır.
// Server her request'te token'ı doğrular, DB'ye gitmeden
// kullanıcının kim olduğunu ve rolünü bilir.
//
// models paketinde tanımlıdır çünkü services, middleware ve ws
// katmanlarının hepsi kullanır.
type TokenClaims struct {
	Email string `json:"email"`
	Role  Role   `json:"role"`
	jwt.RegisteredClaims
}

// UserID, "sub" claim'ini döner.
func (c *TokenClaims) UserID() string {
	return c.Subject
}

// TokenPair, login ve refresh response'u.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AuthResponse, login sonrası dönen veri.
type AuthResponse struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	User         UserSummary `json:"user"`
}

// RefreshRequest, refresh ve logout body'si.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}
