// Package models, uygulamanın domain modellerini (veri yapıları) tanımlar.
//
// Model nedir?
// Veritabanındaki bir tablonun Go karşılığıdır.
// Aynı zamanda API'den gelen/giden verilerin şeklini de belirler.
//
// Go'da `json:"email"` gibi tag'ler, struct field'larının JSON'a
// nasıl serialize/deserialize edileceğini belirler.
package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Role, kullanıcının yetki seviyesi.
// Go'da enum yoktur, bunun yerine typed constant'lar kullanılır.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid, rolün bilinen bir değer olup olmadığını döner.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User, bir hesabı temsil eder.
//
// Doğrulama ve sıfırlama token'ları plaintext SAKLANMAZ, sadece SHA-256 hash'i
// tutulur. Her biri için tek bir slot vardır: yeni token eskisinin üzerine yazar.
type User struct {
	ID              string     `json:"id"`
	Email           string     `json:"email"`
	PasswordHash    string     `json:"-"` // json:"-" → API response'a DAHİL ETME
	FirstName       *string    `json:"first_name"`
	LastName        *string    `json:"last_name"`
	Role            Role       `json:"role"`
	IsEmailVerified bool       `json:"is_email_verified"`
	IsActive        bool       `json:"is_active"`
	LastLoginAt     *time.Time `json:"last_login_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	VerificationTokenHash *string    `json:"-"`
	VerificationExpires   *time.Time `json:"-"`
	ResetTokenHash        *string    `json:"-"`
	ResetExpires          *time.Time `json:"-"`
}

// UserSummary, login/register/me response'larında dönen kısa profil.
type UserSummary struct {
	ID              string  `json:"id"`
	Email           string  `json:"email"`
	FirstName       *string `json:"first_name"`
	LastName        *string `json:"last_name"`
	Role            Role    `json:"role"`
	IsEmailVerified bool    `json:"is_email_verified"`
}

// Summary, User'dan UserSummary üretir.
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:              u.ID,
		Email:           u.Email,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		Role:            u.Role,
		IsEmailVerified: u.IsEmailVerified,
	}
}

// emailRegex, basit email format kontrolü.
var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// NormalizeEmail, email'i karşılaştırma ve saklama için tek forma indirir.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail, email formatını kontrol eder.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email is required")
	}
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

// ValidatePassword, şifre politikasını uygular: en az minLen karakter,
// büyük harf, küçük harf, rakam ve özel karakter.
func ValidatePassword(password string, minLen int) error {
	if utf8.RuneCountInString(password) < minLen {
		return fmt.Errorf("password must be at least %d characters long", minLen)
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, ch := range password {
		switch {
		case unicode.IsUpper(ch):
			hasUpper = true
		case unicode.IsLower(ch):
			hasLower = true
		case unicode.IsDigit(ch):
			hasDigit = true
		case unicode.IsPunct(ch) || unicode.IsSymbol(ch):
			hasSpecial = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit || !hasSpecial {
		return fmt.Errorf("password must contain uppercase, lowercase, number and special character")
	}
	return nil
}

// RegisterRequest, kayıt olurken frontend'den gelen veri.
// PasswordHash yerine Password alırız, hash'leme service katmanında yapılır.
type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Validate, RegisterRequest'i normalize eder ve kontrol eder.
//
//	req := &RegisterRequest{...}
//	err := req.Validate(cfg.Security.PasswordMinLength)
func (r *RegisterRequest) Validate(minPasswordLen int) error {
	r.Email = NormalizeEmail(r.Email)
	if err := ValidateEmail(r.Email); err != nil {
		return err
	}
	if err := ValidatePassword(r.Password, minPasswordLen); err != nil {
		return err
	}

	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	if utf8.RuneCountInString(r.FirstName) > 50 {
		return fmt.Errorf("first name must be at most 50 characters")
	}
	if utf8.RuneCountInString(r.LastName) > 50 {
		return fmt.Errorf("last name must be at most 50 characters")
	}
	return nil
}

// LoginRequest, giriş yaparken frontend'den gelen veri.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate, LoginRequest'in geçerli olup olmadığını kontrol eder.
func (r *LoginRequest) Validate() error {
	r.Email = NormalizeEmail(r.Email)
	if r.Email == "" {
		return fmt.Errorf("email is required")
	}
	if r.Password == "" {
		return fmt.Errorf("password is required")
	}
	return nil
}

// UpdateRoleRequest, admin'in bir kullanıcının rolünü değiştirmesi.
type UpdateRoleRequest struct {
	Role Role `json:"role"`
}

// Validate, rol değerini kontrol eder.
func (r *UpdateRoleRequest) Validate() error {
	if !r.Role.Valid() {
		return fmt.Errorf("role must be one of: user, admin")
	}
	return nil
}

// UpdateStatusRequest, admin'in bir hesabı aktif/pasif yapması.
type UpdateStatusRequest struct {
	IsActive *bool `json:"is_active"`
}

// Validate, is_active alanının gönderildiğini kontrol eder.
func (r *UpdateStatusRequest) Validate() error {
	if r.IsActive == nil {
		return fmt.Errorf("is_active is required")
	}
	return nil
}
