// Hesap yaşam döngüsü istekleri: şifremi unuttum, şifre sıfırlama, email doğrulama.
//
// Plaintext token kullanıcıya email ile gönderilir, DB'de SADECE hash saklanır.
// Doğrulama: gelen token hash'lenir ve users tablosundaki hash ile aranır.
package models

import "fmt"

// ForgotPasswordRequest, "şifremi unuttum" isteği.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// Validate, ForgotPasswordRequest geçerlilik kontrolü.
func (r *ForgotPasswordRequest) Validate() error {
	r.Email = NormalizeEmail(r.Email)
	return ValidateEmail(r.Email)
}

// ResetPasswordRequest, şifre sıfırlama isteği.
// Token: email'deki link'ten alınan plaintext token.
type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// Validate, ResetPasswordRequest geçerlilik kontrolü.
func (r *ResetPasswordRequest) Validate(minPasswordLen int) error {
	if r.Token == "" {
		return fmt.Errorf("token is required")
	}
	if r.NewPassword == "" {
		return fmt.Errorf("new password is required")
	}
	return ValidatePassword(r.NewPassword, minPasswordLen)
}

// MessageResponse, sadece bilgi mesajı dönen endpoint'ler için.
type MessageResponse struct {
	Message string `json:"message"`
}

// RegisterResponse, kayıt sonrası dönen veri.
type RegisterResponse struct {
	Message string      `json:"message"`
	User    UserSummary `json:"user"`
}
