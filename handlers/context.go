// Package handlers, HTTP request/response işlemlerini yönetir.
//
// Handler'ın görevi çok basit ve "ince" (thin) olmalı:
// 1. Request body'yi parse et (JSON → struct)
// 2. Service katmanını çağır
// 3. Sonucu HTTP response olarak döndür
//
// Handler ASLA iş mantığı (business logic) içermez.
// Handler ASLA doğrudan DB'ye erişmez.
package handlers

import (
	"net/http"

	"github.com/akinalp/mygames/models"
	"github.com/akinalp/mygames/pkg"
)

// contextKey, context'te değer taşımak için özel tip.
// String key kullanmak başka paketlerle çakışabilir.
type contextKey string

// UserContextKey, auth middleware'in context'e koyduğu *models.User'ın key'i.
const UserContextKey contextKey = "user"

// currentUser, context'teki kullanıcıyı döner. Yoksa 401 yazar ve false döner.
func currentUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return nil, false
	}
	return user, true
}
