package middleware

import (
	"net/http"

	"github.com/akinalp/mygames/handlers"
	"github.com/akinalp/mygames/models"
	"github.com/akinalp/mygames/pkg"
)

// RoleMiddleware, belirli bir rolü zorunlu kılar.
// AuthMiddleware'den SONRA çalışır, context'te user bilgisi mevcuttur.
//
//	authMw.Require(roleMw.Require(models.RoleAdmin, http.HandlerFunc(adminHandler.ListUsers)))
type RoleMiddleware struct{}

// NewRoleMiddleware, constructor.
func NewRoleMiddleware() *RoleMiddleware {
	return &RoleMiddleware{}
}

// Require, context'teki kullanıcının rolü role değilse 403 döner.
// Rol token'dan değil güncel kullanıcı kaydından okunur, böylece
// yetkisi alınan admin token süresi dolmadan da erişimini kaybeder.
func (m *RoleMiddleware) Require(role models.Role, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := r.Context().Value(handlers.UserContextKey).(*models.User)
		if !ok {
			pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
			return
		}

		if user.Role != role {
			pkg.ErrorWithMessage(w, http.StatusForbidden, "insufficient permissions")
			return
		}

		next.ServeHTTP(w, r)
	})
}
