// Package main — HTTP route registration.
//
// Middleware chain helper'ları:
//   - auth: access token doğrulaması
//   - authAdmin: auth + admin rolü
package main

import (
	"net/http"

	"github.com/akinalp/mygames/middleware"
	"github.com/akinalp/mygames/models"
	"github.com/akinalp/mygames/pkg"
)

// initRoutes, tüm endpoint'leri mux'a bağlar.
//
// Route sıralama: Go 1.22+ mux'ı en spesifik pattern'i seçer, yine de
// literal path'ler ("/api/match/history") parametrikten önce yazılır.
func initRoutes(mux *http.ServeMux, h *Handlers, authMw *middleware.AuthMiddleware) {
	roleMw := middleware.NewRoleMiddleware()

	auth := func(handler http.HandlerFunc) http.Handler {
		return authMw.Require(handler)
	}
	authAdmin := func(handler http.HandlerFunc) http.Handler {
		return authMw.Require(roleMw.Require(models.RoleAdmin, handler))
	}

	// ─── Health ───
	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		pkg.JSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "mygames"})
	})

	// ─── Auth (public) ───
	mux.HandleFunc("POST /api/auth/register", h.Auth.Register)
	mux.HandleFunc("POST /api/auth/login", h.Auth.Login)
	mux.HandleFunc("POST /api/auth/refresh", h.Auth.Refresh)
	mux.HandleFunc("POST /api/auth/logout", h.Auth.Logout)
	mux.HandleFunc("GET /api/auth/verify-email", h.Auth.VerifyEmail)
	mux.HandleFunc("POST /api/auth/forgot-password", h.Auth.ForgotPassword)
	mux.HandleFunc("POST /api/auth/reset-password", h.Auth.ResetPassword)
	mux.Handle("GET /api/auth/me", auth(h.Auth.Me))

	// ─── Admin ───
	mux.Handle("GET /api/admin/users", authAdmin(h.Admin.ListUsers))
	mux.Handle("PATCH /api/admin/users/{id}/role", authAdmin(h.Admin.UpdateRole))
	mux.Handle("PATCH /api/admin/users/{id}/status", authAdmin(h.Admin.UpdateStatus))

	// ─── Match ───
	mux.Handle("GET /api/match", auth(h.Match.Current))
	mux.Handle("POST /api/match", auth(h.Match.Start))
	mux.Handle("DELETE /api/match", auth(h.Match.End))
	mux.Handle("POST /api/match/rounds", auth(h.Match.EndRound))
	mux.Handle("POST /api/match/next-round", auth(h.Match.NextRound))
	mux.Handle("POST /api/match/rematch", auth(h.Match.Rematch))
	mux.Handle("GET /api/match/history", auth(h.Match.History))
	mux.Handle("GET /api/match/stats", auth(h.Match.Stats))
	mux.Handle("GET /api/match/stats/{name}", auth(h.Match.PlayerStats))

	// ─── WebSocket ───
	// Tarayıcılar upgrade sırasında custom header gönderemez, token
	// ?token= query parametresi ile gelir ve WS handler kendisi doğrular.
	mux.HandleFunc("GET /ws", h.WS.HandleConnection)
}
