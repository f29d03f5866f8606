// Package main — Handler katmanı başlatma.
//
// Handler'lar "thin" dir: sadece HTTP parse + service call + response write.
package main

import (
	"github.com/akinalp/mygames/config"
	"github.com/akinalp/mygames/handlers"
	"github.com/akinalp/mygames/ws"
)

// Handlers, tüm handler instance'larını tutan container struct.
type Handlers struct {
	Auth  *handlers.AuthHandler
	Admin *handlers.AdminHandler
	Match *handlers.MatchHandler
	WS    *ws.Handler
}

// initHandlers, tüm handler'ları service ve rate limiter dependency'leri ile oluşturur.
func initHandlers(svcs *Services, limiters *RateLimiters, hub *ws.Hub, cfg *config.Config) *Handlers {
	return &Handlers{
		Auth:  handlers.NewAuthHandler(svcs.Auth, svcs.Token, limiters.Login),
		Admin: handlers.NewAdminHandler(svcs.User),
		Match: handlers.NewMatchHandler(svcs.Match),
		WS:    ws.NewHandler(hub, svcs.Token, cfg.CORS.AllowedOrigins),
	}
}
