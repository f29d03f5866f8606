// Package main, mygames backend uygulamasının giriş noktasıdır.
//
// Bu dosyanın görevi Dependency Injection "wire-up":
//  1. Config'i yükle, logger'ı kur
//  2. Database'i başlat (goose migration'ları embed FS'ten)
//  3. Repository'leri oluştur
//  4. WebSocket Hub'ı başlat
//  5. Service'leri, middleware'ı ve handler'ları oluştur (buildHandler)
//  6. Route'ları bağla, CORS yapılandır
//  7. HTTP Server'ı başlat, graceful shutdown
//
// Global değişken YOK, her şey burada oluşturulup birbirine bağlanıyor.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/akinalp/mygames/config"
	"github.com/akinalp/mygames/database"
	"github.com/akinalp/mygames/middleware"
	"github.com/akinalp/mygames/ws"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "mygames: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// ─── 1. Config + Logger ───
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	for _, w := range cfg.Warnings {
		logger.Warn("config warning", zap.String("detail", w))
	}
	logger.Info("config loaded",
		zap.Int("port", cfg.Server.Port),
		zap.Duration("access_expiry", cfg.JWT.AccessExpiry),
		zap.Duration("refresh_expiry", cfg.JWT.RefreshExpiry))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ─── 2. Database ───
	db, err := database.New(ctx, cfg.Database.Path, database.Migrations(), logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	// ─── 3. Repository Layer ───
	repos := initRepositories(db.Conn)

	// ─── 4. WebSocket Hub ───
	// Service'ler hub'a EventPublisher interface'i üzerinden erişir.
	hub := ws.NewHub(logger)
	hubDone := make(chan struct{})
	go func() {
		defer close(hubDone)
		hub.Run(ctx)
	}()

	// ─── 5-6. Service + Middleware + Handler + Router ───
	handler, cleanup := buildHandler(cfg, repos, hub, logger)
	defer cleanup()

	// ─── 7. HTTP Server ───
	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", cfg.Server.Addr()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down...")

	// Önce WebSocket bağlantıları kapanır (stop ctx'i iptal eder, hub.Run
	// Shutdown çağırır), sonra HTTP server mevcut request'lerin bitmesini bekler.
	stop()
	<-hubDone

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}

	logger.Info("server stopped gracefully")
	return nil
}

// buildHandler, service/middleware/handler katmanlarını kurar ve route'ları
// CORS + request log ile sarılmış tek bir http.Handler olarak döner.
// cleanup, arka plan goroutine'i olan bileşenleri (cache, rate limiter) durdurur.
func buildHandler(cfg *config.Config, repos *Repositories, hub *ws.Hub, logger *zap.Logger) (http.Handler, func()) {
	tokens := initTokenService(repos, hub, cfg, logger)
	authMw := middleware.NewAuthMiddleware(tokens, repos.User, logger)

	svcs, limiters := initServices(repos, tokens, authMw, hub, cfg, logger)
	h := initHandlers(svcs, limiters, hub, cfg)

	mux := http.NewServeMux()
	initRoutes(mux, h, authMw)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{"Retry-After", middleware.RequestIDHeader},
		AllowCredentials: true,
	})

	cleanup := func() {
		limiters.Login.Stop()
		authMw.Close()
	}
	return middleware.Logging(logger, corsHandler.Handler(mux)), cleanup
}

// newLogger, LOG_LEVEL ve LOG_DEVELOPMENT'a göre zap logger kurar.
// Development modunda renkli console çıktısı, aksi halde JSON.
func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", cfg.Level, err)
	}

	zcfg := zap.NewProductionConfig()
	if cfg.Development {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = level

	return zcfg.Build()
}
