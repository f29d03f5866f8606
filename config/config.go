// Package config, uygulamanın tüm konfigürasyonunu merkezi olarak yönetir.
// Environment variable'lardan okur, .env dosyasını da destekler.
//
// Config struct'ı tüm ayarları tek bir yerde toplar, böylece
// her yerde ayrı ayrı os.Getenv() çağırmak yerine tek bir Config nesnesi taşırız.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/akinalp/mygames/pkg/expiry"
)

// Varsayılan token süreleri. JWT_EXPIRATION / JWT_REFRESH_EXPIRATION
// tanınmayan bir formatta verilirse bu değerlere düşülür.
const (
	DefaultAccessExpiry  = 15 * time.Minute
	DefaultRefreshExpiry = 7 * 24 * time.Hour
)

// Config, uygulamanın tüm konfigürasyon değerlerini taşır.
// Her alt bölüm tek bir concern'ü temsil eden ayrı bir struct.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Security  SecurityConfig
	RateLimit RateLimitConfig
	Email     EmailConfig
	CORS      CORSConfig
	Log       LogConfig
	Match     MatchConfig

	// Warnings, yükleme sırasında fark edilen ama fatal olmayan sorunlar.
	// Logger henüz kurulmadığı için burada biriktirilir, main.go log'lar.
	Warnings []string
}

// ServerConfig, HTTP server ayarları.
type ServerConfig struct {
	Host string
	Port int
}

// DatabaseConfig, SQLite database ayarları.
type DatabaseConfig struct {
	Path string // SQLite dosya yolu (ör: ./data/mygames.db)
}

// JWTConfig, token ayarları.
//
// Süreler "15m", "24h", "7d" formatında okunur (bkz. pkg/expiry).
type JWTConfig struct {
	Secret        string // Token imzalama anahtarı, GİZLİ TUTULMALI
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

// SecurityConfig, şifre ve hesap politikası.
type SecurityConfig struct {
	BcryptCost           int
	PasswordMinLength    int
	RequireVerifiedEmail bool // true ise doğrulanmamış email ile login reddedilir
}

// RateLimitConfig, IP bazlı login brute-force koruması.
type RateLimitConfig struct {
	LoginMaxAttempts int
	LoginWindow      time.Duration
}

// EmailConfig, Resend email ayarları. Üçü de doluysa email gönderimi aktif olur.
type EmailConfig struct {
	ResendAPIKey string
	FromEmail    string
	AppURL       string // Doğrulama/sıfırlama linklerinin base URL'i
}

// Enabled, email gönderiminin yapılandırılıp yapılandırılmadığını döner.
func (c EmailConfig) Enabled() bool {
	return c.ResendAPIKey != "" && c.FromEmail != "" && c.AppURL != ""
}

// CORSConfig, izin verilen origin'ler (micro-frontend host + remote'lar).
type CORSConfig struct {
	AllowedOrigins []string
}

// LogConfig, zap logger ayarları.
type LogConfig struct {
	Level       string // debug, info, warn, error
	Development bool
}

// MatchConfig, maç geçmişi saklama ayarları.
type MatchConfig struct {
	HistoryLimit int // Saklanan maksimum MatchRecord sayısı, eskiler düşer
}

// Load, environment variable'lardan Config oluşturur.
// .env dosyası varsa önce onu yükler (development kolaylığı için).
func Load() (*Config, error) {
	// .env dosyası yoksa hata vermez, sessizce devam eder.
	_ = godotenv.Load()

	cfg := &Config{}

	port, err := getInt("PORT", 3333)
	if err != nil {
		return nil, err
	}

	jwtSecret := getEnv("JWT_SECRET", "")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	bcryptCost, err := getInt("BCRYPT_ROUNDS", 10)
	if err != nil {
		return nil, err
	}

	passwordMin, err := getInt("PASSWORD_MIN_LENGTH", 8)
	if err != nil {
		return nil, err
	}

	requireVerified, err := getBool("AUTH_REQUIRE_VERIFIED_EMAIL", false)
	if err != nil {
		return nil, err
	}

	loginMax, err := getInt("LOGIN_MAX_ATTEMPTS", 5)
	if err != nil {
		return nil, err
	}

	// LOGIN_LOCK_DURATION milisaniye cinsinden (900000 = 15 dakika)
	lockMs, err := getInt("LOGIN_LOCK_DURATION", 900000)
	if err != nil {
		return nil, err
	}

	logDev, err := getBool("LOG_DEVELOPMENT", false)
	if err != nil {
		return nil, err
	}

	historyLimit, err := getInt("MATCH_HISTORY_LIMIT", 50)
	if err != nil {
		return nil, err
	}
	if historyLimit < 1 {
		return nil, fmt.Errorf("invalid MATCH_HISTORY_LIMIT: must be positive")
	}

	cfg.Server = ServerConfig{
		Host: getEnv("HOST", "0.0.0.0"),
		Port: port,
	}
	cfg.Database = DatabaseConfig{
		Path: getEnv("DATABASE_PATH", "./data/mygames.db"),
	}
	cfg.JWT = JWTConfig{
		Secret:        jwtSecret,
		AccessExpiry:  cfg.parseExpiry("JWT_EXPIRATION", "15m", DefaultAccessExpiry),
		RefreshExpiry: cfg.parseExpiry("JWT_REFRESH_EXPIRATION", "7d", DefaultRefreshExpiry),
	}
	cfg.Security = SecurityConfig{
		BcryptCost:           bcryptCost,
		PasswordMinLength:    passwordMin,
		RequireVerifiedEmail: requireVerified,
	}
	cfg.RateLimit = RateLimitConfig{
		LoginMaxAttempts: loginMax,
		LoginWindow:      time.Duration(lockMs) * time.Millisecond,
	}
	cfg.Email = EmailConfig{
		ResendAPIKey: getEnv("RESEND_API_KEY", ""),
		FromEmail:    getEnv("EMAIL_FROM", ""),
		AppURL:       strings.TrimRight(getEnv("APP_URL", ""), "/"),
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: splitList(getEnv("CORS_ORIGINS",
			"http://localhost:4200,http://localhost:4201,http://localhost:4202")),
	}
	cfg.Log = LogConfig{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: logDev,
	}
	cfg.Match = MatchConfig{
		HistoryLimit: historyLimit,
	}

	return cfg, nil
}

// Addr, HTTP server'ın dinleyeceği adresi döner (ör: "0.0.0.0:3333").
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// parseExpiry, süre env'ini okur. Format tanınmazsa fallback kullanılır ve
// Warnings'e not düşülür.
func (c *Config) parseExpiry(key, def string, fallback time.Duration) time.Duration {
	raw := getEnv(key, def)
	d, ok := expiry.Parse(raw, fallback)
	if !ok {
		c.Warnings = append(c.Warnings,
			fmt.Sprintf("%s=%q not recognized (want <n>d|h|m), using %s", key, raw, fallback))
	}
	return d
}

// getEnv, environment variable'ı okur, yoksa fallback değeri döner.
func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func getBool(key string, fallback bool) (bool, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

// splitList, virgülle ayrılmış listeyi parçalar, boşlukları ve boş elemanları atar.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
