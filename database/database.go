// Package database, SQLite bağlantısını ve migration sistemini yönetir.
//
// Go'da database/sql standart kütüphanesi, farklı veritabanlarına ortak bir
// arayüz (interface) sağlar. SQLite driver import edildiğinde otomatik olarak
// kayıt olur, bu yüzden "blank import" (_ "modernc.org/sqlite") kullanılır.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver, CGO gerekmez
)

// DB, veritabanı bağlantısını saran struct.
// *sql.DB Go'nun built-in connection pool'udur ve thread-safe'dir.
type DB struct {
	Conn *sql.DB
}

// New, yeni bir SQLite bağlantısı oluşturur ve migration'ları çalıştırır.
//
// dbPath: SQLite dosya yolu (ör: "./data/mygames.db")
// migrationsFS: goose formatındaki migration dosyalarını içeren fs.FS
func New(ctx context.Context, dbPath string, migrationsFS fs.FS, logger *zap.Logger) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// foreign_keys(1): SQLite'ta FK varsayılan kapalı.
	// journal_mode(WAL): eşzamanlı okuma/yazma.
	// busy_timeout: kilitli DB'de hemen SQLITE_BUSY dönmek yerine bekle.
	// _txlock=immediate: transaction'lar yazma kilidini baştan alır, böylece
	// refresh rotation gibi read-then-write akışları deadlock'a girmez.
	dsn := dbPath + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_txlock=immediate"
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &DB{Conn: conn}

	if err := Migrate(ctx, conn, migrationsFS); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("database connected and migrations applied", zap.String("path", dbPath))
	return db, nil
}

// Migrate, bekleyen tüm goose migration'larını uygular.
// goose kendi goose_db_version tablosunda hangi versiyonların uygulandığını tutar.
func Migrate(ctx context.Context, conn *sql.DB, migrationsFS fs.FS) error {
	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	goose.SetLogger(goose.NopLogger())

	return goose.UpContext(ctx, conn, ".")
}

// Close, veritabanı bağlantısını kapatır.
func (db *DB) Close() error {
	return db.Conn.Close()
}
