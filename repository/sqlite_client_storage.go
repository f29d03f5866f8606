package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/akinalp/mygames/database"
	"github.com/akinalp/mygames/game"
)

// sqliteClientStorageRepo, ClientStorageRepository'nin SQLite implementasyonu.
//
// conn transaction açmak için tutulur. q normalde conn'un kendisidir,
// Atomic içinde ise açık *sql.Tx olur.
type sqliteClientStorageRepo struct {
	conn *sql.DB
	db   database.TxQuerier
}

// NewSQLiteClientStorageRepo, constructor.
func NewSQLiteClientStorageRepo(conn *sql.DB) ClientStorageRepository {
	return &sqliteClientStorageRepo{conn: conn, db: conn}
}

func (r *sqliteClientStorageRepo) Get(ctx context.Context, ownerID, key string) ([]byte, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx,
		`SELECT value FROM client_storage WHERE owner_id = ? AND key = ?`,
		ownerID, key,
	).Scan(&value)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get client storage %s: %w", key, err)
	}
	return []byte(value), true, nil
}

// Put, UPSERT ile slot'u yazar: varsa üzerine yazar, yoksa ekler.
func (r *sqliteClientStorageRepo) Put(ctx context.Context, ownerID, key string, value []byte) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO client_storage (owner_id, key, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (owner_id, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		ownerID, key, string(value), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to put client storage %s: %w", key, err)
	}
	return nil
}

func (r *sqliteClientStorageRepo) Delete(ctx context.Context, ownerID, key string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM client_storage WHERE owner_id = ? AND key = ?`,
		ownerID, key,
	)
	if err != nil {
		return fmt.Errorf("failed to delete client storage %s: %w", key, err)
	}
	return nil
}

func (r *sqliteClientStorageRepo) Scoped(ownerID string) game.KV {
	return &scopedKV{repo: r, ownerID: ownerID}
}

// scopedKV, ClientStorageRepository'yi tek bir sahibe bağlar.
type scopedKV struct {
	repo    ClientStorageRepository
	ownerID string
}

func (s *scopedKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return s.repo.Get(ctx, s.ownerID, key)
}

func (s *scopedKV) Put(ctx context.Context, key string, value []byte) error {
	return s.repo.Put(ctx, s.ownerID, key, value)
}

func (s *scopedKV) Delete(ctx context.Context, key string) error {
	return s.repo.Delete(ctx, s.ownerID, key)
}

// Atomic, maç tamamlanmasındaki çoklu yazmayı (geçmiş, istatistik, mevcut maç)
// tek transaction'a toplar. Yarıda kalan bir hata geçmişi güncelleyip
// istatistiği eski bırakamaz.
func (r *sqliteClientStorageRepo) Atomic(ctx context.Context, ownerID string, fn func(kv game.KV) error) error {
	return database.WithTx(ctx, r.conn, func(tx *sql.Tx) error {
		txRepo := &sqliteClientStorageRepo{conn: r.conn, db: tx}
		return fn(txRepo.Scoped(ownerID))
	})
}
