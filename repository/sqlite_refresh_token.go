package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/akinalp/mygames/database"
	"github.com/akinalp/mygames/models"
	"github.com/akinalp/mygames/pkg"
)

// sqliteRefreshTokenRepo, RefreshTokenRepository'nin SQLite implementasyonu.
//
// Rotate transaction gerektirdiği için TxQuerier yerine *sql.DB alır.
type sqliteRefreshTokenRepo struct {
	db *sql.DB
}

// NewSQLiteRefreshTokenRepo, constructor.
func NewSQLiteRefreshTokenRepo(db *sql.DB) RefreshTokenRepository {
	return &sqliteRefreshTokenRepo{db: db}
}

func (r *sqliteRefreshTokenRepo) Create(ctx context.Context, token *models.RefreshToken) error {
	return insertRefreshToken(ctx, r.db, token)
}

func insertRefreshToken(ctx context.Context, q database.TxQuerier, token *models.RefreshToken) error {
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO refresh_tokens (token, user_id, expires_at, is_revoked, created_by_ip, created_at)
		VALUES (?, ?, ?, 0, ?, ?)`

	_, err := q.ExecContext(ctx, query,
		token.Token,
		token.UserID,
		token.ExpiresAt.UTC(),
		token.CreatedByIP,
		token.CreatedAt.UTC(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: refresh token collision", pkg.ErrConflict)
		}
		return fmt.Errorf("failed to create refresh token: %w", err)
	}

	return nil
}

func (r *sqliteRefreshTokenRepo) GetByToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	query := `
		SELECT token, user_id, expires_at, is_revoked, revoked_at, revoked_by_ip,
			created_by_ip, replaced_by_token, created_at
		FROM refresh_tokens WHERE token = ?`

	t := &models.RefreshToken{}
	err := r.db.QueryRowContext(ctx, query, token).Scan(
		&t.Token, &t.UserID, &t.ExpiresAt, &t.IsRevoked, &t.RevokedAt, &t.RevokedByIP,
		&t.CreatedByIP, &t.ReplacedByToken, &t.CreatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}

	return t, nil
}

func (r *sqliteRefreshTokenRepo) Rotate(ctx context.Context, oldToken, revokedByIP string, next *models.RefreshToken) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := insertRefreshToken(ctx, tx, next); err != nil {
			return err
		}

		// Compare-and-swap: sadece hâlâ revoke edilmemişse güncelle.
		// Eşzamanlı iki rotation'dan yalnızca biri 1 satır etkiler.
		result, err := tx.ExecContext(ctx, `
			UPDATE refresh_tokens
			SET is_revoked = 1, revoked_at = ?, revoked_by_ip = ?, replaced_by_token = ?
			WHERE token = ? AND is_revoked = 0`,
			next.CreatedAt.UTC(), revokedByIP, next.Token, oldToken,
		)
		if err != nil {
			return fmt.Errorf("failed to revoke rotated token: %w", err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check rows affected: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("%w: refresh token already rotated", pkg.ErrConflict)
		}
		return nil
	})
}

func (r *sqliteRefreshTokenRepo) Revoke(ctx context.Context, token, revokedByIP string, at time.Time) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE refresh_tokens SET is_revoked = 1, revoked_at = ?, revoked_by_ip = ?
		WHERE token = ? AND is_revoked = 0`,
		at.UTC(), revokedByIP, token,
	)
	if err != nil {
		return false, fmt.Errorf("failed to revoke refresh token: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check rows affected: %w", err)
	}
	return affected > 0, nil
}

func (r *sqliteRefreshTokenRepo) RevokeAllByUser(ctx context.Context, userID string, at time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE refresh_tokens SET is_revoked = 1, revoked_at = ?
		WHERE user_id = ? AND is_revoked = 0`,
		at.UTC(), userID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to revoke user refresh tokens: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check rows affected: %w", err)
	}
	return affected, nil
}

func (r *sqliteRefreshTokenRepo) DeleteExpiredByUser(ctx context.Context, userID string, now time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM refresh_tokens WHERE user_id = ? AND expires_at <= ?`,
		userID, now.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to delete expired refresh tokens: %w", err)
	}
	return nil
}
