package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/akinalp/mygames/database"
	"github.com/akinalp/mygames/models"
	"github.com/akinalp/mygames/pkg"
)

// sqliteUserRepo, UserRepository interface'inin SQLite implementasyonu.
//
// Go'da struct field'ları küçük harfle başlarsa (db) → private.
// Repository'nin DB bağlantısı dışarıya açık olmamalı.
type sqliteUserRepo struct {
	db database.TxQuerier
}

// NewSQLiteUserRepo, constructor fonksiyonu.
// UserRepository interface'i döner (concrete struct değil).
func NewSQLiteUserRepo(db database.TxQuerier) UserRepository {
	return &sqliteUserRepo{db: db}
}

const userColumns = `id, email, password_hash, first_name, last_name, role,
	is_email_verified, email_verification_token_hash, email_verification_expires,
	password_reset_token_hash, password_reset_expires,
	is_active, last_login_at, created_at, updated_at`

func (r *sqliteUserRepo) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	query := `
		INSERT INTO users (id, email, password_hash, first_name, last_name, role,
			is_email_verified, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.Role,
		user.IsEmailVerified,
		user.IsActive,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		// UNIQUE constraint violation → email zaten kayıtlı
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: user with this email already exists", pkg.ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (r *sqliteUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func (r *sqliteUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
}

func (r *sqliteUserRepo) GetByVerificationHash(ctx context.Context, tokenHash string) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email_verification_token_hash = ?`, tokenHash)
}

func (r *sqliteUserRepo) GetByResetHash(ctx context.Context, tokenHash string) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE password_reset_token_hash = ?`, tokenHash)
}

func (r *sqliteUserRepo) List(ctx context.Context) ([]models.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate user rows: %w", err)
	}

	return users, nil
}

func (r *sqliteUserRepo) SetVerificationToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	return r.update(ctx, "set verification token",
		`UPDATE users SET email_verification_token_hash = ?, email_verification_expires = ?, updated_at = ?
		 WHERE id = ?`,
		tokenHash, expiresAt.UTC(), time.Now().UTC(), userID)
}

func (r *sqliteUserRepo) MarkEmailVerified(ctx context.Context, userID string) error {
	return r.update(ctx, "mark email verified",
		`UPDATE users SET is_email_verified = 1,
			email_verification_token_hash = NULL, email_verification_expires = NULL, updated_at = ?
		 WHERE id = ?`,
		time.Now().UTC(), userID)
}

func (r *sqliteUserRepo) SetResetToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	return r.update(ctx, "set reset token",
		`UPDATE users SET password_reset_token_hash = ?, password_reset_expires = ?, updated_at = ?
		 WHERE id = ?`,
		tokenHash, expiresAt.UTC(), time.Now().UTC(), userID)
}

func (r *sqliteUserRepo) ResetPassword(ctx context.Context, userID, passwordHash string) error {
	return r.update(ctx, "reset password",
		`UPDATE users SET password_hash = ?,
			password_reset_token_hash = NULL, password_reset_expires = NULL, updated_at = ?
		 WHERE id = ?`,
		passwordHash, time.Now().UTC(), userID)
}

func (r *sqliteUserRepo) UpdateLastLogin(ctx context.Context, userID string, at time.Time) error {
	return r.update(ctx, "update last login",
		`UPDATE users SET last_login_at = ? WHERE id = ?`,
		at.UTC(), userID)
}

func (r *sqliteUserRepo) UpdateRole(ctx context.Context, userID string, role models.Role) error {
	return r.update(ctx, "update role",
		`UPDATE users SET role = ?, updated_at = ? WHERE id = ?`,
		role, time.Now().UTC(), userID)
}

func (r *sqliteUserRepo) SetActive(ctx context.Context, userID string, active bool) error {
	return r.update(ctx, "set active",
		`UPDATE users SET is_active = ?, updated_at = ? WHERE id = ?`,
		active, time.Now().UTC(), userID)
}

func (r *sqliteUserRepo) getOne(ctx context.Context, query string, arg any) (*models.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// update, tek satırı etkilemesi beklenen bir UPDATE çalıştırır.
// Hiç satır etkilenmezse kullanıcı yok demektir.
func (r *sqliteUserRepo) update(ctx context.Context, op, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to %s: %w", op, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return pkg.ErrNotFound
	}
	return nil
}

// rowScanner, *sql.Row ve *sql.Rows'un ortak Scan method'u.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.FirstName, &user.LastName, &user.Role,
		&user.IsEmailVerified, &user.VerificationTokenHash, &user.VerificationExpires,
		&user.ResetTokenHash, &user.ResetExpires,
		&user.IsActive, &user.LastLoginAt, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
