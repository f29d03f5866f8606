package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akinalp/mygames/models"
	"github.com/akinalp/mygames/pkg"
)

func newRefreshToken(userID, token string, expiresAt time.Time) *models.RefreshToken {
	ip := "10.0.0.1"
	return &models.RefreshToken{
		Token:       token,
		UserID:      userID,
		ExpiresAt:   expiresAt,
		CreatedByIP: &ip,
		CreatedAt:   time.Now().UTC(),
	}
}

func TestRefreshTokenRepo_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	user := createTestUser(t, NewSQLiteUserRepo(db), "rt@example.com")
	repo := NewSQLiteRefreshTokenRepo(db)

	exp := time.Now().Add(time.Hour)
	require.NoError(t, repo.Create(ctx, newRefreshToken(user.ID, "tok-1", exp)))

	got, err := repo.GetByToken(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.UserID)
	assert.False(t, got.IsRevoked)
	require.NotNil(t, got.CreatedByIP)
	assert.Equal(t, "10.0.0.1", *got.CreatedByIP)
	assert.True(t, got.IsActive(time.Now()))

	_, err = repo.GetByToken(ctx, "nope")
	assert.ErrorIs(t, err, pkg.ErrNotFound)
}

func TestRefreshTokenRepo_RotateLinksChain(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	user := createTestUser(t, NewSQLiteUserRepo(db), "chain@example.com")
	repo := NewSQLiteRefreshTokenRepo(db)
	exp := time.Now().Add(time.Hour)

	require.NoError(t, repo.Create(ctx, newRefreshToken(user.ID, "t1", exp)))
	require.NoError(t, repo.Rotate(ctx, "t1", "10.0.0.2", newRefreshToken(user.ID, "t2", exp)))

	old, err := repo.GetByToken(ctx, "t1")
	require.NoError(t, err)
	assert.True(t, old.IsRevoked)
	require.NotNil(t, old.ReplacedByToken)
	assert.Equal(t, "t2", *old.ReplacedByToken)
	require.NotNil(t, old.RevokedByIP)
	assert.Equal(t, "10.0.0.2", *old.RevokedByIP)
	assert.NotNil(t, old.RevokedAt)

	next, err := repo.GetByToken(ctx, "t2")
	require.NoError(t, err)
	assert.True(t, next.IsActive(time.Now()))
}

func TestRefreshTokenRepo_RotateAlreadyRevokedRollsBack(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	user := createTestUser(t, NewSQLiteUserRepo(db), "cas@example.com")
	repo := NewSQLiteRefreshTokenRepo(db)
	exp := time.Now().Add(time.Hour)

	require.NoError(t, repo.Create(ctx, newRefreshToken(user.ID, "t1", exp)))
	require.NoError(t, repo.Rotate(ctx, "t1", "ip", newRefreshToken(user.ID, "t2", exp)))

	err := repo.Rotate(ctx, "t1", "ip", newRefreshToken(user.ID, "t3", exp))
	assert.ErrorIs(t, err, pkg.ErrConflict)

	_, err = repo.GetByToken(ctx, "t3")
	assert.ErrorIs(t, err, pkg.ErrNotFound, "insert of the losing token is rolled back")
}

func TestRefreshTokenRepo_ConcurrentRotateSingleWinner(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	user := createTestUser(t, NewSQLiteUserRepo(db), "race@example.com")
	repo := NewSQLiteRefreshTokenRepo(db)
	exp := time.Now().Add(time.Hour)

	require.NoError(t, repo.Create(ctx, newRefreshToken(user.ID, "root", exp)))

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := range workers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			next := newRefreshToken(user.ID, "next-"+string(rune('a'+i)), exp)
			errs[i] = repo.Rotate(ctx, "root", "ip", next)
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
		} else {
			assert.ErrorIs(t, err, pkg.ErrConflict)
		}
	}
	assert.Equal(t, 1, wins)
}

func TestRefreshTokenRepo_RevokeIsCAS(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	user := createTestUser(t, NewSQLiteUserRepo(db), "logout@example.com")
	repo := NewSQLiteRefreshTokenRepo(db)

	require.NoError(t, repo.Create(ctx, newRefreshToken(user.ID, "t1", time.Now().Add(time.Hour))))

	changed, err := repo.Revoke(ctx, "t1", "ip", time.Now())
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = repo.Revoke(ctx, "t1", "ip", time.Now())
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = repo.Revoke(ctx, "missing", "ip", time.Now())
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestRefreshTokenRepo_RevokeAllAndCleanup(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	users := NewSQLiteUserRepo(db)
	alice := createTestUser(t, users, "alice@example.com")
	bob := createTestUser(t, users, "bob@example.com")
	repo := NewSQLiteRefreshTokenRepo(db)

	now := time.Now()
	require.NoError(t, repo.Create(ctx, newRefreshToken(alice.ID, "a1", now.Add(time.Hour))))
	require.NoError(t, repo.Create(ctx, newRefreshToken(alice.ID, "a2", now.Add(time.Hour))))
	require.NoError(t, repo.Create(ctx, newRefreshToken(alice.ID, "a-old", now.Add(-time.Hour))))
	require.NoError(t, repo.Create(ctx, newRefreshToken(bob.ID, "b1", now.Add(time.Hour))))

	n, err := repo.RevokeAllByUser(ctx, alice.ID, now)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	b1, err := repo.GetByToken(ctx, "b1")
	require.NoError(t, err)
	assert.False(t, b1.IsRevoked, "other users are untouched")

	require.NoError(t, repo.DeleteExpiredByUser(ctx, alice.ID, now))
	_, err = repo.GetByToken(ctx, "a-old")
	assert.ErrorIs(t, err, pkg.ErrNotFound)
	_, err = repo.GetByToken(ctx, "a1")
	assert.NoError(t, err)
}
