package services

import (
	"context"
	"errors"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/akinalp/mygames/game"
	"github.com/akinalp/mygames/models"
	"github.com/akinalp/mygames/pkg"
	"github.com/akinalp/mygames/repository"
	"github.com/akinalp/mygames/ws"
)

// ---- users ----

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*models.User
}

var _ repository.UserRepository = (*fakeUserRepo)(nil)

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return pkg.ErrAlreadyExists
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) find(pred func(*models.User) bool) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if pred(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, pkg.ErrNotFound
}

func (r *fakeUserRepo) mutate(id string, fn func(*models.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return pkg.ErrNotFound
	}
	fn(u)
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.ID == id })
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Email == email })
}

func (r *fakeUserRepo) GetByVerificationHash(_ context.Context, h string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.VerificationTokenHash != nil && *u.VerificationTokenHash == h })
}

func (r *fakeUserRepo) GetByResetHash(_ context.Context, h string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.ResetTokenHash != nil && *u.ResetTokenHash == h })
}

func (r *fakeUserRepo) List(_ context.Context) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.User
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

func (r *fakeUserRepo) SetVerificationToken(_ context.Context, id, h string, exp time.Time) error {
	return r.mutate(id, func(u *models.User) { u.VerificationTokenHash, u.VerificationExpires = &h, &exp })
}

func (r *fakeUserRepo) MarkEmailVerified(_ context.Context, id string) error {
	return r.mutate(id, func(u *models.User) {
		u.IsEmailVerified = true
		u.VerificationTokenHash, u.VerificationExpires = nil, nil
	})
}

func (r *fakeUserRepo) SetResetToken(_ context.Context, id, h string, exp time.Time) error {
	return r.mutate(id, func(u *models.User) { u.ResetTokenHash, u.ResetExpires = &h, &exp })
}

func (r *fakeUserRepo) ResetPassword(_ context.Context, id, hash string) error {
	return r.mutate(id, func(u *models.User) {
		u.PasswordHash = hash
		u.ResetTokenHash, u.ResetExpires = nil, nil
	})
}

func (r *fakeUserRepo) UpdateLastLogin(_ context.Context, id string, at time.Time) error {
	return r.mutate(id, func(u *models.User) { u.LastLoginAt = &at })
}

func (r *fakeUserRepo) UpdateRole(_ context.Context, id string, role models.Role) error {
	return r.mutate(id, func(u *models.User) { u.Role = role })
}

func (r *fakeUserRepo) SetActive(_ context.Context, id string, active bool) error {
	return r.mutate(id, func(u *models.User) { u.IsActive = active })
}

// ---- refresh tokens ----

type fakeTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]*models.RefreshToken
}

var _ repository.RefreshTokenRepository = (*fakeTokenRepo)(nil)

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{tokens: make(map[string]*models.RefreshToken)}
}

func (r *fakeTokenRepo) Create(_ context.Context, t *models.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *t
	r.tokens[t.Token] = &cp
	return nil
}

func (r *fakeTokenRepo) GetByToken(_ context.Context, token string) (*models.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[token]
	if !ok {
		return nil, pkg.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *fakeTokenRepo) Rotate(_ context.Context, old, ip string, next *models.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[old]
	if !ok || t.IsRevoked {
		return pkg.ErrConflict
	}
	at := next.CreatedAt
	nextToken := next.Token
	t.IsRevoked, t.RevokedAt, t.RevokedByIP, t.ReplacedByToken = true, &at, &ip, &nextToken
	cp := *next
	r.tokens[next.Token] = &cp
	return nil
}

func (r *fakeTokenRepo) Revoke(_ context.Context, token, ip string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[token]
	if !ok || t.IsRevoked {
		return false, nil
	}
	t.IsRevoked, t.RevokedAt, t.RevokedByIP = true, &at, &ip
	return true, nil
}

func (r *fakeTokenRepo) RevokeAllByUser(_ context.Context, userID string, at time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, t := range r.tokens {
		if t.UserID == userID && !t.IsRevoked {
			t.IsRevoked, t.RevokedAt = true, &at
			n++
		}
	}
	return n, nil
}

func (r *fakeTokenRepo) DeleteExpiredByUser(_ context.Context, userID string, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, t := range r.tokens {
		if t.UserID == userID && t.IsExpired(now) {
			delete(r.tokens, k)
		}
	}
	return nil
}

// activeCount, kullanıcının aktif token sayısı.
func (r *fakeTokenRepo) activeCount(userID string, now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, t := range r.tokens {
		if t.UserID == userID && t.IsActive(now) {
			n++
		}
	}
	return n
}

// ---- client storage ----

var errStorageDown = errors.New("storage down")

type fakeStorage struct {
	mu   sync.Mutex
	data map[string][]byte

	failPut string // bu anahtara yazma errStorageDown döner
}

var _ repository.ClientStorageRepository = (*fakeStorage)(nil)

func newFakeStorage() *fakeStorage {
	return &fakeStorage{data: make(map[string][]byte)}
}

func (f *fakeStorage) Get(_ context.Context, owner, key string) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[owner+"|"+key]
	return v, ok, nil
}

func (f *fakeStorage) Put(_ context.Context, owner, key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if key == f.failPut {
		return errStorageDown
	}
	f.data[owner+"|"+key] = value
	return nil
}

func (f *fakeStorage) Delete(_ context.Context, owner, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, owner+"|"+key)
	return nil
}

func (f *fakeStorage) Scoped(owner string) game.KV {
	return scoped{f: f, owner: owner}
}

// Atomic, fn hata dönerse veriyi önceki snapshot'a geri alır.
func (f *fakeStorage) Atomic(_ context.Context, owner string, fn func(kv game.KV) error) error {
	f.mu.Lock()
	snapshot := maps.Clone(f.data)
	f.mu.Unlock()

	if err := fn(f.Scoped(owner)); err != nil {
		f.mu.Lock()
		f.data = snapshot
		f.mu.Unlock()
		return err
	}
	return nil
}

type scoped struct {
	f     *fakeStorage
	owner string
}

func (s scoped) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return s.f.Get(ctx, s.owner, key)
}
func (s scoped) Put(ctx context.Context, key string, v []byte) error {
	return s.f.Put(ctx, s.owner, key, v)
}
func (s scoped) Delete(ctx context.Context, key string) error { return s.f.Delete(ctx, s.owner, key) }

// ---- hub, mailer, invalidator ----

type sentEvent struct {
	userID string
	event  ws.Event
}

type fakeHub struct {
	mu     sync.Mutex
	events []sentEvent
}

func (h *fakeHub) BroadcastToUser(userID string, event ws.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, sentEvent{userID: userID, event: event})
}

func (h *fakeHub) ops(userID string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	var ops []string
	for _, e := range h.events {
		if e.userID == userID {
			ops = append(ops, e.event.Op)
		}
	}
	return ops
}

type fakeMailer struct {
	mu           sync.Mutex
	verification map[string]string // email → plaintext token
	reset        map[string]string
	err          error
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{verification: map[string]string{}, reset: map[string]string{}}
}

func (m *fakeMailer) SendVerification(_ context.Context, to, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.verification[to] = token
	return m.err
}

func (m *fakeMailer) SendPasswordReset(_ context.Context, to, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reset[to] = token
	return m.err
}

type fakeInvalidator struct{ ids []string }

func (f *fakeInvalidator) InvalidateUser(id string) { f.ids = append(f.ids, id) }
