package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/akinalp/mygames/game"
	"github.com/akinalp/mygames/models"
	"github.com/akinalp/mygames/pkg"
	"github.com/akinalp/mygames/repository"
	"github.com/akinalp/mygames/ws"
)

// MatchResult, bir maç işleminin sonucu.
//
// Applied=false ise istenen geçiş mevcut aşamada geçersizdi (ör. between-rounds
// iken tur bitirmek). Bu bir hata değildir, State değişmeden döner.
//
// Winner sadece maç complete aşamasındaysa doludur.
type MatchResult struct {
	State   *game.MatchState  `json:"state"`
	Applied bool              `json:"applied"`
	Winner  *int              `json:"winner,omitempty"`
	Record  *game.MatchRecord `json:"record,omitempty"`
}

func newMatchResult(state *game.MatchState, applied bool) *MatchResult {
	res := &MatchResult{State: state, Applied: applied}
	if state != nil {
		if w, ok := game.Winner(*state); ok {
			res.Winner = &w
		}
	}
	return res
}

// MatchService, kullanıcı başına maç ilerlemesini yönetir.
//
// Her işlem: state'i yükle → saf geçişi uygula → kabul edildiyse kaydet →
// tamamlanma yan etkilerini çalıştır → kullanıcının sekmelerine yayınla.
type MatchService interface {
	Current(ctx context.Context, userID string) (*game.MatchState, error)
	Start(ctx context.Context, userID string, req *models.StartMatchRequest) (*MatchResult, error)
	EndRound(ctx context.Context, userID string, result game.RoundResult) (*MatchResult, error)
	NextRound(ctx context.Context, userID string, req *models.NextRoundRequest) (*MatchResult, error)
	Rematch(ctx context.Context, userID string) (*MatchResult, error)
	End(ctx context.Context, userID string) error
	History(ctx context.Context, userID string) ([]game.MatchRecord, error)
	Stats(ctx context.Context, userID string) (map[string]game.PlayerStats, error)
	PlayerStats(ctx context.Context, userID, name string) (*game.PlayerStats, error)
}

type matchService struct {
	storage      repository.ClientStorageRepository
	hub          ws.EventPublisher
	historyLimit int
	now          func() time.Time
	logger       *zap.Logger

	// locks, aynı kullanıcının iki sekmesinden gelen istekler load→save
	// arasında birbirinin yazdığını ezmesin diye.
	locks *userLocks
}

// userLocks, kullanıcı başına mutex. Entry'yi tutan ya da bekleyen kimse
// kalmayınca silinir, map sadece o an işlem yapan kullanıcılar kadar büyür.
type userLocks struct {
	mu    sync.Mutex
	locks map[string]*userLock
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

func newUserLocks() *userLocks {
	return &userLocks{locks: make(map[string]*userLock)}
}

// lock, kullanıcının mutex'ini alır ve bırakma fonksiyonunu döner.
func (l *userLocks) lock(userID string) func() {
	l.mu.Lock()
	ul, ok := l.locks[userID]
	if !ok {
		ul = &userLock{}
		l.locks[userID] = ul
	}
	ul.refs++
	l.mu.Unlock()

	ul.mu.Lock()
	return func() {
		ul.mu.Unlock()

		l.mu.Lock()
		defer l.mu.Unlock()
		ul.refs--
		if ul.refs == 0 {
			delete(l.locks, userID)
		}
	}
}

func (l *userLocks) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

// NewMatchService, constructor.
func NewMatchService(
	storage repository.ClientStorageRepository,
	hub ws.EventPublisher,
	historyLimit int,
	logger *zap.Logger,
) MatchService {
	return &matchService{
		storage:      storage,
		hub:          hub,
		historyLimit: historyLimit,
		now:          time.Now,
		logger:       logger.Named("match"),
		locks:        newUserLocks(),
	}
}

func (s *matchService) store(userID string) *game.Store {
	return game.NewStore(s.storage.Scoped(userID), s.historyLimit)
}

func (s *matchService) lock(userID string) func() {
	return s.locks.lock(userID)
}

func (s *matchService) Current(ctx context.Context, userID string) (*game.MatchState, error) {
	return s.store(userID).LoadCurrent(ctx)
}

func (s *matchService) Start(ctx context.Context, userID string, req *models.StartMatchRequest) (*MatchResult, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	defer s.lock(userID)()

	state := game.StartMatch(req.Config, req.Players, s.now())
	if err := s.store(userID).SaveCurrent(ctx, state); err != nil {
		return nil, err
	}

	res := newMatchResult(&state, true)
	s.publish(userID, ws.OpMatchUpdate, res)
	return res, nil
}

func (s *matchService) EndRound(ctx context.Context, userID string, result game.RoundResult) (*MatchResult, error) {
	if err := result.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	defer s.lock(userID)()

	store := s.store(userID)
	current, err := store.LoadCurrent(ctx)
	if err != nil {
		return nil, err
	}
	if current == nil {
		s.rejected(userID, "end round", "no active match")
		return newMatchResult(nil, false), nil
	}

	next, record, ok := game.EndRound(*current, result, s.now())
	if !ok {
		s.rejected(userID, "end round", string(current.MatchPhase))
		return newMatchResult(current, false), nil
	}

	if record == nil {
		if err := store.SaveCurrent(ctx, next); err != nil {
			return nil, err
		}
		res := newMatchResult(&next, true)
		s.publish(userID, ws.OpMatchUpdate, res)
		return res, nil
	}

	// Tamamlanma: geçmiş + istatistik güncellenir ve slot temizlenir.
	// Sonra tamamlanmış state tekrar yazılır ki client skor tablosunu
	// gösterebilsin ve rematch isteyebilsin. Dört yazma tek transaction'da.
	err = s.storage.Atomic(ctx, userID, func(kv game.KV) error {
		txStore := game.NewStore(kv, s.historyLimit)
		if err := txStore.CompleteMatch(ctx, *record); err != nil {
			return err
		}
		return txStore.SaveCurrent(ctx, next)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("match complete",
		zap.String("user_id", userID),
		zap.String("match_id", record.ID),
		zap.Int("winner", record.Winner),
		zap.Ints("final_score", record.FinalScore[:]))

	res := newMatchResult(&next, true)
	res.Record = record
	s.publish(userID, ws.OpMatchComplete, res)
	return res, nil
}

func (s *matchService) NextRound(ctx context.Context, userID string, req *models.NextRoundRequest) (*MatchResult, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	defer s.lock(userID)()

	store := s.store(userID)
	current, err := store.LoadCurrent(ctx)
	if err != nil {
		return nil, err
	}
	if current == nil {
		s.rejected(userID, "next round", "no active match")
		return newMatchResult(nil, false), nil
	}

	next, ok := game.StartNextRound(*current, req.GridSize, s.now())
	if !ok {
		s.rejected(userID, "next round", string(current.MatchPhase))
		return newMatchResult(current, false), nil
	}

	if err := store.SaveCurrent(ctx, next); err != nil {
		return nil, err
	}
	res := newMatchResult(&next, true)
	s.publish(userID, ws.OpMatchUpdate, res)
	return res, nil
}

func (s *matchService) Rematch(ctx context.Context, userID string) (*MatchResult, error) {
	defer s.lock(userID)()

	store := s.store(userID)
	current, err := store.LoadCurrent(ctx)
	if err != nil {
		return nil, err
	}
	if current == nil {
		s.rejected(userID, "rematch", "no match state")
		return newMatchResult(nil, false), nil
	}

	next := game.Rematch(*current, s.now())
	if err := store.SaveCurrent(ctx, next); err != nil {
		return nil, err
	}
	res := newMatchResult(&next, true)
	s.publish(userID, ws.OpMatchUpdate, res)
	return res, nil
}

func (s *matchService) End(ctx context.Context, userID string) error {
	defer s.lock(userID)()

	if err := s.store(userID).ClearCurrent(ctx); err != nil {
		return err
	}
	s.publish(userID, ws.OpMatchUpdate, newMatchResult(nil, true))
	return nil
}

func (s *matchService) History(ctx context.Context, userID string) ([]game.MatchRecord, error) {
	return s.store(userID).History(ctx)
}

func (s *matchService) Stats(ctx context.Context, userID string) (map[string]game.PlayerStats, error) {
	return s.store(userID).Stats(ctx)
}

func (s *matchService) PlayerStats(ctx context.Context, userID, name string) (*game.PlayerStats, error) {
	st, err := s.store(userID).PlayerStats(ctx, name)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, fmt.Errorf("%w: no stats for player %q", pkg.ErrNotFound, name)
	}
	return st, nil
}

func (s *matchService) rejected(userID, op, reason string) {
	s.logger.Warn("illegal match transition ignored",
		zap.String("user_id", userID), zap.String("op", op), zap.String("reason", reason))
}

func (s *matchService) publish(userID, op string, res *MatchResult) {
	s.hub.BroadcastToUser(userID, ws.Event{Op: op, Data: res})
}
