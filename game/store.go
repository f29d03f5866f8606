package game

import (
	"context"
	"encoding/json"
	"fmt"
)

// Saklama anahtarları ve şema versiyonu. İstemci tarafındaki
// local storage ile aynı format, böylece veri iki taraf arasında taşınabilir.
const (
	KeyCurrentMatch = "mymemory:currentMatch"
	KeyMatchHistory = "mymemory:matchHistory"
	KeyPlayerStats  = "mymemory:playerStats"

	StorageVersion = "1.0"

	DefaultHistoryLimit = 50
)

// KV, bir sahibe ait anahtar/değer slot deposu.
// Get, anahtar yoksa (nil, false, nil) döner.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Her saklanan değer versiyonlu bir zarf içindedir.
// Versiyon uyuşmazsa değer yokmuş gibi davranılır, migration yapılmaz.
type storedMatch struct {
	Version string      `json:"version"`
	Match   *MatchState `json:"match"`
}

type storedHistory struct {
	Version string        `json:"version"`
	Matches []MatchRecord `json:"matches"`
}

type storedStats struct {
	Version string                 `json:"version"`
	Stats   map[string]PlayerStats `json:"stats"`
}

// Store, MatchState / geçmiş / istatistik için KV üzerinde ince bir adaptör.
type Store struct {
	kv           KV
	historyLimit int
}

// NewStore, yeni bir Store oluşturur. historyLimit < 1 ise varsayılan kullanılır.
func NewStore(kv KV, historyLimit int) *Store {
	if historyLimit < 1 {
		historyLimit = DefaultHistoryLimit
	}
	return &Store{kv: kv, historyLimit: historyLimit}
}

// LoadCurrent, kayıtlı maçı döner.
// Anahtar yoksa, versiyon farklıysa veya JSON bozuksa (nil, nil) döner.
func (s *Store) LoadCurrent(ctx context.Context) (*MatchState, error) {
	var env storedMatch
	ok, err := s.load(ctx, KeyCurrentMatch, &env)
	if err != nil || !ok {
		return nil, err
	}
	return env.Match, nil
}

// SaveCurrent, maçı kaydeder.
func (s *Store) SaveCurrent(ctx context.Context, state MatchState) error {
	return s.save(ctx, KeyCurrentMatch, storedMatch{Version: StorageVersion, Match: &state})
}

// ClearCurrent, kayıtlı maçı siler.
func (s *Store) ClearCurrent(ctx context.Context) error {
	if err := s.kv.Delete(ctx, KeyCurrentMatch); err != nil {
		return fmt.Errorf("failed to clear %s: %w", KeyCurrentMatch, err)
	}
	return nil
}

// CompleteMatch, kaydı geçmişin başına ekler, en yeni historyLimit kaydı tutar,
// iki oyuncunun istatistiğini günceller ve mevcut maç slotunu temizler.
func (s *Store) CompleteMatch(ctx context.Context, rec MatchRecord) error {
	history, err := s.History(ctx)
	if err != nil {
		return err
	}

	updated := make([]MatchRecord, 0, min(len(history)+1, s.historyLimit))
	updated = append(updated, rec)
	for _, m := range history {
		if len(updated) >= s.historyLimit {
			break
		}
		updated = append(updated, m)
	}
	if err := s.save(ctx, KeyMatchHistory, storedHistory{Version: StorageVersion, Matches: updated}); err != nil {
		return err
	}

	stats, err := s.Stats(ctx)
	if err != nil {
		return err
	}
	stats = ApplyRecord(stats, rec)
	if err := s.save(ctx, KeyPlayerStats, storedStats{Version: StorageVersion, Stats: stats}); err != nil {
		return err
	}

	return s.ClearCurrent(ctx)
}

// History, tamamlanmış maçları en yeniden eskiye döner.
func (s *Store) History(ctx context.Context) ([]MatchRecord, error) {
	var env storedHistory
	ok, err := s.load(ctx, KeyMatchHistory, &env)
	if err != nil {
		return nil, err
	}
	if !ok || env.Matches == nil {
		return []MatchRecord{}, nil
	}
	return env.Matches, nil
}

// Stats, oyuncu adı → istatistik map'ini döner.
func (s *Store) Stats(ctx context.Context) (map[string]PlayerStats, error) {
	var env storedStats
	ok, err := s.load(ctx, KeyPlayerStats, &env)
	if err != nil {
		return nil, err
	}
	if !ok || env.Stats == nil {
		return map[string]PlayerStats{}, nil
	}
	return env.Stats, nil
}

// PlayerStats, tek bir oyuncunun istatistiğini döner, yoksa nil.
func (s *Store) PlayerStats(ctx context.Context, name string) (*PlayerStats, error) {
	stats, err := s.Stats(ctx)
	if err != nil {
		return nil, err
	}
	st, ok := stats[name]
	if !ok {
		return nil, nil
	}
	return &st, nil
}

// load, zarfı okur. Sadece depolama hatası error olarak döner;
// eksik, bozuk veya farklı versiyondaki değer ok=false ile "yok" sayılır.
func (s *Store) load(ctx context.Context, key string, dst any) (bool, error) {
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if !ok {
		return false, nil
	}

	var head struct {
		Version string `json:"version"`
	}
	if err := json.Unmarshal(raw, &head); err != nil || head.Version != StorageVersion {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, nil
	}
	return true, nil
}

func (s *Store) save(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := s.kv.Put(ctx, key, raw); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}
