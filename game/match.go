// Package game, hafıza oyununun maç ilerleme motorunu içerir.
//
// Buradaki fonksiyonlar saftır (pure): girdi olarak bir MatchState ve
// saat (now) alır, yeni bir MatchState döner. Girdi state'i hiç değiştirilmez.
// Kalıcılık (store.go) ve yayın (services.MatchService) ayrı katmanlardır.
//
// Maç akışı:
//
//	StartMatch → playing ─EndRound→ between-rounds ─StartNextRound→ playing ...
//	                         └─(skor roundsToWin'e ulaştı)→ complete
package game

import (
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// GridSize, kart ızgarasının boyutu.
type GridSize string

const (
	Grid4x4 GridSize = "4x4"
	Grid6x6 GridSize = "6x6"
	Grid8x8 GridSize = "8x8"
)

// Valid, bilinen bir ızgara boyutu olup olmadığını döner.
func (g GridSize) Valid() bool {
	switch g {
	case Grid4x4, Grid6x6, Grid8x8:
		return true
	}
	return false
}

// Pairs, ızgaradaki toplam çift sayısı.
func (g GridSize) Pairs() int {
	switch g {
	case Grid4x4:
		return 8
	case Grid6x6:
		return 18
	case Grid8x8:
		return 32
	}
	return 0
}

// Phase, maçın yaşam döngüsündeki aşaması. Bir maç içinde sadece ileri gider.
type Phase string

const (
	PhasePlaying       Phase = "playing"
	PhaseBetweenRounds Phase = "between-rounds"
	PhaseComplete      Phase = "complete"
)

const maxPlayerNameLen = 30

// MatchConfig, maç ayarları.
type MatchConfig struct {
	RoundsToWin     int      `json:"roundsToWin"`
	InitialGridSize GridSize `json:"initialGridSize"`
}

// Validate, roundsToWin 2, 3 veya 4 olmalı.
func (c MatchConfig) Validate() error {
	if c.RoundsToWin < 2 || c.RoundsToWin > 4 {
		return fmt.Errorf("roundsToWin must be 2, 3 or 4")
	}
	if !c.InitialGridSize.Valid() {
		return fmt.Errorf("initialGridSize must be one of 4x4, 6x6, 8x8")
	}
	return nil
}

// Player, bir oyuncu ve mevcut turdaki puanı.
type Player struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// RoundResult, biten bir turun sonucu. Listeye eklendikten sonra değişmez.
type RoundResult struct {
	RoundNumber int      `json:"roundNumber"`
	Winner      int      `json:"winner"`   // Kazanan oyuncunun index'i (0 veya 1)
	Scores      [2]int   `json:"scores"`   // Oyuncuların eşleştirdiği çift sayısı
	GridSize    GridSize `json:"gridSize"`
	Moves       int      `json:"moves"`
	Duration    int64    `json:"duration"` // milisaniye
}

// Validate, tur sonucunun kendi içinde tutarlı olduğunu kontrol eder.
func (r RoundResult) Validate() error {
	if r.Winner != 0 && r.Winner != 1 {
		return fmt.Errorf("winner must be 0 or 1")
	}
	if !r.GridSize.Valid() {
		return fmt.Errorf("gridSize must be one of 4x4, 6x6, 8x8")
	}
	if r.Scores[0] < 0 || r.Scores[1] < 0 {
		return fmt.Errorf("scores must not be negative")
	}
	if r.Scores[0]+r.Scores[1] > r.GridSize.Pairs() {
		return fmt.Errorf("scores exceed the pairs available on a %s grid", r.GridSize)
	}
	if r.Moves < 0 || r.Duration < 0 {
		return fmt.Errorf("moves and duration must not be negative")
	}
	return nil
}

// MatchState, devam eden bir maçın tam durumu.
// Zaman damgaları Unix milisaniye cinsindendir.
type MatchState struct {
	Config                MatchConfig   `json:"config"`
	Players               [2]Player     `json:"players"`
	CurrentRound          int           `json:"currentRound"`
	MatchScore            [2]int        `json:"matchScore"` // Oyuncuların kazandığı tur sayısı
	RoundHistory          []RoundResult `json:"roundHistory"`
	MatchPhase            Phase         `json:"matchPhase"`
	StartTime             int64         `json:"startTime"`
	CurrentRoundStartTime int64         `json:"currentRoundStartTime"`
}

// MatchRecord, tamamlanmış bir maçın kaydı. Bir kez yazılır.
type MatchRecord struct {
	ID         string        `json:"id"`
	Timestamp  int64         `json:"timestamp"` // Maç başlangıcı
	Config     MatchConfig   `json:"config"`
	Players    [2]string     `json:"players"`
	FinalScore [2]int        `json:"finalScore"`
	Rounds     []RoundResult `json:"rounds"`
	Winner     int           `json:"winner"`
	Duration   int64         `json:"duration"` // milisaniye
}

// ValidatePlayers, iki oyuncu adını normalize eder ve kontrol eder.
func ValidatePlayers(players [2]Player) ([2]Player, error) {
	for i := range players {
		players[i].Name = strings.TrimSpace(players[i].Name)
		n := utf8.RuneCountInString(players[i].Name)
		if n == 0 {
			return players, fmt.Errorf("player %d name is required", i+1)
		}
		if n > maxPlayerNameLen {
			return players, fmt.Errorf("player %d name must be at most %d characters", i+1, maxPlayerNameLen)
		}
	}
	return players, nil
}

// StartMatch, yeni bir maç başlatır. Her zaman sıfırdan başlar:
// tur 1, skorlar sıfır, geçmiş boş.
func StartMatch(cfg MatchConfig, players [2]Player, now time.Time) MatchState {
	ts := now.UnixMilli()
	for i := range players {
		players[i].Score = 0
	}
	return MatchState{
		Config:                cfg,
		Players:               players,
		CurrentRound:          1,
		MatchScore:            [2]int{0, 0},
		RoundHistory:          []RoundResult{},
		MatchPhase:            PhasePlaying,
		StartTime:             ts,
		CurrentRoundStartTime: ts,
	}
}

// EndRound, oynanan turu bitirir.
//
// Sadece playing aşamasında geçerlidir. Değilse state aynen ve ok=false döner.
// Bir oyuncunun skoru roundsToWin'e ulaşırsa maç complete olur ve bir
// MatchRecord üretilir, aksi halde between-rounds'a geçilir.
func EndRound(s MatchState, result RoundResult, now time.Time) (MatchState, *MatchRecord, bool) {
	if s.MatchPhase != PhasePlaying || (result.Winner != 0 && result.Winner != 1) {
		return s, nil, false
	}

	next := s
	next.MatchScore[result.Winner]++
	next.RoundHistory = append(slices.Clone(s.RoundHistory), result)

	winner, done := thresholdWinner(next)
	if !done {
		next.MatchPhase = PhaseBetweenRounds
		return next, nil, true
	}

	next.MatchPhase = PhaseComplete
	record := &MatchRecord{
		ID:         uuid.New().String(),
		Timestamp:  s.StartTime,
		Config:     s.Config,
		Players:    [2]string{s.Players[0].Name, s.Players[1].Name},
		FinalScore: next.MatchScore,
		Rounds:     slices.Clone(next.RoundHistory),
		Winner:     winner,
		Duration:   now.UnixMilli() - s.StartTime,
	}
	return next, record, true
}

// StartNextRound, between-rounds aşamasından bir sonraki tura geçer.
// gridSize verilirse config.initialGridSize üzerine yazılır.
func StartNextRound(s MatchState, gridSize *GridSize, now time.Time) (MatchState, bool) {
	if s.MatchPhase != PhaseBetweenRounds {
		return s, false
	}

	next := s
	next.CurrentRound++
	next.MatchPhase = PhasePlaying
	next.CurrentRoundStartTime = now.UnixMilli()
	if gridSize != nil {
		next.Config.InitialGridSize = *gridSize
	}
	return next, true
}

// Rematch, aynı ayarlar ve oyuncularla yeni bir maç başlatır. Geçmiş silinir.
func Rematch(s MatchState, now time.Time) MatchState {
	return StartMatch(s.Config, s.Players, now)
}

// Winner, maç tamamlandıysa eşiğe ulaşan oyuncunun index'ini döner.
func Winner(s MatchState) (int, bool) {
	if s.MatchPhase != PhaseComplete {
		return 0, false
	}
	return thresholdWinner(s)
}

func thresholdWinner(s MatchState) (int, bool) {
	switch {
	case s.MatchScore[0] >= s.Config.RoundsToWin:
		return 0, true
	case s.MatchScore[1] >= s.Config.RoundsToWin:
		return 1, true
	}
	return 0, false
}
