package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 5, 10, 18, 0, 0, 0, time.UTC)

func newTestMatch(roundsToWin int) MatchState {
	cfg := MatchConfig{RoundsToWin: roundsToWin, InitialGridSize: Grid4x4}
	return StartMatch(cfg, [2]Player{{Name: "Ada"}, {Name: "Bora"}}, t0)
}

func round(n, winner int) RoundResult {
	scores := [2]int{3, 5}
	if winner == 0 {
		scores = [2]int{5, 3}
	}
	return RoundResult{RoundNumber: n, Winner: winner, Scores: scores, GridSize: Grid4x4, Moves: 20, Duration: 60000}
}

func TestStartMatch(t *testing.T) {
	s := StartMatch(
		MatchConfig{RoundsToWin: 3, InitialGridSize: Grid6x6},
		[2]Player{{Name: "Ada", Score: 4}, {Name: "Bora", Score: 2}},
		t0,
	)

	assert.Equal(t, PhasePlaying, s.MatchPhase)
	assert.Equal(t, 1, s.CurrentRound)
	assert.Equal(t, [2]int{0, 0}, s.MatchScore)
	assert.Empty(t, s.RoundHistory)
	assert.Equal(t, 0, s.Players[0].Score)
	assert.Equal(t, 0, s.Players[1].Score)
	assert.Equal(t, t0.UnixMilli(), s.StartTime)
	assert.Equal(t, s.StartTime, s.CurrentRoundStartTime)
}

func TestEndRound_BetweenRounds(t *testing.T) {
	s := newTestMatch(3)

	next, rec, ok := EndRound(s, round(1, 1), t0.Add(time.Minute))
	require.True(t, ok)
	assert.Nil(t, rec)
	assert.Equal(t, PhaseBetweenRounds, next.MatchPhase)
	assert.Equal(t, [2]int{0, 1}, next.MatchScore)
	assert.Len(t, next.RoundHistory, 1)

	// girdi state değişmemeli
	assert.Equal(t, [2]int{0, 0}, s.MatchScore)
	assert.Empty(t, s.RoundHistory)
}

func TestEndRound_NoOpOutsidePlaying(t *testing.T) {
	s := newTestMatch(3)
	s, _, ok := EndRound(s, round(1, 0), t0)
	require.True(t, ok)
	require.Equal(t, PhaseBetweenRounds, s.MatchPhase)

	again, rec, ok := EndRound(s, round(2, 0), t0)
	assert.False(t, ok)
	assert.Nil(t, rec)
	assert.Equal(t, s, again)
}

func TestEndRound_InvalidWinnerRejected(t *testing.T) {
	s := newTestMatch(2)
	r := round(1, 0)
	r.Winner = 2

	next, _, ok := EndRound(s, r, t0)
	assert.False(t, ok)
	assert.Equal(t, s, next)
}

func TestFullMatch_ThreeStraightWins(t *testing.T) {
	s := newTestMatch(3)
	var records []*MatchRecord

	for i := 1; i <= 3; i++ {
		var rec *MatchRecord
		var ok bool
		s, rec, ok = EndRound(s, round(i, 0), t0.Add(time.Duration(i)*time.Minute))
		require.True(t, ok)
		if rec != nil {
			records = append(records, rec)
		}
		if i < 3 {
			s, ok = StartNextRound(s, nil, t0.Add(time.Duration(i)*time.Minute))
			require.True(t, ok)
		}
	}

	assert.Equal(t, PhaseComplete, s.MatchPhase)
	assert.Equal(t, [2]int{3, 0}, s.MatchScore)

	w, ok := Winner(s)
	require.True(t, ok)
	assert.Equal(t, 0, w)

	require.Len(t, records, 1)
	rec := records[0]
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, 0, rec.Winner)
	assert.Equal(t, [2]int{3, 0}, rec.FinalScore)
	assert.Len(t, rec.Rounds, 3)
	assert.Equal(t, [2]string{"Ada", "Bora"}, rec.Players)
	assert.Equal(t, t0.UnixMilli(), rec.Timestamp)
	assert.Equal(t, (3 * time.Minute).Milliseconds(), rec.Duration)
}

func TestStartNextRound(t *testing.T) {
	s := newTestMatch(2)

	_, ok := StartNextRound(s, nil, t0)
	assert.False(t, ok, "next round is illegal while playing")

	s, _, _ = EndRound(s, round(1, 1), t0)
	grid := Grid8x8
	later := t0.Add(2 * time.Minute)

	next, ok := StartNextRound(s, &grid, later)
	require.True(t, ok)
	assert.Equal(t, s.CurrentRound+1, next.CurrentRound)
	assert.Equal(t, PhasePlaying, next.MatchPhase)
	assert.Equal(t, later.UnixMilli(), next.CurrentRoundStartTime)
	assert.Equal(t, Grid8x8, next.Config.InitialGridSize)
	assert.Equal(t, Grid4x4, s.Config.InitialGridSize)
}

func TestRematch(t *testing.T) {
	s := newTestMatch(2)
	s, _, _ = EndRound(s, round(1, 1), t0)
	s, _ = StartNextRound(s, nil, t0)
	s, _, _ = EndRound(s, round(2, 1), t0)
	require.Equal(t, PhaseComplete, s.MatchPhase)

	later := t0.Add(time.Hour)
	r := Rematch(s, later)
	assert.Equal(t, s.Config, r.Config)
	assert.Equal(t, "Ada", r.Players[0].Name)
	assert.Equal(t, PhasePlaying, r.MatchPhase)
	assert.Equal(t, 1, r.CurrentRound)
	assert.Empty(t, r.RoundHistory)
	assert.Equal(t, [2]int{0, 0}, r.MatchScore)
	assert.Equal(t, later.UnixMilli(), r.StartTime)
}

func TestWinner_NotComplete(t *testing.T) {
	_, ok := Winner(newTestMatch(2))
	assert.False(t, ok)
}

func TestMatchConfig_Validate(t *testing.T) {
	assert.NoError(t, MatchConfig{RoundsToWin: 2, InitialGridSize: Grid4x4}.Validate())
	assert.NoError(t, MatchConfig{RoundsToWin: 4, InitialGridSize: Grid8x8}.Validate())
	assert.Error(t, MatchConfig{RoundsToWin: 1, InitialGridSize: Grid4x4}.Validate())
	assert.Error(t, MatchConfig{RoundsToWin: 5, InitialGridSize: Grid4x4}.Validate())
	assert.Error(t, MatchConfig{RoundsToWin: 3, InitialGridSize: "5x5"}.Validate())
}

func TestRoundResult_Validate(t *testing.T) {
	assert.NoError(t, round(1, 0).Validate())

	bad := round(1, 0)
	bad.Scores = [2]int{8, 1}
	assert.Error(t, bad.Validate(), "4x4 only has 8 pairs")

	bad = round(1, 0)
	bad.Winner = -1
	assert.Error(t, bad.Validate())

	bad = round(1, 0)
	bad.Moves = -1
	assert.Error(t, bad.Validate())
}

func TestValidatePlayers(t *testing.T) {
	players, err := ValidatePlayers([2]Player{{Name: "  Ada "}, {Name: "Bora"}})
	require.NoError(t, err)
	assert.Equal(t, "Ada", players[0].Name)

	_, err = ValidatePlayers([2]Player{{Name: " "}, {Name: "Bora"}})
	assert.Error(t, err)
}
