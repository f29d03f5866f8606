package game

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memKV struct {
	data   map[string][]byte
	getErr error
}

var _ KV = (*memKV)(nil)

func newMemKV() *memKV {
	return &memKV{data: make(map[string][]byte)}
}

func (m *memKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memKV) Put(_ context.Context, key string, value []byte) error {
	m.data[key] = value
	return nil
}

func (m *memKV) Delete(_ context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func completedRecord(t *testing.T, id string, winner int) MatchRecord {
	t.Helper()
	s := newTestMatch(2)
	var rec *MatchRecord
	for i := 1; rec == nil; i++ {
		var ok bool
		s, rec, ok = EndRound(s, round(i, winner), t0.Add(time.Minute))
		require.True(t, ok)
		if rec == nil {
			s, _ = StartNextRound(s, nil, t0)
		}
	}
	rec.ID = id
	return *rec
}

func TestStore_CurrentRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewStore(newMemKV(), 0)

	s := newTestMatch(3)
	s, _, _ = EndRound(s, round(1, 0), t0.Add(time.Minute))

	require.NoError(t, store.SaveCurrent(ctx, s))

	loaded, err := store.LoadCurrent(ctx)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, s, *loaded)

	require.NoError(t, store.ClearCurrent(ctx))
	loaded, err = store.LoadCurrent(ctx)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestStore_FreshMatchRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewStore(newMemKV(), 0)

	s := newTestMatch(2)
	require.NoError(t, store.SaveCurrent(ctx, s))

	loaded, err := store.LoadCurrent(ctx)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, s, *loaded)
}

func TestStore_VersionMismatchReadsAsAbsent(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	store := NewStore(kv, 0)

	raw, err := json.Marshal(map[string]any{"version": "0.9", "match": newTestMatch(2)})
	require.NoError(t, err)
	kv.data[KeyCurrentMatch] = raw

	loaded, err := store.LoadCurrent(ctx)
	require.NoError(t, err)
	assert.Nil(t, loaded)

	kv.data[KeyMatchHistory] = []byte(`{"version":"2.0","matches":[{"id":"x"}]}`)
	history, err := store.History(ctx)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestStore_CorruptValueReadsAsAbsent(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	kv.data[KeyCurrentMatch] = []byte(`{not json`)
	kv.data[KeyPlayerStats] = []byte(`{"version":"1.0","stats":"oops"}`)
	store := NewStore(kv, 0)

	loaded, err := store.LoadCurrent(ctx)
	require.NoError(t, err)
	assert.Nil(t, loaded)

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Empty(t, stats)
}

func TestStore_StorageErrorPropagates(t *testing.T) {
	kv := newMemKV()
	kv.getErr = errors.New("disk gone")
	store := NewStore(kv, 0)

	_, err := store.LoadCurrent(context.Background())
	assert.Error(t, err)
}

func TestStore_CompleteMatch(t *testing.T) {
	ctx := context.Background()
	store := NewStore(newMemKV(), 0)

	require.NoError(t, store.SaveCurrent(ctx, newTestMatch(2)))

	rec := completedRecord(t, "m1", 0)
	require.NoError(t, store.CompleteMatch(ctx, rec))

	current, err := store.LoadCurrent(ctx)
	require.NoError(t, err)
	assert.Nil(t, current, "current slot is cleared on completion")

	history, err := store.History(ctx)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, rec, history[0])

	ada, err := store.PlayerStats(ctx, "Ada")
	require.NoError(t, err)
	require.NotNil(t, ada)
	assert.Equal(t, 1, ada.MatchesPlayed)
	assert.Equal(t, 1, ada.MatchWins)
	assert.Equal(t, 2, ada.TotalRoundsPlayed)
	assert.Equal(t, 2, ada.TotalRoundsWon)
	assert.Equal(t, 10, ada.TotalPairsMatched)
	assert.InDelta(t, 5.0, ada.AverageScorePerRound, 1e-9)
	assert.Equal(t, rec.Timestamp, ada.LastPlayed)

	bora, err := store.PlayerStats(ctx, "Bora")
	require.NoError(t, err)
	require.NotNil(t, bora)
	assert.Equal(t, 0, bora.MatchWins)
	assert.Equal(t, 0, bora.TotalRoundsWon)
	assert.Equal(t, 6, bora.TotalPairsMatched)

	missing, err := store.PlayerStats(ctx, "Cem")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestStore_HistoryNewestFirstAndCapped(t *testing.T) {
	ctx := context.Background()
	store := NewStore(newMemKV(), 3)

	for _, id := range []string{"m1", "m2", "m3", "m4", "m5"} {
		require.NoError(t, store.CompleteMatch(ctx, completedRecord(t, id, 1)))
	}

	history, err := store.History(ctx)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "m5", history[0].ID)
	assert.Equal(t, "m4", history[1].ID)
	assert.Equal(t, "m3", history[2].ID)

	// istatistik kırpılan kayıtları da sayar
	bora, err := store.PlayerStats(ctx, "Bora")
	require.NoError(t, err)
	assert.Equal(t, 5, bora.MatchesPlayed)
	assert.Equal(t, 5, bora.MatchWins)
}
