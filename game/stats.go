package game

// PlayerStats, bir oyuncunun tüm maçlardaki toplu istatistiği.
// Her tamamlanan maçta artımlı güncellenir.
type PlayerStats struct {
	Name                 string  `json:"name"`
	MatchesPlayed        int     `json:"matchesPlayed"`
	MatchWins            int     `json:"matchWins"`
	TotalRoundsPlayed    int     `json:"totalRoundsPlayed"`
	TotalRoundsWon       int     `json:"totalRoundsWon"`
	TotalPairsMatched    int     `json:"totalPairsMatched"`
	AverageScorePerRound float64 `json:"averageScorePerRound"`
	LastPlayed           int64   `json:"lastPlayed"` // Son maçın başlangıç zamanı (Unix ms)
}

// ApplyRecord, bir MatchRecord'u iki oyuncunun istatistiğine işler.
// stats map'i yerinde güncellenir; nil ise yenisi oluşturulur.
func ApplyRecord(stats map[string]PlayerStats, rec MatchRecord) map[string]PlayerStats {
	if stats == nil {
		stats = make(map[string]PlayerStats)
	}

	for idx, name := range rec.Players {
		pairs := 0
		for _, round := range rec.Rounds {
			pairs += round.Scores[idx]
		}

		st, ok := stats[name]
		if !ok {
			st = PlayerStats{Name: name}
		}

		st.MatchesPlayed++
		if idx == rec.Winner {
			st.MatchWins++
		}
		st.TotalRoundsPlayed += len(rec.Rounds)
		st.TotalRoundsWon += rec.FinalScore[idx]
		st.TotalPairsMatched += pairs
		if st.TotalRoundsPlayed > 0 {
			st.AverageScorePerRound = float64(st.TotalPairsMatched) / float64(st.TotalRoundsPlayed)
		}
		st.LastPlayed = rec.Timestamp

		stats[name] = st
	}
	return stats
}
