package models

import (
	"fmt"

	"github.com/akinalp/mygames/game"
)

// StartMatchRequest, POST /api/match body'si.
type StartMatchRequest struct {
	Config  game.MatchConfig `json:"config"`
	Players [2]game.Player   `json:"players"`
}

// Validate, config'i ve oyuncu adlarını kontrol eder. Adlar normalize edilir.
func (r *StartMatchRequest) Validate() error {
	if err := r.Config.Validate(); err != nil {
		return err
	}
	players, err := game.ValidatePlayers(r.Players)
	if err != nil {
		return err
	}
	r.Players = players
	return nil
}

// NextRoundRequest, POST /api/match/next-round body'si. GridSize opsiyonel.
type NextRoundRequest struct {
	GridSize *game.GridSize `json:"gridSize,omitempty"`
}

// Validate, verilmişse grid boyutunu kontrol eder.
func (r *NextRoundRequest) Validate() error {
	if r.GridSize != nil && !r.GridSize.Valid() {
		return fmt.Errorf("gridSize must be one of 4x4, 6x6, 8x8")
	}
	return nil
}
