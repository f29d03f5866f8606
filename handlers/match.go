package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/akinalp/mygames/game"
	"github.com/akinalp/mygames/models"
	"github.com/akinalp/mygames/pkg"
	"github.com/akinalp/mygames/services"
)

// MatchHandler, /api/match endpoint'leri. Her kullanıcının kendi maç slotu vardır.
type MatchHandler struct {
	matchService services.MatchService
}

// NewMatchHandler, constructor.
func NewMatchHandler(matchService services.MatchService) *MatchHandler {
	return &MatchHandler{matchService: matchService}
}

// Current — GET /api/match
// Aktif maç yoksa data null döner.
func (h *MatchHandler) Current(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	state, err := h.matchService.Current(r.Context(), user.ID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, state)
}

// Start — POST /api/match
// Body: { "config": { "roundsToWin": 3, "initialGridSize": "4x4" }, "players": [...] }
func (h *MatchHandler) Start(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req models.StartMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.matchService.Start(r.Context(), user.ID, &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusCreated, res)
}

// EndRound — POST /api/match/rounds
// Geçersiz aşamada çağrılırsa 200 + applied=false döner.
func (h *MatchHandler) EndRound(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var result game.RoundResult
	if err := json.NewDecoder(r.Body).Decode(&result); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.matchService.EndRound(r.Context(), user.ID, result)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, res)
}

// NextRound — POST /api/match/next-round
// Body opsiyonel: { "gridSize": "6x6" }
func (h *MatchHandler) NextRound(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req models.NextRoundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.matchService.NextRound(r.Context(), user.ID, &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, res)
}

// Rematch — POST /api/match/rematch
func (h *MatchHandler) Rematch(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	res, err := h.matchService.Rematch(r.Context(), user.ID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, res)
}

// End — DELETE /api/match
// Maçı geçmişe yazmadan bırakır.
func (h *MatchHandler) End(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	if err := h.matchService.End(r.Context(), user.ID); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, models.MessageResponse{Message: "match ended"})
}

// History — GET /api/match/history
// En yeni maç önce gelir.
func (h *MatchHandler) History(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	history, err := h.matchService.History(r.Context(), user.ID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, history)
}

// Stats — GET /api/match/stats
func (h *MatchHandler) Stats(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	stats, err := h.matchService.Stats(r.Context(), user.ID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, stats)
}

// PlayerStats — GET /api/match/stats/{name}
func (h *MatchHandler) PlayerStats(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	stats, err := h.matchService.PlayerStats(r.Context(), user.ID, r.PathValue("name"))
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, stats)
}
