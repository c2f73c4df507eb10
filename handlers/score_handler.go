package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Dosada05/quizbowl-system/models"
	"github.com/Dosada05/quizbowl-system/services"
)

type ScoreHandler struct {
	scores *services.ScoreService
}

func NewScoreHandler(scores *services.ScoreService) *ScoreHandler {
	return &ScoreHandler{scores: scores}
}

// SubmitScorecard godoc
// @Summary Submit a scorecard and finalize the game result
// @Tags scoring
// @Accept json
// @Produce json
// @Param gameID path int true "Game ID"
// @Success 200 {object} map[string]interface{}
// @Router /games/{gameID}/scorecard [put]
func (h *ScoreHandler) SubmitScorecard(w http.ResponseWriter, r *http.Request) {
	gameID, err := getIDFromURL(r, "gameID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Scorecard      json.RawMessage    `json:"scorecard"`
		ResultOverride *models.GameResult `json:"result_override,omitempty"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if len(input.Scorecard) == 0 {
		badRequestResponse(w, r, errors.New("scorecard must not be empty"))
		return
	}

	result, err := h.scores.SubmitScorecard(r.Context(), gameID, input.Scorecard, input.ResultOverride)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"result": result}, nil)
}

// Standings godoc
// @Summary Team standings derived from finalized games
// @Tags scoring
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param stage query int false "Stage filter"
// @Success 200 {array} models.Standing
// @Router /tournaments/{tournamentID}/standings [get]
func (h *ScoreHandler) Standings(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	stageID, err := stageIDFromQuery(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	standings, err := h.scores.ComputeStandings(r.Context(), tournamentID, stageID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"standings": standings}, nil)
}

func (h *ScoreHandler) PlayerStats(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	stageID, err := stageIDFromQuery(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	players, err := h.scores.PlayerStats(r.Context(), tournamentID, stageID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"players": players}, nil)
}
