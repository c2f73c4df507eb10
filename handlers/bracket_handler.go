package handlers

import (
	"net/http"

	"github.com/Dosada05/quizbowl-system/services"
)

type BracketHandler struct {
	brackets *services.BracketService
	seeding  *services.SeedingService
	schedule *services.ScheduleService
}

func NewBracketHandler(
	brackets *services.BracketService,
	seeding *services.SeedingService,
	schedule *services.ScheduleService,
) *BracketHandler {
	return &BracketHandler{brackets: brackets, seeding: seeding, schedule: schedule}
}

// Materialize godoc
// @Summary Create the games of a stage from the format document
// @Tags brackets
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param stageID path int true "Stage ID"
// @Success 200 {object} map[string]int
// @Router /tournaments/{tournamentID}/stages/{stageID}/materialize [post]
func (h *BracketHandler) Materialize(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	stageID, err := getIDFromURL(r, "stageID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	created, err := h.brackets.MaterializeStage(r.Context(), tournamentID, stageID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"created": created}, nil)
}

func (h *BracketHandler) AssignSeeds(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	stageID, err := getIDFromURL(r, "stageID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		FromStage int `json:"from_stage"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.FromStage <= 0 {
		input.FromStage = stageID - 1
	}

	created, err := h.seeding.AssignSeeds(r.Context(), tournamentID, input.FromStage, stageID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"created": created}, nil)
}

func (h *BracketHandler) ClearSeeds(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	stageID, err := getIDFromURL(r, "stageID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	removed, err := h.seeding.ClearSeeds(r.Context(), tournamentID, stageID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"removed": removed}, nil)
}

// Schedule godoc
// @Summary List games with team slots resolved for display
// @Tags brackets
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param stage query int false "Stage filter"
// @Success 200 {array} services.ScheduleEntry
// @Router /tournaments/{tournamentID}/schedule [get]
func (h *BracketHandler) Schedule(w http.ResponseWriter, r *http.Request) {
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

	entries, err := h.schedule.Schedule(r.Context(), tournamentID, stageID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"schedule": entries}, nil)
}
