package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sumo-yosou/predict-api/internal/models"
)

// ListRikishi returns the active roster
// @Summary List Rikishi
// @Tags Rikishi
// @Produce json
// @Success 200 {array} models.Wrestler
// @Router /rikishi [get]
func (h *Handler) ListRikishi(w http.ResponseWriter, r *http.Request) {
	list, err := h.wrestlers.ListWrestlers(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if list == nil {
		list = []models.Wrestler{}
	}
	h.jsonResponse(w, http.StatusOK, list)
}

// GetRikishi returns profile, record and recent decisions
// @Summary Rikishi Detail
// @Tags Rikishi
// @Produce json
// @Param id path string true "Rikishi ID"
// @Success 200 {object} models.WrestlerDetail
// @Failure 404 {object} map[string]string
// @Router /rikishi/{id} [get]
func (h *Handler) GetRikishi(w http.ResponseWriter, r *http.Request) {
	detail, err := h.wrestlers.GetWrestlerDetail(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.jsonResponse(w, http.StatusOK, detail)
}

// GetRikishiMatches pages through a rikishi's bouts
// @Summary Rikishi Matches
// @Tags Rikishi
// @Produce json
// @Param id path string true "Rikishi ID"
// @Param limit query int false "Page size (default 20, max 100)"
// @Param offset query int false "Offset"
// @Success 200 {array} models.MatchResult
// @Router /rikishi/{id}/matches [get]
func (h *Handler) GetRikishiMatches(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, "limit must be an integer")
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, "offset must be an integer")
		return
	}

	matches, err := h.wrestlers.GetWrestlerMatches(r.Context(), chi.URLParam(r, "id"), limit, offset)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if matches == nil {
		matches = []models.MatchResult{}
	}
	h.jsonResponse(w, http.StatusOK, matches)
}

// GetRikishiStats returns the all-time record
// @Summary Rikishi Stats
// @Tags Rikishi
// @Produce json
// @Param id path string true "Rikishi ID"
// @Success 200 {object} models.WrestlerStats
// @Router /rikishi/{id}/stats [get]
func (h *Handler) GetRikishiStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.wrestlers.GetWrestlerStats(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.jsonResponse(w, http.StatusOK, stats)
}

// SearchRikishi matches shikona, name or stable
// @Summary Search Rikishi
// @Tags Rikishi
// @Produce json
// @Param query path string true "Search text"
// @Success 200 {array} models.Wrestler
// @Router /rikishi/search/{query} [get]
func (h *Handler) SearchRikishi(w http.ResponseWriter, r *http.Request) {
	list, err := h.wrestlers.SearchWrestlers(r.Context(), chi.URLParam(r, "query"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if list == nil {
		list = []models.Wrestler{}
	}
	h.jsonResponse(w, http.StatusOK, list)
}
