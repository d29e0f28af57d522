package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sumo-yosou/predict-api/internal/models"
)

// GetPredictions lists predictions for one tournament day
// @Summary List Predictions
// @Description Free users see their own predictions; premium users see everyone's, ordered by win probability
// @Tags Predictions
// @Produce json
// @Security BearerAuth
// @Param tournament query string true "Tournament id, e.g. 2025.05"
// @Param day query int true "Day 1-15"
// @Success 200 {array} models.Prediction
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]interface{} "Quota exceeded"
// @Router /predictions [get]
func (h *Handler) GetPredictions(w http.ResponseWriter, r *http.Request) {
	tournament := r.URL.Query().Get("tournament")
	day, err := queryInt(r, "day", 0)
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, "day must be an integer")
		return
	}

	preds, err := h.predictions.GetPredictions(r.Context(), identityFrom(r.Context()), tournament, day)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if preds == nil {
		preds = []models.Prediction{}
	}
	h.jsonResponse(w, http.StatusOK, preds)
}

// CreatePrediction scores a bout and stores the caller's pick
// @Summary Create Prediction
// @Tags Predictions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body models.CreatePredictionRequest true "Nominated winner and loser"
// @Success 201 {object} models.Prediction
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]interface{} "Quota exceeded"
// @Failure 404 {object} map[string]string "Unknown rikishi"
// @Router /predictions [post]
func (h *Handler) CreatePrediction(w http.ResponseWriter, r *http.Request) {
	var req models.CreatePredictionRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	pred, err := h.predictions.CreatePrediction(r.Context(), identityFrom(r.Context()), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.jsonResponse(w, http.StatusCreated, pred)
}

// GetPrediction returns one prediction to its owner or a premium user
// @Summary Get Prediction
// @Tags Predictions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Prediction ID"
// @Success 200 {object} models.Prediction
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /predictions/{id} [get]
func (h *Handler) GetPrediction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	pred, err := h.predictions.GetPrediction(r.Context(), identityFrom(r.Context()), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.jsonResponse(w, http.StatusOK, pred)
}

// RecordResult resolves a prediction against the actual bout winner
// @Summary Record Result
// @Tags Predictions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Prediction ID"
// @Param body body models.RecordResultRequest true "Actual winner"
// @Success 200 {object} models.Prediction
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string "Already recorded"
// @Router /predictions/{id}/result [post]
func (h *Handler) RecordResult(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req models.RecordResultRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	pred, err := h.predictions.RecordResult(r.Context(), identityFrom(r.Context()), id, req.ActualWinnerID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.jsonResponse(w, http.StatusOK, pred)
}

// GetPredictionStats returns the caller's accuracy and streaks
// @Summary Prediction Stats
// @Tags Predictions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.UserPredictionStats
// @Router /predictions/stats [get]
func (h *Handler) GetPredictionStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.predictions.GetStats(r.Context(), identityFrom(r.Context()))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.jsonResponse(w, http.StatusOK, stats)
}

// GetPredictionRanking returns the accuracy leaderboard
// @Summary Prediction Ranking
// @Tags Predictions
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Max rows (default 10, max 100)"
// @Success 200 {array} models.RankingEntry
// @Router /predictions/ranking [get]
func (h *Handler) GetPredictionRanking(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, "limit must be an integer")
		return
	}

	ranking, err := h.predictions.GetRanking(r.Context(), limit)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if ranking == nil {
		ranking = []models.RankingEntry{}
	}
	h.jsonResponse(w, http.StatusOK, ranking)
}

// GetPredictionHistory pages through the caller's predictions, newest first
// @Summary Prediction History
// @Tags Predictions
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page (default 1)"
// @Param limit query int false "Page size (default 20, max 100)"
// @Success 200 {object} models.PredictionHistory
// @Router /predictions/history [get]
func (h *Handler) GetPredictionHistory(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page", 1)
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, "page must be an integer")
		return
	}
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, "limit must be an integer")
		return
	}

	history, err := h.predictions.GetHistory(r.Context(), identityFrom(r.Context()), page, limit)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.jsonResponse(w, http.StatusOK, history)
}
