package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/sumo-yosou/predict-api/internal/models"
	"github.com/sumo-yosou/predict-api/internal/worker"
)

// splitRecords accepts either a JSON array or newline-delimited JSON objects
// and returns the raw record bodies.
func splitRecords(body []byte) ([]json.RawMessage, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, nil
	}

	if body[0] == '[' {
		var records []json.RawMessage
		if err := json.Unmarshal(body, &records); err != nil {
			return nil, err
		}
		return records, nil
	}

	var records []json.RawMessage
	for _, line := range bytes.Split(body, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		records = append(records, json.RawMessage(line))
	}
	return records, nil
}

func (h *Handler) readIngestBody(w http.ResponseWriter, r *http.Request) ([]json.RawMessage, bool) {
	// Limit request body to 1MB to prevent DoS
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodySize)
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.errorResponse(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return nil, false
		}
		h.errorResponse(w, http.StatusBadRequest, "Failed to read body")
		return nil, false
	}

	records, err := splitRecords(body)
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, "Body must be a JSON array or newline-delimited JSON")
		return nil, false
	}
	return records, true
}

// IngestMatches handles POST /api/v1/ingest/matches
// @Summary Ingest Match Results
// @Description Accepts a JSON array or newline-separated JSON bouts and queues them for ClickHouse
// @Tags Ingestion
// @Accept json
// @Produce json
// @Security IngestToken
// @Param body body []models.MatchIngest true "Bouts"
// @Success 202 {object} models.IngestResponse "Accepted"
// @Failure 400 {object} map[string]string "Bad Request"
// @Router /ingest/matches [post]
func (h *Handler) IngestMatches(w http.ResponseWriter, r *http.Request) {
	records, ok := h.readIngestBody(w, r)
	if !ok {
		return
	}

	receivedAt := h.now()
	resp := models.IngestResponse{Status: "accepted"}

	for i, raw := range records {
		var in models.MatchIngest
		if err := json.Unmarshal(raw, &in); err != nil {
			h.logger.Warnw("Failed to unmarshal match", "error", err, "index", i)
			resp.Rejected++
			continue
		}
		if err := h.validator.Struct(&in); err != nil {
			h.logger.Warnw("Validation failed for match", "error", err, "index", i, "match_id", in.MatchID)
			resp.Rejected++
			continue
		}

		match := worker.NormalizeMatch(in, receivedAt)
		if !h.pool.Enqueue(match) {
			h.logger.Warnw("Worker pool queue full, dropping remaining matches in batch", "remaining", len(records)-i)
			resp.Rejected += len(records) - i
			break
		}
		resp.Processed++
	}

	h.jsonResponse(w, http.StatusAccepted, resp)
}

// IngestRikishi handles POST /api/v1/ingest/rikishi
// @Summary Ingest Rikishi
// @Description Upserts roster rows by id; invalid rows are skipped
// @Tags Ingestion
// @Accept json
// @Produce json
// @Security IngestToken
// @Param body body []models.Wrestler true "Rikishi"
// @Success 200 {object} models.IngestResponse
// @Failure 400 {object} map[string]string "Bad Request"
// @Router /ingest/rikishi [post]
func (h *Handler) IngestRikishi(w http.ResponseWriter, r *http.Request) {
	records, ok := h.readIngestBody(w, r)
	if !ok {
		return
	}

	wrestlers := make([]models.Wrestler, 0, len(records))
	rejected := 0
	for i, raw := range records {
		var wr models.Wrestler
		if err := json.Unmarshal(raw, &wr); err != nil {
			h.logger.Warnw("Failed to unmarshal rikishi", "error", err, "index", i)
			rejected++
			continue
		}
		wrestlers = append(wrestlers, wr)
	}

	n, err := h.wrestlers.UpsertWrestlers(r.Context(), wrestlers)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.jsonResponse(w, http.StatusOK, models.IngestResponse{
		Status:    "ok",
		Processed: n,
		Rejected:  rejected + len(wrestlers) - n,
	})
}
