package rest

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/fortuna/augur/internal/scheduler"
	"github.com/fortuna/augur/internal/store"
	"github.com/fortuna/augur/internal/store/repository"
)

// Handler contains dependencies for HTTP handlers
type Handler struct {
	db          *store.Database
	featureRepo *repository.FeatureRepository
	orch        *scheduler.Orchestrator
}

// NewHandler creates a new handler
func NewHandler(db *store.Database, orch *scheduler.Orchestrator) *Handler {
	return &Handler{
		db:          db,
		featureRepo: repository.NewFeatureRepository(db),
		orch:        orch,
	}
}

// HealthCheck handles health check requests
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.db.HealthCheck(); err != nil {
		respondError(w, http.StatusServiceUnavailable, "Database unreachable", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "augur",
		"version": "1.0.0",
	})
}

// GetGameFeatures returns the paired feature row for one game
func (h *Handler) GetGameFeatures(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	gameID := vars["gameID"]

	row, err := h.featureRepo.GetByGameID(r.Context(), gameID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch game features", err)
		return
	}
	if row == nil {
		respondError(w, http.StatusNotFound, "Game not found", nil)
		return
	}

	respondJSON(w, http.StatusOK, row)
}

// GetFeaturesByDate returns all paired rows for games on a date
func (h *Handler) GetFeaturesByDate(w http.ResponseWriter, r *http.Request) {
	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		dateStr = time.Now().Format("2006-01-02")
	}

	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	rows, err := h.featureRepo.GetByDate(r.Context(), date)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch features", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"date":  dateStr,
		"games": rows,
		"count": len(rows),
	})
}

// GetTeamForm returns a team's current form snapshot
func (h *Handler) GetTeamForm(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	teamID := vars["teamID"]

	season := r.URL.Query().Get("season")

	snap, err := h.orch.Datasets().TeamSnapshot(r.Context(), teamID, time.Now(), season)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to compute team form", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"team_id": teamID,
		"form":    snap,
	})
}

// GetUpcomingPredictions returns the latest prices for upcoming games
func (h *Handler) GetUpcomingPredictions(w http.ResponseWriter, r *http.Request) {
	limitStr := r.URL.Query().Get("limit")
	limit := 20 // default
	if limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	preds, err := h.orch.Predictions().LatestPredictions(r.Context(), limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch predictions", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"predictions": preds,
		"count":       len(preds),
	})
}

// TriggerDatasetBuild manually runs a dataset build and pricing pass
func (h *Handler) TriggerDatasetBuild(w http.ResponseWriter, r *http.Request) {
	result, err := h.orch.TriggerBuild(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Dataset build failed", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Dataset build complete",
		"result":  result,
	})
}

// GetSchedulerStatus returns current scheduler status
func (h *Handler) GetSchedulerStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.orch.GetStatus())
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, message string, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]interface{}{
		"error":  message,
		"status": status,
	}

	if err != nil {
		response["details"] = err.Error()
	}

	json.NewEncoder(w).Encode(response)
}
