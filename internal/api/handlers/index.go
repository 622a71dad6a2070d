package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/wonny/jhlj/backend/internal/contracts"
	"github.com/wonny/jhlj/backend/internal/report"
	"github.com/wonny/jhlj/backend/pkg/logger"
	"github.com/wonny/jhlj/backend/pkg/redis"
)

// IndexHandler handles index and correlation API endpoints
// ⭐ SSOT: 인덱스 API 핸들러는 이 구조체에서만
type IndexHandler struct {
	service  *report.Service
	cache    *redis.Cache
	cacheTTL time.Duration
	logger   *logger.Logger
}

// NewIndexHandler creates a new index handler
func NewIndexHandler(service *report.Service, cache *redis.Cache, cacheTTL time.Duration, log *logger.Logger) *IndexHandler {
	if cacheTTL <= 0 {
		cacheTTL = redis.TTLMedium
	}
	return &IndexHandler{
		service:  service,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   log,
	}
}

// GetIndex returns the full index payload
// GET /api/index
func (h *IndexHandler) GetIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var payload contracts.ReportPayload
	err := h.cache.GetOrSet(ctx, redis.ReportKey(), &payload, h.cacheTTL, func() (interface{}, error) {
		return h.service.Build(ctx, time.Now().UTC())
	})
	if err != nil {
		h.logger.WithError(err).Error("Failed to build index report")
		respondError(w, http.StatusInternalServerError, "Failed to build index report")
		return
	}

	respondJSON(w, http.StatusOK, &payload)
}

// GetCorrelation returns the correlation detail for one lead offset.
// lead=0 pairs jacket prices with same-day NVDA closes; the sweep over
// every offset lives in the index payload.
// GET /api/correlation?lead=N
func (h *IndexHandler) GetCorrelation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	lead := 0
	if raw := r.URL.Query().Get("lead"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondError(w, http.StatusBadRequest, "Invalid 'lead' parameter (expected non-negative integer)")
			return
		}
		lead = n
	}

	var result contracts.CorrelationResult
	err := h.cache.GetOrSet(ctx, redis.CorrelationKey(lead), &result, redis.TTLLong, func() (interface{}, error) {
		return h.service.Correlation(ctx, time.Now().UTC(), lead)
	})
	if err != nil {
		h.logger.WithError(err).Error("Failed to compute correlation")
		respondError(w, http.StatusInternalServerError, "Failed to compute correlation")
		return
	}

	respondJSON(w, http.StatusOK, &result)
}

// Export streams the daily series as a CSV download
// GET /api/export
func (h *IndexHandler) Export(w http.ResponseWriter, r *http.Request) {
	filename := fmt.Sprintf("jhlj_index_export_%s.csv", time.Now().UTC().Format("20060102_150405"))

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))

	// Headers are already on the wire, so a mid-stream failure can only
	// be logged.
	if err := h.service.ExportCSV(r.Context(), w); err != nil {
		h.logger.WithError(err).Error("CSV export failed")
	}
}

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
