package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/wonny/jhlj/backend/internal/contracts"
	"github.com/wonny/jhlj/backend/pkg/logger"
	"github.com/wonny/jhlj/backend/pkg/redis"
)

// scrapeTimeout bounds one API-triggered collection cycle.
const scrapeTimeout = 10 * time.Minute

// AdminHandler handles collection and maintenance API endpoints
// ⭐ SSOT: 수집 트리거 API 핸들러는 이 구조체에서만
type AdminHandler struct {
	collector contracts.Collector
	quotes    contracts.QuoteSyncer
	runs      contracts.ScrapeRunRepository
	cache     *redis.Cache
	logger    *logger.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(
	col contracts.Collector,
	quotes contracts.QuoteSyncer,
	runs contracts.ScrapeRunRepository,
	cache *redis.Cache,
	log *logger.Logger,
) *AdminHandler {
	return &AdminHandler{
		collector: col,
		quotes:    quotes,
		runs:      runs,
		cache:     cache,
		logger:    log,
	}
}

// ScrapeResponse is returned when a collection cycle is accepted
type ScrapeResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// TriggerScrape starts a collection cycle in the background.
// A full cycle walks every search query against the marketplace, so the
// request returns 202 immediately instead of holding the connection open.
// POST /api/scrape
func (h *AdminHandler) TriggerScrape(w http.ResponseWriter, r *http.Request) {
	h.logger.Info("Collection cycle triggered via API")

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), scrapeTimeout)
		defer cancel()

		run, err := h.collector.Run(ctx)
		if err != nil {
			h.logger.WithError(err).Error("Triggered collection cycle failed")
			return
		}

		// 새 스냅샷이 들어왔으니 리포트 캐시 무효화
		if err := h.cache.Delete(ctx, redis.ReportKey()); err != nil {
			h.logger.WithError(err).Warn("Failed to invalidate report cache")
		}

		h.logger.WithFields(map[string]interface{}{
			"run_id": run.RunID.String(),
			"stored": run.Stored,
		}).Info("Triggered collection cycle completed")
	}()

	respondJSON(w, http.StatusAccepted, ScrapeResponse{
		Status:  "accepted",
		Message: "Collection cycle started",
	})
}

// BackfillRequest selects how far back the quote history should reach
type BackfillRequest struct {
	Days int `json:"days"`
}

// BackfillResponse reports how many quotes were stored
type BackfillResponse struct {
	Status string `json:"status"`
	Stored int    `json:"stored"`
}

// BackfillQuotes loads historical quotes for the tracked symbol
// POST /api/quotes/backfill
func (h *AdminHandler) BackfillQuotes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// An empty body means the default window.
	var req BackfillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Days < 0 {
		respondError(w, http.StatusBadRequest, "Invalid 'days' (expected non-negative integer)")
		return
	}

	stored, err := h.quotes.Backfill(ctx, req.Days)
	if err != nil {
		h.logger.WithError(err).Error("Quote backfill failed")
		respondError(w, http.StatusInternalServerError, "Quote backfill failed")
		return
	}

	if err := h.cache.Delete(ctx, redis.ReportKey()); err != nil {
		h.logger.WithError(err).Warn("Failed to invalidate report cache")
	}

	respondJSON(w, http.StatusOK, BackfillResponse{
		Status: "success",
		Stored: stored,
	})
}

// RunsResponse lists recent collection cycles
type RunsResponse struct {
	Runs  []*contracts.ScrapeRun `json:"runs"`
	Count int                    `json:"count"`
}

// GetRuns lists recent collection cycles, newest first
// GET /api/runs?limit=N
func (h *AdminHandler) GetRuns(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			respondError(w, http.StatusBadRequest, "Invalid 'limit' parameter (expected 1-100)")
			return
		}
		limit = n
	}

	runs, err := h.runs.GetRecent(r.Context(), limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load collection runs")
		respondError(w, http.StatusInternalServerError, "Failed to load collection runs")
		return
	}

	respondJSON(w, http.StatusOK, RunsResponse{
		Runs:  runs,
		Count: len(runs),
	})
}
