package handler

import (
	stderrors "errors"
	"net/http"

	"chapterlink/internal/activity"
	"chapterlink/internal/stats"
	"chapterlink/pkg/errors"
	"chapterlink/pkg/logger"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// StatsHandler serves chapter performance stats and the activity feed.
type StatsHandler struct {
	stats  *stats.Service
	feed   *activity.Service
	logger logger.Logger
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(statsSvc *stats.Service, feedSvc *activity.Service, log logger.Logger) *StatsHandler {
	return &StatsHandler{stats: statsSvc, feed: feedSvc, logger: log}
}

// GetChapterStats computes a chapter's aggregate metrics for a calendar
// month. Stats are derived on every request, never read from a snapshot.
func (h *StatsHandler) GetChapterStats(w http.ResponseWriter, r *http.Request) {
	chapterID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid chapter ID")
		return
	}

	window := windowFromQuery(r)

	result, err := h.stats.ComputeChapterStats(r.Context(), chapterID, window)
	if err != nil {
		switch {
		case err == errors.ErrChapterNotFound:
			respondError(w, http.StatusNotFound, "Chapter not found")
		case stderrors.Is(err, errors.ErrAggregationFailed):
			h.logger.Error("Stats aggregation failed", map[string]interface{}{
				"chapter_id": chapterID.String(),
				"error":      err.Error(),
			})
			respondError(w, http.StatusInternalServerError, "Stats aggregation failed")
		default:
			h.logger.Error("Failed to compute chapter stats", map[string]interface{}{"error": err.Error()})
			respondError(w, http.StatusInternalServerError, "Failed to compute chapter stats")
		}
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetActivityFeed returns the merged recent-activity feed for a chapter.
func (h *StatsHandler) GetActivityFeed(w http.ResponseWriter, r *http.Request) {
	chapterID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid chapter ID")
		return
	}

	limit := queryInt(r, "limit", 0)

	feed, err := h.feed.BuildActivityFeed(r.Context(), chapterID, limit)
	if err != nil {
		if err == errors.ErrChapterNotFound {
			respondError(w, http.StatusNotFound, "Chapter not found")
			return
		}
		h.logger.Error("Failed to build activity feed", map[string]interface{}{"error": err.Error()})
		respondError(w, http.StatusInternalServerError, "Failed to build activity feed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"activities": feed,
		"count":      len(feed),
	})
}
