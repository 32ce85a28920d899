package handler

import (
	"encoding/json"
	"net/http"

	"chapterlink/internal/chapter"
	"chapterlink/pkg/errors"
	"chapterlink/pkg/logger"
	"chapterlink/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// ChapterHandler handles chapter management endpoints.
type ChapterHandler struct {
	service   *chapter.Service
	validator *validator.Validator
	logger    logger.Logger
}

// NewChapterHandler creates a new ChapterHandler.
func NewChapterHandler(service *chapter.Service, val *validator.Validator, log logger.Logger) *ChapterHandler {
	return &ChapterHandler{service: service, validator: val, logger: log}
}

// Create registers a new chapter.
func (h *ChapterHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req chapter.CreateChapterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if respondValidation(w, h.validator.ValidateStructured(&req)) {
		return
	}

	c, err := h.service.Create(r.Context(), &req)
	if err != nil {
		h.logger.Error("Chapter creation failed", map[string]interface{}{"error": err.Error()})
		respondError(w, http.StatusInternalServerError, "Chapter creation failed")
		return
	}

	respondJSON(w, http.StatusCreated, c)
}

// Get returns a single chapter.
func (h *ChapterHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid chapter ID")
		return
	}

	c, err := h.service.Get(r.Context(), id)
	if err != nil {
		if err == errors.ErrChapterNotFound {
			respondError(w, http.StatusNotFound, "Chapter not found")
			return
		}
		h.logger.Error("Failed to fetch chapter", map[string]interface{}{"error": err.Error()})
		respondError(w, http.StatusInternalServerError, "Failed to fetch chapter")
		return
	}

	respondJSON(w, http.StatusOK, c)
}

// List returns chapters, paginated.
func (h *ChapterHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	chapters, err := h.service.List(r.Context(), limit, offset)
	if err != nil {
		h.logger.Error("Failed to list chapters", map[string]interface{}{"error": err.Error()})
		respondError(w, http.StatusInternalServerError, "Failed to list chapters")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"chapters": chapters,
		"limit":    limit,
		"offset":   offset,
	})
}
