package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"chapterlink/internal/domain"
	"chapterlink/internal/member"
	"chapterlink/pkg/errors"
	"chapterlink/pkg/logger"
	"chapterlink/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// MemberHandler handles chapter membership and metric submission endpoints.
type MemberHandler struct {
	service   *member.Service
	validator *validator.Validator
	logger    logger.Logger
}

// NewMemberHandler creates a new MemberHandler.
func NewMemberHandler(service *member.Service, val *validator.Validator, log logger.Logger) *MemberHandler {
	return &MemberHandler{service: service, validator: val, logger: log}
}

// Join adds a user to a chapter.
func (h *MemberHandler) Join(w http.ResponseWriter, r *http.Request) {
	chapterID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid chapter ID")
		return
	}

	var req member.JoinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.ChapterID = chapterID

	if respondValidation(w, h.validator.ValidateStructured(&req)) {
		return
	}

	m, err := h.service.Join(r.Context(), &req)
	if err != nil {
		switch err {
		case errors.ErrChapterNotFound:
			respondError(w, http.StatusNotFound, "Chapter not found")
		case errors.ErrMemberAlreadyJoined:
			respondError(w, http.StatusConflict, "User already a member of this chapter")
		default:
			h.logger.Error("Member join failed", map[string]interface{}{"error": err.Error()})
			respondError(w, http.StatusInternalServerError, "Member join failed")
		}
		return
	}

	respondJSON(w, http.StatusCreated, m)
}

// List returns chapter members with derived scores and inactivity flags.
func (h *MemberHandler) List(w http.ResponseWriter, r *http.Request) {
	chapterID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid chapter ID")
		return
	}

	window := windowFromQuery(r)

	members, err := h.service.ListWithScores(r.Context(), chapterID, window)
	if err != nil {
		if err == errors.ErrChapterNotFound {
			respondError(w, http.StatusNotFound, "Chapter not found")
			return
		}
		h.logger.Error("Failed to list members", map[string]interface{}{"error": err.Error()})
		respondError(w, http.StatusInternalServerError, "Failed to list members")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"members": members,
		"window":  window,
	})
}

// SubmitMetric records a monthly metric for a member.
func (h *MemberHandler) SubmitMetric(w http.ResponseWriter, r *http.Request) {
	chapterID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid chapter ID")
		return
	}

	var req member.SubmitMetricRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.ChapterID = chapterID

	if respondValidation(w, h.validator.ValidateStructured(&req)) {
		return
	}

	sub, err := h.service.SubmitMetric(r.Context(), &req)
	if err != nil {
		switch err {
		case errors.ErrChapterNotFound:
			respondError(w, http.StatusNotFound, "Chapter not found")
		case errors.ErrMemberNotFound:
			respondError(w, http.StatusNotFound, "Member not found")
		default:
			h.logger.Error("Metric submission failed", map[string]interface{}{"error": err.Error()})
			respondError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	respondJSON(w, http.StatusCreated, sub)
}

// windowFromQuery parses ?month=YYYY-MM into a calendar month window.
// Absent or malformed values yield the zero window, which services
// interpret as the current month.
func windowFromQuery(r *http.Request) domain.Window {
	v := r.URL.Query().Get("month")
	if v == "" {
		return domain.Window{}
	}
	t, err := time.Parse("2006-01", v)
	if err != nil {
		return domain.Window{}
	}
	return domain.MonthWindow(t)
}
