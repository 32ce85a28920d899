package handler

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"chapterlink/internal/domain"
	"chapterlink/internal/trade"
	"chapterlink/pkg/errors"
	"chapterlink/pkg/logger"
	"chapterlink/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// TradeHandler handles trade recording and status transitions.
type TradeHandler struct {
	service   *trade.Service
	validator *validator.Validator
	logger    logger.Logger
}

// NewTradeHandler creates a new TradeHandler.
func NewTradeHandler(service *trade.Service, val *validator.Validator, log logger.Logger) *TradeHandler {
	return &TradeHandler{service: service, validator: val, logger: log}
}

// Create records a new trade in pending status.
func (h *TradeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req trade.CreateTradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if respondValidation(w, h.validator.ValidateStructured(&req)) {
		return
	}

	t, err := h.service.Create(r.Context(), &req)
	if err != nil {
		if err == errors.ErrChapterNotFound {
			respondError(w, http.StatusNotFound, "Chapter not found")
			return
		}
		h.logger.Error("Trade creation failed", map[string]interface{}{"error": err.Error()})
		respondError(w, http.StatusInternalServerError, "Trade creation failed")
		return
	}

	respondJSON(w, http.StatusCreated, t)
}

// TransitionRequest carries a requested status change for a trade.
type TransitionRequest struct {
	Status         domain.TradeStatus `json:"status" validate:"required,oneof=pending paid invoiced cancelled failed"`
	MpesaReference string             `json:"mpesa_reference,omitempty"`
}

// Transition moves a trade to a new status.
func (h *TradeHandler) Transition(w http.ResponseWriter, r *http.Request) {
	tradeID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid trade ID")
		return
	}

	var req TransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if respondValidation(w, h.validator.ValidateStructured(&req)) {
		return
	}

	t, err := h.service.Transition(r.Context(), tradeID, req.Status, req.MpesaReference)
	if err != nil {
		switch {
		case err == errors.ErrTradeNotFound:
			respondError(w, http.StatusNotFound, "Trade not found")
		case stderrors.Is(err, errors.ErrInvalidTransition):
			respondError(w, http.StatusConflict, err.Error())
		case err == errors.ErrMpesaReferenceSet:
			respondError(w, http.StatusConflict, "M-Pesa reference already recorded")
		case err == errors.ErrMpesaReferenceTooSoon:
			respondError(w, http.StatusBadRequest, "M-Pesa reference only accepted when marking paid")
		default:
			h.logger.Error("Trade transition failed", map[string]interface{}{"error": err.Error()})
			respondError(w, http.StatusInternalServerError, "Trade transition failed")
		}
		return
	}

	respondJSON(w, http.StatusOK, t)
}

// ListByChapter returns a chapter's trades, newest first.
func (h *TradeHandler) ListByChapter(w http.ResponseWriter, r *http.Request) {
	chapterID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid chapter ID")
		return
	}

	window := windowFromQuery(r)
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	trades, err := h.service.ListByChapter(r.Context(), chapterID, window, limit, offset)
	if err != nil {
		if err == errors.ErrChapterNotFound {
			respondError(w, http.StatusNotFound, "Chapter not found")
			return
		}
		h.logger.Error("Failed to list trades", map[string]interface{}{"error": err.Error()})
		respondError(w, http.StatusInternalServerError, "Failed to list trades")
		return
	}

	resp := map[string]interface{}{
		"trades": trades,
		"limit":  limit,
		"offset": offset,
	}
	if !window.IsZero() {
		resp["window"] = window
	}
	respondJSON(w, http.StatusOK, resp)
}
