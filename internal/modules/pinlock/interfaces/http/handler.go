package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/maeumssi/maeumssi/internal/modules/pinlock/domain"
	"github.com/maeumssi/maeumssi/internal/modules/session"
	"github.com/maeumssi/maeumssi/internal/shared/logger"
	"github.com/maeumssi/maeumssi/internal/shared/utils"
)

type PinService interface {
	Enabled(ctx context.Context, userID uuid.UUID) bool
	Set(ctx context.Context, userID uuid.UUID, pin, current string) error
	Verify(ctx context.Context, userID uuid.UUID, pin string) error
	Clear(ctx context.Context, userID uuid.UUID, pin string) error
}

type Handler struct {
	service PinService
	log     *slog.Logger
}

func NewHandler(service PinService, log *slog.Logger) *Handler {
	return &Handler{service: service, log: logger.OrDiscard(log)}
}

type SetRequest struct {
	PIN        string `json:"pin"`
	CurrentPIN string `json:"current_pin,omitempty"`
}

type PINRequest struct {
	PIN string `json:"pin"`
}

type StatusResponse struct {
	Enabled bool `json:"enabled"`
}

func member(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	st := session.FromContext(r.Context())
	if !st.Present() {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return uuid.Nil, false
	}
	if st.Guest() {
		utils.WriteJSON(w, http.StatusForbidden, utils.ErrorResponse{
			Error:    "members only",
			Redirect: session.OnboardingPath,
		})
		return uuid.Nil, false
	}
	return st.UserID(), true
}

func (h *Handler) writeErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidPIN):
		utils.WriteError(w, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, domain.ErrPINMismatch):
		utils.WriteError(w, http.StatusUnauthorized, err.Error(), nil)
	case errors.Is(err, domain.ErrPINLocked):
		utils.WriteError(w, http.StatusTooManyRequests, err.Error(), nil)
	case errors.Is(err, domain.ErrPINNotSet):
		utils.WriteError(w, http.StatusNotFound, err.Error(), nil)
	default:
		h.log.Error("pin lock failure", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "internal error", nil)
	}
}

// Status handles GET /pin.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	userID, ok := member(w, r)
	if !ok {
		return
	}
	utils.WriteJSON(w, http.StatusOK, StatusResponse{Enabled: h.service.Enabled(r.Context(), userID)})
}

// Set handles PUT /pin.
func (h *Handler) Set(w http.ResponseWriter, r *http.Request) {
	userID, ok := member(w, r)
	if !ok {
		return
	}
	var req SetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if err := h.service.Set(r.Context(), userID, req.PIN, req.CurrentPIN); err != nil {
		h.writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Verify handles POST /pin/verify.
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	userID, ok := member(w, r)
	if !ok {
		return
	}
	var req PINRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if err := h.service.Verify(r.Context(), userID, req.PIN); err != nil {
		h.writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Clear handles DELETE /pin.
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	userID, ok := member(w, r)
	if !ok {
		return
	}
	var req PINRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if err := h.service.Clear(r.Context(), userID, req.PIN); err != nil {
		h.writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
