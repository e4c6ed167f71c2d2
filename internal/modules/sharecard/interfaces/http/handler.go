package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/maeumssi/maeumssi/internal/modules/session"
	"github.com/maeumssi/maeumssi/internal/modules/sharecard/domain"
	"github.com/maeumssi/maeumssi/internal/shared/logger"
	"github.com/maeumssi/maeumssi/internal/shared/utils"
)

type CardService interface {
	Create(ctx context.Context, userID uuid.UUID, req domain.Request) (*domain.Card, error)
}

type Handler struct {
	service CardService
	log     *slog.Logger
}

func NewHandler(service CardService, log *slog.Logger) *Handler {
	return &Handler{service: service, log: logger.OrDiscard(log)}
}

// Create handles POST /share-cards.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	st := session.FromContext(r.Context())
	if !st.Present() {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	var req domain.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	card, err := h.service.Create(r.Context(), st.UserID(), req)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCard) {
			utils.WriteError(w, http.StatusBadRequest, "invalid share card", err)
			return
		}
		h.log.Error("share card failed", "user_id", st.UserID(), "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to create share card", nil)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, card)
}
