package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/maeumssi/maeumssi/internal/modules/notification/application"
	"github.com/maeumssi/maeumssi/internal/modules/notification/domain"
	"github.com/maeumssi/maeumssi/internal/modules/notification/infrastructure/websocket"
	"github.com/maeumssi/maeumssi/internal/modules/session"
	"github.com/maeumssi/maeumssi/internal/shared/logger"
	"github.com/maeumssi/maeumssi/internal/shared/utils"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

type NotificationHandler struct {
	service *application.NotificationService
	hub     *websocket.Hub
	log     *slog.Logger
}

func NewNotificationHandler(service *application.NotificationService, hub *websocket.Hub, log *slog.Logger) *NotificationHandler {
	return &NotificationHandler{service: service, hub: hub, log: logger.OrDiscard(log)}
}

// CreateRequest is the body of POST /notifications. Type is required.
type CreateRequest struct {
	Type *domain.Type `json:"type"`
	Meta domain.Meta `json:"meta,omitempty"`
}

func currentUser(r *http.Request) (uuid.UUID, bool) {
	st := session.FromContext(r.Context())
	if !st.Present() {
		return uuid.Nil, false
	}
	return st.UserID(), true
}

func (h *NotificationHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(r)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	h.hub.Serve(w, r, userID)
}

func (h *NotificationHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(r)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	limit := defaultLimit
	offset := 0

	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 {
			limit = min(v, maxLimit)
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if v, err := strconv.Atoi(o); err == nil && v >= 0 {
			offset = v
		}
	}

	notifications, err := h.service.GetUserNotifications(r.Context(), userID, limit, offset)
	if err != nil {
		h.log.Error("list notifications", "user_id", userID, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to fetch notifications", nil)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]any{"data": notifications})
}

// CreateNotification creates a record for the caller. Records for other
// users are only created by server-side triggers.
func (h *NotificationHandler) CreateNotification(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(r)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.Type == nil {
		utils.WriteError(w, http.StatusBadRequest, "notification type is required", nil)
		return
	}

	n, err := h.service.Create(r.Context(), userID, *req.Type, req.Meta)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownType) {
			utils.WriteError(w, http.StatusBadRequest, "unknown notification type", nil)
			return
		}
		h.log.Error("create notification", "user_id", userID, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to create notification", nil)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, n)
}

func (h *NotificationHandler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	notificationID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid notification id", nil)
		return
	}

	userID, ok := currentUser(r)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	if err := h.service.MarkAsRead(r.Context(), notificationID, userID); err != nil {
		if errors.Is(err, domain.ErrNotificationNotFound) {
			utils.WriteError(w, http.StatusNotFound, "notification not found", nil)
			return
		}
		h.log.Error("mark notification read", "notification_id", notificationID, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to mark notification as read", nil)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *NotificationHandler) MarkAllAsRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(r)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	if err := h.service.MarkAllAsRead(r.Context(), userID); err != nil {
		h.log.Error("mark all read", "user_id", userID, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to mark all notifications as read", nil)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(r)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	count, err := h.service.UnreadCount(r.Context(), userID)
	if err != nil {
		h.log.Error("unread count", "user_id", userID, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to get unread count", nil)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]int{"count": count})
}
