package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/maeumssi/maeumssi/internal/modules/auth/application"
	"github.com/maeumssi/maeumssi/internal/modules/auth/domain"
	"github.com/maeumssi/maeumssi/internal/modules/session"
	"github.com/maeumssi/maeumssi/internal/shared/logger"
	"github.com/maeumssi/maeumssi/internal/shared/utils"
)

const avatarURLExpiry = time.Hour

// AuthService defines the interface for auth operations
type AuthService interface {
	Register(ctx context.Context, req application.RegisterRequest) (*domain.User, error)
	Login(ctx context.Context, req application.LoginRequest) (*application.TokenResponse, error)
	GuestLogin(ctx context.Context) (*application.TokenResponse, error)
	GoogleLogin(ctx context.Context, googleClientID string, req application.GoogleLoginRequest) (*application.TokenResponse, error)
	GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// FileService signs avatar URLs that live in private storage.
type FileService interface {
	SignStoredURL(ctx context.Context, rawURL string, ttl time.Duration) (string, error)
}

type AuthHandler struct {
	service        AuthService
	fileService    FileService
	googleClientID string
	log            *slog.Logger
}

func NewAuthHandler(service AuthService, fileService FileService, googleClientID string, log *slog.Logger) *AuthHandler {
	return &AuthHandler{
		service:        service,
		fileService:    fileService,
		googleClientID: googleClientID,
		log:            logger.OrDiscard(log),
	}
}

// MeResponse is the body of GET /me.
type MeResponse struct {
	*domain.User
	Guest bool `json:"guest"`
}

// RedirectResponse is the body of GET /auth/redirect.
type RedirectResponse struct {
	Path string `json:"path"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req application.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	user, err := h.service.Register(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserAlreadyExists):
			utils.WriteError(w, http.StatusConflict, "user already exists", nil)
		case errors.Is(err, domain.ErrInvalidInput):
			utils.WriteError(w, http.StatusBadRequest, err.Error(), nil)
		default:
			h.log.Error("register", "error", err)
			utils.WriteError(w, http.StatusInternalServerError, "failed to register", nil)
		}
		return
	}

	utils.WriteJSON(w, http.StatusCreated, user)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req application.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	resp, err := h.service.Login(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCredentials):
			utils.WriteError(w, http.StatusUnauthorized, "invalid credentials", nil)
		case errors.Is(err, domain.ErrInvalidInput):
			utils.WriteError(w, http.StatusBadRequest, err.Error(), nil)
		default:
			h.log.Error("login", "error", err)
			utils.WriteError(w, http.StatusInternalServerError, "failed to login", nil)
		}
		return
	}
	utils.WriteJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) GuestLogin(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.GuestLogin(r.Context())
	if err != nil {
		h.log.Error("guest login", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to start guest session", nil)
		return
	}
	utils.WriteJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	var req application.GoogleLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	resp, err := h.service.GoogleLogin(r.Context(), h.googleClientID, req)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidGoogleToken) {
			utils.WriteError(w, http.StatusUnauthorized, "invalid google token", nil)
			return
		}
		h.log.Error("google login", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to login", nil)
		return
	}
	utils.WriteJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	st := session.FromContext(r.Context())
	if !st.Present() {
		utils.WriteError(w, http.StatusUnauthorized, "user not authenticated", nil)
		return
	}

	user, err := h.service.GetUser(r.Context(), st.UserID())
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			utils.WriteError(w, http.StatusNotFound, "user not found", nil)
			return
		}
		h.log.Error("me", "user_id", st.UserID(), "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load user", nil)
		return
	}

	if user.AvatarURL != nil && *user.AvatarURL != "" && h.fileService != nil {
		signed, err := h.fileService.SignStoredURL(r.Context(), *user.AvatarURL, avatarURLExpiry)
		if err != nil {
			h.log.Warn("sign avatar", "user_id", user.ID, "error", err)
		} else {
			user.AvatarURL = &signed
		}
	}

	utils.WriteJSON(w, http.StatusOK, MeResponse{User: user, Guest: st.Guest()})
}

// Redirect tells the auth callback page where to go next. Guests and
// anonymous callers are sent to onboarding.
func (h *AuthHandler) Redirect(w http.ResponseWriter, r *http.Request) {
	path, ok := session.CallbackRedirect(session.FromContext(r.Context()), r.URL.Query().Get("next"))
	if !ok {
		w.WriteHeader(http.StatusAccepted)
		return
	}
	utils.WriteJSON(w, http.StatusOK, RedirectResponse{Path: path})
}
