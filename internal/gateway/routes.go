package gateway

import (
	"net/http"

	"github.com/maeumssi/maeumssi/internal/gateway/middleware"
	auth_http "github.com/maeumssi/maeumssi/internal/modules/auth/interfaces/http"
	notification_http "github.com/maeumssi/maeumssi/internal/modules/notification/interfaces/http"
	pin_http "github.com/maeumssi/maeumssi/internal/modules/pinlock/interfaces/http"
	card_http "github.com/maeumssi/maeumssi/internal/modules/sharecard/interfaces/http"
)

// RouterConfig holds all the handlers and middleware needed for routing
type RouterConfig struct {
	AuthHandler         *auth_http.AuthHandler
	AuthMiddleware      *middleware.AuthMiddleWare
	NotificationHandler *notification_http.NotificationHandler
	PinHandler          *pin_http.Handler
	ShareCardHandler    *card_http.Handler
	// UploadsDir is served under /uploads/ when files are stored locally.
	UploadsDir string
}

// SetupRoutes creates and configures all application routes
func SetupRoutes(config RouterConfig) *http.ServeMux {
	router := NewRouter()
	signedIn := config.AuthMiddleware.RequireAuth
	member := config.AuthMiddleware.RequireMember
	optional := config.AuthMiddleware.FlexibleAuth

	router.Route("GET /health", health)
	router.Mount("GET /metrics", metricsHandler())

	users := config.AuthHandler
	router.Route("POST /auth/register", users.Register)
	router.Route("POST /auth/login", users.Login)
	router.Route("POST /auth/guest", users.GuestLogin)
	router.Route("POST /auth/google", users.GoogleLogin)
	router.Route("GET /auth/redirect", users.Redirect, optional)
	router.Route("GET /me", users.Me, signedIn)

	inbox := config.NotificationHandler
	router.Route("GET /notifications", inbox.ListNotifications, signedIn)
	router.Route("POST /notifications", inbox.CreateNotification, signedIn)
	router.Route("PATCH /notifications/{id}/read", inbox.MarkAsRead, signedIn)
	router.Route("PATCH /notifications/read-all", inbox.MarkAllAsRead, signedIn)
	router.Route("GET /notifications/unread-count", inbox.UnreadCount, signedIn)
	router.Route("GET /ws", inbox.Subscribe, signedIn)

	pins := config.PinHandler
	router.Route("GET /pin", pins.Status, member)
	router.Route("PUT /pin", pins.Set, member)
	router.Route("POST /pin/verify", pins.Verify, member)
	router.Route("DELETE /pin", pins.Clear, member)
	router.Route("POST /share-cards", config.ShareCardHandler.Create, member)

	if config.UploadsDir != "" {
		router.Mount("GET /uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(config.UploadsDir))))
	}

	return router.Mux()
}
