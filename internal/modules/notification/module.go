package notification

import (
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/maeumssi/maeumssi/internal/modules/notification/application"
	"github.com/maeumssi/maeumssi/internal/modules/notification/center"
	"github.com/maeumssi/maeumssi/internal/modules/notification/infrastructure/persistence/postgres"
	"github.com/maeumssi/maeumssi/internal/modules/notification/infrastructure/websocket"
	notification_http "github.com/maeumssi/maeumssi/internal/modules/notification/interfaces/http"
)

var _ center.Backend = (*application.NotificationService)(nil)

// Module assembles notification storage, the push hub and the HTTP surface.
type Module struct {
	service *application.NotificationService
	handler *notification_http.NotificationHandler
	hub     *websocket.Hub
	hubDone chan struct{}
}

// NewModule starts the push hub. Call Shutdown to stop it.
func NewModule(db *sqlx.DB, log *slog.Logger) *Module {
	hub := websocket.NewHub(log)
	service := application.NewNotificationService(postgres.NewPgNotificationRepository(db), hub, log)

	m := &Module{
		service: service,
		handler: notification_http.NewNotificationHandler(service, hub, log),
		hub:     hub,
		hubDone: make(chan struct{}),
	}
	go func() {
		defer close(m.hubDone)
		hub.Run()
	}()
	return m
}

func (m *Module) HTTPHandler() *notification_http.NotificationHandler {
	return m.handler
}

func (m *Module) Service() *application.NotificationService {
	return m.service
}

// Shutdown closes every push socket and waits for the hub to exit.
func (m *Module) Shutdown() {
	m.hub.Stop()
	<-m.hubDone
}
