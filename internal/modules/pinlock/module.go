package pinlock

import (
	"log/slog"

	"github.com/maeumssi/maeumssi/internal/modules/pinlock/application"
	pin_http "github.com/maeumssi/maeumssi/internal/modules/pinlock/interfaces/http"
)

type Module struct {
	service *application.Service
	handler *pin_http.Handler
}

func NewModule(store application.Store, notifier application.Notifier, log *slog.Logger) *Module {
	service := application.NewService(store, notifier, log)
	return &Module{
		service: service,
		handler: pin_http.NewHandler(service, log),
	}
}

func (m *Module) Service() *application.Service {
	return m.service
}

func (m *Module) HTTPHandler() *pin_http.Handler {
	return m.handler
}
