package sharecard

import (
	"log/slog"
	"time"

	"github.com/maeumssi/maeumssi/internal/modules/sharecard/application"
	card_http "github.com/maeumssi/maeumssi/internal/modules/sharecard/interfaces/http"
)

type Module struct {
	service *application.Service
	handler *card_http.Handler
}

func NewModule(files application.Files, notifier application.Notifier, linkExpiry time.Duration, log *slog.Logger) *Module {
	service := application.NewService(files, notifier, linkExpiry, log)
	return &Module{
		service: service,
		handler: card_http.NewHandler(service, log),
	}
}

func (m *Module) Service() *application.Service {
	return m.service
}

func (m *Module) HTTPHandler() *card_http.Handler {
	return m.handler
}
