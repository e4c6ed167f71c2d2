package gateway

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Middleware wraps a handler.
type Middleware func(http.Handler) http.Handler

// Router registers method-qualified patterns on a ServeMux, optionally
// behind an access guard.
type Router struct {
	mux *http.ServeMux
}

func NewRouter() *Router {
	return &Router{mux: http.NewServeMux()}
}

// Mux returns the underlying ServeMux.
func (r *Router) Mux() *http.ServeMux {
	return r.mux
}

// Route registers h under pattern, wrapped by guards in order.
func (r *Router) Route(pattern string, h http.HandlerFunc, guards ...Middleware) {
	r.mux.Handle(pattern, Chain(h, guards...))
}

// Mount registers a prebuilt handler.
func (r *Router) Mount(pattern string, h http.Handler) {
	r.mux.Handle(pattern, h)
}

// Chain applies mws around h; the first middleware is the outermost.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

func health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func metricsHandler() http.Handler {
	return promhttp.Handler()
}
