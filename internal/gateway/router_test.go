package gateway

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func mark(order *[]string, name string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			*order = append(*order, name)
			next.ServeHTTP(w, r)
		})
	}
}

func deny(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
}

func TestRouter_RouteAppliesGuards(t *testing.T) {
	router := NewRouter()
	var order []string

	router.Route("GET /open", func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "open")
	}, mark(&order, "guard"))
	router.Route("GET /closed", func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("guarded handler reached")
	}, deny)

	rec := httptest.NewRecorder()
	router.Mux().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/open", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"guard", "open"}, order)

	rec = httptest.NewRecorder()
	router.Mux().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/closed", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRouter_Mount(t *testing.T) {
	router := NewRouter()
	router.Mount("GET /static/", http.StripPrefix("/static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(r.URL.Path))
	})))

	rec := httptest.NewRecorder()
	router.Mux().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/a/b.png", nil))
	assert.Equal(t, "a/b.png", rec.Body.String())
}

func TestChain_Order(t *testing.T) {
	var order []string
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}), mark(&order, "outer"), mark(&order, "inner"))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "outer,inner,handler", strings.Join(order, ","))
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, "OK", rec.Body.String())
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
}
