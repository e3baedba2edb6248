package api

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"coin-dashboard/internal/observability"
)

// Route binds a named handler to a method and path pattern.
type Route struct {
	Name        string
	Method      string
	Pattern     string
	HandlerFunc http.HandlerFunc
}

// statusRecorder captures the response status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// RESTLogger logs each request and records its latency under name.
func RESTLogger(inner http.Handler, name string, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		inner.ServeHTTP(rec, r)

		elapsed := time.Since(start)
		observability.RecordHTTPRequest(name, strconv.Itoa(rec.status), elapsed.Seconds())
		logger.Printf("%s\t%s\t%s\t%d\t%s", r.Method, r.RequestURI, name, rec.status, elapsed)
	})
}

// routes returns the route table served by h.
func (h *Handler) routes() []Route {
	return []Route{
		{"Dashboard", http.MethodGet, "/", h.handleDashboard},
		{"CoinDetail", http.MethodGet, "/coin/{mint}", h.handleCoinDetail},
		{"Coins", http.MethodGet, "/api/coins", h.handleCoins},
		{"Trades", http.MethodGet, "/api/trades/{coinId}", h.handleTrades},
		{"SystemHealth", http.MethodGet, "/api/system_health", h.handleSystemHealth},
		{"Health", http.MethodGet, "/health", h.handleHealth},
		{"Status", http.MethodGet, "/status", h.handleStatus},
	}
}

// NewRouter builds the HTTP router for h, including /metrics.
func NewRouter(h *Handler) *mux.Router {
	router := mux.NewRouter().StrictSlash(true)

	for _, route := range h.routes() {
		var handler http.Handler
		handler = route.HandlerFunc
		handler = RESTLogger(handler, route.Name, h.logger)

		router.
			Methods(route.Method).
			Path(route.Pattern).
			Name(route.Name).
			Handler(handler)
	}

	router.Methods(http.MethodGet).Path("/metrics").Name("Metrics").Handler(observability.Handler())
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.writeError(w, http.StatusNotFound, "not found")
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	return router
}
