package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/obsidianstack/launchdash/server/internal/dataset"
	"github.com/obsidianstack/launchdash/server/internal/logging"
	"github.com/obsidianstack/launchdash/server/internal/metrics"
)

// Handler is the HTTP handler for all /api/v1/* endpoints.
// It answers every request from the immutable dataset it was built with.
type Handler struct {
	ds      *dataset.Dataset
	metrics *metrics.Metrics
	router  chi.Router
}

// New creates a Handler over ds and registers all routes. allowedOrigins
// configures CORS for browser clients; m may be nil.
func New(ds *dataset.Dataset, m *metrics.Metrics, allowedOrigins []string) http.Handler {
	h := &Handler{ds: ds, metrics: m, router: chi.NewRouter()}

	h.router.Use(middleware.RealIP)
	h.router.Use(middleware.Recoverer)
	h.router.Use(requestLogger)
	h.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	h.router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		jsonErr(w, http.StatusNotFound, "not found")
	})
	h.router.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	h.router.Get("/api/v1/health", h.health)
	h.router.Get("/api/v1/options", h.options)
	h.router.Get("/api/v1/summary", h.summary)
	h.router.Get("/api/v1/correlation", h.correlation)

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

// --- route handlers ---------------------------------------------------------

// health returns GET /api/v1/health: dataset size and payload bounds.
func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	jsonResp(w, http.StatusOK, BuildHealth(h.ds))
}

// options returns GET /api/v1/options: site dropdown and slider settings.
func (h *Handler) options(w http.ResponseWriter, _ *http.Request) {
	h.metrics.ObserveQuery(metrics.KindOptions, metrics.TransportHTTP)
	jsonResp(w, http.StatusOK, BuildOptions(h.ds))
}

// summary returns GET /api/v1/summary?site=: the aggregate view.
func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	site := r.URL.Query().Get("site")
	h.metrics.ObserveQuery(metrics.KindSummary, metrics.TransportHTTP)
	jsonResp(w, http.StatusOK, BuildSummary(h.ds, site))
}

// correlation returns GET /api/v1/correlation?site=&low=&high=: the
// payload/outcome view. Missing bounds default to the dataset's range.
func (h *Handler) correlation(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	q, err := ParseQuery(h.ds, params.Get("site"), params.Get("low"), params.Get("high"))
	if err != nil {
		h.metrics.ObserveInvalid(metrics.TransportHTTP)
		jsonErr(w, http.StatusBadRequest, err.Error())
		return
	}

	h.metrics.ObserveQuery(metrics.KindCorrelation, metrics.TransportHTTP)
	jsonResp(w, http.StatusOK, BuildCorrelation(h.ds, q))
}

// --- helpers ----------------------------------------------------------------

func jsonResp(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}

// requestLogger logs each request at debug level once it completes.
func requestLogger(next http.Handler) http.Handler {
	log := logging.New("api")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"query", r.URL.RawQuery,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"took", time.Since(start),
		)
	})
}
