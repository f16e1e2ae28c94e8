package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/gorilla/mux"

	"github.com/wonny/outlierline/internal/api/handlers"
	"github.com/wonny/outlierline/pkg/logger"
)

// Routes groups the handlers mounted by NewRouter
type Routes struct {
	Outliers *handlers.OutliersHandler
	Status   *handlers.StatusHandler // nil serves a plain health check
	Timeline http.Handler            // websocket hub, nil disables /ws/timelines
}

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(routes Routes, corsOrigins []string, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	if routes.Status != nil {
		r.HandleFunc("/health", routes.Status.Health).Methods("GET", "OPTIONS")
	} else {
		r.HandleFunc("/health", healthCheckHandler).Methods("GET", "OPTIONS")
	}

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/teams", routes.Outliers.GetTeams).Methods("GET", "OPTIONS")
	api.HandleFunc("/games/{team}", routes.Outliers.GetGames).Methods("GET", "OPTIONS")
	api.HandleFunc("/outliers/{gameID}", routes.Outliers.GetOutliers).Methods("GET", "OPTIONS")
	api.HandleFunc("/timeline/{gameID}", routes.Outliers.GetTimeline).Methods("GET", "OPTIONS")
	api.HandleFunc("/archive", routes.Outliers.GetArchive).Methods("GET", "OPTIONS")
	if routes.Status != nil {
		api.HandleFunc("/status", routes.Status.Status).Methods("GET", "OPTIONS")
	}

	if routes.Timeline != nil {
		r.Handle("/ws/timelines", routes.Timeline)
	}

	// Apply middleware
	r.Use(recoveryMiddleware(log))
	r.Use(loggingMiddleware(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "outlierline-api",
	})
}

// statusRecorder captures the status code for the request log
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Unwrap lets http.ResponseController and the websocket upgrader reach the hijacker
func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// the websocket upgrade needs the raw writer
			if r.Header.Get("Upgrade") != "" {
				next.ServeHTTP(w, r)
				log.WithField("path", r.URL.Path).Debug("WebSocket request")
				return
			}

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   rec.status,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
