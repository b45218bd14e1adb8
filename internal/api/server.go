// Package api exposes the prediction service over HTTP: a health probe, the
// prediction endpoint and a location search for form autocompletion.
package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/keystone-data/landrate/internal/httputil"
	"github.com/keystone-data/landrate/internal/predictor"
)

// ANSI escape codes for request-log status colouring
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

const searchLimit = 20

// Server routes HTTP requests onto the prediction service.
type Server struct {
	svc *predictor.Service
}

// NewServer wraps a prediction service.
func NewServer(svc *predictor.Service) *Server {
	return &Server{svc: svc}
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 400:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	default:
		return strconv.Itoa(statusCode)
	}
}

// LoggingMiddleware logs method, path, status, and duration.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		log.Printf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}

// ServeMux returns the route table for the service.
func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.health)
	mux.HandleFunc("/api/predict", s.predict)
	mux.HandleFunc("/api/search-locations", s.searchLocations)
	return mux
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":          "ok",
		"model_loaded":    s.svc.ModelLoaded(),
		"dataset_records": s.svc.DatasetRecords(),
	})
}

func (s *Server) predict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}

	var req predictor.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.BadRequest(w, "invalid request body: "+err.Error())
		return
	}

	result, err := s.svc.Predict(req)
	if err != nil {
		// Request-level computation failures (for example an empty corpus)
		// are reported to the caller; they never crash the process.
		httputil.InternalServerError(w, err.Error())
		return
	}
	httputil.WriteSuccess(w, result)
}

func (s *Server) searchLocations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	mandals, villages := s.svc.SearchLocations(r.URL.Query().Get("q"), searchLimit)
	httputil.WriteSuccess(w, map[string]interface{}{
		"mandals":  mandals,
		"villages": villages,
	})
}
