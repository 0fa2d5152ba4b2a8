package api

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"LowesMerge/api/constants"
	"LowesMerge/internal/logger"

	"github.com/gorilla/mux"
)

// NewRouter wires the merge endpoints.
func NewRouter(h *Handlers) *mux.Router {
	router := mux.NewRouter()
	router.Use(requestLogger)

	router.HandleFunc("/merge", h.MergeHandler).Methods(http.MethodPost)
	router.HandleFunc("/merge/{runID}/progress", h.ProgressHandler).Methods(http.MethodGet)
	router.HandleFunc("/reports/{runID}", h.ReportHandler).Methods(http.MethodGet)
	router.HandleFunc("/runs", h.RunsHandler).Methods(http.MethodGet)
	router.HandleFunc("/health", HealthHandler).Methods(http.MethodGet)

	router.NotFoundHandler = requestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		RespondWithError(w, http.StatusNotFound, constants.ErrRouteNotFound)
	}))
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		RespondWithError(w, http.StatusMethodNotAllowed, constants.ErrMethodNotAllowed)
	})
	return router
}

// requestLogger audits every request with its status and duration.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := r.RemoteAddr
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			clientIP = xff
		}
		w.Header().Set(constants.HeaderAllowOrigin, "*")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		var msg string
		if rw.statusCode >= 400 {
			msg = fmt.Sprintf("[Gateway][ERROR] %s %s from %s, status %d, error: %s",
				r.Method, r.URL.Path, clientIP, rw.statusCode, bytes.TrimSpace(rw.body.Bytes()))
		} else {
			msg = fmt.Sprintf("[Gateway] %s %s from %s, status %d in %s",
				r.Method, r.URL.Path, clientIP, rw.statusCode, time.Since(start).Round(time.Millisecond))
		}
		logger.Audit(msg)
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code and,
// for failed requests, the error body.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	body       bytes.Buffer
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if rw.statusCode >= 400 {
		rw.body.Write(b)
	}
	return rw.ResponseWriter.Write(b)
}

// Flush keeps progress streams working through the wrapper.
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
