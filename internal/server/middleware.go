package server

// file: internal/server/middleware.go

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/dkoosis/camptools/internal/logging"
)

// logRequests logs every request with its status and duration.
func logRequests(logger logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ri := &responseInterceptor{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(ri, r)
		logger.Debug("HTTP request handled.",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ri.statusCode,
			"duration", time.Since(start),
		)
	})
}

// recoverPanics turns a panicking handler into a 500.
func recoverPanics(logger logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				logger.Error("Recovered from panic in HTTP handler.",
					"panic", fmt.Sprint(v),
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				)
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// responseInterceptor records the status code written through it.
type responseInterceptor struct {
	http.ResponseWriter
	statusCode int
}

func (ri *responseInterceptor) WriteHeader(statusCode int) {
	ri.statusCode = statusCode
	ri.ResponseWriter.WriteHeader(statusCode)
}

// Flush keeps streaming responses working through the interceptor.
func (ri *responseInterceptor) Flush() {
	if f, ok := ri.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
