package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// logRequests logs each request and records it in the metrics collector
// under its route pattern, so /v1/runs/{id} is one series.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		duration := time.Since(start)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := routePattern(r)

		if s.opts.Metrics != nil {
			s.opts.Metrics.ObserveRequest(r.Method, route, status, duration)
		}

		logFn := s.opts.Logger.Info
		if status >= http.StatusInternalServerError {
			logFn = s.opts.Logger.Error
		} else if r.URL.Path == "/healthz" || r.URL.Path == "/metrics" {
			logFn = s.opts.Logger.Debug
		}
		logFn("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", duration,
			"request_id", middleware.GetReqID(r.Context()))
	})
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
