package httpapi

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/aatumaykin/tubedrop/internal/logger"
)

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		fields := []logger.Field{
			{Key: "request_id", Value: middleware.GetReqID(r.Context())},
			{Key: "method", Value: r.Method},
			{Key: "path", Value: r.URL.Path},
			{Key: "status", Value: ww.Status()},
			{Key: "bytes", Value: ww.BytesWritten()},
			{Key: "duration_ms", Value: time.Since(start).Milliseconds()},
		}
		if ww.Status() >= http.StatusInternalServerError {
			s.logger.WarnCtx(r.Context(), "http request", fields...)
			return
		}
		s.logger.DebugCtx(r.Context(), "http request", fields...)
	})
}

// recoverJSON turns a handler panic into a JSON 500 response.
func (s *Server) recoverJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			s.logger.ErrorCtx(r.Context(), "handler panicked", fmt.Errorf("panic: %v", rec),
				logger.Field{Key: "path", Value: r.URL.Path},
				logger.Field{Key: "stack", Value: string(debug.Stack())})
			writeError(w, http.StatusInternalServerError, "internal server error")
		}()
		next.ServeHTTP(w, r)
	})
}
