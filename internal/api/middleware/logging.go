package middleware

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

type Logger interface {
	Info(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Logging пишет строку на каждый запрос и перехватывает паники обработчиков
func Logging(logger Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			defer func() {
				if p := recover(); p != nil {
					logger.Error("%s %s - Panic recovered: request_id=%s, panic=%v",
						r.Method, r.URL.Path, RequestIDFromContext(r.Context()), p)
					http.Error(rec, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				}
			}()

			next.ServeHTTP(rec, r)

			logger.Info("%s %s - Request served: request_id=%s, status=%d, duration=%s",
				r.Method, r.URL.Path, RequestIDFromContext(r.Context()), rec.status, time.Since(start))
		})
	}
}
