package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// SendRouter builds the send API: message submission and the people
// directory.
func SendRouter(h *Handler) *chi.Mux {
	r := newRouter(h)
	r.Post("/messages", h.SendMessage)
	r.Get("/directory", h.ListDirectory)
	r.Get("/howto", specHandler(h, sendAPISpec))
	return r
}

// FetchRouter builds the fetch API: token-based inbox consumption.
func FetchRouter(h *Handler) *chi.Mux {
	r := newRouter(h)
	r.Get("/messages", h.FetchMessages)
	r.Get("/howto", specHandler(h, fetchAPISpec))
	return r
}

func newRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(requestLogger(h.log))
	r.Use(chimw.Recoverer)
	r.Get("/healthz", h.Health)
	return r
}

// requestLogger logs one line per request via slog.
func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", chimw.GetReqID(r.Context()),
			)
		})
	}
}
