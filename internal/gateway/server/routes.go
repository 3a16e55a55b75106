package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"sanogenic/internal/gateway/handler/rpc"
	"sanogenic/internal/gateway/middleware"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Insight        *rpc.InsightHandler
	Journal        *rpc.JournalHandler
	TaskStream     *rpc.TaskStreamHandler
	AllowedOrigins []string
	Log            *slog.Logger
}

func NewRouter(h Handlers) http.Handler {
	log := h.Log
	if log == nil {
		log = slog.Default()
	}
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog(log))
	r.Use(middleware.CORS(h.AllowedOrigins))

	// RPC Handlers
	r.Mount(rpc.NewInsightServiceHandler(h.Insight))
	r.Mount(rpc.NewJournalServiceHandler(h.Journal))

	r.Get("/ws/tasks", h.TaskStream.HandleTaskWS)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	return r
}
