package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/moveinsync/movi/internal/adapter/ws"
	"github.com/moveinsync/movi/internal/config"
	"github.com/moveinsync/movi/internal/middleware"
)

// NewRouter assembles the middleware chain and API routes. Extra
// middlewares (tracing, for instance) run outermost.
func NewRouter(cfg config.Server, h *Handlers, hub *ws.Hub, extra ...func(http.Handler) http.Handler) *chi.Mux {
	r := chi.NewRouter()

	for _, mw := range extra {
		r.Use(mw)
	}
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(Logger)
	r.Use(SecurityHeaders)
	r.Use(CORS(cfg.CORSOrigin))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(120 * time.Second))

	MountRoutes(r, h, hub)
	return r
}

// MountRoutes registers all API routes on the given chi router.
func MountRoutes(r chi.Router, h *Handlers, hub *ws.Hub) {
	r.Get("/", h.Root)
	r.Get("/health", h.Health)
	r.Get("/ws", hub.HandleWS)

	r.Route("/api", func(r chi.Router) {
		r.Post("/chat", h.Chat)
		r.Post("/speech-to-text", h.SpeechToText)
		r.Post("/text-to-speech", h.TextToSpeech)

		r.Get("/stops", h.ListStops)
		r.Get("/paths", h.ListPaths)
		r.Get("/routes", h.ListRoutes)
		r.Get("/vehicles", h.ListVehicles)
		r.Get("/drivers", h.ListDrivers)
		r.Get("/trips", h.ListTrips)
	})
}
