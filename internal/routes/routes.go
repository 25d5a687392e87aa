package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"sortrash/internal/config"
	"sortrash/internal/handler"
	"sortrash/internal/logger"
	"sortrash/internal/middleware"
	"sortrash/internal/service"
)

// RequestTimeout bounds plain HTTP requests. Websocket routes are exempt.
const RequestTimeout = 120 * time.Second

// SetupRoutes registers the classification API, the websocket endpoints
// and the log endpoints. health may be nil.
func SetupRoutes(manager *service.Manager, health handler.HealthChecker, cfg *config.Config, logger *logger.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(chimw.RequestID)
	r.Use(middleware.AccessLog(logger))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	// Websocket endpoints
	r.Get("/api/live", handler.LiveWebsocketHandler(manager, logger))
	r.Get("/api/view", handler.ViewWebsocketHandler(manager, logger))

	r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(RequestTimeout))

		// Classification API
		r.Post("/classify", handler.ClassifyHandler(manager, cfg, logger))
		r.Post("/classify-frame", handler.ClassifyFrameHandler(manager, cfg, logger))
		r.Get("/history", handler.HistoryHandler(manager))
		r.Delete("/history", handler.ClearHistoryHandler(manager, logger))
		r.Post("/history/clear", handler.ClearHistoryHandler(manager, logger))
		r.Get("/stats", handler.StatsHandler(manager))
		r.Get("/health", handler.HealthHandler(health))

		// Log endpoints
		r.Get("/logs/{level}", handler.ShowLogsHandler(cfg))
		r.Post("/logs/{level}/clear", handler.ClearLogsHandler(logger))
	})

	return r
}
