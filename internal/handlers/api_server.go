// internal/handlers/api_server.go
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jason-s-yu/monopoly/internal/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

// NewRouter mounts the HTTP API, the game websocket and the metrics endpoint.
func NewRouter(gs *GameServer, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.LogMiddleware(gs.Logger))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/boards", gs.handleListBoards)

	r.Route("/games", func(r chi.Router) {
		r.Get("/", gs.handleListGames)
		r.Post("/", gs.handleCreateGame)
		r.Get("/{id}", gs.handleGetGame)
		r.Get("/{id}/ws", GameWSHandler(gs, allowedOrigins))
	})

	r.Handle("/metrics", promhttp.Handler())

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
	})
	return c.Handler(r)
}
