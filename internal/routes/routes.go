package routes

import (
	"time"

	"github.com/buildatscale/bas-server/internal/app"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
)

func SetupRoutes(app *app.Application) *chi.Mux {
	r := chi.NewRouter()

	r.Use(httprate.LimitAll(200, time.Minute))
	r.Use(app.MiddlewareHandler.RequestLogger)
	r.Use(app.MiddlewareHandler.Security)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(httprate.LimitAll(100, time.Minute))
		r.Use(app.MiddlewareHandler.Cors)

		// public routes
		r.Route("/public", func(r chi.Router) {
			r.Get("/playlists", app.PlaylistHandler.HandlerGetPlaylists)
			r.Get("/playlists/{id}", app.PlaylistHandler.HandlerGetPlaylistByID)
			r.Get("/playlists/{id}/analytics", app.AnalyticsPlaylistHandler.HandlerGetPlaylistAnalyticsByID)
			r.Get("/videos", app.VideoHandler.HandlerGetVideos)
			r.Get("/videos/{id}", app.VideoHandler.HandlerGetVideoByID)
		})
	})

	// form endpoints, limited per client
	r.Group(func(r chi.Router) {
		r.Use(httprate.LimitByIP(10, time.Minute))
		r.Use(app.MiddlewareHandler.Cors)

		r.Post("/api/submit-request", app.RequestHandler.HandlerSubmitRequest)
		r.Post("/api/newsletter-signup", app.NewsletterHandler.HandlerSignup)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(httprate.LimitAll(100, time.Minute))
		r.Use(app.MiddlewareHandler.AuthenticateAdmin)

		r.Get("/ingest", app.IngestHandler.HandlerGetLastIngest)
		r.Post("/ingest", app.IngestHandler.HandlerRunIngest)
	})

	return r
}
