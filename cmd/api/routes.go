package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (app *application) registerRoutes(router *chi.Mux) {
	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/v1/health", http.StatusSeeOther)
	})

	router.Route("/v1", func(route chi.Router) {
		route.Get("/health", app.healthCheckHandler)

		route.Route("/objects", func(route chi.Router) {
			route.Get("/", app.listObjectsHandler)
			route.Get("/*", app.getObjectHandler)
			route.Head("/*", app.headObjectHandler)

			route.Group(func(route chi.Router) {
				route.Use(app.AuthTokenMiddleware)
				route.Post("/", app.uploadObjectHandler)
				route.Delete("/*", app.deleteObjectHandler)
			})
		})
	})
}
