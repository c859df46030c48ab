package routes

import (
	"github.com/go-chi/chi/v5"
	"taskify/internal/handlers"
	"taskify/internal/repository"
)

func RegisterTaskRoutes(router chi.Router, tasks repository.TaskRepository) {
	taskHandler := handlers.NewTaskHandler(tasks)

	router.Route("/tasks", func(r chi.Router) {
		r.Get("/", taskHandler.List)
		r.Post("/", taskHandler.Create)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", taskHandler.Get)
			r.Put("/", taskHandler.Update)
			r.Put("/edit", taskHandler.Edit)
			r.Delete("/", taskHandler.Delete)
		})
	})
}
