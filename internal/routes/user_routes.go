package routes

import (
	"github.com/go-chi/chi/v5"
	"taskify/internal/handlers"
	"taskify/internal/repository"
	"taskify/internal/services"
)

func RegisterUserRoutes(router chi.Router, users repository.UserRepository) {
	userHandler := handlers.NewUserHandler(users)

	router.Route("/users", func(r chi.Router) {
		r.Get("/", userHandler.List)
		r.Get("/{id}", userHandler.Get)
	})
}

func RegisterProfileRoutes(router chi.Router, profiles *services.ProfileService) {
	profileHandler := handlers.NewProfileHandler(profiles)

	router.Route("/me", func(r chi.Router) {
		r.Get("/", profileHandler.Get)
		r.Put("/", profileHandler.Update)
		r.Delete("/", profileHandler.Delete)
		r.Put("/password", profileHandler.ChangePassword)
		r.Put("/avatar", profileHandler.UploadAvatar)
	})
}
