package routes

import (
	"github.com/go-chi/chi/v5"
	"taskify/internal/handlers"
	"taskify/internal/services"
)

func RegisterAuthRoutes(router chi.Router, auth *services.AuthService, cookie handlers.CookieSettings) {
	authHandler := handlers.NewAuthHandler(auth, cookie)

	router.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
		r.Post("/requestPasswordReset", authHandler.RequestPasswordReset)
		r.Post("/changePassword", authHandler.ChangePassword)
	})
}
