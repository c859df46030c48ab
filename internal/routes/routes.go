// internal/routes/routes.go
package routes

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"taskify/internal/config"
	"taskify/internal/handlers"
	appmw "taskify/internal/middleware"
	"taskify/internal/repository"
	"taskify/internal/services"
)

// Services is everything the router needs, built once at startup.
type Services struct {
	DB       *sql.DB
	Auth     *services.AuthService
	Profiles *services.ProfileService
	Users    repository.UserRepository
	Tasks    repository.TaskRepository
	Metrics  *services.Metrics
}

// NewServices wires repositories and services over db. avatars may be nil.
func NewServices(db *sql.DB, cfg *config.Config, mailer services.EmailSender, avatars services.AvatarStore, metrics *services.Metrics) Services {
	users := repository.NewUserRepository(db)
	hasher := services.NewBcryptHasher(cfg.BcryptCost)
	tokens := services.NewTokenIssuer(cfg.JWTSecret, time.Duration(cfg.JWTExpiresInSeconds)*time.Second)

	return Services{
		DB: db,
		Auth: services.NewAuthService(users, hasher, tokens, mailer, metrics, services.AuthConfig{
			FrontendURL:   cfg.FrontendURL,
			ResetTokenTTL: cfg.ResetTokenTTL,
		}),
		Profiles: services.NewProfileService(users, hasher, avatars),
		Users:    users,
		Tasks:    repository.NewTaskRepository(db),
		Metrics:  metrics,
	}
}

func SetupRoutes(cfg *config.Config, svc Services) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(appmw.Metrics(svc.Metrics))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	health := handlers.NewHealthHandler(svc.DB)
	r.Get("/", health.Root)
	r.Get("/health", health.Health)

	if svc.Metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(svc.Metrics.Registry, promhttp.HandlerOpts{
			EnableOpenMetrics: true,
		}))
	}

	RegisterSwaggerRoutes(r)

	requireSession := appmw.SessionAuth(svc.Auth, cfg.AuthCookieName)
	r.Route("/api/v1", func(r chi.Router) {
		RegisterAuthRoutes(r, svc.Auth, handlers.CookieSettings{
			Name:   cfg.AuthCookieName,
			Secure: cfg.IsProduction(),
		})

		r.Group(func(r chi.Router) {
			r.Use(requireSession)
			RegisterProfileRoutes(r, svc.Profiles)
			RegisterUserRoutes(r, svc.Users)
			RegisterTaskRoutes(r, svc.Tasks)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"not_found","message":"Resource not found"}` + "\n"))
	})

	return r
}
