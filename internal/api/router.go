package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/taskhub/taskhub-backend/internal/api/handlers"
	"github.com/taskhub/taskhub-backend/internal/auth"
	"github.com/taskhub/taskhub-backend/internal/config"
	"github.com/taskhub/taskhub-backend/internal/metrics"
	"github.com/taskhub/taskhub-backend/internal/middleware"
	"github.com/taskhub/taskhub-backend/internal/services"
)

func NewRouter(cfg config.Config, verifier auth.CredentialVerifier, us *services.UserService, ps *services.ProjectService, ts *services.TaskService) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recover, middleware.RateLimit(cfg.RateRPS), middleware.HTTPMetrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	uh := handlers.NewUserHandler(us)
	ph := handlers.NewProjectHandler(ps)
	th := handlers.NewTaskHandler(ts)

	// health & metrics
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) })
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// Registration and reads are open; everything that mutates sits
		// behind Basic Auth.
		r.Post("/users", uh.Create)
		r.Get("/users", uh.List)
		r.Get("/users/{id}", uh.Get)

		r.Get("/projects", ph.List)
		r.Get("/projects/{id}", ph.Get)
		r.Get("/projects/{id}/tasks", th.ListByProject)

		r.Get("/tasks", th.List)
		r.Get("/tasks/{id}", th.Get)

		r.Group(func(r chi.Router) {
			r.Use(middleware.BasicAuth(verifier))

			r.Put("/users/{id}", uh.Update)
			r.Delete("/users/{id}", uh.Delete)

			r.Post("/projects", ph.Create)
			r.Put("/projects/{id}", ph.Update)
			r.Delete("/projects/{id}", ph.Delete)

			r.Post("/tasks", th.Create)
			r.Put("/tasks/{id}", th.Update)
			r.Delete("/tasks/{id}", th.Delete)
		})
	})

	return r
}
