package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-task-manager/internal/config"
	"go-task-manager/internal/handler"
	"go-task-manager/internal/middleware"
)

func New(
	cfg *config.Config,
	authMiddleware *middleware.AuthMiddleware,
	authHandler *handler.AuthHandler,
	taskHandler *handler.TaskHandler,
) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(rateLimitMiddleware.Handler)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))

		api.Route("/auth", func(auth chi.Router) {
			auth.Post("/login", authHandler.Login)
			auth.Post("/refresh", authHandler.Refresh)
			auth.With(authMiddleware.RequireAuth).Post("/logout", authHandler.Logout)
			auth.With(authMiddleware.RequireAuth).Get("/me", authHandler.Me)
		})

		api.Route("/tasks", func(tasks chi.Router) {
			tasks.Use(authMiddleware.RequireAuth)

			tasks.Get("/", taskHandler.List)
			tasks.Get("/{id}", taskHandler.Get)

			tasks.With(authMiddleware.RequireRoles("admin")).Post("/", taskHandler.Create)
			tasks.With(authMiddleware.RequireRoles("admin")).Put("/{id}", taskHandler.Update)
			tasks.With(authMiddleware.RequireRoles("admin")).Patch("/{id}", taskHandler.Patch)
			tasks.With(authMiddleware.RequireRoles("admin")).Delete("/{id}", taskHandler.Delete)
		})
	})

	return r
}
