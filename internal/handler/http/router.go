package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/ledgerline/identity-core/internal/domain/auth"
	"github.com/ledgerline/identity-core/internal/handler/http/middleware"
	"github.com/ledgerline/identity-core/internal/handler/http/response"
)

type RouterOptions struct {
	Logger         *slog.Logger
	LogLevel       slog.Level
	AllowedOrigins []string
	RequestTimeout time.Duration
	// GoogleLogin mounts the federated login routes.
	GoogleLogin bool
}

func NewRouter(opts RouterOptions, guard auth.Guard, authHandler AuthHandler, userHandler UserHandler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	if opts.Logger != nil {
		r.Use(httplog.RequestLogger(opts.Logger, &httplog.Options{
			Level:  opts.LogLevel,
			Schema: httplog.SchemaECS,
		}))
	}

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	if opts.RequestTimeout > 0 {
		r.Use(chiMiddleware.Timeout(opts.RequestTimeout))
	}
	r.Use(chiMiddleware.Heartbeat("/healthz"))

	routes := func(r chi.Router) {
		r.Post("/signup", authHandler.Signup)
		r.Post("/login", authHandler.Login)

		if opts.GoogleLogin {
			r.Route("/auth/google", func(r chi.Router) {
				r.Get("/", authHandler.LoginWithGoogle)
				r.Get("/callback", authHandler.OAuthCallbackGoogle)
			})
		}

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(guard))

			r.Get("/profile", authHandler.Profile)
			r.Post("/logout", authHandler.Logout)

			r.Route("/users", func(r chi.Router) {
				r.Use(middleware.AdminOnly(guard))

				r.Get("/", userHandler.List)
				r.Post("/", userHandler.Create)
				r.Get("/managers", userHandler.ListManagers)
				r.Get("/{id}", userHandler.Get)
				r.Put("/{id}", userHandler.Update)
				r.Delete("/{id}", userHandler.Delete)
			})
		})
	}

	r.Group(routes)
	r.Route("/api", routes)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, "route not found")
	})
	return r
}
