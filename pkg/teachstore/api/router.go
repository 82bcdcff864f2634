package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/edustack/teachstore/pkg/teachstore"
	"github.com/edustack/teachstore/pkg/teachstore/auth"
)

// RouterConfig carries the router dependencies.
type RouterConfig struct {
	Service   teachstore.Service
	Tokens    *auth.Tokens
	MaxUpload int64
}

// NewRouter builds the HTTP API. Login and blob preview are public; every
// other route requires a valid access token, with write routes guarded by
// role.
func NewRouter(cfg RouterConfig) *chi.Mux {
	authHandler := NewAuthHandler(cfg.Service, cfg.Tokens)
	userHandler := NewUserHandler(cfg.Service)
	blobHandler := NewBlobHandler(cfg.Service, cfg.MaxUpload)
	categoryHandler := NewCategoryHandler(cfg.Service)
	materialHandler := NewMaterialHandler(cfg.Service, cfg.MaxUpload)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Route("/api", func(r chi.Router) {
		// Public routes.
		r.Post("/login", authHandler.Login)
		r.Get("/blobs/{id}/preview", blobHandler.Preview)

		// Authenticated routes.
		r.Group(func(r chi.Router) {
			r.Use(cfg.Tokens.Verifier())
			r.Use(RequireActor)

			staff := RequireRole(teachstore.RoleAdmin, teachstore.RoleTeacher)

			r.Route("/users", func(r chi.Router) {
				r.Use(staff)
				r.Get("/", userHandler.List)
				r.Post("/", userHandler.Create)
				r.Delete("/{id}", userHandler.Delete)
			})

			r.With(RequireRole(teachstore.RoleAdmin)).
				Get("/roles", userHandler.ListRoles)

			r.Route("/blobs", func(r chi.Router) {
				r.With(staff).Post("/upload", blobHandler.Upload)
				r.With(staff).Delete("/{id}", blobHandler.Delete)
			})

			r.Route("/categories", func(r chi.Router) {
				r.Get("/", categoryHandler.List)
				r.Get("/tree", categoryHandler.Tree)
				r.Get("/{id}", categoryHandler.Get)
				r.Get("/{id}/children", categoryHandler.Children)
				r.Get("/{id}/descendants", categoryHandler.Descendants)

				r.With(staff).Post("/", categoryHandler.Create)
				r.With(staff).Put("/{id}", categoryHandler.Update)
				r.With(staff).Delete("/{id}", categoryHandler.Delete)
			})

			r.Route("/materials", func(r chi.Router) {
				r.Get("/", materialHandler.List)
				r.Get("/{id}", materialHandler.Get)
				r.Get("/{id}/content", materialHandler.GetContent)

				r.With(staff).Post("/", materialHandler.Create)
				r.With(staff).Put("/{id}", materialHandler.Update)
				r.With(staff).Delete("/{id}", materialHandler.Delete)
				r.With(staff).Put("/{id}/publish", materialHandler.Publish)
				r.With(staff).Put("/{id}/content", materialHandler.SaveContent)
			})
		})
	})

	return r
}
