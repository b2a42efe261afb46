package http

import (
	"net/http"

	"github.com/knowdistrict/knowdistrict/internal/middleware"
	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter constructs the HTTP handler serving the KnowDistrict API.
// Registration and login are public; every other route resolves the
// caller's role from the bearer token, and the services decide between
// 401 (no role) and 403 (guard denial).
//
// Routes (all under /api):
//
//	POST /register, /login                      — public
//	GET/POST /categories, PATCH/DELETE /categories/{id}
//	GET/POST /documents, GET/PATCH/DELETE /documents/{id}
//	POST /documents/search
//	POST /ai/suggest, /ai/chat, /ai/chat/internal
//	GET /users, PATCH /users/{id}/role
func NewRouter(
	authHandler *AuthHandler,
	userHandler *UserHandler,
	categoryHandler *CategoryHandler,
	documentHandler *DocumentHandler,
	aiHandler *AIHandler,
	jwtSecret string,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Only allow requests with Content-Type: application/json
	r.Use(chiMiddleware.AllowContentType("application/json"))

	// Log each request and its metadata
	r.Use(middleware.WithRequestLogging(logger))
	// Resolve bearer-token identity into the request context
	r.Use(middleware.BearerAuth(jwtSecret))

	r.Route("/api", func(r chi.Router) {
		// Public endpoints
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", categoryHandler.List)
			r.Post("/", categoryHandler.Create)
			r.Get("/{id}", categoryHandler.Get)
			r.Patch("/{id}", categoryHandler.Update)
			r.Delete("/{id}", categoryHandler.Delete)
		})

		r.Route("/documents", func(r chi.Router) {
			r.Get("/", documentHandler.List)
			r.Post("/", documentHandler.Create)
			r.Post("/search", documentHandler.Search)
			r.Get("/{id}", documentHandler.Get)
			r.Patch("/{id}", documentHandler.Update)
			r.Delete("/{id}", documentHandler.Delete)
		})

		r.Route("/ai", func(r chi.Router) {
			r.Post("/suggest", aiHandler.Suggest)
			r.Post("/chat", aiHandler.Chat)
			r.Post("/chat/internal", aiHandler.ChatInternal)
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", userHandler.List)
			r.Patch("/{id}/role", userHandler.SetRole)
		})
	})

	return r
}
