// internal/app/features/authgoogle/routes.go
package authgoogle

import (
	"github.com/go-chi/chi/v5"

	"github.com/dalemusser/notehub/internal/app/system/auth"
)

// Routes returns the router for auth endpoints. The URL and callback
// routes are public; profile and validate require a session token.
func Routes(h *Handler, guard *auth.Guard) chi.Router {
	r := chi.NewRouter()

	// GET /auth/google - return the Google consent URL
	r.Get("/google", h.ServeAuthURL)

	// POST /auth/google/callback - exchange code, issue session token
	r.Post("/google/callback", h.HandleCallback)

	r.Group(func(pr chi.Router) {
		pr.Use(guard.RequireSignedIn)

		// GET /auth/profile - identity carried by the token
		pr.Get("/profile", h.ServeProfile)

		// POST /auth/validate - confirm the token verifies
		pr.Post("/validate", h.HandleValidate)
	})

	return r
}
