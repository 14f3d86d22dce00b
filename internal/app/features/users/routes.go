// internal/app/features/users/routes.go
package users

import (
	"github.com/go-chi/chi/v5"

	"github.com/dalemusser/notehub/internal/app/system/auth"
	"github.com/dalemusser/notehub/internal/domain/models"
)

// Routes mounts all user directory routes under the path where this
// router is mounted (typically "/users" from bootstrap).
func Routes(h *Handler, guard *auth.Guard) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		// Only signed-in admins can manage the user directory.
		pr.Use(guard.RequireSignedIn)
		pr.Use(guard.RequireRole(models.RoleAdmin))

		pr.Get("/", h.ServeList)
		pr.Get("/{userId}", h.ServeGet)
		pr.Put("/{userId}/make-admin", h.HandleMakeAdmin)
		pr.Put("/{userId}/make-regular", h.HandleMakeRegular)
		pr.Delete("/{userId}", h.HandleDelete)
	})

	return r
}
