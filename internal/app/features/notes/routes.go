// internal/app/features/notes/routes.go
package notes

import (
	"github.com/go-chi/chi/v5"

	"github.com/dalemusser/notehub/internal/app/system/auth"
)

// Routes mounts the note CRUD routes under the path where this router
// is mounted (typically "/notes" from bootstrap). Every route requires
// a signed-in user; notes are always scoped to the caller.
func Routes(h *Handler, guard *auth.Guard) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(guard.RequireSignedIn)

		pr.Post("/", h.HandleCreate)
		pr.Get("/", h.ServeList)
		pr.Get("/{noteId}", h.ServeGet)
		pr.Put("/{noteId}", h.HandleUpdate)
		pr.Delete("/{noteId}", h.HandleDelete)
	})

	return r
}
