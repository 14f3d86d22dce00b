// internal/app/features/users/handler.go
package users

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apierrors "github.com/dalemusser/notehub/internal/app/features/errors"
	userstore "github.com/dalemusser/notehub/internal/app/store/users"
	"github.com/dalemusser/notehub/internal/app/system/auth"
	"github.com/dalemusser/notehub/internal/app/system/timeouts"
	"github.com/dalemusser/notehub/internal/domain/models"
)

// Handler serves the admin-only user directory endpoints.
type Handler struct {
	Users  *userstore.Store
	ErrLog *apierrors.ErrorLogger
	Log    *zap.Logger
}

// NewHandler constructs a users Handler.
func NewHandler(users *userstore.Store, errLog *apierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Users: users, ErrLog: errLog, Log: logger}
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /users                                                                   |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	all, err := h.Users.List(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list users failed", err)
		return
	}

	apierrors.WriteJSON(w, http.StatusOK, all)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /users/{userId}                                                          |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByID(ctx, chi.URLParam(r, "userId"))
	if err != nil {
		h.writeStoreError(w, r, "get user failed", err)
		return
	}

	apierrors.WriteJSON(w, http.StatusOK, u)
}

/*─────────────────────────────────────────────────────────────────────────────*
| PUT /users/{userId}/make-admin, PUT /users/{userId}/make-regular             |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleMakeAdmin(w http.ResponseWriter, r *http.Request) {
	h.setRole(w, r, models.RoleAdmin)
}

func (h *Handler) HandleMakeRegular(w http.ResponseWriter, r *http.Request) {
	h.setRole(w, r, models.RoleUser)
}

func (h *Handler) setRole(w http.ResponseWriter, r *http.Request, role string) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	target := chi.URLParam(r, "userId")
	u, err := h.Users.SetRole(ctx, target, role)
	if err != nil {
		if userstore.IsBadRole(err) {
			apierrors.Write(w, h.Log, apierrors.Validation(`Invalid role. Must be "user" or "admin"`))
			return
		}
		h.writeStoreError(w, r, "set user role failed", err)
		return
	}

	h.Log.Info("user role changed",
		zap.String("user_id", u.ID.Hex()),
		zap.String("role", role))

	apierrors.WriteJSON(w, http.StatusOK, u)
}

/*─────────────────────────────────────────────────────────────────────────────*
| DELETE /users/{userId}                                                       |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	target := chi.URLParam(r, "userId")

	// Admins cannot remove their own account.
	if current, ok := auth.CurrentUser(r); ok && current.ID == target {
		apierrors.Write(w, h.Log, apierrors.Validation("You cannot delete your own account"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	deleted, err := h.Users.Delete(ctx, target)
	if err != nil {
		h.writeStoreError(w, r, "delete user failed", err)
		return
	}

	h.Log.Info("user deleted",
		zap.String("user_id", deleted.ID.Hex()),
		zap.String("email", deleted.Email))

	apierrors.WriteJSON(w, http.StatusOK, map[string]any{
		"message":     "User deleted successfully",
		"deletedUser": deleted,
	})
}

// writeStoreError maps user store errors to their API responses.
func (h *Handler) writeStoreError(w http.ResponseWriter, r *http.Request, logMsg string, err error) {
	switch {
	case errors.Is(err, userstore.ErrInvalidID):
		apierrors.Write(w, h.Log, apierrors.Validation("Invalid user ID"))
	case errors.Is(err, userstore.ErrNotFound):
		apierrors.Write(w, h.Log, apierrors.NotFound("User not found"))
	default:
		h.ErrLog.LogServerError(w, r, logMsg, err)
	}
}
