// internal/app/features/notes/handler.go
package notes

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apierrors "github.com/dalemusser/notehub/internal/app/features/errors"
	notestore "github.com/dalemusser/notehub/internal/app/store/notes"
	"github.com/dalemusser/notehub/internal/app/system/authz"
	"github.com/dalemusser/notehub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/notehub/internal/app/system/inputval"
	"github.com/dalemusser/notehub/internal/app/system/paging"
	"github.com/dalemusser/notehub/internal/app/system/timeouts"
)

// maxBodyBytes caps note request bodies.
const maxBodyBytes = 1 << 20

// Handler serves the owner-scoped note CRUD endpoints.
type Handler struct {
	Notes  *notestore.Store
	ErrLog *apierrors.ErrorLogger
	Log    *zap.Logger
}

// NewHandler constructs a notes Handler.
func NewHandler(notes *notestore.Store, errLog *apierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Notes: notes, ErrLog: errLog, Log: logger}
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /notes                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	_, owner, ok := authz.UserCtx(r)
	if !ok {
		apierrors.Write(w, h.Log, apierrors.Unauthenticated("missing or invalid token"))
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		apierrors.Write(w, h.Log, apierrors.Validation("could not read request body"))
		return
	}

	in, err := inputval.CreateNote(body)
	if err != nil {
		apierrors.Write(w, h.Log, apierrors.Validation(err.Error()))
		return
	}

	title := htmlsanitize.Text(in.Title)
	content := htmlsanitize.Text(in.Content)
	if title == "" || content == "" {
		apierrors.Write(w, h.Log, apierrors.Validation("title and content must not be empty after sanitization"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	note, err := h.Notes.Create(ctx, owner, notestore.CreateFields{
		Title:    title,
		Content:  content,
		Tags:     htmlsanitize.Texts(in.Tags),
		Category: htmlsanitize.Text(in.Category),
	})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "create note failed", err)
		return
	}

	apierrors.WriteJSON(w, http.StatusCreated, note)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /notes                                                                   |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	_, owner, ok := authz.UserCtx(r)
	if !ok {
		apierrors.Write(w, h.Log, apierrors.Unauthenticated("missing or invalid token"))
		return
	}

	page, err := paging.ParsePage(r)
	if err != nil {
		apierrors.Write(w, h.Log, apierrors.Validation(err.Error()))
		return
	}
	limit, err := paging.ParseLimit(r)
	if err != nil {
		apierrors.Write(w, h.Log, apierrors.Validation(err.Error()))
		return
	}

	filter := notestore.ListFilter{
		Category: r.URL.Query().Get("category"),
		Tag:      r.URL.Query().Get("tag"),
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	result, err := h.Notes.List(ctx, owner, filter, page, limit)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list notes failed", err)
		return
	}

	apierrors.WriteJSON(w, http.StatusOK, result)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /notes/{noteId}                                                          |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	_, owner, ok := authz.UserCtx(r)
	if !ok {
		apierrors.Write(w, h.Log, apierrors.Unauthenticated("missing or invalid token"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	note, err := h.Notes.GetOne(ctx, owner, chi.URLParam(r, "noteId"))
	if err != nil {
		h.writeStoreError(w, r, "get note failed", err)
		return
	}

	apierrors.WriteJSON(w, http.StatusOK, note)
}

/*─────────────────────────────────────────────────────────────────────────────*
| PUT /notes/{noteId}                                                          |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	_, owner, ok := authz.UserCtx(r)
	if !ok {
		apierrors.Write(w, h.Log, apierrors.Unauthenticated("missing or invalid token"))
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		apierrors.Write(w, h.Log, apierrors.Validation("could not read request body"))
		return
	}

	in, err := inputval.UpdateNote(body)
	if err != nil {
		apierrors.Write(w, h.Log, apierrors.Validation(err.Error()))
		return
	}

	fields := notestore.UpdateFields{
		Tags:     in.Tags,
		Category: in.Category,
	}
	if in.Title != nil {
		title := htmlsanitize.Text(*in.Title)
		if title == "" {
			apierrors.Write(w, h.Log, apierrors.Validation("title must not be empty after sanitization"))
			return
		}
		fields.Title = &title
	}
	if in.Content != nil {
		content := htmlsanitize.Text(*in.Content)
		if content == "" {
			apierrors.Write(w, h.Log, apierrors.Validation("content must not be empty after sanitization"))
			return
		}
		fields.Content = &content
	}
	if in.Tags != nil {
		tags := htmlsanitize.Texts(*in.Tags)
		fields.Tags = &tags
	}
	if in.Category != nil {
		cat := htmlsanitize.Text(*in.Category)
		fields.Category = &cat
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	note, err := h.Notes.Update(ctx, owner, chi.URLParam(r, "noteId"), fields)
	if err != nil {
		h.writeStoreError(w, r, "update note failed", err)
		return
	}

	apierrors.WriteJSON(w, http.StatusOK, note)
}

/*─────────────────────────────────────────────────────────────────────────────*
| DELETE /notes/{noteId}                                                       |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	_, owner, ok := authz.UserCtx(r)
	if !ok {
		apierrors.Write(w, h.Log, apierrors.Unauthenticated("missing or invalid token"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Notes.Delete(ctx, owner, chi.URLParam(r, "noteId")); err != nil {
		h.writeStoreError(w, r, "delete note failed", err)
		return
	}

	apierrors.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Note deleted successfully",
	})
}

// writeStoreError maps note store errors to their API responses.
func (h *Handler) writeStoreError(w http.ResponseWriter, r *http.Request, logMsg string, err error) {
	switch {
	case errors.Is(err, notestore.ErrInvalidID):
		apierrors.Write(w, h.Log, apierrors.Validation("Invalid note ID"))
	case errors.Is(err, notestore.ErrNotFound):
		apierrors.Write(w, h.Log, apierrors.NotFound("Note not found"))
	default:
		h.ErrLog.LogServerError(w, r, logMsg, err)
	}
}
