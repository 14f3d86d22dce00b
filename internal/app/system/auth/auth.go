// Package auth authenticates API requests from bearer session tokens
// and injects the signed-in user into the request context.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	apierrors "github.com/dalemusser/notehub/internal/app/features/errors"
	"github.com/dalemusser/notehub/internal/app/system/token"
)

// SessionUser is what we decode from the token and inject into r.Context().
type SessionUser struct {
	ID    string
	Email string
	Role  string
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the user & "found?" flag.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok
}

// Guard verifies bearer tokens and enforces sign-in and role checks.
type Guard struct {
	tokens *token.Service
	log    *zap.Logger
}

// NewGuard constructs a Guard around the given token service.
func NewGuard(tokens *token.Service, log *zap.Logger) *Guard {
	return &Guard{tokens: tokens, log: log}
}

// RequireSignedIn verifies the Authorization bearer token and injects the
// user into context. Missing, malformed, or expired tokens get a 401.
func (g *Guard) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Test hook: a user already in context skips token verification.
		if _, ok := CurrentUser(r); ok {
			next.ServeHTTP(w, r)
			return
		}

		raw, ok := bearerToken(r)
		if !ok {
			apierrors.Write(w, nil, apierrors.Unauthenticated("missing or invalid token"))
			return
		}

		claims, err := g.tokens.Verify(raw)
		if err != nil {
			if errors.Is(err, token.ErrTokenExpired) {
				g.log.Debug("rejected expired token", zap.String("path", r.URL.Path))
			} else {
				g.log.Debug("rejected invalid token", zap.String("path", r.URL.Path))
			}
			apierrors.Write(w, nil, apierrors.Unauthenticated("missing or invalid token"))
			return
		}

		u := &SessionUser{
			ID:    claims.Subject,
			Email: claims.Email,
			Role:  claims.Role,
		}
		next.ServeHTTP(w, withUser(r, u))
	})
}

// RequireRole ensures the signed-in user holds one of the allowed roles.
// It must run inside RequireSignedIn; a request with no user in context
// gets a 401 and an ordering error in the log.
func (g *Guard) RequireRole(allowed ...string) func(http.Handler) http.Handler {
	set := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		set[strings.ToLower(strings.TrimSpace(role))] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := CurrentUser(r)
			if !ok {
				g.log.Error("RequireRole ran without RequireSignedIn",
					zap.String("path", r.URL.Path))
				apierrors.Write(w, nil, apierrors.Unauthenticated("missing or invalid token"))
				return
			}

			if _, has := set[strings.ToLower(u.Role)]; !has {
				apierrors.Write(w, nil, apierrors.Forbidden("insufficient role"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// WithTestUser returns a request carrying the given user in context.
// Handler tests use it to bypass token verification.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}

// helpers

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

// bearerToken extracts the token from an "Authorization: Bearer <tok>"
// header. The scheme match is case-insensitive.
func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	if h == "" {
		return "", false
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	tok := strings.TrimSpace(parts[1])
	if tok == "" {
		return "", false
	}
	return tok, true
}
