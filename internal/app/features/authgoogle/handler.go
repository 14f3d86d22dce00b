// internal/app/features/authgoogle/handler.go
package authgoogle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	apierrors "github.com/dalemusser/notehub/internal/app/features/errors"
	userstore "github.com/dalemusser/notehub/internal/app/store/users"
	"github.com/dalemusser/notehub/internal/app/system/auth"
	"github.com/dalemusser/notehub/internal/app/system/timeouts"
	"github.com/dalemusser/notehub/internal/app/system/token"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// Handler handles Google OAuth authentication and session token issuance.
type Handler struct {
	Users  *userstore.Store
	Tokens *token.Service
	ErrLog *apierrors.ErrorLogger
	Log    *zap.Logger

	// OAuth configuration
	ClientID     string
	ClientSecret string
	RedirectURL  string // e.g. "https://notehub.example.com/auth/google/callback"

	// Endpoint and UserInfoURL default to Google's; tests point them at
	// a local fake provider.
	Endpoint    oauth2.Endpoint
	UserInfoURL string
}

// NewHandler creates a new Google OAuth handler.
func NewHandler(
	users *userstore.Store,
	tokens *token.Service,
	errLog *apierrors.ErrorLogger,
	clientID, clientSecret, redirectURL string,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Users:        users,
		Tokens:       tokens,
		ErrLog:       errLog,
		Log:          logger,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Endpoint:     google.Endpoint,
		UserInfoURL:  googleUserInfoURL,
	}
}

// oauth2Config returns the Google OAuth2 configuration.
func (h *Handler) oauth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     h.ClientID,
		ClientSecret: h.ClientSecret,
		RedirectURL:  h.RedirectURL,
		Scopes:       []string{"email", "profile"},
		Endpoint:     h.Endpoint,
	}
}

// IsConfigured returns true if Google OAuth is configured.
func (h *Handler) IsConfigured() bool {
	return h.ClientID != "" && h.RedirectURL != ""
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /auth/google                                                             |
| Returns the consent URL clients redirect users to.                           |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeAuthURL(w http.ResponseWriter, r *http.Request) {
	if !h.IsConfigured() {
		h.Log.Error("Google OAuth not configured")
		apierrors.Write(w, h.Log, apierrors.Internal(errors.New("google oauth not configured")))
		return
	}

	params := url.Values{}
	params.Set("client_id", h.ClientID)
	params.Set("redirect_uri", h.RedirectURL)
	params.Set("response_type", "code")
	params.Set("scope", "email profile")
	params.Set("access_type", "offline")
	params.Set("prompt", "consent")

	authURL := h.Endpoint.AuthURL + "?" + params.Encode()

	apierrors.WriteJSON(w, http.StatusOK, map[string]string{
		"auth_url": authURL,
		"message":  "Redirect users to this URL for Google authentication",
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /auth/google/callback                                                   |
| Exchanges the authorization code for tokens, resolves the Google profile to  |
| a local user, and issues a session token.                                    |
*─────────────────────────────────────────────────────────────────────────────*/

type callbackRequest struct {
	Code string `json:"code"`
}

type loginUser struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Role    string `json:"role"`
	Picture string `json:"picture"`
}

type loginResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresIn   string    `json:"expiresIn"`
	User        loginUser `json:"user"`
}

func (h *Handler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	var req callbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
		apierrors.Write(w, h.Log, apierrors.Validation("Authorization code is required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	googleUser, err := h.exchangeAndFetch(ctx, decodeCode(req.Code))
	if err != nil {
		var apiErr *apierrors.Error
		if errors.As(err, &apiErr) {
			h.ErrLog.LogAuthFailure(w, r, apiErr.Message, apiErr.Err)
			return
		}
		h.ErrLog.LogAuthFailure(w, r, "Authentication failed", err)
		return
	}

	user, err := h.Users.FindOrCreateFromGoogle(ctx, userstore.GoogleIdentity{
		GoogleID: googleUser.ID,
		Email:    googleUser.Email,
		Name:     googleUser.Name,
		Picture:  googleUser.Picture,
	})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "find or create user failed", err)
		return
	}

	accessToken, err := h.Tokens.Issue(token.Claims{
		Subject: user.ID.Hex(),
		Email:   user.Email,
		Role:    user.Role,
	})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "issue session token failed", err)
		return
	}

	h.Log.Info("user signed in via Google",
		zap.String("user_id", user.ID.Hex()),
		zap.String("email", user.Email))

	apierrors.WriteJSON(w, http.StatusOK, loginResponse{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   "7d",
		User: loginUser{
			ID:      user.ID.Hex(),
			Email:   user.Email,
			Name:    user.Name,
			Role:    user.Role,
			Picture: user.Picture,
		},
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /auth/profile, POST /auth/validate                                       |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeProfile returns the identity carried by the caller's token.
func (h *Handler) ServeProfile(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		apierrors.Write(w, h.Log, apierrors.Unauthenticated("missing or invalid token"))
		return
	}

	apierrors.WriteJSON(w, http.StatusOK, map[string]any{
		"user": map[string]string{
			"id":    u.ID,
			"email": u.Email,
			"role":  u.Role,
		},
	})
}

// HandleValidate confirms the caller's token verified. The guard has
// already rejected anything invalid by the time this runs.
func (h *Handler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	apierrors.WriteJSON(w, http.StatusOK, map[string]any{
		"valid":   true,
		"message": "Token is valid",
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| Provider calls                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

// googleUserInfo represents user info returned from Google.
type googleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// exchangeAndFetch trades the authorization code for tokens, fetches
// the user's Google profile, and rejects unverified emails.
func (h *Handler) exchangeAndFetch(ctx context.Context, code string) (*googleUserInfo, error) {
	tok, err := h.oauth2Config().Exchange(ctx, code)
	if err != nil {
		return nil, apierrors.AuthFailed(exchangeErrorMessage(err), err)
	}

	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(tok))
	resp, err := client.Get(h.UserInfoURL)
	if err != nil {
		return nil, apierrors.AuthFailed("Failed to fetch user info from Google", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apierrors.AuthFailed("Failed to fetch user info from Google",
			fmt.Errorf("unexpected status code: %d", resp.StatusCode))
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, apierrors.AuthFailed("Failed to fetch user info from Google", err)
	}

	if !info.EmailVerified {
		return nil, apierrors.AuthFailed("Google email not verified", nil)
	}

	return &info, nil
}

// exchangeErrorMessage surfaces the provider's error_description when
// the token endpoint rejects the code.
func exchangeErrorMessage(err error) string {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) && re.ErrorDescription != "" {
		return re.ErrorDescription
	}
	return "Failed to exchange code for tokens"
}

// decodeCode undoes the URL encoding clients commonly apply to the
// authorization code before posting it. Codes that were not encoded
// pass through unchanged.
func decodeCode(code string) string {
	decoded, err := url.QueryUnescape(code)
	if err != nil {
		decoded = code
	}
	decoded = strings.ReplaceAll(decoded, "%2F", "/")
	return strings.ReplaceAll(decoded, "%2f", "/")
}
