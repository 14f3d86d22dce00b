package authgoogle_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/dalemusser/notehub/internal/app/features/authgoogle"
	apierrors "github.com/dalemusser/notehub/internal/app/features/errors"
	userstore "github.com/dalemusser/notehub/internal/app/store/users"
	"github.com/dalemusser/notehub/internal/app/system/token"
	"github.com/dalemusser/notehub/internal/domain/models"
	"github.com/dalemusser/notehub/internal/testutil"
)

// fakeProvider stands in for Google's token and userinfo endpoints.
type fakeProvider struct {
	server *httptest.Server

	// userinfo is the profile the provider returns for any access token.
	userinfo map[string]any

	// tokenStatus lets tests force the token endpoint to fail.
	tokenStatus int
	tokenBody   string
}

func newFakeProvider(t *testing.T) *fakeProvider {
	t.Helper()

	p := &fakeProvider{
		userinfo: map[string]any{
			"id":             "google-123",
			"email":          "alice@example.com",
			"verified_email": true,
			"name":           "Alice Example",
			"picture":        "https://example.com/alice.png",
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		if p.tokenStatus != 0 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(p.tokenStatus)
			w.Write([]byte(p.tokenBody))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"fake-access","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(p.userinfo)
	})

	p.server = httptest.NewServer(mux)
	t.Cleanup(p.server.Close)
	return p
}

func (p *fakeProvider) endpoint() oauth2.Endpoint {
	return oauth2.Endpoint{
		AuthURL:  p.server.URL + "/auth",
		TokenURL: p.server.URL + "/token",
	}
}

func newTestHandler(t *testing.T, provider *fakeProvider) (*authgoogle.Handler, *userstore.Store) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	users := userstore.New(db)
	tokens := token.NewService("test-secret-which-is-long-enough", 0)

	h := authgoogle.NewHandler(users, tokens, apierrors.NewErrorLogger(logger),
		"client-id", "client-secret", "http://localhost:3000/auth/google/callback", logger)
	if provider != nil {
		h.Endpoint = provider.endpoint()
		h.UserInfoURL = provider.server.URL + "/userinfo"
	}
	return h, users
}

func TestServeAuthURL(t *testing.T) {
	handler, _ := newTestHandler(t, newFakeProvider(t))

	req := testutil.NewRequest("GET", "/auth/google")
	rec := httptest.NewRecorder()

	handler.ServeAuthURL(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body struct {
		AuthURL string `json:"auth_url"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Message != "Redirect users to this URL for Google authentication" {
		t.Errorf("message: got %q", body.Message)
	}
	for _, want := range []string{"client_id=client-id", "response_type=code", "access_type=offline", "prompt=consent"} {
		if !strings.Contains(body.AuthURL, want) {
			t.Errorf("auth_url missing %q: %s", want, body.AuthURL)
		}
	}
}

func TestServeAuthURL_Unconfigured(t *testing.T) {
	handler, _ := newTestHandler(t, nil)
	handler.ClientID = ""

	req := testutil.NewRequest("GET", "/auth/google")
	rec := httptest.NewRecorder()

	handler.ServeAuthURL(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
}

func TestHandleCallback_MissingCode(t *testing.T) {
	handler, _ := newTestHandler(t, newFakeProvider(t))

	for _, body := range []string{`{}`, `{"code":""}`, `not json`} {
		req := testutil.NewJSONRequest("POST", "/auth/google/callback", body)
		rec := httptest.NewRecorder()

		handler.HandleCallback(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %q: expected 400, got %d", body, rec.Code)
			continue
		}
		var resp struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode error body: %v", err)
		}
		if resp.Message != "Authorization code is required" {
			t.Errorf("body %q: message %q", body, resp.Message)
		}
	}
}

func TestHandleCallback_Success(t *testing.T) {
	provider := newFakeProvider(t)
	handler, users := newTestHandler(t, provider)

	req := testutil.NewJSONRequest("POST", "/auth/google/callback", `{"code":"good-code"}`)
	rec := httptest.NewRecorder()

	handler.HandleCallback(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		ExpiresIn   string `json:"expiresIn"`
		User        struct {
			ID      string `json:"id"`
			Email   string `json:"email"`
			Name    string `json:"name"`
			Role    string `json:"role"`
			Picture string `json:"picture"`
		} `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.TokenType != "Bearer" || resp.ExpiresIn != "7d" {
		t.Errorf("token_type=%q expiresIn=%q", resp.TokenType, resp.ExpiresIn)
	}
	if resp.User.Email != "alice@example.com" || resp.User.Role != models.RoleUser {
		t.Errorf("user: %+v", resp.User)
	}

	// The issued token must verify and carry the new user's identity.
	tokens := token.NewService("test-secret-which-is-long-enough", 0)
	claims, err := tokens.Verify(resp.AccessToken)
	if err != nil {
		t.Fatalf("issued token did not verify: %v", err)
	}
	if claims.Subject != resp.User.ID || claims.Email != "alice@example.com" {
		t.Errorf("claims: %+v", claims)
	}

	// The user must be persisted.
	ctx, cancel := testutil.TestContext()
	defer cancel()
	u, err := users.GetByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("user not persisted: %v", err)
	}
	if u.Role != models.RoleUser {
		t.Errorf("persisted role: got %q", u.Role)
	}
}

func TestHandleCallback_SecondLoginReusesUser(t *testing.T) {
	provider := newFakeProvider(t)
	handler, users := newTestHandler(t, provider)

	for i := 0; i < 2; i++ {
		req := testutil.NewJSONRequest("POST", "/auth/google/callback", `{"code":"good-code"}`)
		rec := httptest.NewRecorder()
		handler.HandleCallback(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("login %d: expected 200, got %d", i+1, rec.Code)
		}
	}

	ctx, cancel := testutil.TestContext()
	defer cancel()
	all, err := users.List(ctx)
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("user count after two logins: got %d, want 1", len(all))
	}
}

func TestHandleCallback_UnverifiedEmail(t *testing.T) {
	provider := newFakeProvider(t)
	provider.userinfo["verified_email"] = false
	handler, users := newTestHandler(t, provider)

	req := testutil.NewJSONRequest("POST", "/auth/google/callback", `{"code":"good-code"}`)
	rec := httptest.NewRecorder()

	handler.HandleCallback(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if resp.Message != "Google email not verified" {
		t.Errorf("message: got %q", resp.Message)
	}

	// No account may be created for an unverified email.
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if _, err := users.GetByEmail(ctx, "alice@example.com"); err == nil {
		t.Error("user was persisted despite unverified email")
	}
}

func TestHandleCallback_ExchangeFailure(t *testing.T) {
	provider := newFakeProvider(t)
	provider.tokenStatus = http.StatusBadRequest
	provider.tokenBody = `{"error":"invalid_grant","error_description":"Code was already redeemed"}`
	handler, _ := newTestHandler(t, provider)

	req := testutil.NewJSONRequest("POST", "/auth/google/callback", `{"code":"stale-code"}`)
	rec := httptest.NewRecorder()

	handler.HandleCallback(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	var resp struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if resp.Message != "Code was already redeemed" {
		t.Errorf("message: got %q, want provider error description", resp.Message)
	}
}

func TestServeProfile(t *testing.T) {
	handler, _ := newTestHandler(t, nil)

	user := testutil.RegularUser()
	req := testutil.NewAuthenticatedRequest("GET", "/auth/profile", user)
	rec := httptest.NewRecorder()

	handler.ServeProfile(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		User struct {
			ID    string `json:"id"`
			Email string `json:"email"`
			Role  string `json:"role"`
		} `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.User.ID != user.ID || resp.User.Email != user.Email {
		t.Errorf("profile: %+v", resp.User)
	}
}

func TestHandleValidate(t *testing.T) {
	handler, _ := newTestHandler(t, nil)

	req := testutil.NewAuthenticatedRequest("POST", "/auth/validate", testutil.RegularUser())
	rec := httptest.NewRecorder()

	handler.HandleValidate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Valid   bool   `json:"valid"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Valid || resp.Message != "Token is valid" {
		t.Errorf("validate: %+v", resp)
	}
}
