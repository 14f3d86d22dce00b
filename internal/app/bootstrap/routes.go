// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	authfeature "github.com/dalemusser/notehub/internal/app/features/authgoogle"
	errorsfeature "github.com/dalemusser/notehub/internal/app/features/errors"
	healthfeature "github.com/dalemusser/notehub/internal/app/features/health"
	notesfeature "github.com/dalemusser/notehub/internal/app/features/notes"
	usersfeature "github.com/dalemusser/notehub/internal/app/features/users"
	notestore "github.com/dalemusser/notehub/internal/app/store/notes"
	userstore "github.com/dalemusser/notehub/internal/app/store/users"
	"github.com/dalemusser/notehub/internal/app/system/auth"
	"github.com/dalemusser/notehub/internal/app/system/metrics"
	"github.com/dalemusser/notehub/internal/app/system/requestlog"
	"github.com/dalemusser/notehub/internal/app/system/token"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. At this point you have access to:
//   - coreCfg: WAFFLE core configuration (ports, env, timeouts, etc.)
//   - appCfg: app-specific configuration defined in AppConfig
//   - deps: any DB or backend clients bundled in DBDeps
//   - logger: the fully configured zap.Logger for this app
//
// NoteHub builds the token service and auth guard, applies request ID,
// access log, and metrics middleware, and mounts the feature routers:
// health, metrics, auth, notes, and users.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Token service signs and verifies the bearer tokens issued at login.
	tokens := token.NewService(appCfg.JWTSecret, token.DefaultTTL)
	guard := auth.NewGuard(tokens, logger)

	// Create error logger for handlers.
	errLog := errorsfeature.NewErrorLogger(logger)

	// Stores
	users := userstore.New(deps.NoteHubMongoDatabase)
	notes := notestore.New(deps.NoteHubMongoDatabase)

	collector := metrics.NewCollector()

	r := chi.NewRouter()

	r.Use(requestlog.RequestID)
	r.Use(requestlog.Logger(logger))
	r.Use(collector.Middleware)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.NoteHubMongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Prometheus scrape endpoint
	r.Handle("/metrics", collector.Handler())

	// Authentication
	authHandler := authfeature.NewHandler(
		users, tokens, errLog,
		appCfg.GoogleClientID, appCfg.GoogleClientSecret, appCfg.GoogleCallbackURL,
		logger,
	)
	r.Mount("/auth", authfeature.Routes(authHandler, guard))

	// Owner-scoped notes
	notesHandler := notesfeature.NewHandler(notes, errLog, logger)
	r.Mount("/notes", notesfeature.Routes(notesHandler, guard))

	// Admin user directory
	usersHandler := usersfeature.NewHandler(users, errLog, logger)
	r.Mount("/users", usersfeature.Routes(usersHandler, guard))

	return r, nil
}
