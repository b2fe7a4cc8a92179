// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	authgooglefeature "github.com/kdawg1232/memoserver/internal/app/features/authgoogle"
	eventsfeature "github.com/kdawg1232/memoserver/internal/app/features/events"
	groupsfeature "github.com/kdawg1232/memoserver/internal/app/features/groups"
	healthfeature "github.com/kdawg1232/memoserver/internal/app/features/health"
	loginfeature "github.com/kdawg1232/memoserver/internal/app/features/login"
	logoutfeature "github.com/kdawg1232/memoserver/internal/app/features/logout"
	memosfeature "github.com/kdawg1232/memoserver/internal/app/features/memos"
	profilefeature "github.com/kdawg1232/memoserver/internal/app/features/profile"
	signupfeature "github.com/kdawg1232/memoserver/internal/app/features/signup"
	userinfofeature "github.com/kdawg1232/memoserver/internal/app/features/userinfo"
	"github.com/kdawg1232/memoserver/internal/app/system/auth"
	"github.com/kdawg1232/memoserver/internal/app/system/streamtoken"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// Startup hooks have completed, so the Mongo client, the blob store, and
// the change feed in deps are all ready to serve.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Stream tokens are signed with the session key so a key rotation
	// invalidates both at once.
	tokens, err := streamtoken.New([]byte(appCfg.SessionKey), streamtoken.DefaultTTL)
	if err != nil {
		logger.Error("stream token issuer init failed", zap.Error(err))
		return nil, err
	}

	r := chi.NewRouter()

	// Global auth middleware: loads the SessionUser into context if the
	// request carries a valid session cookie.
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Authentication
	signupHandler := signupfeature.NewHandler(deps.MongoDatabase, sessionMgr, logger)
	r.Mount("/signup", signupfeature.Routes(signupHandler))

	loginHandler := loginfeature.NewHandler(deps.MongoDatabase, sessionMgr, logger)
	r.Mount("/login", loginfeature.Routes(loginHandler))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler))

	googleHandler := authgooglefeature.NewHandler(deps.MongoDatabase, sessionMgr, appCfg.GoogleClientID, appCfg.GoogleClientSecret, appCfg.BaseURL, logger)
	r.Mount("/auth/google", authgooglefeature.Routes(googleHandler))

	// Current user
	userinfoHandler := userinfofeature.NewHandler()
	r.Mount("/userinfo", userinfofeature.Routes(userinfoHandler))

	profileHandler := profilefeature.NewHandler(deps.MongoDatabase, logger)
	r.Mount("/profile", profilefeature.Routes(profileHandler, sessionMgr))

	// Groups: directory, invitations, membership, group-scoped memo views
	groupsHandler := groupsfeature.NewHandler(deps.MongoDatabase, logger)
	r.Mount("/groups", groupsfeature.Routes(groupsHandler, sessionMgr))

	// Memos: share, personal scope, playback, delete
	memosHandler := memosfeature.NewHandler(deps.MongoDatabase, deps.BlobStore, logger)
	r.Mount("/memos", memosfeature.Routes(memosHandler, sessionMgr))

	// Live update hints over SSE
	if deps.ChangeFeed != nil {
		eventsHandler := eventsfeature.NewHandler(deps.ChangeFeed, tokens, logger)
		r.Mount("/events", eventsfeature.Routes(eventsHandler, sessionMgr))
	}

	return r, nil
}
