// internal/app/system/auth/auth.go
package auth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

// Session value keys.
const (
	isAuthKey    = "is_authenticated"
	userIDKey    = "user_id"
	userHandle   = "user_handle"
	userNameKey  = "user_name"
	authMethod   = "auth_method"
	signedInAtTS = "signed_in_at"
)

// SessionUser is what we cache in the session and inject into r.Context().
// It is the Identity Context of the application: every handler resolves the
// acting user from here and nowhere else.
type SessionUser struct {
	ID         string
	Handle     string
	Name       string
	AuthMethod string
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the signed-in user and a "found?" flag.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok
}

// SessionManager owns the cookie store and the middleware around it.
// It is constructed once in bootstrap and injected into every feature,
// so tests can build their own against a throwaway key.
type SessionManager struct {
	store  *sessions.CookieStore
	name   string
	maxAge time.Duration
	log    *zap.Logger
}

// NewSessionManager builds a SessionManager from the configured session key.
// The secure flag controls Secure cookies and the SameSite mode: production
// uses Secure + SameSite=None (the mobile app talks cross-origin), local dev
// over plain http uses Lax.
func NewSessionManager(sessionKey, cookieName, domain string, maxAge time.Duration, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, fmt.Errorf("session key is empty; provide >=32 random chars")
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	opts := &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		Secure:   secure,
		HttpOnly: true,
	}
	if secure {
		opts.SameSite = http.SameSiteNoneMode
	} else {
		opts.SameSite = http.SameSiteLaxMode
	}
	store.Options = opts

	logger.Info("session store initialized",
		zap.Bool("secure", secure),
		zap.String("domain", domain))

	return &SessionManager{store: store, name: cookieName, maxAge: maxAge, log: logger}, nil
}

// SignIn writes a fresh authenticated session for the user.
func (sm *SessionManager) SignIn(w http.ResponseWriter, r *http.Request, u SessionUser) error {
	sess, _ := sm.store.Get(r, sm.name)
	sess.Values[isAuthKey] = true
	sess.Values[userIDKey] = u.ID
	sess.Values[userHandle] = u.Handle
	sess.Values[userNameKey] = u.Name
	sess.Values[authMethod] = u.AuthMethod
	sess.Values[signedInAtTS] = time.Now().UTC().Unix()
	return sess.Save(r, w)
}

// SignOut clears the session cookie. The Identity Context change signal is
// the cookie itself going away; the next request carries no user.
func (sm *SessionManager) SignOut(w http.ResponseWriter, r *http.Request) error {
	sess, _ := sm.store.Get(r, sm.name)
	sess.Values = map[interface{}]interface{}{}
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

// LoadSessionUser injects the user into context if they are signed in.
// It never rejects a request; handlers that need identity use RequireSignedIn.
func (sm *SessionManager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, _ := sm.store.Get(r, sm.name)
		if isAuth, _ := sess.Values[isAuthKey].(bool); isAuth {
			u := &SessionUser{
				ID:         getString(sess, userIDKey),
				Handle:     getString(sess, userHandle),
				Name:       getString(sess, userNameKey),
				AuthMethod: getString(sess, authMethod),
			}
			if u.ID != "" {
				r = withUser(r, u)
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSignedIn ensures there is a user in context (set by LoadSessionUser).
// API callers get a plain 401 JSON body; there are no HTML redirects here.
func (sm *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); ok {
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"unauthenticated"}`))
	})
}

// WithTestUser injects a user into the request context, bypassing the
// session store. For handler tests only.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

func getString(s *sessions.Session, key string) string {
	if v, ok := s.Values[key].(string); ok {
		return v
	}
	return ""
}
