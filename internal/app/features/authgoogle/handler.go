// internal/app/features/authgoogle/handler.go
package authgoogle

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/kdawg1232/memoserver/internal/app/store/oauthstate"
	userstore "github.com/kdawg1232/memoserver/internal/app/store/users"
	"github.com/kdawg1232/memoserver/internal/app/system/auth"
	"github.com/kdawg1232/memoserver/internal/app/system/authutil"
	"github.com/kdawg1232/memoserver/internal/app/system/normalize"
	"github.com/kdawg1232/memoserver/internal/app/system/timeouts"
	"github.com/kdawg1232/memoserver/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// Handler handles Google OAuth authentication.
type Handler struct {
	Users      *userstore.Store
	StateStore *oauthstate.Store
	SessionMgr *auth.SessionManager
	Log        *zap.Logger

	ClientID     string
	ClientSecret string
	RedirectURL  string // e.g. "https://memoserver.app/auth/google/callback"
}

// NewHandler creates a new Google OAuth handler.
func NewHandler(db *mongo.Database, sessionMgr *auth.SessionManager, clientID, clientSecret, baseURL string, logger *zap.Logger) *Handler {
	return &Handler{
		Users:        userstore.New(db),
		StateStore:   oauthstate.New(db),
		SessionMgr:   sessionMgr,
		Log:          logger,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  baseURL + "/auth/google/callback",
	}
}

// oauth2Config returns the Google OAuth2 configuration.
func (h *Handler) oauth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     h.ClientID,
		ClientSecret: h.ClientSecret,
		RedirectURL:  h.RedirectURL,
		Scopes: []string{
			"openid",
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}
}

// IsConfigured returns true if Google OAuth is configured.
func (h *Handler) IsConfigured() bool {
	return h.ClientID != "" && h.ClientSecret != ""
}

// ServeLogin handles GET /auth/google. It stores a single-use state token
// and redirects to Google's consent screen.
func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	if !h.IsConfigured() {
		h.Log.Warn("Google OAuth not configured")
		http.Redirect(w, r, "/login?error=google_not_configured", http.StatusSeeOther)
		return
	}

	state, err := generateState()
	if err != nil {
		h.Log.Error("failed to generate OAuth state", zap.Error(err))
		http.Redirect(w, r, "/login?error=internal", http.StatusSeeOther)
		return
	}

	returnURL := r.URL.Query().Get("return")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	expiresAt := time.Now().UTC().Add(10 * time.Minute)
	if err := h.StateStore.Save(ctx, state, returnURL, expiresAt); err != nil {
		h.Log.Error("failed to save OAuth state", zap.Error(err))
		http.Redirect(w, r, "/login?error=internal", http.StatusSeeOther)
		return
	}

	url := h.oauth2Config().AuthCodeURL(state, oauth2.AccessTypeOffline)
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

// ServeCallback handles GET /auth/google/callback: validates state,
// exchanges the code, fetches the Google identity, and signs the user in.
// First-time Google users get an account provisioned with a handle derived
// from their email.
func (h *Handler) ServeCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.Log.Warn("Google OAuth error",
			zap.String("error", errParam),
			zap.String("description", r.URL.Query().Get("error_description")))
		http.Redirect(w, r, "/login?error=google_denied", http.StatusSeeOther)
		return
	}

	state := r.URL.Query().Get("state")
	if state == "" {
		h.Log.Warn("missing OAuth state parameter")
		http.Redirect(w, r, "/login?error=invalid_state", http.StatusSeeOther)
		return
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	returnURL, valid, err := h.StateStore.Validate(ctxTimeout, state)
	if err != nil {
		h.Log.Error("failed to validate OAuth state", zap.Error(err))
		http.Redirect(w, r, "/login?error=internal", http.StatusSeeOther)
		return
	}
	if !valid {
		h.Log.Warn("invalid or expired OAuth state")
		http.Redirect(w, r, "/login?error=invalid_state", http.StatusSeeOther)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		h.Log.Warn("missing OAuth code parameter")
		http.Redirect(w, r, "/login?error=invalid_code", http.StatusSeeOther)
		return
	}

	token, err := h.oauth2Config().Exchange(ctx, code)
	if err != nil {
		h.Log.Error("failed to exchange OAuth code", zap.Error(err))
		http.Redirect(w, r, "/login?error=token_exchange", http.StatusSeeOther)
		return
	}

	googleUser, err := fetchGoogleUserInfo(ctx, token)
	if err != nil {
		h.Log.Error("failed to fetch Google user info", zap.Error(err))
		http.Redirect(w, r, "/login?error=user_info", http.StatusSeeOther)
		return
	}

	u, err := h.findOrCreateUser(ctxTimeout, googleUser)
	if err != nil {
		h.Log.Error("Google sign-in failed",
			zap.Error(err),
			zap.String("google_id", googleUser.ID))
		http.Redirect(w, r, "/login?error=internal", http.StatusSeeOther)
		return
	}

	if err := h.SessionMgr.SignIn(w, r, auth.SessionUser{
		ID:         u.ID.Hex(),
		Handle:     u.Handle,
		Name:       u.DisplayName(),
		AuthMethod: u.AuthMethod,
	}); err != nil {
		h.Log.Error("Google sign-in: session save failed", zap.Error(err))
		http.Redirect(w, r, "/login?error=internal", http.StatusSeeOther)
		return
	}

	h.Log.Info("user signed in via Google",
		zap.String("user_id", u.ID.Hex()),
		zap.String("handle", u.Handle))

	if returnURL == "" || !strings.HasPrefix(returnURL, "/") {
		returnURL = "/"
	}
	http.Redirect(w, r, returnURL, http.StatusSeeOther)
}

// googleUserInfo represents user info returned from Google.
type googleUserInfo struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	Picture    string `json:"picture"`
}

// fetchGoogleUserInfo retrieves user information from Google's userinfo endpoint.
func fetchGoogleUserInfo(ctx context.Context, token *oauth2.Token) (*googleUserInfo, error) {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))

	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}
	return &info, nil
}

// findOrCreateUser resolves a Google identity to a local account, creating
// one on first sign-in. Handles are derived from the email's local part;
// collisions get a numeric suffix.
func (h *Handler) findOrCreateUser(ctx context.Context, gu *googleUserInfo) (*models.User, error) {
	u, err := h.Users.GetByGoogleSub(ctx, gu.ID)
	if err == nil {
		return u, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, err
	}

	base := handleFromEmail(gu.Email)
	for attempt := 0; attempt < 5; attempt++ {
		handle := base
		if attempt > 0 {
			handle = fmt.Sprintf("%s%d", base, attempt)
		}
		created, err := h.Users.Create(ctx, models.User{
			FirstName:  normalize.Name(gu.GivenName),
			LastName:   normalize.Name(gu.FamilyName),
			Handle:     handle,
			AuthMethod: models.AuthMethodGoogle,
			GoogleSub:  gu.ID,
		})
		if err == userstore.ErrDuplicateHandle {
			continue
		}
		if err != nil {
			return nil, err
		}
		h.Log.Info("provisioned account from Google sign-in",
			zap.String("user_id", created.ID.Hex()),
			zap.String("handle", created.Handle))
		return &created, nil
	}
	return nil, fmt.Errorf("could not find a free handle for %q", base)
}

// handleFromEmail derives a valid handle from the email local part,
// replacing disallowed characters and padding short results.
func handleFromEmail(email string) string {
	local := email
	if i := strings.IndexByte(email, '@'); i > 0 {
		local = email[:i]
	}
	local = normalize.Handle(local)

	var b strings.Builder
	for i := 0; i < len(local) && b.Len() < authutil.MaxHandleLen; i++ {
		c := local[i]
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '_' || c == '.' {
			b.WriteByte(c)
		}
	}
	handle := b.String()
	for len(handle) < authutil.MinHandleLen {
		handle += "0"
	}
	return handle
}

// generateState returns a cryptographically random URL-safe state token.
func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
