// Package streamtoken issues short-lived signed tokens for the event-stream
// endpoint. EventSource clients cannot set headers, so the stream URL
// carries a token proving the session instead of relying on cookies alone.
package streamtoken

import (
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/kdawg1232/memoserver/internal/app/system/faults"
)

const tokenName = "stream_token"

// DefaultTTL is how long an issued token stays valid. Streams re-request a
// token on reconnect, so this only needs to cover the connection handshake.
const DefaultTTL = 5 * time.Minute

// Issuer signs and verifies stream tokens.
type Issuer struct {
	sc *securecookie.SecureCookie
}

// New creates an Issuer with the given HMAC key and token lifetime. The key
// should be the application's session key; tokens are signed, not encrypted,
// since they carry only an opaque user ID.
func New(hashKey []byte, ttl time.Duration) (*Issuer, error) {
	if len(hashKey) == 0 {
		return nil, errors.New("streamtoken: hash key is required")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	sc := securecookie.New(hashKey, nil)
	sc.MaxAge(int(ttl.Seconds()))
	return &Issuer{sc: sc}, nil
}

// Issue signs a token for the given user.
func (i *Issuer) Issue(userID string) (string, error) {
	tok, err := i.sc.Encode(tokenName, userID)
	if err != nil {
		return "", fmt.Errorf("streamtoken: encode: %w", err)
	}
	return tok, nil
}

// Verify checks a token and returns the user ID it was issued for. Expired
// or tampered tokens map to the unauthenticated error class.
func (i *Issuer) Verify(token string) (string, error) {
	var userID string
	if err := i.sc.Decode(tokenName, token, &userID); err != nil {
		return "", fmt.Errorf("invalid stream token: %w", faults.ErrUnauthenticated)
	}
	return userID, nil
}
