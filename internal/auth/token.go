// Package auth manages Trellis API sessions: token storage, refresh, and
// transparent recovery from expired-session responses.
package auth

import (
	"time"

	"github.com/trellis-io/trellis-client/internal/constants"
)

// Token is a token pair issued by the Trellis auth endpoints.
type Token struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenType    string    `json:"token_type,omitempty"`
	ExpiresIn    int64     `json:"expires_in,omitempty"`
	ExpiresAt    time.Time `json:"-"`
}

// Expired reports whether the token is past (or within the safety buffer of)
// its expiry. Tokens without a known expiry are never considered expired
// locally; the server remains the authority.
func (t *Token) Expired() bool {
	if t.ExpiresAt.IsZero() {
		return false
	}

	return time.Now().Add(constants.TokenExpirationBuffer).After(t.ExpiresAt)
}

// normalize fills ExpiresAt from ExpiresIn. Servers that omit expires_in get
// the default access token validity, so Expired still has something to work
// with.
func (t *Token) normalize() {
	if !t.ExpiresAt.IsZero() {
		return
	}

	validity := constants.DefaultAccessTokenValidity
	if t.ExpiresIn > 0 {
		validity = time.Duration(t.ExpiresIn) * time.Second
	}

	t.ExpiresAt = time.Now().Add(validity)
}
