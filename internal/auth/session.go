package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/trellis-io/trellis-client/pkg/trellis"
)

// refreshCall is one in-flight refresh attempt. Waiters block on done and
// read err afterwards; err is written exactly once before done is closed.
type refreshCall struct {
	done chan struct{}
	err  error
}

// SessionGuard holds the session's token pair and recovers from expired
// sessions. Registered on a transport's interceptor chain, it attaches the
// access token to every outgoing request and, on a 401 response, refreshes
// the session once and replays the failed request with the new token. The
// replayed response replaces the 401 in place, so callers never observe the
// recovery.
//
// Concurrent 401s share a single refresh: the first caller performs the
// exchange while the rest wait for its outcome. A failed refresh leaves the
// stored pair untouched and lets the original 401 stand.
type SessionGuard struct {
	provider         Provider
	transport        Transport
	refreshPath      string
	onRefresh        func()
	onRefreshFailure func(error)

	mu        sync.Mutex
	access    string
	refresh   string
	expiresAt time.Time
	pending   *refreshCall
}

// GuardOptions configures a SessionGuard.
type GuardOptions struct {
	// Provider performs the token exchange.
	Provider Provider

	// Transport sends replayed requests. Its BaseURL anchors replay URLs.
	Transport Transport

	// RefreshPath is the request path of the refresh endpoint. Responses to
	// this path are never recovered, breaking the refresh-of-refresh loop.
	RefreshPath string

	// OnRefresh is invoked once per successful refresh.
	OnRefresh func()

	// OnRefreshFailure is invoked once per failed refresh.
	OnRefreshFailure func(error)
}

// NewSessionGuard creates a guard with no tokens held.
func NewSessionGuard(opts GuardOptions) *SessionGuard {
	return &SessionGuard{
		provider:         opts.Provider,
		transport:        opts.Transport,
		refreshPath:      opts.RefreshPath,
		onRefresh:        opts.OnRefresh,
		onRefreshFailure: opts.OnRefreshFailure,
	}
}

// SetTokens replaces the stored token pair. Externally supplied tokens have
// no known expiry, so the guard relies on the 401 path until the next refresh.
func (g *SessionGuard) SetTokens(access, refresh string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.access = access
	g.refresh = refresh
	g.expiresAt = time.Time{}
}

// ClearTokens drops the stored token pair.
func (g *SessionGuard) ClearTokens() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.access = ""
	g.refresh = ""
	g.expiresAt = time.Time{}
}

// Tokens returns the current token pair.
func (g *SessionGuard) Tokens() (string, string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.access, g.refresh
}

// AccessToken returns the current access token.
func (g *SessionGuard) AccessToken() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.access
}

// RequestInterceptor returns the hook that attaches the access token to
// outgoing requests. A token known to be expired is refreshed before the
// request goes out; requests keep flowing untouched when no token is held.
func (g *SessionGuard) RequestInterceptor() trellis.RequestInterceptor {
	return func(ctx context.Context, req *trellis.Request) error {
		// The refresh exchange itself must never wait on its own outcome.
		// A failed attempt is ignored here; the 401 path covers it.
		if req.Path != g.refreshPath && g.needsRefresh() {
			_ = g.Refresh(ctx)
		}

		access := g.AccessToken()
		if access == "" {
			return nil
		}

		if req.Headers == nil {
			req.Headers = make(http.Header)
		}

		req.Headers.Set("Authorization", "Bearer "+access)

		return nil
	}
}

// ResponseInterceptor returns the hook that recovers from 401 responses.
// When refresh and replay both succeed, the replayed response overwrites the
// 401 in place. Any failure along the way leaves the original 401 for the
// caller.
func (g *SessionGuard) ResponseInterceptor() trellis.ResponseInterceptor {
	return func(ctx context.Context, req *trellis.Request, resp *trellis.Response) error {
		if resp.StatusCode != http.StatusUnauthorized {
			return nil
		}

		// A rejected refresh request must surface as-is.
		if req.Path == g.refreshPath {
			return nil
		}

		g.mu.Lock()
		hasRefresh := g.refresh != ""
		g.mu.Unlock()

		if !hasRefresh {
			return nil
		}

		err := g.Refresh(ctx)
		if err != nil {
			return nil
		}

		replayed, err := g.replay(ctx, req)
		if err != nil {
			return nil
		}

		*resp = *replayed

		return nil
	}
}

// Refresh exchanges the refresh token for a new pair. At most one exchange
// is in flight at a time: callers arriving during an attempt wait for its
// outcome instead of starting their own. On success the stored pair is
// updated, keeping the previous refresh token when the server does not
// rotate it. On failure the stored pair is untouched.
func (g *SessionGuard) Refresh(ctx context.Context) error {
	g.mu.Lock()

	if g.pending != nil {
		call := g.pending
		g.mu.Unlock()

		select {
		case <-call.done:
			return call.err
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	refreshToken := g.refresh
	if refreshToken == "" {
		g.mu.Unlock()

		return trellis.ErrNoRefreshToken
	}

	call := &refreshCall{done: make(chan struct{})}
	g.pending = call
	g.mu.Unlock()

	token, err := g.provider.Refresh(ctx, refreshToken)

	g.mu.Lock()

	if err == nil {
		g.access = token.AccessToken
		g.expiresAt = token.ExpiresAt

		if token.RefreshToken != "" {
			g.refresh = token.RefreshToken
		}
	}

	g.pending = nil
	g.mu.Unlock()

	call.err = err
	close(call.done)

	if err != nil {
		if g.onRefreshFailure != nil {
			g.onRefreshFailure(err)
		}

		return err
	}

	if g.onRefresh != nil {
		g.onRefresh()
	}

	return nil
}

// needsRefresh reports whether the stored access token is past its known
// expiry and a refresh token is held to renew it.
func (g *SessionGuard) needsRefresh() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.refresh == "" {
		return false
	}

	token := Token{ExpiresAt: g.expiresAt}

	return token.Expired()
}

// replay re-sends the failed request with the freshly refreshed token,
// bypassing the interceptor chain so the guard does not re-enter itself.
func (g *SessionGuard) replay(ctx context.Context, req *trellis.Request) (*trellis.Response, error) {
	clone := req.Clone()
	clone.Headers.Set("Authorization", "Bearer "+g.AccessToken())

	body, err := replayBody(clone.Body)
	if err != nil {
		return nil, err
	}

	fullURL := g.transport.BaseURL() + clone.Path
	if len(clone.Query) > 0 {
		fullURL += "?" + clone.Query.Encode()
	}

	resp, err := g.transport.RawSend(ctx, clone.Method, fullURL, clone.Headers, body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, trellis.ErrNotAuthenticated
	}

	return resp, nil
}

// replayBody converts a request body back to wire bytes, mirroring the
// transport's encoding.
func replayBody(body interface{}) ([]byte, error) {
	switch value := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return value, nil
	case string:
		return []byte(value), nil
	default:
		data, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal replay body: %w", err)
		}

		return data, nil
	}
}
