package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/trellis-io/trellis-client/internal/constants"
	"github.com/trellis-io/trellis-client/pkg/trellis"
)

// Transport is the subset of the HTTP client the session layer needs.
// Do runs the full interceptor chain; RawSend bypasses it, which the guard
// uses to replay a request without re-entering itself.
type Transport interface {
	Do(ctx context.Context, req *trellis.Request) (*trellis.Response, error)
	RawSend(ctx context.Context, method, rawURL string, headers http.Header, body []byte) (*trellis.Response, error)
	BaseURL() string
}

// Provider exchanges a refresh token for a new token pair.
type Provider interface {
	Refresh(ctx context.Context, refreshToken string) (*Token, error)
}

// APIProvider refreshes sessions against the Trellis auth endpoint. The
// request goes through the intercepted transport; the session guard skips
// its own 401 handling for the refresh path, so a rejected refresh cannot
// recurse.
type APIProvider struct {
	transport Transport
	path      string
}

// NewAPIProvider creates a provider bound to the standard refresh endpoint.
func NewAPIProvider(transport Transport) *APIProvider {
	return &APIProvider{
		transport: transport,
		path:      constants.APIPathAuthRefresh,
	}
}

// Path returns the refresh endpoint path.
func (p *APIProvider) Path() string {
	return p.path
}

// Refresh exchanges the refresh token for a new token pair.
func (p *APIProvider) Refresh(ctx context.Context, refreshToken string) (*Token, error) {
	if refreshToken == "" {
		return nil, trellis.ErrNoRefreshToken
	}

	resp, err := p.transport.Do(ctx, &trellis.Request{
		Method: http.MethodPost,
		Path:   p.path,
		Body:   map[string]string{"refresh_token": refreshToken},
	})
	if err != nil {
		return nil, fmt.Errorf("token refresh failed: %w", err)
	}

	var token Token

	err = json.Unmarshal(resp.Body, &token)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token response: %w", err)
	}

	if token.AccessToken == "" {
		return nil, fmt.Errorf("token refresh failed: %w", trellis.ErrNotAuthenticated)
	}

	token.normalize()

	return &token, nil
}
