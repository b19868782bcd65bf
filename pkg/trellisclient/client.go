// Package trellisclient provides the main entry point for creating Trellis
// API clients.
package trellisclient

import (
	"context"
	"fmt"
	"strings"

	"github.com/trellis-io/trellis-client/internal/client"
	"github.com/trellis-io/trellis-client/pkg/trellis"
)

// New creates a new Trellis API client. The endpoint is normalized (trailing
// slash trimmed, https assumed when no scheme is given). When the config
// carries an Identity/Password pair the client logs in before returning.
func New(ctx context.Context, config *trellis.Config) (trellis.Client, error) {
	if config == nil {
		return nil, trellis.ErrConfigRequired
	}

	if config.Endpoint == "" {
		return nil, trellis.ErrEndpointRequired
	}

	endpoint := strings.TrimSuffix(config.Endpoint, "/")
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}

	config.Endpoint = endpoint

	apiClient, err := client.New(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return apiClient, nil
}

// NewWithEndpoint creates a new client with just an API endpoint (no auth).
func NewWithEndpoint(ctx context.Context, endpoint string) (trellis.Client, error) {
	return New(ctx, &trellis.Config{
		Endpoint: endpoint,
	})
}

// NewWithTokens creates a new client seeded with an existing token pair.
func NewWithTokens(ctx context.Context, endpoint, accessToken, refreshToken string) (trellis.Client, error) {
	return New(ctx, &trellis.Config{
		Endpoint:     endpoint,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	})
}

// NewWithPassword creates a new client using identity/password
// authentication.
func NewWithPassword(ctx context.Context, endpoint, identity, password string) (trellis.Client, error) {
	return New(ctx, &trellis.Config{
		Endpoint: endpoint,
		Identity: identity,
		Password: password,
	})
}
