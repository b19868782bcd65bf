package auth

import (
	"context"

	"github.com/trellis-io/trellis-client/pkg/trellis"
)

// WithRetry runs an operation and, if it fails with an authentication error
// while a refresh token is held, refreshes the session and runs it once
// more. This is the manual fallback for callers composing multi-step flows
// outside the transparent replay path.
func (g *SessionGuard) WithRetry(ctx context.Context, operation func(ctx context.Context) error) error {
	err := operation(ctx)
	if err == nil || !trellis.IsUnauthorized(err) {
		return err
	}

	g.mu.Lock()
	hasRefresh := g.refresh != ""
	g.mu.Unlock()

	if !hasRefresh {
		return err
	}

	refreshErr := g.Refresh(ctx)
	if refreshErr != nil {
		return err
	}

	return operation(ctx)
}
