package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/trellis-io/trellis-client/internal/auth"
	"github.com/trellis-io/trellis-client/internal/constants"
	"github.com/trellis-io/trellis-client/internal/http"
	"github.com/trellis-io/trellis-client/pkg/trellis"
)

// AuthService implements trellis.AuthClient over the auth endpoints and the
// session guard.
type AuthService struct {
	httpClient *http.Client
	guard      *auth.SessionGuard
}

// NewAuthClient creates the auth service.
func NewAuthClient(httpClient *http.Client, guard *auth.SessionGuard) *AuthService {
	return &AuthService{
		httpClient: httpClient,
		guard:      guard,
	}
}

// authResponse is the envelope returned by login and signup.
type authResponse struct {
	User  trellis.AuthUser `json:"user"`
	Token auth.Token       `json:"token"`
}

// Login implements trellis.AuthClient.Login. On success the session guard
// holds the issued token pair.
func (s *AuthService) Login(ctx context.Context, identity, password string) (*trellis.AuthUser, error) {
	return s.authenticate(ctx, constants.APIPathAuthLogin, identity, password)
}

// Signup implements trellis.AuthClient.Signup. The server issues a token
// pair for the new account, so signup doubles as login.
func (s *AuthService) Signup(ctx context.Context, identity, password string) (*trellis.AuthUser, error) {
	return s.authenticate(ctx, constants.APIPathAuthSignup, identity, password)
}

func (s *AuthService) authenticate(ctx context.Context, path, identity, password string) (*trellis.AuthUser, error) {
	if identity == "" {
		return nil, trellis.ErrIdentityRequired
	}

	if password == "" {
		return nil, trellis.ErrPasswordRequired
	}

	resp, err := s.httpClient.Post(ctx, path, map[string]string{
		"identity": identity,
		"password": password,
	})
	if err != nil {
		return nil, fmt.Errorf("authenticating: %w", err)
	}

	var result authResponse

	err = json.Unmarshal(resp.Body, &result)
	if err != nil {
		return nil, fmt.Errorf("parsing auth response: %w", err)
	}

	s.guard.SetTokens(result.Token.AccessToken, result.Token.RefreshToken)

	return &result.User, nil
}

// Logout implements trellis.AuthClient.Logout. The server-side revocation is
// best effort; the local session is always cleared.
func (s *AuthService) Logout(ctx context.Context) error {
	_, _ = s.httpClient.Post(ctx, constants.APIPathAuthLogout, nil)

	s.guard.ClearTokens()

	return nil
}

// Me implements trellis.AuthClient.Me.
func (s *AuthService) Me(ctx context.Context) (*trellis.AuthUser, error) {
	resp, err := s.httpClient.Get(ctx, constants.APIPathAuthMe, nil)
	if err != nil {
		return nil, fmt.Errorf("getting current identity: %w", err)
	}

	var user trellis.AuthUser

	err = json.Unmarshal(resp.Body, &user)
	if err != nil {
		return nil, fmt.Errorf("parsing identity response: %w", err)
	}

	return &user, nil
}

// Refresh implements trellis.AuthClient.Refresh.
func (s *AuthService) Refresh(ctx context.Context) error {
	return s.guard.Refresh(ctx)
}

// SetTokens implements trellis.AuthClient.SetTokens.
func (s *AuthService) SetTokens(access, refresh string) {
	s.guard.SetTokens(access, refresh)
}

// ClearTokens implements trellis.AuthClient.ClearTokens.
func (s *AuthService) ClearTokens() {
	s.guard.ClearTokens()
}

// Tokens implements trellis.AuthClient.Tokens.
func (s *AuthService) Tokens() (string, string) {
	return s.guard.Tokens()
}

// WithRetry implements trellis.AuthClient.WithRetry.
func (s *AuthService) WithRetry(ctx context.Context, operation func(ctx context.Context) error) error {
	return s.guard.WithRetry(ctx, operation)
}
