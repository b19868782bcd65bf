// Package client implements the trellis.Client interface, wiring transport,
// session management, caching, and the per-resource services.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/trellis-io/trellis-client/internal/auth"
	"github.com/trellis-io/trellis-client/internal/constants"
	"github.com/trellis-io/trellis-client/internal/http"
	"github.com/trellis-io/trellis-client/pkg/trellis"
)

// Client implements the trellis.Client interface.
type Client struct {
	httpClient *http.Client
	guard      *auth.SessionGuard
	baseURL    string
	logger     trellis.Logger

	records     trellis.RecordsClient
	collections trellis.CollectionsClient
	authClient  trellis.AuthClient
}

// createHTTPClientOptions builds HTTP client options from config.
func createHTTPClientOptions(config *trellis.Config) []http.Option {
	var httpOpts []http.Option

	if config.Logger != nil {
		httpOpts = append(httpOpts, http.WithLogger(&loggerAdapter{logger: config.Logger}))
	}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(config.UserAgent))
	}

	if config.RetryMax > 0 {
		retryWaitMin := 1 * time.Second
		retryWaitMax := constants.DefaultRetryWaitMax

		if config.RetryWaitMin > 0 {
			retryWaitMin = config.RetryWaitMin
		}

		if config.RetryWaitMax > 0 {
			retryWaitMax = config.RetryWaitMax
		}

		httpOpts = append(httpOpts, http.WithRetryConfig(config.RetryMax, retryWaitMin, retryWaitMax))
	}

	return httpOpts
}

// New creates a new Trellis API client. When the config carries an
// Identity/Password pair the client logs in before returning, so a non-error
// result is ready to use.
func New(ctx context.Context, config *trellis.Config) (*Client, error) {
	if config == nil {
		return nil, trellis.ErrConfigRequired
	}

	if config.Endpoint == "" {
		return nil, trellis.ErrEndpointRequired
	}

	httpClient := http.NewClient(config.Endpoint, createHTTPClientOptions(config)...)

	provider := auth.NewAPIProvider(httpClient)
	guard := auth.NewSessionGuard(auth.GuardOptions{
		Provider:         provider,
		Transport:        httpClient,
		RefreshPath:      provider.Path(),
		OnRefresh:        config.OnRefresh,
		OnRefreshFailure: config.OnRefreshFailure,
	})

	chain := httpClient.Chain()
	chain.AddRequestInterceptor(guard.RequestInterceptor())
	chain.AddResponseInterceptor(guard.ResponseInterceptor())

	if config.AccessToken != "" || config.RefreshToken != "" {
		guard.SetTokens(config.AccessToken, config.RefreshToken)
	}

	var cacheManager *trellis.CacheManager

	if config.Cache != nil {
		cache, err := trellis.NewCacheFromConfig(config.Cache)
		if err != nil {
			return nil, fmt.Errorf("creating cache: %w", err)
		}

		cacheManager = trellis.NewCacheManager(cache, nil)
	}

	client := &Client{
		httpClient: httpClient,
		guard:      guard,
		baseURL:    httpClient.BaseURL(),
		logger:     config.Logger,
	}

	client.records = NewRecordsClient(httpClient, cacheManager)
	client.collections = NewCollectionsClient(httpClient, cacheManager)
	client.authClient = NewAuthClient(httpClient, guard)

	if config.Identity != "" && config.Password != "" {
		_, err := client.authClient.Login(ctx, config.Identity, config.Password)
		if err != nil {
			return nil, fmt.Errorf("login failed: %w", err)
		}
	}

	return client, nil
}

// Records implements trellis.Client.Records.
func (c *Client) Records() trellis.RecordsClient {
	return c.records
}

// Collections implements trellis.Client.Collections.
func (c *Client) Collections() trellis.CollectionsClient {
	return c.collections
}

// Auth implements trellis.Client.Auth.
func (c *Client) Auth() trellis.AuthClient {
	return c.authClient
}

// Health implements trellis.Client.Health.
func (c *Client) Health(ctx context.Context) (*trellis.HealthStatus, error) {
	resp, err := c.httpClient.Get(ctx, constants.APIPathHealth, nil)
	if err != nil {
		return nil, fmt.Errorf("getting health: %w", err)
	}

	var status trellis.HealthStatus

	err = json.Unmarshal(resp.Body, &status)
	if err != nil {
		return nil, fmt.Errorf("parsing health response: %w", err)
	}

	return &status, nil
}

// Guard returns the session guard backing this client.
func (c *Client) Guard() *auth.SessionGuard {
	return c.guard
}

// loggerAdapter adapts trellis.Logger to the transport's logger.
type loggerAdapter struct {
	logger trellis.Logger
}

func (l *loggerAdapter) Debug(msg string, fields map[string]interface{}) {
	l.logger.Debug(msg, fields)
}

func (l *loggerAdapter) Info(msg string, fields map[string]interface{}) {
	l.logger.Info(msg, fields)
}

func (l *loggerAdapter) Warn(msg string, fields map[string]interface{}) {
	l.logger.Warn(msg, fields)
}

func (l *loggerAdapter) Error(msg string, fields map[string]interface{}) {
	l.logger.Error(msg, fields)
}
