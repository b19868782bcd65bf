package trellis

import (
	"context"
	"time"
)

// RecordsClient provides access to records within collections.
type RecordsClient interface {
	List(ctx context.Context, collection string, params *QueryParams) (*RecordList, error)
	Get(ctx context.Context, collection, recordID string) (*Record, error)
	Create(ctx context.Context, collection string, fields map[string]interface{}) (*Record, error)
	Update(ctx context.Context, collection, recordID string, fields map[string]interface{}) (*Record, error)
	Delete(ctx context.Context, collection, recordID string) error
}

// CollectionsClient provides access to collection metadata.
type CollectionsClient interface {
	List(ctx context.Context, params *QueryParams) (*CollectionList, error)
	Get(ctx context.Context, name string) (*Collection, error)
}

// AuthClient provides access to the auth endpoints and the local session.
type AuthClient interface {
	Login(ctx context.Context, identity, password string) (*AuthUser, error)
	Signup(ctx context.Context, identity, password string) (*AuthUser, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*AuthUser, error)
	Refresh(ctx context.Context) error
	SetTokens(access, refresh string)
	ClearTokens()
	Tokens() (access, refresh string)
	WithRetry(ctx context.Context, operation func(ctx context.Context) error) error
}

// Client is the full Trellis API surface.
type Client interface {
	Records() RecordsClient
	Collections() CollectionsClient
	Auth() AuthClient
	Health(ctx context.Context) (*HealthStatus, error)
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config represents client configuration for building a trellis.Client.
//
// Provide either an Identity/Password pair (the facade logs in during
// construction) or an AccessToken/RefreshToken pair obtained elsewhere.
// With only an AccessToken and no RefreshToken, expired sessions are not
// recoverable and 401s surface to the caller unchanged.
type Config struct {
	// Endpoint is the base URL of the Trellis API, e.g.
	// "https://api.example.com". The facade trims a trailing slash and
	// defaults to https when no scheme is given.
	Endpoint string

	// Identity and Password authenticate via /api/v1/auth/login at
	// construction time.
	Identity string
	Password string

	// AccessToken and RefreshToken seed the session directly.
	AccessToken  string
	RefreshToken string

	// RetryMax, RetryWaitMin, and RetryWaitMax tune transient-failure
	// retries in the transport. Zero values select defaults.
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration

	// Debug enables verbose request/response logging when Logger is set.
	Debug bool

	// Logger is an optional structured logger used by the transport.
	Logger Logger

	// UserAgent overrides the default User-Agent header.
	UserAgent string

	// OnRefresh is invoked once per successful token refresh.
	OnRefresh func()

	// OnRefreshFailure is invoked once per failed token refresh, with the
	// refresh error. The session keeps its previous tokens.
	OnRefreshFailure func(error)

	// Cache configures read-through caching of record GETs. Nil disables
	// caching.
	Cache *CacheConfig
}
