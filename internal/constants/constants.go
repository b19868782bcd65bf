package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// ShortHTTPTimeout is used for quick operations like health checks.
	ShortHTTPTimeout = 10 * time.Second
)

// Retry limits.
const (
	// DefaultRetryMax is the default maximum number of retries.
	DefaultRetryMax = 3

	// DefaultRetryWaitMin is the minimum wait time between retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum wait time between retries.
	DefaultRetryWaitMax = 10 * time.Second
)

// Token lifetimes.
const (
	// TokenExpirationBuffer is the buffer time before token expiration.
	// A token within this buffer of its expiry is treated as expired.
	TokenExpirationBuffer = 30 * time.Second

	// DefaultAccessTokenValidity is the fallback access token validity
	// used when the server omits expires_in.
	DefaultAccessTokenValidity = 15 * time.Minute
)

// Pagination limits.
const (
	// DefaultPageSize is the default number of items per page.
	DefaultPageSize = 50

	// LargePageSize is used for efficient bulk operations.
	LargePageSize = 100

	// MaxPages bounds pagination loops.
	MaxPages = 50
)

// Cache sizes and lifetimes.
const (
	// DefaultCacheSize is the default cache size limit.
	DefaultCacheSize = 1000

	// DefaultCacheTTL is the default cache time-to-live.
	DefaultCacheTTL = 5 * time.Minute

	// RecordsCacheTTL is the TTL for cached record reads.
	RecordsCacheTTL = 2 * time.Minute

	// CollectionsCacheTTL is the TTL for cached collection metadata.
	CollectionsCacheTTL = 10 * time.Minute
)

// API path constants.
const (
	// APIPathAuthLogin is the login endpoint.
	APIPathAuthLogin = "/api/v1/auth/login"

	// APIPathAuthRefresh is the token refresh endpoint.
	APIPathAuthRefresh = "/api/v1/auth/refresh"

	// APIPathAuthSignup is the signup endpoint.
	APIPathAuthSignup = "/api/v1/auth/signup"

	// APIPathAuthMe is the current-identity endpoint.
	APIPathAuthMe = "/api/v1/auth/me"

	// APIPathAuthLogout is the logout endpoint.
	APIPathAuthLogout = "/api/v1/auth/logout"

	// APIPathCollections is the collections endpoint.
	APIPathCollections = "/api/v1/collections"

	// APIPathHealth is the health endpoint.
	APIPathHealth = "/api/v1/health"
)

// Output format constants.
const (
	// FormatJSON for JSON output format.
	FormatJSON = "json"

	// FormatYAML for YAML output format.
	FormatYAML = "yaml"

	// FormatTable for tabular output format.
	FormatTable = "table"
)

// UI and display constants.
const (
	// NotAvailable is used when information is not available.
	NotAvailable = "N/A"

	// MaskedSecret is used to hide sensitive information.
	MaskedSecret = "***"

	// KeyValueSplitParts is the number of parts when splitting key=value
	// strings.
	KeyValueSplitParts = 2
)
