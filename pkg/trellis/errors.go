package trellis

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// APIError represents a single error returned by the Trellis API.
type APIError struct {
	Code   int    `json:"code"   yaml:"code"`
	Title  string `json:"title"  yaml:"title"`
	Detail string `json:"detail" yaml:"detail"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s (code: %d)", e.Title, e.Detail, e.Code)
}

// ResponseError represents the error envelope returned by the API on non-2xx
// responses. StatusCode carries the HTTP status of the failing response; it
// is filled in by the transport layer, not the wire format.
type ResponseError struct {
	Errors     []APIError `json:"errors"`
	StatusCode int        `json:"-"`
}

// Error implements the error interface for ResponseError.
func (e *ResponseError) Error() string {
	if len(e.Errors) == 0 {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}

	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}

	return fmt.Sprintf("multiple errors: %v", e.Errors)
}

// FirstError returns the first error or nil.
func (e *ResponseError) FirstError() *APIError {
	if len(e.Errors) > 0 {
		return &e.Errors[0]
	}

	return nil
}

// Common error codes.
const (
	ErrorCodeNotAuthenticated    = 40100
	ErrorCodeNotAuthorized       = 40300
	ErrorCodeNotFound            = 40400
	ErrorCodeUnprocessableEntity = 42200
)

// Common static errors that can be wrapped with context.
var (
	ErrConfigRequired      = errors.New("config is required")
	ErrEndpointRequired    = errors.New("API endpoint is required")
	ErrNoHostInURL         = errors.New("no host specified in URL")
	ErrNotAuthenticated    = errors.New("not authenticated")
	ErrNoRefreshToken      = errors.New("no refresh token held")
	ErrCollectionRequired  = errors.New("collection name is required")
	ErrRecordIDRequired    = errors.New("record ID is required")
	ErrNoMoreItems         = errors.New("no more items")
	ErrCacheDisabled       = errors.New("cache disabled")
	ErrCacheKeyNotFound    = errors.New("key not found")
	ErrCacheEntryExpired   = errors.New("entry expired")
	ErrUnsupportedCache    = errors.New("unsupported cache type")
	ErrNATSConfigRequired  = errors.New("NATS configuration required for NATS cache")
	ErrUnknownConfigKey    = errors.New("unknown configuration key")
	ErrIdentityRequired    = errors.New("identity is required")
	ErrPasswordRequired    = errors.New("password is required")
)

// statusOf extracts the HTTP status carried by an API error chain, or 0.
func statusOf(err error) int {
	respErr := &ResponseError{}
	if errors.As(err, &respErr) {
		return respErr.StatusCode
	}

	return 0
}

// IsUnauthorized checks whether the error is an authentication failure.
func IsUnauthorized(err error) bool {
	if statusOf(err) == http.StatusUnauthorized {
		return true
	}

	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.Code == ErrorCodeNotAuthenticated
	}

	return false
}

// IsForbidden checks whether the error is an authorization failure.
func IsForbidden(err error) bool {
	if statusOf(err) == http.StatusForbidden {
		return true
	}

	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.Code == ErrorCodeNotAuthorized
	}

	return false
}

// IsNotFound checks whether the error is a missing-resource failure.
func IsNotFound(err error) bool {
	if statusOf(err) == http.StatusNotFound {
		return true
	}

	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.Code == ErrorCodeNotFound
	}

	return false
}

// ParseResponseError parses an error envelope from a JSON body.
func ParseResponseError(data []byte) (*ResponseError, error) {
	var errResp ResponseError

	err := json.Unmarshal(data, &errResp)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal response error: %w", err)
	}

	return &errResp, nil
}
