// Package http provides the HTTP transport for the Trellis API client.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/trellis-io/trellis-client/internal/constants"
	"github.com/trellis-io/trellis-client/pkg/trellis"
)

// Client is an HTTP client for the Trellis API. Every request flows through
// the interceptor chain: request interceptors run before the send, response
// interceptors run after it and before error mapping, so an interceptor that
// rewrites the response in place determines what the caller sees.
type Client struct {
	baseURL    string
	httpClient *retryablehttp.Client
	chain      *trellis.InterceptorChain
	logger     trellis.Logger
	debug      bool
	userAgent  string
}

// Option configures the client.
type Option func(*Client)

// WithLogger sets a structured logger.
func WithLogger(logger trellis.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables request/response logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithRetryConfig tunes transient-failure retries.
func WithRetryConfig(retryMax int, retryWaitMin, retryWaitMax time.Duration) Option {
	return func(c *Client) {
		c.httpClient.RetryMax = retryMax
		c.httpClient.RetryWaitMin = retryWaitMin
		c.httpClient.RetryWaitMax = retryWaitMax
	}
}

// NewClient creates a new Trellis API HTTP client.
func NewClient(baseURL string, opts ...Option) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = constants.DefaultRetryMax
	retryClient.RetryWaitMin = constants.DefaultRetryWaitMin
	retryClient.RetryWaitMax = constants.DefaultRetryWaitMax
	retryClient.HTTPClient.Timeout = constants.DefaultHTTPTimeout
	retryClient.Logger = nil
	// Surface the final response after retries are exhausted instead of the
	// default (nil, error), so persistent 5xx/429 responses still flow through
	// the interceptor chain and error mapping.
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	client := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: retryClient,
		chain:      trellis.NewInterceptorChain(),
		userAgent:  "trellis-client/1.0",
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// BaseURL returns the API base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Chain returns the interceptor chain. Callers register session or custom
// interceptors here before issuing requests.
func (c *Client) Chain() *trellis.InterceptorChain {
	return c.chain
}

// Do executes a request through the interceptor chain. For non-2xx responses
// the parsed error envelope is returned as the error alongside the response.
func (c *Client) Do(ctx context.Context, req *trellis.Request) (*trellis.Response, error) {
	if req.Headers == nil {
		req.Headers = make(http.Header)
	}

	err := c.chain.ExecuteRequestInterceptors(ctx, req)
	if err != nil {
		return nil, err
	}

	fullURL := c.baseURL + req.Path
	if len(req.Query) > 0 {
		fullURL += "?" + req.Query.Encode()
	}

	bodyBytes, err := encodeBody(req.Body)
	if err != nil {
		return nil, err
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Request", map[string]interface{}{
			"method": req.Method,
			"url":    fullURL,
		})
	}

	resp, err := c.send(ctx, req.Method, fullURL, req.Headers, bodyBytes)
	if err != nil {
		return nil, err
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Response", map[string]interface{}{
			"method":      req.Method,
			"url":         fullURL,
			"status_code": resp.StatusCode,
		})
	}

	err = c.chain.ExecuteResponseInterceptors(ctx, req, resp)
	if err != nil {
		return resp, err
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return resp, responseError(resp)
	}

	return resp, nil
}

// RawSend executes a single request against rawURL, bypassing the
// interceptor chain and error mapping. It exists for interceptors that must
// re-issue a request without re-entering themselves; the caller inspects the
// returned status code.
func (c *Client) RawSend(ctx context.Context, method, rawURL string, headers http.Header, body []byte) (*trellis.Response, error) {
	return c.send(ctx, method, rawURL, headers, body)
}

func (c *Client) send(ctx context.Context, method, fullURL string, headers http.Header, body []byte) (*trellis.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, method, fullURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, values := range headers {
		for _, value := range values {
			httpReq.Header.Add(key, value)
		}
	}

	if httpReq.Header.Get("Accept") == "" {
		httpReq.Header.Set("Accept", "application/json")
	}

	if body != nil && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	if httpReq.Header.Get("User-Agent") == "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	defer func() {
		_ = httpResp.Body.Close()
	}()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &trellis.Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       respBody,
	}, nil
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*trellis.Response, error) {
	return c.Do(ctx, &trellis.Request{
		Method: http.MethodGet,
		Path:   path,
		Query:  query,
	})
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body interface{}) (*trellis.Response, error) {
	return c.Do(ctx, &trellis.Request{
		Method: http.MethodPost,
		Path:   path,
		Body:   body,
	})
}

// Put performs a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body interface{}) (*trellis.Response, error) {
	return c.Do(ctx, &trellis.Request{
		Method: http.MethodPut,
		Path:   path,
		Body:   body,
	})
}

// Patch performs a PATCH request with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body interface{}) (*trellis.Response, error) {
	return c.Do(ctx, &trellis.Request{
		Method: http.MethodPatch,
		Path:   path,
		Body:   body,
	})
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*trellis.Response, error) {
	return c.Do(ctx, &trellis.Request{
		Method: http.MethodDelete,
		Path:   path,
	})
}

// encodeBody converts a request body to wire bytes. Byte slices and strings
// pass through untouched; anything else is JSON encoded.
func encodeBody(body interface{}) ([]byte, error) {
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
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}

		return data, nil
	}
}

// responseError maps a non-2xx response to a ResponseError. Bodies that are
// not the standard error envelope still produce an error carrying the status.
func responseError(resp *trellis.Response) error {
	respErr, err := trellis.ParseResponseError(resp.Body)
	if err != nil || len(respErr.Errors) == 0 {
		return &trellis.ResponseError{StatusCode: resp.StatusCode}
	}

	respErr.StatusCode = resp.StatusCode

	return respErr
}
