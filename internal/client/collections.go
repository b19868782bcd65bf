package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/trellis-io/trellis-client/internal/constants"
	"github.com/trellis-io/trellis-client/internal/http"
	"github.com/trellis-io/trellis-client/pkg/trellis"
)

// CollectionsClient implements trellis.CollectionsClient. Collection reads
// go through the cache manager when one is configured; schemas change rarely,
// so cached entries live longer than record entries.
type CollectionsClient struct {
	httpClient *http.Client
	cache      *trellis.CacheManager
}

// NewCollectionsClient creates a collections service. A nil cache disables
// caching.
func NewCollectionsClient(httpClient *http.Client, cache *trellis.CacheManager) *CollectionsClient {
	return &CollectionsClient{
		httpClient: httpClient,
		cache:      cache,
	}
}

// List implements trellis.CollectionsClient.List.
func (c *CollectionsClient) List(ctx context.Context, params *trellis.QueryParams) (*trellis.CollectionList, error) {
	return c.ListWithPath(ctx, constants.APIPathCollections, params)
}

// ListWithPath lists collections from an explicit path, satisfying the
// pagination helpers' client interface.
func (c *CollectionsClient) ListWithPath(ctx context.Context, path string, params *trellis.QueryParams) (*trellis.ListResponse[trellis.Collection], error) {
	var query url.Values
	if params != nil {
		query = params.ToValues()
	}

	resp, err := c.httpClient.Get(ctx, path, query)
	if err != nil {
		return nil, fmt.Errorf("listing collections: %w", err)
	}

	var list trellis.CollectionList

	err = json.Unmarshal(resp.Body, &list)
	if err != nil {
		return nil, fmt.Errorf("parsing collections list: %w", err)
	}

	return &list, nil
}

// Get implements trellis.CollectionsClient.Get.
func (c *CollectionsClient) Get(ctx context.Context, name string) (*trellis.Collection, error) {
	if name == "" {
		return nil, trellis.ErrCollectionRequired
	}

	path := constants.APIPathCollections + "/" + url.PathEscape(name)

	if c.cache != nil {
		key := c.cache.GetCacheKey("GET", path, nil)

		data, err := c.cache.Get(ctx, key)
		if err == nil {
			return parseCollection(data)
		}
	}

	resp, err := c.httpClient.Get(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("getting collection: %w", err)
	}

	if c.cache != nil && c.cache.Policy().ShouldCache("GET", path, resp.StatusCode) {
		key := c.cache.GetCacheKey("GET", path, nil)
		_ = c.cache.SetWithETag(ctx, key, resp.Body, resp.Headers.Get("ETag"), constants.CollectionsCacheTTL)
	}

	return parseCollection(resp.Body)
}

func parseCollection(data []byte) (*trellis.Collection, error) {
	var collection trellis.Collection

	err := json.Unmarshal(data, &collection)
	if err != nil {
		return nil, fmt.Errorf("parsing collection: %w", err)
	}

	return &collection, nil
}
