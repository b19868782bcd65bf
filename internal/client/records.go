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

// RecordsClient implements trellis.RecordsClient. Record reads go through
// the cache manager when one is configured; writes invalidate the affected
// record's entry.
type RecordsClient struct {
	httpClient *http.Client
	cache      *trellis.CacheManager
}

// NewRecordsClient creates a records service. A nil cache disables caching.
func NewRecordsClient(httpClient *http.Client, cache *trellis.CacheManager) *RecordsClient {
	return &RecordsClient{
		httpClient: httpClient,
		cache:      cache,
	}
}

func recordsPath(collection string) string {
	return constants.APIPathCollections + "/" + url.PathEscape(collection) + "/records"
}

func recordPath(collection, recordID string) string {
	return recordsPath(collection) + "/" + url.PathEscape(recordID)
}

// List implements trellis.RecordsClient.List.
func (c *RecordsClient) List(ctx context.Context, collection string, params *trellis.QueryParams) (*trellis.RecordList, error) {
	if collection == "" {
		return nil, trellis.ErrCollectionRequired
	}

	return c.ListWithPath(ctx, recordsPath(collection), params)
}

// ListWithPath lists records from an explicit path, satisfying the
// pagination helpers' client interface.
func (c *RecordsClient) ListWithPath(ctx context.Context, path string, params *trellis.QueryParams) (*trellis.ListResponse[trellis.Record], error) {
	var query url.Values
	if params != nil {
		query = params.ToValues()
	}

	resp, err := c.httpClient.Get(ctx, path, query)
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}

	var list trellis.RecordList

	err = json.Unmarshal(resp.Body, &list)
	if err != nil {
		return nil, fmt.Errorf("parsing records list: %w", err)
	}

	return &list, nil
}

// Get implements trellis.RecordsClient.Get.
func (c *RecordsClient) Get(ctx context.Context, collection, recordID string) (*trellis.Record, error) {
	if collection == "" {
		return nil, trellis.ErrCollectionRequired
	}

	if recordID == "" {
		return nil, trellis.ErrRecordIDRequired
	}

	path := recordPath(collection, recordID)

	if c.cache != nil {
		key := c.cache.GetCacheKey("GET", path, nil)

		data, err := c.cache.Get(ctx, key)
		if err == nil {
			return parseRecord(data)
		}
	}

	resp, err := c.httpClient.Get(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("getting record: %w", err)
	}

	if c.cache != nil && c.cache.Policy().ShouldCache("GET", path, resp.StatusCode) {
		key := c.cache.GetCacheKey("GET", path, nil)
		_ = c.cache.SetWithETag(ctx, key, resp.Body, resp.Headers.Get("ETag"), constants.RecordsCacheTTL)
	}

	return parseRecord(resp.Body)
}

// Create implements trellis.RecordsClient.Create.
func (c *RecordsClient) Create(ctx context.Context, collection string, fields map[string]interface{}) (*trellis.Record, error) {
	if collection == "" {
		return nil, trellis.ErrCollectionRequired
	}

	resp, err := c.httpClient.Post(ctx, recordsPath(collection), map[string]interface{}{"fields": fields})
	if err != nil {
		return nil, fmt.Errorf("creating record: %w", err)
	}

	return parseRecord(resp.Body)
}

// Update implements trellis.RecordsClient.Update.
func (c *RecordsClient) Update(ctx context.Context, collection, recordID string, fields map[string]interface{}) (*trellis.Record, error) {
	if collection == "" {
		return nil, trellis.ErrCollectionRequired
	}

	if recordID == "" {
		return nil, trellis.ErrRecordIDRequired
	}

	path := recordPath(collection, recordID)

	resp, err := c.httpClient.Patch(ctx, path, map[string]interface{}{"fields": fields})
	if err != nil {
		return nil, fmt.Errorf("updating record: %w", err)
	}

	c.invalidate(ctx, path)

	return parseRecord(resp.Body)
}

// Delete implements trellis.RecordsClient.Delete.
func (c *RecordsClient) Delete(ctx context.Context, collection, recordID string) error {
	if collection == "" {
		return trellis.ErrCollectionRequired
	}

	if recordID == "" {
		return trellis.ErrRecordIDRequired
	}

	path := recordPath(collection, recordID)

	_, err := c.httpClient.Delete(ctx, path)
	if err != nil {
		return fmt.Errorf("deleting record: %w", err)
	}

	c.invalidate(ctx, path)

	return nil
}

func (c *RecordsClient) invalidate(ctx context.Context, path string) {
	if c.cache == nil {
		return
	}

	_ = c.cache.Delete(ctx, c.cache.GetCacheKey("GET", path, nil))
}

func parseRecord(data []byte) (*trellis.Record, error) {
	var record trellis.Record

	err := json.Unmarshal(data, &record)
	if err != nil {
		return nil, fmt.Errorf("parsing record: %w", err)
	}

	return &record, nil
}
