package client

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trellis-io/trellis-client/pkg/trellis"
)

func TestRecordsClient_List(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "/api/v1/collections/posts/records", request.URL.Path)
		assert.Equal(t, "2", request.URL.Query().Get("page"))
		assert.Equal(t, "-created_at", request.URL.Query().Get("order_by"))

		_ = json.NewEncoder(writer).Encode(trellis.RecordList{
			Pagination: trellis.Pagination{TotalResults: 1, TotalPages: 1},
			Resources: []trellis.Record{
				{
					Resource:   trellis.Resource{ID: "rec-1"},
					Collection: "posts",
					Fields:     map[string]interface{}{"title": "hello"},
				},
			},
		})
	})

	client := newTestClient(t, handler, nil)

	params := trellis.NewQueryParams().WithPage(2).WithOrderBy("-created_at")

	list, err := client.Records().List(context.Background(), "posts", params)
	require.NoError(t, err)
	require.Len(t, list.Resources, 1)
	assert.Equal(t, "rec-1", list.Resources[0].ID)
	assert.Equal(t, "hello", list.Resources[0].GetString("title"))
}

func TestRecordsClient_ListRequiresCollection(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.NotFoundHandler(), nil)

	_, err := client.Records().List(context.Background(), "", nil)
	require.ErrorIs(t, err, trellis.ErrCollectionRequired)
}

func TestRecordsClient_Get(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "/api/v1/collections/posts/records/rec-1", request.URL.Path)

		_ = json.NewEncoder(writer).Encode(trellis.Record{
			Resource:   trellis.Resource{ID: "rec-1"},
			Collection: "posts",
			Fields:     map[string]interface{}{"title": "hello"},
		})
	})

	client := newTestClient(t, handler, nil)

	record, err := client.Records().Get(context.Background(), "posts", "rec-1")
	require.NoError(t, err)
	assert.Equal(t, "rec-1", record.ID)
	assert.Equal(t, "posts", record.Collection)
}

func TestRecordsClient_GetValidation(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.NotFoundHandler(), nil)

	_, err := client.Records().Get(context.Background(), "", "rec-1")
	require.ErrorIs(t, err, trellis.ErrCollectionRequired)

	_, err = client.Records().Get(context.Background(), "posts", "")
	require.ErrorIs(t, err, trellis.ErrRecordIDRequired)
}

func TestRecordsClient_GetUsesCache(t *testing.T) {
	t.Parallel()

	hits := 0

	handler := http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		hits++

		_ = json.NewEncoder(writer).Encode(trellis.Record{
			Resource:   trellis.Resource{ID: "rec-1"},
			Collection: "posts",
		})
	})

	client := newTestClient(t, handler, &trellis.Config{
		Cache: &trellis.CacheConfig{Type: trellis.CacheTypeMemory},
	})

	ctx := context.Background()

	_, err := client.Records().Get(ctx, "posts", "rec-1")
	require.NoError(t, err)

	_, err = client.Records().Get(ctx, "posts", "rec-1")
	require.NoError(t, err)

	// Second read served from cache
	assert.Equal(t, 1, hits)
}

func TestRecordsClient_UpdateInvalidatesCache(t *testing.T) {
	t.Parallel()

	gets := 0

	handler := http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.Method == http.MethodGet {
			gets++
		}

		_ = json.NewEncoder(writer).Encode(trellis.Record{
			Resource:   trellis.Resource{ID: "rec-1"},
			Collection: "posts",
		})
	})

	client := newTestClient(t, handler, &trellis.Config{
		Cache: &trellis.CacheConfig{Type: trellis.CacheTypeMemory},
	})

	ctx := context.Background()

	_, err := client.Records().Get(ctx, "posts", "rec-1")
	require.NoError(t, err)

	_, err = client.Records().Update(ctx, "posts", "rec-1", map[string]interface{}{"title": "new"})
	require.NoError(t, err)

	_, err = client.Records().Get(ctx, "posts", "rec-1")
	require.NoError(t, err)

	// The update dropped the cached entry, so the second read hit the server
	assert.Equal(t, 2, gets)
}

func TestRecordsClient_Create(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, http.MethodPost, request.Method)
		assert.Equal(t, "/api/v1/collections/posts/records", request.URL.Path)

		var body map[string]map[string]interface{}

		_ = json.NewDecoder(request.Body).Decode(&body)
		assert.Equal(t, "hello", body["fields"]["title"])

		writer.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(writer).Encode(trellis.Record{
			Resource:   trellis.Resource{ID: "rec-9"},
			Collection: "posts",
			Fields:     body["fields"],
		})
	})

	client := newTestClient(t, handler, nil)

	record, err := client.Records().Create(context.Background(), "posts", map[string]interface{}{"title": "hello"})
	require.NoError(t, err)
	assert.Equal(t, "rec-9", record.ID)
}

func TestRecordsClient_Delete(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, http.MethodDelete, request.Method)
		assert.Equal(t, "/api/v1/collections/posts/records/rec-1", request.URL.Path)
		writer.WriteHeader(http.StatusNoContent)
	})

	client := newTestClient(t, handler, nil)

	err := client.Records().Delete(context.Background(), "posts", "rec-1")
	require.NoError(t, err)
}

func TestRecordsClient_NotFound(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(writer).Encode(trellis.ResponseError{
			Errors: []trellis.APIError{
				{Code: trellis.ErrorCodeNotFound, Title: "Not Found", Detail: "no such record"},
			},
		})
	})

	client := newTestClient(t, handler, nil)

	_, err := client.Records().Get(context.Background(), "posts", "missing")
	require.Error(t, err)
	assert.True(t, trellis.IsNotFound(err))
}
