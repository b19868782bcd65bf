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

func TestCollectionsClient_List(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "/api/v1/collections", request.URL.Path)

		_ = json.NewEncoder(writer).Encode(trellis.CollectionList{
			Pagination: trellis.Pagination{TotalResults: 2, TotalPages: 1},
			Resources: []trellis.Collection{
				{Resource: trellis.Resource{ID: "col-1"}, Name: "posts", Type: "base"},
				{Resource: trellis.Resource{ID: "col-2"}, Name: "users", Type: "auth"},
			},
		})
	})

	client := newTestClient(t, handler, nil)

	list, err := client.Collections().List(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, list.Resources, 2)
	assert.Equal(t, "posts", list.Resources[0].Name)
	assert.Equal(t, "auth", list.Resources[1].Type)
}

func TestCollectionsClient_Get(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "/api/v1/collections/posts", request.URL.Path)

		_ = json.NewEncoder(writer).Encode(trellis.Collection{
			Resource: trellis.Resource{ID: "col-1"},
			Name:     "posts",
			Type:     "base",
		})
	})

	client := newTestClient(t, handler, nil)

	collection, err := client.Collections().Get(context.Background(), "posts")
	require.NoError(t, err)
	assert.Equal(t, "col-1", collection.ID)
	assert.Equal(t, "posts", collection.Name)
}

func TestCollectionsClient_GetUsesCache(t *testing.T) {
	t.Parallel()

	hits := 0

	handler := http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		hits++

		_ = json.NewEncoder(writer).Encode(trellis.Collection{
			Resource: trellis.Resource{ID: "col-1"},
			Name:     "posts",
			Type:     "base",
		})
	})

	client := newTestClient(t, handler, &trellis.Config{
		Cache: &trellis.CacheConfig{Type: trellis.CacheTypeMemory},
	})

	ctx := context.Background()

	first, err := client.Collections().Get(ctx, "posts")
	require.NoError(t, err)
	assert.Equal(t, "col-1", first.ID)

	second, err := client.Collections().Get(ctx, "posts")
	require.NoError(t, err)
	assert.Equal(t, "col-1", second.ID)

	assert.Equal(t, 1, hits)
}

func TestCollectionsClient_GetRequiresName(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.NotFoundHandler(), nil)

	_, err := client.Collections().Get(context.Background(), "")
	require.ErrorIs(t, err, trellis.ErrCollectionRequired)
}
