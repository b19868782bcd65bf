package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trellis-io/trellis-client/internal/auth"
	"github.com/trellis-io/trellis-client/pkg/trellis"
)

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	_, err := New(context.Background(), nil)
	require.ErrorIs(t, err, trellis.ErrConfigRequired)

	_, err = New(context.Background(), &trellis.Config{})
	require.ErrorIs(t, err, trellis.ErrEndpointRequired)
}

func TestNew_LoginAtConstruction(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(authHandler(t))
	t.Cleanup(server.Close)

	client, err := New(context.Background(), &trellis.Config{
		Endpoint: server.URL,
		Identity: "dev@example.com",
		Password: "hunter2",
	})
	require.NoError(t, err)

	access, refresh := client.Auth().Tokens()
	assert.Equal(t, "a1", access)
	assert.Equal(t, "r1", refresh)
}

func TestNew_LoginFailureSurfaces(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(authHandler(t))
	t.Cleanup(server.Close)

	_, err := New(context.Background(), &trellis.Config{
		Endpoint: server.URL,
		Identity: "dev@example.com",
		Password: "wrong",
	})
	require.Error(t, err)
	assert.True(t, trellis.IsUnauthorized(err))
}

func TestNew_SeedsTokenPair(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "Bearer seeded", request.Header.Get("Authorization"))
		_ = json.NewEncoder(writer).Encode(trellis.HealthStatus{Status: "ok"})
	})

	client := newTestClient(t, handler, &trellis.Config{
		AccessToken:  "seeded",
		RefreshToken: "seeded-refresh",
	})

	_, err := client.Health(context.Background())
	require.NoError(t, err)
}

func TestClient_Health(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "/api/v1/health", request.URL.Path)
		_ = json.NewEncoder(writer).Encode(trellis.HealthStatus{Status: "ok", Version: "1.4.2"})
	})

	client := newTestClient(t, handler, nil)

	status, err := client.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, "1.4.2", status.Version)
}

// End to end: an expired session recovers transparently through the records
// service, with callbacks observing the refresh.
func TestClient_SessionRecoveryEndToEnd(t *testing.T) {
	t.Parallel()

	var refreshCalls atomic.Int64

	handler := http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		switch request.URL.Path {
		case "/api/v1/auth/refresh":
			refreshCalls.Add(1)
			_ = json.NewEncoder(writer).Encode(auth.Token{AccessToken: "a2"})

		case "/api/v1/collections/posts/records/rec-1":
			if request.Header.Get("Authorization") != "Bearer a2" {
				writer.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(writer).Encode(trellis.ResponseError{
					Errors: []trellis.APIError{
						{Code: trellis.ErrorCodeNotAuthenticated, Title: "Unauthorized"},
					},
				})

				return
			}

			_ = json.NewEncoder(writer).Encode(trellis.Record{
				Resource:   trellis.Resource{ID: "rec-1"},
				Collection: "posts",
			})

		default:
			writer.WriteHeader(http.StatusNotFound)
		}
	})

	refreshed := 0

	client := newTestClient(t, handler, &trellis.Config{
		AccessToken:  "a1",
		RefreshToken: "r1",
		OnRefresh:    func() { refreshed++ },
	})

	record, err := client.Records().Get(context.Background(), "posts", "rec-1")
	require.NoError(t, err)
	assert.Equal(t, "rec-1", record.ID)

	assert.Equal(t, int64(1), refreshCalls.Load())
	assert.Equal(t, 1, refreshed)

	access, refresh := client.Auth().Tokens()
	assert.Equal(t, "a2", access)
	assert.Equal(t, "r1", refresh)
}
