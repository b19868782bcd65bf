package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trellis-io/trellis-client/internal/auth"
	trellishttp "github.com/trellis-io/trellis-client/internal/http"
	"github.com/trellis-io/trellis-client/pkg/trellis"
)

func TestAPIProvider_Refresh(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "POST", request.Method)
		assert.Equal(t, refreshPath, request.URL.Path)

		var body map[string]string

		_ = json.NewDecoder(request.Body).Decode(&body)
		assert.Equal(t, "r1", body["refresh_token"])

		_ = json.NewEncoder(writer).Encode(auth.Token{
			AccessToken:  "a2",
			RefreshToken: "r2",
			TokenType:    "bearer",
			ExpiresIn:    900,
		})
	}))
	defer server.Close()

	provider := auth.NewAPIProvider(trellishttp.NewClient(server.URL))

	token, err := provider.Refresh(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, "a2", token.AccessToken)
	assert.Equal(t, "r2", token.RefreshToken)
	assert.WithinDuration(t, time.Now().Add(900*time.Second), token.ExpiresAt, 5*time.Second)
}

func TestAPIProvider_RefreshDefaultsTokenValidity(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		// No expires_in in the response
		_ = json.NewEncoder(writer).Encode(auth.Token{AccessToken: "a2"})
	}))
	defer server.Close()

	provider := auth.NewAPIProvider(trellishttp.NewClient(server.URL))

	token, err := provider.Refresh(context.Background(), "r1")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), token.ExpiresAt, 5*time.Second)
}

func TestAPIProvider_RefreshRejected(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writeUnauthorized(writer)
	}))
	defer server.Close()

	provider := auth.NewAPIProvider(trellishttp.NewClient(server.URL))

	_, err := provider.Refresh(context.Background(), "stale")
	require.Error(t, err)
	assert.True(t, trellis.IsUnauthorized(err))
}

func TestAPIProvider_EmptyRefreshToken(t *testing.T) {
	t.Parallel()

	provider := auth.NewAPIProvider(nil)

	_, err := provider.Refresh(context.Background(), "")
	require.ErrorIs(t, err, trellis.ErrNoRefreshToken)
}

func TestAPIProvider_MalformedTokenResponse(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		_, _ = writer.Write([]byte(`{"unexpected":"shape"}`))
	}))
	defer server.Close()

	provider := auth.NewAPIProvider(trellishttp.NewClient(server.URL))

	_, err := provider.Refresh(context.Background(), "r1")
	require.Error(t, err)
}

func TestToken_Expired(t *testing.T) {
	t.Parallel()

	assert.False(t, (&auth.Token{}).Expired())
	assert.False(t, (&auth.Token{ExpiresAt: time.Now().Add(time.Hour)}).Expired())
	assert.True(t, (&auth.Token{ExpiresAt: time.Now().Add(-time.Minute)}).Expired())
	// Within the safety buffer counts as expired
	assert.True(t, (&auth.Token{ExpiresAt: time.Now().Add(5 * time.Second)}).Expired())
}
