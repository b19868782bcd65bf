package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/trellis-io/trellis-client/pkg/trellis"
)

// newTestClient builds a client against an httptest server. The caller owns
// the handler; cleanup is registered on t.
func newTestClient(t *testing.T, handler http.Handler, config *trellis.Config) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	if config == nil {
		config = &trellis.Config{}
	}

	config.Endpoint = server.URL

	client, err := New(context.Background(), config)
	require.NoError(t, err)

	return client
}
