// Package trellisclient constructs ready-to-use Trellis API clients.
//
// The package wires the HTTP transport, the session guard that recovers
// from expired access tokens, optional response caching, and the resource
// services behind the trellis.Client interface:
//
//	cli, err := trellisclient.NewWithPassword(ctx, "api.example.com", "dev@example.com", "hunter2")
//	if err != nil {
//	  log.Fatal(err)
//	}
//
//	records, err := cli.Records().List(ctx, "posts", nil)
//
// Clients holding a token pair from a previous session can skip the login
// round trip with NewWithTokens. See the trellis package for the domain
// types and interfaces.
package trellisclient
