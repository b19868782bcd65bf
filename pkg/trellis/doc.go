// Package trellis provides types, interfaces, and helpers for working with
// the Trellis record-store API.
//
// # Overview
//
// The trellis package defines the domain types (Record, Collection, AuthUser)
// and the interfaces for the resource-oriented clients (RecordsClient,
// CollectionsClient, AuthClient). A concrete implementation of these clients
// is provided by the trellisclient package, which wires configuration,
// transport, session management, and caching. Most consumers should import
// trellisclient to construct a client and then interact with the interfaces
// exposed here.
//
// Getting a client
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/trellis-io/trellis-client/pkg/trellis"
//	  "github.com/trellis-io/trellis-client/pkg/trellisclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//	  cli, err := trellisclient.New(ctx, &trellis.Config{
//	    Endpoint: "https://api.example.com",
//	    Identity: "dev@example.com",
//	    Password: "hunter2",
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  // List the first page of records
//	  records, err := cli.Records().List(ctx, "posts", trellis.NewQueryParams().WithPerPage(50))
//	  if err != nil { log.Fatal(err) }
//	  _ = records
//	}
//
// # Sessions
//
// A client constructed with credentials or a token pair manages its session
// automatically: the access token is attached to every request, and a 401
// response triggers a single token refresh followed by a transparent replay
// of the failed request. Concurrent 401s share one refresh. When refresh is
// impossible (no refresh token) or fails, the original 401 surfaces to the
// caller and can be detected with IsUnauthorized.
//
// # Queries and pagination
//
// Use QueryParams to express common list options (page, per_page, order_by,
// filter, expand). The package also provides helpers for iterating or
// collecting paginated results:
//
//	it := trellis.NewPaginationIterator(ctx, lister, "/api/v1/collections/posts/records", nil)
//	for it.HasNext() {
//	  record, err := it.Next()
//	  if err != nil { break }
//	  _ = record
//	}
//
// or fetch all results at once:
//
//	all, err := trellis.FetchAllPages(ctx, lister, "/api/v1/collections/posts/records", nil, trellis.DefaultPaginationOptions())
//	if err != nil { /* handle error */ }
//	_ = all
//
// # Errors
//
// API errors are represented by APIError and ResponseError. Helpers such as
// IsNotFound, IsUnauthorized, and IsForbidden make it easy to branch on
// common failure cases.
//
// # Interceptors and caching
//
// The package includes generic building blocks such as request/response
// interceptors (for logging and auth headers) and a pluggable Cache
// abstraction with memory and NATS key-value backends. The trellisclient
// package composes these pieces for a sensible default client; applications
// with advanced needs can also use these primitives directly.
package trellis
