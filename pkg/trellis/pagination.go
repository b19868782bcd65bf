package trellis

import (
	"context"
	"fmt"

	"github.com/trellis-io/trellis-client/internal/constants"
)

// PaginationClient is the minimal list surface the pagination helpers need.
type PaginationClient[T any] interface {
	ListWithPath(ctx context.Context, path string, params *QueryParams) (*ListResponse[T], error)
}

// PaginationOptions tunes the bulk-fetch helpers.
type PaginationOptions struct {
	// PageSize is the per_page value used when fetching. Zero keeps the
	// server default.
	PageSize int

	// MaxPages bounds how many pages are fetched. Zero means no bound.
	MaxPages int
}

// DefaultPaginationOptions returns sensible defaults for bulk fetching.
func DefaultPaginationOptions() *PaginationOptions {
	return &PaginationOptions{
		PageSize: constants.DefaultPageSize,
	}
}

// PaginationIterator iterates items across pages, fetching lazily.
type PaginationIterator[T any] struct {
	ctx     context.Context
	client  PaginationClient[T]
	path    string
	params  *QueryParams
	page    int
	buffer  []T
	index   int
	fetched bool
	hasMore bool
}

// NewPaginationIterator creates an iterator over a paginated list endpoint.
// Iteration begins at params.Page when set, the first page otherwise.
func NewPaginationIterator[T any](ctx context.Context, client PaginationClient[T], path string, params *QueryParams) *PaginationIterator[T] {
	if params == nil {
		params = NewQueryParams()
	}

	// page holds the last fetched page, so seed it one before the start.
	startBefore := 0
	if params.Page > 0 {
		startBefore = params.Page - 1
	}

	return &PaginationIterator[T]{
		ctx:    ctx,
		client: client,
		path:   path,
		params: params,
		page:   startBefore,
	}
}

// HasNext reports whether another item is available. It is optimistic before
// the first fetch; the first Next call may still return ErrNoMoreItems.
func (it *PaginationIterator[T]) HasNext() bool {
	if it.index < len(it.buffer) {
		return true
	}

	if !it.fetched {
		return true
	}

	return it.hasMore
}

// Next returns the next item, fetching the next page when the buffer is
// exhausted.
func (it *PaginationIterator[T]) Next() (T, error) {
	var zero T

	if it.index >= len(it.buffer) {
		if it.fetched && !it.hasMore {
			return zero, ErrNoMoreItems
		}

		err := it.fetchNextPage()
		if err != nil {
			return zero, err
		}

		if len(it.buffer) == 0 {
			return zero, ErrNoMoreItems
		}
	}

	item := it.buffer[it.index]
	it.index++

	return item, nil
}

// All collects every remaining item.
func (it *PaginationIterator[T]) All() ([]T, error) {
	var items []T

	for it.HasNext() {
		item, err := it.Next()
		if err != nil {
			if err == ErrNoMoreItems {
				break
			}

			return nil, err
		}

		items = append(items, item)
	}

	return items, nil
}

// ForEach applies fn to every remaining item, stopping on the first error.
func (it *PaginationIterator[T]) ForEach(fn func(item T) error) error {
	for it.HasNext() {
		item, err := it.Next()
		if err != nil {
			if err == ErrNoMoreItems {
				return nil
			}

			return err
		}

		err = fn(item)
		if err != nil {
			return err
		}
	}

	return nil
}

func (it *PaginationIterator[T]) fetchNextPage() error {
	it.page++

	pageParams := *it.params
	pageParams.Page = it.page

	response, err := it.client.ListWithPath(it.ctx, it.path, &pageParams)
	if err != nil {
		return fmt.Errorf("fetching page %d: %w", it.page, err)
	}

	it.buffer = response.Resources
	it.index = 0
	it.fetched = true
	it.hasMore = response.Pagination.Next != nil

	return nil
}

// FetchAllPages collects all items from a paginated endpoint, bounded by
// options.MaxPages when set.
func FetchAllPages[T any](ctx context.Context, client PaginationClient[T], path string, params *QueryParams, options *PaginationOptions) ([]T, error) {
	if params == nil {
		params = NewQueryParams()
	}

	if options != nil && options.PageSize > 0 {
		params.PerPage = options.PageSize
	}

	var all []T

	page := params.Page
	if page == 0 {
		page = 1
	}

	for fetched := 0; ; fetched++ {
		if options != nil && options.MaxPages > 0 && fetched >= options.MaxPages {
			break
		}

		pageParams := *params
		pageParams.Page = page

		response, err := client.ListWithPath(ctx, path, &pageParams)
		if err != nil {
			return nil, fmt.Errorf("fetching page %d: %w", page, err)
		}

		all = append(all, response.Resources...)

		if response.Pagination.Next == nil {
			break
		}

		page++
	}

	return all, nil
}

// PageResult is one page delivered by StreamPages.
type PageResult[T any] struct {
	Items []T
	Err   error
}

// StreamPages delivers pages over a channel as they are fetched. The channel
// is closed after the last page, the first error, or context cancellation.
func StreamPages[T any](ctx context.Context, client PaginationClient[T], path string, params *QueryParams, options *PaginationOptions) <-chan PageResult[T] {
	results := make(chan PageResult[T])

	if params == nil {
		params = NewQueryParams()
	}

	if options != nil && options.PageSize > 0 {
		params.PerPage = options.PageSize
	}

	go func() {
		defer close(results)

		page := params.Page
		if page == 0 {
			page = 1
		}

		for fetched := 0; ; fetched++ {
			if options != nil && options.MaxPages > 0 && fetched >= options.MaxPages {
				return
			}

			pageParams := *params
			pageParams.Page = page

			response, err := client.ListWithPath(ctx, path, &pageParams)
			if err != nil {
				select {
				case results <- PageResult[T]{Err: fmt.Errorf("fetching page %d: %w", page, err)}:
				case <-ctx.Done():
				}

				return
			}

			select {
			case results <- PageResult[T]{Items: response.Resources}:
			case <-ctx.Done():
				return
			}

			if response.Pagination.Next == nil {
				return
			}

			page++
		}
	}()

	return results
}
