package internal

import (
	"context"
	"errors"

	"github.com/jamesprial/go-reddit-mcp/pkg/types"
)

// MaxPageSize is the largest page Reddit serves for a listing request.
const MaxPageSize = 100

// ErrIteratorExhausted is returned by Next when no items remain.
var ErrIteratorExhausted = errors.New("iterator exhausted")

// FetchFunc retrieves one page of a listing. It returns the items and the
// fullname to pass as "after" for the following page; an empty cursor ends
// the listing.
type FetchFunc[T any] func(ctx context.Context, page types.Pagination) ([]T, string, error)

// ListingIterator lazily pages through a Reddit listing, stopping after limit
// items in total.
type ListingIterator[T any] struct {
	ctx       context.Context
	fetch     FetchFunc[T]
	remaining int
	buffer    []T
	bufferIdx int
	after     string
	hasMore   bool
	err       error
}

// NewListingIterator creates an iterator yielding at most limit items. A limit
// of zero or less yields nothing and never calls fetch.
func NewListingIterator[T any](ctx context.Context, limit int, fetch FetchFunc[T]) *ListingIterator[T] {
	if limit < 0 {
		limit = 0
	}
	return &ListingIterator[T]{
		ctx:       ctx,
		fetch:     fetch,
		remaining: limit,
		hasMore:   limit > 0,
	}
}

// HasNext reports whether Next will return an item or an error. It fetches
// the next page when the buffer is drained.
func (it *ListingIterator[T]) HasNext() bool {
	if it.err != nil {
		return true
	}
	if it.remaining <= 0 {
		return false
	}
	if it.bufferIdx < len(it.buffer) {
		return true
	}
	if !it.hasMore {
		return false
	}

	it.fill()
	return it.err != nil || it.bufferIdx < len(it.buffer)
}

// Next returns the next item. After an error has been returned the iterator
// is exhausted.
func (it *ListingIterator[T]) Next() (T, error) {
	var zero T
	if !it.HasNext() {
		return zero, ErrIteratorExhausted
	}
	if it.err != nil {
		err := it.err
		it.err = nil
		it.hasMore = false
		it.remaining = 0
		return zero, err
	}

	item := it.buffer[it.bufferIdx]
	it.bufferIdx++
	it.remaining--
	return item, nil
}

func (it *ListingIterator[T]) fill() {
	for it.hasMore && it.bufferIdx >= len(it.buffer) {
		if err := it.ctx.Err(); err != nil {
			it.err = err
			return
		}

		pageSize := it.remaining
		if pageSize > MaxPageSize {
			pageSize = MaxPageSize
		}

		items, after, err := it.fetch(it.ctx, types.Pagination{Limit: pageSize, After: it.after})
		if err != nil {
			it.err = err
			return
		}

		if len(items) > it.remaining {
			items = items[:it.remaining]
		}
		it.buffer = items
		it.bufferIdx = 0

		// A repeated cursor would loop forever.
		if after == "" || after == it.after || len(items) == 0 {
			it.hasMore = false
		}
		it.after = after
	}
}

// Collect drains it, returning the items read before the first error.
func Collect[T any](it types.Iterator[T]) ([]T, error) {
	var items []T
	for it.HasNext() {
		item, err := it.Next()
		if err != nil {
			return items, err
		}
		items = append(items, item)
	}
	return items, nil
}
