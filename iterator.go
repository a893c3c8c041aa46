package redditmcp

import (
	"context"
	"net/url"
	"strconv"

	"github.com/jamesprial/go-reddit-mcp/internal"
	"github.com/jamesprial/go-reddit-mcp/pkg/types"
)

// listing builds a lazy iterator over the Reddit listing at path. Each page
// request carries params plus the page's limit and after cursor.
func listing[T any](
	ctx context.Context,
	c *Client,
	path string,
	params url.Values,
	limit int,
	extract func(*types.Thing) ([]T, string, error),
) types.Iterator[T] {
	return internal.NewListingIterator(ctx, limit, func(ctx context.Context, page types.Pagination) ([]T, string, error) {
		thing, err := c.getThing(ctx, path, pageParams(params, page))
		if err != nil {
			return nil, "", err
		}
		return extract(thing)
	})
}

func pageParams(base url.Values, page types.Pagination) url.Values {
	params := url.Values{}
	for k, vs := range base {
		params[k] = append([]string(nil), vs...)
	}
	params.Set("limit", strconv.Itoa(page.Limit))
	if page.After != "" {
		params.Set("after", page.After)
	}
	return params
}

// errIterator yields a single error. It reports arguments rejected before
// any request is made through the same channel as request failures.
type errIterator[T any] struct {
	err error
}

func failedIterator[T any](err error) types.Iterator[T] {
	return &errIterator[T]{err: err}
}

func (it *errIterator[T]) HasNext() bool {
	return it.err != nil
}

func (it *errIterator[T]) Next() (T, error) {
	var zero T
	if it.err == nil {
		return zero, internal.ErrIteratorExhausted
	}
	err := it.err
	it.err = nil
	return zero, err
}
