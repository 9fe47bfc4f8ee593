package http

import "context"

// PageFetcher loads one page of items. It returns the items, whether a
// further page exists, and any error.
type PageFetcher[T any] func(ctx context.Context, page int) (items []T, hasMore bool, err error)

// PageIterator walks a paginated API result lazily, fetching pages only
// as items are consumed.
type PageIterator[T any] struct {
	fetch  PageFetcher[T]
	page   int
	buffer []T
	done   bool
	err    error
}

// NewPageIterator creates an iterator over fetch.
func NewPageIterator[T any](fetch PageFetcher[T]) *PageIterator[T] {
	return &PageIterator[T]{fetch: fetch}
}

// Next returns the next item. The second return is false when iteration
// is complete or an error occurred; check Err afterwards.
func (p *PageIterator[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T
	if p.err != nil {
		return zero, false, p.err
	}

	if len(p.buffer) == 0 && !p.done {
		items, hasMore, err := p.fetch(ctx, p.page)
		if err != nil {
			p.err = err
			return zero, false, err
		}
		p.buffer = items
		p.done = !hasMore
		p.page++
	}

	if len(p.buffer) == 0 {
		return zero, false, nil
	}
	item := p.buffer[0]
	p.buffer = p.buffer[1:]
	return item, true, nil
}

// All drains the iterator into a slice. Fetches every remaining page.
func (p *PageIterator[T]) All(ctx context.Context) ([]T, error) {
	var all []T
	for {
		item, ok, err := p.Next(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			return all, nil
		}
		all = append(all, item)
	}
}

// Err returns the error that stopped iteration, if any.
func (p *PageIterator[T]) Err() error {
	return p.err
}
