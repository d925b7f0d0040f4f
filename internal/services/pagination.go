package services

import (
	"context"
	"fmt"
	"io"

	"github.com/desertthunder/spt/internal/models"
	"github.com/desertthunder/spt/internal/shared"
)

// PageFunc fetches the page located at url.
type PageFunc[T any] func(ctx context.Context, url string) (*models.Page[T], error)

// Paginator walks a paginated collection one page at a time.
//
// It is bound to the URL of the first page and a [PageFunc]. The cursor only moves forward:
// each page's next URL replaces it, and an empty next URL ends the iteration.
// A Paginator is not safe for concurrent use.
type Paginator[T any] struct {
	next    string
	fetch   PageFunc[T]
	visited map[string]struct{}
	offset  int
	total   int
	pages   int
	done    bool
}

// NewPaginator creates a [Paginator] starting at firstURL.
func NewPaginator[T any](firstURL string, fetch PageFunc[T]) *Paginator[T] {
	return &Paginator[T]{
		next:    firstURL,
		fetch:   fetch,
		visited: make(map[string]struct{}),
		done:    firstURL == "",
	}
}

// Next fetches the next page and advances the cursor.
//
// Returns [io.EOF] once the collection is exhausted. A failed fetch leaves the cursor in place.
// If a page points back at an already visited URL the iteration stops with [shared.ErrInvalidCursor];
// the items of that page are still returned.
func (p *Paginator[T]) Next(ctx context.Context) ([]T, error) {
	if p.done {
		return nil, io.EOF
	}

	url := p.next
	page, err := p.fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	if page == nil {
		p.done = true
		return nil, io.EOF
	}

	p.visited[url] = struct{}{}
	p.pages++
	p.total = page.Total
	p.offset = page.Offset + max(page.Count, len(page.Items))

	switch {
	case page.Next == "":
		p.done = true
	case p.seen(page.Next):
		p.done = true
		return page.Items, fmt.Errorf("%w: %s was already visited", shared.ErrInvalidCursor, page.Next)
	default:
		p.next = page.Next
	}

	return page.Items, nil
}

// All drains the remaining pages.
func (p *Paginator[T]) All(ctx context.Context) ([]T, error) {
	var items []T
	for !p.done {
		page, err := p.Next(ctx)
		items = append(items, page...)
		if err == io.EOF {
			break
		}
		if err != nil {
			return items, err
		}
	}
	return items, nil
}

func (p *Paginator[T]) seen(url string) bool {
	_, ok := p.visited[url]
	return ok
}

// Done reports whether the collection is exhausted.
func (p *Paginator[T]) Done() bool { return p.done }

// Offset is the number of items consumed so far.
func (p *Paginator[T]) Offset() int { return p.offset }

// Total is the collection size reported by the last page.
func (p *Paginator[T]) Total() int { return p.total }

// Pages is the number of pages fetched.
func (p *Paginator[T]) Pages() int { return p.pages }
