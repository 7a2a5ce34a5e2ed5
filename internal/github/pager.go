package github

import (
	"context"
)

// DefaultMaxItems is the accumulation cap used when none is given. The
// search API does not serve results past the first thousand.
const DefaultMaxItems = 1000

// Pager accumulates pages of results for one term.
type Pager struct {
	searcher Searcher
	term     string
	maxItems int

	page       int
	items      []Repository
	total      int
	incomplete bool
	fetched    bool
	exhausted  bool
}

// NewPager returns a pager that stops once maxItems results are held.
// A non-positive maxItems means DefaultMaxItems.
func NewPager(s Searcher, term string, maxItems int) *Pager {
	if maxItems <= 0 {
		maxItems = DefaultMaxItems
	}
	return &Pager{searcher: s, term: term, maxItems: maxItems}
}

// HasMore reports whether Next would fetch another page.
func (p *Pager) HasMore() bool {
	if !p.fetched {
		return true
	}
	return !p.exhausted && len(p.items) < p.total && len(p.items) < p.maxItems
}

// Next fetches the following page, appends it and returns the new items.
// It returns nil, nil when there is nothing more to fetch. A failed page
// is retried by the next call.
func (p *Pager) Next(ctx context.Context) ([]Repository, error) {
	if !p.HasMore() {
		return nil, nil
	}

	resp, err := p.searcher.SearchRepositories(ctx, p.term, p.page+1)
	if err != nil {
		return nil, err
	}

	p.page++
	p.fetched = true
	p.total = resp.TotalCount
	p.incomplete = p.incomplete || resp.IncompleteResults
	if len(resp.Items) == 0 {
		p.exhausted = true
		return nil, nil
	}

	p.items = append(p.items, resp.Items...)
	return resp.Items, nil
}

// Items returns the accumulated results, capped at the pager's limit.
func (p *Pager) Items() []Repository {
	if len(p.items) > p.maxItems {
		return p.items[:p.maxItems]
	}
	return p.items
}

// TotalCount is the server's total_count from the latest page.
func (p *Pager) TotalCount() int {
	return p.total
}

// Page is the number of pages fetched so far.
func (p *Pager) Page() int {
	return p.page
}

// Term returns the search term.
func (p *Pager) Term() string {
	return p.term
}

// FetchAll pages through results for term until the server runs out or
// maxItems results are held.
func FetchAll(ctx context.Context, s Searcher, term string, maxItems int) (*SearchResponse, error) {
	p := NewPager(s, term, maxItems)
	for p.HasMore() {
		if _, err := p.Next(ctx); err != nil {
			return nil, err
		}
	}

	return &SearchResponse{
		TotalCount:        p.total,
		IncompleteResults: p.incomplete,
		Items:             p.Items(),
	}, nil
}
