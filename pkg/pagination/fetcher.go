// Package pagination orchestrates paged list fetching: page state tracked
// from the upstream's meta.page block, append-mode accumulation for infinite
// scrolling clients, and debounced search-term changes.
package pagination

import (
	"context"

	"github.com/cloverhq/clover/pkg/jsonapi"
)

// FetchFunc fetches one page of results for a search term. An empty term
// lists everything.
type FetchFunc func(ctx context.Context, term string, page int) (*jsonapi.Document, error)

// State is an immutable snapshot of an accumulated list: the rows fetched so
// far, their included side-loads, and the page block of the latest fetch.
type State struct {
	Items    []*jsonapi.Resource
	Included []*jsonapi.Resource
	Page     jsonapi.PageMeta
}

// EmptyState is the cleared list: no rows, a single empty page.
func EmptyState() State {
	return State{Page: jsonapi.PageMeta{TotalPages: 1, Number: 1}}
}

// HasMore reports whether pages remain beyond the latest fetch.
func (s State) HasMore() bool {
	return s.Page.Number < s.Page.TotalPages
}

// Fetcher runs page fetches against one list endpoint.
type Fetcher struct {
	fetch FetchFunc
}

// NewFetcher creates a fetcher over the given page source.
func NewFetcher(fetch FetchFunc) *Fetcher {
	return &Fetcher{fetch: fetch}
}

// FetchPage fetches one page and folds it into a new State. In append mode
// the new rows extend the caller's snapshot; otherwise they replace it. The
// snapshot is never mutated, so a stale concurrent fetch cannot clobber rows
// accumulated elsewhere. On failure, append mode preserves the snapshot and
// replace mode clears it.
func (f *Fetcher) FetchPage(ctx context.Context, term string, page int, snapshot State, appendMode bool) (State, error) {
	doc, err := f.fetch(ctx, term, page)
	if err != nil {
		if appendMode {
			return snapshot, err
		}
		return EmptyState(), err
	}

	next := State{Page: doc.Page()}
	if appendMode {
		next.Items = append(append([]*jsonapi.Resource{}, snapshot.Items...), doc.Data...)
		next.Included = append(append([]*jsonapi.Resource{}, snapshot.Included...), doc.Included...)
	} else {
		next.Items = doc.Data
		next.Included = doc.Included
	}
	return next, nil
}

// First fetches page one, replacing any prior accumulation.
func (f *Fetcher) First(ctx context.Context, term string) (State, error) {
	return f.FetchPage(ctx, term, 1, EmptyState(), false)
}

// Next appends the page after the snapshot's latest. When no pages remain it
// returns the snapshot unchanged.
func (f *Fetcher) Next(ctx context.Context, term string, snapshot State) (State, error) {
	if !snapshot.HasMore() {
		return snapshot, nil
	}
	return f.FetchPage(ctx, term, snapshot.Page.Number+1, snapshot, true)
}

// All fetches every page for a term, accumulating in order.
func (f *Fetcher) All(ctx context.Context, term string) (State, error) {
	state, err := f.First(ctx, term)
	if err != nil {
		return state, err
	}
	for state.HasMore() {
		state, err = f.Next(ctx, term, state)
		if err != nil {
			return state, err
		}
	}
	return state, nil
}
