package pagination

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloverhq/clover/pkg/jsonapi"
)

// pagedSource serves a fixed number of pages, two rows each, and records the
// fetches it saw.
type pagedSource struct {
	mu         sync.Mutex
	totalPages int
	fetches    []string
	failPage   int
	blockPage  int
	block      chan struct{}
}

func (s *pagedSource) fetch(ctx context.Context, term string, page int) (*jsonapi.Document, error) {
	s.mu.Lock()
	s.fetches = append(s.fetches, fmt.Sprintf("%s/%d", term, page))
	s.mu.Unlock()

	if page == s.blockPage {
		<-s.block
	}
	if page == s.failPage {
		return nil, errors.New("upstream unavailable")
	}

	return &jsonapi.Document{
		Data: []*jsonapi.Resource{
			{ID: fmt.Sprintf("%s-p%d-a", term, page), Type: "people"},
			{ID: fmt.Sprintf("%s-p%d-b", term, page), Type: "people"},
		},
		Meta: &jsonapi.Meta{Page: &jsonapi.PageMeta{
			TotalItems: s.totalPages * 2,
			TotalPages: s.totalPages,
			Number:     page,
			Size:       2,
		}},
	}, nil
}

func (s *pagedSource) seen() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.fetches...)
}

func ids(state State) []string {
	out := make([]string, len(state.Items))
	for i, item := range state.Items {
		out[i] = item.ID
	}
	return out
}

func TestFetcherFirstAndNext(t *testing.T) {
	source := &pagedSource{totalPages: 3}
	fetcher := NewFetcher(source.fetch)

	state, err := fetcher.First(context.Background(), "ada")
	require.NoError(t, err)
	assert.Equal(t, []string{"ada-p1-a", "ada-p1-b"}, ids(state))
	assert.True(t, state.HasMore())

	state, err = fetcher.Next(context.Background(), "ada", state)
	require.NoError(t, err)
	assert.Equal(t, []string{"ada-p1-a", "ada-p1-b", "ada-p2-a", "ada-p2-b"}, ids(state))
	assert.Equal(t, 2, state.Page.Number)
}

func TestFetcherNextStopsAtLastPage(t *testing.T) {
	source := &pagedSource{totalPages: 1}
	fetcher := NewFetcher(source.fetch)

	state, err := fetcher.First(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, state.HasMore())

	same, err := fetcher.Next(context.Background(), "", state)
	require.NoError(t, err)
	assert.Equal(t, ids(state), ids(same))
	assert.Len(t, source.seen(), 1)
}

func TestFetcherAppendPreservesSnapshotOnFailure(t *testing.T) {
	source := &pagedSource{totalPages: 3, failPage: 2}
	fetcher := NewFetcher(source.fetch)

	state, err := fetcher.First(context.Background(), "x")
	require.NoError(t, err)

	after, err := fetcher.Next(context.Background(), "x", state)
	require.Error(t, err)
	assert.Equal(t, ids(state), ids(after))
}

func TestFetcherReplaceClearsOnFailure(t *testing.T) {
	source := &pagedSource{totalPages: 3, failPage: 1}
	fetcher := NewFetcher(source.fetch)

	state, err := fetcher.First(context.Background(), "x")
	require.Error(t, err)
	assert.Empty(t, state.Items)
	assert.Equal(t, 1, state.Page.Number)
	assert.Equal(t, 1, state.Page.TotalPages)
}

func TestFetcherAppendDoesNotMutateSnapshot(t *testing.T) {
	source := &pagedSource{totalPages: 3}
	fetcher := NewFetcher(source.fetch)

	first, err := fetcher.First(context.Background(), "x")
	require.NoError(t, err)
	firstIDs := ids(first)

	_, err = fetcher.Next(context.Background(), "x", first)
	require.NoError(t, err)
	assert.Equal(t, firstIDs, ids(first))
}

func TestFetcherAll(t *testing.T) {
	source := &pagedSource{totalPages: 3}
	fetcher := NewFetcher(source.fetch)

	state, err := fetcher.All(context.Background(), "all")
	require.NoError(t, err)
	assert.Len(t, state.Items, 6)
	assert.Equal(t, []string{"all/1", "all/2", "all/3"}, source.seen())
}

func TestDebouncerCoalesces(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)

	var mu sync.Mutex
	var fired []string
	for _, term := range []string{"a", "ad", "ada"} {
		term := term
		d.Trigger(func() {
			mu.Lock()
			fired = append(fired, term)
			mu.Unlock()
		})
	}

	time.Sleep(100 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"ada"}, fired)
}

func TestDebouncerStop(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)

	fired := make(chan struct{}, 1)
	d.Trigger(func() { fired <- struct{}{} })
	d.Stop()

	select {
	case <-fired:
		t.Fatal("callback fired after Stop")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSessionDebouncedSearch(t *testing.T) {
	source := &pagedSource{totalPages: 2}
	session := NewSession(NewFetcher(source.fetch), 20*time.Millisecond)
	defer session.Close()

	ctx := context.Background()
	session.SetTerm(ctx, "a")
	session.SetTerm(ctx, "ad")
	session.SetTerm(ctx, "ada")

	require.Eventually(t, func() bool {
		_, state, _ := session.Snapshot()
		return len(state.Items) > 0
	}, time.Second, 5*time.Millisecond)

	// Only the settled term was fetched, from page one.
	assert.Equal(t, []string{"ada/1"}, source.seen())

	term, state, err := session.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, "ada", term)
	assert.Equal(t, []string{"ada-p1-a", "ada-p1-b"}, ids(state))
}

func TestSessionTermChangeDiscardsAccumulation(t *testing.T) {
	source := &pagedSource{totalPages: 3}
	session := NewSession(NewFetcher(source.fetch), 5*time.Millisecond)
	defer session.Close()

	ctx := context.Background()
	require.NoError(t, session.Reload(ctx))
	require.NoError(t, session.LoadMore(ctx))

	_, state, _ := session.Snapshot()
	require.Len(t, state.Items, 4)

	session.SetTerm(ctx, "new")
	require.Eventually(t, func() bool {
		term, state, _ := session.Snapshot()
		return term == "new" && len(state.Items) == 2 && state.Page.Number == 1
	}, time.Second, 5*time.Millisecond)
}

func TestSessionLoadMoreAppends(t *testing.T) {
	source := &pagedSource{totalPages: 2}
	session := NewSession(NewFetcher(source.fetch), 5*time.Millisecond)
	defer session.Close()

	ctx := context.Background()
	require.NoError(t, session.Reload(ctx))
	require.NoError(t, session.LoadMore(ctx))
	require.NoError(t, session.LoadMore(ctx)) // past the end is a no-op

	_, state, err := session.Snapshot()
	require.NoError(t, err)
	assert.Len(t, state.Items, 4)
	assert.False(t, state.HasMore())
	assert.Equal(t, []string{"/1", "/2"}, source.seen())
}

func TestSessionLoadMoreSingleFlight(t *testing.T) {
	source := &pagedSource{totalPages: 3, blockPage: 2, block: make(chan struct{})}
	session := NewSession(NewFetcher(source.fetch), 5*time.Millisecond)
	defer session.Close()

	ctx := context.Background()
	require.NoError(t, session.Reload(ctx))

	done := make(chan error, 1)
	go func() { done <- session.LoadMore(ctx) }()

	// Wait until the first LoadMore is stuck inside the page-two fetch.
	require.Eventually(t, func() bool {
		return len(source.seen()) == 2
	}, time.Second, time.Millisecond)

	// A second LoadMore while one is in flight returns without fetching.
	require.NoError(t, session.LoadMore(ctx))
	assert.Equal(t, []string{"/1", "/2"}, source.seen())

	close(source.block)
	require.NoError(t, <-done)

	_, state, err := session.Snapshot()
	require.NoError(t, err)
	assert.Len(t, state.Items, 4)
	assert.Equal(t, []string{"/1", "/2"}, source.seen())
}
