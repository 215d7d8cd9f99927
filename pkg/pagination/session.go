package pagination

import (
	"context"
	"sync"
	"time"
)

// Session is a stateful search-and-scroll list: a search term, the rows
// accumulated so far, and the latest fetch error. Term changes are debounced
// and always restart from page one, discarding accumulation; LoadMore appends
// against the snapshot current at call time.
type Session struct {
	mu        sync.Mutex
	fetcher   *Fetcher
	debouncer *Debouncer
	term      string
	state     State
	err       error
	gen       uint64
	loading   bool
}

// NewSession creates a session over the fetcher. Non-positive delays use
// DefaultSearchDelay.
func NewSession(fetcher *Fetcher, delay time.Duration) *Session {
	return &Session{
		fetcher:   fetcher,
		debouncer: NewDebouncer(delay),
		state:     EmptyState(),
	}
}

// SetTerm updates the search term. The page-one refetch fires only after the
// term sits unchanged for the debounce delay; results from a superseded term
// are discarded.
func (s *Session) SetTerm(ctx context.Context, term string) {
	s.mu.Lock()
	if term == s.term {
		s.mu.Unlock()
		return
	}
	s.term = term
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	fetchCtx := context.WithoutCancel(ctx)
	s.debouncer.Trigger(func() {
		state, err := s.fetcher.First(fetchCtx, term)
		s.apply(gen, state, err)
	})
}

// Reload immediately refetches page one for the current term.
func (s *Session) Reload(ctx context.Context) error {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	term := s.term
	s.mu.Unlock()

	state, err := s.fetcher.First(ctx, term)
	s.apply(gen, state, err)
	return err
}

// LoadMore appends the next page to the current accumulation. It is a no-op
// when no pages remain or when a LoadMore fetch is already in flight.
func (s *Session) LoadMore(ctx context.Context) error {
	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		return nil
	}
	gen := s.gen
	term := s.term
	snapshot := s.state
	if !snapshot.HasMore() {
		s.mu.Unlock()
		return nil
	}
	s.loading = true
	s.mu.Unlock()

	state, err := s.fetcher.Next(ctx, term, snapshot)

	s.mu.Lock()
	s.loading = false
	s.mu.Unlock()

	s.apply(gen, state, err)
	return err
}

// apply installs a fetch result unless the session moved on to a newer term.
func (s *Session) apply(gen uint64, state State, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return
	}
	s.state = state
	s.err = err
}

// Snapshot returns the current term, accumulated state, and latest error.
func (s *Session) Snapshot() (string, State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.term, s.state, s.err
}

// Close cancels any pending debounced fetch.
func (s *Session) Close() {
	s.debouncer.Stop()
}
