package client

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/PaulBabatuyi/chater/internal/data"
)

// SearchDelay is how long input must stay unchanged before a search runs.
const SearchDelay = 333 * time.Millisecond

// UserFinder is the part of the REST client the searcher calls.
type UserFinder interface {
	SearchUsers(ctx context.Context, q string) ([]data.PublicUser, error)
}

// SearchResult is delivered once per search that was not superseded.
type SearchResult struct {
	Query string
	Users []data.PublicUser
	Err   error
}

// Searcher runs search-as-you-type. Every Input supersedes the previous one:
// a pending timer is stopped and a running request is cancelled.
type Searcher struct {
	finder   UserFinder
	delay    time.Duration
	onResult func(SearchResult)

	mu     sync.Mutex
	seq    uint64
	timer  *time.Timer
	cancel context.CancelFunc
}

func NewSearcher(f UserFinder, onResult func(SearchResult)) *Searcher {
	return &Searcher{finder: f, delay: SearchDelay, onResult: onResult}
}

// Input records a new query. Blank input only cancels what is pending.
func (s *Searcher) Input(ctx context.Context, q string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.abortLocked()

	q = strings.TrimSpace(q)
	if q == "" {
		return
	}
	seq := s.seq
	s.timer = time.AfterFunc(s.delay, func() { s.run(ctx, seq, q) })
}

func (s *Searcher) abortLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Searcher) run(parent context.Context, seq uint64, q string) {
	s.mu.Lock()
	if seq != s.seq {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(parent)
	s.cancel = cancel
	s.mu.Unlock()
	defer cancel()

	users, err := s.finder.SearchUsers(ctx, q)

	s.mu.Lock()
	stale := seq != s.seq
	s.mu.Unlock()
	if stale || errors.Is(err, context.Canceled) {
		return
	}
	s.onResult(SearchResult{Query: q, Users: users, Err: err})
}

// Stop cancels any pending or running search.
func (s *Searcher) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.abortLocked()
}
