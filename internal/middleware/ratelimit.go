// Package middleware holds the gin middleware shared by the API routes.
package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/PaulBabatuyi/chater/internal/normalize"
)

// LimiterStore hands out one token bucket per key. Buckets idle for longer
// than idleTTL are dropped by a janitor goroutine until Stop is called.
type LimiterStore struct {
	limit rate.Limit
	burst int

	mu      sync.Mutex
	entries map[string]*limiterEntry
	idleTTL time.Duration

	sweepEvery time.Duration
	stop       chan struct{}
	stopOnce   sync.Once
}

type limiterEntry struct {
	bucket   *rate.Limiter
	lastSeen time.Time
}

// NewLimiterStore allows limitPerMinute events per key with the given burst.
// Non-positive arguments fall back to 60/min, a burst of 1 and a one minute
// sweep.
func NewLimiterStore(limitPerMinute int, burst int, sweepEvery time.Duration) *LimiterStore {
	if limitPerMinute <= 0 {
		limitPerMinute = 60
	}
	if burst <= 0 {
		burst = 1
	}
	if sweepEvery <= 0 {
		sweepEvery = time.Minute
	}
	s := &LimiterStore{
		limit:      rate.Every(time.Minute / time.Duration(limitPerMinute)),
		burst:      burst,
		entries:    make(map[string]*limiterEntry),
		idleTTL:    10 * time.Minute,
		sweepEvery: sweepEvery,
		stop:       make(chan struct{}),
	}
	go s.janitor()
	return s
}

func (s *LimiterStore) janitor() {
	ticker := time.NewTicker(s.sweepEvery)
	defer ticker.Stop()
	for {
		select {
		case now := <-ticker.C:
			s.sweep(now)
		case <-s.stop:
			return
		}
	}
}

// sweep forgets every key not seen since now minus idleTTL.
func (s *LimiterStore) sweep(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := now.Add(-s.idleTTL)
	for key, e := range s.entries {
		if e.lastSeen.Before(cutoff) {
			delete(s.entries, key)
		}
	}
}

// Stop ends the janitor. It is safe to call more than once.
func (s *LimiterStore) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// Len returns the number of tracked keys.
func (s *LimiterStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Allow takes one token from the bucket of key, creating the bucket on first
// use.
func (s *LimiterStore) Allow(key string) bool {
	s.mu.Lock()
	e, ok := s.entries[key]
	if !ok {
		e = &limiterEntry{bucket: rate.NewLimiter(s.limit, s.burst)}
		s.entries[key] = e
	}
	e.lastSeen = time.Now()
	s.mu.Unlock()
	return e.bucket.Allow()
}

// RateLimit rejects requests over the per-key budget with 429. Requests are
// keyed by the email in their JSON body when present, so one account cannot
// be brute-forced from many addresses; otherwise by client IP.
func RateLimit(store *LimiterStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if e := peekEmail(c); e != "" {
			key = fmt.Sprintf("email:%s", e)
		}

		if !store.Allow(key) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}

// peekEmail reads the email field of a JSON body and restores the body for
// the handler.
func peekEmail(c *gin.Context) string {
	if c.Request.Body == nil {
		return ""
	}
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	_ = c.Request.Body.Close()
	c.Request.Body = io.NopCloser(bytes.NewReader(body))
	if err != nil {
		return ""
	}

	var payload struct {
		Email string `json:"email"`
	}
	if json.Unmarshal(body, &payload) != nil {
		return ""
	}
	return normalize.Email(payload.Email)
}
