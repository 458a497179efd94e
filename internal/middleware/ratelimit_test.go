package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func init() { gin.SetMode(gin.TestMode) }

func TestLimiterStore_Allow(t *testing.T) {
	// allow 5 events immediately then the 6th should be rejected
	s := NewLimiterStore(5, 5, time.Minute)
	defer s.Stop()

	key := "test@example.com"
	for i := 0; i < 5; i++ {
		if !s.Allow(key) {
			t.Fatalf("expected allow at iteration %d", i)
		}
	}
	if s.Allow(key) {
		t.Fatalf("expected limiter to block after burst consumed")
	}
	if !s.Allow("other@example.com") {
		t.Fatalf("expected a fresh key to have its own budget")
	}
	if n := s.Len(); n != 2 {
		t.Fatalf("expected 2 tracked keys, got %d", n)
	}
}

func TestLimiterStore_SweepDropsIdleKeys(t *testing.T) {
	s := NewLimiterStore(5, 5, time.Minute)
	defer s.Stop()

	s.Allow("old")
	s.Allow("fresh")
	s.mu.Lock()
	s.entries["old"].lastSeen = time.Now().Add(-time.Hour)
	s.mu.Unlock()

	s.sweep(time.Now())
	if n := s.Len(); n != 1 {
		t.Fatalf("expected only the fresh key to survive, got %d keys", n)
	}
}

func TestLimiterStore_JanitorRuns(t *testing.T) {
	s := NewLimiterStore(5, 5, 10*time.Millisecond)
	defer s.Stop()

	s.Allow("k")
	s.mu.Lock()
	s.idleTTL = 0
	s.mu.Unlock()

	deadline := time.Now().Add(time.Second)
	for s.Len() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("expected janitor to drop the idle key")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestLimiterStore_StopIsIdempotent(t *testing.T) {
	s := NewLimiterStore(0, 0, 0)
	s.Stop()
	s.Stop()
	if !s.Allow("k") {
		t.Fatalf("expected a stopped store to keep answering")
	}
}

func TestRateLimit_KeysByEmail(t *testing.T) {
	store := NewLimiterStore(1, 1, time.Minute)
	defer store.Stop()

	r := gin.New()
	var seenBody string
	r.POST("/login", RateLimit(store), func(c *gin.Context) {
		b, _ := c.GetRawData()
		seenBody = string(b)
		c.Status(http.StatusOK)
	})

	post := func(body string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
		r.ServeHTTP(w, req)
		return w.Code
	}

	if code := post(`{"email":"a@example.com"}`); code != http.StatusOK {
		t.Fatalf("first request: expected 200, got %d", code)
	}
	if seenBody != `{"email":"a@example.com"}` {
		t.Fatalf("body must be restored for the handler, got %q", seenBody)
	}

	// same account with different casing shares the budget
	if code := post(`{"email":"A@Example.com"}`); code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 for the same account, got %d", code)
	}

	// another account has its own budget
	if code := post(`{"email":"b@example.com"}`); code != http.StatusOK {
		t.Fatalf("expected 200 for another account, got %d", code)
	}
}
