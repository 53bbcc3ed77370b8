package ratelimit

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestAllowCapsPerKeyWindow(t *testing.T) {
	l := New(3, time.Hour)
	for i := 0; i < 3; i++ {
		if !l.Allow("a") {
			t.Fatalf("request %d should pass", i)
		}
	}
	if l.Allow("a") {
		t.Fatal("over-limit request should be refused")
	}
	if !l.Allow("b") {
		t.Fatal("limit is per key, other keys keep their budget")
	}
}

func TestAllowExpiredWindowResets(t *testing.T) {
	l := New(1, 10*time.Millisecond)
	if !l.Allow("a") {
		t.Fatal("first request should pass")
	}
	if l.Allow("a") {
		t.Fatal("second request in window should be refused")
	}
	time.Sleep(25 * time.Millisecond)
	if !l.Allow("a") {
		t.Fatal("a new window should admit again")
	}
}

func TestSweepEvictsExpiredWindows(t *testing.T) {
	l := New(1, time.Millisecond)
	for i := 0; i <= sweepAt; i++ {
		l.Allow(fmt.Sprintf("k%d", i))
	}
	time.Sleep(10 * time.Millisecond)

	l.Allow("fresh")
	l.mu.Lock()
	n := len(l.seen)
	l.mu.Unlock()
	if n != 1 {
		t.Fatalf("sweep left %d windows, want 1", n)
	}
}

func TestMiddlewareRejectsWith429(t *testing.T) {
	l := New(1, time.Hour)
	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("first request: status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: status = %d, want 429", rec.Code)
	}
}
