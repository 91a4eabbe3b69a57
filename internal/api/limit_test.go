package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestInflightLimiter(t *testing.T) {
	l := newInflightLimiter(2, 3)

	if !l.acquire("1.1.1.1") || !l.acquire("1.1.1.1") {
		t.Fatal("first two acquires for one IP should succeed")
	}
	if l.acquire("1.1.1.1") {
		t.Error("third acquire for one IP should fail")
	}
	if !l.acquire("2.2.2.2") {
		t.Fatal("acquire for second IP should succeed")
	}
	if l.acquire("3.3.3.3") {
		t.Error("acquire beyond the global cap should fail")
	}

	l.release("1.1.1.1")
	if got := l.count("1.1.1.1"); got != 1 {
		t.Errorf("count = %d, want 1", got)
	}
	if !l.acquire("3.3.3.3") {
		t.Error("acquire after release should succeed")
	}

	l.release("2.2.2.2")
	if _, ok := l.active["2.2.2.2"]; ok {
		t.Error("released IP should be removed from the map")
	}
}

func TestInflightLimiterDisabled(t *testing.T) {
	l := newInflightLimiter(0, 0)
	for i := 0; i < 100; i++ {
		if !l.acquire("1.1.1.1") {
			t.Fatalf("acquire %d failed with caps disabled", i)
		}
	}
}

func TestLimitMiddleware(t *testing.T) {
	h := &handlers{logger: testLogger(), limiter: newInflightLimiter(1, 0)}

	entered := make(chan struct{})
	unblock := make(chan struct{})
	slow := h.limit(func(w http.ResponseWriter, r *http.Request) {
		close(entered)
		<-unblock
		w.WriteHeader(http.StatusOK)
	})

	done := make(chan int)
	go func() {
		w := httptest.NewRecorder()
		slow(w, httptest.NewRequest("POST", "/api/v1/compare", nil))
		done <- w.Code
	}()
	<-entered

	w := httptest.NewRecorder()
	slow(w, httptest.NewRequest("POST", "/api/v1/compare", nil))
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("concurrent request status = %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After header")
	}

	close(unblock)
	if code := <-done; code != http.StatusOK {
		t.Errorf("first request status = %d, want 200", code)
	}
	if got := h.limiter.count("192.0.2.1"); got != 0 {
		t.Errorf("slots held after completion = %d, want 0", got)
	}
}
