package probe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

func TestCheck(t *testing.T) {
	var mu sync.Mutex
	seenUA := make(map[string]string)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("probe used %s, want HEAD", r.Method)
		}
		mu.Lock()
		seenUA[r.URL.Path] = r.Header.Get("User-Agent")
		mu.Unlock()

		switch r.URL.Path {
		case "/ok":
			w.WriteHeader(http.StatusOK)
		case "/moved":
			w.WriteHeader(http.StatusAccepted)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	urls := []string{srv.URL + "/ok", srv.URL + "/moved", srv.URL + "/gone"}

	c := New(2*time.Second, 3, "test-agent/1.0")
	results := make(map[string]Result)
	c.Check(context.Background(), urls, func(r Result) {
		results[r.URL] = r
	})

	if len(results) != 3 {
		t.Fatalf("results = %d, want 3", len(results))
	}
	if r := results[srv.URL+"/ok"]; r.Dead() || r.Status != http.StatusOK {
		t.Errorf("/ok = %+v, want alive 200", r)
	}
	if r := results[srv.URL+"/moved"]; r.Dead() {
		t.Errorf("/moved = %+v, want alive", r)
	}
	if r := results[srv.URL+"/gone"]; !r.Dead() || r.Status != http.StatusNotFound {
		t.Errorf("/gone = %+v, want dead 404", r)
	}

	for path, ua := range seenUA {
		if ua != "test-agent/1.0" {
			t.Errorf("%s probed with User-Agent %q", path, ua)
		}
	}
}

func TestCheckTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	dead := srv.URL
	srv.Close()

	c := New(time.Second, 2, "")
	var got Result
	c.Check(context.Background(), []string{dead + "/x"}, func(r Result) { got = r })

	if got.Err == nil {
		t.Fatal("probe against closed server should report a transport error")
	}
	if !got.Dead() {
		t.Error("transport failure must count as dead")
	}
	if got.Status != 0 {
		t.Errorf("status = %d, want 0 on transport failure", got.Status)
	}
}

func TestCheckEmptyInput(t *testing.T) {
	c := New(time.Second, 4, "")
	called := false
	c.Check(context.Background(), nil, func(Result) { called = true })
	if called {
		t.Error("sink invoked with no URLs")
	}
}

func TestNewDefaultsWorkerCount(t *testing.T) {
	c := New(time.Second, 0, "")
	if c.Workers != 10 {
		t.Errorf("Workers = %d, want default 10", c.Workers)
	}
}

func TestDead(t *testing.T) {
	tests := []struct {
		name string
		r    Result
		want bool
	}{
		{"ok", Result{Status: 200}, false},
		{"redirect class", Result{Status: 301}, false},
		{"client error", Result{Status: 404}, true},
		{"server error", Result{Status: 503}, true},
		{"transport error", Result{Err: context.DeadlineExceeded}, true},
	}
	for _, tt := range tests {
		if got := tt.r.Dead(); got != tt.want {
			t.Errorf("%s: Dead() = %v, want %v", tt.name, got, tt.want)
		}
	}
}
