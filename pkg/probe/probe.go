// Package probe runs bounded-concurrency liveness checks over external URLs.
// One HEAD request per distinct URL, a short per-request timeout, no retries.
package probe

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// Result is the outcome of one probe. Results arrive in completion order.
type Result struct {
	URL    string
	Status int   // HTTP status, 0 on transport failure
	Err    error // non-nil on transport failure or timeout
}

// Dead reports whether the target should be treated as unreachable.
func (r Result) Dead() bool {
	return r.Err != nil || r.Status >= 400
}

// Checker probes URLs with a fixed worker pool.
type Checker struct {
	Client    *http.Client
	Workers   int
	UserAgent string
}

// New builds a checker with the given per-request timeout and pool size.
func New(timeout time.Duration, workers int, userAgent string) *Checker {
	if workers <= 0 {
		workers = 10
	}
	return &Checker{
		Client:    &http.Client{Timeout: timeout},
		Workers:   workers,
		UserAgent: userAgent,
	}
}

// Check probes every URL and streams results to sink as they complete. A
// timed-out probe surfaces as a transport failure; there is no ordering
// guarantee among results.
func (c *Checker) Check(ctx context.Context, urls []string, sink func(Result)) {
	jobs := make(chan string, len(urls))
	results := make(chan Result, len(urls))

	var wg sync.WaitGroup
	for w := 0; w < c.Workers; w++ {
		wg.Add(1)
		go c.worker(ctx, &wg, jobs, results)
	}

	for _, u := range urls {
		jobs <- u
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	for r := range results {
		sink(r)
	}
}

func (c *Checker) worker(ctx context.Context, wg *sync.WaitGroup, jobs <-chan string, results chan<- Result) {
	defer wg.Done()
	for u := range jobs {
		results <- c.probe(ctx, u)
	}
}

func (c *Checker) probe(ctx context.Context, url string) Result {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return Result{URL: url, Err: err}
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return Result{URL: url, Err: err}
	}
	resp.Body.Close()
	return Result{URL: url, Status: resp.StatusCode}
}
