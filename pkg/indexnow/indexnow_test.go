package indexnow

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestSubmit(t *testing.T) {
	var got payload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json; charset=utf-8" {
			t.Errorf("content type = %q", ct)
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Errorf("payload not JSON: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	c := &Client{
		Endpoint:    srv.URL,
		Host:        "example.com",
		Key:         "abc123",
		KeyLocation: "https://example.com/abc123.txt",
	}
	urls := []string{"https://example.com/", "https://example.com/blog/post"}
	if err := c.Submit(context.Background(), urls); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if got.Host != "example.com" || got.Key != "abc123" {
		t.Errorf("identity fields = %+v", got)
	}
	if got.KeyLocation != "https://example.com/abc123.txt" {
		t.Errorf("keyLocation = %q", got.KeyLocation)
	}
	if len(got.URLList) != 2 || got.URLList[1] != "https://example.com/blog/post" {
		t.Errorf("urlList = %v", got.URLList)
	}
}

func TestSubmitRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := &Client{Endpoint: srv.URL, Host: "example.com", Key: "k"}
	if err := c.Submit(context.Background(), []string{"https://example.com/"}); err == nil {
		t.Fatal("4xx response should be an error")
	}
}

func TestSubmitEmptyList(t *testing.T) {
	c := &Client{Endpoint: "https://unused.invalid", Host: "example.com", Key: "k"}
	if err := c.Submit(context.Background(), nil); err == nil {
		t.Fatal("empty URL list should be rejected before any request")
	}
}

func TestURLsFromSitemap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sitemap.xml")
	doc := `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>https://example.com/</loc><priority>1.0</priority></url>
  <url><loc>https://example.com/blog/</loc></url>
  <url><loc></loc></url>
</urlset>`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	urls, err := URLsFromSitemap(path)
	if err != nil {
		t.Fatalf("URLsFromSitemap: %v", err)
	}
	want := []string{"https://example.com/", "https://example.com/blog/"}
	if len(urls) != len(want) {
		t.Fatalf("urls = %v, want %v", urls, want)
	}
	for i := range want {
		if urls[i] != want[i] {
			t.Errorf("urls[%d] = %q, want %q", i, urls[i], want[i])
		}
	}
}

func TestURLsFromSitemapMissingFile(t *testing.T) {
	if _, err := URLsFromSitemap(filepath.Join(t.TempDir(), "absent.xml")); err == nil {
		t.Fatal("missing sitemap should be an error")
	}
}
