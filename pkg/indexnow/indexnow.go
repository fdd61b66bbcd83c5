// Package indexnow pushes the emitted sitemap's URL list to a search
// indexing endpoint. It consumes the sitemap file and nothing else.
package indexnow

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"net/http"
	"os"
)

// Client submits URL batches to one indexing endpoint.
type Client struct {
	Endpoint    string
	Host        string
	Key         string
	KeyLocation string

	HTTPClient *http.Client
}

type payload struct {
	Host        string   `json:"host"`
	Key         string   `json:"key"`
	KeyLocation string   `json:"keyLocation"`
	URLList     []string `json:"urlList"`
}

// Submit POSTs the URL list. The endpoint acknowledges with 200 or 202; any
// other status is an error.
func (c *Client) Submit(ctx context.Context, urls []string) error {
	if len(urls) == 0 {
		return fmt.Errorf("no URLs to submit")
	}

	body, err := json.Marshal(payload{
		Host:        c.Host,
		Key:         c.Key,
		KeyLocation: c.KeyLocation,
		URLList:     urls,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("submission rejected, status code: %d", resp.StatusCode)
	}
	return nil
}

type sitemapURL struct {
	Loc string `xml:"loc"`
}

type sitemapURLSet struct {
	URLs []sitemapURL `xml:"url"`
}

// URLsFromSitemap reads every <loc> value out of a sitemap file.
func URLsFromSitemap(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sitemap: %w", err)
	}

	var set sitemapURLSet
	if err := xml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("failed to parse sitemap: %w", err)
	}

	urls := make([]string, 0, len(set.URLs))
	for _, u := range set.URLs {
		if u.Loc != "" {
			urls = append(urls, u.Loc)
		}
	}
	return urls, nil
}
