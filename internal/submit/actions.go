// Package submit wires the CLI submit command: push the sitemap's URL list
// to the indexing endpoint.
package submit

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	buildcmd "github.com/davyos/siteforge/internal/build"
	"github.com/davyos/siteforge/pkg/indexnow"
)

func SubmitAction(c *cli.Context) error {
	logger := buildcmd.NewLogger(c)
	root := c.String("root")

	cfg, err := buildcmd.LoadConfig(c, logger)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(2)
	}

	if cfg.IndexNow.Key == "" {
		return fmt.Errorf("indexnow key not configured")
	}

	host := cfg.IndexNow.Host
	if host == "" && cfg.Domain != "" {
		if u, err := url.Parse(cfg.Domain); err == nil {
			host = u.Host
		}
	}
	if host == "" {
		return fmt.Errorf("indexnow host not configured and no domain to derive it from")
	}

	sitemapPath := filepath.Join(root, filepath.FromSlash(cfg.SitemapPath))
	urls, err := indexnow.URLsFromSitemap(sitemapPath)
	if err != nil {
		return err
	}
	if len(urls) == 0 {
		logger.Info("sitemap has no URLs to submit")
		return nil
	}

	client := &indexnow.Client{
		Endpoint:    cfg.IndexNow.Endpoint,
		Host:        host,
		Key:         cfg.IndexNow.Key,
		KeyLocation: cfg.IndexNow.KeyLocation,
	}
	logger.Info("submitting URLs", "count", len(urls), "endpoint", cfg.IndexNow.Endpoint)
	if err := client.Submit(c.Context, urls); err != nil {
		return err
	}
	logger.Info("submission accepted", "count", len(urls))
	return nil
}
