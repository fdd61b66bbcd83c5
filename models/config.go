// Package models defines data structures shared across the build and audit pipelines.
package models

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// CategoryRule maps a category slug to its display metadata and the title
// keywords that select it. Rules are evaluated in declaration order.
type CategoryRule struct {
	Slug     string   `yaml:"slug"`
	Name     string   `yaml:"name"`
	Icon     string   `yaml:"icon"`
	Keywords []string `yaml:"keywords"`
}

// ProbeConfig controls the external link liveness checker.
type ProbeConfig struct {
	Workers        int    `yaml:"workers"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	UserAgent      string `yaml:"user_agent"`
}

// AuditConfig holds audit-only toggles.
type AuditConfig struct {
	// RequireBreadcrumb turns the breadcrumb presence check into a recorded
	// issue on non-index pages. The check is always computed.
	RequireBreadcrumb bool `yaml:"require_breadcrumb"`
	// CheckLanguage detects the dominant language of each page's text and
	// warns when it contradicts the declared <html lang> attribute.
	CheckLanguage bool `yaml:"check_language"`
	TopPages      int  `yaml:"top_pages"`
}

// IndexNowConfig identifies the site to the index-submission endpoint.
type IndexNowConfig struct {
	Endpoint    string `yaml:"endpoint"`
	Key         string `yaml:"key"`
	KeyLocation string `yaml:"key_location"`
	Host        string `yaml:"host"`
}

// SiteConfig is the full configuration surface for a build/audit run.
// Zero values are filled in by defaults; CLI flags override file values.
type SiteConfig struct {
	Domain       string `yaml:"domain"`       // e.g. https://example.com, no trailing slash
	SiteName     string `yaml:"site_name"`    // used in structured data records
	TemplatePath string `yaml:"template"`     // canonical template, relative to root
	ContentDir   string `yaml:"content_dir"`  // content section, relative to root
	SitemapPath  string `yaml:"sitemap_path"` // emitted sitemap, relative to root

	PageSize     int `yaml:"page_size"`     // entries per listing page
	RelatedCount int `yaml:"related_count"` // recommended-reading cards per article

	AlternateLangs []string `yaml:"alternate_langs"` // hreflang values besides x-default

	IgnorePaths       []string `yaml:"ignore_paths"`        // path segments skipped during collection
	IgnoreURLPrefixes []string `yaml:"ignore_url_prefixes"` // hrefs never resolved or graphed
	IgnoreFilePattern string   `yaml:"ignore_file_pattern"` // regexp of file names excluded from audit

	SitemapExclude   []string           `yaml:"sitemap_exclude"`   // regexps of URLs dropped from the sitemap
	LegacyPriorities map[string]float64 `yaml:"legacy_priorities"` // URL -> pinned priority

	Penalties  map[string]int `yaml:"penalties"` // issue type -> score deduction
	Categories []CategoryRule `yaml:"categories"`

	Audit    AuditConfig    `yaml:"audit"`
	Probe    ProbeConfig    `yaml:"probe"`
	IndexNow IndexNowConfig `yaml:"indexnow"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *SiteConfig {
	return &SiteConfig{
		TemplatePath:   "index.html",
		ContentDir:     "blog",
		SitemapPath:    "sitemap.xml",
		PageSize:       6,
		RelatedCount:   2,
		AlternateLangs: []string{"zh"},
		IgnorePaths:    []string{".git", "node_modules"},
		IgnoreURLPrefixes: []string{
			"/go/", "/cdn-cgi/", "javascript:", "mailto:", "#", "tel:",
		},
		IgnoreFilePattern: `google.*\.html|404\.html`,
		SitemapExclude:    []string{`google.*\.html`, `/404`, `/drafts/`},
		Penalties: map[string]int{
			"dead_link_local":    10,
			"dead_link_external": 5,
			"missing_h1":         5,
			"bad_url_format":     2,
			"missing_schema":     2,
			"orphan_page":        5,
		},
		Audit: AuditConfig{TopPages: 10},
		Probe: ProbeConfig{
			Workers:        10,
			TimeoutSeconds: 5,
			UserAgent:      "Mozilla/5.0 (compatible; siteforge-audit/1.0)",
		},
		IndexNow: IndexNowConfig{
			Endpoint: "https://api.indexnow.org/indexnow",
		},
	}
}

// LoadConfig reads a YAML config file and overlays it on the defaults.
// A missing file is not an error; the defaults apply as-is.
func LoadConfig(path string) (*SiteConfig, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.fillDefaults()
	return cfg, nil
}

// fillDefaults restores required values a sparse config file left zeroed.
func (c *SiteConfig) fillDefaults() {
	d := DefaultConfig()
	if c.TemplatePath == "" {
		c.TemplatePath = d.TemplatePath
	}
	if c.ContentDir == "" {
		c.ContentDir = d.ContentDir
	}
	if c.SitemapPath == "" {
		c.SitemapPath = d.SitemapPath
	}
	if c.PageSize <= 0 {
		c.PageSize = d.PageSize
	}
	if c.RelatedCount <= 0 {
		c.RelatedCount = d.RelatedCount
	}
	if len(c.IgnoreURLPrefixes) == 0 {
		c.IgnoreURLPrefixes = d.IgnoreURLPrefixes
	}
	if len(c.IgnorePaths) == 0 {
		c.IgnorePaths = d.IgnorePaths
	}
	if c.IgnoreFilePattern == "" {
		c.IgnoreFilePattern = d.IgnoreFilePattern
	}
	if len(c.Penalties) == 0 {
		c.Penalties = d.Penalties
	}
	if c.Audit.TopPages <= 0 {
		c.Audit.TopPages = d.Audit.TopPages
	}
	if c.Probe.Workers <= 0 {
		c.Probe.Workers = d.Probe.Workers
	}
	if c.Probe.TimeoutSeconds <= 0 {
		c.Probe.TimeoutSeconds = d.Probe.TimeoutSeconds
	}
	if c.Probe.UserAgent == "" {
		c.Probe.UserAgent = d.Probe.UserAgent
	}
	if c.IndexNow.Endpoint == "" {
		c.IndexNow.Endpoint = d.IndexNow.Endpoint
	}
}
