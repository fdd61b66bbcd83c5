// Package audit re-scans the assembled tree, builds the inbound-link graph,
// flags dead links, orphans and structural defects, and keeps a running
// health score.
package audit

import (
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/davyos/siteforge/models"
	"github.com/davyos/siteforge/pkg/htmldoc"
	"github.com/davyos/siteforge/pkg/linkres"
)

// Auditor walks every document once. It never mutates the tree; all output
// goes to the report and the link graph.
type Auditor struct {
	RootDir  string
	Config   *models.SiteConfig
	Resolver *linkres.Resolver
	Report   *models.Report
	Logger   *slog.Logger

	ignoreFiles *regexp.Regexp
	langCheck   *langChecker

	files    []string
	graph    *LinkGraph
	external []string
	seenExt  map[string]struct{}
}

// New prepares an auditor. The ignore-file pattern comes from config; an
// invalid pattern disables file filtering rather than failing the run.
func New(rootDir string, cfg *models.SiteConfig, report *models.Report, logger *slog.Logger) *Auditor {
	a := &Auditor{
		RootDir: rootDir,
		Config:  cfg,
		Resolver: &linkres.Resolver{
			RootDir:        rootDir,
			Domain:         cfg.Domain,
			IgnorePrefixes: cfg.IgnoreURLPrefixes,
		},
		Report:  report,
		Logger:  logger,
		graph:   NewLinkGraph(),
		seenExt: make(map[string]struct{}),
	}
	if cfg.IgnoreFilePattern != "" {
		re, err := regexp.Compile(cfg.IgnoreFilePattern)
		if err != nil {
			logger.Warn("invalid ignore_file_pattern, auditing all files", "error", err)
		} else {
			a.ignoreFiles = re
		}
	}
	if cfg.Audit.CheckLanguage {
		a.langCheck = newLangChecker()
	}
	return a
}

// Run audits the full tree: per-file checks, the internal link pass, then
// graph analysis. Individual file failures are logged and skipped.
func (a *Auditor) Run() error {
	a.autoConfigure()

	if err := a.collectFiles(); err != nil {
		return err
	}
	a.Logger.Info("collected files for audit", "count", len(a.files))

	for _, rel := range a.files {
		if err := a.auditFile(rel); err != nil {
			a.Logger.Error("could not audit file", "file", rel, "error", err)
		}
	}

	a.flagOrphans()
	return nil
}

// Graph exposes the inbound-link graph built during the run.
func (a *Auditor) Graph() *LinkGraph { return a.graph }

// ExternalLinks returns the distinct off-site URLs discovered, in first-seen
// order, for the liveness checker.
func (a *Auditor) ExternalLinks() []string { return a.external }

// Files returns the audited file set.
func (a *Auditor) Files() []string { return a.files }

// autoConfigure detects the base URL from the root document's canonical link
// or og:url when the config leaves the domain empty.
func (a *Auditor) autoConfigure() {
	if a.Config.Domain != "" {
		return
	}
	doc, err := htmldoc.Load(a.RootDir, a.Config.TemplatePath)
	if err != nil {
		a.Logger.Warn("root template not readable, base URL unknown", "error", err)
		return
	}

	if href, ok := doc.Find(`link[rel="canonical"]`).First().Attr("href"); ok && href != "" {
		a.Resolver.Domain = strings.TrimSuffix(href, "/")
		a.Logger.Info("base URL detected from canonical link", "domain", a.Resolver.Domain)
		return
	}
	if content, ok := doc.Find(`meta[property="og:url"]`).First().Attr("content"); ok && content != "" {
		a.Resolver.Domain = strings.TrimSuffix(content, "/")
		a.Logger.Info("base URL detected from og:url", "domain", a.Resolver.Domain)
	}
}

func (a *Auditor) collectFiles() error {
	return filepath.WalkDir(a.RootDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			for _, seg := range a.Config.IgnorePaths {
				if d.Name() == seg {
					return filepath.SkipDir
				}
			}
			return nil
		}
		if !strings.HasSuffix(d.Name(), ".html") {
			return nil
		}
		if a.ignoreFiles != nil && a.ignoreFiles.MatchString(d.Name()) {
			return nil
		}
		rel, err := filepath.Rel(a.RootDir, p)
		if err != nil {
			return err
		}
		a.files = append(a.files, filepath.ToSlash(rel))
		return nil
	})
}

func (a *Auditor) auditFile(rel string) error {
	doc, err := htmldoc.Load(a.RootDir, rel)
	if err != nil {
		return err
	}

	a.checkStructure(doc, rel)

	doc.Find("a[href]").Each(func(_ int, link *goquery.Selection) {
		href, _ := link.Attr("href")
		a.auditLink(rel, strings.TrimSpace(href), link)
	})
	return nil
}

// checkStructure runs the per-document semantic checks.
func (a *Auditor) checkStructure(doc *htmldoc.Document, rel string) {
	if n := doc.Find("h1").Length(); n != 1 {
		a.Report.Add(rel, "missing_h1", models.SeverityError,
			fmt.Sprintf("Found %d <h1> tags. Should be exactly 1.", n))
	}

	if doc.Find(`script[type="application/ld+json"]`).Length() == 0 {
		a.Report.Add(rel, "missing_schema", models.SeverityWarn,
			"No structured data found.")
	}

	// Breadcrumb presence is always computed; whether it scores is a config
	// decision since not every static page carries one.
	if a.Config.Audit.RequireBreadcrumb && rel != a.Config.TemplatePath {
		if doc.Find(`[aria-label="breadcrumb"]`).Length() == 0 &&
			doc.Find(`[class*="breadcrumb"]`).Length() == 0 {
			a.Report.Add(rel, "missing_breadcrumb", models.SeverityWarn,
				"No breadcrumb navigation found.")
		}
	}

	if a.langCheck != nil {
		a.langCheck.check(a, doc, rel)
	}
}

// auditLink classifies one href as ignored, external or internal and records
// the consequences.
func (a *Auditor) auditLink(source, href string, link *goquery.Selection) {
	if href == "" || a.Resolver.Ignored(href) {
		return
	}

	if a.Resolver.External(href) {
		if _, seen := a.seenExt[href]; !seen {
			a.seenExt[href] = struct{}{}
			a.external = append(a.external, href)
		}
		if !htmldoc.HasToken(link, "rel", "noopener") && !htmldoc.HasToken(link, "rel", "noreferrer") {
			a.Report.Add(source, "unsafe_external_link", models.SeverityWarn,
				fmt.Sprintf("External link %q missing rel=noopener.", href))
		}
		return
	}

	for _, msg := range a.checkURLFormat(href) {
		a.Report.Add(source, "bad_url_format", models.SeverityWarn, msg)
	}

	base, _ := linkres.SplitSuffix(href)
	if base == "" {
		// Fragment- or query-only href: navigates nowhere, graphs nowhere.
		return
	}

	target, found := a.Resolver.Locate(href, source)
	if !found {
		a.Report.Add(source, "dead_link_local", models.SeverityError,
			fmt.Sprintf("Dead link: %q. Target file not found.", href))
		return
	}
	a.graph.AddEdge(target, source)
}

// checkURLFormat flags internal hrefs that deviate from the house format:
// root-relative, path-only, extension-less.
func (a *Auditor) checkURLFormat(href string) []string {
	var issues []string

	if !strings.HasPrefix(href, "/") && !strings.HasPrefix(href, "http") {
		issues = append(issues, fmt.Sprintf("Relative path used: %q. Should be absolute path starting with '/'.", href))
	}
	if a.Resolver.Domain != "" && strings.HasPrefix(href, a.Resolver.Domain) {
		issues = append(issues, fmt.Sprintf("Absolute URL used: %q. Should be path only.", href))
	}
	base, _ := linkres.SplitSuffix(href)
	if strings.HasSuffix(base, ".html") {
		issues = append(issues, fmt.Sprintf("URL contains .html extension: %q. Should be a clean URL.", href))
	}
	return issues
}

// flagOrphans raises an issue for every non-root document with zero inbound
// edges after the full pass.
func (a *Auditor) flagOrphans() {
	for _, rel := range a.files {
		if rel == a.Config.TemplatePath {
			continue
		}
		if a.graph.InboundCount(rel) == 0 {
			a.Report.Add(rel, "orphan_page", models.SeverityWarn,
				"Orphan page (0 inbound links).")
		}
	}
}
