// Package assembler applies the per-document transformation: link
// canonicalization, layout sync against the asset bundle, head
// reconstruction, related-content injection, listing pagination and the
// homepage grid rebuild. The transformation is idempotent: running it on its
// own output changes nothing beyond timestamp fields.
package assembler

import (
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/davyos/siteforge/models"
	"github.com/davyos/siteforge/pkg/assets"
	"github.com/davyos/siteforge/pkg/category"
	"github.com/davyos/siteforge/pkg/htmldoc"
	"github.com/davyos/siteforge/pkg/linkres"
	"github.com/davyos/siteforge/pkg/sitemap"
)

// Assembler rewrites every document in the site tree. The asset bundle and
// the article metadata set must be complete before Run is called.
type Assembler struct {
	RootDir    string
	Config     *models.SiteConfig
	Assets     *assets.Bundle
	Articles   []models.ArticleMeta
	Resolver   *linkres.Resolver
	Classifier *category.Classifier
	Sitemap    *sitemap.Collector
	Logger     *slog.Logger

	// Now stamps time-varying sitemap fields; overridable in tests.
	Now func() time.Time
}

func (a *Assembler) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

// Run processes the whole tree: articles first, then every other page, then
// the paginated listing. A failure on one document is logged and does not
// abort the rest.
func (a *Assembler) Run() error {
	processed := make(map[string]bool)

	for _, meta := range a.Articles {
		if err := a.assembleArticle(meta); err != nil {
			a.Logger.Error("failed to assemble article", "file", meta.SourcePath, "error", err)
		} else {
			a.Sitemap.Add(meta.CanonicalURL, meta.PublishDate, sitemap.Monthly, 0.7)
		}
		processed[meta.SourcePath] = true
	}

	listingPath := a.Config.ContentDir + "/index.html"
	others, err := a.collectPages(processed, listingPath)
	if err != nil {
		return err
	}
	for _, rel := range others {
		if err := a.assembleStatic(rel); err != nil {
			a.Logger.Error("failed to assemble page", "file", rel, "error", err)
			continue
		}
		a.addStaticSitemapEntry(rel)
	}

	if err := a.buildListing(); err != nil {
		a.Logger.Error("failed to build listing pages", "error", err)
	}
	return nil
}

// collectPages finds every HTML file that is neither an article nor the
// listing index (pagination rebuilds that) nor a generated pagination page.
func (a *Assembler) collectPages(processed map[string]bool, listingPath string) ([]string, error) {
	pageDir := a.Config.ContentDir + "/page/"
	var pages []string

	err := filepath.WalkDir(a.RootDir, func(p string, d fs.DirEntry, err error) error {
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
		rel, err := filepath.Rel(a.RootDir, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if processed[rel] || rel == listingPath || strings.HasPrefix(rel, pageDir) {
			return nil
		}
		pages = append(pages, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk site tree: %w", err)
	}
	return pages, nil
}

func (a *Assembler) assembleArticle(meta models.ArticleMeta) error {
	doc, err := htmldoc.Load(a.RootDir, meta.SourcePath)
	if err != nil {
		return err
	}
	a.linkPass(doc)
	a.layoutSync(doc)
	a.rebuildHead(doc, meta)
	a.injectRelated(doc, meta)
	return doc.Save(a.RootDir)
}

func (a *Assembler) assembleStatic(rel string) error {
	doc, err := htmldoc.Load(a.RootDir, rel)
	if err != nil {
		return err
	}
	a.linkPass(doc)
	if rel != a.Config.TemplatePath {
		a.layoutSync(doc)
	} else {
		a.updateHomepage(doc)
	}
	a.ensureSiteSchema(doc)
	return doc.Save(a.RootDir)
}

// linkPass canonicalizes every hyperlink and hardens off-site links with the
// safety relations. The rel union never duplicates tokens.
func (a *Assembler) linkPass(doc *htmldoc.Document) {
	doc.Find("a[href]").Each(func(_ int, link *goquery.Selection) {
		href, _ := link.Attr("href")
		href = strings.TrimSpace(href)
		clean := a.Resolver.Canonicalize(href, doc.Path)
		link.SetAttr("href", clean)

		if a.Resolver.External(clean) {
			htmldoc.AddTokens(link, "rel", "noopener", "noreferrer", "nofollow")
		}
	})
}

// layoutSync replaces the page's nav and footer with fresh clones of the
// template fragments, inserting them when absent. The template itself is the
// source of truth and is never synced against its own extraction.
func (a *Assembler) layoutSync(doc *htmldoc.Document) {
	if nav := a.Assets.CloneNav(); nav != nil {
		if old := doc.Find("nav").First(); old.Length() > 0 {
			old.ReplaceWithSelection(nav)
		} else if body := doc.Find("body").First(); body.Length() > 0 {
			body.PrependSelection(nav)
		}
	}
	if footer := a.Assets.CloneFooter(); footer != nil {
		if old := doc.Find("footer").First(); old.Length() > 0 {
			old.ReplaceWithSelection(footer)
		} else if body := doc.Find("body").First(); body.Length() > 0 {
			body.AppendSelection(footer)
		}
	}
}

// injectRelated clears and repopulates the recommended-reading container
// with up to RelatedCount other articles in metadata-scan order.
func (a *Assembler) injectRelated(doc *htmldoc.Document, current models.ArticleMeta) {
	article := doc.Find("article").First()
	if article.Length() == 0 {
		return
	}

	if doc.Find("div#recommended-reading").Length() == 0 {
		article.AppendHtml(`<div id="recommended-reading" class="mt-12 pt-8 border-t border-slate-200"></div>`)
	}
	rec := doc.Find("div#recommended-reading").First()

	var b strings.Builder
	b.WriteString(`<h3 class="text-2xl font-bold text-slate-900 mb-6">Recommended Reading</h3>`)
	b.WriteString(`<div class="grid grid-cols-1 md:grid-cols-2 gap-6">`)
	count := 0
	for _, other := range a.Articles {
		if other.SourcePath == current.SourcePath {
			continue
		}
		if count >= a.Config.RelatedCount {
			break
		}
		fmt.Fprintf(&b,
			`<a href="%s" class="block group bg-slate-50 rounded-xl p-6 border border-slate-100 hover:bg-white hover:shadow-md transition">`+
				`<h4 class="font-bold text-slate-900 group-hover:text-brand-600 transition mb-2">%s</h4>`+
				`<p class="text-sm text-slate-500 line-clamp-2">%s</p></a>`,
			attrEscape(other.CanonicalURL), textEscape(other.Title), textEscape(other.Description))
		count++
	}
	b.WriteString(`</div>`)
	rec.SetHtml(b.String())
}

// addStaticSitemapEntry records a non-article page with tiered defaults.
func (a *Assembler) addStaticSitemapEntry(rel string) {
	today := a.now().Format("2006-01-02")
	relURL := a.Resolver.Canonicalize("/"+rel, rel)

	switch {
	case rel == a.Config.TemplatePath:
		a.Sitemap.Add("/", today, sitemap.Daily, 1.0)
	case isBoilerplate(rel):
		a.Sitemap.Add(relURL, today, sitemap.Yearly, 0.3)
	default:
		a.Sitemap.Add(relURL, today, sitemap.Monthly, 0.5)
	}
}

// isBoilerplate flags legal and boilerplate pages that rank lowest.
func isBoilerplate(rel string) bool {
	name := strings.TrimSuffix(filepath.Base(rel), ".html")
	switch name {
	case "privacy", "terms", "imprint", "disclaimer", "cookies":
		return true
	}
	return false
}
