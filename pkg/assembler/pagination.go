package assembler

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/davyos/siteforge/models"
	"github.com/davyos/siteforge/pkg/htmldoc"
	"github.com/davyos/siteforge/pkg/sitemap"
)

// Stable ids the pagination pass owns on a listing page. The class names are
// the legacy fallback matched on pages built before the ids existed.
const (
	gridID           = "article-grid"
	categoryNavID    = "category-nav"
	paginationID     = "pagination"
	legacyNavClass   = "category-filter"
	legacyPagerClass = "pagination"
)

// buildListing groups the article set into fixed-size pages. Page 1
// overwrites the listing index; pages 2..N are emitted under
// {section}/page/{n}/index.html. Every page gets a rebuilt content grid, a
// category strip and a pager.
func (a *Assembler) buildListing() error {
	section := a.Config.ContentDir
	listingRel := section + "/index.html"

	raw, err := os.ReadFile(filepath.Join(a.RootDir, filepath.FromSlash(listingRel)))
	if err != nil {
		// The listing template is a config gap, not a fatal defect.
		a.Logger.Warn("listing index not found, skipping pagination", "file", listingRel, "error", err)
		return nil
	}

	size := a.Config.PageSize
	pages := (len(a.Articles) + size - 1) / size
	if pages == 0 {
		pages = 1
	}

	today := a.now().Format("2006-01-02")
	for n := 1; n <= pages; n++ {
		rel := listingRel
		if n > 1 {
			rel = fmt.Sprintf("%s/page/%d/index.html", section, n)
		}

		doc, err := htmldoc.Parse(rel, bytes.NewReader(raw))
		if err != nil {
			return fmt.Errorf("failed to parse listing template: %w", err)
		}

		a.linkPass(doc)
		a.layoutSync(doc)
		a.ensureSiteSchema(doc)

		start := (n - 1) * size
		end := start + size
		if end > len(a.Articles) {
			end = len(a.Articles)
		}
		a.renderListingPage(doc, n, pages, a.Articles[start:end])

		if err := doc.Save(a.RootDir); err != nil {
			a.Logger.Error("failed to save listing page", "file", rel, "error", err)
			continue
		}

		if n == 1 {
			a.Sitemap.Add("/"+section+"/", today, sitemap.Daily, 0.9)
		} else {
			a.Sitemap.Add(fmt.Sprintf("/%s/page/%d/", section, n), today, sitemap.Weekly, 0.6)
		}
	}
	return nil
}

// renderListingPage rebuilds the grid, the category strip and the pager for
// one page slice. Prior instances are replaced wholesale, so re-running the
// build never stacks duplicates.
func (a *Assembler) renderListingPage(doc *htmldoc.Document, page, pages int, slice []models.ArticleMeta) {
	grid := doc.Find("#" + gridID).First()
	if grid.Length() == 0 {
		grid = doc.Find(`div[class*="grid-cols"]`).First()
	}
	if grid.Length() == 0 {
		a.Logger.Warn("listing page has no content grid", "file", doc.Path)
		return
	}
	grid.SetAttr("id", gridID)
	grid.SetHtml(a.articleCards(slice))

	// Category strip: match by id first, then the legacy class.
	doc.Find("#" + categoryNavID).Remove()
	doc.Find("." + legacyNavClass).Remove()
	grid.BeforeHtml(a.categoryStrip())

	doc.Find("#" + paginationID).Remove()
	doc.Find("nav." + legacyPagerClass).Remove()
	grid.AfterHtml(a.pager(page, pages))
}

// articleCards renders one category-styled card per article.
func (a *Assembler) articleCards(slice []models.ArticleMeta) string {
	var b strings.Builder
	for _, meta := range slice {
		cat := a.Classifier.Lookup(meta.Category)
		fmt.Fprintf(&b,
			`<article class="bg-white rounded-2xl shadow-sm border border-slate-100 overflow-hidden hover:shadow-xl transition flex flex-col h-full">`+
				`<a href="%s" class="block h-40 bg-slate-100 relative overflow-hidden group">`+
				`<div class="absolute inset-0 flex items-center justify-center"><i class="fa-solid %s text-5xl text-slate-400"></i></div></a>`+
				`<div class="p-5 flex-1 flex flex-col">`+
				`<div class="flex items-center gap-2 text-[10px] text-slate-500 mb-2">`+
				`<span class="uppercase tracking-wide font-bold">%s</span>`+
				`<span><i class="fa-regular fa-calendar mr-1"></i>%s</span></div>`+
				`<h3 class="font-bold text-slate-900 mb-2 leading-snug line-clamp-2">`+
				`<a href="%s" class="hover:text-brand-600 transition">%s</a></h3>`+
				`<p class="text-slate-500 text-xs mb-4 flex-1 line-clamp-3">%s</p>`+
				`<a href="%s" class="text-brand-600 font-bold text-xs hover:underline mt-auto">Read Article <i class="fa-solid fa-arrow-right ml-1"></i></a>`+
				`</div></article>`,
			attrEscape(meta.CanonicalURL), attrEscape(cat.Icon), textEscape(cat.Name),
			textEscape(meta.PublishDate),
			attrEscape(meta.CanonicalURL), textEscape(meta.Title),
			textEscape(meta.Description),
			attrEscape(meta.CanonicalURL))
	}
	return b.String()
}

// categoryStrip renders one pill per category in table order.
func (a *Assembler) categoryStrip() string {
	var b strings.Builder
	fmt.Fprintf(&b, `<div id="%s" class="flex flex-wrap gap-2 mb-8">`, categoryNavID)
	for _, cat := range a.Classifier.All() {
		fmt.Fprintf(&b,
			`<span class="inline-flex items-center gap-1 px-3 py-1 rounded-full bg-slate-100 text-slate-600 text-xs font-bold">`+
				`<i class="fa-solid %s"></i>%s</span>`,
			attrEscape(cat.Icon), textEscape(cat.Name))
	}
	b.WriteString(`</div>`)
	return b.String()
}

// pager renders Prev/Next (omitted at the edges) and one control per page,
// with the current page non-interactive.
func (a *Assembler) pager(page, pages int) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<nav id="%s" class="flex items-center justify-center gap-2 mt-10" aria-label="Pagination">`, paginationID)

	if page > 1 {
		fmt.Fprintf(&b, `<a href="%s" class="px-3 py-2 rounded-lg border border-slate-200 text-sm hover:bg-slate-50">Prev</a>`,
			attrEscape(a.listingPageURL(page-1)))
	}
	for n := 1; n <= pages; n++ {
		if n == page {
			fmt.Fprintf(&b, `<span class="px-3 py-2 rounded-lg bg-brand-600 text-white text-sm font-bold" aria-current="page">%d</span>`, n)
			continue
		}
		fmt.Fprintf(&b, `<a href="%s" class="px-3 py-2 rounded-lg border border-slate-200 text-sm hover:bg-slate-50">%d</a>`,
			attrEscape(a.listingPageURL(n)), n)
	}
	if page < pages {
		fmt.Fprintf(&b, `<a href="%s" class="px-3 py-2 rounded-lg border border-slate-200 text-sm hover:bg-slate-50">Next</a>`,
			attrEscape(a.listingPageURL(page+1)))
	}

	b.WriteString(`</nav>`)
	return b.String()
}

func (a *Assembler) listingPageURL(n int) string {
	if n <= 1 {
		return "/" + a.Config.ContentDir + "/"
	}
	return fmt.Sprintf("/%s/page/%d/", a.Config.ContentDir, n)
}
