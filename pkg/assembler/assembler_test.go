package assembler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/davyos/siteforge/models"
	"github.com/davyos/siteforge/pkg/assets"
	"github.com/davyos/siteforge/pkg/category"
	"github.com/davyos/siteforge/pkg/htmldoc"
	"github.com/davyos/siteforge/pkg/linkres"
	"github.com/davyos/siteforge/pkg/sitemap"
)

const testTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="utf-8">
	<title>Example | Home</title>
	<link rel="icon" type="image/png" href="/favicon.png">
	<link rel="stylesheet" href="/main.css">
	<script src="/app.js"></script>
</head>
<body>
	<nav><a href="/">Home</a><a href="/blog">Blog</a></nav>
	<main>
		<section>
			<h2>Latest Guides</h2>
			<div class="grid grid-cols-1 md:grid-cols-3 gap-6"><p>placeholder</p></div>
		</section>
	</main>
	<footer><p>Example footer</p></footer>
</body>
</html>`

const testListing = `<!DOCTYPE html>
<html lang="en">
<head><title>Blog | Example</title></head>
<body>
	<nav><a href="/old">Old Nav</a></nav>
	<main><div class="grid grid-cols-1 md:grid-cols-3 gap-6"><p>old cards</p></div></main>
	<footer><p>old footer</p></footer>
</body>
</html>`

func articlePage(title string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
	<title>%s | Example</title>
	<meta name="description" content="About %s.">
	<meta name="keywords" content="alpha, beta">
</head>
<body>
	<nav class="stale"><a href="/old">Stale Nav</a></nav>
	<article>
		<h1>%s</h1>
		<p>Body with <a href="post-b.html">sibling</a> and
		<a href="https://other.example.org/ref">outside reference</a>.</p>
	</article>
	<footer class="stale"><p>stale footer</p></footer>
</body>
</html>`, title, title, title)
}

func writeSiteFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(full, []byte(content), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

// setupSite writes the template, the listing index, a static page and three
// articles, and returns the root with the matching metadata set.
func setupSite(t *testing.T) (string, []models.ArticleMeta) {
	t.Helper()
	root := t.TempDir()
	writeSiteFile(t, root, "index.html", testTemplate)
	writeSiteFile(t, root, "about.html",
		`<html lang="en"><head><title>About | Example</title></head><body><main><h1>About</h1></main></body></html>`)
	writeSiteFile(t, root, "blog/index.html", testListing)

	titles := []string{"Post A", "Post B", "Post C"}
	dates := []string{"2025-03-01", "2025-02-01", "2025-01-01"}
	var articles []models.ArticleMeta
	for i, title := range titles {
		slug := strings.ToLower(strings.ReplaceAll(title, " ", "-"))
		writeSiteFile(t, root, "blog/"+slug+".html", articlePage(title))
		articles = append(articles, models.ArticleMeta{
			Title:        title,
			Description:  "About " + title + ".",
			PublishDate:  dates[i],
			CanonicalURL: "/blog/" + slug,
			SourcePath:   "blog/" + slug + ".html",
			Category:     "guides",
		})
	}
	return root, articles
}

func newTestAssembler(t *testing.T, root string, articles []models.ArticleMeta) *Assembler {
	t.Helper()

	cfg := models.DefaultConfig()
	cfg.Domain = "https://example.com"
	cfg.SiteName = "Example"

	tpl, err := htmldoc.Load(root, cfg.TemplatePath)
	if err != nil {
		t.Fatalf("load template: %v", err)
	}

	return &Assembler{
		RootDir:    root,
		Config:     cfg,
		Assets:     assets.Extract(tpl),
		Articles:   articles,
		Resolver:   &linkres.Resolver{RootDir: root, Domain: cfg.Domain, IgnorePrefixes: cfg.IgnoreURLPrefixes},
		Classifier: category.NewClassifier(nil),
		Sitemap:    sitemap.NewCollector(cfg.Domain, "/"+cfg.ContentDir, cfg.SitemapExclude, cfg.LegacyPriorities),
		Logger:     slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})),
		Now:        func() time.Time { return time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC) },
	}
}

func loadOutput(t *testing.T, root, rel string) *htmldoc.Document {
	t.Helper()
	doc, err := htmldoc.Load(root, rel)
	if err != nil {
		t.Fatalf("load %s: %v", rel, err)
	}
	return doc
}

// schemaRecords parses every structured-data block in the document, keyed by
// @type.
func schemaRecords(t *testing.T, doc *htmldoc.Document) map[string]map[string]any {
	t.Helper()
	records := make(map[string]map[string]any)
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		var record map[string]any
		if err := json.Unmarshal([]byte(s.Text()), &record); err != nil {
			t.Errorf("malformed structured data: %v", err)
			return
		}
		typ, _ := record["@type"].(string)
		records[typ] = record
	})
	return records
}

func TestRunSyncsLayout(t *testing.T) {
	root, articles := setupSite(t)
	a := newTestAssembler(t, root, articles)
	if err := a.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	// The article's stale nav is replaced by the template fragment.
	post := loadOutput(t, root, "blog/post-a.html")
	if got := post.Find("nav").First().Find("a").First().Text(); got != "Home" {
		t.Errorf("article nav first link = %q, want template's %q", got, "Home")
	}
	if got := post.Find("nav").Length(); got != 1 {
		t.Errorf("article has %d navs, want 1", got)
	}
	if got := post.Find("footer").First().Text(); !strings.Contains(got, "Example footer") {
		t.Errorf("article footer = %q, want template footer", got)
	}

	// A page without nav or footer gains both.
	about := loadOutput(t, root, "about.html")
	if about.Find("nav").Length() != 1 || about.Find("footer").Length() != 1 {
		t.Error("layout fragments not inserted into bare page")
	}

	// The template is the source of truth and keeps its own fragments.
	tpl := loadOutput(t, root, "index.html")
	if got := tpl.Find("nav").First().Find("a").First().Text(); got != "Home" {
		t.Errorf("template nav changed: %q", got)
	}
}

func TestRunHardensExternalLinks(t *testing.T) {
	root, articles := setupSite(t)
	a := newTestAssembler(t, root, articles)
	if err := a.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	post := loadOutput(t, root, "blog/post-a.html")
	ext := post.Find(`a[href="https://other.example.org/ref"]`).First()
	if ext.Length() == 0 {
		t.Fatal("external link missing after assembly")
	}
	for _, token := range []string{"noopener", "noreferrer", "nofollow"} {
		if !htmldoc.HasToken(ext, "rel", token) {
			t.Errorf("external link missing rel token %q", token)
		}
	}

	internal := post.Find(`a[href="/blog/post-b"]`).First()
	if internal.Length() == 0 {
		t.Fatal("sibling link not canonicalized to /blog/post-b")
	}
	if rel, ok := internal.Attr("rel"); ok && rel != "" {
		t.Errorf("internal link gained rel %q", rel)
	}
}

func TestRunRebuildsHead(t *testing.T) {
	root, articles := setupSite(t)
	a := newTestAssembler(t, root, articles)
	if err := a.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	post := loadOutput(t, root, "blog/post-a.html")

	if got := post.Find("title").Text(); got != "Post A | Example" {
		t.Errorf("page title not preserved: %q", got)
	}
	if got, _ := post.Find(`link[rel="canonical"]`).Attr("href"); got != "https://example.com/blog/post-a" {
		t.Errorf("canonical = %q", got)
	}
	if got, _ := post.Find(`meta[name="keywords"]`).Attr("content"); got != "alpha, beta" {
		t.Errorf("keywords not preserved: %q", got)
	}
	if got, _ := post.Find(`meta[name="robots"]`).Attr("content"); got != "index, follow" {
		t.Errorf("robots = %q", got)
	}
	if got, _ := post.Find(`meta[property="og:title"]`).Attr("content"); got != "Post A" {
		t.Errorf("og:title = %q", got)
	}
	if got, _ := post.Find(`meta[property="og:type"]`).Attr("content"); got != "article" {
		t.Errorf("og:type = %q", got)
	}
	if got, _ := post.Find(`meta[property="og:url"]`).Attr("content"); got != "https://example.com/blog/post-a" {
		t.Errorf("og:url = %q", got)
	}
	if got, _ := post.Find(`meta[property="og:description"]`).Attr("content"); got != "About Post A." {
		t.Errorf("og:description = %q", got)
	}
	if got, _ := post.Find(`meta[property="og:site_name"]`).Attr("content"); got != "Example" {
		t.Errorf("og:site_name = %q", got)
	}
	if got, _ := post.Find(`meta[name="twitter:card"]`).Attr("content"); got != "summary" {
		t.Errorf("twitter:card = %q", got)
	}
	if got, _ := post.Find(`meta[name="twitter:title"]`).Attr("content"); got != "Post A" {
		t.Errorf("twitter:title = %q", got)
	}
	if post.Find(`link[rel="alternate"][hreflang="zh"]`).Length() != 1 {
		t.Error("zh alternate missing")
	}
	if post.Find(`link[rel="alternate"][hreflang="x-default"]`).Length() != 1 {
		t.Error("x-default alternate missing")
	}
	if post.Find(`link[rel="icon"]`).Length() != 1 {
		t.Error("favicon not carried into rebuilt head")
	}
	if post.Find(`link[rel="stylesheet"]`).Length() != 1 || post.Find(`script[src="/app.js"]`).Length() != 1 {
		t.Error("shared head resources not carried into rebuilt head")
	}
}

func TestRunEmitsStructuredData(t *testing.T) {
	root, articles := setupSite(t)
	a := newTestAssembler(t, root, articles)
	if err := a.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	post := loadOutput(t, root, "blog/post-a.html")
	records := schemaRecords(t, post)

	posting, ok := records["BlogPosting"]
	if !ok {
		t.Fatal("BlogPosting record missing")
	}
	if posting["headline"] != "Post A" {
		t.Errorf("headline = %v", posting["headline"])
	}
	if posting["datePublished"] != "2025-03-01" {
		t.Errorf("datePublished = %v", posting["datePublished"])
	}
	entity, _ := posting["mainEntityOfPage"].(map[string]any)
	if entity["@id"] != "https://example.com/blog/post-a" {
		t.Errorf("mainEntityOfPage = %v", entity)
	}

	crumbs, ok := records["BreadcrumbList"]
	if !ok {
		t.Fatal("BreadcrumbList record missing")
	}
	items, _ := crumbs["itemListElement"].([]any)
	if len(items) != 3 {
		t.Fatalf("breadcrumb items = %d, want 3", len(items))
	}
	wantNames := []string{"Home", "Blog", "Post A"}
	for i, raw := range items {
		item, _ := raw.(map[string]any)
		if pos, _ := item["position"].(float64); int(pos) != i+1 {
			t.Errorf("item %d position = %v", i, item["position"])
		}
		if item["name"] != wantNames[i] {
			t.Errorf("item %d name = %v, want %q", i, item["name"], wantNames[i])
		}
	}

	// Pages without structured data receive the site identity record.
	about := loadOutput(t, root, "about.html")
	site, ok := schemaRecords(t, about)["WebSite"]
	if !ok {
		t.Fatal("WebSite record missing from static page")
	}
	if site["url"] != "https://example.com" {
		t.Errorf("WebSite url = %v", site["url"])
	}
}

func TestInjectRelated(t *testing.T) {
	root, articles := setupSite(t)
	a := newTestAssembler(t, root, articles)
	if err := a.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	post := loadOutput(t, root, "blog/post-a.html")
	rec := post.Find("div#recommended-reading").First()
	if rec.Length() == 0 {
		t.Fatal("recommended-reading container missing")
	}
	if got := rec.Find("a").Length(); got != a.Config.RelatedCount {
		t.Fatalf("related cards = %d, want %d", got, a.Config.RelatedCount)
	}
	if rec.Find(`a[href="/blog/post-a"]`).Length() > 0 {
		t.Error("article recommends itself")
	}
}

func TestBuildListingPagination(t *testing.T) {
	root := t.TempDir()
	writeSiteFile(t, root, "index.html", testTemplate)
	writeSiteFile(t, root, "blog/index.html", testListing)

	var articles []models.ArticleMeta
	for i := 1; i <= 13; i++ {
		articles = append(articles, models.ArticleMeta{
			Title:        fmt.Sprintf("Post %02d", i),
			Description:  "d",
			PublishDate:  fmt.Sprintf("2025-01-%02d", 31-i),
			CanonicalURL: fmt.Sprintf("/blog/post-%02d", i),
			SourcePath:   fmt.Sprintf("blog/post-%02d.html", i),
			Category:     "guides",
		})
	}

	a := newTestAssembler(t, root, articles)
	if err := a.buildListing(); err != nil {
		t.Fatalf("buildListing: %v", err)
	}

	// 13 articles at 6 per page give 3 pages.
	counts := map[string]int{
		"blog/index.html":        6,
		"blog/page/2/index.html": 6,
		"blog/page/3/index.html": 1,
	}
	for rel, want := range counts {
		doc := loadOutput(t, root, rel)
		grid := doc.Find("#article-grid").First()
		if grid.Length() == 0 {
			t.Fatalf("%s: article grid missing", rel)
		}
		if got := grid.Find("article").Length(); got != want {
			t.Errorf("%s: %d cards, want %d", rel, got, want)
		}
		if doc.Find("#category-nav").Length() != 1 {
			t.Errorf("%s: category strip count != 1", rel)
		}
	}

	page2 := loadOutput(t, root, "blog/page/2/index.html")
	pager := page2.Find("nav#pagination").First()
	if pager.Length() == 0 {
		t.Fatal("page 2 has no pager")
	}
	if got, _ := pager.Find("a:contains('Prev')").Attr("href"); got != "/blog/" {
		t.Errorf("Prev href = %q, want /blog/", got)
	}
	if got, _ := pager.Find("a:contains('Next')").Attr("href"); got != "/blog/page/3/" {
		t.Errorf("Next href = %q, want /blog/page/3/", got)
	}
	if got := pager.Find(`span[aria-current="page"]`).Text(); got != "2" {
		t.Errorf("current page marker = %q, want 2", got)
	}

	page1 := loadOutput(t, root, "blog/index.html")
	if page1.Find("nav#pagination a:contains('Prev')").Length() != 0 {
		t.Error("page 1 should have no Prev control")
	}
	page3 := loadOutput(t, root, "blog/page/3/index.html")
	if page3.Find("nav#pagination a:contains('Next')").Length() != 0 {
		t.Error("page 3 should have no Next control")
	}

	// The sitemap records the listing root and the overflow pages.
	locs := make(map[string]bool)
	for _, e := range a.Sitemap.Entries() {
		locs[e.Loc] = true
	}
	for _, want := range []string{
		"https://example.com/blog/",
		"https://example.com/blog/page/2/",
		"https://example.com/blog/page/3/",
	} {
		if !locs[want] {
			t.Errorf("sitemap missing %s", want)
		}
	}
}

func TestUpdateHomepage(t *testing.T) {
	root, articles := setupSite(t)
	a := newTestAssembler(t, root, articles)
	if err := a.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	home := loadOutput(t, root, "index.html")
	grid := home.Find(`div[class*="grid-cols-1"]`).First()
	if got := grid.Find("article").Length(); got != 3 {
		t.Fatalf("homepage cards = %d, want 3", got)
	}
	// Newest first, matching metadata order.
	if got := grid.Find("article h3").First().Text(); got != "Post A" {
		t.Errorf("first homepage card = %q, want Post A", got)
	}
	if grid.Find("p:contains('placeholder')").Length() != 0 {
		t.Error("placeholder content survived the rebuild")
	}
}

func TestRunIdempotent(t *testing.T) {
	root, articles := setupSite(t)

	a := newTestAssembler(t, root, articles)
	if err := a.Run(); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	first := snapshotTree(t, root)

	// The second run re-extracts assets from the assembled template, the way
	// a real rebuild would.
	b := newTestAssembler(t, root, articles)
	if err := b.Run(); err != nil {
		t.Fatalf("second Run: %v", err)
	}
	second := snapshotTree(t, root)

	if len(first) != len(second) {
		t.Fatalf("file count changed: %d then %d", len(first), len(second))
	}
	for rel, data := range first {
		if second[rel] != data {
			t.Errorf("%s changed between identical runs", rel)
		}
	}
}

// snapshotTree reads every HTML file under root keyed by relative path.
func snapshotTree(t *testing.T, root string) map[string]string {
	t.Helper()
	out := make(map[string]string)
	err := filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(d.Name(), ".html") {
			return err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		out[filepath.ToSlash(rel)] = string(data)
		return nil
	})
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
	return out
}

func TestSectionName(t *testing.T) {
	if got := sectionName("blog"); got != "Blog" {
		t.Errorf("sectionName(blog) = %q", got)
	}
	if got := sectionName(""); got != "" {
		t.Errorf("sectionName(empty) = %q", got)
	}
}
