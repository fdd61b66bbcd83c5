package assembler

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"

	"github.com/davyos/siteforge/models"
	"github.com/davyos/siteforge/pkg/htmldoc"
)

// Structured-data records in the schema.org shapes the site emits. Structs
// keep key order deterministic across builds.

type imageObject struct {
	Type string `json:"@type"`
	URL  string `json:"url"`
}

type organization struct {
	Type string       `json:"@type"`
	Name string       `json:"name"`
	Logo *imageObject `json:"logo,omitempty"`
}

type webPageRef struct {
	Type string `json:"@type"`
	ID   string `json:"@id"`
}

type blogPosting struct {
	Context          string       `json:"@context"`
	Type             string       `json:"@type"`
	Headline         string       `json:"headline"`
	Description      string       `json:"description"`
	Author           organization `json:"author"`
	Publisher        organization `json:"publisher"`
	DatePublished    string       `json:"datePublished"`
	MainEntityOfPage webPageRef   `json:"mainEntityOfPage"`
}

type listItem struct {
	Type     string `json:"@type"`
	Position int    `json:"position"`
	Name     string `json:"name"`
	Item     string `json:"item"`
}

type breadcrumbList struct {
	Context         string     `json:"@context"`
	Type            string     `json:"@type"`
	ItemListElement []listItem `json:"itemListElement"`
}

type webSite struct {
	Context string `json:"@context"`
	Type    string `json:"@type"`
	Name    string `json:"name"`
	URL     string `json:"url"`
}

// rebuildHead clears an article's head and rebuilds it in fixed section
// order: charset/viewport, title, description/keywords, Open Graph and
// Twitter cards, canonical, robots, alternates, favicons, shared resources,
// then the BlogPosting and BreadcrumbList records.
func (a *Assembler) rebuildHead(doc *htmldoc.Document, meta models.ArticleMeta) {
	head := doc.Find("head").First()
	if head.Length() == 0 {
		doc.Find("html").First().PrependHtml("<head></head>")
		head = doc.Find("head").First()
	}

	// Preserve the page's own title and keywords before clearing.
	pageTitle := meta.Title
	if t := doc.Find("title").First(); t.Length() > 0 && strings.TrimSpace(t.Text()) != "" {
		pageTitle = strings.TrimSpace(t.Text())
	}
	keywords, _ := doc.Find(`meta[name="keywords"]`).First().Attr("content")

	canonical := a.Config.Domain + meta.CanonicalURL

	var b strings.Builder
	b.WriteString(`<meta charset="utf-8">` + "\n    ")
	b.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1.0">` + "\n    ")
	fmt.Fprintf(&b, "<title>%s</title>\n\n    ", textEscape(pageTitle))

	if meta.Description != "" {
		fmt.Fprintf(&b, `<meta name="description" content="%s">`+"\n    ", attrEscape(meta.Description))
	}
	if keywords != "" {
		fmt.Fprintf(&b, `<meta name="keywords" content="%s">`+"\n    ", attrEscape(keywords))
	}
	b.WriteString("\n    ")

	fmt.Fprintf(&b, `<meta property="og:type" content="article">`+"\n    ")
	fmt.Fprintf(&b, `<meta property="og:title" content="%s">`+"\n    ", attrEscape(meta.Title))
	if meta.Description != "" {
		fmt.Fprintf(&b, `<meta property="og:description" content="%s">`+"\n    ", attrEscape(meta.Description))
	}
	fmt.Fprintf(&b, `<meta property="og:url" content="%s">`+"\n    ", attrEscape(canonical))
	fmt.Fprintf(&b, `<meta property="og:site_name" content="%s">`+"\n    ", attrEscape(a.Config.SiteName))
	b.WriteString(`<meta name="twitter:card" content="summary">` + "\n    ")
	fmt.Fprintf(&b, `<meta name="twitter:title" content="%s">`+"\n    ", attrEscape(meta.Title))
	if meta.Description != "" {
		fmt.Fprintf(&b, `<meta name="twitter:description" content="%s">`+"\n    ", attrEscape(meta.Description))
	}
	b.WriteString("\n    ")

	fmt.Fprintf(&b, `<link rel="canonical" href="%s">`+"\n\n    ", attrEscape(canonical))

	b.WriteString(`<meta name="robots" content="index, follow">` + "\n    ")
	for _, lang := range a.Config.AlternateLangs {
		fmt.Fprintf(&b, `<link rel="alternate" hreflang="%s" href="%s">`+"\n    ", attrEscape(lang), attrEscape(canonical))
	}
	fmt.Fprintf(&b, `<link rel="alternate" hreflang="x-default" href="%s">`+"\n\n    ", attrEscape(canonical))

	b.WriteString("<!-- Favicon -->\n    ")
	for _, icon := range a.Assets.Favicons {
		if rendered, err := htmldoc.Render(icon); err == nil {
			b.WriteString(rendered + "\n    ")
		}
	}
	b.WriteString("<!-- Resources -->\n    ")
	for _, res := range a.Assets.HeadResources {
		if rendered, err := htmldoc.Render(res); err == nil {
			b.WriteString(rendered + "\n    ")
		}
	}
	b.WriteString("\n\n    ")

	publisher := organization{
		Type: "Organization",
		Name: a.Config.SiteName,
		Logo: &imageObject{Type: "ImageObject", URL: a.Config.Domain + "/logo.png"},
	}
	posting := blogPosting{
		Context:          "https://schema.org",
		Type:             "BlogPosting",
		Headline:         meta.Title,
		Description:      meta.Description,
		Author:           organization{Type: "Organization", Name: a.Config.SiteName},
		Publisher:        publisher,
		DatePublished:    meta.PublishDate,
		MainEntityOfPage: webPageRef{Type: "WebPage", ID: canonical},
	}
	writeSchema(&b, posting)
	b.WriteString("\n    ")

	crumbs := breadcrumbList{
		Context: "https://schema.org",
		Type:    "BreadcrumbList",
		ItemListElement: []listItem{
			{Type: "ListItem", Position: 1, Name: "Home", Item: a.Config.Domain},
			{Type: "ListItem", Position: 2, Name: sectionName(a.Config.ContentDir), Item: a.Config.Domain + "/" + a.Config.ContentDir + "/"},
			{Type: "ListItem", Position: 3, Name: meta.Title, Item: canonical},
		},
	}
	writeSchema(&b, crumbs)
	b.WriteString("\n")

	head.SetHtml(b.String())
}

// ensureSiteSchema appends a minimal site-identity record to pages that
// carry no structured data at all.
func (a *Assembler) ensureSiteSchema(doc *htmldoc.Document) {
	if doc.Find(`script[type="application/ld+json"]`).Length() > 0 {
		return
	}

	var b strings.Builder
	writeSchema(&b, webSite{
		Context: "https://schema.org",
		Type:    "WebSite",
		Name:    a.Config.SiteName,
		URL:     a.Config.Domain,
	})

	if head := doc.Find("head").First(); head.Length() > 0 {
		head.AppendHtml(b.String())
	} else if body := doc.Find("body").First(); body.Length() > 0 {
		body.PrependHtml(b.String())
	}
}

// writeSchema renders a structured-data block. json.Marshal escapes angle
// brackets, so the payload is safe inside a script element.
func writeSchema(b *strings.Builder, record any) {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return
	}
	b.WriteString(`<script type="application/ld+json">`)
	b.Write(data)
	b.WriteString(`</script>`)
}

// sectionName renders a section slug for display ("blog" -> "Blog").
func sectionName(section string) string {
	if section == "" {
		return ""
	}
	return strings.ToUpper(section[:1]) + section[1:]
}

func textEscape(s string) string { return html.EscapeString(s) }

func attrEscape(s string) string { return html.EscapeString(s) }
