// Package assets extracts the shared layout fragments and head resources from
// the canonical template. The extracted bundle is the source of truth every
// other page is synced against.
package assets

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/davyos/siteforge/pkg/htmldoc"
)

// Bundle holds the template's shared fragments. Fragments are detached
// clones; callers must clone again before splicing into a target document,
// since a tree node has exactly one parent.
type Bundle struct {
	nav    *goquery.Selection
	footer *goquery.Selection

	Favicons      []*goquery.Selection
	HeadResources []*goquery.Selection

	seen map[string]struct{}
}

// Extract pulls the first nav, the first footer, all icon links, and the
// head's styles, scripts and preconnects (in document order) out of the
// template. Resources are deduplicated by structural key, so re-running
// extraction on an already-assembled template cannot grow the bundle.
func Extract(tpl *htmldoc.Document) *Bundle {
	b := &Bundle{seen: make(map[string]struct{})}

	if nav := tpl.Find("nav").First(); nav.Length() > 0 {
		b.nav = nav.Clone()
	}
	if footer := tpl.Find("footer").First(); footer.Length() > 0 {
		b.footer = footer.Clone()
	}

	tpl.Find("head link").Each(func(_ int, link *goquery.Selection) {
		if !htmldoc.HasToken(link, "rel", "icon") && !htmldoc.HasToken(link, "rel", "apple-touch-icon") {
			return
		}
		clone := link.Clone()
		if href, ok := clone.Attr("href"); ok {
			clone.SetAttr("href", normalizeIconHref(href))
		}
		if b.remember(clone) {
			b.Favicons = append(b.Favicons, clone)
		}
	})

	// One pass over the head keeps resources in document order.
	tpl.Find("head").Find("script, link, style").Each(func(_ int, s *goquery.Selection) {
		if !isHeadResource(s) {
			return
		}
		clone := s.Clone()
		if b.remember(clone) {
			b.HeadResources = append(b.HeadResources, clone)
		}
	})

	return b
}

// HasNav reports whether the template carried a nav fragment.
func (b *Bundle) HasNav() bool { return b.nav != nil }

// HasFooter reports whether the template carried a footer fragment.
func (b *Bundle) HasFooter() bool { return b.footer != nil }

// CloneNav returns a fresh deep copy of the nav fragment, or nil.
func (b *Bundle) CloneNav() *goquery.Selection {
	if b.nav == nil {
		return nil
	}
	return b.nav.Clone()
}

// CloneFooter returns a fresh deep copy of the footer fragment, or nil.
func (b *Bundle) CloneFooter() *goquery.Selection {
	if b.footer == nil {
		return nil
	}
	return b.footer.Clone()
}

// remember records a resource's structural key, rejecting duplicates.
func (b *Bundle) remember(s *goquery.Selection) bool {
	key := htmldoc.ResourceKey(s)
	if _, dup := b.seen[key]; dup {
		return false
	}
	b.seen[key] = struct{}{}
	return true
}

// isHeadResource selects the shareable head elements: scripts other than
// structured data, stylesheet and preconnect links, and inline styles.
func isHeadResource(s *goquery.Selection) bool {
	switch goquery.NodeName(s) {
	case "script":
		typ, _ := s.Attr("type")
		return typ != "application/ld+json"
	case "link":
		return htmldoc.HasToken(s, "rel", "stylesheet") || htmldoc.HasToken(s, "rel", "preconnect")
	case "style":
		return true
	}
	return false
}

// normalizeIconHref makes relative icon paths root-relative so the bundle
// injects correctly at any directory depth.
func normalizeIconHref(href string) string {
	if href == "" || strings.HasPrefix(href, "http") || strings.HasPrefix(href, "/") {
		return href
	}
	return "/" + strings.TrimLeft(href, "/")
}
