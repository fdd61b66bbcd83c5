// Package linkres resolves raw hrefs against the site tree. Canonicalize
// rewrites links for assembly; Locate verifies on-disk targets for the audit.
package linkres

import (
	"os"
	"path"
	"path/filepath"
	"strings"
)

// passthroughPrefixes never resolve against the site tree. "http" covers
// both http:// and https://.
var passthroughPrefixes = []string{
	"http", "mailto:", "tel:", "javascript:", "data:",
}

// Resolver maps hrefs to canonical URLs or on-disk targets.
type Resolver struct {
	// RootDir is the on-disk site root.
	RootDir string
	// Domain is the site's fully-qualified domain (https://example.com, no
	// trailing slash). Absolute self-links are stripped to root-relative.
	Domain string
	// IgnorePrefixes are hrefs passed through untouched (redirect gateways,
	// CDN endpoints, bare anchors).
	IgnorePrefixes []string
}

// SplitSuffix splits an href at the first fragment or query marker. The
// returned suffix includes the marker; an href that is only a suffix leaves
// an empty base.
func SplitSuffix(href string) (base, suffix string) {
	if i := strings.IndexAny(href, "#?"); i >= 0 {
		return href[:i], href[i:]
	}
	return href, ""
}

// Ignored reports whether the href matches the configured ignore-prefix set.
func (r *Resolver) Ignored(href string) bool {
	for _, p := range r.IgnorePrefixes {
		if strings.HasPrefix(href, p) {
			return true
		}
	}
	return false
}

// External reports whether the href points off-site.
func (r *Resolver) External(href string) bool {
	if !strings.HasPrefix(href, "http") {
		return false
	}
	return r.Domain == "" || !strings.HasPrefix(href, r.Domain)
}

// stripDomain rewrites an absolute self-link to a root-relative path.
func (r *Resolver) stripDomain(href string) string {
	if r.Domain == "" || !strings.HasPrefix(href, r.Domain) {
		return href
	}
	href = strings.TrimPrefix(href, r.Domain)
	if !strings.HasPrefix(href, "/") {
		href = "/" + href
	}
	return href
}

// Canonicalize rewrites an href found in the document at fromPath to its
// canonical form: root-relative, extension-less, no trailing slash. External
// and special-scheme links pass through unmodified; absolute self-links lose
// the domain first. Fragment-only hrefs on non-root pages are re-anchored at
// the root because the shared layout owns every page's fragment targets.
func (r *Resolver) Canonicalize(href, fromPath string) string {
	if href == "" {
		return href
	}

	href = r.stripDomain(href)

	if strings.HasPrefix(href, "#") {
		if href == "#" || isRootPath(fromPath) {
			return href
		}
		return "/" + href
	}

	for _, p := range passthroughPrefixes {
		if strings.HasPrefix(href, p) {
			return href
		}
	}
	if r.Ignored(href) {
		return href
	}

	base, suffix := SplitSuffix(href)
	if base == "" {
		return href
	}

	if !strings.HasPrefix(base, "/") {
		base = "/" + path.Join(path.Dir(filepath.ToSlash(fromPath)), base)
	}
	base = path.Clean(base)

	base = strings.TrimSuffix(base, ".html")
	if len(base) > 1 {
		base = strings.TrimSuffix(base, "/")
	}
	if base == "" {
		base = "/"
	}
	return base + suffix
}

// Locate resolves an href to a site-relative file path and reports whether a
// file exists there. Existence is checked as exact match, then with a .html
// suffix, then as a directory index. The first hit wins.
func (r *Resolver) Locate(href, fromPath string) (string, bool) {
	base, _ := SplitSuffix(href)
	if base == "" {
		return "", false
	}

	base = r.stripDomain(base)

	var rel string
	if strings.HasPrefix(base, "/") {
		rel = strings.TrimPrefix(base, "/")
	} else {
		rel = path.Join(path.Dir(filepath.ToSlash(fromPath)), base)
	}
	rel = path.Clean(rel)
	if rel == "." || rel == "" {
		rel = "index.html"
	}
	if strings.HasPrefix(rel, "..") {
		return rel, false
	}

	candidates := []string{rel, rel + ".html", path.Join(rel, "index.html")}
	for _, c := range candidates {
		if r.isFile(c) {
			return c, true
		}
	}
	return rel, false
}

func (r *Resolver) isFile(rel string) bool {
	info, err := os.Stat(filepath.Join(r.RootDir, filepath.FromSlash(rel)))
	return err == nil && info.Mode().IsRegular()
}

func isRootPath(p string) bool {
	p = filepath.ToSlash(p)
	return p == "index.html" || p == "" || p == "."
}
