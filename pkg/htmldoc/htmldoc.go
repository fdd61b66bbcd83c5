// Package htmldoc wraps goquery documents with site-relative identity and the
// tree helpers the assembly and audit pipelines share.
package htmldoc

import (
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Document is one HTML file held as a mutable tree.
type Document struct {
	// Path is the site-relative, slash-separated file path (e.g. "blog/post.html").
	Path string

	doc *goquery.Document
}

// Load parses the document at rootDir/relPath.
func Load(rootDir, relPath string) (*Document, error) {
	f, err := os.Open(filepath.Join(rootDir, filepath.FromSlash(relPath)))
	if err != nil {
		return nil, fmt.Errorf("failed to open document: %w", err)
	}
	defer f.Close()
	return Parse(relPath, f)
}

// Parse builds a Document from a reader, tagged with its site-relative path.
func Parse(relPath string, r io.Reader) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return &Document{Path: filepath.ToSlash(relPath), doc: doc}, nil
}

// Find runs a selector against the whole tree.
func (d *Document) Find(selector string) *goquery.Selection {
	return d.doc.Find(selector)
}

// Selection exposes the root selection for operations that need it directly.
func (d *Document) Selection() *goquery.Selection {
	return d.doc.Selection
}

// Html serializes the full document.
func (d *Document) Html() (string, error) {
	return d.doc.Html()
}

// Save writes the serialized document to rootDir/Path, creating parent
// directories as needed.
func (d *Document) Save(rootDir string) error {
	html, err := d.Html()
	if err != nil {
		return fmt.Errorf("failed to render document: %w", err)
	}
	target := filepath.Join(rootDir, filepath.FromSlash(d.Path))
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(target, []byte(html), 0644); err != nil {
		return fmt.Errorf("failed to save document: %w", err)
	}
	return nil
}

// ResourceKey builds a structural-equality key for a head resource: the tag
// plus its src or href (with normalized rel), or a content hash for inline
// blocks. Two resources with the same key are duplicates.
func ResourceKey(s *goquery.Selection) string {
	tag := goquery.NodeName(s)
	if src, ok := s.Attr("src"); ok && src != "" {
		return tag + "|src=" + src
	}
	if href, ok := s.Attr("href"); ok && href != "" {
		rel := strings.Join(Tokens(s, "rel"), " ")
		return tag + "|href=" + href + "|rel=" + rel
	}
	inner, _ := s.Html()
	return tag + "|sha=" + ContentHash([]byte(inner))
}

// ContentHash computes the SHA256 hash of content as a hex string.
func ContentHash(data []byte) string {
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash)
}

// Render serializes a detached selection (fragment) to HTML.
func Render(s *goquery.Selection) (string, error) {
	return goquery.OuterHtml(s)
}
