// Package scanner walks the content directory and extracts per-article
// metadata: title, description, publish date, category and canonical URL.
package scanner

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"
	readability "github.com/go-shiori/go-readability"

	"github.com/davyos/siteforge/models"
	"github.com/davyos/siteforge/pkg/category"
	"github.com/davyos/siteforge/pkg/htmldoc"
)

// DefaultPublishDate is the sentinel used when a document carries no
// parsable publish date.
const DefaultPublishDate = "2026-01-01"

// yearToken matches four-digit year tokens with optional surrounding
// brackets or parentheses; titles are kept evergreen by removing them.
var yearToken = regexp.MustCompile(`[\(\[]?\b(?:19|20)\d{2}\b[\)\]]?`)

var spaceRun = regexp.MustCompile(`\s+`)

// Scanner reads article metadata out of a content section.
type Scanner struct {
	RootDir    string
	Section    string // content subdirectory, e.g. "blog"
	Domain     string
	Classifier *category.Classifier
	Logger     *slog.Logger
}

// Scan parses every content file except the section index and returns the
// metadata set sorted by publish date descending. The sort is stable, so
// same-day articles keep discovery order. A malformed document is logged and
// skipped, never fatal.
func (s *Scanner) Scan() ([]models.ArticleMeta, error) {
	pattern := filepath.Join(s.RootDir, filepath.FromSlash(s.Section), "*.html")
	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}

	var articles []models.ArticleMeta
	for _, file := range files {
		name := filepath.Base(file)
		if name == "index.html" {
			continue
		}

		meta, err := s.scanFile(file, name)
		if err != nil {
			s.Logger.Warn("skipping unreadable content file", "file", name, "error", err)
			continue
		}
		articles = append(articles, meta)
	}

	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].PublishDate > articles[j].PublishDate
	})
	return articles, nil
}

func (s *Scanner) scanFile(file, name string) (models.ArticleMeta, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return models.ArticleMeta{}, err
	}

	relPath := path.Join(s.Section, name)
	doc, err := htmldoc.Parse(relPath, bytes.NewReader(data))
	if err != nil {
		return models.ArticleMeta{}, err
	}

	slug := strings.TrimSuffix(name, ".html")
	canonical := "/" + path.Join(s.Section, slug)

	title := "Untitled"
	if t := doc.Find("title").First(); t.Length() > 0 {
		// Keep only the page-specific prefix before the site-name separator.
		title = strings.TrimSpace(strings.SplitN(t.Text(), "|", 2)[0])
	}

	description, _ := doc.Find(`meta[name="description"]`).First().Attr("content")
	publishDate := datePublished(doc)

	if description == "" || publishDate == "" {
		excerpt, published := s.readabilityFallback(data, canonical)
		if description == "" {
			description = excerpt
		}
		if publishDate == "" {
			publishDate = published
		}
	}
	if publishDate == "" {
		publishDate = DefaultPublishDate
	}

	title = CleanTitle(title)
	description = CleanTitle(description)

	return models.ArticleMeta{
		Title:        title,
		Description:  description,
		PublishDate:  publishDate,
		CanonicalURL: canonical,
		SourcePath:   relPath,
		Category:     s.Classifier.Classify(title).Slug,
	}, nil
}

// datePublished pulls datePublished out of the document's structured-data
// blocks. Malformed JSON is ignored; the first parsable date wins.
func datePublished(doc *htmldoc.Document) string {
	var found string
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		var record map[string]any
		if err := json.Unmarshal([]byte(sel.Text()), &record); err != nil {
			return true
		}
		raw, _ := record["datePublished"].(string)
		if raw == "" {
			return true
		}
		t, err := dateparse.ParseAny(raw)
		if err != nil {
			return true
		}
		found = t.Format("2006-01-02")
		return false
	})
	return found
}

// readabilityFallback extracts an excerpt and publish time when the document
// lacks usable meta tags.
func (s *Scanner) readabilityFallback(data []byte, canonical string) (excerpt, published string) {
	base := s.Domain
	if base == "" {
		base = "https://localhost"
	}
	pageURL, err := url.Parse(base + canonical)
	if err != nil {
		return "", ""
	}

	parser := readability.NewParser()
	article, err := parser.Parse(bytes.NewReader(data), pageURL)
	if err != nil {
		return "", ""
	}
	if article.PublishedTime != nil {
		published = article.PublishedTime.Format("2006-01-02")
	}
	return strings.TrimSpace(article.Excerpt), published
}

// CleanTitle removes embedded year tokens and collapses whitespace.
func CleanTitle(s string) string {
	s = yearToken.ReplaceAllString(s, "")
	return strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
}
