// Package sitemap aggregates one entry per emitted page and serializes the
// result as a sitemap.org XML document.
package sitemap

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Change frequencies recognized by the sitemap protocol subset we emit.
const (
	Daily   = "daily"
	Weekly  = "weekly"
	Monthly = "monthly"
	Yearly  = "yearly"
)

// Entry is one page record. Loc is the uniqueness key.
type Entry struct {
	Loc        string
	LastMod    string
	ChangeFreq string
	Priority   float64
}

// Collector gathers entries during assembly, dropping duplicates and
// excluded URLs and pinning legacy priorities.
type Collector struct {
	Domain        string // absolute prefix for Loc values
	SectionPrefix string // e.g. "/blog", used for tier ordering

	exclude  []*regexp.Regexp
	legacy   map[string]float64
	entries  []Entry
	seenLocs map[string]struct{}
}

// NewCollector builds a collector. Invalid exclusion patterns are dropped.
func NewCollector(domain, sectionPrefix string, exclude []string, legacy map[string]float64) *Collector {
	c := &Collector{
		Domain:        strings.TrimSuffix(domain, "/"),
		SectionPrefix: sectionPrefix,
		legacy:        legacy,
		seenLocs:      make(map[string]struct{}),
	}
	for _, pat := range exclude {
		re, err := regexp.Compile(pat)
		if err != nil {
			continue
		}
		c.exclude = append(c.exclude, re)
	}
	return c
}

// Add records an entry for a site-relative URL. Duplicates and excluded URLs
// are silently dropped; legacy URLs get their pinned priority.
func (c *Collector) Add(relURL, lastMod, changeFreq string, priority float64) {
	loc := c.Domain + relURL
	if _, dup := c.seenLocs[loc]; dup {
		return
	}
	for _, re := range c.exclude {
		if re.MatchString(relURL) || re.MatchString(loc) {
			return
		}
	}
	if pinned, ok := c.legacy[relURL]; ok {
		priority = pinned
	}
	c.seenLocs[loc] = struct{}{}
	c.entries = append(c.entries, Entry{
		Loc:        loc,
		LastMod:    lastMod,
		ChangeFreq: changeFreq,
		Priority:   priority,
	})
}

// Len returns the number of collected entries.
func (c *Collector) Len() int { return len(c.entries) }

// Entries returns the collected entries in final sitemap order: root first,
// then the listing root, then content/section pages, then everything else.
// Each tier preserves collection order.
func (c *Collector) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)

	listingRoot := c.Domain + c.SectionPrefix + "/"
	tier := func(e Entry) int {
		switch {
		case e.Loc == c.Domain+"/" || e.Loc == c.Domain:
			return 0
		case e.Loc == listingRoot || e.Loc == strings.TrimSuffix(listingRoot, "/"):
			return 1
		case c.SectionPrefix != "" && strings.HasPrefix(e.Loc, c.Domain+c.SectionPrefix+"/"):
			return 2
		default:
			return 3
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return tier(out[i]) < tier(out[j]) })
	return out
}

type xmlURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

type xmlURLSet struct {
	XMLName xml.Name `xml:"urlset"`
	Xmlns   string   `xml:"xmlns,attr"`
	URLs    []xmlURL `xml:"url"`
}

// Serialize renders the sitemap document.
func (c *Collector) Serialize() ([]byte, error) {
	set := xmlURLSet{Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	for _, e := range c.Entries() {
		set.URLs = append(set.URLs, xmlURL{
			Loc:        e.Loc,
			LastMod:    e.LastMod,
			ChangeFreq: e.ChangeFreq,
			Priority:   strconv.FormatFloat(e.Priority, 'f', 1, 64),
		})
	}

	body, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal sitemap: %w", err)
	}
	return append([]byte(xml.Header), append(body, '\n')...), nil
}

// WriteFile serializes the sitemap to disk.
func (c *Collector) WriteFile(path string) error {
	data, err := c.Serialize()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create sitemap directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write sitemap: %w", err)
	}
	return nil
}
