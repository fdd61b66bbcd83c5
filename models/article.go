package models

// ArticleMeta describes one content document. It is created once during the
// content scan and read-only afterwards.
type ArticleMeta struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	PublishDate  string `json:"publish_date"`  // ISO date, sentinel when unknown
	CanonicalURL string `json:"canonical_url"` // extension-less, path-only
	SourcePath   string `json:"source_path"`   // site-relative file path
	Category     string `json:"category"`      // category slug
}
