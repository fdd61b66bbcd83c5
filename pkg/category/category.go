// Package category assigns content titles to a fixed set of categories.
package category

import (
	"strings"

	"github.com/davyos/siteforge/models"
)

// Category is a resolved classification with display metadata.
type Category struct {
	Slug string
	Name string
	Icon string
}

// defaultRules is the built-in keyword table. Order matters: the first rule
// whose keyword appears in the title wins.
var defaultRules = []models.CategoryRule{
	{
		Slug: "regions", Name: "Regional Guides", Icon: "fa-earth-americas",
		Keywords: []string{"region", "country", "usa", "japan", "europe", "global"},
	},
	{
		Slug: "security", Name: "Account Security", Icon: "fa-shield-halved",
		Keywords: []string{"security", "password", "two-factor", "verification", "locked", "recover"},
	},
	{
		Slug: "setup", Name: "Setup & Registration", Icon: "fa-user-plus",
		Keywords: []string{"create", "register", "sign up", "signup", "setup", "without"},
	},
	{
		Slug: "billing", Name: "Billing & Payments", Icon: "fa-credit-card",
		Keywords: []string{"payment", "billing", "subscription", "refund", "price"},
	},
}

// DefaultSlug is the designated fallback when no keyword matches.
const DefaultSlug = "guides"

var defaultCategory = Category{Slug: DefaultSlug, Name: "Guides", Icon: "fa-book-open"}

// Classifier maps titles to categories via an ordered keyword table.
type Classifier struct {
	rules    []models.CategoryRule
	fallback Category
}

// NewClassifier builds a classifier from configured rules, or the built-in
// table when none are configured.
func NewClassifier(rules []models.CategoryRule) *Classifier {
	if len(rules) == 0 {
		rules = defaultRules
	}
	return &Classifier{rules: rules, fallback: defaultCategory}
}

// Classify returns the first category whose keyword list contains a
// case-insensitive substring of the title, or the fallback. It is total:
// every title maps to exactly one category.
func (c *Classifier) Classify(title string) Category {
	lower := strings.ToLower(title)
	for _, rule := range c.rules {
		for _, kw := range rule.Keywords {
			if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
				return Category{Slug: rule.Slug, Name: rule.Name, Icon: rule.Icon}
			}
		}
	}
	return c.fallback
}

// Lookup returns the display metadata for a category slug, falling back to
// the default category for unknown slugs.
func (c *Classifier) Lookup(slug string) Category {
	for _, rule := range c.rules {
		if rule.Slug == slug {
			return Category{Slug: rule.Slug, Name: rule.Name, Icon: rule.Icon}
		}
	}
	return c.fallback
}

// All returns every category in table order, ending with the fallback.
func (c *Classifier) All() []Category {
	out := make([]Category, 0, len(c.rules)+1)
	for _, rule := range c.rules {
		out = append(out, Category{Slug: rule.Slug, Name: rule.Name, Icon: rule.Icon})
	}
	return append(out, c.fallback)
}
