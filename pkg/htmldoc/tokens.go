package htmldoc

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Attribute values like rel and class are ordered token sets, not plain
// strings. These helpers normalize that distinction at the tree boundary.

// Tokens returns the ordered whitespace-separated tokens of an attribute.
// A missing attribute yields nil.
func Tokens(s *goquery.Selection, attr string) []string {
	val, ok := s.Attr(attr)
	if !ok {
		return nil
	}
	return strings.Fields(val)
}

// HasToken reports whether the attribute's token set contains token.
func HasToken(s *goquery.Selection, attr, token string) bool {
	for _, t := range Tokens(s, attr) {
		if t == token {
			return true
		}
	}
	return false
}

// AddTokens unions tokens into the attribute, preserving existing order and
// never duplicating. Applying it twice is a no-op.
func AddTokens(s *goquery.Selection, attr string, tokens ...string) {
	existing := Tokens(s, attr)
	seen := make(map[string]struct{}, len(existing))
	for _, t := range existing {
		seen[t] = struct{}{}
	}
	for _, t := range tokens {
		if _, ok := seen[t]; ok {
			continue
		}
		existing = append(existing, t)
		seen[t] = struct{}{}
	}
	s.SetAttr(attr, strings.Join(existing, " "))
}
