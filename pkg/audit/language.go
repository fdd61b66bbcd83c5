package audit

import (
	"fmt"
	"strings"

	"github.com/pemistahl/lingua-go"

	"github.com/davyos/siteforge/models"
	"github.com/davyos/siteforge/pkg/htmldoc"
)

// langChecker detects the dominant language of a page's text and compares it
// against the declared <html lang> attribute. It is built once per run since
// detector construction is expensive.
type langChecker struct {
	detector lingua.LanguageDetector
}

// detectable covers the languages the site plausibly publishes in. A detected
// language outside a page's declaration is a warning, never an error.
var detectable = []lingua.Language{
	lingua.English,
	lingua.Chinese,
	lingua.Japanese,
	lingua.Spanish,
	lingua.German,
	lingua.French,
}

func newLangChecker() *langChecker {
	return &langChecker{
		detector: lingua.NewLanguageDetectorBuilder().
			FromLanguages(detectable...).
			Build(),
	}
}

func (lc *langChecker) check(a *Auditor, doc *htmldoc.Document, rel string) {
	declared, _ := doc.Find("html").First().Attr("lang")
	declared = strings.ToLower(strings.SplitN(declared, "-", 2)[0])
	if declared == "" {
		return
	}

	text := strings.TrimSpace(doc.Find("body").First().Text())
	if len(text) < 100 {
		return // too little text for a reliable verdict
	}
	if len(text) > 4000 {
		text = text[:4000]
	}

	detected, ok := lc.detector.DetectLanguageOf(text)
	if !ok {
		return
	}
	code := strings.ToLower(detected.IsoCode639_1().String())
	if code != declared {
		a.Report.Add(rel, "language_mismatch", models.SeverityWarn,
			fmt.Sprintf("Declared lang=%q but content reads as %q.", declared, code))
	}
}
