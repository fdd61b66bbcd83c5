package assembler

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/davyos/siteforge/pkg/htmldoc"
)

// homeGridColors rotate across the latest-content cards.
var homeGridColors = []struct{ block, icon string }{
	{"bg-slate-100", "text-slate-400"},
	{"bg-red-50", "text-red-300"},
	{"bg-indigo-50", "text-indigo-300"},
}

// updateHomepage rebuilds the template's latest-content section with the
// three newest articles. The section is located by its heading text; when no
// such section exists the homepage is left alone.
func (a *Assembler) updateHomepage(doc *htmldoc.Document) {
	if len(a.Articles) == 0 {
		return
	}

	var grid *goquery.Selection
	doc.Find("section").EachWithBreak(func(_ int, sec *goquery.Selection) bool {
		heading := sec.Find("h1, h2, h3").First()
		if heading.Length() == 0 || !strings.Contains(heading.Text(), "Latest") {
			return true
		}
		if g := sec.Find(`div[class*="grid-cols-1"]`).First(); g.Length() > 0 {
			grid = g
			return false
		}
		return true
	})
	if grid == nil {
		a.Logger.Warn("homepage has no latest-content grid", "file", doc.Path)
		return
	}

	limit := 3
	if len(a.Articles) < limit {
		limit = len(a.Articles)
	}

	var b strings.Builder
	for i, meta := range a.Articles[:limit] {
		colors := homeGridColors[i%len(homeGridColors)]
		cat := a.Classifier.Lookup(meta.Category)
		fmt.Fprintf(&b,
			`<article class="bg-white rounded-2xl shadow-sm border border-slate-100 overflow-hidden hover:shadow-xl hover:-translate-y-1 transition duration-300 flex flex-col h-full">`+
				`<a href="%s" class="block h-40 %s relative overflow-hidden group">`+
				`<div class="absolute inset-0 flex items-center justify-center transition group-hover:bg-opacity-80">`+
				`<i class="fa-solid %s text-5xl %s"></i></div></a>`+
				`<div class="p-5 flex-1 flex flex-col">`+
				`<div class="flex items-center gap-2 text-[10px] text-slate-500 mb-2">`+
				`<span><i class="fa-regular fa-calendar mr-1"></i> %s</span></div>`+
				`<h3 class="font-bold text-slate-900 mb-2 leading-snug line-clamp-2">`+
				`<a href="%s" class="hover:text-brand-600 transition">%s</a></h3>`+
				`<p class="text-slate-500 text-xs mb-4 flex-1 line-clamp-3">%s</p>`+
				`<a href="%s" class="text-brand-600 font-bold text-xs hover:underline mt-auto">Read Article <i class="fa-solid fa-arrow-right ml-1"></i></a>`+
				`</div></article>`,
			attrEscape(meta.CanonicalURL), colors.block,
			attrEscape(cat.Icon), colors.icon,
			textEscape(meta.PublishDate),
			attrEscape(meta.CanonicalURL), textEscape(meta.Title),
			textEscape(meta.Description),
			attrEscape(meta.CanonicalURL))
	}
	grid.SetHtml(b.String())
}
